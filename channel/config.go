/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package channel

import (
	"github.com/go-playground/validator/v10"

	"github.com/sabouaram/monitord/certificates"
)

var validate = validator.New()

// Config describes the control channel's single listener, adapted down
// from the pool-of-listeners shape the teacher's httpserver config uses,
// to the spec's single TCP-or-UNIX, TLS-optional, Basic-Auth endpoint.
type Config struct {
	// Listen is a "host:port" address, or, when Unix is true, a filesystem
	// path.
	Listen string `validate:"required"`

	// Unix selects a UNIX domain socket listener instead of TCP.
	Unix bool

	// TLS is optional; when nil the listener serves plain HTTP.
	TLS certificates.TLSConfig

	// Credential is the shared Basic-Auth "user:pass" pair the spec
	// describes as "derived from the configured shared credential".
	User string `validate:"required"`
	Pass string `validate:"required"`
}

// Validate checks the configuration's required fields via
// go-playground/validator/v10, the same library the teacher's httpserver
// config uses.
func (c Config) Validate() error {
	return validate.Struct(c)
}
