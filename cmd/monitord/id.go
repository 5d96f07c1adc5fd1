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

package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// idFilePath resolves the file this daemon uses to persist its unique
// instance id, derived from the same directory as the state file (falling
// back to the system temp dir) since neither -c nor -s are required to
// point at a writable, daemon-owned directory.
func idFilePath(opts options) string {
	if opts.stateFile != "" {
		return opts.stateFile + ".id"
	}

	return filepath.Join(os.TempDir(), "monitord.id")
}

// instanceID returns the persisted id, generating and persisting one on
// first use, matching the --id flag's "print this instance's unique id"
// contract.
func instanceID(opts options) string {
	path := idFilePath(opts)

	if b, err := os.ReadFile(path); err == nil {
		return string(b)
	}

	id := newInstanceID()
	_ = os.WriteFile(path, []byte(id), 0o600)

	return id
}

// resetInstanceID discards the persisted id and generates a fresh one,
// matching --resetid.
func resetInstanceID(opts options) error {
	id := newInstanceID()

	if err := os.WriteFile(idFilePath(opts), []byte(id), 0o600); err != nil {
		return ErrorConfigLoad.Error(err)
	}

	fmt.Println(id)

	return nil
}

func newInstanceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)

	return hex.EncodeToString(b)
}
