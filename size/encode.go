/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package size

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// MarshalJSON returns the JSON encoding of the size, as a quoted string
// (e.g. "1.00MB").
func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a JSON size value, accepting either a quoted string
// ("1MB") or a bare number of bytes.
func (s *Size) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		return s.unmarshall([]byte(str))
	}

	var n uint64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}

	*s = Size(n)
	return nil
}

// MarshalYAML returns the YAML encoding of the size.
func (s Size) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML parses a YAML size value.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	return s.unmarshall([]byte(value.Value))
}

// MarshalTOML returns the TOML encoding of the size.
func (s Size) MarshalTOML() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalTOML parses a TOML size value, which viper/mapstructure may
// present as either a string or a []byte depending on decoder.
func (s *Size) UnmarshalTOML(i interface{}) error {
	if b, ok := i.([]byte); ok {
		return s.unmarshall(b)
	}

	if str, ok := i.(string); ok {
		return s.parseString(str)
	}

	return fmt.Errorf("size: value not in valid format")
}

// MarshalText returns the text encoding of the size.
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a text-encoded size.
func (s *Size) UnmarshalText(b []byte) error {
	return s.unmarshall(b)
}

// MarshalCBOR returns the CBOR encoding of the size's string form.
func (s Size) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(s.String())
}

// UnmarshalCBOR parses a CBOR-encoded size string.
func (s *Size) UnmarshalCBOR(b []byte) error {
	var str string
	if err := cbor.Unmarshal(b, &str); err != nil {
		return err
	}

	return s.unmarshall([]byte(str))
}

// DecodeViper is a mapstructure/viper decode hook entry point: it accepts a
// string like "512MB" from configuration and decodes it into a Size field.
func DecodeViper(v interface{}) (Size, error) {
	switch t := v.(type) {
	case Size:
		return t, nil
	case string:
		return Parse(t)
	case int:
		return Size(t), nil
	case int64:
		return Size(t), nil
	case uint64:
		return Size(t), nil
	case float64:
		return Size(t), nil
	default:
		return SizeNul, fmt.Errorf("size: cannot decode %T into Size", v)
	}
}
