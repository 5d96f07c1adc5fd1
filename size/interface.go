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

// Package size provides a byte-count type with a human-readable (1K/1MB/...)
// string form and the encoding glue (JSON/YAML/TOML/CBOR/viper) the rest of
// the ambient stack expects from a config-decodable scalar, mirroring the
// sibling duration package.
package size

// Size is a count of bytes, with String/Parse supporting the decimal and
// binary unit suffixes (B, K/KB, M/MB, G/GB, T/TB, P/PB, E/EB).
type Size uint64

const (
	SizeNul  Size = 0
	SizeUnit Size = 1
	SizeKilo Size = SizeUnit << 10
	SizeMega Size = SizeKilo << 10
	SizeGiga Size = SizeMega << 10
	SizeTera Size = SizeGiga << 10
	SizePeta Size = SizeTera << 10
	SizeExa  Size = SizePeta << 10
)

// Parse parses a human-readable size string ("512", "1K", "2.5MB", ...)
// into a Size: an optional sign (negative values are rejected), an integer
// or decimal mantissa, and an optional case-insensitive unit suffix, the
// whole optionally wrapped in single or double quotes.
func Parse(s string) (Size, error) {
	return parseString(s)
}

// ParseByte parses a byte slice the same way Parse does.
func ParseByte(p []byte) (Size, error) {
	return parseString(string(p))
}

// ParseSize is a deprecated alias of Parse, kept for source compatibility
// with callers migrated from the teacher's earlier API.
//
// Deprecated: use Parse.
func ParseSize(s string) (Size, error) {
	return Parse(s)
}

// ParseByteAsSize is a deprecated alias of ParseByte.
//
// Deprecated: use ParseByte.
func ParseByteAsSize(p []byte) (Size, error) {
	return ParseByte(p)
}

// GetSize is a deprecated alias of Parse that returns SizeNul on error
// instead of returning the error, matching the teacher's earlier
// convenience helper.
//
// Deprecated: use Parse.
func GetSize(s string) Size {
	v, err := Parse(s)
	if err != nil {
		return SizeNul
	}
	return v
}

// Int64 returns the size as an int64 byte count.
func (s Size) Int64() int64 {
	return int64(s)
}

// Uint64 returns the size as a uint64 byte count.
func (s Size) Uint64() uint64 {
	return uint64(s)
}

// Float64 returns the size as a float64 byte count.
func (s Size) Float64() float64 {
	return float64(s)
}
