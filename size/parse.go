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
	"fmt"
	"strconv"
	"strings"
)

var unitMultiplier = map[string]Size{
	"":   SizeUnit,
	"B":  SizeUnit,
	"K":  SizeKilo,
	"KB": SizeKilo,
	"M":  SizeMega,
	"MB": SizeMega,
	"G":  SizeGiga,
	"GB": SizeGiga,
	"T":  SizeTera,
	"TB": SizeTera,
	"P":  SizePeta,
	"PB": SizePeta,
	"E":  SizeExa,
	"EB": SizeExa,
}

// parseString implements the grammar documented on Parse: optional leading
// sign, an integer or decimal mantissa, optional whitespace, and an optional
// unit suffix (B, K/KB, M/MB, G/GB, T/TB, P/PB, E/EB), case-insensitive. The
// input may be wrapped in single or double quotes.
func parseString(s string) (Size, error) {
	raw := strings.TrimSpace(s)
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			raw = raw[1 : len(raw)-1]
		}
	}
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return SizeNul, fmt.Errorf("size: empty value")
	}

	neg := false
	if raw[0] == '+' || raw[0] == '-' {
		neg = raw[0] == '-'
		raw = raw[1:]
	}

	i := 0
	for i < len(raw) && (raw[i] == '.' || (raw[i] >= '0' && raw[i] <= '9')) {
		i++
	}

	if i == 0 {
		return SizeNul, fmt.Errorf("size: invalid value %q", s)
	}

	mantissa := raw[:i]
	unit := strings.TrimSpace(raw[i:])
	unit = strings.ToUpper(unit)

	mult, ok := unitMultiplier[unit]
	if !ok {
		return SizeNul, fmt.Errorf("size: unknown unit %q in %q", unit, s)
	}

	val, err := strconv.ParseFloat(mantissa, 64)
	if err != nil {
		return SizeNul, fmt.Errorf("size: invalid numeric value %q in %q: %w", mantissa, s, err)
	}

	if neg {
		val = -val
	}

	if val < 0 {
		return SizeNul, fmt.Errorf("size: negative value %q not allowed", s)
	}

	return Size(val * float64(mult)), nil
}

func (s *Size) parseString(v string) error {
	tmp, err := parseString(v)
	if err != nil {
		return err
	}

	*s = tmp
	return nil
}

func (s *Size) unmarshall(val []byte) error {
	tmp, err := ParseByte(val)
	if err != nil {
		return err
	}

	*s = tmp
	return nil
}
