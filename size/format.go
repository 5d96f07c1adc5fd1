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

import "fmt"

// String renders s using the largest binary unit (B/KB/MB/GB/TB/PB/EB) that
// keeps the mantissa >= 1, with two decimal places; values below 1KB are
// rendered as a plain byte count ("512B").
func (s Size) String() string {
	switch {
	case s >= SizeExa:
		return fmt.Sprintf("%.2fEB", float64(s)/float64(SizeExa))
	case s >= SizePeta:
		return fmt.Sprintf("%.2fPB", float64(s)/float64(SizePeta))
	case s >= SizeTera:
		return fmt.Sprintf("%.2fTB", float64(s)/float64(SizeTera))
	case s >= SizeGiga:
		return fmt.Sprintf("%.2fGB", float64(s)/float64(SizeGiga))
	case s >= SizeMega:
		return fmt.Sprintf("%.2fMB", float64(s)/float64(SizeMega))
	case s >= SizeKilo:
		return fmt.Sprintf("%.2fKB", float64(s)/float64(SizeKilo))
	default:
		return fmt.Sprintf("%dB", uint64(s))
	}
}
