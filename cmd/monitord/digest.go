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
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// runDigest implements the -H flag: print the SHA1 and MD5 digests of path
// (or, when path is empty, of stdin) and return. This mirrors the original
// daemon's "checksum a file or stdin, then exit" convenience mode.
func runDigest(path string) error {
	var r io.Reader

	if path == "" || path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return ErrorDigest.Error(err)
		}
		defer f.Close()
		r = f
	}

	h1 := sha1.New()
	h2 := md5.New()

	if _, err := io.Copy(io.MultiWriter(h1, h2), r); err != nil {
		return ErrorDigest.Error(err)
	}

	fmt.Printf("SHA1(%s)  = %s\n", displayName(path), hex.EncodeToString(h1.Sum(nil)))
	fmt.Printf("MD5(%s)   = %s\n", displayName(path), hex.EncodeToString(h2.Sum(nil)))

	return nil
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}

	return path
}
