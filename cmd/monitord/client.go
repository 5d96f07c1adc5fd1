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
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sabouaram/monitord/config"
)

// dispatchAction implements the CLI's client mode: load the configuration
// to learn the running daemon's control channel address and credentials,
// then issue the same `POST /<service>` request spec.md §4.G's control
// channel expects a browser or the original monit client to send.
func dispatchAction(opts options, verb, target string) error {
	cfg, err := config.Load(opts.confFile)
	if err != nil {
		return ErrorConfigLoad.Error(err)
	}

	chCfg, err := cfg.ChannelConfig()
	if err != nil {
		return ErrorConfigLoad.Error(err)
	}

	if chCfg.Listen == "" {
		return ErrorChannelUnconfigured.Error(nil)
	}

	client := &http.Client{Timeout: 10 * time.Second}

	scheme := "http"
	host := chCfg.Listen

	switch {
	case chCfg.Unix:
		client.Transport = &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", chCfg.Listen)
			},
		}
		host = "unix"

	case chCfg.TLS != nil:
		scheme = "https"
		client.Transport = &http.Transport{
			TLSClientConfig: chCfg.TLS.TlsConfig(hostOf(chCfg.Listen)),
		}
	}

	targetURL := fmt.Sprintf("%s://%s/%s", scheme, host, url.PathEscape(target))

	req, err := http.NewRequest(http.MethodPost, targetURL, strings.NewReader("action="+url.QueryEscape(verb)))
	if err != nil {
		return ErrorAction.Error(err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(chCfg.User, chCfg.Pass)

	resp, err := client.Do(req)
	if err != nil {
		return ErrorAction.Error(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return ErrorAction.Error(fmt.Errorf("%s: %s", resp.Status, extractMessage(string(body))))
	}

	return nil
}

func hostOf(listen string) string {
	h, _, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	return h
}

// extractMessage pulls the text between <p> and </p> out of an error
// response body, matching spec.md §4.G's documented client-side contract
// for reading the control channel's HTML-fragment error bodies.
func extractMessage(body string) string {
	const open = "<p>"
	const close = "</p>"

	i := strings.Index(body, open)
	if i < 0 {
		return body
	}

	j := strings.Index(body[i:], close)
	if j < 0 {
		return body[i+len(open):]
	}

	return body[i+len(open) : i+j]
}
