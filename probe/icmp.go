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

package probe

import (
	"context"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

func resolveIPAddr(host string) (*net.IPAddr, error) {
	return net.ResolveIPAddr("ip4", host)
}

// CheckICMP sends a single raw ICMPv4 echo request to host and waits for a
// matching echo reply within timeout. Requires CAP_NET_RAW (or an
// equivalent privileged context) to open the raw socket.
func CheckICMP(ctx context.Context, host string, timeout time.Duration) error {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return err
	}
	defer conn.Close()

	id := os.Getpid() & 0xffff

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  1,
			Data: []byte("monitord-probe"),
		},
	}

	wb, err := msg.Marshal(nil)
	if err != nil {
		return err
	}

	dst, err := resolveIPAddr(host)
	if err != nil {
		return err
	}

	if _, err = conn.WriteTo(wb, dst); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	if err = conn.SetReadDeadline(deadline); err != nil {
		return err
	}

	rb := make([]byte, 1500)

	for time.Now().Before(deadline) {
		n, peer, err := conn.ReadFrom(rb)
		if err != nil {
			return err
		}

		if peer.String() != dst.String() {
			continue
		}

		rm, err := icmp.ParseMessage(1, rb[:n])
		if err != nil {
			return err
		}

		if rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}

		if echo, ok := rm.Body.(*icmp.Echo); ok && echo.ID == id {
			return nil
		}
	}

	return ErrorUnexpectedResponse.Error(nil)
}
