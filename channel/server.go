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
	"context"
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sabouaram/monitord/control"
	"github.com/sabouaram/monitord/service"
)

// Server is the running control channel listener.
type Server struct {
	cfg Config
	reg *service.Registry
	ctl *control.Engine
	srv *http.Server
	lis net.Listener
}

// New validates cfg and builds a Server bound to reg/ctl; it does not
// start listening until Start is called.
func New(cfg Config, reg *service.Registry, ctl *control.Engine) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, ErrorParamsEmpty.Error(err)
	}

	s := &Server{cfg: cfg, reg: reg, ctl: ctl}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)

	s.srv = &http.Server{Handler: mux}

	return s, nil
}

// Start opens the listener (TCP or UNIX, optionally TLS-wrapped) and begins
// serving in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	network := "tcp"
	if s.cfg.Unix {
		network = "unix"
	}

	lis, err := net.Listen(network, s.cfg.Listen)
	if err != nil {
		return err
	}

	if s.cfg.TLS != nil {
		lis = tlsListener(lis, s.cfg.TLS)
	}

	s.lis = lis

	go func() {
		_ = s.srv.Serve(lis)
	}()

	return nil
}

// Stop shuts the listener down, letting in-flight requests finish.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handle implements the single-route contract: POST /<service>,
// Authorization: Basic, body action=<verb>.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, pass, ok := r.BasicAuth()
	if !ok || !validCredential(user, pass, s.cfg.User, s.cfg.Pass) {
		w.Header().Set("WWW-Authenticate", `Basic realm="control"`)
		http.Error(w, "<h2>Unauthorized</h2><p>invalid credentials</p>", http.StatusUnauthorized)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" {
		http.Error(w, "<h2>Bad Request</h2><p>missing service name</p>", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "<h2>Bad Request</h2><p>malformed body</p>", http.StatusBadRequest)
		return
	}

	act, ok := service.ParseAction(r.FormValue("action"))
	if !ok {
		http.Error(w, fmt.Sprintf("<h2>Bad Request</h2><p>unknown action %q</p>", r.FormValue("action")), http.StatusBadRequest)
		return
	}

	if _, ok = s.reg.Get(name); !ok {
		http.Error(w, fmt.Sprintf("<h2>Not Found</h2><p>unknown service %q</p>", name), http.StatusNotFound)
		return
	}

	var err error

	switch act {
	case service.ActionStart:
		err = s.ctl.Start(r.Context(), name)
	case service.ActionStop:
		err = s.ctl.Stop(r.Context(), name)
	case service.ActionRestart:
		err = s.ctl.Restart(r.Context(), name)
	case service.ActionMonitor:
		err = s.ctl.Monitor(r.Context(), name)
	case service.ActionUnmonitor:
		err = s.ctl.Unmonitor(r.Context(), name)
	}

	if err != nil {
		http.Error(w, fmt.Sprintf("<h2>Internal Error</h2><p>%s</p>", err.Error()), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func validCredential(user, pass, wantUser, wantPass string) bool {
	uOK := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	pOK := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1

	return uOK && pOK
}
