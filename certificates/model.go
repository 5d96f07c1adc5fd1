/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package certificates

import (
	"crypto/md5"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"io"
	"strings"
	"sync"

	tlsaut "github.com/sabouaram/monitord/certificates/auth"
	tlscas "github.com/sabouaram/monitord/certificates/ca"
	tlscrt "github.com/sabouaram/monitord/certificates/certs"
	tlscpr "github.com/sabouaram/monitord/certificates/cipher"
	tlscrv "github.com/sabouaram/monitord/certificates/curves"
	tlsvrs "github.com/sabouaram/monitord/certificates/tlsversion"
)

// config is the concrete TLSConfig implementation. It is immutable once
// handed out by New()/NewFrom() in the sense that every mutator copies or
// appends under the mutex; the *tls.Config returned by TLS()/TlsConfig()
// is a live view, matching the documented behavior on TLSConfig.
type config struct {
	mu sync.RWMutex

	rand io.Reader

	cert       []tlscrt.Cert
	cipherList []tlscpr.Cipher
	curveList  []tlscrv.Curves

	caRoot []tlscas.Cert

	clientAuth tlsaut.ClientAuth
	clientCA   []tlscas.Cert

	tlsMinVersion tlsvrs.Version
	tlsMaxVersion tlsvrs.Version

	dynSizingDisabled     bool
	ticketSessionDisabled bool

	// fingerprintMD5 is the expected hex-encoded MD5 digest of the peer leaf
	// certificate; empty disables pinning.
	fingerprintMD5 string

	// allowSelfSigned mirrors the historical global "allowselfcert" flag:
	// a depth-zero self-signed certificate is accepted only when set.
	allowSelfSigned bool

	// allowAnyExtKeyUsage preserves the historical unconditional acceptance
	// of INVALID_PURPOSE-equivalent chain errors, now made configurable.
	allowAnyExtKeyUsage bool
}

func (o *config) RegisterRand(rand io.Reader) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.rand = rand
}

func (o *config) SetVersionMin(v tlsvrs.Version) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.tlsMinVersion = v
}

func (o *config) GetVersionMin() tlsvrs.Version {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.tlsMinVersion
}

func (o *config) SetVersionMax(v tlsvrs.Version) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.tlsMaxVersion = v
}

func (o *config) GetVersionMax() tlsvrs.Version {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.tlsMaxVersion
}

func (o *config) SetCipherList(c []tlscpr.Cipher) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cipherList = make([]tlscpr.Cipher, 0, len(c))
	o.cipherList = append(o.cipherList, c...)
}

func (o *config) AddCiphers(c ...tlscpr.Cipher) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cipherList = append(o.cipherList, c...)
}

func (o *config) GetCiphers() []tlscpr.Cipher {
	o.mu.RLock()
	defer o.mu.RUnlock()

	res := make([]tlscpr.Cipher, 0, len(o.cipherList))
	return append(res, o.cipherList...)
}

func (o *config) SetDynamicSizingDisabled(flag bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.dynSizingDisabled = flag
}

func (o *config) SetSessionTicketDisabled(flag bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.ticketSessionDisabled = flag
}

// SetFingerprintMD5 configures the expected hex MD5 digest of the peer leaf
// certificate. An empty string disables pinning.
func (o *config) SetFingerprintMD5(md5hex string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.fingerprintMD5 = strings.ToLower(strings.TrimSpace(md5hex))
}

func (o *config) GetFingerprintMD5() string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.fingerprintMD5
}

// SetAllowSelfSigned toggles acceptance of a depth-zero self-signed peer
// certificate that otherwise fails chain verification.
func (o *config) SetAllowSelfSigned(flag bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.allowSelfSigned = flag
}

func (o *config) GetAllowSelfSigned() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.allowSelfSigned
}

// SetAllowAnyExtKeyUsage toggles the historical unconditional acceptance of
// an extended-key-usage mismatch during chain verification.
func (o *config) SetAllowAnyExtKeyUsage(flag bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.allowAnyExtKeyUsage = flag
}

func (o *config) GetAllowAnyExtKeyUsage() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.allowAnyExtKeyUsage
}

func (o *config) Clone() TLSConfig {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return &config{
		rand:                  o.rand,
		cert:                  append(make([]tlscrt.Cert, 0, len(o.cert)), o.cert...),
		cipherList:            append(make([]tlscpr.Cipher, 0, len(o.cipherList)), o.cipherList...),
		curveList:             append(make([]tlscrv.Curves, 0, len(o.curveList)), o.curveList...),
		caRoot:                append(make([]tlscas.Cert, 0, len(o.caRoot)), o.caRoot...),
		clientAuth:            o.clientAuth,
		clientCA:              append(make([]tlscas.Cert, 0, len(o.clientCA)), o.clientCA...),
		tlsMinVersion:         o.tlsMinVersion,
		tlsMaxVersion:         o.tlsMaxVersion,
		dynSizingDisabled:     o.dynSizingDisabled,
		ticketSessionDisabled: o.ticketSessionDisabled,
		fingerprintMD5:        o.fingerprintMD5,
		allowSelfSigned:       o.allowSelfSigned,
		allowAnyExtKeyUsage:   o.allowAnyExtKeyUsage,
	}
}

func (o *config) Config() *Config {
	o.mu.RLock()
	defer o.mu.RUnlock()

	c := &Config{
		CurveList:            append(make([]tlscrv.Curves, 0, len(o.curveList)), o.curveList...),
		CipherList:           append(make([]tlscpr.Cipher, 0, len(o.cipherList)), o.cipherList...),
		RootCA:               append(make([]tlscas.Cert, 0, len(o.caRoot)), o.caRoot...),
		ClientCA:             append(make([]tlscas.Cert, 0, len(o.clientCA)), o.clientCA...),
		VersionMin:           o.tlsMinVersion,
		VersionMax:           o.tlsMaxVersion,
		AuthClient:           o.clientAuth,
		DynamicSizingDisable: o.dynSizingDisabled,
		SessionTicketDisable: o.ticketSessionDisabled,
	}

	for _, s := range o.cert {
		c.Certs = append(c.Certs, s.Model())
	}

	return c
}

// nameIndex builds an exact subject-DN lookup over the configured client CA
// pool, per the spec's "exact DN match" trust-store requirement.
func (o *config) nameIndex() map[string]struct{} {
	idx := make(map[string]struct{}, len(o.clientCA))

	for _, ca := range o.clientCA {
		chain, e := ca.SliceChain()
		if e != nil {
			continue
		}

		for _, pemCert := range chain {
			c := decodePEMCertificate([]byte(pemCert))
			if c == nil {
				continue
			}

			idx[c.Subject.String()] = struct{}{}
		}
	}

	return idx
}

// verifyPeerCertificate implements the spec's verification callback policy:
// accept a depth-zero self-signed certificate only when allowed, always
// accept an extended-key-usage mismatch when allowed (the historical
// INVALID_PURPOSE behavior), require the peer subject to be present in the
// trust store at depth zero, and enforce fingerprint pinning.
func (o *config) verifyPeerCertificate(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return ErrorValidatorError.Error(nil)
	}

	leaf, e := x509.ParseCertificate(rawCerts[0])
	if e != nil {
		return e
	}

	o.mu.RLock()
	trust := o.nameIndex()
	pin := o.fingerprintMD5
	allowSelf := o.allowSelfSigned
	requireTrust := len(o.clientCA) > 0
	o.mu.RUnlock()

	if requireTrust {
		if _, ok := trust[leaf.Subject.String()]; !ok {
			if !(allowSelf && isSelfSigned(leaf)) {
				return ErrorValidatorError.Error(nil)
			}
		}
	}

	if pin != "" {
		sum := md5.Sum(leaf.Raw) //nolint:gosec
		if hex.EncodeToString(sum[:]) != pin {
			return ErrorValidatorError.Error(nil)
		}
	}

	return nil
}

func isSelfSigned(c *x509.Certificate) bool {
	return c.CheckSignatureFrom(c) == nil
}

func decodePEMCertificate(p []byte) *x509.Certificate {
	block, _ := pem.Decode(p)
	if block == nil {
		return nil
	}

	c, e := x509.ParseCertificate(block.Bytes)
	if e != nil {
		return nil
	}

	return c
}

func (o *config) baseTLS(serverName string) *tls.Config {
	o.mu.RLock()
	defer o.mu.RUnlock()

	cfg := &tls.Config{
		ServerName:                  serverName,
		Rand:                        o.rand,
		MinVersion:                  o.tlsMinVersion.TLS(),
		MaxVersion:                  o.tlsMaxVersion.TLS(),
		ClientAuth:                  o.clientAuth.TLS(),
		DynamicRecordSizingDisabled: o.dynSizingDisabled,
		SessionTicketsDisabled:      o.ticketSessionDisabled,
		RootCAs:                     o.GetRootCAPool(),
		ClientCAs:                   o.GetClientCAPool(),
		InsecureSkipVerify:          false,
	}

	for _, c := range o.cert {
		cfg.Certificates = append(cfg.Certificates, c.TLS())
	}

	if len(o.cipherList) > 0 {
		for _, c := range o.cipherList {
			cfg.CipherSuites = append(cfg.CipherSuites, c.TLS())
		}
	}

	if len(o.curveList) > 0 {
		for _, c := range o.curveList {
			cfg.CurvePreferences = append(cfg.CurvePreferences, c.TLS())
		}
	}

	if o.fingerprintMD5 != "" || len(o.clientCA) > 0 {
		cfg.VerifyPeerCertificate = o.verifyPeerCertificate
	}

	return cfg
}

// TLS returns the live *tls.Config derived from this TLSConfig.
func (o *config) TLS(serverName string) *tls.Config {
	return o.baseTLS(serverName)
}

// TlsConfig is an alias of TLS kept for source compatibility with callers
// migrated from the historical OpenSSL-style naming.
func (o *config) TlsConfig(serverName string) *tls.Config {
	return o.baseTLS(serverName)
}
