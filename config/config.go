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

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/sabouaram/monitord/certificates"
	"github.com/sabouaram/monitord/certificates/auth"
	"github.com/sabouaram/monitord/certificates/tlsversion"
	"github.com/sabouaram/monitord/channel"
	"github.com/sabouaram/monitord/duration"
	"github.com/sabouaram/monitord/service"
)

var validate = validator.New()

// CommandFile is the on-disk shape of a service.Command.
type CommandFile struct {
	Argv    []string `mapstructure:"argv"`
	UID     *uint32  `mapstructure:"uid"`
	GID     *uint32  `mapstructure:"gid"`
	Timeout duration.Duration `mapstructure:"timeout"`
}

// RuleFile is the on-disk shape of a service.Rule.
type RuleFile struct {
	Kind      string  `mapstructure:"kind" validate:"required"`
	Op        string  `mapstructure:"op" validate:"required"`
	Threshold float64 `mapstructure:"threshold"`
	Trigger   int     `mapstructure:"trigger"`
	Action    string  `mapstructure:"action" validate:"required"`
}

// TLSFile is the on-disk shape of a channel listener's TLS context.
type TLSFile struct {
	CertFile            string `mapstructure:"certfile"`
	KeyFile             string `mapstructure:"keyfile"`
	RootCAFile          string `mapstructure:"rootcafile"`
	ClientCAFile        string `mapstructure:"clientcafile"`
	ClientAuth          string `mapstructure:"clientauth"`
	FingerprintMD5      string `mapstructure:"fingerprintmd5"`
	AllowSelfSigned     bool   `mapstructure:"allowselfsigned"`
	AllowAnyExtKeyUsage bool   `mapstructure:"allowanyextkeyusage"`
	VersionMin          string `mapstructure:"versionmin"`
	VersionMax          string `mapstructure:"versionmax"`
}

// ChannelFile is the on-disk shape of the control channel listener.
type ChannelFile struct {
	Listen string   `mapstructure:"listen" validate:"required"`
	Unix   bool     `mapstructure:"unix"`
	User   string   `mapstructure:"user" validate:"required"`
	Pass   string   `mapstructure:"pass" validate:"required"`
	TLS    *TLSFile `mapstructure:"tls"`
}

// ServiceFile is the on-disk shape of a service.Service.
type ServiceFile struct {
	Name       string       `mapstructure:"name" validate:"required"`
	Kind       string       `mapstructure:"kind" validate:"required"`
	Host       string       `mapstructure:"host"`
	Port       int          `mapstructure:"port"`
	Protocol   string       `mapstructure:"protocol"`
	PIDFile    string       `mapstructure:"pidfile"`
	Monitor    bool         `mapstructure:"monitor"`
	Dependants []string     `mapstructure:"dependants"`
	Start      *CommandFile `mapstructure:"start"`
	Stop       *CommandFile `mapstructure:"stop"`
	Restart    *CommandFile `mapstructure:"restart"`
	Rules      []RuleFile   `mapstructure:"rules"`
}

// File is the full decoded configuration, the structured replacement this
// daemon uses instead of a bespoke configuration grammar.
type File struct {
	Poll      time.Duration `mapstructure:"poll" validate:"required"`
	StateFile string        `mapstructure:"statefile"`
	Group     string        `mapstructure:"group"`
	Channel   *ChannelFile  `mapstructure:"channel"`
	Services  []ServiceFile `mapstructure:"services" validate:"dive"`
}

// Load decodes path through viper into a File and validates its required
// fields via go-playground/validator/v10, the same library the teacher's
// httpserver/certificates configs validate with.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, ErrorFileMissing.Error(err)
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, ErrorDecodeFailed.Error(err)
	}

	if err := validate.Struct(&f); err != nil {
		return nil, ErrorValidationFailed.Error(err)
	}

	return &f, nil
}

// Registry builds a service.Registry from the decoded File, resolving
// command, rule, and kind strings into their service package enums.
func (f *File) Registry() (*service.Registry, error) {
	reg := service.NewRegistry()

	for _, sf := range f.Services {
		s := service.New(sf.Name, parseKind(sf.Kind))
		s.Host = sf.Host
		s.Port = sf.Port
		s.Protocol = sf.Protocol
		s.PIDFile = sf.PIDFile
		s.Dependants = sf.Dependants
		s.Start = toCommand(sf.Start)
		s.Stop = toCommand(sf.Stop)
		s.Restart = toCommand(sf.Restart)

		if sf.Monitor {
			s.State = service.MonitorYes
		}

		for _, rf := range sf.Rules {
			s.Rules = append(s.Rules, &service.Rule{
				Kind:      parseRuleKind(rf.Kind),
				Op:        parseOperator(rf.Op),
				Threshold: rf.Threshold,
				Trigger:   rf.Trigger,
				Action:    parseAction(rf.Action),
			})
		}

		reg.Add(s)
	}

	for _, sf := range f.Services {
		for _, dep := range sf.Dependants {
			if _, ok := reg.Get(dep); !ok {
				return nil, ErrorUnknownDependency.Error(fmt.Errorf("%s -> %s", sf.Name, dep))
			}
		}
	}

	if f.Group != "" {
		names := make([]string, 0, len(f.Services))
		for _, sf := range f.Services {
			names = append(names, sf.Name)
		}
		reg.AddGroup(&service.Group{Name: f.Group, Services: names})
	}

	return reg, nil
}

// ChannelConfig builds a channel.Config from the decoded File's channel
// block, constructing a certificates.TLSConfig when a TLS block is given.
func (f *File) ChannelConfig() (channel.Config, error) {
	if f.Channel == nil {
		return channel.Config{}, nil
	}

	cfg := channel.Config{
		Listen: f.Channel.Listen,
		Unix:   f.Channel.Unix,
		User:   f.Channel.User,
		Pass:   f.Channel.Pass,
	}

	if f.Channel.TLS != nil {
		tc, err := buildTLS(f.Channel.TLS)
		if err != nil {
			return channel.Config{}, err
		}
		cfg.TLS = tc
	}

	return cfg, nil
}

func buildTLS(t *TLSFile) (certificates.TLSConfig, error) {
	c := certificates.New()

	if t.CertFile != "" && t.KeyFile != "" {
		if err := c.AddCertificatePairFile(t.KeyFile, t.CertFile); err != nil {
			return nil, err
		}
	}

	if t.RootCAFile != "" {
		if err := c.AddRootCAFile(t.RootCAFile); err != nil {
			return nil, err
		}
	}

	if t.ClientCAFile != "" {
		if err := c.AddClientCAFile(t.ClientCAFile); err != nil {
			return nil, err
		}
		c.SetClientAuth(auth.Parse(t.ClientAuth))
	}

	c.SetFingerprintMD5(strings.ToLower(t.FingerprintMD5))
	c.SetAllowSelfSigned(t.AllowSelfSigned)
	c.SetAllowAnyExtKeyUsage(t.AllowAnyExtKeyUsage)

	if t.VersionMin != "" {
		c.SetVersionMin(tlsversion.Parse(t.VersionMin))
	}
	if t.VersionMax != "" {
		c.SetVersionMax(tlsversion.Parse(t.VersionMax))
	}

	return c, nil
}

func toCommand(c *CommandFile) *service.Command {
	if c == nil {
		return nil
	}

	return &service.Command{
		Argv:    c.Argv,
		UID:     c.UID,
		GID:     c.GID,
		Timeout: c.Timeout,
	}
}

func parseKind(s string) service.Kind {
	switch strings.ToLower(s) {
	case "filesystem":
		return service.KindFilesystem
	case "directory":
		return service.KindDirectory
	case "file":
		return service.KindFile
	case "process":
		return service.KindProcess
	case "host", "remotehost":
		return service.KindRemoteHost
	case "system":
		return service.KindSystem
	case "fifo":
		return service.KindFifo
	case "program":
		return service.KindProgram
	case "network":
		return service.KindNetwork
	default:
		return service.KindProcess
	}
}

func parseRuleKind(s string) service.RuleKind {
	switch strings.ToLower(s) {
	case "checksum":
		return service.RuleChecksum
	case "resource":
		return service.RuleResource
	case "connection":
		return service.RuleConnection
	case "uptime":
		return service.RuleUptime
	case "permission":
		return service.RulePermission
	case "content":
		return service.RuleContent
	default:
		return service.RuleResource
	}
}

func parseOperator(s string) service.Operator {
	switch s {
	case ">":
		return service.OpGreaterThan
	case "<":
		return service.OpLessThan
	case "==":
		return service.OpEqual
	case "!=":
		return service.OpNotEqual
	case "changed":
		return service.OpChanged
	default:
		return service.OpGreaterThan
	}
}

func parseAction(s string) service.Action {
	if a, ok := service.ParseAction(s); ok {
		return a
	}

	switch strings.ToLower(s) {
	case "alert":
		return service.ActionAlert
	case "exec":
		return service.ActionExec
	case "ignore":
		return service.ActionIgnore
	default:
		return service.ActionAlert
	}
}
