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

// Command monitord is the monitoring daemon described by this repository:
// a single binary that either runs the validator/control-engine/control-
// channel loop in the foreground, or, given an action argument, dispatches
// that action to an already-running instance's control channel.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sabouaram/monitord/config"
	"github.com/sabouaram/monitord/logger/level"
)

// version is set at build time via -ldflags, matching the teacher's own
// convention for reporting build provenance through -V.
var version = "dev"

// options collects every global flag from spec.md §6's CLI surface.
type options struct {
	confFile   string
	pollSec    int
	group      string
	logFile    string
	pidFile    string
	stateFile  string
	noDaemon   bool
	syntaxOnly bool
	verbose    int
	digestFile string
	digestSet  bool
	showID     bool
	resetID    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:     "monitord [action] [service|all]",
		Short:   "a dependency-aware service monitoring daemon",
		Version: version,
		Args:    cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.digestSet {
				return runDigest(opts.digestFile)
			}

			if opts.showID {
				fmt.Println(instanceID(opts))
				return nil
			}

			if opts.resetID {
				return resetInstanceID(opts)
			}

			if opts.syntaxOnly {
				if _, err := config.Load(opts.confFile); err != nil {
					return ErrorConfigLoad.Error(err)
				}
				fmt.Println("configuration: no syntax errors found")
				return nil
			}

			if len(args) == 0 {
				return runDaemon(opts)
			}

			return runAction(opts, args)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.confFile, "conf", "c", "", "configuration file")
	flags.IntVarP(&opts.pollSec, "delay", "d", 0, "poll cycle delay, in seconds (overrides the configuration file)")
	flags.StringVarP(&opts.group, "group", "g", "", "restrict the action to the named group")
	flags.StringVarP(&opts.logFile, "log", "l", "", "log file path (or \"syslog\")")
	flags.StringVarP(&opts.pidFile, "pidfile", "p", "", "pid file path")
	flags.StringVarP(&opts.stateFile, "statefile", "s", "", "persistent state file path (overrides the configuration file)")
	flags.BoolVarP(&opts.noDaemon, "foreground", "I", false, "do not daemonize (accepted for compatibility; this daemon never backgrounds itself)")
	flags.BoolVarP(&opts.syntaxOnly, "test", "t", false, "check the configuration file's syntax, then exit")
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase verbosity (repeatable)")
	flags.StringVarP(&opts.digestFile, "digest", "H", "", "print the SHA1 and MD5 digests of file (or stdin if omitted), then exit")
	flags.Lookup("digest").NoOptDefVal = "-"
	flags.BoolVar(&opts.showID, "id", false, "print this instance's unique id, then exit")
	flags.BoolVar(&opts.resetID, "resetid", false, "generate a new unique id for this instance, then exit")

	root.PreRunE = func(cmd *cobra.Command, args []string) error {
		opts.digestSet = cmd.Flags().Changed("digest")
		return nil
	}

	return root
}

// runAction implements the CLI's client-dispatch mode: args[0] is the verb
// (one of the Actions named in spec.md §6, plus reload and quit, which are
// also sent to the control channel, and the local-only
// validate/procmatch/status/summary verbs), args[1] is the optional
// service name or "all".
func runAction(opts options, args []string) error {
	verb := args[0]
	target := ""
	if len(args) > 1 {
		target = args[1]
	}

	switch verb {
	case "start", "stop", "restart", "monitor", "unmonitor":
		if target == "" {
			return ErrorUsage.Error(fmt.Errorf("action %q requires a service name or \"all\"", verb))
		}
		return dispatchToTargets(opts, verb, target)

	case "reload":
		return dispatchToTargets(opts, "reload", "_")

	case "status", "summary":
		return printStatus(opts)

	case "quit":
		return dispatchToTargets(opts, "stop", "all")

	case "validate":
		_, err := config.Load(opts.confFile)
		if err != nil {
			return ErrorConfigLoad.Error(err)
		}
		fmt.Println("configuration: no syntax errors found")
		return nil

	case "procmatch":
		return procMatch(opts, target)

	default:
		return ErrorUsage.Error(fmt.Errorf("unknown action %q", verb))
	}
}

// dispatchToTargets resolves "all" to every configured service name before
// calling dispatchAction once per resolved name.
func dispatchToTargets(opts options, verb, target string) error {
	if target != "all" {
		return dispatchAction(opts, verb, target)
	}

	cfg, err := config.Load(opts.confFile)
	if err != nil {
		return ErrorConfigLoad.Error(err)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return ErrorConfigLoad.Error(err)
	}

	for _, s := range reg.All() {
		if err := dispatchAction(opts, verb, s.Name); err != nil {
			return err
		}
	}

	return nil
}

func printStatus(opts options) error {
	cfg, err := config.Load(opts.confFile)
	if err != nil {
		return ErrorConfigLoad.Error(err)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return ErrorConfigLoad.Error(err)
	}

	for _, s := range reg.All() {
		fmt.Printf("%-24s %-12s %-10s\n", s.Name, s.Kind, s.State)
	}

	return nil
}

// procMatch implements the procmatch action: list the running processes
// whose command line matches pattern, the same way the original daemon's
// "test a pattern before writing a process rule" convenience worked.
func procMatch(opts options, pattern string) error {
	if pattern == "" {
		return ErrorUsage.Error(fmt.Errorf("procmatch requires a pattern argument"))
	}

	names, err := matchingProcesses(pattern)
	if err != nil {
		return ErrorAction.Error(err)
	}

	if len(names) == 0 {
		fmt.Println("no matching processes")
		return nil
	}

	for _, n := range names {
		fmt.Println(n)
	}

	return nil
}

func verboseToLevel(v int) level.Level {
	switch {
	case v >= 2:
		return level.DebugLevel
	case v == 1:
		return level.InfoLevel
	default:
		return level.WarnLevel
	}
}
