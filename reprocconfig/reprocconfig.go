// Package reprocconfig loads a reproc.Options from a YAML file, the
// ambient configuration layer SPEC_FULL.md §2 calls for, generalized
// from the teacher's tester_context/tester_context.go readFromYAML
// helper.
package reprocconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/codecrafters-io/reproc"
)

// yamlRedirect mirrors reproc.Redirect's Mode field as a YAML-friendly
// string, since RedirectMode's int constants aren't meaningful in a
// config file. Handle-mode redirects (RedirectHandle) aren't
// expressible from YAML and are rejected at Options() time.
type yamlRedirect struct {
	Mode         string `yaml:"mode"`
	ParentStream string `yaml:"parent_stream"`
}

// yamlStopAction mirrors reproc.StopAction.
type yamlStopAction struct {
	Action        string `yaml:"action"`
	TimeoutMillis int    `yaml:"timeout_ms"`
}

// Config is the on-disk shape; Options converts it into a reproc.Options.
type Config struct {
	Environment      []string         `yaml:"environment"`
	WorkingDirectory string           `yaml:"working_directory"`
	In               yamlRedirect     `yaml:"stdin"`
	Out              yamlRedirect     `yaml:"stdout"`
	Err              yamlRedirect     `yaml:"stderr"`
	Nonblocking      bool             `yaml:"nonblocking"`
	Stop             []yamlStopAction `yaml:"stop"`
	TimeoutMillis    int              `yaml:"timeout_ms"`
	MemoryLimitBytes int64            `yaml:"memory_limit_bytes"`
	Debug            bool             `yaml:"debug"`
}

// Load reads and parses a YAML config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("reprocconfig: parse %s: %w", path, err)
	}
	return c, nil
}

// Options converts c into a reproc.Options ready for Process.Start.
func (c Config) Options() (reproc.Options, error) {
	in, err := c.In.redirect(reproc.StreamIn)
	if err != nil {
		return reproc.Options{}, err
	}
	out, err := c.Out.redirect(reproc.StreamOut)
	if err != nil {
		return reproc.Options{}, err
	}
	errRedirect, err := c.Err.redirect(reproc.StreamErr)
	if err != nil {
		return reproc.Options{}, err
	}

	stop, err := stopActions(c.Stop)
	if err != nil {
		return reproc.Options{}, err
	}

	return reproc.Options{
		Environment:      c.Environment,
		WorkingDirectory: c.WorkingDirectory,
		In:               in,
		Out:              out,
		Err:              errRedirect,
		Nonblocking:      c.Nonblocking,
		Stop:             stop,
		Timeout:          time.Duration(c.TimeoutMillis) * time.Millisecond,
		MemoryLimitBytes: c.MemoryLimitBytes,
		Debug:            c.Debug,
	}, nil
}

func (r yamlRedirect) redirect(stream reproc.Stream) (reproc.Redirect, error) {
	switch r.Mode {
	case "", "pipe":
		return reproc.Redirect{Mode: reproc.RedirectPipe}, nil
	case "inherit":
		return reproc.Redirect{Mode: reproc.RedirectInherit}, nil
	case "discard":
		return reproc.Redirect{Mode: reproc.RedirectDiscard}, nil
	case "pty":
		return reproc.Redirect{Mode: reproc.RedirectPTY}, nil
	case "parent":
		parent, err := parseStream(r.ParentStream)
		if err != nil {
			return reproc.Redirect{}, err
		}
		return reproc.Redirect{Mode: reproc.RedirectParent, ParentStream: parent}, nil
	default:
		return reproc.Redirect{}, fmt.Errorf("reprocconfig: unknown redirect mode %q for %s", r.Mode, stream)
	}
}

func parseStream(s string) (reproc.Stream, error) {
	switch s {
	case "in":
		return reproc.StreamIn, nil
	case "out":
		return reproc.StreamOut, nil
	case "err":
		return reproc.StreamErr, nil
	default:
		return 0, fmt.Errorf("reprocconfig: unknown stream %q", s)
	}
}

func stopActions(actions []yamlStopAction) ([3]reproc.StopAction, error) {
	var out [3]reproc.StopAction
	if len(actions) == 0 {
		return out, nil
	}
	if len(actions) != 3 {
		return out, fmt.Errorf("reprocconfig: stop must list exactly 3 stages, got %d", len(actions))
	}
	for i, a := range actions {
		kind, err := parseStopAction(a.Action)
		if err != nil {
			return out, err
		}
		timeout := reproc.Timeout(time.Duration(a.TimeoutMillis) * time.Millisecond)
		if a.TimeoutMillis < 0 {
			timeout = reproc.Infinite
		}
		out[i] = reproc.StopAction{Action: kind, Timeout: timeout}
	}
	return out, nil
}

func parseStopAction(s string) (reproc.StopActionKind, error) {
	switch s {
	case "noop":
		return reproc.ActionNoop, nil
	case "wait":
		return reproc.ActionWait, nil
	case "terminate":
		return reproc.ActionTerminate, nil
	case "kill":
		return reproc.ActionKill, nil
	default:
		return 0, fmt.Errorf("reprocconfig: unknown stop action %q", s)
	}
}
