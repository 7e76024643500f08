// Package exectest provides a recording execx.Commander for tests.
package exectest

import (
	"context"
	"fmt"
	"os/exec"

	"moddable-setup/internal/execx"
	"moddable-setup/internal/setuperr"
)

// Call is one recorded Run or Output invocation.
type Call struct {
	Dir  string
	Line string
}

// Commander records every command instead of running it.
type Commander struct {
	// Binaries are the names LookPath resolves.
	Binaries map[string]bool
	// Outputs maps a command line to the stdout returned by Output.
	Outputs map[string]string
	// Failures maps a command line to a failure returned by Run or Output.
	Failures map[string]error
	// OnRun, when set, is invoked for every successful Run call.
	OnRun func(call Call)

	Calls []Call
}

var _ execx.Commander = (*Commander)(nil)

// New returns a Commander on whose search path the given binaries exist.
func New(binaries ...string) *Commander {
	c := &Commander{
		Binaries: map[string]bool{},
		Outputs:  map[string]string{},
		Failures: map[string]error{},
	}
	for _, b := range binaries {
		c.Binaries[b] = true
	}
	return c
}

func (c *Commander) LookPath(name string) (string, error) {
	if c.Binaries[name] {
		return "/usr/bin/" + name, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func (c *Commander) Run(_ context.Context, dir, name string, args ...string) error {
	call := c.record(dir, name, args)
	if err := c.failure(call); err != nil {
		return err
	}
	if c.OnRun != nil {
		c.OnRun(call)
	}
	return nil
}

func (c *Commander) Output(_ context.Context, dir, name string, args ...string) (string, error) {
	call := c.record(dir, name, args)
	if err := c.failure(call); err != nil {
		return "", err
	}
	return c.Outputs[call.Line], nil
}

// Lines returns the recorded command lines in order.
func (c *Commander) Lines() []string {
	lines := make([]string, len(c.Calls))
	for i, call := range c.Calls {
		lines[i] = call.Line
	}
	return lines
}

func (c *Commander) record(dir, name string, args []string) Call {
	call := Call{Dir: dir, Line: execx.CommandLine(name, args...)}
	c.Calls = append(c.Calls, call)
	return call
}

func (c *Commander) failure(call Call) error {
	if err, ok := c.Failures[call.Line]; ok {
		return setuperr.Subprocess(call.Line, fmt.Errorf("exit status 1: %w", err))
	}
	return nil
}
