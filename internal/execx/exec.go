// Package execx runs the external collaborator tools (package managers, git,
// cmake, make, build scripts) as blocking subprocesses.
package execx

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"moddable-setup/internal/logger"
	"moddable-setup/internal/setuperr"
)

// Commander is the subprocess surface used by the setup flows.
type Commander interface {
	// LookPath finds name on the search path.
	LookPath(name string) (string, error)
	// Run executes name in dir with output streamed to the terminal.
	Run(ctx context.Context, dir, name string, args ...string) error
	// Output executes name in dir and returns its trimmed stdout.
	Output(ctx context.Context, dir, name string, args ...string) (string, error)
}

// System runs real processes. Children inherit the process environment, so
// variables set through envmut.OSStore are visible to them.
type System struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewSystem returns a System streaming to the process stdout and stderr.
func NewSystem() *System {
	return &System{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (s *System) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (s *System) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	logger.Debug("[DEBUG] Running command: %s (in %q)\n", strings.Join(cmd.Args, " "), dir)
	if err := cmd.Run(); err != nil {
		return setuperr.Subprocess(strings.Join(cmd.Args, " "), err)
	}
	return nil
}

func (s *System) Output(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	logger.Debug("[DEBUG] Running command: %s (in %q)\n", strings.Join(cmd.Args, " "), dir)
	out, err := cmd.Output()
	if err != nil {
		logger.Debug("[DEBUG] Output: %s\n", stderr.String())
		return "", setuperr.Subprocess(strings.Join(cmd.Args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CommandLine renders name and args the way they appear in logs and errors.
func CommandLine(name string, args ...string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
