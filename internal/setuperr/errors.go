// Package setuperr defines the error kinds shared by every setup flow.
//
// All kinds are fatal to the running flow. Callers wrap them with context and
// the CLI maps any of them to exit status 1; errors.Is picks the kind back out.
package setuperr

import (
	"errors"
	"fmt"
)

var (
	// ErrPrerequisite marks a required external tool or installation that is missing.
	ErrPrerequisite = errors.New("prerequisite missing")

	// ErrSubprocess marks an external tool that exited non-zero or could not be started.
	ErrSubprocess = errors.New("command failed")

	// ErrPersistence marks a failure to read or write the exports file or registry.
	ErrPersistence = errors.New("cannot persist environment")

	// ErrUnsupported marks a flow or store that does not exist on the current OS.
	ErrUnsupported = errors.New("unsupported platform")
)

// Prerequisite reports that what is not available, along with a remediation hint.
func Prerequisite(what, hint string) error {
	return fmt.Errorf("%w: %s: %s", ErrPrerequisite, what, hint)
}

// Persistence wraps an I/O error raised while performing op on target.
func Persistence(op, target string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrPersistence, op, target, err)
}

// Subprocess wraps the error returned by the command line cmdline.
func Subprocess(cmdline string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSubprocess, cmdline, err)
}

// Unsupported reports that what cannot run on goos.
func Unsupported(what, goos string) error {
	return fmt.Errorf("%w: %s is not available on %s", ErrUnsupported, what, goos)
}
