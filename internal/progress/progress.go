// Package progress reports setup steps to the user, with a spinner on
// interactive terminals and plain colored lines everywhere else.
package progress

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"moddable-setup/internal/logger"
)

// Reporter receives step lifecycle events from the runner.
type Reporter interface {
	Start(msg string)
	Info(msg string)
	Warn(msg string)
	Succeed(msg string)
	Fail(msg string)
}

// New picks a spinner when stdout is a terminal and plain output otherwise.
func New() Reporter {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return &Spinner{}
	}
	return Plain{}
}

// Plain prints one colored line per event through the logger.
type Plain struct{}

func (Plain) Start(msg string)   { logger.Info("[INFO] %s...\n", msg) }
func (Plain) Info(msg string)    { logger.Info("[INFO] %s\n", msg) }
func (Plain) Warn(msg string)    { logger.Warn("[WARN] %s\n", msg) }
func (Plain) Succeed(msg string) { logger.Info("[INFO] %s: done\n", msg) }
func (Plain) Fail(msg string)    { logger.Error("[ERROR] %s\n", msg) }

// Spinner animates the running step with a pterm spinner.
type Spinner struct {
	active *pterm.SpinnerPrinter
}

func (s *Spinner) Start(msg string) {
	s.stop()
	sp, err := pterm.DefaultSpinner.WithRemoveWhenDone(false).Start(msg)
	if err != nil {
		Plain{}.Start(msg)
		return
	}
	s.active = sp
}

func (s *Spinner) Info(msg string) {
	s.stop()
	pterm.Info.Println(msg)
}

func (s *Spinner) Warn(msg string) {
	s.stop()
	pterm.Warning.Println(msg)
}

func (s *Spinner) Succeed(msg string) {
	if s.active == nil {
		pterm.Success.Println(msg)
		return
	}
	s.active.Success(msg)
	s.active = nil
}

func (s *Spinner) Fail(msg string) {
	if s.active == nil {
		pterm.Error.Println(msg)
		return
	}
	s.active.Fail(msg)
	s.active = nil
}

func (s *Spinner) stop() {
	if s.active != nil {
		_ = s.active.Stop()
		s.active = nil
	}
}
