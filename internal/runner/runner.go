// Package runner executes a setup flow: an ordered list of fallible steps
// that halts on the first failure.
package runner

import (
	"context"
	"fmt"

	"moddable-setup/internal/logger"
	"moddable-setup/internal/progress"
)

// Step is one unit of a setup flow.
type Step struct {
	// Name is shown while the step runs.
	Name string
	// Skip reports whether the step's target state already exists, with a
	// message describing it. Nil means the step always runs.
	Skip func(ctx context.Context) (bool, string, error)
	// Run performs the step. It may return a status message to report.
	Run func(ctx context.Context) (string, error)
}

// Runner runs steps in order.
type Runner struct {
	reporter progress.Reporter
}

// New returns a Runner reporting to r.
func New(r progress.Reporter) *Runner {
	return &Runner{reporter: r}
}

// Run executes steps sequentially. The first failing step stops the flow;
// effects of earlier steps stay in place. The reporter is only told which
// step failed: the returned error carries the cause and the caller prints it.
func (r *Runner) Run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		logger.Debug("[DEBUG] Step %d/%d: %s\n", i+1, len(steps), step.Name)

		if step.Skip != nil {
			skip, msg, err := step.Skip(ctx)
			if err != nil {
				r.reporter.Fail(step.Name + " failed")
				return fmt.Errorf("%s: %w", step.Name, err)
			}
			if skip {
				r.reporter.Info(msg)
				continue
			}
		}

		r.reporter.Start(step.Name)
		status, err := step.Run(ctx)
		if err != nil {
			r.reporter.Fail(step.Name + " failed")
			return fmt.Errorf("%s: %w", step.Name, err)
		}
		if status != "" {
			r.reporter.Succeed(status)
		} else {
			r.reporter.Succeed(step.Name)
		}
	}
	return nil
}
