// Package setup assembles the setup flows: ordered steps that check
// prerequisites, install native dependencies, clone SDK repositories, persist
// environment variables and build SDK tooling.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"moddable-setup/internal/config"
	"moddable-setup/internal/envmut"
	"moddable-setup/internal/execx"
	"moddable-setup/internal/logger"
	"moddable-setup/internal/platform"
	"moddable-setup/internal/progress"
	"moddable-setup/internal/runner"
	"moddable-setup/internal/state"
)

// Env carries everything a flow touches. It is built once per invocation.
type Env struct {
	GOOS     string
	Config   config.Config
	Platform platform.Platform
	Cmd      execx.Commander
	FS       afero.Fs
	Store    envmut.Store
	State    *state.State
	Reporter progress.Reporter

	// Download fetches a URL to a local path; Extract unpacks an archive
	// and returns its root. Both are used for toolchain archives.
	Download func(url, dest string) error
	Extract  func(src, dest string) (string, error)

	// Now stamps completed flows.
	Now func() time.Time
}

// ModdablePath returns $MODDABLE when set, else <install dir>/moddable.
func (e *Env) ModdablePath() string {
	if v := envmut.Get(e.Store, "MODDABLE"); v != "" {
		return v
	}
	return filepath.Join(e.Config.InstallDir, "moddable")
}

func (e *Env) run(ctx context.Context, flow string, steps []runner.Step) error {
	if err := runner.New(e.Reporter).Run(ctx, steps); err != nil {
		return err
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	e.State.Flows[flow] = state.FlowState{Platform: e.GOOS, CompletedAt: now().UTC()}
	return nil
}

func (e *Env) exists(path string) (bool, error) {
	return afero.Exists(e.FS, path)
}

// requireTools verifies that every package's binary is on the search path.
// It runs before anything is mutated.
func (e *Env) requireTools(pkgs []config.Package) runner.Step {
	return runner.Step{
		Name: "Checking required tools",
		Run: func(context.Context) (string, error) {
			return platform.CheckTools(e.Cmd, pkgs)
		},
	}
}

func (e *Env) ensureDir(name, dir string) runner.Step {
	return runner.Step{
		Name: name,
		Run: func(context.Context) (string, error) {
			if err := e.FS.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("creating %s: %w", dir, err)
			}
			return "", nil
		},
	}
}

// clone clones repo into dir unless dir already exists. When submodules is
// set the submodules are initialized right after the clone.
func (e *Env) clone(name string, repo config.Repo, dir string, submodules bool) runner.Step {
	return runner.Step{
		Name: name,
		Skip: func(context.Context) (bool, string, error) {
			ok, err := e.exists(dir)
			return ok, fmt.Sprintf("%s already present at %s", filepath.Base(dir), dir), err
		},
		Run: func(ctx context.Context) (string, error) {
			args := []string{"clone"}
			if repo.Branch != "" {
				args = append(args, "-b", repo.Branch)
			}
			if repo.Shallow {
				args = append(args, "--depth", "1", "--single-branch")
			}
			args = append(args, repo.URL, dir)
			if err := e.Cmd.Run(ctx, "", "git", args...); err != nil {
				return "", err
			}
			if submodules {
				if err := e.Cmd.Run(ctx, dir, "git", "submodule", "update", "--init"); err != nil {
					return "", err
				}
			}
			return "", nil
		},
	}
}

func (e *Env) persist(name, value string) runner.Step {
	return runner.Step{
		Name: "Setting " + name,
		Run: func(context.Context) (string, error) {
			if err := e.Platform.PersistVariable(name, value); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s=%s", name, value), nil
		},
	}
}

func (e *Env) updatePath(dir string) runner.Step {
	return runner.Step{
		Name: "Adding " + dir + " to PATH",
		Run: func(context.Context) (string, error) {
			status, err := e.Platform.UpdatePath(dir)
			if err != nil {
				return "", err
			}
			if status == envmut.AlreadyPresent {
				return dir + " already in PATH", nil
			}
			return dir + " now set in PATH", nil
		},
	}
}

// linkProfile makes the shell rc source the exports file on platforms that
// persist through one.
func (e *Env) linkProfile() []runner.Step {
	linker, ok := e.Platform.(platform.ProfileLinker)
	if !ok {
		return nil
	}
	return []runner.Step{{
		Name: "Sourcing exports from the shell profile",
		Run: func(context.Context) (string, error) {
			rc, changed, err := linker.LinkProfile()
			if err != nil {
				return "", err
			}
			if !changed {
				return rc + " already sources the exports file", nil
			}
			return "Added exports to " + rc, nil
		},
	}}
}

// trusted returns a pre-set variable as-is, warning when its path is missing.
func (e *Env) trusted(name string) (string, bool) {
	v, ok := e.Store.Lookup(name)
	if !ok || v == "" {
		return "", false
	}
	if ok, err := e.exists(v); err != nil || !ok {
		logger.Warn("[WARN] $%s points to %s, which does not exist\n", name, v)
	}
	return v, true
}

// isEmptyDir reports whether dir is missing or has no entries.
func (e *Env) isEmptyDir(dir string) (bool, error) {
	entries, err := afero.ReadDir(e.FS, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
