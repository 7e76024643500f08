package cmd

import (
	"fmt"
	"runtime"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"moddable-setup/internal/archive"
	"moddable-setup/internal/config"
	"moddable-setup/internal/envmut"
	"moddable-setup/internal/execx"
	"moddable-setup/internal/logger"
	"moddable-setup/internal/platform"
	"moddable-setup/internal/progress"
	"moddable-setup/internal/setup"
	"moddable-setup/internal/state"
)

// session is the wiring shared by every command: the flow environment plus
// where its state is saved.
type session struct {
	env       *setup.Env
	exports   *envmut.ExportsFile
	statePath string
}

// newSession loads config and state and selects the platform for this OS.
func newSession() (*session, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}
	statePath, err := state.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve state file location: %w", err)
	}

	fsys := afero.NewOsFs()
	store := envmut.OSStore{}
	cmdr := execx.NewSystem()
	exports := envmut.NewExportsFile(fsys, cfg.ExportsFile)

	plat, err := platform.Detect(runtime.GOOS, platform.Deps{
		Cmd:     cmdr,
		FS:      fsys,
		Store:   store,
		Exports: exports,
		Home:    home,
		Shell:   cfg.Shell,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("[DEBUG] Platform %s, install dir %s, exports %s\n", plat.Name(), cfg.InstallDir, cfg.ExportsFile)

	return &session{
		env: &setup.Env{
			GOOS:     runtime.GOOS,
			Config:   cfg,
			Platform: plat,
			Cmd:      cmdr,
			FS:       fsys,
			Store:    store,
			State:    state.LoadState(statePath),
			Reporter: progress.New(),
			Download: archive.Download,
			Extract:  archive.Extract,
		},
		exports:   exports,
		statePath: statePath,
	}, nil
}

// save persists the state file; a failure is reported but does not change the outcome.
func (s *session) save() {
	if err := state.SaveState(s.statePath, s.env.State); err != nil {
		logger.Warn("[WARN] %v\n", err)
	}
}

// envCmd groups the single-variable commands that expose the environment
// mutation primitives directly.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Persist individual environment variables and PATH entries",
}

var envExportCmd = &cobra.Command{
	Use:   "export NAME VALUE",
	Short: "Persist NAME=VALUE for future sessions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		name, value := args[0], args[1]
		if err := s.env.Platform.PersistVariable(name, value); err != nil {
			return err
		}
		if linker, ok := s.env.Platform.(platform.ProfileLinker); ok {
			rc, changed, err := linker.LinkProfile()
			if err != nil {
				return err
			}
			if changed {
				logger.Info("[INFO] Added %s to %s\n", s.exports.Path(), rc)
			}
		}
		logger.Info("[INFO] %s=%s\n", name, value)
		return nil
	},
}

var envPathCmd = &cobra.Command{
	Use:   "path DIR",
	Short: "Append DIR to the persisted PATH unless already present",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		status, err := s.env.Platform.UpdatePath(args[0])
		if err != nil {
			return err
		}
		logger.Info("[INFO] %s: %s\n", args[0], status)
		return nil
	},
}

func init() {
	envCmd.AddCommand(envExportCmd)
	envCmd.AddCommand(envPathCmd)
}
