package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"moddable-setup/internal/envmut"
	"moddable-setup/internal/logger"
)

// statusVariables are the variables the setup flows persist or trust.
var statusVariables = []string{"MODDABLE", "PICO_SDK_DIR", "PICO_GCC_ROOT"}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resolved paths, SDK variables and recorded setup runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		e := s.env

		logger.Info("Platform:     %s\n", e.Platform.Name())
		logger.Info("Install dir:  %s\n", e.Config.InstallDir)
		logger.Info("Exports file: %s\n", s.exports.Path())
		logger.Info("State file:   %s\n", s.statePath)

		for _, name := range statusVariables {
			if v := envmut.Get(e.Store, name); v != "" {
				logger.Info("%-14s %s\n", name, v)
			} else {
				logger.Warn("%-14s (not set)\n", name)
			}
		}

		flows := make([]string, 0, len(e.State.Flows))
		for name := range e.State.Flows {
			flows = append(flows, name)
		}
		sort.Strings(flows)
		for _, name := range flows {
			f := e.State.Flows[name]
			logger.Info("Flow %s completed on %s at %s\n", name, f.Platform, f.CompletedAt.Format("2006-01-02 15:04:05"))
		}
		for version, tc := range e.State.Toolchains {
			logger.Info("Toolchain %s at %s\n", version, tc.InstallPath)
		}
		return nil
	},
}
