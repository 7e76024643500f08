package cmd

import (
	"github.com/spf13/cobra"

	"moddable-setup/internal/setup"
)

// setupCmd runs the Moddable SDK flow for the current OS.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install the Moddable SDK and its host tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.save()
		return setup.Moddable(cmd.Context(), s.env)
	},
}

// setupPicoCmd adds Raspberry Pi Pico support on top of an existing Moddable SDK.
var setupPicoCmd = &cobra.Command{
	Use:   "pico",
	Short: "Install the Raspberry Pi Pico SDK and ARM toolchain (macOS and Linux)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.save()
		return setup.Pico(cmd.Context(), s.env)
	},
}

func init() {
	setupCmd.AddCommand(setupPicoCmd)
}
