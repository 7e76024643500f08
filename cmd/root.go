package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"moddable-setup/internal/logger"
)

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// configPath holds the optional path to a YAML configuration file.
// It's passed via the `--config` or `-c` flag; when empty the XDG config
// location is searched and the built-in defaults are used if nothing is found.
var configPath string

// rootCmd is the base command for the CLI tool `moddable-setup`.
var rootCmd = &cobra.Command{
	Use:   "moddable-setup",
	Short: "Set up the Moddable SDK and its device toolchains",
	Long: `moddable-setup installs the Moddable SDK build prerequisites, clones the SDK,
persists MODDABLE and PATH for future sessions and builds the SDK host tools.
Every step is skipped when its result already exists, so it is safe to re-run.`,
	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRun is a hook that runs before any subcommand.
	// Here, we initialize the logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
}

// Execute registers flags and subcommands and runs the CLI.
// Any error is logged and the process exits with status 1.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(statusCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("[ERROR] %v\n", err)
		os.Exit(1)
	}
}
