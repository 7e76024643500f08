package main

import (
	"moddable-setup/cmd"
)

// main is the program entry point. It delegates to cmd.Execute, which parses
// the command line and exits non-zero when a setup flow fails.
//
// moddable-setup prepares a developer machine for the Moddable SDK:
//   - checks for the required build tools and installs native dependencies
//     with Homebrew or apt where a package manager exists
//   - clones the SDK and persists MODDABLE and PATH, through an exports file
//     sourced by the shell rc on macOS/Linux and the user environment
//     registry key on Windows
//   - builds the SDK host tools
//
// `moddable-setup setup pico` adds Raspberry Pi Pico support the same way.
// Every step is skipped when its target already exists, so runs are idempotent.
func main() {
	cmd.Execute()
}
