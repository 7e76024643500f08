package logger

import (
	"github.com/fatih/color" // Colored console output for each log level
)

// Colorized Printf-style functions for the log levels used across the setup flows.
// Messages carry their own level prefix ("[INFO] ", "[WARN] ", ...) so that
// output stays readable when color is disabled (NO_COLOR, non-terminal stdout).

// Info logs progress and success messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs recoverable problems in bright magenta, e.g. a trusted SDK path that does not exist.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs fatal problems in red right before the process exits.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs verbose details (command lines, file paths) in cyan once enabled.
// It is a no-op until Init(true) is called.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging.
// When enabled, Debug prints cyan messages; otherwise it silently drops them.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
