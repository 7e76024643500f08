package platform

import (
	"path/filepath"
	"strings"

	"moddable-setup/internal/envmut"
	"moddable-setup/internal/logger"
)

// shellRC maps supported shells to their rc file names.
var shellRC = map[string]string{
	"zsh":  ".zshrc",
	"bash": ".bashrc",
}

// DetectShell derives the shell name from a $SHELL value such as /bin/zsh.
// It returns "zsh" for anything it does not recognize.
func DetectShell(shellEnv string) string {
	logger.Debug("[DEBUG] Detected shell environment: %s\n", shellEnv)
	base := filepath.Base(shellEnv)
	switch {
	case strings.Contains(base, "zsh"):
		return "zsh"
	case strings.Contains(base, "bash"):
		return "bash"
	}
	return "zsh"
}

// RCFile returns the rc file the given shell reads for interactive sessions.
func RCFile(home, shell string) string {
	rc, ok := shellRC[shell]
	if !ok {
		logger.Warn("[WARN] Unknown shell '%s', defaulting to '.zshrc'\n", shell)
		rc = ".zshrc"
	}
	return filepath.Join(home, rc)
}

func (p *POSIX) LinkProfile() (string, bool, error) {
	shell := p.d.Shell
	if shell == "" {
		shell = DetectShell(envmut.Get(p.d.Store, "SHELL"))
	}
	rc := RCFile(p.d.Home, shell)
	changed, err := envmut.EnsureLine(p.d.FS, rc, "source "+envmut.ShellQuote(p.d.Exports.Path()))
	return rc, changed, err
}
