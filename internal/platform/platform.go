// Package platform holds the OS-specific capabilities of the setup flows:
// installing native dependencies and persisting environment variables and
// PATH entries. One implementation is selected at startup.
package platform

import (
	"context"

	"github.com/spf13/afero"

	"moddable-setup/internal/config"
	"moddable-setup/internal/envmut"
	"moddable-setup/internal/execx"
	"moddable-setup/internal/setuperr"
)

// Platform is the set of operations whose implementation differs per OS.
type Platform interface {
	// Name is the GOOS this platform serves.
	Name() string
	// InstallNativeDeps makes sure pkgs are available, installing the missing
	// ones where a package manager exists. It returns a status message.
	InstallNativeDeps(ctx context.Context, pkgs []config.Package) (string, error)
	// PersistVariable records name=value for future sessions and the running process.
	PersistVariable(name, value string) error
	// UpdatePath appends dir to the persisted PATH unless already present.
	UpdatePath(dir string) (envmut.PathStatus, error)
}

// ProfileLinker is implemented by platforms whose persisted variables live in
// a file that the user's shell must source.
type ProfileLinker interface {
	// LinkProfile makes the shell rc file source the exports file. It returns
	// the rc path and whether it was modified.
	LinkProfile() (string, bool, error)
}

// Deps are the collaborators shared by every platform implementation.
type Deps struct {
	Cmd     execx.Commander
	FS      afero.Fs
	Store   envmut.Store
	Exports *envmut.ExportsFile
	// Home is the user's home directory, used to locate shell rc files.
	Home string
	// Shell overrides shell detection from $SHELL.
	Shell string
	// OpenRegistry opens the user environment registry key (windows).
	OpenRegistry RegistryOpener
}

// CheckTools verifies that every package's binary (its name when Binary is
// empty) is on the search path. The first missing one is reported as a
// prerequisite failure carrying the package hint.
func CheckTools(cmd execx.Commander, pkgs []config.Package) (string, error) {
	for _, pkg := range pkgs {
		bin := pkg.Binary
		if bin == "" {
			bin = pkg.Name
		}
		if _, err := cmd.LookPath(bin); err != nil {
			return "", setuperr.Prerequisite(pkg.Name, pkg.Hint)
		}
	}
	return "Required tools found", nil
}

// Detect returns the platform implementation for goos.
func Detect(goos string, d Deps) (Platform, error) {
	switch goos {
	case "darwin", "linux":
		return NewPOSIX(goos, d), nil
	case "windows":
		return NewWindows(d), nil
	}
	return nil, setuperr.Unsupported("setup", goos)
}
