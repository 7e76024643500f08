package platform

import (
	"context"
	"strings"

	"moddable-setup/internal/config"
	"moddable-setup/internal/envmut"
	"moddable-setup/internal/logger"
	"moddable-setup/internal/setuperr"
)

// userEnvironmentKey is the user-scope environment key, for messages.
const userEnvironmentKey = `HKCU\Environment`

// RegistryKey is the subset of an open registry key used to persist the user
// environment.
type RegistryKey interface {
	ValueNames() ([]string, error)
	// GetString reads a REG_SZ or REG_EXPAND_SZ value.
	GetString(name string) (string, error)
	SetString(name, value string) error
	SetExpandString(name, value string) error
	Close() error
}

// RegistryOpener opens the user environment key for reading and writing.
type RegistryOpener func() (RegistryKey, error)

// Windows persists variables in the registry. It has no package manager:
// native dependencies are verified and reported with remediation hints.
type Windows struct {
	d Deps
}

// NewWindows returns the Windows platform. A nil d.OpenRegistry uses the
// real registry.
func NewWindows(d Deps) *Windows {
	if d.OpenRegistry == nil {
		d.OpenRegistry = OpenUserEnvironment
	}
	return &Windows{d: d}
}

func (w *Windows) Name() string { return "windows" }

func (w *Windows) InstallNativeDeps(_ context.Context, pkgs []config.Package) (string, error) {
	return CheckTools(w.d.Cmd, pkgs)
}

// PersistVariable writes name as a REG_SZ value, leaving every other value alone.
func (w *Windows) PersistVariable(name, value string) error {
	key, err := w.d.OpenRegistry()
	if err != nil {
		return setuperr.Persistence("open", userEnvironmentKey, err)
	}
	defer key.Close()

	if err := key.SetString(name, value); err != nil {
		return setuperr.Persistence("write", userEnvironmentKey+`\`+name, err)
	}
	logger.Debug("[DEBUG] Set %s\\%s=%s\n", userEnvironmentKey, name, value)
	return w.d.Store.Set(name, value)
}

// UpdatePath appends dir to the user PATH value, written back as REG_EXPAND_SZ.
// The value name is matched case-insensitively and its spelling preserved.
func (w *Windows) UpdatePath(dir string) (envmut.PathStatus, error) {
	key, err := w.d.OpenRegistry()
	if err != nil {
		return envmut.AlreadyPresent, setuperr.Persistence("open", userEnvironmentKey, err)
	}
	defer key.Close()

	valueNames, err := key.ValueNames()
	if err != nil {
		return envmut.AlreadyPresent, setuperr.Persistence("list", userEnvironmentKey, err)
	}

	pathName, current := "PATH", ""
	for _, name := range valueNames {
		if strings.EqualFold(name, "PATH") {
			pathName = name
			current, err = key.GetString(name)
			if err != nil {
				return envmut.AlreadyPresent, setuperr.Persistence("read", userEnvironmentKey+`\`+name, err)
			}
			break
		}
	}

	updated, status := envmut.WindowsPathList.Upsert(current, dir)
	if status == envmut.PathUpdated {
		if err := key.SetExpandString(pathName, updated); err != nil {
			return status, setuperr.Persistence("write", userEnvironmentKey+`\`+pathName, err)
		}
	}

	live, _ := w.d.Store.Lookup("PATH")
	if v, s := envmut.WindowsPathList.Upsert(live, dir); s == envmut.PathUpdated {
		if err := w.d.Store.Set("PATH", v); err != nil {
			return status, err
		}
	}
	return status, nil
}
