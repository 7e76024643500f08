//go:build !windows

package platform

import (
	"runtime"

	"moddable-setup/internal/setuperr"
)

// OpenUserEnvironment fails outside windows.
func OpenUserEnvironment() (RegistryKey, error) {
	return nil, setuperr.Unsupported("the registry", runtime.GOOS)
}
