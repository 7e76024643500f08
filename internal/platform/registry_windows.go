//go:build windows

package platform

import (
	"golang.org/x/sys/windows/registry"
)

// OpenUserEnvironment opens HKCU\Environment for reading and writing.
func OpenUserEnvironment() (RegistryKey, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, `Environment`, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return nil, err
	}
	return regKey{k: k}, nil
}

type regKey struct {
	k registry.Key
}

func (r regKey) ValueNames() ([]string, error) { return r.k.ReadValueNames(0) }

func (r regKey) GetString(name string) (string, error) {
	v, _, err := r.k.GetStringValue(name)
	return v, err
}

func (r regKey) SetString(name, value string) error { return r.k.SetStringValue(name, value) }

func (r regKey) SetExpandString(name, value string) error {
	return r.k.SetExpandStringValue(name, value)
}

func (r regKey) Close() error { return r.k.Close() }
