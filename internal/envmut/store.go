package envmut

import "os"

// Store is the process environment seen by the setup flows. Values set here
// are visible to every command spawned afterwards.
type Store interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
}

// OSStore reads and writes the real process environment.
type OSStore struct{}

func (OSStore) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

func (OSStore) Set(key, value string) error { return os.Setenv(key, value) }

// MapStore is an in-memory Store.
type MapStore map[string]string

// NewMapStore builds a MapStore from alternating key, value arguments.
func NewMapStore(kv ...string) MapStore {
	m := MapStore{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func (m MapStore) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapStore) Set(key, value string) error {
	m[key] = value
	return nil
}

// Get returns the value of key, or "" when it is unset or empty.
func Get(s Store, key string) string {
	v, _ := s.Lookup(key)
	return v
}
