package state

import (
	"encoding/json" // For JSON encoding and decoding of the state file
	"fmt"
	"os" // For file system operations like reading and writing files
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"moddable-setup/internal/logger"
)

// ToolchainState records a toolchain archive this tool downloaded and unpacked.
type ToolchainState struct {
	Version     string `json:"version"`      // Configured toolchain version, e.g. "13.2.rel1"
	URL         string `json:"url"`          // Archive URL it was downloaded from
	InstallPath string `json:"install_path"` // Toolchain root used as PICO_GCC_ROOT
}

// FlowState records the last successful run of a setup flow.
type FlowState struct {
	Platform    string    `json:"platform"`     // GOOS the flow ran on
	CompletedAt time.Time `json:"completed_at"` // When the flow finished
}

// State is the persisted record of what previous runs installed.
type State struct {
	Toolchains map[string]ToolchainState `json:"toolchains"` // Keyed by toolchain version
	Flows      map[string]FlowState      `json:"flows"`      // Keyed by flow name ("moddable", "pico")
}

// New returns an empty state with initialized maps.
func New() *State {
	return &State{
		Toolchains: make(map[string]ToolchainState),
		Flows:      make(map[string]FlowState),
	}
}

// DefaultPath returns $XDG_STATE_HOME/moddable-setup/state.json.
func DefaultPath() (string, error) {
	return xdg.StateFile(filepath.Join("moddable-setup", "state.json"))
}

// LoadState loads the saved state from path.
// A missing or unreadable file yields an empty state; the state only
// short-circuits work, so losing it costs a re-download at worst.
func LoadState(path string) *State {
	file, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("[DEBUG] No state at %s: %v\n", path, err)
		return New()
	}

	st := New()
	if err := json.Unmarshal(file, st); err != nil {
		logger.Warn("[WARN] Ignoring corrupt state file %s: %v\n", path, err)
		return New()
	}
	if st.Toolchains == nil {
		st.Toolchains = make(map[string]ToolchainState)
	}
	if st.Flows == nil {
		st.Flows = make(map[string]FlowState)
	}
	return st
}

// SaveState writes st to path as indented JSON.
func SaveState(path string, st *State) error {
	file, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	logger.Debug("[DEBUG] Writing state to %s:\n%s\n", path, string(file))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(path, file, 0644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	return nil
}
