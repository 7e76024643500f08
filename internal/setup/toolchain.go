package setup

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"moddable-setup/internal/archive"
	"moddable-setup/internal/logger"
	"moddable-setup/internal/runner"
	"moddable-setup/internal/state"
)

// toolchain downloads and unpacks the configured ARM GNU toolchain archive
// into <pico dir>/toolchains/<archive name> and stores its root in gccRoot. A previously
// recorded install of the same version and URL that still exists is reused.
func (e *Env) toolchain(picoDir string, gccRoot *string) runner.Step {
	tc := e.Config.Pico.Toolchain
	return runner.Step{
		Name: "Installing ARM GNU toolchain " + tc.Version,
		Skip: func(context.Context) (bool, string, error) {
			rec, ok := e.State.Toolchains[tc.Version]
			if !ok || rec.URL != tc.URL {
				return false, "", nil
			}
			exists, err := e.exists(rec.InstallPath)
			if err != nil || !exists {
				return false, "", err
			}
			*gccRoot = rec.InstallPath
			return true, fmt.Sprintf("ARM GNU toolchain %s already installed at %s", tc.Version, rec.InstallPath), nil
		},
		Run: func(context.Context) (string, error) {
			name := path.Base(tc.URL)
			archivePath := filepath.Join(picoDir, "downloads", name)
			logger.Info("[INFO] Downloading %s to %s\n", tc.URL, archivePath)
			if err := e.Download(tc.URL, archivePath); err != nil {
				return "", err
			}
			root, err := e.Extract(archivePath, filepath.Join(picoDir, "toolchains", archive.StripArchiveExt(name)))
			if err != nil {
				return "", fmt.Errorf("failed to extract %s: %w", archivePath, err)
			}
			if err := e.FS.Remove(archivePath); err != nil {
				logger.Warn("[WARN] Failed to remove %s: %v\n", archivePath, err)
			}

			e.State.Toolchains[tc.Version] = state.ToolchainState{
				Version:     tc.Version,
				URL:         tc.URL,
				InstallPath: root,
			}
			*gccRoot = root
			return "ARM GNU toolchain installed at " + root, nil
		},
	}
}
