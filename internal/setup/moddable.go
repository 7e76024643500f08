package setup

import (
	"context"
	"path/filepath"

	"moddable-setup/internal/config"
	"moddable-setup/internal/runner"
	"moddable-setup/internal/setuperr"
)

// moddablePlatformDirs maps GOOS to the platform directory names used by the
// Moddable SDK under build/bin and build/makefiles.
var moddablePlatformDirs = map[string]string{
	"darwin":  "mac",
	"linux":   "lin",
	"windows": "win",
}

// Moddable sets up the Moddable SDK: required tools, native dependencies,
// the SDK checkout, MODDABLE and PATH, and the SDK host tools build.
func Moddable(ctx context.Context, e *Env) error {
	platDir, ok := moddablePlatformDirs[e.GOOS]
	if !ok {
		return setuperr.Unsupported("Moddable SDK setup", e.GOOS)
	}

	cfg := e.Config.Moddable
	sdk := e.ModdablePath()
	binDir := filepath.Join(sdk, "build", "bin", platDir, "release")
	buildDir := filepath.Join(sdk, "build", "makefiles", platDir)

	var steps []runner.Step
	if required := cfg.Required.For(e.GOOS); len(required) > 0 {
		steps = append(steps, e.requireTools(required))
	}
	if deps := cfg.Deps.For(e.GOOS); len(deps) > 0 {
		steps = append(steps, e.installDeps(deps))
	}
	steps = append(steps,
		e.ensureDir("Ensuring install directory", filepath.Dir(sdk)),
		e.clone("Cloning Moddable SDK", cfg.Repo, sdk, false),
		e.persist("MODDABLE", sdk),
		e.updatePath(binDir),
	)
	steps = append(steps, e.linkProfile()...)
	steps = append(steps, e.buildModdableTools(buildDir))

	if err := e.run(ctx, "moddable", steps); err != nil {
		return err
	}
	e.Reporter.Succeed("Moddable SDK successfully set up! Start a new terminal session to pick up MODDABLE and PATH.")
	return nil
}

func (e *Env) installDeps(pkgs []config.Package) runner.Step {
	return runner.Step{
		Name: "Installing native build dependencies",
		Run: func(ctx context.Context) (string, error) {
			return e.Platform.InstallNativeDeps(ctx, pkgs)
		},
	}
}

func (e *Env) buildModdableTools(buildDir string) runner.Step {
	return runner.Step{
		Name: "Building Moddable SDK tools",
		Run: func(ctx context.Context) (string, error) {
			if e.GOOS == "windows" {
				return "", e.Cmd.Run(ctx, buildDir, "cmd", "/c", "build.bat")
			}
			return "", e.Cmd.Run(ctx, buildDir, "make")
		},
	}
}
