package setup

import (
	"context"
	"fmt"
	"path/filepath"

	"moddable-setup/internal/config"
	"moddable-setup/internal/runner"
	"moddable-setup/internal/setuperr"
)

// Pico sets up the Raspberry Pi Pico SDK on top of an existing Moddable SDK:
// cross compiler, pico-sdk and pico-examples checkouts, PICO_GCC_ROOT and
// PICO_SDK_DIR, and the SDK's host tools.
func Pico(ctx context.Context, e *Env) error {
	if e.GOOS != "darwin" && e.GOOS != "linux" {
		return setuperr.Unsupported("Pico SDK setup", e.GOOS)
	}

	cfg := e.Config.Pico
	picoDir := filepath.Join(e.Config.InstallDir, "pico")
	sdkDir := filepath.Join(picoDir, "pico-sdk")
	examplesDir := filepath.Join(picoDir, "pico-examples")
	buildDir := filepath.Join(sdkDir, "build")

	// gccRoot is filled by the toolchain archive step when one is configured.
	var gccRoot string

	steps := []runner.Step{
		e.requireModdable(),
		e.ensureDir("Ensuring pico directory", picoDir),
	}
	deps := cfg.Deps.For(e.GOOS)
	if cfg.Toolchain.URL != "" {
		steps = append(steps, e.toolchain(picoDir, &gccRoot))
		deps = withoutToolchain(deps)
	}
	if len(deps) > 0 {
		steps = append(steps, e.installDeps(deps))
	}
	steps = append(steps,
		e.picoGCCRoot(&gccRoot),
		e.clone("Cloning pico-sdk repo", cfg.SDKRepo, sdkDir, true),
		e.clone("Cloning pico-examples repo", cfg.ExamplesRepo, examplesDir, false),
		e.picoSDKDir(sdkDir),
	)
	steps = append(steps, e.linkProfile()...)
	steps = append(steps, e.buildPicoTools(buildDir))

	if err := e.run(ctx, "pico", steps); err != nil {
		return err
	}
	e.Reporter.Succeed("Successfully set up pico platform support for Moddable! " +
		"Start a new terminal session, hold BOOTSEL while powering on the Pico, then build the helloworld example for the pico device.")
	return nil
}

// requireModdable fails unless MODDABLE is set and points to an existing directory.
func (e *Env) requireModdable() runner.Step {
	return runner.Step{
		Name: "Checking Moddable SDK",
		Run: func(context.Context) (string, error) {
			sdk, ok := e.Store.Lookup("MODDABLE")
			if !ok || sdk == "" {
				return "", setuperr.Prerequisite("Moddable SDK", "Moddable platform tooling required. Run `moddable-setup setup` before trying again.")
			}
			exists, err := e.exists(sdk)
			if err != nil {
				return "", err
			}
			if !exists {
				return "", setuperr.Prerequisite("Moddable SDK", fmt.Sprintf("$MODDABLE points to %s, which does not exist. Run `moddable-setup setup` before trying again.", sdk))
			}
			return "Using Moddable SDK at " + sdk, nil
		},
	}
}

func (e *Env) picoGCCRoot(gccRoot *string) runner.Step {
	return runner.Step{
		Name: "Setting PICO_GCC_ROOT",
		Run: func(ctx context.Context) (string, error) {
			root := *gccRoot
			if root == "" {
				switch e.GOOS {
				case "darwin":
					prefix, err := e.Cmd.Output(ctx, "", "brew", "--prefix")
					if err != nil {
						return "", err
					}
					root = prefix
				default:
					root = "/usr"
				}
			}
			if err := e.Platform.PersistVariable("PICO_GCC_ROOT", root); err != nil {
				return "", err
			}
			return "PICO_GCC_ROOT=" + root, nil
		},
	}
}

// picoSDKDir trusts a pre-set PICO_SDK_DIR and persists the checkout otherwise.
func (e *Env) picoSDKDir(sdkDir string) runner.Step {
	step := e.persist("PICO_SDK_DIR", sdkDir)
	step.Skip = func(context.Context) (bool, string, error) {
		if existing, ok := e.trusted("PICO_SDK_DIR"); ok {
			return true, "Using existing $PICO_SDK_DIR: " + existing, nil
		}
		return false, "", nil
	}
	return step
}

func (e *Env) buildPicoTools(buildDir string) runner.Step {
	return runner.Step{
		Name: "Building pico tools",
		Skip: func(context.Context) (bool, string, error) {
			empty, err := e.isEmptyDir(buildDir)
			return !empty, "pico tools already built in " + buildDir, err
		},
		Run: func(ctx context.Context) (string, error) {
			if err := e.FS.MkdirAll(buildDir, 0o755); err != nil {
				return "", fmt.Errorf("creating %s: %w", buildDir, err)
			}
			if err := e.Cmd.Run(ctx, buildDir, "cmake", ".."); err != nil {
				return "", err
			}
			return "", e.Cmd.Run(ctx, buildDir, "make")
		},
	}
}

func withoutToolchain(pkgs []config.Package) []config.Package {
	var out []config.Package
	for _, pkg := range pkgs {
		if !pkg.Toolchain {
			out = append(out, pkg)
		}
	}
	return out
}
