package platform

import (
	"context"
	"fmt"
	"os"
	"strings"

	"moddable-setup/internal/config"
	"moddable-setup/internal/envmut"
	"moddable-setup/internal/logger"
	"moddable-setup/internal/setuperr"
)

// POSIX persists variables as export lines in the exports file and installs
// dependencies with Homebrew (darwin) or apt (linux).
type POSIX struct {
	goos string
	d    Deps
	euid func() int
}

// NewPOSIX returns the POSIX platform for goos ("darwin" or "linux").
func NewPOSIX(goos string, d Deps) *POSIX {
	return &POSIX{goos: goos, d: d, euid: os.Geteuid}
}

func (p *POSIX) Name() string { return p.goos }

func (p *POSIX) InstallNativeDeps(ctx context.Context, pkgs []config.Package) (string, error) {
	var missing []config.Package
	for _, pkg := range pkgs {
		if pkg.Binary != "" {
			if path, err := p.d.Cmd.LookPath(pkg.Binary); err == nil {
				logger.Debug("[DEBUG] %s found at %s, skipping\n", pkg.Name, path)
				continue
			}
		}
		missing = append(missing, pkg)
	}
	if len(missing) == 0 {
		return "Native dependencies already installed", nil
	}

	var err error
	switch p.goos {
	case "darwin":
		err = p.brewInstall(ctx, missing)
	case "linux":
		err = p.aptInstall(ctx, missing)
	default:
		err = setuperr.Unsupported("package installation", p.goos)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Installed %s", strings.Join(names(missing), ", ")), nil
}

func (p *POSIX) brewInstall(ctx context.Context, pkgs []config.Package) error {
	if _, err := p.d.Cmd.LookPath("brew"); err != nil {
		return setuperr.Prerequisite("brew", "Homebrew is required to install "+strings.Join(names(pkgs), ", ")+": https://brew.sh")
	}
	for _, pkg := range pkgs {
		if pkg.Tap != "" {
			if err := p.d.Cmd.Run(ctx, "", "brew", "tap", pkg.Tap); err != nil {
				return err
			}
		}
		logger.Info("[INFO] Installing %s with Homebrew\n", pkg.Name)
		if err := p.d.Cmd.Run(ctx, "", "brew", "install", pkg.Name); err != nil {
			return err
		}
	}
	return nil
}

func (p *POSIX) aptInstall(ctx context.Context, pkgs []config.Package) error {
	if _, err := p.d.Cmd.LookPath("apt-get"); err != nil {
		return setuperr.Prerequisite("apt-get", "only apt based distributions are supported; install these packages manually: "+strings.Join(names(pkgs), " "))
	}
	run := func(args ...string) error {
		if p.euid() != 0 {
			if _, err := p.d.Cmd.LookPath("sudo"); err == nil {
				return p.d.Cmd.Run(ctx, "", "sudo", args...)
			}
		}
		return p.d.Cmd.Run(ctx, "", args[0], args[1:]...)
	}
	if err := run("apt-get", "update"); err != nil {
		return err
	}
	logger.Info("[INFO] Installing %s with apt\n", strings.Join(names(pkgs), " "))
	return run(append([]string{"apt-get", "install", "-y"}, names(pkgs)...)...)
}

func (p *POSIX) PersistVariable(name, value string) error {
	change, err := p.d.Exports.Upsert(name, envmut.ExportLine(name, value))
	if err != nil {
		return err
	}
	logger.Debug("[DEBUG] %s %s in %s\n", name, change, p.d.Exports.Path())
	return p.d.Store.Set(name, value)
}

// UpdatePath keeps a single `export PATH=$PATH:...` record in the exports
// file and appends dir to it. The running process PATH is updated as well.
func (p *POSIX) UpdatePath(dir string) (envmut.PathStatus, error) {
	current, ok, err := p.d.Exports.Lookup("PATH")
	if err != nil {
		return envmut.AlreadyPresent, err
	}
	if !ok {
		current = "$PATH"
	}
	current = strings.Trim(current, `"`)

	updated, status := envmut.POSIXPathList.Upsert(current, dir)
	if status == envmut.PathUpdated {
		if _, err := p.d.Exports.Upsert("PATH", envmut.ExportLine("PATH", updated)); err != nil {
			return status, err
		}
	}

	live, _ := p.d.Store.Lookup("PATH")
	if v, s := envmut.POSIXPathList.Upsert(live, dir); s == envmut.PathUpdated {
		if err := p.d.Store.Set("PATH", v); err != nil {
			return status, err
		}
	}
	return status, nil
}

func names(pkgs []config.Package) []string {
	out := make([]string, len(pkgs))
	for i, pkg := range pkgs {
		out[i] = pkg.Name
	}
	return out
}
