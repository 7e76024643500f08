package config

// Package is a native dependency the setup flows need on a given OS.
// - Name: package name passed to brew/apt.
// - Binary: executable that proves the dependency is already there; when it is on PATH the install is skipped.
// - Tap: Homebrew tap to add before installing (darwin only).
// - Hint: remediation shown when the dependency is required but missing.
// - Toolchain: the package provides the ARM cross compiler and is skipped when a toolchain archive is configured.
type Package struct {
	Name      string `yaml:"name"`
	Binary    string `yaml:"binary"`
	Tap       string `yaml:"tap"`
	Hint      string `yaml:"hint"`
	Toolchain bool   `yaml:"toolchain"`
}

// PackageSet holds per-OS package lists.
type PackageSet struct {
	Darwin  []Package `yaml:"darwin"`
	Linux   []Package `yaml:"linux"`
	Windows []Package `yaml:"windows"`
}

// For returns the packages for goos.
func (p PackageSet) For(goos string) []Package {
	switch goos {
	case "darwin":
		return p.Darwin
	case "linux":
		return p.Linux
	case "windows":
		return p.Windows
	}
	return nil
}

// Repo is a git repository to clone.
type Repo struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
	// Shallow clones only the tip of Branch.
	Shallow bool `yaml:"shallow"`
}

// Toolchain is a prebuilt ARM GNU toolchain archive (.tar.xz, .tar.gz, .zip or .7z)
// used instead of the package manager's cross compiler.
type Toolchain struct {
	Version string `yaml:"version"`
	URL     string `yaml:"url"`
}

// ModdableConfig describes the Moddable SDK flow.
type ModdableConfig struct {
	Repo     Repo       `yaml:"repo"`
	Required PackageSet `yaml:"required"`
	Deps     PackageSet `yaml:"deps"`
}

// PicoConfig describes the Raspberry Pi Pico SDK flow.
type PicoConfig struct {
	SDKRepo      Repo       `yaml:"sdk_repo"`
	ExamplesRepo Repo       `yaml:"examples_repo"`
	Deps         PackageSet `yaml:"deps"`
	Toolchain    Toolchain  `yaml:"toolchain"`
}

// Config is the fully resolved configuration: built-in defaults overlaid
// with the optional YAML file.
type Config struct {
	// InstallDir is where SDK repositories are cloned (default ~/.local/share).
	InstallDir string `yaml:"install_dir"`
	// ExportsFile is the shell-sourced file receiving `export` lines.
	ExportsFile string `yaml:"exports_file"`
	// Shell overrides $SHELL detection for the rc file that sources ExportsFile.
	Shell string `yaml:"shell"`

	Moddable ModdableConfig `yaml:"moddable"`
	Pico     PicoConfig     `yaml:"pico"`
}
