package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"moddable-setup/internal/logger"
)

// AppName names the XDG config/state subdirectories and the exports file.
const AppName = "moddable-setup"

// Defaults returns the built-in configuration rooted at home.
func Defaults(home string) Config {
	installDir := filepath.Join(home, ".local", "share")
	return Config{
		InstallDir:  installDir,
		ExportsFile: filepath.Join(installDir, AppName+"-export.sh"),
		Moddable: ModdableConfig{
			Repo: Repo{
				URL:     "https://github.com/Moddable-OpenSource/moddable",
				Branch:  "public",
				Shallow: true,
			},
			Required: PackageSet{
				Darwin: []Package{
					{Name: "git", Binary: "git", Hint: "install the Xcode command line tools: xcode-select --install"},
					{Name: "make", Binary: "make", Hint: "install the Xcode command line tools: xcode-select --install"},
				},
				Windows: []Package{
					{Name: "nmake", Binary: "nmake", Hint: "Visual Studio 2022 Community is required to build the Moddable SDK: https://www.visualstudio.com/downloads/ (run setup from the x86 Native Tools Command Prompt)"},
					{Name: "git", Binary: "git", Hint: "git is required to clone the Moddable SDK: https://git-scm.com/download/win"},
				},
			},
			Deps: PackageSet{
				Linux: []Package{
					{Name: "gcc", Binary: "gcc"},
					{Name: "git", Binary: "git"},
					{Name: "wget", Binary: "wget"},
					{Name: "make", Binary: "make"},
					{Name: "libncurses-dev"},
					{Name: "flex", Binary: "flex"},
					{Name: "bison", Binary: "bison"},
					{Name: "gperf", Binary: "gperf"},
					{Name: "libgtk-3-dev"},
				},
			},
		},
		Pico: PicoConfig{
			SDKRepo:      Repo{URL: "https://github.com/raspberrypi/pico-sdk", Branch: "master"},
			ExamplesRepo: Repo{URL: "https://github.com/raspberrypi/pico-examples", Branch: "master"},
			Deps: PackageSet{
				Darwin: []Package{
					{Name: "cmake", Binary: "cmake"},
					{Name: "arm-none-eabi-gcc", Binary: "arm-none-eabi-gcc", Tap: "ArmMbed/homebrew-formulae", Toolchain: true},
				},
				Linux: []Package{
					{Name: "cmake", Binary: "cmake"},
					{Name: "build-essential"},
					{Name: "gcc-arm-none-eabi", Toolchain: true},
					{Name: "libnewlib-arm-none-eabi", Toolchain: true},
					{Name: "libstdc++-arm-none-eabi-newlib", Toolchain: true},
				},
			},
		},
	}
}

// LoadConfig resolves the configuration. An explicit configFile must exist;
// otherwise $XDG_CONFIG_HOME/moddable-setup/config.yaml is used when present
// and the built-in defaults when not.
func LoadConfig(configFile string) (Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Config{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	cfg := Defaults(home)

	if configFile == "" {
		found, err := xdg.SearchConfigFile(filepath.Join(AppName, "config.yaml"))
		if err != nil {
			logger.Debug("[DEBUG] No config file found, using defaults\n")
			return cfg, nil
		}
		configFile = found
	}

	raw, err := os.ReadFile(configFile)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", configFile, err)
	}
	if err := Parse(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", configFile, err)
	}
	logger.Debug("[DEBUG] Loaded config from %s\n", configFile)
	return cfg, nil
}

// Parse overlays the YAML document raw onto cfg and expands `~` in paths.
// Fields absent from raw keep their current value.
func Parse(raw []byte, cfg *Config) error {
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return err
	}
	for _, p := range []*string{&cfg.InstallDir, &cfg.ExportsFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	if cfg.InstallDir == "" {
		return errors.New("install_dir must not be empty")
	}
	if cfg.ExportsFile == "" {
		return errors.New("exports_file must not be empty")
	}
	return nil
}
