package platform

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moddable-setup/internal/config"
	"moddable-setup/internal/envmut"
	"moddable-setup/internal/execx/exectest"
	"moddable-setup/internal/setuperr"
)

const testExports = "/home/dev/.local/share/moddable-setup-export.sh"

func newTestPOSIX(goos string, cmd *exectest.Commander) (*POSIX, afero.Fs, envmut.MapStore) {
	fsys := afero.NewMemMapFs()
	store := envmut.NewMapStore("PATH", "/usr/bin:/bin", "SHELL", "/bin/bash")
	p := NewPOSIX(goos, Deps{
		Cmd:     cmd,
		FS:      fsys,
		Store:   store,
		Exports: envmut.NewExportsFile(fsys, testExports),
		Home:    "/home/dev",
	})
	p.euid = func() int { return 1000 }
	return p, fsys, store
}

func exportsContent(t *testing.T, fsys afero.Fs) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, testExports)
	require.NoError(t, err)
	return string(data)
}

func TestPOSIX_InstallNativeDeps_Apt(t *testing.T) {
	cmd := exectest.New("apt-get", "sudo", "cmake")
	p, _, _ := newTestPOSIX("linux", cmd)

	msg, err := p.InstallNativeDeps(context.Background(), []config.Package{
		{Name: "cmake", Binary: "cmake"},
		{Name: "gcc-arm-none-eabi"},
		{Name: "build-essential"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Installed gcc-arm-none-eabi, build-essential", msg)
	assert.Equal(t, []string{
		"sudo apt-get update",
		"sudo apt-get install -y gcc-arm-none-eabi build-essential",
	}, cmd.Lines())
}

func TestPOSIX_InstallNativeDeps_AptAsRoot(t *testing.T) {
	cmd := exectest.New("apt-get", "sudo")
	p, _, _ := newTestPOSIX("linux", cmd)
	p.euid = func() int { return 0 }

	_, err := p.InstallNativeDeps(context.Background(), []config.Package{{Name: "flex"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"apt-get update", "apt-get install -y flex"}, cmd.Lines())
}

func TestPOSIX_InstallNativeDeps_Brew(t *testing.T) {
	cmd := exectest.New("brew")
	p, _, _ := newTestPOSIX("darwin", cmd)

	_, err := p.InstallNativeDeps(context.Background(), []config.Package{
		{Name: "cmake", Binary: "cmake"},
		{Name: "arm-none-eabi-gcc", Binary: "arm-none-eabi-gcc", Tap: "ArmMbed/homebrew-formulae"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"brew install cmake",
		"brew tap ArmMbed/homebrew-formulae",
		"brew install arm-none-eabi-gcc",
	}, cmd.Lines())
}

func TestPOSIX_InstallNativeDeps_AllPresent(t *testing.T) {
	cmd := exectest.New("cmake")
	p, _, _ := newTestPOSIX("darwin", cmd)

	msg, err := p.InstallNativeDeps(context.Background(), []config.Package{{Name: "cmake", Binary: "cmake"}})

	require.NoError(t, err)
	assert.Equal(t, "Native dependencies already installed", msg)
	assert.Empty(t, cmd.Calls)
}

func TestPOSIX_InstallNativeDeps_MissingPackageManager(t *testing.T) {
	cmd := exectest.New()
	p, _, _ := newTestPOSIX("darwin", cmd)

	_, err := p.InstallNativeDeps(context.Background(), []config.Package{{Name: "cmake", Binary: "cmake"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, setuperr.ErrPrerequisite)
	assert.Empty(t, cmd.Calls)
}

func TestPOSIX_InstallNativeDeps_SubprocessFailure(t *testing.T) {
	cmd := exectest.New("apt-get")
	cmd.Failures["apt-get update"] = assert.AnError
	p, _, _ := newTestPOSIX("linux", cmd)

	_, err := p.InstallNativeDeps(context.Background(), []config.Package{{Name: "flex"}})

	assert.ErrorIs(t, err, setuperr.ErrSubprocess)
	assert.Equal(t, []string{"apt-get update"}, cmd.Lines())
}

func TestPOSIX_PersistVariable(t *testing.T) {
	p, fsys, store := newTestPOSIX("linux", exectest.New())

	require.NoError(t, p.PersistVariable("PICO_GCC_ROOT", "/usr"))
	require.NoError(t, p.PersistVariable("PICO_SDK_DIR", "/home/dev/.local/share/pico/pico-sdk"))
	require.NoError(t, p.PersistVariable("PICO_GCC_ROOT", "/opt/homebrew"))

	assert.Equal(t, "export PICO_GCC_ROOT=/opt/homebrew\nexport PICO_SDK_DIR=/home/dev/.local/share/pico/pico-sdk\n", exportsContent(t, fsys))
	assert.Equal(t, "/opt/homebrew", envmut.Get(store, "PICO_GCC_ROOT"))
}

func TestPOSIX_UpdatePath(t *testing.T) {
	p, fsys, store := newTestPOSIX("linux", exectest.New())
	require.NoError(t, p.PersistVariable("MODDABLE", "/opt/moddable"))

	status, err := p.UpdatePath("/opt/moddable/build/bin/lin/release")
	require.NoError(t, err)
	assert.Equal(t, envmut.PathUpdated, status)

	status, err = p.UpdatePath("/opt/moddable/build/bin/lin/release")
	require.NoError(t, err)
	assert.Equal(t, envmut.AlreadyPresent, status)

	status, err = p.UpdatePath("/opt/tools")
	require.NoError(t, err)
	assert.Equal(t, envmut.PathUpdated, status)

	assert.Equal(t,
		"export MODDABLE=/opt/moddable\nexport PATH=$PATH:/opt/moddable/build/bin/lin/release:/opt/tools\n",
		exportsContent(t, fsys))
	assert.Equal(t, "/usr/bin:/bin:/opt/moddable/build/bin/lin/release:/opt/tools", envmut.Get(store, "PATH"))
}

func TestPOSIX_LinkProfile(t *testing.T) {
	p, fsys, _ := newTestPOSIX("linux", exectest.New())

	rc, changed, err := p.LinkProfile()
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/.bashrc", rc)
	assert.True(t, changed)

	_, changed, err = p.LinkProfile()
	require.NoError(t, err)
	assert.False(t, changed)

	data, err := afero.ReadFile(fsys, rc)
	require.NoError(t, err)
	assert.Equal(t, "source "+testExports+"\n", string(data))
}

func TestPOSIX_LinkProfileQuotesPath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	exports := "/Users/dev/My Tools/moddable-setup-export.sh"
	p := NewPOSIX("darwin", Deps{
		FS:      fsys,
		Store:   envmut.NewMapStore("SHELL", "/bin/zsh"),
		Exports: envmut.NewExportsFile(fsys, exports),
		Home:    "/Users/dev",
	})

	rc, changed, err := p.LinkProfile()
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := afero.ReadFile(fsys, rc)
	require.NoError(t, err)
	assert.Equal(t, `source "`+exports+`"`+"\n", string(data))
}

func TestDetectShell(t *testing.T) {
	assert.Equal(t, "zsh", DetectShell("/bin/zsh"))
	assert.Equal(t, "bash", DetectShell("/usr/local/bin/bash"))
	assert.Equal(t, "zsh", DetectShell("/usr/bin/fish"))
	assert.Equal(t, "zsh", DetectShell(""))
}

func TestRCFile(t *testing.T) {
	assert.Equal(t, "/home/dev/.zshrc", RCFile("/home/dev", "zsh"))
	assert.Equal(t, "/home/dev/.zshrc", RCFile("/home/dev", "tcsh"))
}

func TestDetect(t *testing.T) {
	for goos, want := range map[string]string{"darwin": "darwin", "linux": "linux", "windows": "windows"} {
		p, err := Detect(goos, Deps{})
		require.NoError(t, err)
		assert.Equal(t, want, p.Name())
	}

	_, err := Detect("plan9", Deps{})
	assert.ErrorIs(t, err, setuperr.ErrUnsupported)
}
