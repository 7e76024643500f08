package envmut_test

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moddable-setup/internal/envmut"
	"moddable-setup/internal/setuperr"
)

const exportsPath = "/home/dev/.local/share/moddable-setup-export.sh"

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(data)
}

func TestParseExportLine(t *testing.T) {
	tests := []struct {
		line  string
		key   string
		value string
		ok    bool
	}{
		{line: "export FOO=bar", key: "FOO", value: "bar", ok: true},
		{line: "FOO=bar", key: "FOO", value: "bar", ok: true},
		{line: "  export   PATH=$PATH:/opt/bin", key: "PATH", value: "$PATH:/opt/bin", ok: true},
		{line: "export URL=http://x?a=b", key: "URL", value: "http://x?a=b", ok: true},
		{line: "export EMPTY=", key: "EMPTY", value: "", ok: true},
		{line: "export\tFOO=1", key: "FOO", value: "1", ok: true},
		{line: "exportFOO=1", key: "exportFOO", value: "1", ok: true},
		{line: `export DIR="/Users/dev/My SDKs/moddable"`, key: "DIR", value: "/Users/dev/My SDKs/moddable", ok: true},
		{line: `export Q="say \"hi\""`, key: "Q", value: `say "hi"`, ok: true},
		{line: "export S='a b'", key: "S", value: "a b", ok: true},
		{line: "export FOO BAR=1", ok: false},
		{line: "# export FOO=bar", ok: false},
		{line: "source ~/.profile", ok: false},
		{line: "=value", ok: false},
		{line: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, value, ok := envmut.ParseExportLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestUpsertExport_AbsentFile(t *testing.T) {
	fsys := afero.NewMemMapFs()

	change, err := envmut.UpsertExport(fsys, exportsPath, "MODDABLE", "export MODDABLE=/opt/moddable")
	require.NoError(t, err)

	assert.Equal(t, envmut.Appended, change)
	assert.Equal(t, "export MODDABLE=/opt/moddable\n", readFile(t, fsys, exportsPath))
}

func TestUpsertExport_UpdatesInPlace(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, exportsPath, []byte("export FOO=old\nexport BAR=1"), 0o644))

	change, err := envmut.UpsertExport(fsys, exportsPath, "FOO", "export FOO=new")
	require.NoError(t, err)

	assert.Equal(t, envmut.Updated, change)
	assert.Equal(t, "export FOO=new\nexport BAR=1", readFile(t, fsys, exportsPath))
}

func TestUpsertExport_AppendsAfterMissingNewline(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, exportsPath, []byte("export BAR=1"), 0o644))

	_, err := envmut.UpsertExport(fsys, exportsPath, "FOO", "export FOO=2")
	require.NoError(t, err)

	assert.Equal(t, "export BAR=1\nexport FOO=2\n", readFile(t, fsys, exportsPath))
}

func TestUpsertExport_Idempotent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, exportsPath, []byte("# managed\nexport A=1\n"), 0o600))

	_, err := envmut.UpsertExport(fsys, exportsPath, "B", "export B=2")
	require.NoError(t, err)
	once := readFile(t, fsys, exportsPath)

	change, err := envmut.UpsertExport(fsys, exportsPath, "B", "export B=2")
	require.NoError(t, err)

	assert.Equal(t, envmut.Unchanged, change)
	assert.Equal(t, once, readFile(t, fsys, exportsPath))

	info, err := fsys.Stat(exportsPath)
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())
}

func TestUpsertExport_PreservesOrderAndOtherLines(t *testing.T) {
	fsys := afero.NewMemMapFs()
	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, fmt.Sprintf("export VAR%d=%d", i, i))
	}
	original := strings.Join(lines, "\n") + "\n"
	require.NoError(t, afero.WriteFile(fsys, exportsPath, []byte(original), 0o644))

	_, err := envmut.UpsertExport(fsys, exportsPath, "NEW", "export NEW=x")
	require.NoError(t, err)
	assert.Equal(t, original+"export NEW=x\n", readFile(t, fsys, exportsPath))

	_, err = envmut.UpsertExport(fsys, exportsPath, "VAR2", "export VAR2=changed")
	require.NoError(t, err)

	got := strings.Split(strings.TrimSuffix(readFile(t, fsys, exportsPath), "\n"), "\n")
	require.Len(t, got, 6)
	for i, line := range got {
		switch i {
		case 2:
			assert.Equal(t, "export VAR2=changed", line)
		case 5:
			assert.Equal(t, "export NEW=x", line)
		default:
			assert.Equal(t, lines[i], line)
		}
	}
}

func TestUpsertExport_OneRecordPerName(t *testing.T) {
	fsys := afero.NewMemMapFs()
	file := envmut.NewExportsFile(fsys, exportsPath)

	for _, v := range []string{"a", "b", "c", "c"} {
		_, err := file.Upsert("FOO", envmut.ExportLine("FOO", v))
		require.NoError(t, err)
		_, err = file.Upsert("BAR", envmut.ExportLine("BAR", v))
		require.NoError(t, err)
	}

	records, err := file.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, envmut.Record{Name: "FOO", Value: "c", Line: 0}, records[0])
	assert.Equal(t, envmut.Record{Name: "BAR", Value: "c", Line: 1}, records[1])

	value, ok, err := file.Lookup("BAR")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c", value)
}

func TestUpsertExport_OrderIndependent(t *testing.T) {
	ab := afero.NewMemMapFs()
	ba := afero.NewMemMapFs()
	for _, fsys := range []afero.Fs{ab, ba} {
		require.NoError(t, afero.WriteFile(fsys, exportsPath, []byte("export A=0\nexport B=0\n"), 0o644))
	}

	_, err := envmut.UpsertExport(ab, exportsPath, "A", "export A=1")
	require.NoError(t, err)
	_, err = envmut.UpsertExport(ab, exportsPath, "B", "export B=1")
	require.NoError(t, err)

	_, err = envmut.UpsertExport(ba, exportsPath, "B", "export B=1")
	require.NoError(t, err)
	_, err = envmut.UpsertExport(ba, exportsPath, "A", "export A=1")
	require.NoError(t, err)

	assert.Equal(t, readFile(t, ab, exportsPath), readFile(t, ba, exportsPath))
}

func TestUpsertExport_WriteFailureLeavesFileIntact(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, exportsPath, []byte("export FOO=old\n"), 0o644))
	fsys := afero.NewReadOnlyFs(base)

	_, err := envmut.UpsertExport(fsys, exportsPath, "FOO", "export FOO=new")
	require.Error(t, err)

	assert.True(t, errors.Is(err, setuperr.ErrPersistence))
	assert.Equal(t, "export FOO=old\n", readFile(t, base, exportsPath))
}

func TestEnsureLine(t *testing.T) {
	fsys := afero.NewMemMapFs()
	rc := "/home/dev/.zshrc"
	require.NoError(t, afero.WriteFile(fsys, rc, []byte("alias ll='ls -al'\n"), 0o644))

	changed, err := envmut.EnsureLine(fsys, rc, "source /x/export.sh")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = envmut.EnsureLine(fsys, rc, "source /x/export.sh")
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, "alias ll='ls -al'\nsource /x/export.sh\n", readFile(t, fsys, rc))
}

func TestExportLine_QuotesWhenNeeded(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{value: "/opt/moddable", want: "export V=/opt/moddable"},
		{value: "$PATH:/opt/bin", want: "export V=$PATH:/opt/bin"},
		{value: "/Users/dev/My SDKs", want: `export V="/Users/dev/My SDKs"`},
		{value: `C:\sdk "x"`, want: `export V="C:\\sdk \"x\""`},
		{value: "", want: "export V="},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			line := envmut.ExportLine("V", tt.value)
			assert.Equal(t, tt.want, line)

			_, value, ok := envmut.ParseExportLine(line)
			require.True(t, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestUpsertExport_CollapsesDuplicateRecords(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, exportsPath, []byte("export FOO=a\nexport BAR=1\nexport FOO=b\n"), 0o644))

	change, err := envmut.UpsertExport(fsys, exportsPath, "FOO", "export FOO=c")
	require.NoError(t, err)

	assert.Equal(t, envmut.Updated, change)
	assert.Equal(t, "export FOO=c\nexport BAR=1\n", readFile(t, fsys, exportsPath))
}

func TestUpsertExport_DuplicatesOfCurrentLineAreCollapsed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, exportsPath, []byte("export FOO=c\nexport FOO=b\n"), 0o644))

	change, err := envmut.UpsertExport(fsys, exportsPath, "FOO", "export FOO=c")
	require.NoError(t, err)

	assert.Equal(t, envmut.Updated, change)
	assert.Equal(t, "export FOO=c\n", readFile(t, fsys, exportsPath))
}

// unreadableFs fails every open, like a file without read permission.
type unreadableFs struct {
	afero.Fs
}

func (unreadableFs) Open(name string) (afero.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
}

func TestExportsFile_ReadFailureIsPersistenceError(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, exportsPath, []byte("export FOO=1\n"), 0o644))
	file := envmut.NewExportsFile(unreadableFs{Fs: base}, exportsPath)

	_, err := file.Records()
	assert.ErrorIs(t, err, setuperr.ErrPersistence)
	assert.ErrorIs(t, err, fs.ErrPermission)

	_, err = file.Upsert("FOO", "export FOO=2")
	assert.ErrorIs(t, err, setuperr.ErrPersistence)
	assert.Equal(t, "export FOO=1\n", readFile(t, base, exportsPath))
}

func TestEnsureLine_FollowsSymlink(t *testing.T) {
	home := t.TempDir()
	target := filepath.Join(home, "dotfiles", "zshrc")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("alias ll='ls -al'\n"), 0o644))
	rc := filepath.Join(home, ".zshrc")
	require.NoError(t, os.Symlink(filepath.Join("dotfiles", "zshrc"), rc))

	changed, err := envmut.EnsureLine(afero.NewOsFs(), rc, "source /x/export.sh")
	require.NoError(t, err)
	assert.True(t, changed)

	info, err := os.Lstat(rc)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&fs.ModeSymlink, "rc must still be a symlink")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "alias ll='ls -al'\nsource /x/export.sh\n", string(data))
}

func TestUpsertExport_FollowsSymlinkChain(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real", "export.sh")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("export FOO=old\n"), 0o600))
	middle := filepath.Join(dir, "middle.sh")
	require.NoError(t, os.Symlink(target, middle))
	link := filepath.Join(dir, "export.sh")
	require.NoError(t, os.Symlink(middle, link))

	change, err := envmut.UpsertExport(afero.NewOsFs(), link, "FOO", "export FOO=new")
	require.NoError(t, err)
	assert.Equal(t, envmut.Updated, change)

	for _, l := range []string{link, middle} {
		info, err := os.Lstat(l)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&fs.ModeSymlink, l)
	}
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "export FOO=new\n", string(data))
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temp files left behind")
}
