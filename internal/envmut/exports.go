package envmut

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"moddable-setup/internal/logger"
	"moddable-setup/internal/setuperr"
)

// Change describes what an upsert did to a file.
type Change int

const (
	// Unchanged means the exact line was already present; nothing was written.
	Unchanged Change = iota
	// Updated means an existing record for the name was replaced in place.
	Updated
	// Appended means the line was added at the end of the file.
	Appended
)

func (c Change) String() string {
	switch c {
	case Updated:
		return "updated"
	case Appended:
		return "appended"
	default:
		return "unchanged"
	}
}

// Record is one parsed `export NAME=VALUE` line.
type Record struct {
	Name  string
	Value string
	Line  int // zero-based line index in the file
}

// ExportLine formats the canonical exports-file line for name. The value is
// double-quoted when the shell would otherwise split or reinterpret it.
func ExportLine(name, value string) string {
	return "export " + name + "=" + ShellQuote(value)
}

// shellSpecial are the characters that force a value into double quotes.
// '$' is left out so PATH values keep expanding $PATH.
const shellSpecial = " \t\n\"'\\`;&|<>()#*?[]{}!"

var (
	doubleQuoteEscaper   = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`")
	doubleQuoteUnescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`, "\\`", "`", `\$`, `$`)
)

// ShellQuote returns s unchanged when it is safe as a single shell word and
// wrapped in double quotes otherwise.
func ShellQuote(s string) string {
	if !strings.ContainsAny(s, shellSpecial) {
		return s
	}
	return `"` + doubleQuoteEscaper.Replace(s) + `"`
}

// ParseExportLine splits a line into its key and value. A leading `export`
// token is ignored, the split happens on the first '=' and a quoted value is
// unquoted. Lines without '=' or with an empty key are not records.
func ParseExportLine(line string) (key, value string, ok bool) {
	s := strings.TrimSpace(line)
	if rest, found := strings.CutPrefix(s, "export"); found && rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
		s = strings.TrimLeft(rest, " \t")
	}
	key, value, ok = strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" || strings.HasPrefix(key, "#") || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, unquote(value), true
}

func unquote(v string) string {
	if len(v) < 2 {
		return v
	}
	switch {
	case v[0] == '"' && v[len(v)-1] == '"':
		return doubleQuoteUnescaper.Replace(v[1 : len(v)-1])
	case v[0] == '\'' && v[len(v)-1] == '\'':
		return v[1 : len(v)-1]
	}
	return v
}

// ExportsFile is a shell-sourced file holding one export statement per line.
// It only ever updates or appends lines; other content is left untouched.
type ExportsFile struct {
	fs   afero.Fs
	path string
}

// NewExportsFile returns an ExportsFile for path on the given filesystem.
func NewExportsFile(fsys afero.Fs, path string) *ExportsFile {
	return &ExportsFile{fs: fsys, path: path}
}

// Path returns the location of the exports file.
func (e *ExportsFile) Path() string { return e.path }

// Records parses every export record in file order. A missing file has none.
func (e *ExportsFile) Records() ([]Record, error) {
	doc, err := readDocument(e.fs, e.path)
	if err != nil {
		return nil, err
	}
	var records []Record
	for i, line := range doc.lines {
		if key, value, ok := ParseExportLine(line); ok {
			records = append(records, Record{Name: key, Value: value, Line: i})
		}
	}
	return records, nil
}

// Lookup returns the value of the first record for name.
func (e *ExportsFile) Lookup(name string) (string, bool, error) {
	records, err := e.Records()
	if err != nil {
		return "", false, err
	}
	for _, r := range records {
		if r.Name == name {
			return r.Value, true, nil
		}
	}
	return "", false, nil
}

// Upsert makes fullLine the single record for name: the existing line is
// replaced in place, or fullLine is appended when name has no record yet.
func (e *ExportsFile) Upsert(name, fullLine string) (Change, error) {
	doc, err := readDocument(e.fs, e.path)
	if err != nil {
		return Unchanged, err
	}

	var matches []int
	for i, line := range doc.lines {
		if key, _, ok := ParseExportLine(line); ok && key == name {
			matches = append(matches, i)
		}
	}

	var change Change
	switch {
	case len(matches) == 1 && doc.lines[matches[0]] == fullLine:
		logger.Debug("[DEBUG] %s already holds %q\n", e.path, fullLine)
		return Unchanged, nil
	case len(matches) > 0:
		// The first record takes the new line; later duplicates would
		// override it when the file is sourced, so they go.
		doc.lines[matches[0]] = fullLine
		doc.lines = dropLines(doc.lines, matches[1:])
		change = Updated
	default:
		doc.lines = append(doc.lines, fullLine)
		doc.trailingNewline = true
		change = Appended
	}

	if err := doc.write(e.fs, e.path); err != nil {
		return Unchanged, err
	}
	logger.Debug("[DEBUG] %s %s in %s\n", change, name, e.path)
	return change, nil
}

// UpsertExport is the one-shot form of ExportsFile.Upsert.
func UpsertExport(fsys afero.Fs, path, name, fullLine string) (Change, error) {
	return NewExportsFile(fsys, path).Upsert(name, fullLine)
}

// EnsureLine appends line to the file at path unless an identical line
// (ignoring surrounding whitespace) is already present. It reports whether
// the file was changed.
func EnsureLine(fsys afero.Fs, path, line string) (bool, error) {
	doc, err := readDocument(fsys, path)
	if err != nil {
		return false, err
	}
	want := strings.TrimSpace(line)
	for _, existing := range doc.lines {
		if strings.TrimSpace(existing) == want {
			return false, nil
		}
	}
	doc.lines = append(doc.lines, line)
	doc.trailingNewline = true
	if err := doc.write(fsys, path); err != nil {
		return false, err
	}
	return true, nil
}

// document is a text file split into lines. trailingNewline remembers whether
// the original content ended with '\n' so in-place edits keep the last byte.
type document struct {
	lines           []string
	trailingNewline bool
	mode            fs.FileMode
}

func readDocument(fsys afero.Fs, path string) (*document, error) {
	doc := &document{mode: 0o644}
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, setuperr.Persistence("read", path, err)
	}
	if info, err := fsys.Stat(path); err == nil {
		doc.mode = info.Mode().Perm()
	}
	text := string(data)
	if text == "" {
		return doc, nil
	}
	doc.trailingNewline = strings.HasSuffix(text, "\n")
	doc.lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	return doc, nil
}

func (d *document) bytes() []byte {
	if len(d.lines) == 0 {
		return nil
	}
	text := strings.Join(d.lines, "\n")
	if d.trailingNewline {
		text += "\n"
	}
	return []byte(text)
}

// write replaces path with the document through a temp file in the same
// directory followed by a rename, so readers never see a partial file.
// A symlinked path is resolved first so the link survives and its target
// receives the content.
func (d *document) write(fsys afero.Fs, path string) error {
	path, err := resolveLinks(fsys, path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return setuperr.Persistence("create directory", dir, err)
	}

	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return setuperr.Persistence("write", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = fsys.Remove(tmpName) }

	if _, err := tmp.Write(d.bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return setuperr.Persistence("write", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return setuperr.Persistence("sync", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return setuperr.Persistence("write", path, err)
	}
	if err := fsys.Chmod(tmpName, d.mode); err != nil {
		cleanup()
		return setuperr.Persistence("chmod", path, err)
	}
	if err := fsys.Rename(tmpName, path); err != nil {
		cleanup()
		return setuperr.Persistence("replace", path, err)
	}
	return nil
}

func dropLines(lines []string, drop []int) []string {
	if len(drop) == 0 {
		return lines
	}
	skip := make(map[int]bool, len(drop))
	for _, i := range drop {
		skip[i] = true
	}
	kept := lines[:0]
	for i, line := range lines {
		if !skip[i] {
			kept = append(kept, line)
		}
	}
	return kept
}

// maxLinkHops bounds symlink resolution, matching the kernel's ELOOP limit.
const maxLinkHops = 40

// resolveLinks follows path through symlinks on filesystems that expose them
// and returns the final target. A missing path resolves to itself.
func resolveLinks(fsys afero.Fs, path string) (string, error) {
	lstater, ok := fsys.(afero.Lstater)
	if !ok {
		return path, nil
	}
	reader, ok := fsys.(afero.LinkReader)
	if !ok {
		return path, nil
	}
	for range maxLinkHops {
		info, _, err := lstater.LstatIfPossible(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", setuperr.Persistence("stat", path, err)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return path, nil
		}
		target, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", setuperr.Persistence("read link", path, err)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		logger.Debug("[DEBUG] %s links to %s\n", path, target)
		path = target
	}
	return "", setuperr.Persistence("resolve", path, errors.New("too many levels of symbolic links"))
}
