package envmut

import (
	"runtime"
	"strings"
)

// PathStatus reports the outcome of a PATH upsert.
type PathStatus int

const (
	// AlreadyPresent means the entry was found and the value is returned unchanged.
	AlreadyPresent PathStatus = iota
	// PathUpdated means the entry was appended.
	PathUpdated
)

func (s PathStatus) String() string {
	if s == PathUpdated {
		return "path updated"
	}
	return "already present"
}

// PathList describes a delimiter-separated search path.
type PathList struct {
	Separator string
	// FoldCase makes entry comparison case-insensitive, as Windows requires.
	FoldCase bool
}

var (
	// WindowsPathList is the user/system PATH format stored in the registry.
	WindowsPathList = PathList{Separator: ";", FoldCase: true}
	// POSIXPathList is the colon-separated, case-sensitive PATH of unix shells.
	POSIXPathList = PathList{Separator: ":", FoldCase: false}
)

// NativePathList returns the PATH format of the running OS.
func NativePathList() PathList {
	if runtime.GOOS == "windows" {
		return WindowsPathList
	}
	return POSIXPathList
}

// Split returns the entries of value in order. Empty values have no entries.
func (l PathList) Split(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, l.Separator)
}

// Contains reports whether entry is one of the entries of value.
func (l PathList) Contains(value, entry string) bool {
	for _, existing := range l.Split(value) {
		if l.equal(existing, entry) {
			return true
		}
	}
	return false
}

// Upsert appends entry to current unless it is already present. Existing
// entries keep their order and spelling; nothing is ever removed. A trailing
// separator on current is reused instead of producing an empty entry.
func (l PathList) Upsert(current, entry string) (string, PathStatus) {
	if entry == "" || l.Contains(current, entry) {
		return current, AlreadyPresent
	}
	switch {
	case current == "":
		return entry, PathUpdated
	case strings.HasSuffix(current, l.Separator):
		return current + entry, PathUpdated
	default:
		return current + l.Separator + entry, PathUpdated
	}
}

func (l PathList) equal(a, b string) bool {
	if l.FoldCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// UpsertPathEntry ensures newEntry is on currentPathValue using the PATH
// format of the running OS.
func UpsertPathEntry(currentPathValue, newEntry string) (string, PathStatus) {
	return NativePathList().Upsert(currentPathValue, newEntry)
}
