// Package afile implements the SAVE/LOAD persistence capability: a
// line-oriented file sink/source the interpreter's FileStore interface
// delegates to. It is grounded on the teacher's localfiles package (a
// name-keyed cache in front of the real store) and its afile package
// (the FQFN-keyed file abstraction), narrowed to the one operation the
// core language actually needs: whole-program text save and load.
package afile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-applesoft/applesoft/berrors"
)

// defaultExt is appended to a bare program name, mirroring the ".BAS"
// convention LOAD/SAVE use when no extension is given.
const defaultExt = ".bas"

// Local is a FileStore backed by the local filesystem: SAVE opens,
// fully writes, and closes a file within one call, and LOAD reads one
// whole file back, per the one-shot-handle lifetime spec.DATA MODEL
// describes for the file format.
type Local struct {
	Dir string
}

// NewLocal creates a Local FileStore rooted at dir.
func NewLocal(dir string) *Local {
	if dir == "" {
		dir = "."
	}
	return &Local{Dir: dir}
}

func (l *Local) path(name string) string {
	if filepath.Ext(name) == "" {
		name += defaultExt
	}
	return filepath.Join(l.Dir, name)
}

// Save writes lines (already formatted "<n> <text>" by the caller) one
// per physical line, ascending by line number, per spec.EXTERNAL
// INTERFACES's file format.
func (l *Local) Save(name string, lines []string) error {
	f, err := os.Create(l.path(name))
	if err != nil {
		return &berrors.HostError{Detail: err.Error()}
	}
	defer f.Close()

	for _, ln := range lines {
		if _, err := fmt.Fprintln(f, ln); err != nil {
			return &berrors.HostError{Detail: err.Error()}
		}
	}
	return nil
}

// Load reads name back into its stored lines. A missing file reports
// ?FILE NOT FOUND, matching the spec's required message text exactly.
func (l *Local) Load(name string) ([]string, error) {
	data, err := os.ReadFile(l.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, berrors.New(berrors.FileNotFound)
		}
		return nil, &berrors.HostError{Detail: err.Error()}
	}

	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}
