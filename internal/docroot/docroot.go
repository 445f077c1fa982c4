// Package docroot resolves requested names against the directory being served.
//
// Every lookup goes through an os.Root, so a name can never reach a file
// outside the served directory, whether by ".." segments, absolute paths or
// symlinks. Such names resolve as not found, the same as missing files.
package docroot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var ErrNotLocal = errors.New("docroot: name escapes the document root")

// Resolution is the outcome of looking a name up. It is computed fresh on
// every call.
type Resolution struct {
	Name  string
	Found bool
	Size  int64
}

// Root is a document root opened for serving
type Root struct {
	root *os.Root
}

// Open opens dir as a document root
func Open(dir string) (*Root, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("docroot: open %s: %w", dir, err)
	}

	return &Root{root: root}, nil
}

// Dir returns the directory the root was opened on
func (r *Root) Dir() string {
	return r.root.Name()
}

// Resolve reports whether name is a servable regular file and its size. It
// only stats the file. Missing, inaccessible, non-regular and escaping names
// all come back as not found.
func (r *Root) Resolve(name string) Resolution {
	res := Resolution{Name: name}

	if !filepath.IsLocal(name) {
		return res
	}

	info, err := r.root.Stat(name)
	if err != nil || !info.Mode().IsRegular() {
		return res
	}

	res.Found = true
	res.Size = info.Size()
	return res
}

// Open opens name for reading under the same containment rules as Resolve
func (r *Root) Open(name string) (io.ReadCloser, error) {
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotLocal, name)
	}

	return r.root.Open(name)
}

func (r *Root) Close() error {
	return r.root.Close()
}
