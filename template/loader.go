package template

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/spf13/afero"
)

// ErrTemplateNotFound is returned when no candidate exists in any root.
var ErrTemplateNotFound = errors.New("template not found")

// Loader finds template files across theme roots. Roots are searched in
// order, so earlier themes override later ones.
type Loader struct {
	fs    afero.Fs
	ext   string
	roots []string
}

// NewLoader returns a loader for files with the given extension (e.g.
// ".ss") beneath the roots of fs.
func NewLoader(fs afero.Fs, ext string, roots ...string) *Loader {
	if len(roots) == 0 {
		roots = []string{"."}
	}
	return &Loader{fs, ext, roots}
}

// Fs returns the filesystem templates are read from.
func (l *Loader) Fs() afero.Fs {
	return l.fs
}

// Roots returns the theme roots.
func (l *Loader) Roots() []string {
	return l.roots
}

// Find returns the path of the first candidate present in any root.
func (l *Loader) Find(candidates ...Candidate) (string, bool) {
	_, path, ok := l.Resolve(candidates...)
	return path, ok
}

// Resolve returns the first candidate present in any root, and its path.
func (l *Loader) Resolve(candidates ...Candidate) (Candidate, string, bool) {
	for _, c := range candidates {
		var rel = c.Path(l.ext)
		for _, root := range l.roots {
			var p = path.Join(root, rel)
			if fi, err := l.fs.Stat(p); err == nil && !fi.IsDir() {
				return c, p, true
			}
		}
	}
	return Candidate{}, "", false
}

// Read returns the content and modification time of the template at path.
func (l *Loader) Read(path string) (string, time.Time, error) {
	fi, err := l.fs.Stat(path)
	if err != nil {
		return "", time.Time{}, err
	}
	content, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return "", time.Time{}, err
	}
	return string(content), fi.ModTime(), nil
}

// ModTime returns the modification time of the template at path.
func (l *Loader) ModTime(path string) (time.Time, error) {
	fi, err := l.fs.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// Load finds and reads the first candidate present.
func (l *Loader) Load(candidates ...Candidate) (path, content string, err error) {
	path, ok := l.Find(candidates...)
	if !ok {
		return "", "", fmt.Errorf("%w: %v", ErrTemplateNotFound, candidates)
	}
	content, _, err = l.Read(path)
	return path, content, err
}

// Walk calls fn with the path of every template beneath the roots.
func (l *Loader) Walk(fn func(path string) error) error {
	for _, root := range l.roots {
		var err = afero.Walk(l.fs, root, func(p string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || path.Ext(p) != l.ext {
				return nil
			}
			return fn(p)
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
