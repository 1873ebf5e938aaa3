package pongobridge

import (
	"bytes"
	"io"
	"path"

	"github.com/spf13/afero"

	"github.com/robfig/ssview/template"
)

// loader adapts a template.Loader to pongo2. Names without an extension,
// such as "Includes/Nav", are resolved as candidates across the theme
// roots; other names are relative to the including template.
type loader struct {
	templates *template.Loader
}

func (l loader) Abs(base, name string) string {
	if p, ok := l.candidate(name); ok {
		return p
	}
	if base == "" || path.IsAbs(name) {
		return name
	}
	return path.Join(path.Dir(base), name)
}

func (l loader) Get(p string) (io.Reader, error) {
	if found, ok := l.candidate(p); ok {
		p = found
	}
	content, err := afero.ReadFile(l.templates.Fs(), p)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(content), nil
}

func (l loader) candidate(name string) (string, bool) {
	if path.Ext(name) != "" {
		return "", false
	}
	return l.templates.Find(template.ParseCandidate(name))
}
