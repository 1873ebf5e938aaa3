// Package template defines how rendering engines select and load templates.
package template

import (
	"path"
	"strings"

	"github.com/robfig/ssview/view"
)

// Template types. A candidate of type Includes is used by <% include %>;
// Layout and Content candidates render the $Layout and $Content
// placeholders of a main template.
const (
	Main     = ""
	Includes = "Includes"
	Layout   = "Layout"
	Content  = "Content"
)

// Candidate names a template that may exist in any theme.
type Candidate struct {
	Type string
	Name string // may be namespaced with backslashes, e.g. App\Pages\Home
}

// Path returns the candidate's path within a theme root.
func (c Candidate) Path(ext string) string {
	var parts = strings.Split(c.Name, `\`)
	if c.Type != Main {
		// the type directory sits within the namespace
		var last = len(parts) - 1
		parts = append(parts[:last:last], c.Type, parts[last])
	}
	return path.Join(parts...) + ext
}

func (c Candidate) String() string {
	if c.Type == Main {
		return c.Name
	}
	return c.Type + "/" + c.Name
}

// SubTemplates returns the template types a template of type typ may
// render as placeholders: a main template renders $Layout and $Content, a
// layout renders $Content.
func SubTemplates(typ string) []string {
	switch typ {
	case Main:
		return []string{Layout, Content}
	case Layout:
		return []string{Content}
	}
	return nil
}

// Retype returns the candidates with their type replaced by typ.
func Retype(candidates []Candidate, typ string) []Candidate {
	var out = make([]Candidate, len(candidates))
	for i, c := range candidates {
		out[i] = Candidate{Type: typ, Name: c.Name}
	}
	return out
}

// Candidates returns a candidate of the given type for each name.
func Candidates(typ string, names ...string) []Candidate {
	var cs = make([]Candidate, len(names))
	for i, name := range names {
		cs[i] = Candidate{Type: typ, Name: name}
	}
	return cs
}

// ParseCandidate parses "Type/Name" or "Name".
func ParseCandidate(s string) Candidate {
	for _, typ := range []string{Includes, Layout, Content} {
		if name, ok := strings.CutPrefix(s, typ+"/"); ok {
			return Candidate{Type: typ, Name: name}
		}
	}
	return Candidate{Name: s}
}

// Engine renders templates against a data item. Engines are safe for
// concurrent use; each render owns its own view.Scope.
type Engine interface {
	// HasTemplate reports whether any of the candidates exists.
	HasTemplate(candidates ...Candidate) bool

	// Process renders the first candidate that exists. args are made
	// available as overlay values and inherited, if non-nil, is the scope of
	// the template that included this one.
	Process(candidates []Candidate, item *view.Data, args view.Bindings, inherited *view.Scope) (string, error)

	// RenderString renders template source directly.
	RenderString(source string, item *view.Data, args view.Bindings) (string, error)
}
