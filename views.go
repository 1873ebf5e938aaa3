package ssview

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/robfig/ssview/pongobridge"
	"github.com/robfig/ssview/ssengine"
	"github.com/robfig/ssview/template"
	"github.com/robfig/ssview/view"
)

// Views renders the templates of a compiled Bundle.
type Views struct {
	reg   *view.Registry
	ss    *ssengine.Engine
	pongo *pongobridge.Engine
	names []string
}

// Registry returns the global and iterator properties available to
// templates.
func (v *Views) Registry() *view.Registry {
	return v.reg
}

// Engine returns the engine of the given name.
func (v *Views) Engine(name string) (template.Engine, bool) {
	switch name {
	case EngineSS:
		return v.ss, true
	case EnginePongo2:
		return v.pongo, true
	}
	return nil, false
}

// Engines returns the engines in order of preference.
func (v *Views) Engines() []template.Engine {
	var engines = make([]template.Engine, len(v.names))
	for i, name := range v.names {
		engines[i], _ = v.Engine(name)
	}
	return engines
}

// Viewer returns a viewer of the first of the candidates found.
func (v *Views) Viewer(candidates ...template.Candidate) *Viewer {
	return &Viewer{v, candidates}
}

// ViewerFor returns a viewer of the named templates, each of the form
// "Name" or "Type/Name", e.g. "Layout/Page".
func (v *Views) ViewerFor(names ...string) *Viewer {
	var candidates = make([]template.Candidate, len(names))
	for i, name := range names {
		candidates[i] = template.ParseCandidate(name)
	}
	return v.Viewer(candidates...)
}

// RenderString renders template source with the named engine.
func (v *Views) RenderString(engine, source string, item any, args map[string]any) (string, error) {
	e, ok := v.Engine(engine)
	if !ok {
		return "", fmt.Errorf("unknown engine %q", engine)
	}
	return e.RenderString(source, view.Wrap(item), view.Values(args))
}

// Check compiles every template in the themes, returning all errors found.
func (v *Views) Check() error {
	var errs []error
	var check = func(compile func(string) error) func(string) error {
		return func(path string) error {
			if err := compile(path); err != nil {
				errs = append(errs, err)
			}
			return nil
		}
	}
	var ss = func(path string) error {
		_, err := v.ss.Compile(path)
		return err
	}
	if err := v.ss.Loader().Walk(check(ss)); err != nil {
		return err
	}
	if err := v.pongo.Loader().Walk(check(v.pongo.Compile)); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// Flush discards compiled templates.
func (v *Views) Flush() {
	v.ss.Flush()
	v.pongo.Flush()
}

// Close stops watching template files.
func (v *Views) Close() error {
	return v.ss.Close()
}

// Viewer renders the first template found of an ordered list of candidates.
type Viewer struct {
	views      *Views
	candidates []template.Candidate
}

// Candidates returns the templates the viewer looks for.
func (vw *Viewer) Candidates() []template.Candidate {
	return vw.candidates
}

// Engine returns the first engine, in order of preference, that has one of
// the candidates.
func (vw *Viewer) Engine() (template.Engine, bool) {
	for _, e := range vw.views.Engines() {
		if e.HasTemplate(vw.candidates...) {
			return e, true
		}
	}
	return nil, false
}

// HasTemplate reports whether any candidate exists.
func (vw *Viewer) HasTemplate() bool {
	_, ok := vw.Engine()
	return ok
}

// Process renders item. args are available to the template as overlay
// values, and inherited is the scope of the template rendering this one,
// if any.
func (vw *Viewer) Process(item any, args view.Bindings, inherited *view.Scope) (string, error) {
	e, ok := vw.Engine()
	if !ok {
		return "", fmt.Errorf("%w: %v", template.ErrTemplateNotFound, vw.candidates)
	}
	out, err := e.Process(vw.candidates, view.Wrap(item), args, inherited)
	if err != nil {
		Logger.Error("render failed", zap.Stringer("view", vw), zap.Error(err))
		return "", err
	}
	return out, nil
}

// Render writes item rendered with the given arguments to wr.
func (vw *Viewer) Render(wr io.Writer, item any, args map[string]any) error {
	out, err := vw.Process(item, view.Values(args), nil)
	if err != nil {
		return err
	}
	_, err = io.WriteString(wr, out)
	return err
}

func (vw *Viewer) String() string {
	var names = make([]string, len(vw.candidates))
	for i, c := range vw.candidates {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
