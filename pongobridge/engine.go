// Package pongobridge renders pongo2 templates against the same view model
// as the .ss engine.
//
// The item is available as model, customised with the arguments:
//
//	<h1>{{ model|obj:"Title" }}</h1>
//	{% for p in model|obj:"Children" %}{{ p|obj:"Link" }}{% endfor %}
//	{% if model|exists:"Summary" %}...{% endif %}
//
// lookup resolves a name against the scope, which includes the global and
// iterator properties, $Layout and $Content:
//
//	{{ lookup("Layout") }} {{ lookup("BaseHref") }}
package pongobridge

import (
	"fmt"
	"path"

	"github.com/flosch/pongo2/v6"

	"github.com/robfig/ssview/field"
	"github.com/robfig/ssview/template"
	"github.com/robfig/ssview/view"
)

// Ext is the extension of the templates rendered by this engine.
const Ext = ".pongo2"

// Engine renders pongo2 templates found by a template.Loader.
type Engine struct {
	loader *template.Loader
	set    *pongo2.TemplateSet
	reg    *view.Registry
}

var _ template.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry sets the property registry consulted by lookup. The default
// is view.DefaultRegistry.
func WithRegistry(reg *view.Registry) Option {
	return func(e *Engine) { e.reg = reg }
}

// Debug disables pongo2's template cache, so that modified templates are
// picked up on the next render.
func Debug(debug bool) Option {
	return func(e *Engine) { e.set.Debug = debug }
}

// New returns an engine rendering templates found by l.
func New(l *template.Loader, opts ...Option) *Engine {
	var e = &Engine{
		loader: l,
		set:    pongo2.NewSet("ssview", loader{l}),
		reg:    view.DefaultRegistry,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Loader returns the loader templates are found with.
func (e *Engine) Loader() *template.Loader {
	return e.loader
}

func (e *Engine) HasTemplate(candidates ...template.Candidate) bool {
	_, ok := e.loader.Find(candidates...)
	return ok
}

// Process renders the first candidate that exists. Layout and Content
// templates of the same names are available through lookup, as they are
// for .ss templates.
func (e *Engine) Process(candidates []template.Candidate, item *view.Data, args view.Bindings, inherited *view.Scope) (string, error) {
	chosen, p, ok := e.loader.Resolve(candidates...)
	if !ok {
		return "", fmt.Errorf("%w: %v", template.ErrTemplateNotFound, candidates)
	}
	tpl, err := e.set.FromCache(p)
	if err != nil {
		return "", err
	}

	var underlay = view.Bindings{"I18NNamespace": view.Literal{Value: path.Base(p)}}
	for _, typ := range template.SubTemplates(chosen.Type) {
		var sub = template.Retype(candidates, typ)
		if !e.HasTemplate(sub...) {
			continue
		}
		underlay[typ] = view.Producer(func() (any, error) {
			var out, err = e.Process(sub, item, args, nil)
			if err != nil {
				return nil, err
			}
			return field.NewHTMLText(out), nil
		})
	}
	return tpl.Execute(e.context(view.NewScope(e.reg, item, args, underlay, inherited), item, args))
}

// RenderString renders pongo2 source.
func (e *Engine) RenderString(source string, item *view.Data, args view.Bindings) (string, error) {
	tpl, err := e.set.FromString(source)
	if err != nil {
		return "", err
	}
	return tpl.Execute(e.context(view.NewScope(e.reg, item, args, view.Bindings{}, nil), item, args))
}

// Compile parses the template at path, reporting any syntax error.
func (e *Engine) Compile(path string) error {
	if _, err := e.set.FromFile(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Flush empties pongo2's template cache.
func (e *Engine) Flush() {
	e.set.CleanCache()
}

func (e *Engine) context(scope *view.Scope, item *view.Data, args view.Bindings) pongo2.Context {
	return pongo2.Context{
		"model": item.Customise(args),
		"lookup": func(name string) (*pongo2.Value, error) {
			out, err := scope.OutputValue(name)
			if err != nil {
				return nil, err
			}
			return pongo2.AsSafeValue(out), nil
		},
	}
}
