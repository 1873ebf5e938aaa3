// Package ssengine renders .ss templates by compiling them to scope
// operations.
package ssengine

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/robfig/ssview/bytecode"
	"github.com/robfig/ssview/field"
	"github.com/robfig/ssview/parse"
	"github.com/robfig/ssview/parsepasses"
	"github.com/robfig/ssview/template"
	"github.com/robfig/ssview/view"

	// registers the iterator properties in view.DefaultRegistry
	_ "github.com/robfig/ssview/provider"
)

// Ext is the extension of the templates rendered by this engine.
const Ext = ".ss"

// Logger is used to report compilation and file watching events.
var Logger = zap.NewNop()

// Engine renders .ss templates found by a template.Loader. Compiled
// templates are cached by path and modification time.
type Engine struct {
	loader   *template.Loader
	reg      *view.Registry
	onChange func(path string)

	mu    sync.RWMutex
	cache map[string]*compiled
	group singleflight.Group

	watcher *watcher
}

var _ template.Engine = (*Engine)(nil)

type compiled struct {
	prog    *bytecode.Program
	name    string
	modTime time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry sets the property registry used for global and iterator
// properties. The default is view.DefaultRegistry.
func WithRegistry(reg *view.Registry) Option {
	return func(e *Engine) { e.reg = reg }
}

// OnChange sets a function called with the path of each cached template
// invalidated by the file watcher.
func OnChange(fn func(path string)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// New returns an engine rendering templates found by loader.
func New(loader *template.Loader, opts ...Option) *Engine {
	var e = &Engine{
		loader: loader,
		reg:    view.DefaultRegistry,
		cache:  make(map[string]*compiled),
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

// Registry returns the property registry used by rendered templates.
func (e *Engine) Registry() *view.Registry {
	return e.reg
}

func (e *Engine) HasTemplate(candidates ...template.Candidate) bool {
	_, ok := e.loader.Find(candidates...)
	return ok
}

// Process renders the first candidate that exists. A main template may
// render $Layout and $Content, which are the Layout and Content templates
// with the same names as the candidates, rendered against the same item.
func (e *Engine) Process(candidates []template.Candidate, item *view.Data, args view.Bindings, inherited *view.Scope) (string, error) {
	chosen, path, ok := e.loader.Resolve(candidates...)
	if !ok {
		return "", fmt.Errorf("%w: %v", template.ErrTemplateNotFound, candidates)
	}

	var underlay = e.underlay(path)
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

	var buf bytes.Buffer
	if err := e.execute(&buf, path, view.NewScope(e.reg, item, args, underlay, inherited)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderString renders template source. It is compiled on every call.
func (e *Engine) RenderString(source string, item *view.Data, args view.Bindings) (string, error) {
	c, err := e.compile("string", source, time.Time{})
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	var scope = view.NewScope(e.reg, item, args, view.Bindings{}, nil)
	if err := c.prog.Execute(&buf, c.name, scope, e.include); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Flush empties the compiled template cache.
func (e *Engine) Flush() {
	e.mu.Lock()
	e.cache = make(map[string]*compiled)
	e.mu.Unlock()
}

// Compile compiles the template at path, returning the cached program if
// the file is unchanged.
func (e *Engine) Compile(path string) (*bytecode.Program, error) {
	c, err := e.program(path)
	if err != nil {
		return nil, err
	}
	return c.prog, nil
}

func (e *Engine) execute(wr io.Writer, path string, scope *view.Scope) error {
	c, err := e.program(path)
	if err != nil {
		return err
	}
	return c.prog.Execute(wr, c.name, scope, e.include)
}

// include renders <% include Name %>: the Includes template of that name,
// else the main template.
func (e *Engine) include(wr io.Writer, name string, args view.Bindings, scope *view.Scope) error {
	path, ok := e.loader.Find(includeCandidates(name)...)
	if !ok {
		return fmt.Errorf("include %s: %w", name, template.ErrTemplateNotFound)
	}
	return e.execute(wr, path, view.NewScope(e.reg, scope.Item(), args, e.underlay(path), scope))
}

func (e *Engine) includeExists(name string) bool {
	return e.HasTemplate(includeCandidates(name)...)
}

func (e *Engine) underlay(p string) view.Bindings {
	return view.Bindings{"I18NNamespace": view.Literal{Value: path.Base(p)}}
}

// program returns the compiled template at path, compiling it if it is not
// cached or if it has been modified. While watching, cached templates are
// used until the watcher invalidates them.
func (e *Engine) program(path string) (*compiled, error) {
	e.mu.RLock()
	var c, ok = e.cache[path]
	e.mu.RUnlock()
	if ok && e.watching() {
		return c, nil
	}
	if ok {
		modTime, err := e.loader.ModTime(path)
		if err != nil {
			return nil, err
		}
		if modTime.Equal(c.modTime) {
			return c, nil
		}
	}

	v, err, _ := e.group.Do(path, func() (any, error) {
		var start = time.Now()
		content, modTime, err := e.loader.Read(path)
		if err != nil {
			return nil, err
		}
		c, err := e.compile(path, content, modTime)
		if err != nil {
			Logger.Error("template compilation failed", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		e.mu.Lock()
		e.cache[path] = c
		e.mu.Unlock()
		Logger.Debug("compiled template", zap.String("path", path), zap.Duration("took", time.Since(start)))
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*compiled), nil
}

func (e *Engine) compile(name, content string, modTime time.Time) (*compiled, error) {
	node, err := parse.Template(name, content)
	if err != nil {
		return nil, err
	}
	var reg template.Registry
	if err := reg.Add(node); err != nil {
		return nil, err
	}
	if err := parsepasses.CheckIncludes(&reg, e.includeExists); err != nil {
		return nil, err
	}
	prog, err := bytecode.Compile(&reg)
	if err != nil {
		return nil, err
	}
	return &compiled{prog, name, modTime}, nil
}

func (e *Engine) invalidate(path string) {
	e.mu.Lock()
	var _, ok = e.cache[path]
	delete(e.cache, path)
	e.mu.Unlock()
	if !ok {
		return
	}
	Logger.Info("template changed", zap.String("path", path))
	if e.onChange != nil {
		e.onChange(path)
	}
}

func includeCandidates(name string) []template.Candidate {
	return []template.Candidate{
		{Type: template.Includes, Name: name},
		{Type: template.Main, Name: name},
	}
}
