package view

import (
	"fmt"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/robfig/ssview/data"
	"github.com/robfig/ssview/field"
)

// Callable computes a property value from the lookup's arguments.
type Callable func(args []any) (any, error)

// Variable is a property exposed by a provider. The value comes from Func,
// Value or, failing both, the provider's exported method named Method.
type Variable struct {
	Name    string // name used in templates; defaults to Method
	Method  string
	Casting string // cast for string results; defaults to the registry's
	Func    Callable
	Value   *Literal
}

// GlobalProvider exposes properties available in every template.
type GlobalProvider interface {
	TemplateGlobalVariables() []Variable
}

// IteratorProvider exposes properties describing the position of the
// current item within the list being looped over.
type IteratorProvider interface {
	TemplateIteratorVariables() []Variable

	// SetIteratorProperties is called with the current position and total
	// before one of the provider's variables is evaluated.
	SetIteratorProperties(pos, total int)
}

// Property is a normalized provider variable.
type Property struct {
	Name        string
	Casting     string
	Implementor any
	Callable    Callable
	Value       *Literal
}

func (p Property) value(args []any) (any, error) {
	switch {
	case p.Callable != nil:
		return p.Callable(args)
	case p.Value != nil:
		return p.Value.Value, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoValueSource, p.Name)
}

// Registry holds the global and iterator properties collected from a list of
// providers. The tables are built once, on first use, and rebuilt after Reset
// or Register.
type Registry struct {
	defaultCast string

	mu        sync.Mutex
	providers []any
	built     *tables

	iterMu sync.Mutex // held while an iterator provider is positioned
}

type tables struct {
	once      sync.Once
	globals   map[string]Property
	iterators map[string]Property
}

// DefaultRegistry is used by scopes created without a registry. Importing
// the provider package registers the basic iterator properties with it.
var DefaultRegistry = NewRegistry()

// NewRegistry returns a registry of the given providers, each of which must
// implement GlobalProvider, IteratorProvider or both.
func NewRegistry(providers ...any) *Registry {
	var r = &Registry{defaultCast: field.DefaultCast}
	r.Register(providers...)
	return r
}

// SetDefaultCast sets the cast used for string values with no declared cast.
func (r *Registry) SetDefaultCast(cast string) {
	r.mu.Lock()
	r.defaultCast = cast
	r.built = nil
	r.mu.Unlock()
}

// DefaultCast returns the cast used for string values with no declared cast.
func (r *Registry) DefaultCast() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultCast
}

// Register adds providers. Later providers override earlier ones that expose
// a property of the same name.
func (r *Registry) Register(providers ...any) {
	for _, p := range providers {
		switch p.(type) {
		case GlobalProvider, IteratorProvider:
		default:
			panic(fmt.Sprintf("view: %T is neither a GlobalProvider nor an IteratorProvider", p))
		}
	}
	r.mu.Lock()
	r.providers = append(r.providers, providers...)
	r.built = nil
	r.mu.Unlock()
}

// Reset discards the built property tables, so that the next lookup rebuilds
// them from the providers.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.built = nil
	r.mu.Unlock()
}

// Global returns the global property of the given name.
func (r *Registry) Global(name string) (Property, bool) {
	var p, ok = r.load().globals[name]
	return p, ok
}

// Iterator returns the iterator property of the given name.
func (r *Registry) Iterator(name string) (Property, bool) {
	var p, ok = r.load().iterators[name]
	return p, ok
}

// iteratorValue positions the property's provider at pos of total and
// evaluates the property. Providers are shared by every scope using the
// registry, so evaluations are serialized.
func (r *Registry) iteratorValue(prop Property, pos, total int, args []any) (any, error) {
	r.iterMu.Lock()
	defer r.iterMu.Unlock()
	if impl, ok := prop.Implementor.(IteratorProvider); ok {
		impl.SetIteratorProperties(pos, total)
	}
	return prop.value(args)
}

func (r *Registry) load() *tables {
	r.mu.Lock()
	if r.built == nil {
		r.built = new(tables)
	}
	var (
		t         = r.built
		providers = r.providers[:len(r.providers):len(r.providers)]
		cast      = r.defaultCast
	)
	r.mu.Unlock()

	t.once.Do(func() {
		t.globals = make(map[string]Property)
		t.iterators = make(map[string]Property)
		for _, p := range providers {
			if g, ok := p.(GlobalProvider); ok {
				addProperties(t.globals, p, g.TemplateGlobalVariables(), cast)
			}
			if it, ok := p.(IteratorProvider); ok {
				addProperties(t.iterators, p, it.TemplateIteratorVariables(), cast)
			}
		}
	})
	return t
}

// addProperties normalizes the variables of implementor and stores them
// under both their lowerCamel and UpperCamel names.
func addProperties(table map[string]Property, implementor any, vars []Variable, defaultCast string) {
	for _, v := range vars {
		var prop = Property{
			Name:        v.Name,
			Casting:     v.Casting,
			Implementor: implementor,
			Callable:    v.Func,
			Value:       v.Value,
		}
		if prop.Name == "" {
			prop.Name = v.Method
		}
		if prop.Name == "" {
			continue
		}
		if prop.Casting == "" {
			prop.Casting = defaultCast
		}
		if prop.Callable == nil && prop.Value == nil && v.Method != "" {
			if fn := data.MethodFunc(implementor, v.Method); fn != nil {
				prop.Callable = fn
			}
		}
		table[lowerFirst(prop.Name)] = prop
		table[upperFirst(prop.Name)] = prop
	}
}

func lowerFirst(s string) string {
	var r, size = utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

func upperFirst(s string) string {
	var r, size = utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
