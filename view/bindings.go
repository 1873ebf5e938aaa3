package view

import "maps"

// Binding is a value injected into a scope under a name: either a Literal
// or a Producer.
type Binding interface {
	binding()
}

// Literal binds a fixed value. A Literal holding nil is still a binding,
// and hides any member of the same name.
type Literal struct {
	Value any
}

// Producer binds a value computed on every lookup. A Producer returning nil
// is treated as unbound, so the lookup continues.
type Producer func() (any, error)

func (Literal) binding()  {}
func (Producer) binding() {}

// Bindings maps names to bound values.
type Bindings map[string]Binding

// Values returns Bindings of literals for the given values.
func Values(values map[string]any) Bindings {
	var b = make(Bindings, len(values))
	for k, v := range values {
		b[k] = Literal{v}
	}
	return b
}

// With returns a copy of b with the bindings of other added, replacing
// bindings of the same name.
func (b Bindings) With(other Bindings) Bindings {
	var out = make(Bindings, len(b)+len(other))
	maps.Copy(out, b)
	maps.Copy(out, other)
	return out
}

// lookup evaluates the binding for name.
func (b Bindings) lookup(name string) (value any, found bool, err error) {
	switch v := b[name].(type) {
	case Literal:
		return v.Value, true, nil
	case Producer:
		value, err = v()
		if err != nil {
			return nil, false, err
		}
		return value, value != nil, nil
	}
	return nil, false, nil
}
