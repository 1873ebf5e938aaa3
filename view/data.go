package view

import (
	"fmt"

	"github.com/robfig/ssview/data"
	"github.com/robfig/ssview/field"
)

// Data is a value as presented to templates. Every value reaching a
// template passes through Wrap, so that it is cast and escaped the same way
// regardless of the rendering engine.
type Data struct {
	item   data.Viewable
	custom Bindings
}

var (
	_ data.Viewable  = (*Data)(nil)
	_ data.Existence = (*Data)(nil)
	_ data.Caster    = (*Data)(nil)
)

// Wrap wraps any value:
//   - nil stays nil and a *Data is returned as-is
//   - data.Viewable items are kept
//   - booleans, strings and numbers become field.Boolean, field.Text,
//     field.Float and field.Int
//   - other Go values are adapted with data.New
func Wrap(v any) *Data {
	switch v := v.(type) {
	case nil:
		return nil
	case *Data:
		return v
	case data.Viewable:
		return &Data{item: v}
	}
	v = data.New(v)
	if v == nil {
		return nil
	}
	if item, ok := v.(data.Viewable); ok {
		return &Data{item: item}
	}
	if f, ok := field.Promote(v); ok {
		return &Data{item: f}
	}
	return &Data{item: data.Opaque{Value: v}}
}

// Raw returns the wrapped item.
func (d *Data) Raw() data.Viewable {
	return d.item
}

// Has reports whether name is a member of the item, or customised.
func (d *Data) Has(name string) bool {
	if _, ok := d.custom[name]; ok {
		return true
	}
	return d.item.HasMember(name)
}

// Get returns the named member.
func (d *Data) Get(name string) (*Data, error) {
	return d.Call(name)
}

// Call returns the named member, invoked with args if it is a method. Plain
// values are cast as declared by the item, or by runtime type otherwise.
func (d *Data) Call(name string, args ...any) (*Data, error) {
	if v, ok, err := d.custom.lookup(name); err != nil || ok {
		return Wrap(v), err
	}
	var v, err = d.item.Obj(name, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if c, ok := d.item.(data.Caster); ok && v != nil {
		if _, viewable := v.(data.Viewable); !viewable {
			if cast := c.CastingFor(name); cast != "" {
				f, err := field.Create(cast, v)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				return &Data{item: f}, nil
			}
		}
	}
	return Wrap(v), nil
}

// HasMember implements data.Viewable.
func (d *Data) HasMember(name string) bool {
	return d.Has(name)
}

// Obj implements data.Viewable.
func (d *Data) Obj(name string, args []any) (any, error) {
	var v, err = d.Call(name, args...)
	if v == nil {
		return nil, err
	}
	return v, err
}

// CastingFor implements data.Caster.
func (d *Data) CastingFor(name string) string {
	if c, ok := d.item.(data.Caster); ok {
		return c.CastingFor(name)
	}
	return ""
}

// ForTemplate returns the markup for the item.
func (d *Data) ForTemplate() string {
	return d.item.ForTemplate()
}

func (d *Data) String() string {
	if d == nil {
		return ""
	}
	return d.item.ForTemplate()
}

// Exists reports whether the item has a value, as used by <% if %>.
func (d *Data) Exists() bool {
	if d == nil {
		return false
	}
	return data.Truthy(d.item)
}

// Count returns the number of items in a list. ok is false if the item
// can not report its length without being iterated.
func (d *Data) Count() (n int, ok bool) {
	if c, ok := d.item.(data.Countable); ok {
		return c.Count(), true
	}
	return 0, false
}

// IsIterable reports whether Iterator would succeed.
func (d *Data) IsIterable() bool {
	switch d.item.(type) {
	case data.Iterable, data.Iterator:
		return true
	}
	return false
}

// Iterator returns an iterator over the item, yielding wrapped values.
func (d *Data) Iterator() (data.Iterator, error) {
	switch item := d.item.(type) {
	case data.Iterable:
		return wrappingIterator{item.Iterator()}, nil
	case data.Iterator:
		return wrappingIterator{item}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotIterable, d.item)
}

// Customise returns a copy of d whose lookups consult the given bindings
// before the item's own members. Customising nil yields an empty item.
func (d *Data) Customise(b Bindings) *Data {
	if d == nil {
		return &Data{data.Map{}, Bindings(nil).With(b)}
	}
	return &Data{d.item, d.custom.With(b)}
}

type wrappingIterator struct {
	data.Iterator
}

func (it wrappingIterator) Current() any {
	if v := Wrap(it.Iterator.Current()); v != nil {
		return v
	}
	return nil
}
