// Package data defines the capabilities a data item exposes to the template
// layer, and adapts ordinary Go values (maps, slices, structs) to them.
//
// Items are never required to implement anything beyond Viewable. The other
// interfaces are optional facets that the scope stack and value wrapper check
// for explicitly.
package data

// Viewable is implemented by any item that may be placed in a template scope.
type Viewable interface {
	// HasMember reports whether the item itself exposes name as a property or
	// method. It must not evaluate the member.
	HasMember(name string) bool

	// Obj returns the named member, invoking it with args if it is a method.
	// A missing member yields (nil, nil).
	Obj(name string, args []any) (any, error)

	// ForTemplate returns the markup used when the item itself is printed.
	ForTemplate() string
}

// Caster is implemented by items that declare how their members are cast when
// they are returned as plain values (e.g. a Content member cast as HTMLText).
type Caster interface {
	CastingFor(name string) string
}

// Existence is implemented by items with their own notion of "has a value",
// used by <% if %> checks.
type Existence interface {
	Exists() bool
}

// Iterable is implemented by list-shaped items.
type Iterable interface {
	Iterator() Iterator
}

// Countable is implemented by items that can report their length without
// being iterated.
type Countable interface {
	Count() int
}

// Iterator walks a sequence. It is modelled as a cursor so that the scope
// stack can count a sequence and then rewind it.
type Iterator interface {
	Rewind()
	Valid() bool
	Key() int
	Current() any
	Next()
}

// Truthy returns true according to the template definition of truthy values.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0 && v == v
	case float32:
		return v != 0 && v == v
	case Existence:
		return v.Exists()
	case Countable:
		return v.Count() > 0
	}
	return true
}

// sliceIterator iterates over a List.
type sliceIterator struct {
	items []any
	pos   int
}

func (it *sliceIterator) Rewind() { it.pos = 0 }
func (it *sliceIterator) Valid() bool { return it.pos < len(it.items) }
func (it *sliceIterator) Key() int { return it.pos }
func (it *sliceIterator) Next() { it.pos++ }
func (it *sliceIterator) Current() any {
	if !it.Valid() {
		return nil
	}
	return it.items[it.pos]
}

// IteratorOf returns an Iterator over the given values.
func IteratorOf(items []any) Iterator {
	return &sliceIterator{items: items}
}
