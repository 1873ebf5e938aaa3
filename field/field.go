// Package field provides typed wrappers for scalar values displayed in
// templates. A field knows how to render itself (escaping text, formatting
// numbers) and exposes formatting methods such as $Price.Nice or
// $Title.LimitCharacters(10).
//
// Fields are created either by name, using the cast declared by a data item
// or provider (Create), or from the runtime type of a Go scalar (Promote).
package field

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"sync"
	"text/template"

	"github.com/robfig/ssview/data"
)

// DefaultCast is the cast used for strings with no declared cast.
const DefaultCast = "Text"

// ErrUnknownCast is returned when creating a field with an unregistered cast.
var ErrUnknownCast = errors.New("unknown cast")

// Field is a typed scalar value.
type Field interface {
	data.Viewable
	data.Existence

	// Value returns the underlying Go value.
	Value() any

	// Type returns the cast name of this field, e.g. "HTMLText".
	Type() string
}

// Constructor creates a field from a raw value.
type Constructor func(value any) (Field, error)

var (
	castsMu sync.RWMutex
	casts   = map[string]Constructor{
		"Boolean":  func(v any) (Field, error) { return NewBoolean(v) },
		"Text":     func(v any) (Field, error) { return NewText(v), nil },
		"Varchar":  func(v any) (Field, error) { return NewVarchar(v), nil },
		"HTMLText": func(v any) (Field, error) { return NewHTMLText(v), nil },
		"Int":      func(v any) (Field, error) { return NewInt(v) },
		"Float":    func(v any) (Field, error) { return NewFloat(v) },
		"Decimal":  func(v any) (Field, error) { return NewFloat(v) },
	}
)

// Register makes a cast available to Create under the given name, replacing
// any existing cast of that name.
func Register(name string, c Constructor) {
	castsMu.Lock()
	casts[name] = c
	castsMu.Unlock()
}

// Casts returns the names of all registered casts, sorted.
func Casts() []string {
	castsMu.RLock()
	defer castsMu.RUnlock()
	var names = make([]string, 0, len(casts))
	for name := range casts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create returns a field of the named cast holding value. An empty cast uses
// DefaultCast.
func Create(cast string, value any) (Field, error) {
	if cast == "" {
		cast = DefaultCast
	}
	castsMu.RLock()
	var c, ok = casts[cast]
	castsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCast, cast)
	}
	return c(value)
}

// Promote wraps a Go scalar in the field matching its runtime type: booleans
// become Boolean, strings Text, floats Float and integers Int. Unsigned
// integers too large for an Int become Text. ok is false for anything else.
func Promote(v any) (f Field, ok bool) {
	switch v := v.(type) {
	case bool:
		return Boolean{v}, true
	case string:
		return NewText(v), true
	case float32:
		return Float{float64(v)}, true
	case float64:
		return Float{v}, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		var i, err = NewInt(v)
		if err != nil {
			return NewText(fmt.Sprint(v)), true
		}
		return i, true
	}
	return nil, false
}

// Common template methods ----------

// scalar is the part of every field the common methods operate on.
type scalar interface {
	Field
	raw() string
	nice() string
}

type method[T any] func(f T, args []any) (any, error)

type methodSet[T any] map[string]method[T]

func (m methodSet[T]) has(name string) bool {
	if _, ok := m[name]; ok {
		return true
	}
	_, ok := common[name]
	return ok
}

func (m methodSet[T]) call(f T, name string, args []any) (any, error) {
	if fn, ok := m[name]; ok {
		return fn(f, args)
	}
	if fn, ok := common[name]; ok {
		return fn(any(f).(scalar), args)
	}
	return nil, nil
}

// common are the methods every field exposes.
var common = methodSet[scalar]{
	"RAW":    func(f scalar, _ []any) (any, error) { return NewHTMLText(f.raw()), nil },
	"XML":    func(f scalar, _ []any) (any, error) { return NewHTMLText(html.EscapeString(f.raw())), nil },
	"HTML":   func(f scalar, _ []any) (any, error) { return NewHTMLText(html.EscapeString(f.raw())), nil },
	"ATT":    func(f scalar, _ []any) (any, error) { return NewHTMLText(html.EscapeString(f.raw())), nil },
	"JS":     func(f scalar, _ []any) (any, error) { return NewHTMLText(template.JSEscapeString(f.raw())), nil },
	"Nice":   func(f scalar, _ []any) (any, error) { return NewText(f.nice()), nil },
	"Exists": func(f scalar, _ []any) (any, error) { return f.Exists(), nil },
	"Value":  func(f scalar, _ []any) (any, error) { return f.Value(), nil },
}
