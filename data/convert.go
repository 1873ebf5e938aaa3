package data

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// New adapts the given Go value for use in a template scope, using
// DefaultStructOptions for structs.
func New(value any) any {
	return NewWith(DefaultStructOptions, value)
}

// NewWith adapts the given Go value for use in a template scope:
//   - Viewable values are returned as-is
//   - nil, booleans, numbers and strings are returned as-is (normalized to
//     bool, int64, float64 and string)
//   - time.Time is formatted with the TimeFormat option
//   - slices and arrays become a List, maps with string keys a Map
//   - structs and pointers to structs become an Object
//
// Anything else is wrapped in an Opaque value.
func NewWith(convert StructOptions, value any) any {
	// quick return if we're passed an existing item
	if val, ok := value.(Viewable); ok {
		return val
	}
	if value == nil {
		return nil
	}

	// drill through interfaces to the underlying type, remembering the
	// outermost pointer so methods with pointer receivers stay reachable
	var v = reflect.ValueOf(value)
	for v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	var ptr reflect.Value
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		if v.Elem().Kind() == reflect.Struct {
			ptr = v
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	if v.CanInterface() {
		if val, ok := v.Interface().(Viewable); ok {
			return val
		}
	}

	if v.Type() == timeType {
		var format = convert.TimeFormat
		if format == "" {
			format = time.RFC3339
		}
		return v.Interface().(time.Time).Format(format)
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := v.Uint(); u > math.MaxInt64 {
			return strconv.FormatUint(u, 10)
		}
		return int64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String()
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		var list = make(List, v.Len())
		for i := 0; i < v.Len(); i++ {
			list[i] = v.Index(i).Interface()
		}
		return list
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return Opaque{value}
		}
		var m = make(Map, v.Len())
		var iter = v.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return m
	case reflect.Struct:
		if ptr.IsValid() {
			return newObject(convert, ptr)
		}
		return newObject(convert, v)
	}
	return Opaque{value}
}

// DefaultStructOptions are used by New.
var DefaultStructOptions = StructOptions{
	TimeFormat: time.RFC3339,
}

// StructOptions provides flexibility in the adaptation of structs.
type StructOptions struct {
	LowerCamel bool   // if true, members are also addressable in lowerCamel.
	TimeFormat string // format string for time.Time. (if empty, use RFC 3339)
}

// Opaque holds a value that has no members, e.g. a func or channel. It prints
// using the fmt package.
type Opaque struct {
	Value any
}

func (o Opaque) HasMember(string) bool { return false }
func (o Opaque) Obj(string, []any) (any, error) { return nil, nil }
func (o Opaque) ForTemplate() string { return fmt.Sprint(o.Value) }
