package field

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Boolean is a true/false value. It renders as "1" or "0".
type Boolean struct {
	value bool
}

// NewBoolean converts a bool, number or string ("1", "true", "yes") to a
// Boolean.
func NewBoolean(v any) (Boolean, error) {
	switch v := v.(type) {
	case nil:
		return Boolean{}, nil
	case bool:
		return Boolean{v}, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "no", "off":
			return Boolean{}, nil
		case "1", "true", "yes", "on":
			return Boolean{true}, nil
		}
		return Boolean{}, fmt.Errorf("boolean: cannot parse %q", v)
	}
	var rv = reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return Boolean{rv.Int() != 0}, nil
	case rv.CanUint():
		return Boolean{rv.Uint() != 0}, nil
	case rv.CanFloat():
		return Boolean{rv.Float() != 0}, nil
	}
	return Boolean{}, fmt.Errorf("boolean: cannot convert %T", v)
}

var booleanMethods = methodSet[Boolean]{
	"NiceAsBoolean": func(b Boolean, _ []any) (any, error) {
		return NewText(strconv.FormatBool(b.value)), nil
	},
}

func (b Boolean) Value() any { return b.value }
func (b Boolean) Type() string { return "Boolean" }
func (b Boolean) Exists() bool { return b.value }
func (b Boolean) raw() string { return b.ForTemplate() }
func (b Boolean) String() string { return b.ForTemplate() }

func (b Boolean) nice() string {
	if b.value {
		return "yes"
	}
	return "no"
}

func (b Boolean) ForTemplate() string {
	if b.value {
		return "1"
	}
	return "0"
}

func (b Boolean) HasMember(name string) bool {
	return booleanMethods.has(name)
}

func (b Boolean) Obj(name string, args []any) (any, error) {
	return booleanMethods.call(b, name, args)
}
