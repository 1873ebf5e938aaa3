package field

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/robfig/ssview/data"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Int is a whole number.
type Int struct {
	value int64
}

// NewInt converts a number, bool or numeric string to an Int. Floats are
// truncated. An empty string is zero.
func NewInt(v any) (Int, error) {
	switch v := v.(type) {
	case nil:
		return Int{}, nil
	case bool:
		if v {
			return Int{1}, nil
		}
		return Int{}, nil
	case string:
		var s = strings.TrimSpace(v)
		if s == "" {
			return Int{}, nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int{n}, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Int{}, fmt.Errorf("int: cannot parse %q", v)
		}
		return Int{int64(f)}, nil
	}
	var rv = reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return Int{rv.Int()}, nil
	case rv.CanUint():
		if u := rv.Uint(); u > math.MaxInt64 {
			return Int{}, fmt.Errorf("int: %d overflows int64", u)
		}
		return Int{int64(rv.Uint())}, nil
	case rv.CanFloat():
		return Int{int64(rv.Float())}, nil
	}
	return Int{}, fmt.Errorf("int: cannot convert %T", v)
}

var intMethods = methodSet[Int]{
	"Formatted": func(i Int, _ []any) (any, error) {
		return NewText(printer.Sprintf("%d", i.value)), nil
	},
	"Times": func(i Int, _ []any) (any, error) {
		var list = make(data.List, 0, max(i.value, 0))
		for n := int64(1); n <= i.value; n++ {
			list = append(list, data.Map{"Number": n})
		}
		return list, nil
	},
}

func (i Int) Value() any { return i.value }
func (i Int) Type() string { return "Int" }
func (i Int) Exists() bool { return i.value != 0 }
func (i Int) raw() string { return i.ForTemplate() }
func (i Int) nice() string { return i.ForTemplate() }
func (i Int) String() string { return i.ForTemplate() }
func (i Int) ForTemplate() string { return strconv.FormatInt(i.value, 10) }

func (i Int) HasMember(name string) bool {
	return intMethods.has(name)
}

func (i Int) Obj(name string, args []any) (any, error) {
	return intMethods.call(i, name, args)
}

// Float is a decimal number.
type Float struct {
	value float64
}

// NewFloat converts a number, bool or numeric string to a Float.
func NewFloat(v any) (Float, error) {
	switch v := v.(type) {
	case nil:
		return Float{}, nil
	case bool:
		if v {
			return Float{1}, nil
		}
		return Float{}, nil
	case string:
		var s = strings.TrimSpace(v)
		if s == "" {
			return Float{}, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Float{}, fmt.Errorf("float: cannot parse %q", v)
		}
		return Float{f}, nil
	}
	var rv = reflect.ValueOf(v)
	switch {
	case rv.CanFloat():
		return Float{rv.Float()}, nil
	case rv.CanInt():
		return Float{float64(rv.Int())}, nil
	case rv.CanUint():
		return Float{float64(rv.Uint())}, nil
	}
	return Float{}, fmt.Errorf("float: cannot convert %T", v)
}

var floatMethods = methodSet[Float]{
	"Round": func(f Float, args []any) (any, error) {
		var precision, err = data.ArgInt(args, 0, 3)
		if err != nil {
			return nil, fmt.Errorf("Round: %w", err)
		}
		return Float{round(f.value, precision)}, nil
	},
	"NiceRound": func(f Float, args []any) (any, error) {
		var precision, err = data.ArgInt(args, 0, 3)
		if err != nil {
			return nil, fmt.Errorf("NiceRound: %w", err)
		}
		return NewText(formatGrouped(round(f.value, precision), precision)), nil
	},
}

func (f Float) Value() any { return f.value }
func (f Float) Type() string { return "Float" }
func (f Float) Exists() bool { return f.value != 0 }
func (f Float) raw() string { return f.ForTemplate() }
func (f Float) nice() string { return formatGrouped(f.value, 2) }
func (f Float) String() string { return f.ForTemplate() }
func (f Float) ForTemplate() string { return strconv.FormatFloat(f.value, 'f', -1, 64) }

func (f Float) HasMember(name string) bool {
	return floatMethods.has(name)
}

func (f Float) Obj(name string, args []any) (any, error) {
	return floatMethods.call(f, name, args)
}

func round(v float64, precision int) float64 {
	var pow = math.Pow(10, float64(precision))
	return math.Round(v*pow) / pow
}

// formatGrouped formats v with the given number of decimals and thousands
// separators.
func formatGrouped(v float64, decimals int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df", max(decimals, 0)), v)
}
