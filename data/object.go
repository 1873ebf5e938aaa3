package data

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Object adapts a struct (or pointer to struct) to Viewable. Exported fields
// and methods are members; a `view` struct tag may rename a field or declare
// its cast:
//
//	type Page struct {
//		Title   string
//		Content string `view:",cast=HTMLText"`
//		Author  *Member `view:"Owner"`
//	}
//
// Methods may take any number of arguments, which are converted from the
// template argument types, and may return a value or (value, error).
type Object struct {
	v    reflect.Value
	info *typeInfo
	opts StructOptions
}

var (
	_ Viewable  = (*Object)(nil)
	_ Caster    = (*Object)(nil)
	_ Existence = (*Object)(nil)
)

// NewObject returns an Object for the given struct or struct pointer.
func NewObject(value any) (*Object, error) {
	var obj, ok = New(value).(*Object)
	if !ok {
		return nil, fmt.Errorf("expected a struct, got %T", value)
	}
	return obj, nil
}

func newObject(opts StructOptions, v reflect.Value) *Object {
	var t = v.Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return &Object{v, infoFor(t), opts}
}

// Interface returns the adapted value.
func (o *Object) Interface() any {
	return o.v.Interface()
}

func (o *Object) HasMember(name string) bool {
	if _, ok := o.field(name); ok {
		return true
	}
	return o.method(name).IsValid()
}

func (o *Object) Obj(name string, args []any) (any, error) {
	if f, ok := o.field(name); ok {
		var fv, err = o.elem().FieldByIndexErr(f.index)
		if err != nil {
			// nil embedded pointer
			return nil, nil
		}
		return fv.Interface(), nil
	}
	if m := o.method(name); m.IsValid() {
		return call(name, m, args)
	}
	return nil, nil
}

// CastingFor returns the cast declared in the field's view tag.
func (o *Object) CastingFor(name string) string {
	if f, ok := o.field(name); ok {
		return f.cast
	}
	return ""
}

// ForTemplate uses the value's String method, if it has one.
func (o *Object) ForTemplate() string {
	if s, ok := o.v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}

func (o *Object) Exists() bool {
	return true
}

func (o *Object) elem() reflect.Value {
	if o.v.Kind() == reflect.Ptr {
		return o.v.Elem()
	}
	return o.v
}

func (o *Object) field(name string) (fieldInfo, bool) {
	if f, ok := o.info.fields[name]; ok {
		return f, true
	}
	if o.opts.LowerCamel {
		if f, ok := o.info.fields[upperFirst(name)]; ok {
			return f, true
		}
	}
	return fieldInfo{}, false
}

func (o *Object) method(name string) reflect.Value {
	if o.opts.LowerCamel {
		name = upperFirst(name)
	}
	if !isExported(name) {
		return reflect.Value{}
	}
	return o.v.MethodByName(name)
}

// MethodFunc returns a function that invokes the named exported method of v
// with template arguments, or nil if v has no such method.
func MethodFunc(v any, name string) func(args []any) (any, error) {
	if v == nil || !isExported(name) {
		return nil
	}
	var m = reflect.ValueOf(v).MethodByName(name)
	if !m.IsValid() {
		return nil
	}
	return func(args []any) (any, error) {
		return call(name, m, args)
	}
}

// call invokes a method with template arguments, converting each to the
// parameter type.
func call(name string, m reflect.Value, args []any) (any, error) {
	var (
		t        = m.Type()
		numIn    = t.NumIn()
		variadic = t.IsVariadic()
	)
	if variadic && len(args) < numIn-1 || !variadic && len(args) > numIn {
		return nil, fmt.Errorf("%s: called with %d arguments, expects %d", name, len(args), numIn)
	}

	var in = make([]reflect.Value, 0, numIn)
	for i := 0; i < numIn; i++ {
		var pt = t.In(i)
		if variadic && i == numIn-1 {
			pt = pt.Elem()
			for _, arg := range args[i:] {
				av, err := convertArg(arg, pt)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				in = append(in, av)
			}
			break
		}
		var av reflect.Value
		if i < len(args) {
			var err error
			if av, err = convertArg(args[i], pt); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		} else {
			av = reflect.Zero(pt)
		}
		in = append(in, av)
	}

	var out = m.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if t.Out(0) == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	case 2:
		if t.Out(1) == errorType {
			return out[0].Interface(), asError(out[1])
		}
	}
	return nil, fmt.Errorf("%s: unsupported method signature %v", name, t)
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

// convertArg converts a template argument into a value of type t.
func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}
	var av = reflect.ValueOf(arg)
	if av.Type().AssignableTo(t) {
		return av, nil
	}

	var s = fmt.Sprint(arg)
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(s).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if av.Kind() >= reflect.Int && av.Kind() <= reflect.Int64 {
			return av.Convert(t), nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot use %q as %v", s, t)
		}
		return reflect.ValueOf(n).Convert(t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot use %q as %v", s, t)
		}
		return reflect.ValueOf(n).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot use %q as %v", s, t)
		}
		return reflect.ValueOf(f).Convert(t), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot use %q as %v", s, t)
		}
		return reflect.ValueOf(b), nil
	}
	if av.Type().ConvertibleTo(t) {
		return av.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %v", arg, t)
}

// Type information ----------

type fieldInfo struct {
	index []int
	cast  string
}

type typeInfo struct {
	fields map[string]fieldInfo
}

var typeInfos sync.Map // map[reflect.Type]*typeInfo

func infoFor(t reflect.Type) *typeInfo {
	if info, ok := typeInfos.Load(t); ok {
		return info.(*typeInfo)
	}
	var info = &typeInfo{fields: make(map[string]fieldInfo)}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		var name, cast = parseTag(f.Tag.Get("view"))
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		info.fields[name] = fieldInfo{f.Index, cast}
	}
	actual, _ := typeInfos.LoadOrStore(t, info)
	return actual.(*typeInfo)
}

// parseTag parses `view:"Name,cast=HTMLText"`.
func parseTag(tag string) (name, cast string) {
	var parts = strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	for _, opt := range parts[1:] {
		if v, ok := strings.CutPrefix(strings.TrimSpace(opt), "cast="); ok {
			cast = v
		}
	}
	return name, cast
}

func isExported(name string) bool {
	var r, _ = utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func upperFirst(name string) string {
	var r, size = utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
