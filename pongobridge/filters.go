package pongobridge

import (
	"github.com/flosch/pongo2/v6"

	"github.com/robfig/ssview/view"
)

func init() {
	for name, fn := range map[string]pongo2.FilterFunction{
		"obj":    filterObj,
		"exists": filterExists,
	} {
		if err := pongo2.RegisterFilter(name, fn); err != nil {
			panic(err)
		}
	}
}

// filterObj looks up a member of a view.Data: {{ model|obj:"Title" }}.
// Lists become slices of *view.Data so that they may be used with {% for %}.
func filterObj(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var d = asData(in)
	if d == nil {
		return pongo2.AsValue(nil), nil
	}
	member, err := d.Get(param.String())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:obj", OrigError: err}
	}
	if member == nil {
		return pongo2.AsValue(nil), nil
	}
	if member.IsIterable() {
		items, err := collect(member)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:obj", OrigError: err}
		}
		return pongo2.AsValue(items), nil
	}
	return pongo2.AsSafeValue(member), nil
}

// filterExists reports whether a member has a value, as <% if %> would.
func filterExists(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var d = asData(in)
	if d == nil {
		return pongo2.AsValue(false), nil
	}
	if param.IsNil() {
		return pongo2.AsValue(d.Exists()), nil
	}
	member, err := d.Get(param.String())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:exists", OrigError: err}
	}
	return pongo2.AsValue(member.Exists()), nil
}

func asData(in *pongo2.Value) *view.Data {
	if in.IsNil() {
		return nil
	}
	if d, ok := in.Interface().(*view.Data); ok {
		return d
	}
	return view.Wrap(in.Interface())
}

func collect(d *view.Data) ([]*view.Data, error) {
	it, err := d.Iterator()
	if err != nil {
		return nil, err
	}
	var items []*view.Data
	for it.Rewind(); it.Valid(); it.Next() {
		item, _ := it.Current().(*view.Data)
		items = append(items, item)
	}
	return items, nil
}
