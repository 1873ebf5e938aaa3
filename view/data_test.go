package view

import (
	"errors"
	"testing"

	"github.com/robfig/ssview/data"
	"github.com/robfig/ssview/field"
)

type article struct {
	Title string
	Body  string `view:",cast=HTMLText"`
	Tags  []string
}

func (a article) Summary(n int) string {
	return a.Title[:n]
}

func TestWrap(t *testing.T) {
	var tests = []struct {
		value  any
		kind   string // field type, or "" for non-fields
		output string
	}{
		{true, "Boolean", "1"},
		{false, "Boolean", "0"},
		{"true", "Text", "true"},
		{"<b>", "Text", "&lt;b&gt;"},
		{42, "Int", "42"},
		{uint16(7), "Int", "7"},
		{2.5, "Float", "2.5"},
		{field.NewHTMLText("<b>"), "HTMLText", "<b>"},
		{[]int{1, 2}, "", ""},
		{map[string]any{"a": 1}, "", ""},
		{func() {}, "", "<func>"},
	}
	for _, test := range tests {
		var d = Wrap(test.value)
		if d == nil {
			t.Errorf("Wrap(%#v): nil", test.value)
			continue
		}
		var kind string
		if f, ok := d.Raw().(field.Field); ok {
			kind = f.Type()
		}
		var output = d.String()
		if _, isFunc := test.value.(func()); isFunc {
			output = "<func>"
		}
		if kind != test.kind || output != test.output {
			t.Errorf("Wrap(%#v): expected %q %q, got %q %q", test.value, test.kind, test.output, kind, output)
		}
	}

	if Wrap(nil) != nil {
		t.Error("expected Wrap(nil) == nil")
	}
	var d = Wrap(1)
	if Wrap(d) != d {
		t.Error("expected *Data to pass through Wrap")
	}
	if _, ok := Wrap([]string{"a"}).Raw().(data.List); !ok {
		t.Error("expected a slice to become a data.List")
	}
	if _, ok := Wrap(&article{}).Raw().(*data.Object); !ok {
		t.Error("expected a struct pointer to become a data.Object")
	}
}

func TestDataCall(t *testing.T) {
	var d = Wrap(article{Title: "Hello world", Body: "<p>Hi</p>", Tags: []string{"a", "b"}})

	var tests = []struct {
		name   string
		args   []any
		kind   string
		output string
	}{
		{"Title", nil, "Text", "Hello world"},
		{"Body", nil, "HTMLText", "<p>Hi</p>"},
		{"Summary", []any{5}, "Text", "Hello"},
	}
	for _, test := range tests {
		var v, err = d.Call(test.name, test.args...)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		var f, ok = v.Raw().(field.Field)
		if !ok || f.Type() != test.kind || v.String() != test.output {
			t.Errorf("%s: expected %s %q, got %T %q", test.name, test.kind, test.output, v.Raw(), v.String())
		}
	}

	tags, err := d.Get("Tags")
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := tags.Count(); !ok || n != 2 {
		t.Errorf("expected 2 tags, got %v %v", n, ok)
	}

	missing, err := d.Get("Missing")
	if missing != nil || err != nil {
		t.Errorf("expected nil for a missing member, got %v %v", missing, err)
	}
	if _, err := d.Call("Summary", "x"); err == nil {
		t.Error("expected an argument error")
	}
}

func TestDataIterator(t *testing.T) {
	var it, err = Wrap([]any{"a", 1, nil}).Iterator()
	if err != nil {
		t.Fatal(err)
	}
	var outputs []string
	for it.Rewind(); it.Valid(); it.Next() {
		var cur = it.Current()
		if cur == nil {
			outputs = append(outputs, "<nil>")
			continue
		}
		outputs = append(outputs, cur.(*Data).String())
	}
	if len(outputs) != 3 || outputs[0] != "a" || outputs[1] != "1" || outputs[2] != "<nil>" {
		t.Errorf("unexpected iteration: %v", outputs)
	}

	if _, err := Wrap("text").Iterator(); !errors.Is(err, ErrNotIterable) {
		t.Errorf("expected ErrNotIterable, got %v", err)
	}
	if Wrap("text").IsIterable() || !Wrap([]int{}).IsIterable() {
		t.Error("IsIterable mismatch")
	}
	if _, ok := Wrap("text").Count(); ok {
		t.Error("expected no count for text")
	}
}

func TestDataExists(t *testing.T) {
	var tests = []struct {
		value    any
		expected bool
	}{
		{"", false},
		{"x", true},
		{0, false},
		{[]int{}, false},
		{[]int{1}, true},
		{map[string]any{}, true},
		{article{}, true},
	}
	for _, test := range tests {
		if actual := Wrap(test.value).Exists(); actual != test.expected {
			t.Errorf("%#v: expected Exists() == %v", test.value, test.expected)
		}
	}
	var nilData *Data
	if nilData.Exists() || nilData.String() != "" {
		t.Error("nil *Data should not exist and should render empty")
	}
}

func TestCustomise(t *testing.T) {
	var d = Wrap(data.Map{"Title": "Original", "Other": "kept"})
	var calls int
	var c = d.Customise(Bindings{
		"Title": Literal{"Custom"},
		"Extra": Producer(func() (any, error) {
			calls++
			return "produced", nil
		}),
	})

	for _, test := range []struct{ name, expected string }{
		{"Title", "Custom"},
		{"Other", "kept"},
		{"Extra", "produced"},
	} {
		var v, err = c.Get(test.name)
		if err != nil {
			t.Fatal(err)
		}
		if v.String() != test.expected {
			t.Errorf("%s: expected %q, got %q", test.name, test.expected, v.String())
		}
	}
	if !c.Has("Extra") || d.Has("Extra") {
		t.Error("customisation should not affect the original")
	}
	if v, _ := d.Get("Title"); v.String() != "Original" {
		t.Errorf("original modified: %q", v.String())
	}
	c.Get("Extra")
	if calls != 2 {
		t.Errorf("expected the producer to run on every lookup, ran %d times", calls)
	}
}

func TestBindingsLookup(t *testing.T) {
	var b = Bindings{
		"Nil":     Literal{nil},
		"Value":   Literal{"v"},
		"NilFunc": Producer(func() (any, error) { return nil, nil }),
		"Func":    Producer(func() (any, error) { return 1, nil }),
		"ErrFunc": Producer(func() (any, error) { return nil, errors.New("boom") }),
	}
	var tests = []struct {
		name  string
		value any
		found bool
		err   bool
	}{
		{"Nil", nil, true, false},
		{"Value", "v", true, false},
		{"NilFunc", nil, false, false},
		{"Func", 1, true, false},
		{"ErrFunc", nil, false, true},
		{"Missing", nil, false, false},
	}
	for _, test := range tests {
		var v, found, err = b.lookup(test.name)
		if v != test.value || found != test.found || (err != nil) != test.err {
			t.Errorf("%s: expected %v %v %v, got %v %v %v", test.name, test.value, test.found, test.err, v, found, err)
		}
	}

	var merged = Values(map[string]any{"A": 1, "B": 2}).With(Bindings{"B": Literal{3}})
	if v, _, _ := merged.lookup("B"); v != 3 {
		t.Errorf("expected later bindings to win, got %v", v)
	}
}

func TestCustomiseNil(t *testing.T) {
	var nilData *Data
	var c = nilData.Customise(Values(map[string]any{"Title": "Only"}))
	if v, err := c.Get("Title"); err != nil || v.String() != "Only" {
		t.Errorf("got %v, %v", v, err)
	}
	if c.Has("Other") {
		t.Error("expected no other members")
	}
}
