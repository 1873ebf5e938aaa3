package data

import (
	"errors"
	"strings"
	"testing"
)

type testAuthor struct {
	FirstName string
	Surname   string
}

func (a testAuthor) Name() string {
	return a.FirstName + " " + a.Surname
}

type testPage struct {
	Title   string
	Content string      `view:",cast=HTMLText"`
	Author  *testAuthor `view:"Owner"`
	Secret  string      `view:"-"`
	hidden  string
	Views   int
}

func (p *testPage) Excerpt(n int) string {
	if n > len(p.Content) {
		n = len(p.Content)
	}
	return p.Content[:n]
}

func (p *testPage) Join(sep string, parts ...string) string {
	return strings.Join(parts, sep)
}

func (p *testPage) Fails() (string, error) {
	return "", errors.New("boom")
}

func (p *testPage) String() string {
	return "Page: " + p.Title
}

func newTestPage() *testPage {
	return &testPage{
		Title:   "Home",
		Content: "<p>Welcome</p>",
		Author:  &testAuthor{"Ada", "Lovelace"},
		Secret:  "s3cret",
		hidden:  "x",
		Views:   3,
	}
}

func TestObjectMembers(t *testing.T) {
	obj, err := NewObject(newTestPage())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		has  bool
	}{
		{"Title", true},
		{"Content", true},
		{"Owner", true},
		{"Author", false},
		{"Secret", false},
		{"hidden", false},
		{"Excerpt", true},
		{"String", true},
		{"title", false},
		{"Missing", false},
	}
	for _, test := range tests {
		if got := obj.HasMember(test.name); got != test.has {
			t.Errorf("HasMember(%q) = %v, expected %v", test.name, got, test.has)
		}
	}

	if got := obj.CastingFor("Content"); got != "HTMLText" {
		t.Errorf("CastingFor(Content) = %q", got)
	}
	if got := obj.CastingFor("Title"); got != "" {
		t.Errorf("CastingFor(Title) = %q", got)
	}
	if got := obj.ForTemplate(); got != "Page: Home" {
		t.Errorf("ForTemplate() = %q", got)
	}
}

func TestObjectCalls(t *testing.T) {
	obj, _ := NewObject(newTestPage())
	tests := []struct {
		name     string
		args     []any
		expected any
	}{
		{"Title", nil, "Home"},
		{"Views", nil, 3},
		{"Excerpt", []any{3}, "<p>"},
		{"Excerpt", []any{"8"}, "<p>Welco"},
		{"Excerpt", nil, ""},
		{"Join", []any{"-", "a", "b"}, "a-b"},
		{"Join", []any{","}, ""},
		{"Missing", nil, nil},
	}
	for _, test := range tests {
		got, err := obj.Obj(test.name, test.args)
		if err != nil {
			t.Errorf("%s%v: %v", test.name, test.args, err)
			continue
		}
		if got != test.expected {
			t.Errorf("%s%v => %#v, expected %#v", test.name, test.args, got, test.expected)
		}
	}

	owner, _ := obj.Obj("Owner", nil)
	name, err := Member(owner, "Name")
	if err != nil || name != "Ada Lovelace" {
		t.Errorf("Owner.Name => %v, %v", name, err)
	}
}

func TestObjectCallErrors(t *testing.T) {
	obj, _ := NewObject(newTestPage())
	for _, test := range []struct {
		name string
		args []any
	}{
		{"Fails", nil},
		{"Excerpt", []any{"lots"}},
		{"Excerpt", []any{1, 2}},
	} {
		if _, err := obj.Obj(test.name, test.args); err == nil {
			t.Errorf("%s%v: expected an error", test.name, test.args)
		}
	}
}

func TestObjectLowerCamel(t *testing.T) {
	var obj = NewWith(StructOptions{LowerCamel: true}, newTestPage()).(*Object)
	if !obj.HasMember("title") || !obj.HasMember("excerpt") {
		t.Error("expected lowerCamel members")
	}
	if v, _ := obj.Obj("title", nil); v != "Home" {
		t.Errorf("title => %v", v)
	}
}

func TestNewObjectRequiresStruct(t *testing.T) {
	if _, err := NewObject("nope"); err == nil {
		t.Error("expected an error")
	}
}

func TestMethodFunc(t *testing.T) {
	var page = &testPage{Content: "<p>Welcome</p>"}
	var fn = MethodFunc(page, "Excerpt")
	if fn == nil {
		t.Fatal("expected Excerpt")
	}
	var v, err = fn([]any{2})
	if err != nil || v != "<p" {
		t.Errorf("expected <p, got %v (%v)", v, err)
	}
	for _, name := range []string{"Missing", "excerpt", ""} {
		if MethodFunc(page, name) != nil {
			t.Errorf("%q: expected no method", name)
		}
	}
	if MethodFunc(nil, "Excerpt") != nil {
		t.Error("nil: expected no method")
	}
}
