package parsepasses

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robfig/ssview/parse"
	"github.com/robfig/ssview/template"
)

func registry(t *testing.T, templates ...string) *template.Registry {
	var reg = &template.Registry{}
	for i := 0; i < len(templates); i += 2 {
		node, err := parse.Template(templates[i], templates[i+1])
		if err != nil {
			t.Fatal(err)
		}
		if err := reg.Add(node); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func TestIncludes(t *testing.T) {
	node, err := parse.Template("Page", `<% include Header %>
<% loop $Items %><% if $First %><% include Item Title=$Title %><% end_if %><% end_loop %>
<% include Header %><% include Footer %>`)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Header", "Item", "Footer"}, Includes(node)); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}

func TestCheckIncludes(t *testing.T) {
	var onDisk = func(name string) bool { return name == "Footer" }
	var tests = []struct {
		name      string
		templates []string
		err       string
	}{
		{"ok", []string{
			"Page", "<% include Nav %><% include Footer %>",
			"Nav", "<% loop $Menu %>$Title<% end_loop %>",
		}, ""},
		{"missing", []string{
			"Page", "<% include Nav %>",
		}, "template Page: <% include Nav %>: template not found"},
		{"self", []string{
			"Page", "<% include Page %>",
		}, "include cycle: [Page Page]"},
		{"cycle", []string{
			"A", "<% include B %>",
			"B", "<% if $X %><% include C %><% end_if %>",
			"C", "<% include A %>",
		}, "include cycle: [A B C A]"},
	}
	for _, test := range tests {
		var err = CheckIncludes(registry(t, test.templates...), onDisk)
		switch {
		case test.err == "" && err != nil:
			t.Errorf("%s: unexpected error: %v", test.name, err)
		case test.err != "" && (err == nil || !strings.Contains(err.Error(), test.err)):
			t.Errorf("%s: expected error %q, got %v", test.name, test.err, err)
		}
	}
}
