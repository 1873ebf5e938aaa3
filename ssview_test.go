package ssview

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/andreyvit/diff"
	"github.com/spf13/afero"

	"github.com/robfig/ssview/errortypes"
	"github.com/robfig/ssview/pongobridge"
	"github.com/robfig/ssview/ssengine"
	"github.com/robfig/ssview/template"
	"github.com/robfig/ssview/view"
)

type page struct {
	Title    string
	Content  string `view:",cast=HTMLText"`
	Children []child
}

type child struct {
	Title string
	Link  string
}

var home = page{
	Title:   "Home",
	Content: "<p>Welcome</p>",
	Children: []child{
		{"About", "about/"},
		{"Contact", "contact/"},
	},
}

var siteFiles = map[string]string{
	"config/site.globals": `
// site-wide constants
SiteName = 'Example <Co>'
`,
	"config/helpers.js": `
var templateGlobals = {
	Shout: function(s) { return s.toUpperCase(); },
};
`,
	"themes/simple/Page.ss":                `<html>$Layout</html>`,
	"themes/simple/Layout/Page.ss":         `<h1>$Title</h1><% include Navigation %>$Content`,
	"themes/simple/Includes/Navigation.ss": `<% loop $Children %><a href="$BaseURL$Link">$Pos. $Title</a><% end_loop %>`,
	"themes/simple/Footer.pongo2":          `&copy; {{ lookup("SiteName") }} {{ model|obj:"Title" }}`,
	"themes/custom/Page.ss":                `$Shout('custom'): $Layout`,
}

func newBundle(t *testing.T, files map[string]string) *Bundle {
	var fs = afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return NewBundle().
		UseFs(fs).
		AddGlobalsFile("config/site.globals").
		AddScriptFile("config/helpers.js").
		SetBaseURL("https://example.com/")
}

func TestViews(t *testing.T) {
	views, err := newBundle(t, siteFiles).AddTheme("themes/simple").Compile()
	if err != nil {
		t.Fatal(err)
	}

	var tests = []struct {
		names    []string
		expected string
	}{
		{[]string{"HomePage", "Page"}, `<html><h1>Home</h1>` +
			`<a href="/about/">1. About</a><a href="/contact/">2. Contact</a>` +
			`<p>Welcome</p></html>`},
		{[]string{"Footer"}, `&copy; Example &lt;Co&gt; Home`},
	}
	for _, test := range tests {
		out, err := views.ViewerFor(test.names...).Process(home, nil, nil)
		if err != nil {
			t.Errorf("%v: %v", test.names, err)
			continue
		}
		if out != test.expected {
			t.Errorf("%v: output does not match expected:\n%v", test.names, diff.LineDiff(test.expected, out))
		}
	}
}

func TestThemePrecedence(t *testing.T) {
	views, err := newBundle(t, siteFiles).
		AddTheme("themes/custom").
		AddTheme("themes/simple").
		Compile()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := views.ViewerFor("Page").Render(&buf, page{Title: "T"}, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "CUSTOM: <h1>T</h1>") {
		t.Errorf("expected the custom theme's page, got %q", buf.String())
	}
}

func TestEnginePreference(t *testing.T) {
	var files = map[string]string{
		"config/site.globals": "",
		"config/helpers.js":   "",
		"t/Page.ss":           "ss $Title",
		"t/Page.pongo2":       `pongo2 {{ model|obj:"Title" }}`,
	}

	for _, test := range []struct {
		prefer   string
		expected string
	}{
		{"", "ss Home"},
		{EnginePongo2, "pongo2 Home"},
	} {
		var b = newBundle(t, files).AddTheme("t")
		if test.prefer != "" {
			b.PreferEngine(test.prefer)
		}
		views, err := b.Compile()
		if err != nil {
			t.Fatal(err)
		}
		var vw = views.ViewerFor("Page")
		var e, _ = vw.Engine()
		if _, isPongo := e.(*pongobridge.Engine); isPongo != (test.prefer == EnginePongo2) {
			t.Errorf("prefer %q: chose %T", test.prefer, e)
		}
		if _, isSS := e.(*ssengine.Engine); isSS != (test.prefer == "") {
			t.Errorf("prefer %q: chose %T", test.prefer, e)
		}
		out, err := vw.Process(map[string]any{"Title": "Home"}, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if out != test.expected {
			t.Errorf("prefer %q: got %q, expected %q", test.prefer, out, test.expected)
		}
	}
}

func TestProcessArgs(t *testing.T) {
	views, err := newBundle(t, map[string]string{
		"config/site.globals": "",
		"config/helpers.js":   siteFiles["config/helpers.js"],
		"t/Item.ss":           "$Title ($Note)",
	}).AddTheme("t").Compile()
	if err != nil {
		t.Fatal(err)
	}
	out, err := views.ViewerFor("Item").Process(home, view.Values(map[string]any{"Note": "<new>"}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "Home (&lt;new&gt;)" {
		t.Errorf("got %q", out)
	}

	out, err = views.RenderString(EngineSS, "$SiteName|$Shout('x')|$Greeting", nil, map[string]any{"Greeting": "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "|X|hi" {
		t.Errorf("got %q", out)
	}
}

func TestBundleErrors(t *testing.T) {
	var broken = map[string]string{
		"config/site.globals": "",
		"config/helpers.js":   "",
		"t/Good.ss":           "fine",
		"t/Bad.ss":            "<% loop $X %>",
		"t/Worse.pongo2":      "{{ model|nosuchfilter }}",
	}
	_, err := newBundle(t, broken).AddTheme("t").Compile()
	if errortypes.ToErrFilePos(err) == nil {
		t.Errorf("expected a parse error with a position, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "Worse.pongo2") {
		t.Errorf("expected every broken template to be reported, got %v", err)
	}

	_, err = newBundle(t, siteFiles).
		AddGlobalsMap(map[string]any{"SiteName": "again"}).
		Compile()
	if err == nil || !strings.Contains(err.Error(), "already defined") {
		t.Errorf("expected a duplicate global error, got %v", err)
	}

	_, err = newBundle(t, siteFiles).PreferEngine("php").Compile()
	if err == nil {
		t.Error("expected an unknown engine error")
	}

	_, err = newBundle(t, siteFiles).SetDefaultCast("Nope").Compile()
	if err == nil {
		t.Error("expected an unknown cast error")
	}

	_, err = newBundle(t, siteFiles).SetBaseURL("/relative/").Compile()
	if err == nil {
		t.Error("expected a base URL error")
	}

	_, err = newBundle(t, nil).Compile()
	if err == nil {
		t.Error("expected missing globals and scripts to be reported")
	}
}

func TestViewerNotFound(t *testing.T) {
	views, err := newBundle(t, siteFiles).AddTheme("themes/simple").Compile()
	if err != nil {
		t.Fatal(err)
	}
	var vw = views.ViewerFor("Missing", "Layout/Missing")
	if vw.HasTemplate() {
		t.Error("expected no template")
	}
	if _, err := vw.Process(home, nil, nil); !errors.Is(err, template.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
	if vw.String() != "Missing, Layout/Missing" {
		t.Errorf("got %q", vw.String())
	}
	if err := views.Close(); err != nil {
		t.Error(err)
	}
}
