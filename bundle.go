package ssview

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/robfig/ssview/field"
	"github.com/robfig/ssview/pongobridge"
	"github.com/robfig/ssview/provider"
	"github.com/robfig/ssview/provider/jsprovider"
	"github.com/robfig/ssview/ssengine"
	"github.com/robfig/ssview/template"
	"github.com/robfig/ssview/view"
)

// Logger is used to report compilation results and template changes.
var Logger = zap.NewNop()

// Engine names.
const (
	EngineSS     = "ss"
	EnginePongo2 = "pongo2"
)

// Bundle is a collection of themes, globals and scripts. It acts as input
// for Compile. Errors are collected and reported by Compile.
type Bundle struct {
	fs          afero.Fs
	themes      []string
	globals     provider.Literals
	scripts     []string
	baseURL     string
	defaultCast string
	engines     []string
	watch       bool
	onChange    func(path string)
	err         error
}

// NewBundle returns an empty bundle reading from the OS filesystem.
func NewBundle() *Bundle {
	return &Bundle{
		fs:      afero.NewOsFs(),
		globals: make(provider.Literals),
		engines: []string{EngineSS, EnginePongo2},
	}
}

// UseFs sets the filesystem that themes, globals and scripts are read from.
// It should be called before adding any files.
func (b *Bundle) UseFs(fs afero.Fs) *Bundle {
	b.fs = fs
	return b
}

// WatchFiles tells the .ss engine to watch the theme directories and
// recompile templates as they change. It requires the OS filesystem.
func (b *Bundle) WatchFiles(watch bool) *Bundle {
	b.watch = watch
	return b
}

// AddTheme adds a theme directory. Themes added first take precedence.
func (b *Bundle) AddTheme(root string) *Bundle {
	b.themes = append(b.themes, root)
	return b
}

// AddGlobalsFile parses the given file of literal globals and adds them to
// the bundle.
func (b *Bundle) AddGlobalsFile(filename string) *Bundle {
	var f, err = b.fs.Open(filename)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	defer f.Close()
	globals, err := provider.ParseLiterals(f)
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("%s: %w", filename, err))
		return b
	}
	return b.AddGlobalsMap(globals)
}

// AddGlobalsMap adds constant globals. A name may be defined only once.
func (b *Bundle) AddGlobalsMap(globals map[string]any) *Bundle {
	for k, v := range globals {
		if existing, ok := b.globals[k]; ok {
			b.err = errors.Join(b.err, fmt.Errorf("global %q already defined as %v", k, existing))
			continue
		}
		b.globals[k] = v
	}
	return b
}

// AddScriptFile adds a JavaScript file whose templateGlobals become global
// properties.
func (b *Bundle) AddScriptFile(filename string) *Bundle {
	b.scripts = append(b.scripts, filename)
	return b
}

// SetBaseURL sets the absolute URL the site is served at, providing
// $BaseURL, $AbsoluteBaseURL and $BaseHref.
func (b *Bundle) SetBaseURL(baseURL string) *Bundle {
	b.baseURL = baseURL
	return b
}

// SetDefaultCast sets the cast of string values that declare none.
func (b *Bundle) SetDefaultCast(cast string) *Bundle {
	if !slices.Contains(field.Casts(), cast) {
		b.err = errors.Join(b.err, fmt.Errorf("%w: %s", field.ErrUnknownCast, cast))
		return b
	}
	b.defaultCast = cast
	return b
}

// PreferEngine makes the named engine the first consulted when a template
// exists for more than one engine.
func (b *Bundle) PreferEngine(name string) *Bundle {
	var i = slices.Index(b.engines, name)
	if i < 0 {
		b.err = errors.Join(b.err, fmt.Errorf("unknown engine %q", name))
		return b
	}
	b.engines = append([]string{name}, slices.Delete(slices.Clone(b.engines), i, i+1)...)
	return b
}

// SetChangeCallback assigns a function called with the path of each
// template recompiled while watching.
func (b *Bundle) SetChangeCallback(fn func(path string)) *Bundle {
	b.onChange = fn
	return b
}

// Compile builds the property registry and engines, and checks that every
// template in the themes compiles.
func (b *Bundle) Compile() (*Views, error) {
	if b.err != nil {
		return nil, b.err
	}

	var reg = view.NewRegistry(new(provider.BasicIteratorSupport))
	if b.defaultCast != "" {
		reg.SetDefaultCast(b.defaultCast)
	}
	if b.baseURL != "" {
		site, err := provider.NewSite(b.baseURL)
		if err != nil {
			return nil, err
		}
		reg.Register(site)
	}
	if len(b.globals) > 0 {
		reg.Register(b.globals)
	}
	if len(b.scripts) > 0 {
		js, err := jsprovider.Load(b.fs, b.scripts...)
		if err != nil {
			return nil, err
		}
		reg.Register(js)
	}

	var themes = b.themes
	if len(themes) == 0 {
		themes = []string{"."}
	}
	var ss = ssengine.New(template.NewLoader(b.fs, ssengine.Ext, themes...),
		ssengine.WithRegistry(reg),
		ssengine.OnChange(b.changed))
	var pongo = pongobridge.New(template.NewLoader(b.fs, pongobridge.Ext, themes...),
		pongobridge.WithRegistry(reg),
		pongobridge.Debug(b.watch))

	var v = &Views{reg: reg, ss: ss, pongo: pongo, names: b.engines}
	if err := v.Check(); err != nil {
		return nil, err
	}
	if b.watch {
		if err := ss.Watch(); err != nil {
			return nil, err
		}
	}
	Logger.Info("compiled views", zap.Strings("themes", themes), zap.Int("globals", len(b.globals)), zap.Int("scripts", len(b.scripts)))
	return v, nil
}

func (b *Bundle) changed(path string) {
	Logger.Info("template updated", zap.String("path", path))
	if b.onChange != nil {
		b.onChange(path)
	}
}
