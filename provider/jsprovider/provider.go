// Package jsprovider exposes properties written in JavaScript as template
// globals. Each script may assign an object to templateGlobals; its
// functions become callable properties and its other members constants:
//
//	var templateGlobals = {
//		Greeting: function(name) { return "Hello, " + name; },
//		Copyright: "Example Ltd",
//	};
//
// Scripts share one interpreter, so later scripts may call functions defined
// by earlier ones, and replace their globals.
package jsprovider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/robertkrimen/otto"
	"github.com/spf13/afero"

	"github.com/robfig/ssview/field"
	"github.com/robfig/ssview/view"
)

// GlobalsVar is the name of the variable scripts assign their globals to.
const GlobalsVar = "templateGlobals"

// Provider is a view.GlobalProvider backed by an otto interpreter. Calls
// into the interpreter are serialized.
type Provider struct {
	mu      sync.Mutex
	vm      *otto.Otto
	globals map[string]view.Variable
}

var _ view.GlobalProvider = (*Provider)(nil)

// New returns a provider with no globals.
func New() *Provider {
	return &Provider{vm: otto.New(), globals: make(map[string]view.Variable)}
}

// Load returns a provider with the globals of the scripts at paths, run in
// order.
func Load(fs afero.Fs, paths ...string) (*Provider, error) {
	var p = New()
	for _, path := range paths {
		src, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, err
		}
		if err := p.Run(path, string(src)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Run runs a script and adds the members of its templateGlobals.
func (p *Provider) Run(name, src string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.vm.Set(GlobalsVar, otto.UndefinedValue()); err != nil {
		return err
	}
	if _, err := p.vm.Run(src); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	globals, err := p.vm.Get(GlobalsVar)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if globals.IsUndefined() || globals.IsNull() {
		return nil
	}
	if !globals.IsObject() {
		return fmt.Errorf("%s: %s is a %s, expected an object", name, GlobalsVar, globals.Class())
	}

	var obj = globals.Object()
	for _, key := range obj.Keys() {
		member, err := obj.Get(key)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", name, key, err)
		}
		if member.IsFunction() {
			p.globals[key] = view.Variable{Name: key, Func: p.callable(key, member)}
			continue
		}
		value, err := member.Export()
		if err != nil {
			return fmt.Errorf("%s: %s: %w", name, key, err)
		}
		p.globals[key] = view.Variable{Name: key, Value: &view.Literal{Value: value}}
	}
	return nil
}

func (p *Provider) TemplateGlobalVariables() []view.Variable {
	p.mu.Lock()
	defer p.mu.Unlock()
	var names = make([]string, 0, len(p.globals))
	for name := range p.globals {
		names = append(names, name)
	}
	sort.Strings(names)

	var vars = make([]view.Variable, len(names))
	for i, name := range names {
		vars[i] = p.globals[name]
	}
	return vars
}

func (p *Provider) callable(name string, fn otto.Value) view.Callable {
	return func(args []any) (any, error) {
		var in = make([]any, len(args))
		for i, arg := range args {
			in[i] = exportArg(arg)
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		result, err := fn.Call(otto.NullValue(), in...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if result.IsUndefined() || result.IsNull() {
			return nil, nil
		}
		return result.Export()
	}
}

// exportArg unwraps template values into plain values for the interpreter.
func exportArg(arg any) any {
	var d, ok = arg.(*view.Data)
	if !ok {
		return arg
	}
	if d == nil {
		return nil
	}
	if f, ok := d.Raw().(field.Field); ok {
		return f.Value()
	}
	return d.String()
}
