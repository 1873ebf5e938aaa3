// Package parsepasses contains checks run over parsed templates before they
// are compiled.
package parsepasses

import (
	"fmt"

	"github.com/robfig/ssview/ast"
	"github.com/robfig/ssview/template"
)

// Includes returns the names of the templates included by node, in order of
// appearance. Names appear once.
func Includes(node ast.Node) []string {
	var names []string
	var seen = make(map[string]bool)
	walk(node, func(node ast.Node) {
		if inc, ok := node.(*ast.IncludeNode); ok && !seen[inc.Name] {
			seen[inc.Name] = true
			names = append(names, inc.Name)
		}
	})
	return names
}

// CheckIncludes validates that:
//  1. every included template exists, either in the registry or according
//     to exists (which may be nil)
//  2. no template includes itself, directly or through others in the
//     registry
func CheckIncludes(reg *template.Registry, exists func(name string) bool) error {
	for _, t := range reg.Templates {
		for _, name := range Includes(t) {
			if reg.Template(name) == nil && (exists == nil || !exists(name)) {
				return fmt.Errorf("template %v: <%% include %s %%>: template not found", t.Name, name)
			}
		}
	}

	var state = make(map[string]int) // 1 = visiting, 2 = done
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case 1:
			return fmt.Errorf("template %v: include cycle: %v", path[0], append(path, name))
		case 2:
			return nil
		}
		var t = reg.Template(name)
		if t == nil {
			return nil
		}
		state[name] = 1
		for _, inc := range Includes(t) {
			if err := visit(inc, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = 2
		return nil
	}
	for _, t := range reg.Templates {
		if err := visit(t.Name, nil); err != nil {
			return err
		}
	}
	return nil
}

func walk(node ast.Node, fn func(ast.Node)) {
	fn(node)
	if parent, ok := node.(ast.ParentNode); ok {
		for _, child := range parent.Children() {
			walk(child, fn)
		}
	}
}
