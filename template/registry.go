package template

import (
	"fmt"

	"github.com/robfig/ssview/ast"
)

// Registry holds parsed templates, in the order they were added.
type Registry struct {
	Templates []*ast.TemplateNode
	byName    map[string]*ast.TemplateNode
}

// Add adds the given parsed template to the registry.
// Template names must be unique.
func (r *Registry) Add(node *ast.TemplateNode) error {
	if r.byName == nil {
		r.byName = make(map[string]*ast.TemplateNode)
	}
	if _, ok := r.byName[node.Name]; ok {
		return fmt.Errorf("template %q already defined", node.Name)
	}
	r.byName[node.Name] = node
	r.Templates = append(r.Templates, node)
	return nil
}

// Template returns the template with the given name, or nil.
func (r *Registry) Template(name string) *ast.TemplateNode {
	return r.byName[name]
}
