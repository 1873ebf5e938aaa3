// Package ast contains definitions for the in-memory representation of a
// template.
package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Node represents any singular piece of a template. For example, a sequence
// of raw text or a lookup.
type Node interface {
	String() string // String returns the template source representation of this node.
	Position() Pos  // byte position of start of node in full original input string
}

// ParentNode is any Node that has descendent nodes. For example, the
// Children of an IfNode are its conditions.
type ParentNode interface {
	Node
	Children() []Node
}

// Pos represents a byte position in the original input text from which this
// template was parsed. It is useful to construct helpful error messages.
type Pos int

// Position returns this position. It is implemented as a method so that Nodes
// may embed a Pos and fulfill this part of the Node interface for free.
func (p Pos) Position() Pos {
	return p
}

// TemplateNode represents a template file.
type TemplateNode struct {
	Name string
	Text string
	Body *ListNode
}

func (n *TemplateNode) Position() Pos {
	return 0
}

func (n *TemplateNode) Children() []Node {
	return []Node{n.Body}
}

func (n *TemplateNode) String() string {
	return n.Body.String()
}

// ListNode holds a sequence of nodes.
type ListNode struct {
	Pos
	Nodes []Node // The element nodes in lexical order.
}

func (l *ListNode) String() string {
	b := new(bytes.Buffer)
	for _, n := range l.Nodes {
		fmt.Fprint(b, n)
	}
	return b.String()
}

func (l *ListNode) Children() []Node {
	return l.Nodes
}

type RawTextNode struct {
	Pos
	Text []byte // The text; may span newlines.
}

func (t *RawTextNode) String() string {
	return strings.ReplaceAll(string(t.Text), "$", `\$`)
}

// Lookups ----------

// LookupNode is a chain of lookups, e.g. $Page.Children.Limit(3).
type LookupNode struct {
	Pos
	Steps []*StepNode
	Bare  bool // written without the leading $, as allowed in blocks
}

func (n *LookupNode) String() string {
	var steps = make([]string, len(n.Steps))
	for i, step := range n.Steps {
		steps[i] = step.String()
	}
	if n.Bare {
		return strings.Join(steps, ".")
	}
	return "$" + strings.Join(steps, ".")
}

func (n *LookupNode) Children() []Node {
	var nodes = make([]Node, len(n.Steps))
	for i, step := range n.Steps {
		nodes[i] = step
	}
	return nodes
}

// Last returns the final step of the chain.
func (n *LookupNode) Last() *StepNode {
	return n.Steps[len(n.Steps)-1]
}

// StepNode is a single property or method lookup within a chain.
type StepNode struct {
	Pos
	Name string
	Call bool   // written with parentheses
	Args []Node // literals or lookups
}

func (n *StepNode) String() string {
	if !n.Call {
		return n.Name
	}
	var args = make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	return n.Name + "(" + strings.Join(args, ", ") + ")"
}

func (n *StepNode) Children() []Node {
	return n.Args
}

// PrintNode outputs the value of a lookup.
type PrintNode struct {
	Pos
	Lookup *LookupNode
	Braced bool // written as {$Lookup}
}

func (n *PrintNode) String() string {
	if n.Braced {
		return "{" + n.Lookup.String() + "}"
	}
	return n.Lookup.String()
}

func (n *PrintNode) Children() []Node {
	return []Node{n.Lookup}
}

// Blocks ----------

// IfNode represents an <% if %> block with its else_if and else branches.
type IfNode struct {
	Pos
	Conds []*IfCondNode
}

func (n *IfNode) String() string {
	var b strings.Builder
	for i, cond := range n.Conds {
		switch {
		case i == 0:
			b.WriteString("<% if " + cond.Cond.String() + " %>")
		case cond.Cond != nil:
			b.WriteString("<% else_if " + cond.Cond.String() + " %>")
		default:
			b.WriteString("<% else %>")
		}
		b.WriteString(cond.Body.String())
	}
	b.WriteString("<% end_if %>")
	return b.String()
}

func (n *IfNode) Children() []Node {
	var nodes = make([]Node, len(n.Conds))
	for i, cond := range n.Conds {
		nodes[i] = cond
	}
	return nodes
}

// IfCondNode is a branch of an IfNode. Cond is nil for the else branch.
type IfCondNode struct {
	Pos
	Cond Node
	Body *ListNode
}

func (n *IfCondNode) String() string {
	if n.Cond == nil {
		return "<% else %>" + n.Body.String()
	}
	return "<% if " + n.Cond.String() + " %>" + n.Body.String()
}

func (n *IfCondNode) Children() []Node {
	if n.Cond == nil {
		return []Node{n.Body}
	}
	return []Node{n.Cond, n.Body}
}

// LoopNode renders its body for each item of a list.
type LoopNode struct {
	Pos
	Lookup *LookupNode
	Body   *ListNode
}

func (n *LoopNode) String() string {
	return "<% loop " + n.Lookup.String() + " %>" + n.Body.String() + "<% end_loop %>"
}

func (n *LoopNode) Children() []Node {
	return []Node{n.Lookup, n.Body}
}

// WithNode renders its body in the scope of a single item.
type WithNode struct {
	Pos
	Lookup *LookupNode
	Body   *ListNode
}

func (n *WithNode) String() string {
	return "<% with " + n.Lookup.String() + " %>" + n.Body.String() + "<% end_with %>"
}

func (n *WithNode) Children() []Node {
	return []Node{n.Lookup, n.Body}
}

// IncludeNode renders another template in the current scope.
type IncludeNode struct {
	Pos
	Name string
	Args []*IncludeArgNode
}

func (n *IncludeNode) String() string {
	var args = make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	if len(args) == 0 {
		return "<% include " + n.Name + " %>"
	}
	return "<% include " + n.Name + " " + strings.Join(args, ", ") + " %>"
}

func (n *IncludeNode) Children() []Node {
	var nodes = make([]Node, len(n.Args))
	for i, arg := range n.Args {
		nodes[i] = arg
	}
	return nodes
}

// IncludeArgNode binds a value for the included template.
type IncludeArgNode struct {
	Pos
	Name  string
	Value Node
}

func (n *IncludeArgNode) String() string {
	return n.Name + "=" + n.Value.String()
}

func (n *IncludeArgNode) Children() []Node {
	return []Node{n.Value}
}

// Expressions ----------

type NullNode struct {
	Pos
}

func (s *NullNode) String() string {
	return "null"
}

type BoolNode struct {
	Pos
	True bool
}

func (b *BoolNode) String() string {
	if b.True {
		return "true"
	}
	return "false"
}

type IntNode struct {
	Pos
	Value int64
}

func (n *IntNode) String() string {
	return strconv.FormatInt(n.Value, 10)
}

type FloatNode struct {
	Pos
	Value float64
}

func (n *FloatNode) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

type StringNode struct {
	Pos
	Quoted string // e.g. 'hello\tworld'
	Value  string // e.g. hello	world
}

func (s *StringNode) String() string {
	return s.Quoted
}

type NotNode struct {
	Pos
	Arg Node
}

func (n *NotNode) String() string {
	return "not " + n.Arg.String()
}

func (n *NotNode) Children() []Node {
	return []Node{n.Arg}
}

type BinaryOpNode struct {
	Name string
	Pos
	Arg1, Arg2 Node
}

func (n *BinaryOpNode) String() string {
	return n.Arg1.String() + " " + n.Name + " " + n.Arg2.String()
}

func (n *BinaryOpNode) Children() []Node {
	return []Node{n.Arg1, n.Arg2}
}

type (
	OrNode    struct{ BinaryOpNode }
	AndNode   struct{ BinaryOpNode }
	EqNode    struct{ BinaryOpNode }
	NotEqNode struct{ BinaryOpNode }
)
