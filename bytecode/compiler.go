// Package bytecode compiles parsed templates into a program of scope
// operations, and executes it against a view.Scope.
package bytecode

import (
	"fmt"
	"strings"

	"github.com/robfig/ssview/ast"
	"github.com/robfig/ssview/template"
)

type Program struct {
	Instr          []Opcode
	Lines          []int32 // source line of each instruction
	Templates      []Template
	RawTexts       [][]byte
	Strings        []string // names referenced by instructions
	Values         []any    // constants pushed by Const
	TemplateByName map[string]*Template
}

// Template holds a compiled template.
type Template struct {
	Name string
	PC   int // program counter, an index into Instr
}

// Compile compiles an AST (parsed program) into virtual machine instructions.
func Compile(registry *template.Registry) (compiledProg *Program, err error) {
	var p = &Program{}
	var s = compilation{
		prog:    p,
		strings: make(map[string]Opcode),
	}
	defer s.errRecover(&err)

	p.Templates = make([]Template, len(registry.Templates))
	p.TemplateByName = make(map[string]*Template, len(registry.Templates))
	for i, tpl := range registry.Templates {
		p.Templates[i] = Template{
			Name: tpl.Name,
		}
		p.TemplateByName[tpl.Name] = &p.Templates[i]
	}

	for i, tpl := range registry.Templates {
		s.tmpl = &p.Templates[i]
		s.text = tpl.Text
		s.walk(tpl)
	}
	return s.prog, nil
}

type compilation struct {
	prog    *Program
	tmpl    *Template
	text    string            // source of the current template
	node    ast.Node          // current node, for errors
	strings map[string]Opcode // index into prog.Strings
}

func (s *compilation) walk(node ast.Node) {
	s.at(node)
	switch node := node.(type) {
	case *ast.TemplateNode:
		s.visitTemplate(node)
	case *ast.ListNode:
		s.visitChildren(node)

		// Output nodes ----------
	case *ast.RawTextNode:
		s.add(RawText, Opcode(len(s.prog.RawTexts)))
		s.prog.RawTexts = append(s.prog.RawTexts, node.Text)
	case *ast.PrintNode:
		s.visitPrint(node)

		// Blocks ----------
	case *ast.IfNode:
		s.visitIf(node)
	case *ast.LoopNode:
		s.visitLoop(node)
	case *ast.WithNode:
		s.visitWith(node)
	case *ast.IncludeNode:
		s.visitInclude(node)

	default:
		s.errorf("unknown node (%T): %v", node, node)
	}
}

func (s *compilation) visitChildren(parent ast.ParentNode) {
	for _, child := range parent.Children() {
		s.walk(child)
	}
}

func (s *compilation) visitTemplate(node *ast.TemplateNode) {
	s.tmpl.PC = len(s.prog.Instr)
	s.walk(node.Body)
	s.add(Return)
}

func (s *compilation) visitPrint(node *ast.PrintNode) {
	var last = s.chain(node.Lookup)
	s.at(node)
	if isMe(last) {
		s.add(Self)
	} else {
		s.step(XMLVal, last)
	}
	s.add(Output)
}

// visitIf compiles each condition followed by a jump past its body to the
// next condition.
func (s *compilation) visitIf(node *ast.IfNode) {
	var ends []int
	for i, cond := range node.Conds {
		var next = -1
		if cond.Cond != nil {
			s.condition(cond.Cond)
			next = s.jump(JumpIfFalse)
		}
		s.walk(cond.Body)
		if i < len(node.Conds)-1 {
			ends = append(ends, s.jump(Jump))
		}
		if next != -1 {
			s.patch(next)
		}
	}
	for _, end := range ends {
		s.patch(end)
	}
}

// visitLoop compiles:
//
//	<chain>; Push; L: Next end; <body>; Jump L; end: Pop
func (s *compilation) visitLoop(node *ast.LoopNode) {
	s.block(node.Lookup, "loop")
	var top = len(s.prog.Instr)
	var end = s.jump(Next)
	s.walk(node.Body)
	s.at(node)
	s.add(Jump, Opcode(top))
	s.patch(end)
	s.add(Pop)
}

func (s *compilation) visitWith(node *ast.WithNode) {
	s.block(node.Lookup, "with")
	s.walk(node.Body)
	s.at(node)
	s.add(Pop)
}

func (s *compilation) visitInclude(node *ast.IncludeNode) {
	for _, arg := range node.Args {
		s.argument(arg.Value)
	}
	s.at(node)
	s.add(Include, s.str(node.Name), Opcode(len(node.Args)))
	for _, arg := range node.Args {
		s.add(s.str(arg.Name))
	}
}

// block compiles the lookup of a loop or with block, making its value the
// local frame.
func (s *compilation) block(lookup *ast.LookupNode, context string) {
	var last = s.chain(lookup)
	if isMe(last) {
		if len(lookup.Steps) == 1 {
			s.errorf("%s: $Me cannot begin a block", context)
		}
	} else {
		s.step(Obj, last)
	}
	s.add(Push)
}

// chain compiles the steps of a lookup before the last, which is returned
// for the caller to complete.
func (s *compilation) chain(lookup *ast.LookupNode) *ast.StepNode {
	s.at(lookup)
	s.add(Locally)
	for _, step := range lookup.Steps[:len(lookup.Steps)-1] {
		if isMe(step) {
			continue
		}
		s.step(Obj, step)
	}
	return lookup.Last()
}

// step compiles a lookup step's arguments followed by op.
func (s *compilation) step(op Opcode, step *ast.StepNode) {
	for _, arg := range step.Args {
		s.argument(arg)
	}
	s.at(step)
	s.add(op, s.str(step.Name), Opcode(len(step.Args)))
}

// argument compiles a method or include argument. Lookups pass their value
// rather than its markup; a bare name passes the named value's markup if it
// has one, else the name itself.
func (s *compilation) argument(node ast.Node) {
	switch node := node.(type) {
	case *ast.LookupNode:
		if isBareWord(node) {
			s.at(node)
			s.add(LookupOrString, s.str(node.Steps[0].Name))
			return
		}
		var last = s.chain(node)
		if !isMe(last) {
			s.step(Obj, last)
		}
		s.add(Self)
	default:
		s.constant(node)
	}
}

// condition compiles an expression leaving a boolean (or a value tested
// for truth) on the stack.
func (s *compilation) condition(node ast.Node) {
	s.at(node)
	switch node := node.(type) {
	case *ast.LookupNode:
		var last = s.chain(node)
		if isMe(last) {
			s.add(Self)
		} else {
			s.step(HasValue, last)
		}
	case *ast.NotNode:
		s.condition(node.Arg)
		s.add(Not)
	case *ast.AndNode:
		s.condition(node.Arg1)
		var end = s.jump(JumpIfFalseOrPop)
		s.condition(node.Arg2)
		s.patch(end)
	case *ast.OrNode:
		s.condition(node.Arg1)
		var end = s.jump(JumpIfTrueOrPop)
		s.condition(node.Arg2)
		s.patch(end)
	case *ast.EqNode:
		s.operand(node.Arg1)
		s.operand(node.Arg2)
		s.add(Eq)
	case *ast.NotEqNode:
		s.operand(node.Arg1)
		s.operand(node.Arg2)
		s.add(NotEq)
	default:
		s.constant(node)
	}
}

// operand compiles one side of a comparison, which compares markup.
func (s *compilation) operand(node ast.Node) {
	var lookup, ok = node.(*ast.LookupNode)
	switch {
	case !ok:
		s.constant(node)
	case isBareWord(lookup):
		s.at(lookup)
		s.add(LookupOrString, s.str(lookup.Steps[0].Name))
	default:
		var last = s.chain(lookup)
		if isMe(last) {
			s.add(Self)
		} else {
			s.step(XMLVal, last)
		}
	}
}

func (s *compilation) constant(node ast.Node) {
	s.at(node)
	var value any
	switch node := node.(type) {
	case *ast.NullNode:
		value = nil
	case *ast.BoolNode:
		value = node.True
	case *ast.IntNode:
		value = node.Value
	case *ast.FloatNode:
		value = node.Value
	case *ast.StringNode:
		value = node.Value
	default:
		s.errorf("unexpected expression (%T): %v", node, node)
	}
	s.add(Const, Opcode(len(s.prog.Values)))
	s.prog.Values = append(s.prog.Values, value)
}

// isBareWord reports whether the lookup is a single name written without
// $ or arguments, which may also be read as a string.
func isBareWord(lookup *ast.LookupNode) bool {
	return lookup.Bare && len(lookup.Steps) == 1 && !lookup.Steps[0].Call
}

func isMe(step *ast.StepNode) bool {
	return step.Name == "Me" && !step.Call
}

// Helpers ----------

func (s *compilation) add(ops ...Opcode) {
	var line = s.line()
	s.prog.Instr = append(s.prog.Instr, ops...)
	for range ops {
		s.prog.Lines = append(s.prog.Lines, line)
	}
}

// jump adds a jump instruction whose target is filled in by patch.
func (s *compilation) jump(op Opcode) int {
	s.add(op, -1)
	return len(s.prog.Instr) - 1
}

// patch points the jump operand at i to the next instruction.
func (s *compilation) patch(i int) {
	s.prog.Instr[i] = Opcode(len(s.prog.Instr))
}

// str returns the index of name in the program's strings.
func (s *compilation) str(name string) Opcode {
	if i, ok := s.strings[name]; ok {
		return i
	}
	var i = Opcode(len(s.prog.Strings))
	s.prog.Strings = append(s.prog.Strings, name)
	s.strings[name] = i
	return i
}

// at marks the state to be on node n, for error reporting.
func (s *compilation) at(node ast.Node) {
	s.node = node
}

func (s *compilation) line() int32 {
	if s.node == nil {
		return 0
	}
	var pos = int(s.node.Position())
	if pos > len(s.text) {
		return 0
	}
	return int32(1 + strings.Count(s.text[:pos], "\n"))
}

// errorf formats the error and terminates processing.
func (s *compilation) errorf(format string, args ...interface{}) {
	panic(fmt.Errorf(format, args...))
}

// errRecover is the handler that turns panics into returns from the top
// level of Compile.
func (s *compilation) errRecover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	var name string
	if s.tmpl != nil {
		name = s.tmpl.Name
	}
	*errp = fmt.Errorf("template %s:%d: %v", name, s.line(), e)
}
