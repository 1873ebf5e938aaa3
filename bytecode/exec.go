package bytecode

import (
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/robfig/ssview/data"
	"github.com/robfig/ssview/template"
	"github.com/robfig/ssview/view"
)

// Includer renders the named template into wr for <% include %>. scope is
// the including template's scope, which the included template inherits.
type Includer func(wr io.Writer, name string, args view.Bindings, scope *view.Scope) error

// Execute runs the named template against scope, writing the output to wr.
// include may be nil if the template includes no others.
func (prog *Program) Execute(wr io.Writer, templateName string, scope *view.Scope, include Includer) (err error) {
	tpl, ok := prog.TemplateByName[templateName]
	if !ok {
		return fmt.Errorf("%w: %s", template.ErrTemplateNotFound, templateName)
	}
	state := &state{
		prog:    prog,
		tmpl:    tpl,
		wr:      wr,
		scope:   scope,
		include: include,
	}
	defer state.errRecover(&err)
	state.run(tpl.PC)
	return nil
}

// state represents the state of an execution.
type state struct {
	prog    *Program
	tmpl    *Template
	wr      io.Writer
	scope   *view.Scope
	include Includer
	ip      int   // index of the next instruction
	stack   []any // operands
}

func (s *state) run(pc int) {
	code := s.prog.Instr
	for s.ip = pc; s.ip < len(code); {
		op := code[s.ip]
		s.ip++

		switch op {
		// Output ----------
		case RawText:
			s.write(s.prog.RawTexts[s.arg()])
		case Output:
			s.write([]byte(toString(s.pop())))

		// Lookup chains ----------
		case Locally:
			s.scope.Locally()
		case Obj:
			name, args := s.call()
			if _, err := s.scope.Obj(name, args...); err != nil {
				s.error(err)
			}
		case XMLVal:
			name, args := s.call()
			out, err := s.scope.XMLVal(name, args...)
			if err != nil {
				s.error(err)
			}
			s.push(out)
		case HasValue:
			name, args := s.call()
			ok, err := s.scope.HasValue(name, args...)
			if err != nil {
				s.error(err)
			}
			s.push(ok)
		case Self:
			s.push(s.scope.Self())
		case LookupOrString:
			s.push(s.lookupOrString(s.str()))

		// Blocks ----------
		case Push:
			s.scope.Push()
		case Pop:
			s.scope.Pop()
		case Next:
			target := s.arg()
			_, ok, err := s.scope.Next()
			if err != nil {
				s.error(err)
			}
			if !ok {
				s.ip = int(target)
			}

		// Expressions ----------
		case Const:
			s.push(s.prog.Values[s.arg()])
		case Not:
			s.push(!truthy(s.pop()))
		case Eq:
			b, a := s.pop(), s.pop()
			s.push(equal(a, b))
		case NotEq:
			b, a := s.pop(), s.pop()
			s.push(!equal(a, b))
		case Jump:
			s.ip = int(s.arg())
		case JumpIfFalse:
			target := s.arg()
			if !truthy(s.pop()) {
				s.ip = int(target)
			}
		case JumpIfFalseOrPop:
			target := s.arg()
			if !truthy(s.top()) {
				s.ip = int(target)
			} else {
				s.pop()
			}
		case JumpIfTrueOrPop:
			target := s.arg()
			if truthy(s.top()) {
				s.ip = int(target)
			} else {
				s.pop()
			}

		// Templates ----------
		case Include:
			s.doInclude()
		case Return:
			return
		default:
			s.errorf("unknown op: %s", op)
		}
	}
	s.errorf("eof")
}

// lookupOrString returns the markup of the named value if it has one, or
// else the name itself.
func (s *state) lookupOrString(name string) string {
	ok, err := s.scope.Locally().HasValue(name)
	if err != nil {
		s.error(err)
	}
	if !ok {
		return name
	}
	out, err := s.scope.Locally().XMLVal(name)
	if err != nil {
		s.error(err)
	}
	return out
}

func (s *state) doInclude() {
	var (
		name  = s.str()
		n     = int(s.arg())
		names = make([]string, n)
	)
	for i := range names {
		names[i] = s.str()
	}
	var values = s.popN(n)
	if s.include == nil {
		s.errorf("include %s: no includer", name)
	}
	var args = make(view.Bindings, n)
	for i, arg := range names {
		args[arg] = view.Literal{Value: values[i]}
	}
	if err := s.include(s.wr, name, args, s.scope); err != nil {
		s.error(err)
	}
}

// Operands ----------

// arg consumes an inline operand.
func (s *state) arg() Opcode {
	var arg = s.prog.Instr[s.ip]
	s.ip++
	return arg
}

// str consumes an inline operand naming a string.
func (s *state) str() string {
	return s.prog.Strings[s.arg()]
}

// call consumes the name and argument count operands of a lookup step, and
// pops its arguments.
func (s *state) call() (string, []any) {
	var name = s.str()
	return name, s.popN(int(s.arg()))
}

func (s *state) push(v any) {
	s.stack = append(s.stack, v)
}

func (s *state) pop() any {
	var v = s.top()
	s.stack = s.stack[:len(s.stack)-1]
	return v
}

func (s *state) top() any {
	if len(s.stack) == 0 {
		s.errorf("stack underflow")
	}
	return s.stack[len(s.stack)-1]
}

// popN pops n values, returning them in the order they were pushed.
func (s *state) popN(n int) []any {
	if n == 0 {
		return nil
	}
	if len(s.stack) < n {
		s.errorf("stack underflow")
	}
	var vals = make([]any, n)
	copy(vals, s.stack[len(s.stack)-n:])
	s.stack = s.stack[:len(s.stack)-n]
	return vals
}

func (s *state) write(b []byte) {
	if _, err := s.wr.Write(b); err != nil {
		s.error(err)
	}
}

// Values ----------

// truthy reports whether v passes an <% if %>.
func truthy(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case *view.Data:
		return v.Exists()
	}
	return data.Truthy(v)
}

// equal compares two values as markup: numerically if both are numbers,
// else as strings.
func equal(a, b any) bool {
	var sa, sb = toString(a), toString(b)
	if fa, err := strconv.ParseFloat(sa, 64); err == nil {
		if fb, err := strconv.ParseFloat(sb, 64); err == nil {
			return fa == fb
		}
	}
	return sa == sb
}

func toString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return ""
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case *view.Data:
		return v.String()
	}
	return fmt.Sprint(v)
}

// Errors ----------

// errorf formats the error and terminates processing.
func (s *state) errorf(format string, args ...interface{}) {
	panic(fmt.Errorf(format, args...))
}

// error terminates processing.
func (s *state) error(err error) {
	panic(err)
}

// errRecover is the handler that turns panics into returns from the top
// level of Execute, adding the template name and line.
func (s *state) errRecover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	var line int32
	if s.ip > 0 && s.ip <= len(s.prog.Lines) {
		line = s.prog.Lines[s.ip-1]
	}
	switch err := e.(type) {
	case runtime.Error:
		panic(e)
	case error:
		*errp = fmt.Errorf("template %s:%d: %w", s.tmpl.Name, line, err)
	default:
		*errp = fmt.Errorf("template %s:%d: %v", s.tmpl.Name, line, err)
	}
}
