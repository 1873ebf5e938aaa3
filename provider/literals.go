package provider

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/robfig/ssview/parse"
	"github.com/robfig/ssview/view"
)

// Literals provides constant global properties.
type Literals map[string]any

var _ view.GlobalProvider = Literals(nil)

// ParseLiterals parses the given input, expecting the form:
//
//	<name> = <literal>
//
// Furthermore:
//   - Empty lines and lines beginning with '//' are ignored.
//   - <literal> must be a template literal: null, a boolean, a number or a
//     quoted string.
func ParseLiterals(input io.Reader) (Literals, error) {
	var (
		literals = make(Literals)
		scanner  = bufio.NewScanner(input)
		lineNum  int
	)
	for scanner.Scan() {
		lineNum++
		var line = strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "//") {
			continue
		}
		var name, expr, ok = strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: no equals: %q", lineNum, line)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("line %d: missing name", lineNum)
		}
		var value, err = parse.Literal(strings.TrimSpace(expr))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		literals[name] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return literals, nil
}

func (l Literals) TemplateGlobalVariables() []view.Variable {
	var names = make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)

	var vars = make([]view.Variable, len(names))
	for i, name := range names {
		vars[i] = view.Variable{Name: name, Value: &view.Literal{Value: l[name]}}
	}
	return vars
}
