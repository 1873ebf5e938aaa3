package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/robfig/ssview/ast"
	"github.com/robfig/ssview/errortypes"
)

func nText(text string) ast.Node {
	return &ast.RawTextNode{Text: []byte(text)}
}

func tLookup(steps ...*ast.StepNode) *ast.LookupNode {
	return &ast.LookupNode{Steps: steps}
}

func tBare(steps ...*ast.StepNode) *ast.LookupNode {
	return &ast.LookupNode{Steps: steps, Bare: true}
}

func tStep(name string) *ast.StepNode {
	return &ast.StepNode{Name: name}
}

func tCall(name string, args ...ast.Node) *ast.StepNode {
	return &ast.StepNode{Name: name, Call: true, Args: args}
}

func tPrint(steps ...string) ast.Node {
	var lookup = &ast.LookupNode{}
	for _, step := range steps {
		lookup.Steps = append(lookup.Steps, tStep(step))
	}
	return &ast.PrintNode{Lookup: lookup}
}

func tList(nodes ...ast.Node) *ast.ListNode {
	return &ast.ListNode{Nodes: nodes}
}

func tString(quoted, value string) ast.Node {
	return &ast.StringNode{Quoted: quoted, Value: value}
}

var parseTests = []struct {
	name  string
	input string
	tree  *ast.ListNode
}{
	{"empty", "", tList()},
	{"text", "Hello world", tList(nText("Hello world"))},
	{"lookup", "Hello $Name!", tList(nText("Hello "), tPrint("Name"), nText("!"))},
	{"chain", "$Page.Parent.Title", tList(tPrint("Page", "Parent", "Title"))},
	{"braced", "{$A.B(1, 'x', $C)}s", tList(
		&ast.PrintNode{Braced: true, Lookup: tLookup(
			tStep("A"),
			tCall("B", &ast.IntNode{Value: 1}, tString("'x'", "x"), tLookup(tStep("C"))),
		)},
		nText("s"),
	)},
	{"no arguments", "$Now()", tList(
		&ast.PrintNode{Lookup: tLookup(tCall("Now"))},
	)},
	{"escaped dollar", `\$Name`, tList(nText("$Name"))},
	{"comment", "a<%-- $Name --%>b", tList(nText("a"), nText("b"))},
	{"if", "<% if $A %>yes<% end_if %>", tList(
		&ast.IfNode{Conds: []*ast.IfCondNode{
			{Cond: tLookup(tStep("A")), Body: tList(nText("yes"))},
		}},
	)},
	{"if else_if else", "<% if not $A %>a<% else_if B = 'x' %>b<% else %>c<% end_if %>", tList(
		&ast.IfNode{Conds: []*ast.IfCondNode{
			{Cond: &ast.NotNode{Arg: tLookup(tStep("A"))}, Body: tList(nText("a"))},
			{Cond: &ast.EqNode{BinaryOpNode: ast.BinaryOpNode{
				Name: "==",
				Arg1: tBare(tStep("B")),
				Arg2: tString("'x'", "x"),
			}}, Body: tList(nText("b"))},
			{Body: tList(nText("c"))},
		}},
	)},
	{"operator precedence", "<% if $A || $B && $C != 2 %><% end_if %>", tList(
		&ast.IfNode{Conds: []*ast.IfCondNode{
			{Cond: &ast.OrNode{BinaryOpNode: ast.BinaryOpNode{
				Name: "||",
				Arg1: tLookup(tStep("A")),
				Arg2: &ast.AndNode{BinaryOpNode: ast.BinaryOpNode{
					Name: "&&",
					Arg1: tLookup(tStep("B")),
					Arg2: &ast.NotEqNode{BinaryOpNode: ast.BinaryOpNode{
						Name: "!=",
						Arg1: tLookup(tStep("C")),
						Arg2: &ast.IntNode{Value: 2},
					}},
				}},
			}}, Body: tList()},
		}},
	)},
	{"loop", "<ul><% loop $Children.Limit(2) %><li>$Title</li><% end_loop %></ul>", tList(
		nText("<ul>"),
		&ast.LoopNode{
			Lookup: tLookup(tStep("Children"), tCall("Limit", &ast.IntNode{Value: 2})),
			Body:   tList(nText("<li>"), tPrint("Title"), nText("</li>")),
		},
		nText("</ul>"),
	)},
	{"with bare", "<% with Author %>$Name<% end_with %>", tList(
		&ast.WithNode{
			Lookup: tBare(tStep("Author")),
			Body:   tList(tPrint("Name")),
		},
	)},
	{"nested", "<% loop $A %><% if $First %>$Up.Title<% end_if %><% end_loop %>", tList(
		&ast.LoopNode{
			Lookup: tLookup(tStep("A")),
			Body: tList(&ast.IfNode{Conds: []*ast.IfCondNode{
				{Cond: tLookup(tStep("First")), Body: tList(tPrint("Up", "Title"))},
			}}),
		},
	)},
	{"include", `<% include Includes\Nav Title="Home", Count=3 Current=$Me %>`, tList(
		&ast.IncludeNode{Name: `Includes\Nav`, Args: []*ast.IncludeArgNode{
			{Name: "Title", Value: tString(`"Home"`, "Home")},
			{Name: "Count", Value: &ast.IntNode{Value: 3}},
			{Name: "Current", Value: tLookup(tStep("Me"))},
		}},
	)},
	{"include without arguments", "<% include Footer %>", tList(
		&ast.IncludeNode{Name: "Footer"},
	)},
}

func TestParse(t *testing.T) {
	for _, test := range parseTests {
		tmpl, err := Template(test.name, test.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.name, err)
			continue
		}
		if diff := cmp.Diff(test.tree, tmpl.Body,
			cmpopts.IgnoreTypes(ast.Pos(0)), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s=(%q): (-want +got)\n%s", test.name, test.input, diff)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	var tests = []string{
		"Hello $Name!",
		"{$A.B(1, 'x')}",
		`costs \$5 and \$Price`,
		"<% if not $A %>a<% else_if B == 'x' %>b<% else %>c<% end_if %>",
		"<% loop $Children.Limit(2) %>$Pos<% end_loop %>",
		"<% with Author %>$Name<% end_with %>",
		"<% include Nav Title='Home', Count=3 %>",
	}
	for _, input := range tests {
		tmpl, err := Template("", input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", input, err)
			continue
		}
		if actual := tmpl.String(); actual != input {
			t.Errorf("round trip: got %q, expected %q", actual, input)
		}
	}
}

func TestParseErrors(t *testing.T) {
	var tests = []struct {
		input     string
		line, col int
	}{
		{"<% if $A %>", 1, 12},
		{"line one\n<% end_if %>", 2, 4},
		{"<% loop %><% end_loop %>", 1, 9},
		{"<% if $A %><% end_loop %>", 1, 15},
		{"<% include %>", 1, 12},
		{"<% include Nav Title %>", 1, 22},
		{"\n\n  {$Name", 3, 9},
		{"<% if $A == %><% end_if %>", 1, 13},
		{"<% with $A $B %><% end_with %>", 1, 12},
	}
	for _, test := range tests {
		_, err := Template("Page.ss", test.input)
		if err == nil {
			t.Errorf("%q: expected error", test.input)
			continue
		}
		var pos = errortypes.ToErrFilePos(err)
		if pos == nil {
			t.Errorf("%q: expected a file position, got %v", test.input, err)
			continue
		}
		if pos.File() != "Page.ss" || pos.Line() != test.line || pos.Col() != test.col {
			t.Errorf("%q: got %s:%d:%d (%v), expected Page.ss:%d:%d",
				test.input, pos.File(), pos.Line(), pos.Col(), err, test.line, test.col)
		}
	}
}

func TestLiteral(t *testing.T) {
	var tests = []struct {
		input string
		value any
	}{
		{"null", nil},
		{"true", true},
		{"false", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"0x10", int64(16)},
		{"1.5", 1.5},
		{"6.02e23", 6.02e23},
		{"'hello'", "hello"},
		{`"it's"`, "it's"},
		{" 'padded' ", "padded"},
	}
	for _, test := range tests {
		value, err := Literal(test.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.input, err)
			continue
		}
		if value != test.value {
			t.Errorf("%q: got %#v, expected %#v", test.input, value, test.value)
		}
	}

	for _, input := range []string{"", "$Foo", "1 2", "bare", "'unterminated"} {
		if value, err := Literal(input); err == nil {
			t.Errorf("%q: expected error, got %#v", input, value)
		}
	}
}

func TestExpr(t *testing.T) {
	var tests = []string{
		"$A",
		"not $A.B(1)",
		"A == 'x' && $B != 2 || true",
	}
	for _, input := range tests {
		node, err := Expr(input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", input, err)
			continue
		}
		if node.String() != input {
			t.Errorf("got %q, expected %q", node.String(), input)
		}
	}
}
