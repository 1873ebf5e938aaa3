// Package parse converts a template into its in-memory representation (AST)
package parse

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/robfig/ssview/ast"
	"github.com/robfig/ssview/errortypes"
)

// tree is the parsed representation of a single template file.
type tree struct {
	name      string        // name provided for the input
	root      *ast.ListNode // top-level root of the tree
	text      string        // the full input text
	lex       *lexer        // lexer provides a sequence of tokens
	token     [2]item       // two-token lookahead
	peekCount int           // how many tokens have we backed up?
}

// Template parses the input into a TemplateNode (the AST).
func Template(name, text string) (node *ast.TemplateNode, err error) {
	var t = &tree{
		name: name,
		text: text,
		lex:  lex(name, text),
	}
	defer t.recover(&err)
	t.root, _ = t.itemList(itemEOF)
	t.lex = nil
	return &ast.TemplateNode{
		Name: t.name,
		Text: t.text,
		Body: t.root,
	}, nil
}

// Expr parses a standalone expression, as found in an <% if %> block.
func Expr(str string) (node ast.Node, err error) {
	var t = &tree{lex: lexExpression("", str), text: str}
	defer t.recover(&err)
	node = t.parseExpr()
	t.expect(itemEOF, "expression")
	t.lex = nil
	return node, nil
}

// Literal parses a literal value: null, true, false, a number or a quoted
// string. Integers are returned as int64 and other numbers as float64.
func Literal(expr string) (value any, err error) {
	var t = &tree{lex: lexExpression("", expr), text: expr}
	defer t.recover(&err)
	var tok = t.next()
	if !isValue(tok) {
		t.unexpected(tok, "literal")
	}
	switch n := t.newValueNode(tok).(type) {
	case *ast.NullNode:
		value = nil
	case *ast.BoolNode:
		value = n.True
	case *ast.IntNode:
		value = n.Value
	case *ast.FloatNode:
		value = n.Value
	case *ast.StringNode:
		value = n.Value
	}
	t.expect(itemEOF, "literal")
	t.lex = nil
	return value, nil
}

// itemList:
//
//	(text | lookup | block)*
//
// Terminates when it comes across one of the given block keywords (or EOF),
// which is returned.
func (t *tree) itemList(until ...itemType) (*ast.ListNode, item) {
	var list = &ast.ListNode{Pos: t.peek().pos}
	for {
		var token = t.next()
		switch token.typ {
		case itemEOF:
			if isOneOf(itemEOF, until) {
				return list, token
			}
			t.errorf("unexpected EOF, expected <%% %v %%>", until[len(until)-1])
		case itemText:
			list.Nodes = append(list.Nodes, &ast.RawTextNode{Pos: token.pos, Text: []byte(token.val)})
		case itemDollar:
			list.Nodes = append(list.Nodes, &ast.PrintNode{
				Pos:    token.pos,
				Lookup: t.parseLookup(token),
			})
		case itemLeftBrace:
			var lookup = t.parseLookup(t.expect(itemDollar, "braced lookup"))
			t.expect(itemRightBrace, "braced lookup")
			list.Nodes = append(list.Nodes, &ast.PrintNode{
				Pos:    token.pos,
				Lookup: lookup,
				Braced: true,
			})
		case itemBlockOpen:
			var keyword = t.next()
			if isOneOf(keyword.typ, until) {
				return list, keyword
			}
			list.Nodes = append(list.Nodes, t.parseBlock(keyword))
		default:
			t.unexpected(token, "template")
		}
	}
}

// parseBlock parses the block beginning with the given keyword.
func (t *tree) parseBlock(keyword item) ast.Node {
	switch keyword.typ {
	case itemIf:
		return t.parseIf(keyword)
	case itemLoop:
		return t.parseLoop(keyword)
	case itemWith:
		return t.parseWith(keyword)
	case itemInclude:
		return t.parseInclude(keyword)
	}
	t.unexpected(keyword, "block")
	return nil
}

// parseIf parses:
//
//	<% if expr %> ... (<% else_if expr %> ...)* (<% else %> ...)? <% end_if %>
func (t *tree) parseIf(token item) ast.Node {
	var n = &ast.IfNode{Pos: token.pos}
	var cond = t.parseExpr()
	for {
		t.expect(itemBlockClose, "if")
		var body, end = t.itemList(itemElseIf, itemElse, itemEndIf)
		n.Conds = append(n.Conds, &ast.IfCondNode{Pos: token.pos, Cond: cond, Body: body})
		switch end.typ {
		case itemElseIf:
			token, cond = end, t.parseExpr()
		case itemElse:
			t.expect(itemBlockClose, "else")
			body, _ = t.itemList(itemEndIf)
			n.Conds = append(n.Conds, &ast.IfCondNode{Pos: end.pos, Body: body})
			t.expect(itemBlockClose, "end_if")
			return n
		case itemEndIf:
			t.expect(itemBlockClose, "end_if")
			return n
		}
	}
}

// parseLoop parses <% loop lookup %> ... <% end_loop %>
func (t *tree) parseLoop(token item) ast.Node {
	var lookup = t.parseBlockLookup("loop")
	t.expect(itemBlockClose, "loop")
	var body, _ = t.itemList(itemEndLoop)
	t.expect(itemBlockClose, "end_loop")
	return &ast.LoopNode{Pos: token.pos, Lookup: lookup, Body: body}
}

// parseWith parses <% with lookup %> ... <% end_with %>
func (t *tree) parseWith(token item) ast.Node {
	var lookup = t.parseBlockLookup("with")
	t.expect(itemBlockClose, "with")
	var body, _ = t.itemList(itemEndWith)
	t.expect(itemBlockClose, "end_with")
	return &ast.WithNode{Pos: token.pos, Lookup: lookup, Body: body}
}

// parseInclude parses <% include Name (Arg=value (, Arg=value)*)? %>
func (t *tree) parseInclude(token item) ast.Node {
	var n = &ast.IncludeNode{
		Pos:  token.pos,
		Name: t.expect(itemIdent, "include").val,
	}
	for t.peek().typ != itemBlockClose {
		var name = t.expect(itemIdent, "include argument")
		t.expect(itemEquals, "include argument")
		n.Args = append(n.Args, &ast.IncludeArgNode{
			Pos:   name.pos,
			Name:  name.val,
			Value: t.parseOperand(),
		})
		if t.peek().typ == itemComma {
			t.next()
		}
	}
	t.next()
	return n
}

// parseBlockLookup parses the lookup given to a loop or with block, which
// may be written with or without the leading $.
func (t *tree) parseBlockLookup(context string) *ast.LookupNode {
	switch tok := t.next(); tok.typ {
	case itemDollar:
		return t.parseLookup(tok)
	case itemIdent:
		t.backup()
		var lookup = t.parseLookup(tok)
		lookup.Bare = true
		return lookup
	default:
		t.unexpected(tok, context)
	}
	return nil
}

// parseLookup parses a chain of steps. start is the $ token, or the first
// name for a bare lookup (which must have been backed up).
//
//	name ( '(' args ')' )? ( '.' name ( '(' args ')' )? )*
func (t *tree) parseLookup(start item) *ast.LookupNode {
	var n = &ast.LookupNode{Pos: start.pos}
	for {
		var name = t.expect(itemIdent, "lookup")
		var step = &ast.StepNode{Pos: name.pos, Name: name.val}
		if t.peek().typ == itemLeftParen {
			t.next()
			step.Call = true
			step.Args = t.parseArgs()
		}
		n.Steps = append(n.Steps, step)
		if t.peek().typ != itemDot {
			return n
		}
		t.next()
	}
}

// parseArgs parses a comma separated argument list. The left paren has
// already been consumed.
func (t *tree) parseArgs() []ast.Node {
	if t.peek().typ == itemRightParen {
		t.next()
		return nil
	}
	var args []ast.Node
	for {
		args = append(args, t.parseOperand())
		switch tok := t.next(); tok.typ {
		case itemComma:
		case itemRightParen:
			return args
		default:
			t.unexpected(tok, "argument list")
		}
	}
}

// Expressions ----------

// parseExpr parses a condition:
//
//	or  := and ('||' and)*
//	and := not ('&&' not)*
//	not := ('not' | '!') not | cmp
//	cmp := operand (('==' | '=' | '!=') operand)?
func (t *tree) parseExpr() ast.Node {
	var n = t.parseAnd()
	for t.peek().typ == itemOr {
		var op = t.next()
		n = &ast.OrNode{BinaryOpNode: ast.BinaryOpNode{Name: "||", Pos: op.pos, Arg1: n, Arg2: t.parseAnd()}}
	}
	return n
}

func (t *tree) parseAnd() ast.Node {
	var n = t.parseNot()
	for t.peek().typ == itemAnd {
		var op = t.next()
		n = &ast.AndNode{BinaryOpNode: ast.BinaryOpNode{Name: "&&", Pos: op.pos, Arg1: n, Arg2: t.parseNot()}}
	}
	return n
}

func (t *tree) parseNot() ast.Node {
	if tok := t.peek(); tok.typ == itemNot {
		t.next()
		return &ast.NotNode{Pos: tok.pos, Arg: t.parseNot()}
	}
	return t.parseComparison()
}

func (t *tree) parseComparison() ast.Node {
	var n = t.parseOperand()
	switch op := t.peek(); op.typ {
	case itemEq, itemEquals:
		t.next()
		return &ast.EqNode{BinaryOpNode: ast.BinaryOpNode{Name: "==", Pos: op.pos, Arg1: n, Arg2: t.parseOperand()}}
	case itemNotEq:
		t.next()
		return &ast.NotEqNode{BinaryOpNode: ast.BinaryOpNode{Name: "!=", Pos: op.pos, Arg1: n, Arg2: t.parseOperand()}}
	}
	return n
}

// parseOperand parses a literal, a $lookup or a bare lookup.
func (t *tree) parseOperand() ast.Node {
	var tok = t.next()
	switch {
	case tok.typ == itemDollar:
		return t.parseLookup(tok)
	case tok.typ == itemIdent:
		t.backup()
		var lookup = t.parseLookup(tok)
		lookup.Bare = true
		return lookup
	case isValue(tok):
		return t.newValueNode(tok)
	}
	t.unexpected(tok, "expression")
	return nil
}

func isValue(t item) bool {
	switch t.typ {
	case itemNull, itemBool, itemInteger, itemFloat, itemString:
		return true
	}
	return false
}

func (t *tree) newValueNode(tok item) ast.Node {
	switch tok.typ {
	case itemNull:
		return &ast.NullNode{Pos: tok.pos}
	case itemBool:
		return &ast.BoolNode{Pos: tok.pos, True: tok.val == "true"}
	case itemInteger:
		var value, err = strconv.ParseInt(tok.val, 0, 64)
		if err != nil {
			t.error(err)
		}
		return &ast.IntNode{Pos: tok.pos, Value: value}
	case itemFloat:
		var value, err = strconv.ParseFloat(tok.val, 64)
		if err != nil {
			t.error(err)
		}
		return &ast.FloatNode{Pos: tok.pos, Value: value}
	case itemString:
		var s, err = unquoteString(tok.val)
		if err != nil {
			t.errorf("error unquoting %s: %s", tok.val, err)
		}
		return &ast.StringNode{Pos: tok.pos, Quoted: tok.val, Value: s}
	}
	panic("unreachable")
}

// Helpers ----------

func (t *tree) next() item {
	if t.peekCount > 0 {
		t.peekCount--
	} else {
		t.token[0] = t.lex.nextItem()
	}
	return t.token[t.peekCount]
}

// backup backs the input stream up one token.
func (t *tree) backup() {
	t.peekCount++
}

// peek returns but does not consume the next token.
func (t *tree) peek() item {
	if t.peekCount > 0 {
		return t.token[t.peekCount-1]
	}
	t.peekCount = 1
	t.token[0] = t.lex.nextItem()
	return t.token[0]
}

// recover is the handler that turns panics into returns from the top level of Parse.
func (t *tree) recover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	if _, ok := e.(runtime.Error); ok {
		panic(e)
	}
	if t.lex != nil {
		t.lex.drain()
		t.lex = nil
	}
	*errp = e.(error)
}

// expect consumes the next token and guarantees it has the required type.
func (t *tree) expect(expected itemType, context string) item {
	token := t.next()
	if token.typ != expected {
		t.unexpected(token, fmt.Sprintf("%v (expected %v)", context, expected.String()))
	}
	return token
}

// unexpected complains about the token and terminates processing.
func (t *tree) unexpected(token item, context string) {
	if token.typ == itemError {
		t.errorf("lexical error: %v", token)
	}
	t.errorf("unexpected %v in %s", token, context)
}

// errorf formats the error and terminates processing.
func (t *tree) errorf(format string, args ...interface{}) {
	// get current token (taking account of backups)
	var tok = t.token[0]
	if t.peekCount > 0 {
		tok = t.token[t.peekCount-1]
	}
	t.root = nil
	panic(errortypes.NewErrFilePosf(t.name,
		t.lex.lineNumber(tok.pos), t.lex.columnNumber(tok.pos), format, args...))
}

// error terminates processing.
func (t *tree) error(err error) {
	t.errorf("%s", err)
}

func isOneOf(tocheck itemType, against []itemType) bool {
	for _, x := range against {
		if tocheck == x {
			return true
		}
	}
	return false
}
