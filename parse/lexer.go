package parse

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/robfig/ssview/ast"
)

// Lexer design from text/template

// Tokens ---------------------------------------------------------------------

// item represents a token or text string returned from the scanner.
type item struct {
	typ itemType // The type of this item.
	pos ast.Pos  // The starting position, in bytes, of this item in the input string.
	val string   // The value of this item.
}

func (i item) String() string {
	switch {
	case i.typ == itemEOF:
		return "EOF"
	case i.typ == itemError:
		return i.val
	case i.typ > itemKeyword:
		return fmt.Sprintf("<%s>", i.val)
	case len(i.val) > 10:
		return fmt.Sprintf("%.10q...", i.val)
	}
	return fmt.Sprintf("%q", i.val)
}

// itemType identifies the type of lexical items.
type itemType int

// All items.
const (
	itemInvalid itemType = iota // not used
	itemEOF                     // EOF
	itemError                   // error occurred; value is text of error

	itemText       // plain text
	itemBlockOpen  // <%
	itemBlockClose // %>
	itemLeftBrace  // { opening a braced lookup
	itemRightBrace // } closing a braced lookup

	// Lookups
	itemDollar     // $ beginning a lookup
	itemIdent      // identifier
	itemDot        // . between lookup steps
	itemLeftParen  // (
	itemRightParen // )
	itemComma      // , between arguments
	itemEquals     // = (include arguments and comparisons)

	// Literals
	itemNull    // null
	itemBool    // true, false
	itemInteger // e.g. 42
	itemFloat   // e.g. 1.0
	itemString  // e.g. 'hello world'

	// Operators
	itemEq    // ==
	itemNotEq // !=
	itemNot   // not, !
	itemAnd   // &&
	itemOr    // ||

	// Block keywords
	itemKeyword // used only to delimit the keywords
	itemIf      // <% if ... %>
	itemElseIf  // <% else_if ... %>
	itemElse    // <% else %>
	itemEndIf   // <% end_if %>
	itemLoop    // <% loop ... %>
	itemEndLoop // <% end_loop %>
	itemWith    // <% with ... %>
	itemEndWith // <% end_with %>
	itemInclude // <% include ... %>
)

var keywords = map[string]itemType{
	"if":       itemIf,
	"else_if":  itemElseIf,
	"else":     itemElse,
	"end_if":   itemEndIf,
	"loop":     itemLoop,
	"end_loop": itemEndLoop,
	"with":     itemWith,
	"end_with": itemEndWith,
	"include":  itemInclude,

	"true":  itemBool,
	"false": itemBool,
	"null":  itemNull,
	"not":   itemNot,
}

// String converts the itemType into its source string.
// It is fantastically inefficient and should only be used for error messages.
func (t itemType) String() string {
	for k, v := range keywords {
		if v == t && t != itemBool {
			return k
		}
	}
	var r, ok = map[itemType]string{
		itemEOF:        "<eof>",
		itemError:      "<error>",
		itemText:       "<text>",
		itemBlockOpen:  "<%",
		itemBlockClose: "%>",
		itemLeftBrace:  "{",
		itemRightBrace: "}",
		itemDollar:     "$",
		itemIdent:      "<ident>",
		itemDot:        ".",
		itemLeftParen:  "(",
		itemRightParen: ")",
		itemComma:      ",",
		itemEquals:     "=",
		itemBool:       "<bool>",
		itemInteger:    "<integer>",
		itemFloat:      "<float>",
		itemString:     "<string>",
		itemEq:         "==",
		itemNotEq:      "!=",
		itemAnd:        "&&",
		itemOr:         "||",
	}[t]
	if ok {
		return r
	}
	return fmt.Sprintf("item(%d)", t)
}

// Lexer ----------------------------------------------------------------------

const (
	eof       = -1
	decDigits = "0123456789"
	hexDigits = "0123456789ABCDEF"
)

// stateFn represents the state of the lexer as a function that returns the
// next state.
type stateFn func(*lexer) stateFn

// lexer holds the state of the lexical scanning.
//
// Based on the lexer from the "text/template" package.
// See http://www.youtube.com/watch?v=HxaD_trXwRE
type lexer struct {
	name       string    // the name of the input; used only during errors.
	input      string    // the string being scanned.
	state      stateFn   // the next lexing function to enter.
	pos        ast.Pos   // current position in the input.
	start      ast.Pos   // start position of this item.
	width      int       // width of last rune read from input.
	items      chan item // channel of scanned items.
	lastEmit   item      // most recent item emitted
	inBlock    bool      // within <% %>
	braced     bool      // within {$ }
	parenDepth int       // nesting of argument lists
	standalone bool      // lexing a bare expression rather than a template
}

// nextItem returns the next item from the input.
func (l *lexer) nextItem() item {
	return <-l.items
}

// drain consumes the remaining items, letting the lexing goroutine exit.
func (l *lexer) drain() {
	for range l.items {
	}
}

// lex creates a new scanner for the input string.
func lex(name, input string) *lexer {
	l := &lexer{
		name:  name,
		input: input,
		items: make(chan item),
		state: lexText,
	}
	go l.run()
	return l
}

// lexExpression lexes a single expression, as found within a block.
func lexExpression(name, input string) *lexer {
	l := &lexer{
		name:       name,
		input:      input,
		items:      make(chan item),
		state:      lexExpr,
		inBlock:    true,
		standalone: true,
	}
	go l.run()
	return l
}

// run runs the state machine for the lexer.
func (l *lexer) run() {
	for l.state != nil {
		l.state = l.state(l)
	}
	close(l.items)
}

// next returns the next rune in the input.
func (l *lexer) next() (r rune) {
	if l.pos >= ast.Pos(len(l.input)) {
		l.width = 0
		return eof
	}
	r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += ast.Pos(l.width)
	return r
}

// peek returns but does not consume the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// peekAt returns the byte at offset n from the current position, or 0.
func (l *lexer) peekAt(n int) byte {
	if i := int(l.pos) + n; i < len(l.input) {
		return l.input[i]
	}
	return 0
}

// backup steps back one rune. Can only be called once per call of next.
func (l *lexer) backup() {
	l.pos -= ast.Pos(l.width)
}

// emit passes an item back to the client.
func (l *lexer) emit(t itemType) {
	l.lastEmit = item{t, l.start, l.input[l.start:l.pos]}
	l.items <- l.lastEmit
	l.start = l.pos
}

// emitText emits the pending input as text, if there is any.
func (l *lexer) emitText() {
	if l.pos > l.start {
		l.emit(itemText)
	}
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

// accept consumes the next rune if it's from the valid set.
func (l *lexer) accept(valid string) bool {
	if strings.IndexRune(valid, l.next()) >= 0 {
		return true
	}
	l.backup()
	return false
}

// acceptRun consumes a run of runes from the valid set.
func (l *lexer) acceptRun(valid string) bool {
	pos := l.pos
	for strings.IndexRune(valid, l.next()) >= 0 {
	}
	l.backup()
	return l.pos > pos
}

// lineNumber reports which line we're on. Doing it this way
// means we don't have to worry about peek double counting.
func (l *lexer) lineNumber(pos ast.Pos) int {
	return 1 + strings.Count(l.input[:pos], "\n")
}

// columnNumber reports which column in the current line we're on.
func (l *lexer) columnNumber(pos ast.Pos) int {
	n := strings.LastIndex(l.input[:pos], "\n")
	return int(pos) - n
}

// errorf returns an error item and terminates the scan by passing
// back a nil pointer that will be the next state, terminating l.nextItem.
func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.items <- item{itemError, l.pos, fmt.Sprintf(format, args...)}
	return nil
}

// State functions ------------------------------------------------------------

// lexText scans raw text until a lookup, a block or the end of input.
func lexText(l *lexer) stateFn {
	for {
		var rest = l.input[l.pos:]
		switch {
		case strings.HasPrefix(rest, `\$`):
			// escaped dollar: drop the backslash, keep the $ as text
			l.emitText()
			l.pos++
			l.ignore()
			l.pos++
		case strings.HasPrefix(rest, "<%--"):
			l.emitText()
			return lexComment
		case strings.HasPrefix(rest, "<%"):
			l.emitText()
			l.pos += 2
			l.emit(itemBlockOpen)
			l.inBlock = true
			return lexExpr
		case strings.HasPrefix(rest, "{$") && isLetterOrUnderscore(rune(l.peekAt(2))):
			l.emitText()
			l.pos++
			l.emit(itemLeftBrace)
			l.braced = true
			return lexLookup
		case strings.HasPrefix(rest, "$") && isLetterOrUnderscore(rune(l.peekAt(1))):
			l.emitText()
			return lexLookup
		case len(rest) == 0:
			l.emitText()
			l.emit(itemEOF)
			return nil
		default:
			l.next()
		}
	}
}

// lexComment skips a <%-- comment --%>.
func lexComment(l *lexer) stateFn {
	var i = strings.Index(l.input[l.pos:], "--%>")
	if i == -1 {
		return l.errorf("unclosed comment")
	}
	l.pos += ast.Pos(i + len("--%>"))
	l.ignore()
	return lexText
}

// lexLookup scans the $ beginning a lookup in text.
func lexLookup(l *lexer) stateFn {
	l.next()
	l.emit(itemDollar)
	return lexStep
}

// lexStep scans one step of a lookup in text: a name, optionally followed
// by an argument list. A paren that does not open a complete argument list
// is left as text.
func lexStep(l *lexer) stateFn {
	for isAlphaNumeric(l.next()) {
	}
	l.backup()
	l.emit(itemIdent)
	if l.peek() == '(' && l.closesArgs() {
		l.next()
		l.emit(itemLeftParen)
		l.parenDepth = 1
		return lexExpr
	}
	return lexAfterStep
}

// closesArgs reports whether the input at the current position, which must
// be a left paren, holds an argument list that is closed before any
// character that cannot appear in one.
func (l *lexer) closesArgs() bool {
	var (
		depth   int
		quote   rune
		escaped bool
	)
	for _, r := range l.input[l.pos:] {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth == 0 {
				return true
			}
		case r == '\'' || r == '"':
			quote = r
		case isAlphaNumeric(r) || isSpaceEOL(r) || strings.ContainsRune("$.,=!&|+-", r):
		default:
			return false
		}
	}
	return false
}

// lexAfterStep continues a lookup in text if a dot and another name follow.
func lexAfterStep(l *lexer) stateFn {
	if l.peek() == '.' && isLetterOrUnderscore(rune(l.peekAt(1))) {
		l.next()
		l.emit(itemDot)
		return lexStep
	}
	if l.braced {
		if l.next() != '}' {
			return l.errorf("expected } to close the lookup")
		}
		l.emit(itemRightBrace)
		l.braced = false
	}
	return lexText
}

// lexExpr scans the elements of a block or of an argument list.
func lexExpr(l *lexer) stateFn {
	switch r := l.next(); {
	case r == eof:
		if l.parenDepth > 0 {
			return l.errorf("unclosed argument list")
		}
		if l.standalone {
			l.emit(itemEOF)
			return nil
		}
		return l.errorf("unclosed block")
	case isSpaceEOL(r):
		l.ignore()
	case r == '%' && l.peek() == '>' && l.inBlock:
		l.next()
		l.emit(itemBlockClose)
		l.inBlock = false
		l.parenDepth = 0
		return lexText
	case r == '$':
		l.emit(itemDollar)
	case r == '.':
		l.emit(itemDot)
	case r == '(':
		l.parenDepth++
		l.emit(itemLeftParen)
	case r == ')':
		if l.parenDepth == 0 {
			return l.errorf("unexpected right paren")
		}
		l.parenDepth--
		l.emit(itemRightParen)
		if l.parenDepth == 0 && !l.inBlock {
			return lexAfterStep
		}
	case r == ',':
		l.emit(itemComma)
	case r == '=':
		if l.accept("=") {
			l.emit(itemEq)
		} else {
			l.emit(itemEquals)
		}
	case r == '!':
		if l.accept("=") {
			l.emit(itemNotEq)
		} else {
			l.emit(itemNot)
		}
	case r == '&':
		if !l.accept("&") {
			return l.errorf("expected &&")
		}
		l.emit(itemAnd)
	case r == '|':
		if !l.accept("|") {
			return l.errorf("expected ||")
		}
		l.emit(itemOr)
	case r == '\'' || r == '"':
		return lexQuote(l, r)
	case isDigit(r) || (r == '-' || r == '+') && isDigit(l.peek()):
		l.backup()
		return lexNumber
	case isLetterOrUnderscore(r):
		l.backup()
		return lexIdent
	default:
		return l.errorf("unrecognized character in block: %#U", r)
	}
	return lexExpr
}

// lexIdent scans a name within a block: a keyword, literal or lookup step.
// Template names following "include" may contain backslashes.
func lexIdent(l *lexer) stateFn {
	var includeName = l.lastEmit.typ == itemInclude
	for {
		var r = l.next()
		if isAlphaNumeric(r) || includeName && r == '\\' {
			continue
		}
		l.backup()
		break
	}
	if l.lastEmit.typ != itemDollar && l.lastEmit.typ != itemDot {
		if typ, ok := keywords[l.input[l.start:l.pos]]; ok {
			l.emit(typ)
			return lexExpr
		}
	}
	l.emit(itemIdent)
	return lexExpr
}

// lexQuote scans a quoted string. The opening quote has been read.
func lexQuote(l *lexer, quote rune) stateFn {
	for {
		switch l.next() {
		case '\\':
			if r := l.next(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.errorf("unterminated quoted string")
		case quote:
			l.emit(itemString)
			return lexExpr
		}
	}
}

// lexNumber scans a number: a float or integer (which can be decimal or hex).
func lexNumber(l *lexer) stateFn {
	typ, ok := scanNumber(l)
	if !ok {
		return l.errorf("bad number syntax: %q", l.input[l.start:l.pos])
	}
	// Emits itemFloat or itemInteger.
	l.emit(typ)
	return lexExpr
}

// scanNumber scans a number.
//
// It returns the scanned itemType (itemFloat or itemInteger) and a flag
// indicating if an error was found.
//
// Floats must be in decimal and must either:
//
//   - Have digits both before and after the decimal point (both can be
//     a single 0), e.g. 0.5, -100.0, or
//   - Have a lower-case e that represents scientific notation,
//     e.g. -3e-3, 6.02e23.
//
// Integers can be:
//
//   - decimal (e.g. -827)
//   - hexadecimal (must begin with 0x and must use capital A-F,
//     e.g. 0x1A2B).
func scanNumber(l *lexer) (typ itemType, ok bool) {
	typ = itemInteger
	// Optional leading sign.
	hasSign := l.accept("+-")
	if ast.Pos(len(l.input)) >= l.pos+2 && l.input[l.pos:l.pos+2] == "0x" {
		// Hexadecimal.
		if hasSign {
			// No signs for hexadecimals.
			return
		}
		l.acceptRun("0x")
		if !l.acceptRun(hexDigits) {
			// Requires at least one digit.
			return
		}
		if l.accept(".") {
			// No dots for hexadecimals.
			return
		}
	} else {
		// Decimal.
		if !l.acceptRun(decDigits) {
			// Requires at least one digit.
			return
		}
		if l.peek() == '.' && isDigit(rune(l.peekAt(1))) {
			// Float.
			l.next()
			l.acceptRun(decDigits)
			typ = itemFloat
		} else if (!hasSign && l.input[l.start] == '0' && l.pos > l.start+1) ||
			(hasSign && l.input[l.start+1] == '0' && l.pos > l.start+2) {
			// Integers can't start with 0.
			return
		}
		if l.accept("e") {
			l.accept("+-")
			if !l.acceptRun(decDigits) {
				// A digit is required after the scientific notation.
				return
			}
			typ = itemFloat
		}
	}
	// Next thing must not be alphanumeric.
	if isAlphaNumeric(l.peek()) {
		l.next()
		return
	}
	ok = true
	return
}

// Helpers --------------------------------------------------------------------

// isAlphaNumeric reports whether r is an alphabetic, digit, or underscore.
func isAlphaNumeric(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isSpace reports whether r is a space character.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// isEndOfLine reports whether r is an end-of-line character.
func isEndOfLine(r rune) bool {
	return r == '\r' || r == '\n'
}

// isSpaceEOL returns true if r is space or end of line.
func isSpaceEOL(r rune) bool {
	return isSpace(r) || isEndOfLine(r)
}

func isLetterOrUnderscore(r rune) bool {
	return 'a' <= r && r <= 'z' ||
		'A' <= r && r <= 'Z' ||
		r == '_'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
