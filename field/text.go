package field

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/robfig/ssview/data"
	nethtml "golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Text is a plain-text string. It renders HTML-escaped.
type Text struct {
	value string
	kind  string
}

// NewText converts v to a Text field. Non-strings are formatted with fmt.
func NewText(v any) Text {
	return Text{toString(v), "Text"}
}

// NewVarchar is NewText under the Varchar cast.
func NewVarchar(v any) Text {
	return Text{toString(v), "Varchar"}
}

func toString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case data.Viewable:
		return v.ForTemplate()
	}
	return fmt.Sprint(v)
}

var textMethods = methodSet[Text]{
	"LowerCase": func(t Text, _ []any) (any, error) {
		return t.with(cases.Lower(language.Und).String(t.value)), nil
	},
	"UpperCase": func(t Text, _ []any) (any, error) {
		return t.with(cases.Upper(language.Und).String(t.value)), nil
	},
	"LimitCharacters": func(t Text, args []any) (any, error) {
		var limit, err = data.ArgInt(args, 0, 20)
		if err != nil {
			return nil, fmt.Errorf("LimitCharacters: %w", err)
		}
		return t.with(limitCharacters(t.value, limit, data.ArgString(args, 1, "..."))), nil
	},
	"LimitWordCount": func(t Text, args []any) (any, error) {
		var limit, err = data.ArgInt(args, 0, 26)
		if err != nil {
			return nil, fmt.Errorf("LimitWordCount: %w", err)
		}
		return t.with(limitWordCount(t.value, limit, data.ArgString(args, 1, "..."))), nil
	},
	"FirstParagraph": func(t Text, _ []any) (any, error) {
		return t.with(firstParagraph(t.value)), nil
	},
}

func (t Text) with(s string) Text { return Text{s, t.kind} }

func (t Text) Value() any { return t.value }
func (t Text) Type() string { return t.kind }
func (t Text) Exists() bool { return t.value != "" }
func (t Text) raw() string { return t.value }
func (t Text) nice() string { return t.value }
func (t Text) String() string { return t.value }
func (t Text) ForTemplate() string { return html.EscapeString(t.value) }

func (t Text) HasMember(name string) bool {
	return textMethods.has(name)
}

func (t Text) Obj(name string, args []any) (any, error) {
	return textMethods.call(t, name, args)
}

// HTMLText is a string of markup. It renders as is.
type HTMLText struct {
	value string
}

// NewHTMLText converts v to an HTMLText field.
func NewHTMLText(v any) HTMLText {
	return HTMLText{toString(v)}
}

var htmlTextMethods = methodSet[HTMLText]{
	"Plain": func(h HTMLText, _ []any) (any, error) {
		return NewText(h.plain()), nil
	},
	"LimitCharacters": func(h HTMLText, args []any) (any, error) {
		var limit, err = data.ArgInt(args, 0, 20)
		if err != nil {
			return nil, fmt.Errorf("LimitCharacters: %w", err)
		}
		return NewText(limitCharacters(h.plain(), limit, data.ArgString(args, 1, "..."))), nil
	},
	"FirstParagraph": func(h HTMLText, _ []any) (any, error) {
		return NewText(firstParagraph(h.plain())), nil
	},
}

func (h HTMLText) Value() any { return h.value }
func (h HTMLText) Type() string { return "HTMLText" }
func (h HTMLText) Exists() bool { return h.value != "" }
func (h HTMLText) raw() string { return h.value }
func (h HTMLText) nice() string { return h.value }
func (h HTMLText) String() string { return h.value }
func (h HTMLText) ForTemplate() string { return h.value }

func (h HTMLText) HasMember(name string) bool {
	return htmlTextMethods.has(name)
}

func (h HTMLText) Obj(name string, args []any) (any, error) {
	return htmlTextMethods.call(h, name, args)
}

// plain returns the text content of the markup. Block-level closing tags
// become paragraph breaks.
func (h HTMLText) plain() string {
	var (
		b strings.Builder
		z = nethtml.NewTokenizer(strings.NewReader(h.value))
	)
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return strings.TrimSpace(b.String())
		case nethtml.TextToken:
			b.Write(z.Text())
		case nethtml.EndTagToken:
			var name, _ = z.TagName()
			switch string(name) {
			case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li":
				b.WriteString("\n\n")
			}
		case nethtml.SelfClosingTagToken, nethtml.StartTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				b.WriteString("\n")
			}
		}
	}
}

func limitCharacters(s string, limit int, add string) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	var r = []rune(s)
	return string(r[:limit]) + add
}

func limitWordCount(s string, limit int, add string) string {
	var words = strings.Fields(s)
	if len(words) <= limit {
		return s
	}
	return strings.Join(words[:limit], " ") + add
}

func firstParagraph(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "\n\n"); i >= 0 {
		return s[:i]
	}
	return s
}
