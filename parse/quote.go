package parse

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

var unescapes = map[rune]rune{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

var escapes = map[rune]rune{
	'\\': '\\',
	'\'': '\'',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
}

// quoteString quotes the given string with single quotes, escaping as
// required for a template string literal.
func quoteString(s string) string {
	var q strings.Builder
	q.Grow(len(s) + 2)
	q.WriteByte('\'')
	for _, ch := range s {
		if seq, ok := escapes[ch]; ok {
			q.WriteRune('\\')
			q.WriteRune(seq)
			continue
		}
		q.WriteRune(ch)
	}
	q.WriteByte('\'')
	return q.String()
}

// unquoteString takes a string literal in single or double quotes (including
// the quotes) and returns the unquoted string, along with any error
// encountered.
func unquoteString(s string) (string, error) {
	n := len(s)
	if n < 2 {
		return "", errors.New("too short a string")
	}

	var quote = s[0]
	if quote != '\'' && quote != '"' || s[n-1] != quote {
		return "", errors.New("string not surrounded by quotes")
	}

	s = s[1 : n-1]
	if strings.IndexByte(s, '\\') == -1 {
		return s, nil
	}

	var escaping = false
	var result = make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		if escaping {
			if r == 'u' {
				if i+4 > len(s) {
					return "", errors.New("error scanning unicode escape, expect \\uNNNN")
				}
				num, err := strconv.ParseInt(s[i:i+4], 16, 0)
				if err != nil {
					return "", err
				}
				r = rune(num)
				i += 4
			} else {
				replacement, ok := unescapes[r]
				if !ok {
					// unknown escapes are kept as written
					result = append(result, '\\')
				} else {
					r = replacement
				}
			}
			result = append(result, r)
			escaping = false
			continue
		}

		if r == '\\' {
			escaping = true
			continue
		}
		result = append(result, r)
	}
	if escaping {
		return "", errors.New("string ends with a backslash")
	}
	return string(result), nil
}
