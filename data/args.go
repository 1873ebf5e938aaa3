package data

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgInt returns args[i] as an int, or def if the argument was not provided.
// Template arguments are frequently rendered strings, so numeric strings are
// accepted.
func ArgInt(args []any, i, def int) (int, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	switch v := args[i].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	var s = strings.TrimSpace(fmt.Sprint(args[i]))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("argument %d: %q is not an integer", i+1, s)
	}
	return n, nil
}

// ArgString returns args[i] formatted as a string, or def if it was not
// provided.
func ArgString(args []any, i int, def string) string {
	if i >= len(args) || args[i] == nil {
		return def
	}
	if s, ok := args[i].(string); ok {
		return s
	}
	return fmt.Sprint(args[i])
}
