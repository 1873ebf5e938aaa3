package data

import (
	"fmt"
)

// List is an ordered sequence of values. Besides iteration it exposes a small
// set of list methods to templates, e.g. $Items.Count or $Items.Limit(3).
type List []any

var (
	_ Viewable  = List{}
	_ Iterable  = List{}
	_ Countable = List{}
	_ Existence = List{}
)

type listMethod func(l List, args []any) (any, error)

var listMethods map[string]listMethod

func init() {
	listMethods = map[string]listMethod{
		"Count":     func(l List, _ []any) (any, error) { return len(l), nil },
		"Exists":    func(l List, _ []any) (any, error) { return l.Exists(), nil },
		"First":     listFirst,
		"Last":      listLast,
		"Reverse":   listReverse,
		"Limit":     listLimit,
		"Column":    listColumn,
		"GroupedBy": listGroupedBy,
	}
}

func (l List) HasMember(name string) bool {
	_, ok := listMethods[name]
	return ok
}

func (l List) Obj(name string, args []any) (any, error) {
	if fn, ok := listMethods[name]; ok {
		return fn(l, args)
	}
	return nil, nil
}

// ForTemplate renders nothing; lists are looped over rather than printed.
func (l List) ForTemplate() string {
	return ""
}

func (l List) Iterator() Iterator {
	return IteratorOf(l)
}

func (l List) Count() int {
	return len(l)
}

func (l List) Exists() bool {
	return len(l) > 0
}

func listFirst(l List, _ []any) (any, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return l[0], nil
}

func listLast(l List, _ []any) (any, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return l[len(l)-1], nil
}

func listReverse(l List, _ []any) (any, error) {
	var out = make(List, len(l))
	for i, item := range l {
		out[len(l)-1-i] = item
	}
	return out, nil
}

// listLimit implements Limit(length, offset).
func listLimit(l List, args []any) (any, error) {
	length, err := ArgInt(args, 0, len(l))
	if err != nil {
		return nil, fmt.Errorf("Limit: %w", err)
	}
	offset, err := ArgInt(args, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("Limit: %w", err)
	}
	if offset < 0 || offset >= len(l) || length <= 0 {
		return List{}, nil
	}
	var end = offset + length
	if end > len(l) {
		end = len(l)
	}
	return append(List(nil), l[offset:end]...), nil
}

// listColumn returns the named member of every item.
func listColumn(l List, args []any) (any, error) {
	var name = ArgString(args, 0, "")
	if name == "" {
		return nil, fmt.Errorf("Column: a member name is required")
	}
	var out = make(List, 0, len(l))
	for _, item := range l {
		val, err := Member(item, name)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

// Member returns the named member of an arbitrary item, adapting plain Go
// values as needed. Scalars have no members.
func Member(item any, name string) (any, error) {
	if v, ok := New(item).(Viewable); ok {
		return v.Obj(name, nil)
	}
	return nil, nil
}
