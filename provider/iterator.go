package provider

import (
	"errors"

	"github.com/robfig/ssview/data"
	"github.com/robfig/ssview/view"
)

// BasicIteratorSupport provides properties describing the position of the
// current item in a loop. Outside of a loop, every item is the first and
// last of a list of one.
type BasicIteratorSupport struct {
	pos, total int
}

var _ view.IteratorProvider = (*BasicIteratorSupport)(nil)

func (b *BasicIteratorSupport) SetIteratorProperties(pos, total int) {
	b.pos, b.total = pos, total
}

func (b *BasicIteratorSupport) TemplateIteratorVariables() []view.Variable {
	// withIndex adapts a method taking an index argument that defaults to 1.
	var withIndex = func(fn func(int) any) view.Callable {
		return func(args []any) (any, error) {
			var n, err = data.ArgInt(args, 0, 1)
			if err != nil {
				return nil, err
			}
			return fn(n), nil
		}
	}
	return []view.Variable{
		{Method: "First"},
		{Method: "Last"},
		{Method: "FirstLast"},
		{Method: "Middle"},
		{Method: "MiddleString"},
		{Method: "TotalItems"},
		{Method: "IsFirst"},
		{Method: "IsLast"},
		{Name: "Even", Func: withIndex(func(n int) any { return b.Even(n) })},
		{Name: "Odd", Func: withIndex(func(n int) any { return b.Odd(n) })},
		{Name: "EvenOdd", Func: withIndex(func(n int) any { return b.EvenOdd(n) })},
		{Name: "Pos", Func: withIndex(func(n int) any { return b.Pos(n) })},
		{Name: "FromEnd", Func: withIndex(func(n int) any { return b.FromEnd(n) })},
		{Name: "Modulus", Func: b.modulus},
		{Name: "MultipleOf", Func: b.multipleOf},
	}
}

// First reports whether the current item is the first.
func (b *BasicIteratorSupport) First() bool {
	return b.pos == 0
}

// Last reports whether the current item is the last.
func (b *BasicIteratorSupport) Last() bool {
	return b.pos == b.total-1
}

func (b *BasicIteratorSupport) IsFirst() bool { return b.First() }
func (b *BasicIteratorSupport) IsLast() bool { return b.Last() }

// FirstLast returns "first", "last", "first last" or "", for use as a CSS
// class.
func (b *BasicIteratorSupport) FirstLast() string {
	switch {
	case b.First() && b.Last():
		return "first last"
	case b.First():
		return "first"
	case b.Last():
		return "last"
	}
	return ""
}

// Middle reports whether the current item is neither the first nor the last.
func (b *BasicIteratorSupport) Middle() bool {
	return !b.First() && !b.Last()
}

// MiddleString returns "middle" for middle items.
func (b *BasicIteratorSupport) MiddleString() string {
	if b.Middle() {
		return "middle"
	}
	return ""
}

// Odd reports whether the position, counted from start, is odd.
func (b *BasicIteratorSupport) Odd(start int) bool {
	return (b.pos+start)%2 != 0
}

// Even reports whether the position, counted from start, is even.
func (b *BasicIteratorSupport) Even(start int) bool {
	return !b.Odd(start)
}

// EvenOdd returns "even" or "odd".
func (b *BasicIteratorSupport) EvenOdd(start int) string {
	if b.Even(start) {
		return "even"
	}
	return "odd"
}

// Pos returns the position of the current item, counted from start.
func (b *BasicIteratorSupport) Pos(start int) int {
	return b.pos + start
}

// FromEnd returns the position of the current item counted from the end of
// the list, the last item being end.
func (b *BasicIteratorSupport) FromEnd(end int) int {
	return b.total - b.pos + end - 1
}

// TotalItems returns the number of items in the list.
func (b *BasicIteratorSupport) TotalItems() int {
	return b.total
}

// Modulus returns the position, counted from start, modulo mod.
func (b *BasicIteratorSupport) Modulus(mod, start int) (int, error) {
	if mod == 0 {
		return 0, errors.New("Modulus: division by zero")
	}
	return (b.pos + start) % mod, nil
}

// MultipleOf reports whether the position, counted from offset, is a
// multiple of factor.
func (b *BasicIteratorSupport) MultipleOf(factor, offset int) (bool, error) {
	var m, err = b.Modulus(factor, offset)
	return err == nil && m == 0, err
}

func (b *BasicIteratorSupport) modulus(args []any) (any, error) {
	var mod, start, err = modArgs(args)
	if err != nil {
		return nil, err
	}
	return b.Modulus(mod, start)
}

func (b *BasicIteratorSupport) multipleOf(args []any) (any, error) {
	var factor, offset, err = modArgs(args)
	if err != nil {
		return nil, err
	}
	return b.MultipleOf(factor, offset)
}

func modArgs(args []any) (int, int, error) {
	if len(args) == 0 {
		return 0, 0, errors.New("missing argument")
	}
	var a, err = data.ArgInt(args, 0, 0)
	if err != nil {
		return 0, 0, err
	}
	b, err := data.ArgInt(args, 1, 1)
	return a, b, err
}
