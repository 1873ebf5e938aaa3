package view

import "errors"

var (
	// ErrUpPastRoot is returned when $Up is used at the outermost scope.
	ErrUpPastRoot = errors.New("Up called when already at the top of the scope")

	// ErrNoValueSource is returned for a property that has neither a value
	// nor a callable.
	ErrNoValueSource = errors.New("property has no value or callable source")

	// ErrNotIterable is returned when looping over an item that is not a list.
	ErrNotIterable = errors.New("item is not iterable")
)
