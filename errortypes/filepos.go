// Package errortypes holds error types shared by the template parser and the
// rendering engines.
package errortypes

import (
	"errors"
	"fmt"
)

// ErrFilePos extends the error interface to add details on the template file
// position where the error occurred.
type ErrFilePos interface {
	error
	File() string
	Line() int
	Col() int
}

// NewErrFilePosf creates an error conforming to the ErrFilePos interface.
func NewErrFilePosf(file string, line, col int, format string, args ...interface{}) error {
	return &errFilePos{
		error: fmt.Errorf(format, args...),
		file:  file,
		line:  line,
		col:   col,
	}
}

// IsErrFilePos reports whether err, or any error it wraps, is an ErrFilePos.
func IsErrFilePos(err error) bool {
	return ToErrFilePos(err) != nil
}

// ToErrFilePos returns the first ErrFilePos in err's chain, or nil if there is
// none. If IsErrFilePos returns true, this will not return nil.
func ToErrFilePos(err error) ErrFilePos {
	if err == nil {
		return nil
	}
	var out ErrFilePos
	if errors.As(err, &out) {
		return out
	}
	return nil
}

var _ ErrFilePos = &errFilePos{}

type errFilePos struct {
	error
	file string
	line int
	col  int
}

func (e *errFilePos) Error() string {
	if e.file == "" {
		return fmt.Sprintf("%d:%d: %v", e.line, e.col, e.error)
	}
	return fmt.Sprintf("%s:%d:%d: %v", e.file, e.line, e.col, e.error)
}

func (e *errFilePos) Unwrap() error {
	return e.error
}

func (e *errFilePos) File() string {
	return e.file
}

func (e *errFilePos) Line() int {
	return e.line
}

func (e *errFilePos) Col() int {
	return e.col
}
