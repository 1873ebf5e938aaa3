package errortypes_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/robfig/ssview/errortypes"
)

func TestIsErrFilePos(t *testing.T) {
	var tests = []struct {
		name string
		in   error
		out  bool
	}{
		{
			name: "nil",
			out:  false,
		},
		{
			name: "errors.New",
			in:   errors.New("an error"),
			out:  false,
		},
		{
			name: "new ErrFilePos",
			in:   errortypes.NewErrFilePosf("Page.ss", 1, 2, "message"),
			out:  true,
		},
		{
			name: "wrapped ErrFilePos",
			in:   fmt.Errorf("compiling: %w", errortypes.NewErrFilePosf("Page.ss", 1, 2, "message")),
			out:  true,
		},
	}
	for _, test := range tests {
		got := errortypes.IsErrFilePos(test.in)
		if got != test.out {
			t.Errorf("%s: Expected %v, got %v", test.name, test.out, got)
		}
	}
}

func TestToErrFilePos(t *testing.T) {
	var tests = []struct {
		name             string
		in               error
		expectNil        bool
		expectedFilename string
		expectedLine     int
		expectedCol      int
	}{
		{
			name:      "nil",
			expectNil: true,
		},
		{
			name:      "errors.New",
			in:        errors.New("an error"),
			expectNil: true,
		},
		{
			name:             "new ErrFilePos",
			in:               errortypes.NewErrFilePosf("Includes/Nav.ss", 3, 7, "unexpected %q", "%>"),
			expectedFilename: "Includes/Nav.ss",
			expectedLine:     3,
			expectedCol:      7,
		},
		{
			name:             "wrapped ErrFilePos",
			in:               fmt.Errorf("compiling: %w", errortypes.NewErrFilePosf("Page.ss", 10, 1, "message")),
			expectedFilename: "Page.ss",
			expectedLine:     10,
			expectedCol:      1,
		},
	}
	for _, test := range tests {
		got := errortypes.ToErrFilePos(test.in)
		if test.expectNil {
			if got != nil {
				t.Errorf("%s: expected nil, got %v", test.name, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("%s: got unexpected nil", test.name)
			continue
		}
		if got.File() != test.expectedFilename {
			t.Errorf("%s: expected file %q, got %q", test.name, test.expectedFilename, got.File())
		}
		if got.Line() != test.expectedLine {
			t.Errorf("%s: expected line %d, got %d", test.name, test.expectedLine, got.Line())
		}
		if got.Col() != test.expectedCol {
			t.Errorf("%s: expected col %d, got %d", test.name, test.expectedCol, got.Col())
		}
	}
}

func TestErrFilePosMessage(t *testing.T) {
	var err = errortypes.NewErrFilePosf("Page.ss", 2, 5, "unexpected %q in %s", "%>", "if")
	if got, want := err.Error(), `Page.ss:2:5: unexpected "%>" in if`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
