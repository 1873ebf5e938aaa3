package data

import (
	"math"
	"reflect"
	"testing"
	"time"
)

var jan1, _ = time.Parse(time.RFC3339, "2014-01-01T00:00:00Z")

func pInt(i int) *int { return &i }

func TestNew(t *testing.T) {
	tests := []struct{ input, expected interface{} }{
		// basic types
		{nil, nil},
		{true, true},
		{int(0), int64(0)},
		{int64(7), int64(7)},
		{uint32(3), int64(3)},
		{uint64(math.MaxInt64), int64(math.MaxInt64)},
		{uint64(math.MaxUint64), "18446744073709551615"},
		{float32(0.5), float64(0.5)},
		{"", ""},
		{[]string{"a"}, List{"a"}},
		{[2]int{1, 2}, List{1, 2}},
		{[]interface{}{"a", nil}, List{"a", nil}},
		{map[string]string{}, Map{}},
		{map[string]string{"a": "b"}, Map{"a": "b"}},
		{map[string]interface{}{"a": []int{1}}, Map{"a": []int{1}}},

		// already adapted
		{Map{"foo": nil}, Map{"foo": nil}},
		{List{1}, List{1}},

		// pointers
		{pInt(5), int64(5)},
		{(*int)(nil), nil},
		{&jan1, jan1.Format(time.RFC3339)},
		{jan1, jan1.Format(time.RFC3339)},

		// nil slices are nil, non-string maps are opaque
		{[]int(nil), nil},
		{map[int]string{1: "a"}, Opaque{map[int]string{1: "a"}}},
	}

	for _, test := range tests {
		output := New(test.input)
		if !reflect.DeepEqual(test.expected, output) {
			t.Errorf("%v => %#v, expected %#v", test.input, output, test.expected)
		}
	}
}

func TestNewStruct(t *testing.T) {
	type page struct {
		Title string
	}
	var p = &page{"Home"}
	obj, ok := New(p).(*Object)
	if !ok {
		t.Fatalf("expected *Object, got %T", New(p))
	}
	if obj.Interface() != p {
		t.Errorf("expected the original pointer to be kept")
	}

	obj, ok = New(page{"About"}).(*Object)
	if !ok {
		t.Fatalf("expected *Object for a struct value")
	}
	if v, _ := obj.Obj("Title", nil); v != "About" {
		t.Errorf("Title => %v", v)
	}
}

func TestNewTimeFormat(t *testing.T) {
	var opts = StructOptions{TimeFormat: "2006-01-02"}
	if got := NewWith(opts, jan1); got != "2014-01-01" {
		t.Errorf("got %v", got)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		input    interface{}
		expected bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, false},
		{int64(2), true},
		{0.0, false},
		{1.5, true},
		{"", false},
		{"0", true},
		{List{}, false},
		{List{nil}, true},
		{Map{}, true},
		{struct{}{}, true},
	}
	for _, test := range tests {
		if got := Truthy(test.input); got != test.expected {
			t.Errorf("Truthy(%#v) = %v, expected %v", test.input, got, test.expected)
		}
	}
}
