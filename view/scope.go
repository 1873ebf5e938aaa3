package view

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/robfig/ssview/data"
	"github.com/robfig/ssview/field"
)

// unset marks a frame index that has not been assigned.
const unset = -1

// frame is one entry of the item stack.
type frame struct {
	item    *Data
	iter    data.Iterator
	total   int
	pop     int // local index to restore when this frame's block ends
	up      int // index of the lexically enclosing frame
	current int // index at which this logical frame first appeared
	overlay Bindings
}

// Scope is the stack of nested scopes a template renders against. It is
// created per render and is not safe for concurrent use.
//
// The item stack only grows during a lookup chain. Locally detaches the
// frames after the local frame, and ResetLocal (called by every terminal
// operation) restores them, so frame indices are never renumbered.
type Scope struct {
	reg      *Registry
	stack    []frame
	saved    [][]frame // suffixes detached by Locally
	local    int       // index of the local frame
	underlay Bindings

	// the loaded frame
	item    *Data
	iter    data.Iterator
	total   int
	pop     int
	up      int
	current int

	overlay         Bindings
	preserveOverlay bool
}

// NewScope returns a scope rooted at item. The overlay takes precedence over
// the item's members and the underlay is consulted after them. When inherited
// is given the root frame continues its iteration, so that iterator
// properties such as $Pos work within an included template. A nil registry
// means DefaultRegistry.
func NewScope(reg *Registry, item any, overlay, underlay Bindings, inherited *Scope) *Scope {
	if reg == nil {
		reg = DefaultRegistry
	}
	var s = &Scope{
		reg:      reg,
		underlay: underlay,
		overlay:  overlay,
		item:     Wrap(item),
		pop:      unset,
		up:       unset,
	}
	if inherited != nil {
		s.iter = inherited.iter
		s.total = inherited.total
	}
	s.stack = []frame{{
		item:  s.item,
		iter:  s.iter,
		total: s.total,
		pop:   unset,
		up:    unset,
	}}
	return s
}

func (s *Scope) load(f frame) {
	s.item, s.iter, s.total = f.item, f.iter, f.total
	s.pop, s.up, s.current = f.pop, f.up, f.current
}

// Item returns the current item: the current element when iterating, the
// frame's item otherwise.
func (s *Scope) Item() *Data {
	if s.iter != nil {
		return Wrap(s.iter.Current())
	}
	return s.item
}

// IteratorTotal returns the length of the list being iterated.
func (s *Scope) IteratorTotal() int {
	return s.total
}

// IteratorPos returns the zero-based position of the current element, or 0
// when not iterating.
func (s *Scope) IteratorPos() int {
	if s.iter == nil || !s.iter.Valid() {
		return 0
	}
	return s.iter.Key()
}

// Overlay returns the active overlay.
func (s *Scope) Overlay() Bindings {
	return s.overlay
}

// Depth returns the length of the item stack.
func (s *Scope) Depth() int {
	return len(s.stack)
}

// Registry returns the property registry used by the scope.
func (s *Scope) Registry() *Registry {
	return s.reg
}

// Locally starts a lookup chain at the local frame. Frames after it are set
// aside until the chain is completed by ResetLocal.
func (s *Scope) Locally() *Scope {
	s.load(s.stack[s.local])
	s.saved = append(s.saved, slices.Clone(s.stack[s.local+1:]))
	s.stack = s.stack[:s.local+1]
	return s
}

// ResetLocal completes a lookup chain: the frames set aside by the most
// recent Locally replace everything after the local frame, and the last
// frame is loaded.
func (s *Scope) ResetLocal() {
	var prev []frame
	if n := len(s.saved); n > 0 {
		prev, s.saved = s.saved[n-1], s.saved[:n-1]
	}
	s.stack = append(s.stack[:s.local+1], prev...)
	s.load(s.stack[len(s.stack)-1])
}

// Obj navigates one step of a lookup chain. "Up" moves to the enclosing
// block's frame and "Top" to the root frame; any other name is resolved
// against the current frame and its value becomes the next frame.
func (s *Scope) Obj(name string, args ...any) (*Scope, error) {
	var overlayIndex = unset
	switch name {
	case "Up":
		if s.up == unset {
			return s, ErrUpPastRoot
		}
		overlayIndex = s.up
		s.preserveOverlay = true
	case "Top":
		overlayIndex = 0
		s.preserveOverlay = true
	default:
		s.preserveOverlay = false
	}

	if overlayIndex != unset && len(s.overlay) == 0 && s.stack[overlayIndex].overlay != nil {
		s.overlay = s.stack[overlayIndex].overlay
	}

	switch name {
	case "Up", "Top":
		var pop = s.pop
		s.load(s.stack[overlayIndex])
		s.pop = pop
	default:
		var v, _, err = s.Resolve(name, args)
		if err != nil {
			return s, err
		}
		s.item = Wrap(v)
		s.iter = nil
		if s.current > 0 {
			s.up = s.current
		} else {
			s.up = len(s.stack) - 1
		}
		s.current = len(s.stack)
	}

	s.stack = append(s.stack, frame{
		item:    s.item,
		iter:    s.iter,
		total:   s.total,
		pop:     unset,
		up:      s.up,
		current: s.current,
	})
	return s, nil
}

// Push makes the frame produced by the preceding lookup chain the local
// frame, for the duration of a <% loop %> or <% with %> block.
func (s *Scope) Push() *Scope {
	var newLocal = len(s.stack) - 1
	s.pop = s.local
	s.stack[newLocal].pop = s.pop
	s.local = newLocal

	// $Up within the block refers to the block's parent
	s.up = s.pop
	s.stack[newLocal].up = s.up

	// each block iterates its own item
	s.iter = nil
	s.stack[newLocal].iter = nil

	s.stack[max(s.up, 0)].overlay = s.overlay
	if !s.preserveOverlay {
		s.overlay = nil
	}
	return s
}

// Pop ends the block begun by the matching Push.
func (s *Scope) Pop() *Scope {
	if s.up != unset {
		s.overlay = s.stack[s.up].overlay
	}
	s.local = max(s.pop, 0)
	s.ResetLocal()
	return s
}

// Next advances the iteration of the local frame's item, returning the key
// of the new current element. ok is false once the list is exhausted, or if
// there is no item.
func (s *Scope) Next() (key int, ok bool, err error) {
	if s.item == nil {
		return 0, false, nil
	}
	if s.iter == nil {
		// the iterator is obtained before the count is requested
		var it, err = s.item.Iterator()
		if err != nil {
			return 0, false, err
		}
		it.Rewind()
		if n, ok := s.item.Count(); ok {
			s.total = n
		} else {
			s.total = 0
			for ; it.Valid(); it.Next() {
				s.total++
			}
			it.Rewind()
		}
		s.iter = it
		s.stack[s.local].iter = s.iter
		s.stack[s.local].total = s.total
	} else {
		s.iter.Next()
	}

	s.ResetLocal()
	if s.iter == nil || !s.iter.Valid() {
		return 0, false, nil
	}
	return s.iter.Key(), true, nil
}

// Self completes a lookup chain, returning its current item.
func (s *Scope) Self() *Data {
	var item = s.Item()
	s.ResetLocal()
	return item
}

// XMLVal completes a lookup chain, returning the markup for the named value.
// Injected nil and non-string scalar values are printed as they are.
func (s *Scope) XMLVal(name string, args ...any) (string, error) {
	defer s.ResetLocal()
	var v, injected, err = s.injected(name, args)
	if err != nil {
		return "", err
	}
	if injected {
		if d, ok := v.(*Data); ok {
			return d.String(), nil
		}
		return formatScalar(v), nil
	}
	d, err := s.member(name, args)
	return d.String(), err
}

// HasValue completes a lookup chain, reporting whether the named value
// exists, as tested by <% if %>.
func (s *Scope) HasValue(name string, args ...any) (bool, error) {
	defer s.ResetLocal()
	var v, injected, err = s.injected(name, args)
	if err != nil {
		return false, err
	}
	if injected {
		if d, ok := v.(*Data); ok {
			return d.Exists(), nil
		}
		return data.Truthy(v), nil
	}
	d, err := s.member(name, args)
	return d.Exists(), err
}

// OutputValue completes a lookup chain, returning the named value converted
// to a string.
func (s *Scope) OutputValue(name string, args ...any) (string, error) {
	defer s.ResetLocal()
	var v, _, err = s.Resolve(name, args)
	return Wrap(v).String(), err
}

// Resolve looks up name against the current frame. Injected values (the
// overlay, underlay and registry properties) are returned cast; members of
// the current item as *Data. found is false if nothing provides the name.
func (s *Scope) Resolve(name string, args []any) (value any, found bool, err error) {
	value, found, err = s.injected(name, args)
	if err != nil || found {
		return value, found, err
	}
	var item = s.Item()
	if item == nil || !item.Has(name) {
		return nil, false, nil
	}
	d, err := s.member(name, args)
	if d == nil {
		return nil, true, err
	}
	return d, true, err
}

func (s *Scope) member(name string, args []any) (*Data, error) {
	var item = s.Item()
	if item == nil {
		return nil, nil
	}
	return item.Call(name, args...)
}

// injected returns the value of name from the overlay, underlay or property
// registry. It returns found == false as soon as the current item itself
// has a member of that name, even when the underlay or registry provides it.
func (s *Scope) injected(name string, args []any) (value any, found bool, err error) {
	if v, ok, err := s.overlay.lookup(name); err != nil || ok {
		return s.cast(v, "", err)
	}

	if item := s.Item(); item != nil && item.Has(name) {
		return nil, false, nil
	}

	if v, ok, err := s.underlay.lookup(name); err != nil || ok {
		return s.cast(v, "", err)
	}

	if prop, ok := s.reg.Iterator(name); ok {
		var pos, total = 0, 1
		if s.iter != nil {
			pos, total = s.iter.Key(), s.total
		}
		var v, err = s.reg.iteratorValue(prop, pos, total, args)
		return s.cast(v, prop.Casting, err)
	}

	if prop, ok := s.reg.Global(name); ok {
		var v, err = prop.value(args)
		return s.cast(v, prop.Casting, err)
	}
	return nil, false, nil
}

// cast wraps a found injected value for display. Nil and non-string scalars
// are returned unchanged; strings become fields of the given (or default)
// cast.
func (s *Scope) cast(v any, casting string, err error) (any, bool, error) {
	if err != nil {
		return nil, false, err
	}
	switch v.(type) {
	case nil, *Data:
		return v, true, nil
	case data.Viewable:
		return Wrap(v), true, nil
	}
	switch v := data.New(v).(type) {
	case nil:
		return nil, true, nil
	case bool, int64, float64:
		return v, true, nil
	case string:
		if casting == "" {
			casting = s.reg.DefaultCast()
		}
		var f, err = field.Create(casting, v)
		if err != nil {
			return nil, false, err
		}
		return Wrap(f), true, nil
	default:
		return Wrap(v), true, nil
	}
}

func formatScalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "1"
		}
		return ""
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
