package interpreter

import (
	"errors"
)

// ErrPopRoot is returned when popping the global frame.
var ErrPopRoot = errors.New("cannot pop the global frame")

// Frame is one level of the scope stack. Bindings keep their first
// definition order so collects enumerate functions deterministically.
type Frame struct {
	name      string
	variables map[string]Value
	order     []string
}

// NewFrame creates an empty frame. The name is used in logs only.
func NewFrame(name string) *Frame {
	return &Frame{
		name:      name,
		variables: make(map[string]Value),
	}
}

// Name returns the frame's name, "global" for the root frame.
func (f *Frame) Name() string {
	return f.name
}

// Get retrieves a binding from this frame only.
func (f *Frame) Get(name string) (Value, bool) {
	value, ok := f.variables[name]
	return value, ok
}

// Set binds name in this frame, overwriting an existing binding in place.
func (f *Frame) Set(name string, value Value) {
	if _, ok := f.variables[name]; !ok {
		f.order = append(f.order, name)
	}
	f.variables[name] = value
}

// Has reports whether name is bound in this frame.
func (f *Frame) Has(name string) bool {
	_, ok := f.variables[name]
	return ok
}

// Keys returns the bound names in definition order.
func (f *Frame) Keys() []string {
	keys := make([]string, len(f.order))
	copy(keys, f.order)
	return keys
}

// Size returns the number of bindings.
func (f *Frame) Size() int {
	return len(f.variables)
}

// Stack is the scope stack: the global frame at the bottom, one frame per
// active call above it. Lookups search innermost first.
//
// A Stack is owned by one evaluation and is not safe for concurrent use.
type Stack struct {
	frames []*Frame
}

// NewStack creates a stack holding only the global frame.
func NewStack() *Stack {
	return &Stack{frames: []*Frame{NewFrame("global")}}
}

// Push adds a new innermost frame.
func (s *Stack) Push(name string) *Frame {
	f := NewFrame(name)
	s.frames = append(s.frames, f)
	return f
}

// Pop removes the innermost frame. The global frame cannot be popped.
func (s *Stack) Pop() (*Frame, error) {
	if len(s.frames) <= 1 {
		return nil, ErrPopRoot
	}
	f := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return f, nil
}

// Lookup resolves name from the innermost frame outwards.
func (s *Stack) Lookup(name string) (Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if value, ok := s.frames[i].Get(name); ok {
			return value, true
		}
	}
	return nil, false
}

// Define binds name in the innermost frame.
func (s *Stack) Define(name string, value Value) {
	s.Current().Set(name, value)
}

// Current returns the innermost frame.
func (s *Stack) Current() *Frame {
	return s.frames[len(s.frames)-1]
}

// Global returns the root frame.
func (s *Stack) Global() *Frame {
	return s.frames[0]
}

// Depth returns the number of frames, 1 when no call is active.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Frames returns the frames outermost first.
func (s *Stack) Frames() []*Frame {
	frames := make([]*Frame, len(s.frames))
	copy(frames, s.frames)
	return frames
}
