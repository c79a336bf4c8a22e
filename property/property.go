// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2020
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

// Package property implements the layered property stack DspManager
// observes (spec.md §4.5, §6), grounded on
// original_source/owrx/dsp.go's imports of owrx.property's PropertyStack/
// PropertyLayer/PropertyValidator family. Persistence of the layers is an
// out-of-scope external collaborator (spec.md §1); this package only
// models the in-memory layering and validation DspManager consumes.
package property

import "sync"

// Deleted is the sentinel value a layer stores for a key that has been
// explicitly removed from that layer (as opposed to never set). A lower
// layer's value does not show through: the key reads as unset. spec.md §6: "Deleted values
// (sentinel) reset low_cut/high_cut to 'no constraint'."
var Deleted = &struct{ deleted bool }{true}

// Layer is one named mapping in the stack (e.g. "local", "sdr", "defaults").
type Layer struct {
	mu     sync.RWMutex
	name   string
	values map[string]interface{}
}

// NewLayer builds an empty, named Layer.
func NewLayer(name string) *Layer {
	return &Layer{name: name, values: make(map[string]interface{})}
}

// Set stores a value, or property.Deleted to mask a lower layer's value.
func (l *Layer) Set(key string, value interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[key] = value
}

// get returns the raw value, its deletion state, and whether the key is
// present in this layer at all.
func (l *Layer) get(key string) (value interface{}, deleted bool, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.values[key]
	if !ok {
		return nil, false, false
	}
	if v == Deleted {
		return nil, true, true
	}
	return v, false, true
}

// Stack is three layered mappings -- local, SDR-inherited, defaults --
// consulted in that order. The first layer with the key present wins,
// even if its value is Deleted (which then reads as "unset" rather than
// falling through).
type Stack struct {
	mu         sync.RWMutex
	layers     []*Layer
	watchers   map[string][]func(key string, deleted bool, value interface{})
	validators map[string]Validator
}

// NewStack builds a Stack from layers in priority order (first wins).
func NewStack(layers ...*Layer) *Stack {
	return &Stack{
		layers:     layers,
		watchers:   make(map[string][]func(string, bool, interface{})),
		validators: make(map[string]Validator),
	}
}

// SetValidator installs the Validator a key's value must pass before Set
// writes it, matching spec.md §6's "validators in braces" per-key
// contract. A Set call whose value fails validation is dropped silently,
// the same as original_source/owrx/dsp.go's PropertyValidator rejecting
// a malformed client-supplied value.
func (s *Stack) SetValidator(key string, v Validator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validators[key] = v
}

// Watch registers fn to be called whenever Set or Delete on this Stack
// changes key (set, overwritten, or deleted); writes made directly through
// a Layer do not notify watchers. This is how DspManager binds property
// keys to orchestrator mutators (spec.md §4.5).
func (s *Stack) Watch(key string, fn func(key string, deleted bool, value interface{})) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers[key] = append(s.watchers[key], fn)
}

// Set writes to the first (highest-priority) layer and notifies
// watchers of the resulting effective value. If key has a registered
// Validator and value fails it, Set is a no-op.
func (s *Stack) Set(key string, value interface{}) {
	if len(s.layers) == 0 {
		return
	}
	s.mu.RLock()
	v := s.validators[key]
	s.mu.RUnlock()
	if v != nil && !v(value) {
		return
	}
	s.layers[0].Set(key, value)
	s.notify(key)
}

// Delete writes the Deleted sentinel to the first layer.
func (s *Stack) Delete(key string) {
	if len(s.layers) == 0 {
		return
	}
	s.layers[0].Set(key, Deleted)
	s.notify(key)
}

func (s *Stack) notify(key string) {
	value, deleted, ok := s.resolve(key)
	if !ok {
		return
	}
	s.mu.RLock()
	fns := append([]func(string, bool, interface{}){}, s.watchers[key]...)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(key, deleted, value)
	}
}

// resolve walks the layers top to bottom, returning the first one where
// key is present.
func (s *Stack) resolve(key string) (value interface{}, deleted bool, ok bool) {
	for _, l := range s.layers {
		if v, del, present := l.get(key); present {
			return v, del, true
		}
	}
	return nil, false, false
}

// Get returns the effective value for key across every layer.
func (s *Stack) Get(key string) (value interface{}, ok bool) {
	v, deleted, present := s.resolve(key)
	if !present || deleted {
		return nil, false
	}
	return v, true
}
