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

// Package feature implements the external-tool availability probe
// described in spec.md §9: "feature detection uses a process-wide cache
// with a 2-hour TTL. Model as an explicit service passed to components
// that need it; the detector is otherwise stateless." Grounded on
// original_source/owrx/feature.py's FeatureDetector, which memoizes
// "is tool X on PATH and runnable" checks.
package feature

import (
	"os/exec"
	"sync"
	"time"
)

// TTL is how long a probe result is trusted before re-checking.
const TTL = 2 * time.Hour

// Prober checks whether one named external tool is available.
// NewDetector uses exec.LookPath; tests substitute a fake through
// NewDetectorWithProber.
type Prober func(name string) bool

func lookPathProber(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Detector is an injectable, otherwise-stateless service: construct one
// per process and pass it to whatever builds external-process
// demodulators, rather than reaching for a package-level global.
type Detector struct {
	probe Prober

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	available bool
	expires   time.Time
}

// NewDetector builds a Detector using exec.LookPath to probe tools.
func NewDetector() *Detector {
	return &Detector{probe: lookPathProber, cache: make(map[string]cacheEntry)}
}

// NewDetectorWithProber builds a Detector using a custom Prober, for
// tests or environments that can't shell out.
func NewDetectorWithProber(p Prober) *Detector {
	return &Detector{probe: p, cache: make(map[string]cacheEntry)}
}

// Available reports whether the named external tool is usable, caching
// the result for TTL.
func (d *Detector) Available(name string) bool {
	d.mu.Lock()
	if entry, ok := d.cache[name]; ok && time.Now().Before(entry.expires) {
		d.mu.Unlock()
		return entry.available
	}
	d.mu.Unlock()

	available := d.probe(name)

	d.mu.Lock()
	d.cache[name] = cacheEntry{available: available, expires: time.Now().Add(TTL)}
	d.mu.Unlock()
	return available
}

// AllAvailable reports whether every named tool is usable.
func (d *Detector) AllAvailable(names ...string) bool {
	for _, n := range names {
		if !d.Available(n) {
			return false
		}
	}
	return true
}

// Invalidate drops any cached result for name, forcing the next
// Available call to re-probe.
func (d *Detector) Invalidate(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.cache, name)
}
