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

package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"hz.tools/dspd/dsperrors"
	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
)

// fakeWorker is a no-op Worker that just records wiring calls, for
// testing Chain's connection/replacement bookkeeping without any real
// sample processing.
type fakeWorker struct {
	in, out   format.Format
	reader    format.Reader
	writer    format.Writer
	stopCount int
}

func newFakeWorker(in, out format.Format) *fakeWorker { return &fakeWorker{in: in, out: out} }

func (f *fakeWorker) SetReader(r format.Reader)    { f.reader = r }
func (f *fakeWorker) SetWriter(w format.Writer)    { f.writer = w }
func (f *fakeWorker) InputFormat() format.Format   { return f.in }
func (f *fakeWorker) OutputFormat() format.Format  { return f.out }
func (f *fakeWorker) Stop()                        { f.stopCount++ }

func TestNewRejectsFormatMismatch(t *testing.T) {
	a := newFakeWorker(format.ComplexFloat, format.Float)
	b := newFakeWorker(format.Short, format.Char) // expects Float upstream, declares Short
	_, err := New([]worker.Worker{a, b})
	require.Error(t, err)
	assert.ErrorIs(t, err, dsperrors.ErrFormatMismatch)
}

func TestReplacePreservesChainOnFormatMismatch(t *testing.T) {
	a := newFakeWorker(format.ComplexFloat, format.Float)
	b := newFakeWorker(format.Float, format.Char)
	c, err := New([]worker.Worker{a, b})
	require.NoError(t, err)

	bad := newFakeWorker(format.Short, format.Char)
	err = c.Replace(1, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, dsperrors.ErrFormatMismatch)

	// The chain must be untouched: the old stage is still installed and
	// was never stopped.
	assert.Same(t, worker.Worker(b), c.At(1))
	assert.Equal(t, 0, b.stopCount)
}

func TestReplaceStopsOldStageExactlyOnce(t *testing.T) {
	a := newFakeWorker(format.ComplexFloat, format.Float)
	b := newFakeWorker(format.Float, format.Float)
	tail := newFakeWorker(format.Float, format.Char)
	c, err := New([]worker.Worker{a, b, tail})
	require.NoError(t, err)

	next := newFakeWorker(format.Float, format.Float)
	require.NoError(t, c.Replace(1, next))

	assert.Equal(t, 1, b.stopCount)
	assert.Same(t, worker.Worker(next), c.At(1))

	// Neighbors were rewired to the new stage.
	assert.NotNil(t, next.reader)
	assert.NotNil(t, next.writer)
}

func TestChainInputOutputFormatMatchEndpoints(t *testing.T) {
	a := newFakeWorker(format.ComplexFloat, format.Float)
	b := newFakeWorker(format.Float, format.Char)
	c, err := New([]worker.Worker{a, b})
	require.NoError(t, err)

	assert.Equal(t, format.ComplexFloat, c.InputFormat())
	assert.Equal(t, format.Char, c.OutputFormat())
}

// TestReplaceAtAnyValidIndexNeverPanics exercises Replace across random
// chain lengths and indices, checking that a format-compatible
// replacement always succeeds, installs the new stage, and stops the old
// one exactly once.
func TestReplaceAtAnyValidIndexNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(t, "n")
		workers := make([]worker.Worker, n)
		fws := make([]*fakeWorker, n)
		for i := range workers {
			w := newFakeWorker(format.Float, format.Float)
			workers[i] = w
			fws[i] = w
		}
		c, err := New(workers)
		require.NoError(t, err)

		idx := rapid.IntRange(0, n-1).Draw(t, "idx")
		replacement := newFakeWorker(format.Float, format.Float)
		err = c.Replace(idx, replacement)
		require.NoError(t, err)
		assert.Same(t, worker.Worker(replacement), c.At(idx))
		assert.Equal(t, 1, fws[idx].stopCount)
	})
}
