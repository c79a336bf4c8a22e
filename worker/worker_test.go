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

package worker

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hz.tools/dspd/format"
)

func TestBaseTracksFormatsAndReaderWriter(t *testing.T) {
	b := NewBase(format.ComplexFloat, format.Float)
	assert.Equal(t, format.ComplexFloat, b.InputFormat())
	assert.Equal(t, format.Float, b.OutputFormat())

	b.SetOutputFormat(format.Short)
	assert.Equal(t, format.Short, b.OutputFormat())

	r := &onceReader{data: []byte("x")}
	w := &collectingWriter{}
	b.SetReader(r)
	b.SetWriter(w)
	assert.Equal(t, format.Reader(r), b.Reader())
	assert.Equal(t, format.Writer(w), b.Writer())
}

type onceReader struct {
	data []byte
	read bool
}

func (r *onceReader) Read(p []byte) (int, error) {
	if r.read {
		return 0, io.EOF
	}
	r.read = true
	n := copy(p, r.data)
	return n, nil
}
func (r *onceReader) Format() format.Format { return format.ComplexFloat }
func (r *onceReader) Close() error          { return nil }

type collectingWriter struct {
	got       []byte
	closeCall int
}

func (w *collectingWriter) Write(p []byte) (int, error) {
	w.got = append(w.got, p...)
	return len(p), nil
}
func (w *collectingWriter) Format() format.Format { return format.Float }
func (w *collectingWriter) Close() error          { w.closeCall++; return nil }

func identity(in []byte) ([]byte, error) { return in, nil }

func TestLoopCopiesThroughProcessorUntilEOF(t *testing.T) {
	r := &onceReader{data: []byte("hello")}
	w := &collectingWriter{}

	l := NewLoop(64, identity)
	l.Start(r, w)
	l.Stop() // synchronizes on the goroutine's completion

	assert.Equal(t, []byte("hello"), w.got)
	assert.Equal(t, 1, w.closeCall)
}

func TestLoopStopIsIdempotent(t *testing.T) {
	r := &onceReader{data: []byte("x")}
	w := &collectingWriter{}

	l := NewLoop(64, identity)
	l.Start(r, w)
	l.Stop()
	require.NotPanics(t, func() { l.Stop() })
}

func TestLoopProcessorCanDropChunks(t *testing.T) {
	r := &onceReader{data: []byte("gate-me")}
	w := &collectingWriter{}

	l := NewLoop(64, func(in []byte) ([]byte, error) { return nil, nil })
	l.Start(r, w)
	l.Stop()

	assert.Empty(t, w.got)
	assert.Equal(t, 1, w.closeCall)
}
