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

import "hz.tools/dspd/format"

// Base implements the bookkeeping every Worker needs (current reader,
// current writer, declared formats) so concrete stages only have to
// embed it and implement their own Stop and the processing loop.
//
// This mirrors hz.tools/fm.Demodulator's shape: a struct that remembers
// its reader and exposes SampleRate()/Reader() accessors, generalized
// here to the read/write/format trio every stage in this engine needs.
type Base struct {
	inputFormat  format.Format
	outputFormat format.Format
	reader       format.Reader
	writer       format.Writer
}

// NewBase constructs a Base declaring the given input and output
// formats.
func NewBase(in, out format.Format) Base {
	return Base{inputFormat: in, outputFormat: out}
}

func (b *Base) SetReader(r format.Reader) { b.reader = r }
func (b *Base) SetWriter(w format.Writer) { b.writer = w }
func (b *Base) Reader() format.Reader     { return b.reader }
func (b *Base) Writer() format.Writer     { return b.writer }

func (b *Base) InputFormat() format.Format  { return b.inputFormat }
func (b *Base) OutputFormat() format.Format { return b.outputFormat }

// SetOutputFormat lets a stage whose output format can change at runtime
// (e.g. an audio-compression stage) update its declared format. Callers
// must re-wire the downstream Writer afterward.
func (b *Base) SetOutputFormat(f format.Format) { b.outputFormat = f }
