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

package selector

import (
	"hz.tools/dspd/format"
	"hz.tools/sdr"
)

// readerAdapter makes our own chunked format.Reader look like an
// hz.tools/sdr.Reader, so the NCO mixer, bandpass filter and decimator
// below can be expressed with the same hz.tools/sdr/stream building
// blocks hz.tools/fm.Demodulate uses.
type readerAdapter struct {
	src  format.Reader
	rate uint
}

func newReaderAdapter(src format.Reader, rate uint) *readerAdapter {
	return &readerAdapter{src: src, rate: rate}
}

func (r *readerAdapter) SampleRate() uint                 { return r.rate }
func (r *readerAdapter) SampleFormat() sdr.SampleFormat    { return sdr.SampleFormatC64 }
func (r *readerAdapter) Close() error                      { return r.src.Close() }

// Read decodes raw ComplexFloat bytes from the underlying Buffer Reader
// directly into the caller's sdr.Samples buffer.
func (r *readerAdapter) Read(s sdr.Samples) (int, error) {
	c64, ok := s.(sdr.SamplesC64)
	if !ok {
		return 0, sdr.ErrSampleFormatMismatch
	}
	raw := make([]byte, len(c64)*8)
	n, err := r.src.Read(raw)
	if n > 0 {
		decoded := format.BytesToComplexFloat(raw[:n-(n%8)])
		copy(c64, decoded)
		return len(decoded), err
	}
	return 0, err
}

// writerAdapter goes the other way: it lets a loop that computes in
// sdr.SamplesC64 terms write back out through a plain format.Writer.
type writerAdapter struct {
	dst format.Writer
}

func (w *writerAdapter) SampleRate() uint              { return 0 }
func (w *writerAdapter) SampleFormat() sdr.SampleFormat { return sdr.SampleFormatC64 }
func (w *writerAdapter) Close() error                   { return w.dst.Close() }

func (w *writerAdapter) Write(s sdr.Samples) (int, error) {
	c64, ok := s.(sdr.SamplesC64)
	if !ok {
		return 0, sdr.ErrSampleFormatMismatch
	}
	n, err := w.dst.Write(format.ComplexFloatToBytes(c64))
	if err != nil {
		return 0, err
	}
	_ = n
	return len(c64), nil
}
