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

// Package format defines the closed sample-format enumeration shared by
// every Buffer, Reader, Writer and Worker port in the engine, and the
// single-producer multi-consumer Buffer implementation that moves samples
// between them.
//
// The format contract mirrors hz.tools/sdr's SampleFormat/Samples split
// (see hz.tools/fm's use of sdr.SampleFormatC64 and sdr.SamplesC64): a
// Format names a wire shape, and a concrete slice type carries it.
package format

import "fmt"

// Format is one of the four sample formats a port can carry. Connecting
// two ports whose Format differs is always a hard error.
type Format int

const (
	// ComplexFloat is interleaved IQ, 32-bit float per component.
	ComplexFloat Format = iota
	// Float is mono audio, 32-bit float.
	Float
	// Short is mono audio, 16-bit signed PCM.
	Short
	// Char is opaque bytes: compressed audio or text.
	Char
)

func (f Format) String() string {
	switch f {
	case ComplexFloat:
		return "complex_float"
	case Float:
		return "float"
	case Short:
		return "short"
	case Char:
		return "char"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// SampleSize returns the size in bytes of one sample of the format.
func (f Format) SampleSize() int {
	switch f {
	case ComplexFloat:
		return 8
	case Float:
		return 4
	case Short:
		return 2
	case Char:
		return 1
	default:
		return 0
	}
}
