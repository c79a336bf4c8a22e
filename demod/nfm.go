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

// Package demod implements the concrete demodulator Workers named in
// spec.md §6 (analog voice, broadcast FM, AM/SSB, digital voice and data
// modes via external processes) plus the dummy placeholder and the
// token->constructor registry spec.md §9 calls for.
package demod

import (
	"math/cmplx"

	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
)

// NarrowFM is a quadrature-phase FM discriminator for narrowband analog
// voice (ham/PMR/marine NFM). It is hz.tools/fm.Demodulator's Read loop
// (phase(phasor * conj(lastPhasor))) lifted directly into the
// Worker/Loop shape the rest of this engine uses -- the math is
// unchanged from the teacher, only the I/O plumbing differs.
type NarrowFM struct {
	worker.Base
	*worker.Loop
	lastPhasor complex64
}

// NewNarrowFM builds a NarrowFM demodulator.
func NewNarrowFM() *NarrowFM {
	d := &NarrowFM{Base: worker.NewBase(format.ComplexFloat, format.Float)}
	d.Loop = worker.NewLoop(32*1024, d.process)
	return d
}

func (d *NarrowFM) SupportsSquelch() bool { return true }

func (d *NarrowFM) process(in []byte) ([]byte, error) {
	iq := format.BytesToComplexFloat(in)
	out := make([]float32, len(iq))
	last := d.lastPhasor
	for i, phasor := range iq {
		out[i] = float32(cmplx.Phase(complex128(phasor) * cmplx.Conj(complex128(last))))
		last = phasor
	}
	if len(iq) > 0 {
		d.lastPhasor = last
	}
	if len(out) > 1 {
		out[0] = out[1]
	}
	return format.FloatToBytes(out), nil
}

func (d *NarrowFM) SetReader(r format.Reader) { d.Base.SetReader(r); d.Loop.Start(r, d.Base.Writer()) }
func (d *NarrowFM) SetWriter(w format.Writer) { d.Base.SetWriter(w); d.Loop.SetWriter(w) }
func (d *NarrowFM) Stop()                     { d.Loop.Stop() }
