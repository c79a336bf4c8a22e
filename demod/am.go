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

package demod

import (
	"math/cmplx"

	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
)

// AM is an envelope detector for double-sideband AM.
type AM struct {
	worker.Base
	*worker.Loop
}

// NewAM builds an AM demodulator.
func NewAM() *AM {
	d := &AM{Base: worker.NewBase(format.ComplexFloat, format.Float)}
	d.Loop = worker.NewLoop(32*1024, d.process)
	return d
}

func (d *AM) SupportsSquelch() bool { return true }

func (d *AM) process(in []byte) ([]byte, error) {
	iq := format.BytesToComplexFloat(in)
	out := make([]float32, len(iq))
	for i, s := range iq {
		out[i] = float32(cmplx.Abs(complex128(s)))
	}
	return format.FloatToBytes(out), nil
}

func (d *AM) SetReader(r format.Reader) { d.Base.SetReader(r); d.Loop.Start(r, d.Base.Writer()) }
func (d *AM) SetWriter(w format.Writer) { d.Base.SetWriter(w); d.Loop.SetWriter(w) }
func (d *AM) Stop()                     { d.Loop.Stop() }

// SSB is a single-sideband demodulator. The selector ahead of it has
// already applied an asymmetric bandpass selecting USB or LSB, so
// demodulation is just a BFO mix to baseband followed by taking the real
// component -- the Selector's NCO (frequency_offset) carries the BFO
// duty, so this stage only needs to take the real part.
type SSB struct {
	worker.Base
	*worker.Loop
	agcProfile string
}

// NewSSB builds an SSB demodulator (shared by USB/LSB mode tokens; the
// sideband choice lives entirely in the Selector's bandpass edges).
func NewSSB() *SSB {
	d := &SSB{Base: worker.NewBase(format.ComplexFloat, format.Float), agcProfile: "slow"}
	d.Loop = worker.NewLoop(32*1024, d.process)
	return d
}

func (d *SSB) SupportsSquelch() bool { return true }

// SetAgcProfile accepts the ssb_agc_profile property token. The AGC
// curve itself is a primitive of the underlying DSP library; this
// records the selected preset for whatever gain stage composes with it.
func (d *SSB) SetAgcProfile(profile string) { d.agcProfile = profile }

func (d *SSB) process(in []byte) ([]byte, error) {
	iq := format.BytesToComplexFloat(in)
	out := make([]float32, len(iq))
	for i, s := range iq {
		out[i] = real(s)
	}
	return format.FloatToBytes(out), nil
}

func (d *SSB) SetReader(r format.Reader) { d.Base.SetReader(r); d.Loop.Start(r, d.Base.Writer()) }
func (d *SSB) SetWriter(w format.Writer) { d.Base.SetWriter(w); d.Loop.SetWriter(w) }
func (d *SSB) Stop()                     { d.Loop.Stop() }
