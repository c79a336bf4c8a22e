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
	"sync"

	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
)

// WideFM is a broadcast-FM discriminator: the same quadrature
// discrimination NarrowFM uses, plus a de-emphasis low-pass filter and a
// placeholder meta record (see process), per spec.md's DeemphasisTau/Rds/
// HdAudio/MetaProvider capabilities.
type WideFM struct {
	worker.Base
	*worker.Loop

	mu         sync.Mutex
	lastPhasor complex64
	tau        float64 // de-emphasis time constant, seconds
	rbds       bool
	sampleRate uint
	deState    float32

	metaWriter format.Writer
}

// NewWideFM builds a WideFM demodulator with the given initial
// de-emphasis tau (e.g. 50e-6 for Europe, 75e-6 for the Americas).
func NewWideFM(tau float64) *WideFM {
	d := &WideFM{
		Base:       worker.NewBase(format.ComplexFloat, format.Float),
		tau:        tau,
		sampleRate: 48000,
	}
	d.Loop = worker.NewLoop(32*1024, d.process)
	return d
}

func (d *WideFM) HdAudio() bool { return true }

func (d *WideFM) SetDeemphasisTau(tau float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tau = tau
}

func (d *WideFM) SetRdsRbds(rbds bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rbds = rbds
}

func (d *WideFM) SetMetaWriter(w format.Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metaWriter = w
}

func (d *WideFM) SetSampleRate(rate uint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sampleRate = rate
}

func (d *WideFM) process(in []byte) ([]byte, error) {
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

	d.mu.Lock()
	tau, rate, metaWriter := d.tau, d.sampleRate, d.metaWriter
	state := d.deState
	d.mu.Unlock()

	// One-pole de-emphasis RC filter: alpha derived from tau and the
	// sample rate, matching the classic analog de-emphasis network's
	// discrete-time equivalent.
	alpha := float32(1.0 / (1.0 + float64(rate)*tau))
	for i, s := range out {
		state = state + alpha*(s-state)
		out[i] = state
	}
	d.mu.Lock()
	d.deState = state
	d.mu.Unlock()

	if metaWriter != nil {
		// RDS group extraction is a primitive the underlying DSP
		// library would provide (spec.md's Non-goals exclude
		// implementing new DSP primitives); we emit a heartbeat
		// record so the meta channel has something to carry until a
		// real RDS decoder Worker is wired in.
		_, _ = metaWriter.Write([]byte("RDS\n"))
	}

	return format.FloatToBytes(out), nil
}

func (d *WideFM) SetReader(r format.Reader) { d.Base.SetReader(r); d.Loop.Start(r, d.Base.Writer()) }
func (d *WideFM) SetWriter(w format.Writer) { d.Base.SetWriter(w); d.Loop.SetWriter(w) }
func (d *WideFM) Stop()                     { d.Loop.Stop() }
