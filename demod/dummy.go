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
	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
)

// Dummy is the placeholder primary demodulator installed by
// stop_demodulator (spec.md §4.4): it declares the same output format
// the stage it replaced had, so ClientAudioChain never churns, and
// simply discards whatever it reads.
type Dummy struct {
	worker.Base
	reader format.Reader
	stop   chan struct{}
}

// NewDummy builds a Dummy whose output format matches outputFormat.
func NewDummy(outputFormat format.Format) *Dummy {
	return &Dummy{
		Base: worker.NewBase(format.ComplexFloat, outputFormat),
		stop: make(chan struct{}),
	}
}

func (d *Dummy) SetReader(r format.Reader) {
	d.Base.SetReader(r)
	d.reader = r
	go d.drain(r)
}

func (d *Dummy) SetWriter(w format.Writer) { d.Base.SetWriter(w) }

func (d *Dummy) drain(r format.Reader) {
	buf := make([]byte, 4096)
	for {
		select {
		case <-d.stop:
			return
		default:
		}
		if _, err := r.Read(buf); err != nil {
			return
		}
	}
}

func (d *Dummy) Stop() {
	select {
	case <-d.stop:
	default:
		close(d.stop)
	}
	if d.reader != nil {
		_ = d.reader.Close()
	}
}
