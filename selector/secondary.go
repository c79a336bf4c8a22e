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

// SecondarySelector carves a narrower sub-bandpass out of the band the
// primary demodulator already selected, for a secondary digital-mode
// demodulator that wants to look at a slice of the primary's IF rather
// than the whole thing (spec.md §4.4 step 5).
//
// It reuses Selector's NCO-mix/bandpass/decimate pipeline verbatim: the
// only difference from a primary Selector is how the orchestrator wires
// it (fed from selectorBuffer, output rate equal to input rate).
type SecondarySelector struct {
	*Selector
	bandwidth float64
}

// NewSecondary builds a SecondarySelector at the given input rate with
// the requested bandwidth (Hz), centered on 0 Hz until SetFrequencyOffset
// moves it to the secondary frequency offset.
func NewSecondary(inputRate uint, bandwidth float64) *SecondarySelector {
	half := bandwidth / 2
	sel := New(inputRate, inputRate)
	sel.SetBandpass(floatPtr(-half), floatPtr(half))
	return &SecondarySelector{Selector: sel, bandwidth: bandwidth}
}

// Bandwidth returns the configured sub-bandpass width in Hz.
func (s *SecondarySelector) Bandwidth() float64 { return s.bandwidth }

func floatPtr(f float64) *float64 { return &f }
