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
	"hz.tools/rf"
	"hz.tools/sdr/fft"
)

// designBandpass is hz.tools/fm/internal/bandpass.go's Filter,
// generalized from a fixed center-frequency +/- deviation window to
// arbitrary low/high cut edges, either of which may be absent (meaning
// "no constraint on that edge", per spec.md §4.2). low and high are
// relative to baseband (0 Hz) because the NCO mixer ahead of this filter
// has already shifted the tuned signal down to DC.
func designBandpass(dst []complex64, sampleRate uint, low, high *float64) error {
	var lo, hi rf.Hz
	if low != nil {
		lo = rf.Hz(*low)
	} else {
		lo = -rf.Hz(sampleRate) / 2
	}
	if high != nil {
		hi = rf.Hz(*high)
	} else {
		hi = rf.Hz(sampleRate) / 2
	}

	bins, err := fft.BinsByRange(dst, sampleRate, fft.ZeroFirst, rf.Range{lo, hi})
	if err != nil {
		return err
	}
	for _, idx := range bins {
		dst[idx] = complex64(complex(1, 0))
	}
	return nil
}
