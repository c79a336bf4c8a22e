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
	"time"

	"hz.tools/dspd/format"
)

// FT8 wraps wsjtx's jt9 as a secondary demodulator layered on a USB/LSB
// carrier. It does not implement worker.SupportsSquelch: FT8's own
// cyclic synchronization is confused by gated silence, so the
// orchestrator must force the Selector's squelch off while it is active
// (spec.md §4.4 step 7, exercised by end-to-end scenario 3).
type FT8 struct {
	*ExternalProcess
}

// NewFT8 builds an FT8 secondary demodulator. The bandwidth argument is
// not used: the secondary sub-band is always 3000 Hz (see
// SecondaryBandwidth).
func NewFT8(bandwidth float64) *FT8 {
	return &FT8{ExternalProcess: NewExternalProcess(ExternalProcessConfig{
		Name:            "jt9",
		Args:            []string{"--ft8"},
		InputFormat:     format.Float,
		OutputFormat:    format.Char,
		ShutdownTimeout: 16 * time.Second, // FT8 decodes on a 15s cycle
	})}
}

func (d *FT8) SecondaryBandwidth() float64 { return 3000 }
func (d *FT8) SecondaryFftShown() bool     { return true }

// WSPR wraps wsjtx's wsprd, the same shape as FT8 but a 2-minute cycle.
type WSPR struct {
	*ExternalProcess
}

func NewWSPR() *WSPR {
	return &WSPR{ExternalProcess: NewExternalProcess(ExternalProcessConfig{
		Name:            "wsprd",
		InputFormat:     format.Float,
		OutputFormat:    format.Char,
		ShutdownTimeout: 2 * time.Minute,
	})}
}

func (d *WSPR) SecondaryBandwidth() float64 { return 200 }
func (d *WSPR) SecondaryFftShown() bool     { return true }

// APRS wraps direwolf to decode AX.25/APRS packet traffic from an FM
// carrier.
type APRS struct {
	*ExternalProcess
}

func NewAPRS() *APRS {
	return &APRS{ExternalProcess: NewExternalProcess(ExternalProcessConfig{
		Name:         "direwolf",
		Args:         []string{"-c", "-", "-t", "0"},
		InputFormat:  format.Float,
		OutputFormat: format.Char,
	})}
}

func (d *APRS) SupportsSquelch() bool { return true }

// ADSB wraps dump1090 for 1090MHz Mode S/ADS-B aircraft tracking. It
// runs directly on IQ (no analog primary demodulator underneath), so it
// is registered as a primary demodulator with FixedIfSampleRate rather
// than a secondary.
type ADSB struct {
	*ExternalProcess
}

func NewADSB() *ADSB {
	return &ADSB{ExternalProcess: NewExternalProcess(ExternalProcessConfig{
		Name:         "dump1090",
		Args:         []string{"--ifile", "-", "--iformat", "uc8"},
		InputFormat:  format.ComplexFloat,
		OutputFormat: format.Char,
	})}
}

func (d *ADSB) FixedIfSampleRate() uint { return 2400000 }

// Streamer wraps a generic `streamer` external process, the catch-all
// csdr/OpenWebRX helper binary spec.md names for modes that don't
// warrant their own dedicated wrapper type.
type Streamer struct {
	*ExternalProcess
}

func NewStreamer(args []string, in, out format.Format) *Streamer {
	return &Streamer{ExternalProcess: NewExternalProcess(ExternalProcessConfig{
		Name:         "streamer",
		Args:         args,
		InputFormat:  in,
		OutputFormat: out,
	})}
}
