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

// Package worker declares the abstract DSP stage contract and the
// capability tags a concrete stage may implement.
//
// Every capability is expressed as a narrow interface rather than a
// struct field or an enum of type names, so a mutator can test for it
// with a single type assertion (w.(FixedAudioRate)) instead of the
// runtime type-switch cascade the original implementation used.
package worker

import "hz.tools/dspd/format"

// Worker is one DSP stage: it declares the format it expects on input
// and the format it produces on output, consumes exactly one Reader, and
// produces into exactly one Writer.
type Worker interface {
	SetReader(format.Reader)
	SetWriter(format.Writer)
	InputFormat() format.Format
	OutputFormat() format.Format
	// Stop releases any OS resources the Worker owns (file handles,
	// subprocesses, goroutines) and sends EOF downstream. Stop must be
	// idempotent.
	Stop()
}

// FixedIfSampleRate is implemented by a primary demodulator that must be
// fed IQ at exactly one rate (e.g. DAB's 2.048 Msps channel raster).
type FixedIfSampleRate interface {
	FixedIfSampleRate() uint
}

// FixedAudioRate is implemented by a Worker whose output audio rate
// cannot be renegotiated (e.g. a digital-voice vocoder).
type FixedAudioRate interface {
	FixedAudioRate() uint
}

// HdAudio marks a Worker that produces wideband (>=48kHz) audio and
// should use the client's HD output rate rather than the regular one.
type HdAudio interface {
	HdAudio() bool
}

// DeemphasisTau is implemented by WFM-family demodulators.
type DeemphasisTau interface {
	SetDeemphasisTau(tau float64)
}

// Rds is implemented by demodulators that can decode RDS/RBDS.
type Rds interface {
	SetRdsRbds(rbds bool)
}

// MetaProvider exposes a writer port carrying metadata frames (e.g. RDS
// text, DMR talkgroup info) alongside the main audio output.
type MetaProvider interface {
	SetMetaWriter(format.Writer)
}

// DialFrequencyReceiver is implemented by a Worker that needs to know
// the absolute RF tuning frequency (e.g. to label its own metadata).
type DialFrequencyReceiver interface {
	SetDialFrequency(hz float64)
}

// SlotFilter is implemented by digital-voice demodulators that can
// restrict decoding to one TDMA slot (e.g. DMR).
type SlotFilter interface {
	SetSlotFilter(slot int)
}

// AudioServiceSelector is implemented by demodulators that multiplex
// several audio services on one channel (e.g. DAB).
type AudioServiceSelector interface {
	SetAudioServiceID(id int)
}

// SecondarySelector is implemented by a secondary demodulator that wants
// a sub-bandpass carved out of the primary demod band rather than seeing
// the whole thing.
type SecondarySelector interface {
	SecondaryBandwidth() float64
}

// SecondaryFftShown is implemented by a (primary or secondary)
// demodulator that wants a secondary waterfall shown to the user.
type SecondaryFftShown interface {
	SecondaryFftShown() bool
}

// SupportsSquelch is implemented by a demodulator that tolerates
// squelched (gated-to-zero) input without producing artifacts.
type SupportsSquelch interface {
	SupportsSquelch() bool
}

// SetSampleRate is implemented by any Worker whose internal filters
// must be rebuilt when fed at a different rate (most demodulators).
type SetSampleRate interface {
	SetSampleRate(rate uint)
}

// AgcProfile is implemented by a demodulator exposing a named AGC preset
// (e.g. SSB's ssb_agc_profile property).
type AgcProfile interface {
	SetAgcProfile(profile string)
}
