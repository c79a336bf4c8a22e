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

// Package modtest synthesizes FM-modulated IQ fixtures for the
// demodulator tests in package demod. It has no production callers.
//
// Grounded on internal/legacy/modulator.go's Modulator: the same
// per-sample FM phase-accumulation loop, trimmed to an in-memory
// []complex64 generator instead of an sdr.Writer pump.
package modtest

import "math"

const tau = math.Pi * 2

// Config describes the FM modulation to apply to a tone before feeding
// it to a demodulator under test.
type Config struct {
	// SampleRate is the IQ sample rate of the generated signal.
	SampleRate uint
	// CarrierOffset is the modulated carrier's offset from baseband, Hz.
	CarrierOffset float64
	// Beta is the modulation index (deviation / audio frequency).
	Beta float64
}

// ModulateFM generates len(audio) complex64 IQ samples at cfg.SampleRate,
// FM-modulating the given baseband audio samples onto cfg.CarrierOffset.
func ModulateFM(cfg Config, audio []float32) []complex64 {
	out := make([]complex64, len(audio))
	timeOffset := 0.0
	for i, a := range audio {
		now := timeOffset / float64(cfg.SampleRate)
		phase := tau*cfg.CarrierOffset*now + cfg.Beta*float64(a)
		out[i] = complex(float32(math.Cos(phase)), float32(math.Sin(phase)))
		timeOffset++
	}
	return out
}

// Tone generates n samples of a sine wave at freqHz, sampled at
// sampleRate, for use as ModulateFM's input audio.
func Tone(n int, freqHz float64, sampleRate uint) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(tau * freqHz * float64(i) / float64(sampleRate)))
	}
	return out
}
