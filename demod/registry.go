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
	"hz.tools/dspd/dsperrors"
	"hz.tools/dspd/worker"
)

// Config carries the property values a constructor might need, decoupled
// from the property package so demod has no import cycle back to it.
type Config struct {
	WfmDeemphasisTau    float64
	DabOutputRate       uint
	CodecServer         string
	SecondaryBandwidth  float64
}

// Constructor builds a primary demodulator Worker from a Config.
type Constructor func(cfg Config) (worker.Worker, error)

// SecondaryConstructor builds a secondary demodulator Worker.
type SecondaryConstructor func(cfg Config) (worker.Worker, error)

// Registry maps mode tokens to constructors, replacing the long if/else
// cascade spec.md §9 calls out as a maintenance artifact. It is
// populated at startup, normally from a modes.Catalog.
type Registry struct {
	primary   map[string]Constructor
	secondary map[string]SecondaryConstructor
}

// NewRegistry builds the registry of modes this engine understands.
func NewRegistry() *Registry {
	r := &Registry{
		primary:   make(map[string]Constructor),
		secondary: make(map[string]SecondaryConstructor),
	}
	r.primary["nfm"] = func(Config) (worker.Worker, error) { return NewNarrowFM(), nil }
	r.primary["wfm"] = func(cfg Config) (worker.Worker, error) {
		tau := cfg.WfmDeemphasisTau
		if tau == 0 {
			tau = 50e-6
		}
		return NewWideFM(tau), nil
	}
	r.primary["am"] = func(Config) (worker.Worker, error) { return NewAM(), nil }
	r.primary["usb"] = func(Config) (worker.Worker, error) { return NewSSB(), nil }
	r.primary["lsb"] = func(Config) (worker.Worker, error) { return NewSSB(), nil }
	r.primary["dmr"] = func(cfg Config) (worker.Worker, error) { return NewDMR(cfg.CodecServer), nil }
	r.primary["dab"] = func(cfg Config) (worker.Worker, error) { return NewDAB(cfg.DabOutputRate), nil }
	r.primary["nrsc5"] = func(Config) (worker.Worker, error) { return NewNRSC5(), nil }
	r.primary["adsb"] = func(Config) (worker.Worker, error) { return NewADSB(), nil }

	r.secondary["ft8"] = func(cfg Config) (worker.Worker, error) { return NewFT8(cfg.SecondaryBandwidth), nil }
	r.secondary["wspr"] = func(Config) (worker.Worker, error) { return NewWSPR(), nil }
	r.secondary["packet"] = func(Config) (worker.Worker, error) { return NewAPRS(), nil }
	return r
}

// Register adds or overrides a primary mode constructor (e.g. to wire in
// a mode loaded from an external modes.Catalog at startup).
func (r *Registry) Register(token string, ctor Constructor) {
	r.primary[token] = ctor
}

// RegisterSecondary adds or overrides a secondary mode constructor.
func (r *Registry) RegisterSecondary(token string, ctor SecondaryConstructor) {
	r.secondary[token] = ctor
}

// Build resolves a primary mode token into a demodulator Worker.
func (r *Registry) Build(token string, cfg Config) (worker.Worker, error) {
	ctor, ok := r.primary[token]
	if !ok {
		return nil, &dsperrors.UnknownModeError{Token: token}
	}
	return ctor(cfg)
}

// BuildSecondary resolves a secondary mode token into a demodulator
// Worker.
func (r *Registry) BuildSecondary(token string, cfg Config) (worker.Worker, error) {
	ctor, ok := r.secondary[token]
	if !ok {
		return nil, &dsperrors.UnknownModeError{Token: token}
	}
	return ctor(cfg)
}
