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

// Package modes implements the mode registry spec.md §6 describes: each
// mode is identified by a lowercase token, its underlying analog mode
// (for digital overlays), its external-tool requirements, its bandpass,
// and service/squelch/secondaryFft flags. Per spec.md §1 the catalog is
// "merely consulted" by the engine -- this package only reads it.
package modes

import "gopkg.in/yaml.v3"

// Bandpass is a default passband, in Hz relative to baseband, for a
// mode's demodulator.
type Bandpass struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Mode describes one entry in the catalog.
type Mode struct {
	Token       string   `yaml:"token"`
	AnalogMode  string   `yaml:"analog_mode,omitempty"`
	Requires    []string `yaml:"requires,omitempty"`
	Bandpass    Bandpass `yaml:"bandpass"`
	Service     bool     `yaml:"service,omitempty"`
	Squelch     bool     `yaml:"squelch,omitempty"`
	SecondaryFft bool    `yaml:"secondary_fft,omitempty"`
	// Secondary is true for modes only ever layered on another mode's
	// audio/IQ (owrx/modes.py's DigitalMode).
	Secondary bool `yaml:"secondary,omitempty"`
}

// Catalog is an immutable, in-memory mode registry.
type Catalog struct {
	modes map[string]Mode
}

// Default returns the catalog entries spec.md §6 and §8's scenarios
// name explicitly.
func Default() *Catalog {
	c := &Catalog{modes: make(map[string]Mode)}
	for _, m := range []Mode{
		{Token: "nfm", Bandpass: Bandpass{-4000, 4000}, Squelch: true},
		{Token: "wfm", Bandpass: Bandpass{-75000, 75000}},
		{Token: "am", Bandpass: Bandpass{-4000, 4000}, Squelch: true},
		{Token: "usb", Bandpass: Bandpass{300, 2700}, Squelch: true},
		{Token: "lsb", Bandpass: Bandpass{-2700, -300}, Squelch: true},
		{Token: "dmr", Requires: []string{"digital_voice_codecserver"}, Service: true},
		{Token: "dab", Requires: []string{"dablin"}, Service: true},
		{Token: "nrsc5", Requires: []string{"nrsc5"}, Service: true},
		{Token: "adsb", Requires: []string{"dump1090"}, Service: true},
		{Token: "ft8", AnalogMode: "usb", Requires: []string{"jt9"}, Secondary: true, SecondaryFft: true},
		{Token: "wspr", AnalogMode: "usb", Requires: []string{"wsprd"}, Secondary: true, SecondaryFft: true},
		{Token: "packet", AnalogMode: "nfm", Requires: []string{"direwolf"}, Secondary: true},
	} {
		c.modes[m.Token] = m
	}
	return c
}

// Load parses a YAML mode catalog document (the format samoyed's
// config.go also uses gopkg.in/yaml.v3 for) into a Catalog, for
// deployments that want a different mode set without a Go code change.
// The returned Catalog holds only the document's modes; it is not merged
// with Default's entries.
func Load(data []byte) (*Catalog, error) {
	var doc struct {
		Modes []Mode `yaml:"modes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	c := &Catalog{modes: make(map[string]Mode)}
	for _, m := range doc.Modes {
		c.modes[m.Token] = m
	}
	return c, nil
}

// Get looks up a mode token. ok is false if the token is unknown.
func (c *Catalog) Get(token string) (Mode, bool) {
	m, ok := c.modes[token]
	return m, ok
}

// Tokens lists every mode token in the catalog.
func (c *Catalog) Tokens() []string {
	out := make([]string, 0, len(c.modes))
	for t := range c.modes {
		out = append(out, t)
	}
	return out
}
