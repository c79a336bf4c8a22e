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
	"testing"

	"github.com/stretchr/testify/assert"

	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
)

func TestDmrAdvertisesSlotAndServiceAndFixedAudioRate(t *testing.T) {
	d := NewDMR("localhost:4242")
	var w worker.Worker = d
	assert.Implements(t, (*worker.SlotFilter)(nil), w)
	assert.Implements(t, (*worker.AudioServiceSelector)(nil), w)
	assert.Implements(t, (*worker.FixedAudioRate)(nil), w)
	assert.Equal(t, uint(8000), d.FixedAudioRate())
}

func TestDabAdvertisesFixedIfAndAudioRate(t *testing.T) {
	d := NewDAB(44100)
	var w worker.Worker = d
	assert.Implements(t, (*worker.FixedIfSampleRate)(nil), w)
	assert.Implements(t, (*worker.FixedAudioRate)(nil), w)
	assert.Implements(t, (*worker.AudioServiceSelector)(nil), w)
	assert.Equal(t, uint(44100), d.FixedAudioRate())
}

func TestNrsc5AdvertisesHdAudio(t *testing.T) {
	d := NewNRSC5()
	var w worker.Worker = d
	assert.Implements(t, (*worker.HdAudio)(nil), w)
	assert.True(t, d.HdAudio())
}

func TestAdsbAdvertisesFixedIfSampleRate(t *testing.T) {
	d := NewADSB()
	var w worker.Worker = d
	assert.Implements(t, (*worker.FixedIfSampleRate)(nil), w)
	assert.Equal(t, uint(2400000), d.FixedIfSampleRate())
}

func TestFt8AdvertisesSecondaryBandwidthAndFftButNotSquelch(t *testing.T) {
	d := NewFT8(2500)
	var w worker.Worker = d
	assert.Implements(t, (*worker.SecondarySelector)(nil), w)
	assert.Implements(t, (*worker.SecondaryFftShown)(nil), w)
	assert.Equal(t, 3000.0, d.SecondaryBandwidth())

	_, supportsSquelch := w.(worker.SupportsSquelch)
	assert.False(t, supportsSquelch, "FT8 must not advertise SupportsSquelch")
}

func TestWsprAdvertisesSecondaryBandwidth(t *testing.T) {
	d := NewWSPR()
	assert.Equal(t, 200.0, d.SecondaryBandwidth())
	assert.True(t, d.SecondaryFftShown())
}

func TestAprsSupportsSquelch(t *testing.T) {
	d := NewAPRS()
	var w worker.Worker = d
	assert.Implements(t, (*worker.SupportsSquelch)(nil), w)
	assert.True(t, d.SupportsSquelch())
}

func TestDummyPreservesRequestedOutputFormat(t *testing.T) {
	d := NewDummy(format.Short)
	assert.Equal(t, format.Short, d.OutputFormat())
	d.Stop()
	d.Stop() // idempotent
}
