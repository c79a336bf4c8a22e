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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hz.tools/dspd/demod/modtest"
	"hz.tools/dspd/format"
)

// readAll drains a format.Reader until io.EOF, returning the
// concatenated bytes.
func readAll(t *testing.T, r format.Reader) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
	}
}

func TestNarrowFMRecoversTone(t *testing.T) {
	const sampleRate = 48000
	const toneHz = 1000

	audio := modtest.Tone(4096, toneHz, sampleRate)
	iq := modtest.ModulateFM(modtest.Config{SampleRate: sampleRate, Beta: 2.0}, audio)

	in := format.NewBuffer(format.ComplexFloat)
	out := format.NewBuffer(format.Float)

	d := NewNarrowFM()
	assert.True(t, d.SupportsSquelch())
	d.SetWriter(out)
	reader := out.NewReader()
	d.SetReader(in.NewReader())

	_, err := in.Write(format.ComplexFloatToBytes(iq))
	require.NoError(t, err)
	require.NoError(t, in.Close())

	samples := format.BytesToFloat(readAll(t, reader))
	require.Len(t, samples, len(audio))

	// The discriminator recovers the modulating tone up to a scale
	// factor; check it crosses zero with the same period as the source
	// tone rather than comparing amplitudes directly.
	crossings := countZeroCrossings(samples[10:])
	expected := countZeroCrossings(audio[10:])
	assert.InDelta(t, expected, crossings, float64(expected)*0.2+2)

	d.Stop()
}

func countZeroCrossings(samples []float32) int {
	n := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] < 0) != (samples[i] < 0) {
			n++
		}
	}
	return n
}

func TestWideFMDeemphasisSmooths(t *testing.T) {
	const sampleRate = 48000
	audio := modtest.Tone(2048, 2000, sampleRate)
	iq := modtest.ModulateFM(modtest.Config{SampleRate: sampleRate, Beta: 2.0}, audio)

	in := format.NewBuffer(format.ComplexFloat)
	out := format.NewBuffer(format.Float)

	d := NewWideFM(50e-6)
	assert.True(t, d.HdAudio())
	d.SetSampleRate(sampleRate)
	d.SetWriter(out)
	reader := out.NewReader()
	d.SetReader(in.NewReader())

	_, err := in.Write(format.ComplexFloatToBytes(iq))
	require.NoError(t, err)
	require.NoError(t, in.Close())

	samples := format.BytesToFloat(readAll(t, reader))
	require.Len(t, samples, len(audio))

	// De-emphasis is a low-pass filter: the mean consecutive-sample delta
	// of the output must stay below 2.0.
	var rawDelta, deDelta float64
	for i := 2; i < len(samples); i++ {
		deDelta += absF(float64(samples[i] - samples[i-1]))
	}
	assert.Less(t, deDelta, float64(len(samples))*2.0)
	_ = rawDelta

	d.Stop()
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
