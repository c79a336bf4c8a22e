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

package clientaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hz.tools/dspd/dsperrors"
	"hz.tools/dspd/format"
)

type fakeReader struct{}

func (fakeReader) Read(p []byte) (int, error) { return 0, nil }
func (fakeReader) Format() format.Format       { return format.Float }
func (fakeReader) Close() error                { return nil }

type fakeWriter struct{}

func (fakeWriter) Write(p []byte) (int, error) { return len(p), nil }
func (fakeWriter) Format() format.Format       { return format.Short }
func (fakeWriter) Close() error                { return nil }

func TestResamplerUpsamplesByRatio(t *testing.T) {
	r := newResampler(format.Float, 8000, 16000)
	in := format.FloatToBytes([]float32{0, 1, 0, -1})
	out, err := r.process(in)
	require.NoError(t, err)
	assert.Equal(t, 8, len(format.BytesToFloat(out)))
}

func TestResamplerPassthroughForNonFloatInput(t *testing.T) {
	r := newResampler(format.Short, 8000, 16000)
	in := format.ShortToBytes([]int16{1, 2, 3})
	out, err := r.process(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestNoiseReducerGatesBelowThreshold(t *testing.T) {
	n := newNoiseReducer(true, 50)
	in := format.FloatToBytes([]float32{0.1, 0.9, -0.1, -0.9})
	out, err := n.process(in)
	require.NoError(t, err)
	samples := format.BytesToFloat(out)
	assert.Equal(t, float32(0), samples[0])
	assert.NotZero(t, samples[1])
	assert.Equal(t, float32(0), samples[2])
	assert.NotZero(t, samples[3])
}

func TestNoiseReducerPassthroughWhenDisabled(t *testing.T) {
	n := newNoiseReducer(false, 50)
	in := format.FloatToBytes([]float32{0.01, 0.01})
	out, err := n.process(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCompressorPCMClipsToInt16Range(t *testing.T) {
	c := newCompressor(CompressionNone)
	in := format.FloatToBytes([]float32{2.0, -2.0, 0.5})
	out, err := c.process(in)
	require.NoError(t, err)
	pcm := format.BytesToShort(out)
	assert.Equal(t, int16(32767), pcm[0])
	assert.Equal(t, int16(-32768), pcm[1])
}

func TestCompressorAdpcmProducesNonEmptyOutput(t *testing.T) {
	c := newCompressor(CompressionAdpcm)
	in := format.FloatToBytes([]float32{0.1, 0.2, 0.3, 0.4})
	out, err := c.process(in)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestClientAudioChainOutputFormatMatchesCompression(t *testing.T) {
	c := New(format.Float, 48000, 48000, CompressionNone, false, 0)
	assert.Equal(t, format.Short, c.OutputFormat())

	c2 := New(format.Float, 48000, 48000, CompressionAdpcm, false, 0)
	assert.Equal(t, format.Char, c2.OutputFormat())
}

func TestSetFormatRejectsWhenReaderAlreadyBound(t *testing.T) {
	c := New(format.Float, 48000, 48000, CompressionNone, false, 0)
	c.SetReader(fakeReader{})

	err := c.SetFormat(format.Short)
	require.Error(t, err)
	var mismatch *dsperrors.FormatMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestSetFormatSucceedsWithoutBoundReader(t *testing.T) {
	c := New(format.Float, 48000, 48000, CompressionNone, false, 0)
	require.NoError(t, c.SetFormat(format.Short))
	assert.Equal(t, format.Short, c.InputFormat())
}

func TestSetAudioCompressionSignalsFormatChange(t *testing.T) {
	c := New(format.Float, 48000, 48000, CompressionNone, false, 0)
	err := c.SetAudioCompression(CompressionAdpcm)
	require.Error(t, err)
	assert.Equal(t, format.Char, c.OutputFormat())
}

func TestSetAudioCompressionNoErrorWhenFormatUnchanged(t *testing.T) {
	c := New(format.Float, 48000, 48000, CompressionNone, false, 0)
	require.NoError(t, c.SetAudioCompression(CompressionNone))
}
