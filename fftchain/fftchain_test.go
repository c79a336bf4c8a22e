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

package fftchain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hz.tools/dspd/format"
)

func TestDefaultConfigMatchesSpecDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2048, cfg.Size)
	assert.Equal(t, 0.3, cfg.OverlapFactor)
	assert.Equal(t, 9, cfg.Fps)
	assert.Equal(t, CompressionAdpcm, cfg.Compression)
}

func TestOutputFormatByCompression(t *testing.T) {
	assert.Equal(t, format.Float, outputFormat(CompressionNone))
	assert.Equal(t, format.Char, outputFormat(CompressionAdpcm))
}

func TestNewBuildsHannWindowOfConfiguredSize(t *testing.T) {
	f := New(Config{Size: 8, OverlapFactor: 0.5, Fps: 10, Compression: CompressionNone})
	assert.Len(t, f.window, 8)
	assert.Len(t, f.ring, 8)

	// Hann window: zero at both ends, peak in the middle.
	assert.InDelta(t, 0, f.window[0], 1e-9)
	assert.Greater(t, f.window[4], f.window[0])
}

func TestSetCompressionReportsFormatChange(t *testing.T) {
	f := New(Config{Size: 8, OverlapFactor: 0, Fps: 10, Compression: CompressionNone})
	assert.Equal(t, format.Float, f.OutputFormat())

	changed, next := f.SetCompression(CompressionAdpcm)
	assert.True(t, changed)
	assert.Equal(t, format.Char, next)
	assert.Equal(t, format.Char, f.OutputFormat())

	changed, next = f.SetCompression(CompressionAdpcm)
	assert.False(t, changed)
	assert.Equal(t, format.Char, next)
}

func TestSetSizeRebuildsWindowAndRing(t *testing.T) {
	f := New(Config{Size: 8, OverlapFactor: 0, Fps: 10, Compression: CompressionNone})
	f.SetSize(16)
	assert.Len(t, f.window, 16)
	assert.Len(t, f.ring, 16)
	assert.Zero(t, f.filled)
	assert.Zero(t, f.fresh)
}

func TestMaybeEmitDropsFrameWhenNotEnoughFreshSamples(t *testing.T) {
	f := New(Config{Size: 8, OverlapFactor: 0.5, Fps: 10, Compression: CompressionNone})
	var captured []byte
	f.writer = recordingWriter{captured: &captured}
	f.filled = 8
	f.fresh = 1 // hop would be 4; 1 fresh sample isn't enough

	f.maybeEmit(4)
	assert.Nil(t, captured)
}

type recordingWriter struct {
	captured *[]byte
}

func (r recordingWriter) Write(p []byte) (int, error) {
	*r.captured = append(*r.captured, p...)
	return len(p), nil
}
func (r recordingWriter) Format() format.Format { return format.Float }
func (r recordingWriter) Close() error          { return nil }
