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

// Package clientaudio implements the post-demodulation chain described in
// spec.md §4.4: resample the demodulator's audio to the client's rate,
// optionally apply noise reduction, and compress for transport.
package clientaudio

import (
	"sync"

	"github.com/charmbracelet/log"

	"hz.tools/dspd/chain"
	"hz.tools/dspd/dsperrors"
	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
)

// Compression names the audio codec tokens spec.md §6's
// audio_compression property accepts.
type Compression string

const (
	CompressionAdpcm Compression = "adpcm"
	CompressionNone   Compression = "none"
)

func outputFormat(c Compression) format.Format {
	if c == CompressionNone {
		return format.Short
	}
	return format.Char
}

// ClientAudioChain wraps an inner chain.Chain of three stages: resample,
// noise-reduce, compress.
type ClientAudioChain struct {
	mu sync.Mutex

	inputFormat format.Format
	inputRate   uint
	clientRate  uint
	nrEnabled   bool
	nrThreshold int
	compression Compression

	inner  *chain.Chain
	reader format.Reader
	writer format.Writer

	log *log.Logger
}

// New builds a ClientAudioChain for a demodulator whose output is
// inputFormat at inputRate, targeting clientRate, with the given initial
// compression and noise-reduction settings.
func New(inputFormat format.Format, inputRate, clientRate uint, compression Compression, nrEnabled bool, nrThreshold int) *ClientAudioChain {
	c := &ClientAudioChain{
		inputFormat: inputFormat,
		inputRate:   inputRate,
		clientRate:  clientRate,
		nrEnabled:   nrEnabled,
		nrThreshold: nrThreshold,
		compression: compression,
		log:         log.NewWithOptions(nil, log.Options{Prefix: "clientaudio"}),
	}
	c.rebuildLocked()
	return c
}

func (c *ClientAudioChain) rebuildLocked() {
	stages := []worker.Worker{
		newResampler(c.inputFormat, c.inputRate, c.clientRate),
		newNoiseReducer(c.nrEnabled, c.nrThreshold),
		newCompressor(c.compression),
	}
	inner, err := chain.New(stages)
	if err != nil {
		// inputFormat feeding a resampler declared with the same
		// inputFormat can never mismatch; a failure here would be a
		// programming error in this package, not a runtime condition.
		panic(err)
	}
	if c.reader != nil {
		inner.SetReader(c.reader)
	}
	if c.writer != nil {
		inner.SetWriter(c.writer)
	}
	c.inner = inner
}

// InputFormat implements worker.Worker.
func (c *ClientAudioChain) InputFormat() format.Format {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputFormat
}

// OutputFormat implements worker.Worker.
func (c *ClientAudioChain) OutputFormat() format.Format {
	c.mu.Lock()
	defer c.mu.Unlock()
	return outputFormat(c.compression)
}

// SetReader implements worker.Worker.
func (c *ClientAudioChain) SetReader(r format.Reader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reader = r
	c.inner.SetReader(r)
}

// SetWriter implements worker.Worker.
func (c *ClientAudioChain) SetWriter(w format.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer = w
	c.inner.SetWriter(w)
}

// Stop implements worker.Worker.
func (c *ClientAudioChain) Stop() {
	c.mu.Lock()
	inner := c.inner
	c.mu.Unlock()
	inner.Stop()
}

// SetFormat changes the expected input format, per spec.md §4.4 step 1:
// "Attempt to push new.output_format to ClientAudioChain; if that format
// is rejected right now ... swallow the rejection". The rejection
// condition here is a Reader already bound at the old format -- the
// orchestrator is expected to retry after it has rewired the upstream
// stage (replace(1, newDemod)), at which point reader is nil during the
// brief reconnect window and the call succeeds.
func (c *ClientAudioChain) SetFormat(f format.Format) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inputFormat == f {
		return nil
	}
	if c.reader != nil {
		return &dsperrors.FormatMismatchError{
			Stage:    "clientaudio.SetFormat",
			Got:      stringerFormat(f),
			Expected: stringerFormat(c.inputFormat),
		}
	}
	c.inputFormat = f
	c.rebuildLocked()
	return nil
}

type stringerFormat format.Format

func (s stringerFormat) String() string { return format.Format(s).String() }

// SetInputRate changes the resampler's input rate.
func (c *ClientAudioChain) SetInputRate(rate uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inputRate == rate {
		return
	}
	c.inputRate = rate
	c.rebuildLocked()
}

// SetClientRate changes the resampler's output rate (HD vs regular
// client rate, per spec.md's R_client rule).
func (c *ClientAudioChain) SetClientRate(rate uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clientRate == rate {
		return
	}
	c.clientRate = rate
	c.rebuildLocked()
}

// SetNrEnabled toggles noise reduction without a structural rebuild.
func (c *ClientAudioChain) SetNrEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nrEnabled = enabled
	if nr, ok := c.inner.At(1).(*noiseReducer); ok {
		nr.setEnabled(enabled)
	}
}

// SetNrThreshold updates the noise-reduction threshold without a
// structural rebuild.
func (c *ClientAudioChain) SetNrThreshold(threshold int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nrThreshold = threshold
	if nr, ok := c.inner.At(1).(*noiseReducer); ok {
		nr.setThreshold(threshold)
	}
}

// SetAudioCompression changes the output codec. If the output format
// changes (Char <-> Short), the caller must re-wire the downstream
// writer -- signaled by returning dsperrors.ErrFormatMismatch, per
// spec.md §4.4's set_audio_compression contract.
func (c *ClientAudioChain) SetAudioCompression(compression Compression) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := outputFormat(c.compression)
	c.compression = compression
	next := outputFormat(compression)
	c.rebuildLocked()
	if old != next {
		return &dsperrors.FormatMismatchError{
			Stage:    "clientaudio.SetAudioCompression",
			Got:      stringerFormat(next),
			Expected: stringerFormat(old),
		}
	}
	return nil
}
