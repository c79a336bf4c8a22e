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

// Package fftchain implements the secondary waterfall stage described in
// spec.md §4.3: a windowed, overlapped FFT producing a compressed
// spectrum frame stream at a fixed frame rate, built on the same
// hz.tools/fftw planner the Selector's bandpass filter design uses.
package fftchain

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
	"hz.tools/fftw"
)

// Compression names the two output encodings FftChain supports.
type Compression string

const (
	CompressionAdpcm Compression = "adpcm"
	CompressionNone   Compression = "none"
)

// Config holds the four structural parameters named in spec.md §4.3.
type Config struct {
	Size           int // power of two
	OverlapFactor  float64
	Fps            int
	Compression    Compression
}

// DefaultConfig matches the ClientDemodulatorChain defaults in spec.md §3.
func DefaultConfig() Config {
	return Config{Size: 2048, OverlapFactor: 0.3, Fps: 9, Compression: CompressionAdpcm}
}

// FftChain turns a ComplexFloat IQ stream into a compressed waterfall
// frame stream.
type FftChain struct {
	worker.Base

	mu     sync.Mutex
	cfg    Config
	reader format.Reader
	writer format.Writer

	window []float64
	ring   []complex64
	filled int
	fresh  int // samples received since the last emitted frame

	stop chan struct{}
	wg   sync.WaitGroup
	log  *log.Logger
}

// New builds an FftChain with the given configuration.
func New(cfg Config) *FftChain {
	f := &FftChain{
		cfg: cfg,
		log: log.NewWithOptions(nil, log.Options{Prefix: "fftchain"}),
	}
	f.Base = worker.NewBase(format.ComplexFloat, outputFormat(cfg.Compression))
	f.rebuildWindow()
	return f
}

func outputFormat(c Compression) format.Format {
	if c == CompressionNone {
		return format.Float
	}
	return format.Char
}

func (f *FftChain) rebuildWindow() {
	n := f.cfg.Size
	f.window = make([]float64, n)
	for i := range f.window {
		// Hann window.
		f.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	f.ring = make([]complex64, n)
	f.filled = 0
	f.fresh = 0
}

// SetReader wires the upstream (typically selectorBuffer).
func (f *FftChain) SetReader(r format.Reader) {
	f.mu.Lock()
	f.reader = r
	f.mu.Unlock()
	f.restart()
}

// SetWriter wires the secondary_fft output sink.
func (f *FftChain) SetWriter(w format.Writer) {
	f.mu.Lock()
	f.writer = w
	f.mu.Unlock()
}

// SetSampleRate is a no-op structurally (the window operates on a fixed
// sample count regardless of rate), but is forwarded so callers can treat
// FftChain uniformly with other rate-aware stages; the rate only affects
// how bins map to Hz, which the client-side renderer handles.
func (f *FftChain) SetSampleRate(rate uint) {}

// SetFps changes the target frame rate without a structural rebuild.
func (f *FftChain) SetFps(fps int) {
	f.mu.Lock()
	f.cfg.Fps = fps
	f.mu.Unlock()
	f.restart()
}

// SetVOverlapFactor records the overlap fraction without a structural
// rebuild. It does not restart processing: a running processing
// goroutine keeps the hop it computed at start until the next restart
// (SetReader, SetFps or SetSize).
func (f *FftChain) SetVOverlapFactor(factor float64) {
	f.mu.Lock()
	f.cfg.OverlapFactor = factor
	f.mu.Unlock()
}

// SetCompression changes the output codec. If the output format changes
// (adpcm <-> none), it returns dsperrors-style FormatMismatch-shaped
// behavior by reporting the new format so the caller can re-wire the
// downstream writer, per spec.md §4.3.
func (f *FftChain) SetCompression(c Compression) (changedFormat bool, newFormat format.Format) {
	f.mu.Lock()
	old := outputFormat(f.cfg.Compression)
	f.cfg.Compression = c
	next := outputFormat(c)
	f.Base.SetOutputFormat(next)
	f.mu.Unlock()
	return old != next, next
}

// SetSize rebuilds the window and ring buffer, since FFT size is
// structural.
func (f *FftChain) SetSize(size int) {
	f.mu.Lock()
	f.cfg.Size = size
	f.rebuildWindow()
	f.mu.Unlock()
	f.restart()
}

// restart stops and relaunches the processing goroutine against the
// current reader/config. Safe to call before both reader and writer are
// set; it simply does nothing until they are.
func (f *FftChain) restart() {
	f.Stop()

	f.mu.Lock()
	reader := f.reader
	cfg := f.cfg
	f.mu.Unlock()

	if reader == nil {
		return
	}

	stopCh := make(chan struct{})
	f.mu.Lock()
	f.stop = stopCh
	f.mu.Unlock()

	f.wg.Add(1)
	go f.run(reader, cfg, stopCh)
}

// Stop halts the processing goroutine.
func (f *FftChain) Stop() {
	f.mu.Lock()
	stopCh := f.stop
	f.stop = nil
	reader := f.reader
	f.mu.Unlock()
	if stopCh != nil {
		close(stopCh)
	}
	if reader != nil {
		_ = reader.Close()
	}
	f.wg.Wait()
}

func (f *FftChain) run(reader format.Reader, cfg Config, stopCh <-chan struct{}) {
	defer f.wg.Done()

	interval := time.Second / time.Duration(cfg.Fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	hop := int(float64(cfg.Size) * (1 - cfg.OverlapFactor))
	if hop < 1 {
		hop = 1
	}

	readBuf := make([]byte, 4096*8)
	samples := make(chan []complex64, 16)

	go func() {
		defer close(samples)
		for {
			n, err := reader.Read(readBuf)
			if n > 0 {
				samples <- format.BytesToComplexFloat(readBuf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-stopCh:
			return
		case chunk, ok := <-samples:
			if !ok {
				return
			}
			f.mu.Lock()
			for _, s := range chunk {
				f.ring[f.filled%len(f.ring)] = s
				f.filled++
				f.fresh++
			}
			f.mu.Unlock()
		case <-ticker.C:
			f.maybeEmit(hop)
		}
	}
}

// maybeEmit computes and emits one frame if enough fresh samples have
// arrived since the last one; otherwise it drops this tick, per
// spec.md §4.3 ("frames dropped if input is too slow; stale data never
// emitted").
func (f *FftChain) maybeEmit(hop int) {
	f.mu.Lock()
	if f.fresh < hop || f.filled < len(f.ring) {
		f.mu.Unlock()
		return
	}
	size := len(f.ring)
	windowed := make([]complex64, size)
	for i := 0; i < size; i++ {
		idx := (f.filled - size + i) % size
		if idx < 0 {
			idx += size
		}
		windowed[i] = complex64(complex(real(f.ring[idx])*complex128real(f.window[i]), imag(f.ring[idx])*complex128real(f.window[i])))
	}
	f.fresh = 0
	compression := f.cfg.Compression
	writer := f.writer
	f.mu.Unlock()

	spectrum := make([]complex64, size)
	if err := fftw.Plan(windowed, spectrum); err != nil {
		f.log.Error("fft plan failed", "err", err)
		return
	}

	mags := make([]float32, size)
	for i, v := range spectrum {
		mags[i] = float32(20 * math.Log10(float64(absComplex64(v))+1e-20))
	}

	if writer == nil {
		return
	}

	switch compression {
	case CompressionNone:
		_, _ = writer.Write(format.FloatToBytes(mags))
	default:
		_, _ = writer.Write(encodeAdpcm(mags))
	}
}

func complex128real(f float64) float32 { return float32(f) }

func absComplex64(c complex64) float32 {
	return float32(math.Hypot(float64(real(c)), float64(imag(c))))
}
