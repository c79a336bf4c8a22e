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

// Package selector implements the frequency-shift + bandpass + decimate
// stage described in spec.md §4.2, plus SecondarySelector (a narrower
// sub-bandpass carved out of the primary demod band for a secondary
// demodulator).
//
// It is built directly on the hz.tools/sdr/stream building blocks
// hz.tools/fm.Demodulate composes (ReadTransformer for the mixer,
// ConvolutionReader for the bandpass, DownsampleReader for the rate
// change), plumbed through the small sdr.Reader/sdr.Writer adapters in
// adapter.go so the rest of this engine only has to know about
// format.Reader/format.Writer.
package selector

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/charmbracelet/log"

	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
	"hz.tools/fftw"
	"hz.tools/sdr"
	"hz.tools/sdr/stream"
)

// DisableSquelch is the sentinel dBFS value meaning "pass everything".
const DisableSquelch = -150.0

// Selector carves one channel out of the wideband IQ stream.
type Selector struct {
	worker.Base

	mu sync.Mutex

	inputRate, outputRate uint
	freqOffsetHz          float64
	lowCut, highCut       *float64
	squelchLevel          float64

	reader      format.Reader
	writer      format.Writer
	powerWriter format.Writer

	genCancel func()
	wg        sync.WaitGroup

	log *log.Logger
}

// New builds a Selector reading IQ at inputRate and producing IQ at
// outputRate.
func New(inputRate, outputRate uint) *Selector {
	s := &Selector{
		Base:         worker.NewBase(format.ComplexFloat, format.ComplexFloat),
		inputRate:    inputRate,
		outputRate:   outputRate,
		squelchLevel: DisableSquelch,
		log:          log.NewWithOptions(nil, log.Options{Prefix: "selector"}),
	}
	return s
}

// SetReader overrides worker.Base.SetReader: the Selector owns a live
// processing goroutine, so attaching a new upstream Reader rebuilds it.
func (s *Selector) SetReader(r format.Reader) {
	s.mu.Lock()
	s.reader = r
	s.mu.Unlock()
	s.rebuild()
}

// SetWriter overrides worker.Base.SetWriter for the same reason.
func (s *Selector) SetWriter(w format.Writer) {
	s.mu.Lock()
	s.writer = w
	s.mu.Unlock()
	s.rebuild()
}

// SetInputRate changes the rate samples arrive at (e.g. the SDR source's
// sample rate, via the samp_rate property).
func (s *Selector) SetInputRate(rate uint) {
	s.mu.Lock()
	changed := s.inputRate != rate
	s.inputRate = rate
	s.mu.Unlock()
	if changed {
		s.rebuild()
	}
}

// SetOutputRate changes the Selector's output rate, recomputed by the
// orchestrator per the R_sel rule in spec.md §4.4.
func (s *Selector) SetOutputRate(rate uint) {
	s.mu.Lock()
	changed := s.outputRate != rate
	s.outputRate = rate
	s.mu.Unlock()
	if changed {
		s.rebuild()
	}
}

// SetFrequencyOffset shifts the IQ by -offset (NCO mix) so the tuned
// signal lands at baseband.
func (s *Selector) SetFrequencyOffset(hz float64) {
	s.mu.Lock()
	changed := s.freqOffsetHz != hz
	s.freqOffsetHz = hz
	s.mu.Unlock()
	if changed {
		s.rebuild()
	}
}

// SetBandpass sets both edges at once; either may be nil, meaning
// "no constraint on that edge" (low-pass or high-pass only).
func (s *Selector) SetBandpass(low, high *float64) {
	s.mu.Lock()
	s.lowCut, s.highCut = low, high
	s.mu.Unlock()
	s.rebuild()
}

// SetLowCut sets only the low edge of the passband.
func (s *Selector) SetLowCut(hz *float64) {
	s.mu.Lock()
	s.lowCut = hz
	s.mu.Unlock()
	s.rebuild()
}

// SetHighCut sets only the high edge of the passband.
func (s *Selector) SetHighCut(hz *float64) {
	s.mu.Lock()
	s.highCut = hz
	s.mu.Unlock()
	s.rebuild()
}

// SetSquelchLevel sets the squelch threshold in dBFS; DisableSquelch
// (-150) disables squelch entirely.
func (s *Selector) SetSquelchLevel(dbfs float64) {
	s.mu.Lock()
	s.squelchLevel = dbfs
	s.mu.Unlock()
}

// SquelchLevel returns the Selector's currently configured squelch
// threshold in dBFS.
func (s *Selector) SquelchLevel() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.squelchLevel
}

// OutputRate returns the Selector's currently configured output rate.
func (s *Selector) OutputRate() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputRate
}

// SetPowerWriter installs the S-meter sink: periodic RMS power readings
// in dBFS, one Float sample per decimated block (no slower than 10Hz per
// spec.md's design floor, enforced by capping the block size below).
func (s *Selector) SetPowerWriter(w format.Writer) {
	s.mu.Lock()
	s.powerWriter = w
	s.mu.Unlock()
}

// snapshot captures the fields the processing pipeline needs under one
// lock acquisition, so rebuild doesn't race with mutators.
type snapshot struct {
	inputRate, outputRate uint
	freqOffsetHz          float64
	lowCut, highCut       *float64
}

func (s *Selector) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{s.inputRate, s.outputRate, s.freqOffsetHz, s.lowCut, s.highCut}
}

// rebuild tears down the current processing goroutine (if any) and
// starts a fresh one against the current reader/writer/parameters. It is
// safe to call repeatedly; a partially-wired Selector (reader or writer
// still nil) simply does nothing until both are set.
func (s *Selector) rebuild() {
	s.mu.Lock()
	reader, writer := s.reader, s.writer
	if s.genCancel != nil {
		s.genCancel()
		s.genCancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()

	if reader == nil || writer == nil {
		return
	}

	snap := s.snapshot()
	if snap.inputRate == 0 || snap.outputRate == 0 {
		return
	}

	stopped := make(chan struct{})
	var once sync.Once
	cancel := func() { once.Do(func() { close(stopped) }) }

	s.mu.Lock()
	s.genCancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(reader, writer, snap, stopped)
}

// Stop halts the processing goroutine and releases the upstream Reader.
func (s *Selector) Stop() {
	s.mu.Lock()
	if s.genCancel != nil {
		s.genCancel()
		s.genCancel = nil
	}
	reader := s.reader
	s.mu.Unlock()
	s.wg.Wait()
	if reader != nil {
		_ = reader.Close()
	}
}

func (s *Selector) run(reader format.Reader, writer format.Writer, snap snapshot, stopped <-chan struct{}) {
	defer s.wg.Done()

	src := newReaderAdapter(reader, snap.inputRate)
	mixed := mixReader(src, snap.freqOffsetHz)

	filterLen := 4096
	taps := make([]complex64, filterLen)
	if err := designBandpass(taps, snap.inputRate, snap.lowCut, snap.highCut); err != nil {
		s.log.Error("designing bandpass filter", "err", err)
		return
	}
	filtered, err := stream.ConvolutionReader(mixed, fftw.Plan, taps)
	if err != nil {
		s.log.Error("building convolution reader", "err", err)
		return
	}

	factor := snap.inputRate / snap.outputRate
	if factor < 1 {
		factor = 1
	}
	decimated, err := stream.DownsampleReader(filtered, int(factor))
	if err != nil {
		s.log.Error("building downsample reader", "err", err)
		return
	}

	out := &writerAdapter{dst: writer}
	blockLen := int(snap.outputRate) / 20 // 50ms blocks: >=20 power updates/sec
	if blockLen < 1 {
		blockLen = 1
	}
	block := make(sdr.SamplesC64, blockLen)

	for {
		select {
		case <-stopped:
			return
		default:
		}

		n, err := sdr.ReadFull(decimated, block)
		if n > 0 {
			s.emit(block[:n], out)
		}
		if err != nil {
			_ = writer.Close()
			return
		}
	}
}

func (s *Selector) emit(block sdr.SamplesC64, out *writerAdapter) {
	s.mu.Lock()
	squelch := s.squelchLevel
	powerWriter := s.powerWriter
	s.mu.Unlock()

	var sumSq float64
	for _, v := range block {
		sumSq += real(v)*real(v) + imag(v)*imag(v)
	}
	rms := math.Sqrt(sumSq / float64(len(block)))
	dbfs := 20 * math.Log10(rms+1e-20)

	if powerWriter != nil {
		_, _ = powerWriter.Write(format.FloatToBytes([]float32{float32(dbfs)}))
	}

	if squelch != DisableSquelch && dbfs < squelch {
		for i := range block {
			block[i] = 0
		}
	}

	_, _ = out.Write(block)
}

// mixReader shifts the IQ stream down by offsetHz (an NCO mix), the way
// spec.md §4.2 describes, implemented with the same
// stream.ReadTransformer building block other_examples' hz.tools/sdr
// stream.DecimateReader uses.
func mixReader(in sdr.Reader, offsetHz float64) sdr.Reader {
	phase := 0.0
	rate := float64(in.SampleRate())

	r, err := stream.ReadTransformer(in, stream.ReadTransformerConfig{
		InputBufferLength:  32 * 1024,
		OutputBufferLength: 32 * 1024,
		OutputSampleRate:   in.SampleRate(),
		OutputSampleFormat: in.SampleFormat(),
		Proc: func(inBuf sdr.Samples, outBuf sdr.Samples) (int, error) {
			is := inBuf.(sdr.SamplesC64)
			os := outBuf.(sdr.SamplesC64)
			step := -2 * math.Pi * offsetHz / rate
			for i, v := range is {
				nco := complex64(cmplx.Exp(complex(0, phase)))
				os[i] = v * nco
				phase += step
				if phase > math.Pi {
					phase -= 2 * math.Pi
				} else if phase < -math.Pi {
					phase += 2 * math.Pi
				}
			}
			return len(is), nil
		},
	})
	if err != nil {
		// ReadTransformer only fails on malformed config; offsetHz and
		// rate can never produce one here, so surface it as a reader
		// that errors immediately rather than propagating a
		// constructor error through every Selector mutator.
		return erroringReader{err: err, rate: in.SampleRate()}
	}
	return r
}

type erroringReader struct {
	err  error
	rate uint
}

func (e erroringReader) Read(sdr.Samples) (int, error)  { return 0, e.err }
func (e erroringReader) SampleRate() uint                { return e.rate }
func (e erroringReader) SampleFormat() sdr.SampleFormat { return sdr.SampleFormatC64 }
func (e erroringReader) Close() error                   { return nil }
