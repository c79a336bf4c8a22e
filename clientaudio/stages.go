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
	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
)

// resampler converts whatever format the demodulator produces into mono
// Float audio at the client rate. Short/Char inputs (e.g. a vocoder's raw
// PCM, or a digital-voice codec's already-compressed bytes) pass through
// unchanged in sample count -- they are not audio-rate-resampled because
// fixed-rate demodulators (FixedAudioRate) already produce exactly the
// client rate by construction, per spec.md §4.4's R_aud rule.
type resampler struct {
	worker.Base
	*worker.Loop
	ratio float64
}

func newResampler(in format.Format, inRate, outRate uint) *resampler {
	r := &resampler{
		Base:  worker.NewBase(in, format.Float),
		ratio: float64(outRate) / float64(maxu(inRate, 1)),
	}
	if in != format.Float {
		// Non-float producers (vocoders, already-PCM sources) are
		// assumed pre-rate-matched; declare identity passthrough.
		r.Base = worker.NewBase(in, in)
		r.ratio = 1
	}
	r.Loop = worker.NewLoop(32*1024, r.process)
	return r
}

func maxu(a, b uint) uint {
	if a > b {
		return a
	}
	return b
}

func (r *resampler) process(in []byte) ([]byte, error) {
	if r.InputFormat() != format.Float {
		return in, nil
	}
	samples := format.BytesToFloat(in)
	if r.ratio == 1 {
		return format.FloatToBytes(samples), nil
	}
	outN := int(float64(len(samples)) * r.ratio)
	out := make([]float32, outN)
	for i := range out {
		srcPos := float64(i) / r.ratio
		i0 := int(srcPos)
		if i0 >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := srcPos - float64(i0)
		out[i] = samples[i0]*float32(1-frac) + samples[i0+1]*float32(frac)
	}
	return format.FloatToBytes(out), nil
}

func (r *resampler) SetReader(rd format.Reader) { r.Base.SetReader(rd); r.Loop.Start(rd, r.Base.Writer()) }
func (r *resampler) SetWriter(w format.Writer)  { r.Base.SetWriter(w); r.Loop.SetWriter(w) }
func (r *resampler) Stop()                      { r.Loop.Stop() }

// noiseReducer gates audio below a threshold (a simplified stand-in for
// the spectral noise-reduction the underlying DSP library would provide;
// spec.md treats NR as a named on/off + threshold knob, not an algorithm
// this package must define precisely).
type noiseReducer struct {
	worker.Base
	*worker.Loop
	enabled   bool
	threshold int
}

func newNoiseReducer(enabled bool, threshold int) *noiseReducer {
	n := &noiseReducer{
		Base:      worker.NewBase(format.Float, format.Float),
		enabled:   enabled,
		threshold: threshold,
	}
	n.Loop = worker.NewLoop(32*1024, n.process)
	return n
}

func (n *noiseReducer) setEnabled(e bool)      { n.enabled = e }
func (n *noiseReducer) setThreshold(t int)     { n.threshold = t }

func (n *noiseReducer) process(in []byte) ([]byte, error) {
	if !n.enabled {
		return in, nil
	}
	samples := format.BytesToFloat(in)
	thresholdLinear := float32(n.threshold) / 100.0
	out := make([]float32, len(samples))
	for i, s := range samples {
		if s > -thresholdLinear && s < thresholdLinear {
			out[i] = 0
		} else {
			out[i] = s
		}
	}
	return format.FloatToBytes(out), nil
}

func (n *noiseReducer) SetReader(rd format.Reader) { n.Base.SetReader(rd); n.Loop.Start(rd, n.Base.Writer()) }
func (n *noiseReducer) SetWriter(w format.Writer)  { n.Base.SetWriter(w); n.Loop.SetWriter(w) }
func (n *noiseReducer) Stop()                      { n.Loop.Stop() }

// compressor turns Float audio into the wire format matching the
// requested Compression token.
type compressor struct {
	worker.Base
	*worker.Loop
	compression Compression
}

func newCompressor(c Compression) *compressor {
	comp := &compressor{
		Base:        worker.NewBase(format.Float, outputFormat(c)),
		compression: c,
	}
	comp.Loop = worker.NewLoop(32*1024, comp.process)
	return comp
}

func (c *compressor) process(in []byte) ([]byte, error) {
	samples := format.BytesToFloat(in)
	if c.compression == CompressionNone {
		pcm := make([]int16, len(samples))
		for i, s := range samples {
			v := s * 32767
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			pcm[i] = int16(v)
		}
		return format.ShortToBytes(pcm), nil
	}
	return adpcmEncode(samples), nil
}

func (c *compressor) SetReader(rd format.Reader) { c.Base.SetReader(rd); c.Loop.Start(rd, c.Base.Writer()) }
func (c *compressor) SetWriter(w format.Writer)  { c.Base.SetWriter(w); c.Loop.SetWriter(w) }
func (c *compressor) Stop()                      { c.Loop.Stop() }
