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

package format

import (
	"encoding/binary"
	"math"
)

// The helpers below translate between the wire encoding every Buffer
// carries (raw little-endian bytes) and the Go-native slice types each
// Worker actually computes with. hz.tools/sdr draws the same line between
// sdr.Samples (typed) and its wire encodings; we keep one Buffer
// implementation for all four Formats by always storing bytes and
// decoding at the edges instead of making Buffer generic over Format.

// ComplexFloatToBytes encodes interleaved IQ float32 samples.
func ComplexFloatToBytes(samples []complex64) []byte {
	out := make([]byte, len(samples)*8)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*8:], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(out[i*8+4:], math.Float32bits(imag(s)))
	}
	return out
}

// BytesToComplexFloat decodes interleaved IQ float32 samples.
func BytesToComplexFloat(p []byte) []complex64 {
	n := len(p) / 8
	out := make([]complex64, n)
	for i := 0; i < n; i++ {
		re := math.Float32frombits(binary.LittleEndian.Uint32(p[i*8:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(p[i*8+4:]))
		out[i] = complex(re, im)
	}
	return out
}

// FloatToBytes encodes mono float32 audio samples.
func FloatToBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

// BytesToFloat decodes mono float32 audio samples.
func BytesToFloat(p []byte) []float32 {
	n := len(p) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}

// ShortToBytes encodes mono 16-bit PCM audio samples.
func ShortToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// BytesToShort decodes mono 16-bit PCM audio samples.
func BytesToShort(p []byte) []int16 {
	n := len(p) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(p[i*2:]))
	}
	return out
}

// SampleCount returns how many samples of Format f are encoded in p.
func SampleCount(f Format, p []byte) int {
	size := f.SampleSize()
	if size == 0 {
		return 0
	}
	return len(p) / size
}
