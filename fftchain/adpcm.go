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

// encodeAdpcm is a small IMA ADPCM-style 4-bit delta encoder for
// spectrum magnitude frames. spec.md treats "adpcm" as a named
// compression token handed to an underlying primitive (§1 Non-goals: "no
// audio codec implementation"); none of the retrieval pack carries a
// ready-made ADPCM encoder, so this is a minimal stdlib implementation
// of the well-known algorithm, not a DSP primitive this engine is meant
// to own long-term.
func encodeAdpcm(samples []float32) []byte {
	var (
		predictor int32
		stepIndex int
		out       = make([]byte, 0, len(samples)/2+1)
		nibble    byte
		haveHalf  bool
	)

	for _, s := range samples {
		input := int32(s * 256)
		diff := input - predictor
		sign := byte(0)
		if diff < 0 {
			sign = 8
			diff = -diff
		}

		step := adpcmStepTable[stepIndex]
		code := byte(0)
		tempStep := step
		if diff >= tempStep {
			code |= 4
			diff -= tempStep
		}
		tempStep >>= 1
		if diff >= tempStep {
			code |= 2
			diff -= tempStep
		}
		tempStep >>= 1
		if diff >= tempStep {
			code |= 1
		}
		code |= sign

		delta := step >> 3
		if code&4 != 0 {
			delta += step
		}
		if code&2 != 0 {
			delta += step >> 1
		}
		if code&1 != 0 {
			delta += step >> 2
		}
		if sign != 0 {
			predictor -= delta
		} else {
			predictor += delta
		}
		predictor = clamp32(predictor, -32768, 32767)

		stepIndex += adpcmIndexTable[code]
		if stepIndex < 0 {
			stepIndex = 0
		} else if stepIndex >= len(adpcmStepTable) {
			stepIndex = len(adpcmStepTable) - 1
		}

		if !haveHalf {
			nibble = code << 4
			haveHalf = true
		} else {
			out = append(out, nibble|code)
			haveHalf = false
		}
	}
	if haveHalf {
		out = append(out, nibble)
	}
	return out
}

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var adpcmIndexTable = []int{-1, -1, -1, -1, 2, 4, 6, 8, -1, -1, -1, -1, 2, 4, 6, 8}

var adpcmStepTable = []int32{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17, 19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118, 130, 143, 157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658, 724, 796, 876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066,
	2272, 2499, 2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358, 5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}
