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
	"github.com/stretchr/testify/require"

	"hz.tools/dspd/format"
)

func TestAMProcessRecoversEnvelope(t *testing.T) {
	d := NewAM()
	iq := []complex64{complex(3, 4), complex(0, 0), complex(1, 0)}
	out, err := d.process(format.ComplexFloatToBytes(iq))
	require.NoError(t, err)

	samples := format.BytesToFloat(out)
	assert.InDelta(t, 5.0, samples[0], 1e-5)
	assert.InDelta(t, 0.0, samples[1], 1e-5)
	assert.InDelta(t, 1.0, samples[2], 1e-5)
}

func TestAMSupportsSquelch(t *testing.T) {
	assert.True(t, NewAM().SupportsSquelch())
}

func TestSSBProcessTakesRealComponent(t *testing.T) {
	d := NewSSB()
	iq := []complex64{complex(2, 5), complex(-1, 9)}
	out, err := d.process(format.ComplexFloatToBytes(iq))
	require.NoError(t, err)

	samples := format.BytesToFloat(out)
	assert.Equal(t, float32(2), samples[0])
	assert.Equal(t, float32(-1), samples[1])
}

func TestSSBAgcProfileDefaultsToSlow(t *testing.T) {
	d := NewSSB()
	assert.Equal(t, "slow", d.agcProfile)
	d.SetAgcProfile("fast")
	assert.Equal(t, "fast", d.agcProfile)
}
