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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferFansOutToEveryReader(t *testing.T) {
	b := NewBuffer(Float)
	r1 := b.NewReader()
	r2 := b.NewReader()

	payload := FloatToBytes([]float32{1, 2, 3})
	n, err := b.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	require.NoError(t, b.Close())

	for _, r := range []Reader{r1, r2} {
		buf := make([]byte, 64)
		n, err := r.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, payload, buf[:n])

		_, err = r.Read(buf)
		assert.ErrorIs(t, err, io.EOF)
	}
}

func TestBufferReaderOnlySeesDataAfterItWasOpened(t *testing.T) {
	b := NewBuffer(Float)
	early := b.NewReader()
	_, err := b.Write(FloatToBytes([]float32{9}))
	require.NoError(t, err)

	late := b.NewReader()
	require.NoError(t, b.Close())

	buf := make([]byte, 64)
	n, err := early.Read(buf)
	require.NoError(t, err)
	assert.NotZero(t, n)

	_, err = late.Read(buf)
	assert.ErrorIs(t, err, io.EOF, "a reader opened after the only write sees only EOF once the buffer closes")
}

func TestBufferWriteFailsWithNoReaders(t *testing.T) {
	b := NewBuffer(ComplexFloat)
	_, err := b.Write(ComplexFloatToBytes([]complex64{1}))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReaderCloseDetachesWithoutAffectingSiblings(t *testing.T) {
	b := NewBuffer(Short)
	r1 := b.NewReader()
	r2 := b.NewReader()
	require.NoError(t, r1.Close())

	_, err := b.Write(ShortToBytes([]int16{7}))
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := r2.Read(buf)
	require.NoError(t, err)
	assert.NotZero(t, n)

	_, err = r1.Read(buf)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFormatConversionsRoundTrip(t *testing.T) {
	floats := []float32{1.5, -2.25, 0}
	assert.Equal(t, floats, BytesToFloat(FloatToBytes(floats)))

	shorts := []int16{32767, -32768, 0}
	assert.Equal(t, shorts, BytesToShort(ShortToBytes(shorts)))

	iq := []complex64{complex(1, -1), complex(0.5, 0.25)}
	assert.Equal(t, iq, BytesToComplexFloat(ComplexFloatToBytes(iq)))
}
