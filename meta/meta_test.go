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

package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := []Record{
		{Kind: "rds", Fields: map[string]string{"ps": "BBC R1 "}},
		{Kind: "talkgroup", Fields: map[string]string{"id": "31001"}},
	}

	chunk, err := Encode(records)
	require.NoError(t, err)

	got := Decode(chunk)
	require.Len(t, got, len(records))
	for i, r := range records {
		assert.Equal(t, r.Kind, got[i].Kind)
		assert.Equal(t, r.Fields, got[i].Fields)
	}
}

func TestDecodeFallsBackToAsciiOnPlainText(t *testing.T) {
	got := Decode([]byte("just some plain text\n"))
	require.Len(t, got, 1)
	assert.Equal(t, "text", got[0].Kind)
	assert.Equal(t, "just some plain text\n", got[0].Fields["text"])
}

func TestDecodeFallsBackToAsciiOnTruncatedFrame(t *testing.T) {
	chunk, err := Encode([]Record{{Kind: "rds", Fields: map[string]string{"a": "b"}}})
	require.NoError(t, err)

	truncated := chunk[:len(chunk)-2]
	got := Decode(truncated)
	require.Len(t, got, 1)
	assert.Equal(t, "text", got[0].Kind)
}

func TestDecodeEmptyChunk(t *testing.T) {
	got := Decode(nil)
	require.Len(t, got, 1)
	assert.Equal(t, "text", got[0].Kind)
}
