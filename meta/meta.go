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

// Package meta implements the meta/secondary_demod channel record codec
// described in spec.md §4.5 and §9: each chunk delivered on those
// channels is either a framed record stream or plain ASCII text, decoded
// best-effort. spec.md explicitly permits replacing the legacy
// pickle-sniffing format with "a modern equivalent"; this package uses
// encoding/gob framing (see DESIGN.md for why no pack dependency offers
// a lighter-weight alternative) behind a magic-byte check so existing
// plain-text producers keep working unchanged.
package meta

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
)

// magic prefixes a gob-framed record chunk. Chosen to be vanishingly
// unlikely to collide with the leading bytes of printable ASCII text.
var magic = [4]byte{0x93, 'G', 'O', 'B'}

// Record is one decoded metadata or secondary-demodulator entry.
type Record struct {
	Kind   string
	Fields map[string]string
}

// Encode frames records as a magic-prefixed, length-prefixed sequence of
// gob-encoded Records, suitable for writing to a meta or secondary_demod
// Writer.
func Encode(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	for _, r := range records {
		var rec bytes.Buffer
		if err := gob.NewEncoder(&rec).Encode(r); err != nil {
			return nil, err
		}
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(rec.Len()))
		buf.Write(lenBuf[:])
		buf.Write(rec.Bytes())
	}
	return buf.Bytes(), nil
}

// Decode turns one chunk into a sequence of Records, falling back to a
// single best-effort ASCII Record if the chunk isn't magic-prefixed or
// fails to decode -- matching spec.md §4.5's "Failures decode as
// best-effort ASCII."
func Decode(chunk []byte) []Record {
	if len(chunk) < len(magic) || !bytes.Equal(chunk[:len(magic)], magic[:]) {
		return []Record{asciiRecord(chunk)}
	}

	rest := chunk[len(magic):]
	var out []Record
	for len(rest) >= 4 {
		n := binary.BigEndian.Uint32(rest[:4])
		rest = rest[4:]
		if uint32(len(rest)) < n {
			return []Record{asciiRecord(chunk)}
		}
		var rec Record
		if err := gob.NewDecoder(bytes.NewReader(rest[:n])).Decode(&rec); err != nil {
			return []Record{asciiRecord(chunk)}
		}
		out = append(out, rec)
		rest = rest[n:]
	}
	return out
}

func asciiRecord(chunk []byte) Record {
	return Record{Kind: "text", Fields: map[string]string{"text": string(chunk)}}
}
