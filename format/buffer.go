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
	"errors"
	"io"
	"sync"
)

// DefaultQueueDepth is the number of in-flight chunks a Reader can queue
// before its producer blocks on Write. This is the "bounded" in "bounded
// FIFO": a slow Reader applies backpressure to every other Reader of the
// same Buffer, which is the same trade-off hz.tools/sdr's fixed-size
// sample buffers make.
const DefaultQueueDepth = 64

// ErrClosed is returned by Write once a Buffer has no remaining Readers,
// and by Read once a Reader has been explicitly closed.
var ErrClosed = errors.New("format: buffer closed")

// Writer is the single-producer side of a Buffer.
type Writer interface {
	// Write delivers one chunk of samples, encoded as raw bytes in the
	// Buffer's Format, to every current Reader. It blocks if any Reader's
	// queue is full.
	Write(p []byte) (int, error)
	Format() Format
	// Close idles the Buffer: every Reader observes io.EOF after
	// draining whatever was already queued.
	Close() error
}

// Reader is one consumer's independent cursor over a Buffer.
type Reader interface {
	Read(p []byte) (int, error)
	Format() Format
	// Close detaches this Reader from its Buffer. Other Readers of the
	// same Buffer are unaffected.
	Close() error
}

// Buffer is a single-producer, multi-consumer FIFO for exactly one
// Format. Every Reader created from a Buffer receives every chunk written
// after it was created, independently paced.
type Buffer struct {
	format Format

	mu      sync.Mutex
	readers map[*bufReader]struct{}
	closed  bool
}

// NewBuffer allocates an empty Buffer carrying samples of the given
// Format.
func NewBuffer(f Format) *Buffer {
	return &Buffer{
		format:  f,
		readers: make(map[*bufReader]struct{}),
	}
}

// Format implements Writer.
func (b *Buffer) Format() Format { return b.format }

// Writer returns the single Writer for this Buffer. Buffer itself
// implements Writer, so this simply asserts the type at call sites that
// need the narrower interface.
func (b *Buffer) Writer() Writer { return b }

// NewReader opens a new Reader over this Buffer. The Reader will see
// every chunk written from this point forward.
func (b *Buffer) NewReader() Reader {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := &bufReader{
		buf: b,
		ch:  make(chan []byte, DefaultQueueDepth),
	}
	if b.closed {
		close(r.ch)
	} else {
		b.readers[r] = struct{}{}
	}
	return r
}

// NumReaders reports how many Readers are currently attached. Useful for
// Workers that want to skip producing output nobody will consume.
func (b *Buffer) NumReaders() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.readers)
}

// Write fans a chunk of raw, Format-encoded bytes out to every attached
// Reader. The slice must not be mutated by the caller afterward: Readers
// share it.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	if b.closed || len(b.readers) == 0 {
		b.mu.Unlock()
		return 0, ErrClosed
	}
	targets := make([]*bufReader, 0, len(b.readers))
	for r := range b.readers {
		targets = append(targets, r)
	}
	b.mu.Unlock()

	for _, r := range targets {
		select {
		case r.ch <- p:
		default:
			// Slow reader: block until it frees a slot. Delivery to the
			// Readers after it in this fan-out waits too, which is the
			// backpressure described on DefaultQueueDepth.
			r.ch <- p
		}
	}
	return len(p), nil
}

// Close idles the producer side: every attached Reader will observe
// io.EOF once its queue drains.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for r := range b.readers {
		close(r.ch)
	}
	b.readers = make(map[*bufReader]struct{})
	return nil
}

func (b *Buffer) detach(r *bufReader) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.readers, r)
}

type bufReader struct {
	buf     *Buffer
	ch      chan []byte
	pending []byte
	closed  bool
}

func (r *bufReader) Format() Format { return r.buf.format }

func (r *bufReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if len(r.pending) == 0 {
		chunk, ok := <-r.ch
		if !ok {
			return 0, io.EOF
		}
		r.pending = chunk
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *bufReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.buf.detach(r)
	return nil
}
