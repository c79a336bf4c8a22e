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

package worker

import (
	"sync"

	"hz.tools/dspd/format"
)

// ByteProcessor transforms one chunk of input bytes (already known to be
// a whole number of input-format samples) into zero or more chunks of
// output bytes. Returning a nil/empty slice is valid (e.g. a squelch
// gate dropping a chunk, or an FFT stage buffering until a frame is
// ready).
type ByteProcessor func(in []byte) (out []byte, err error)

// Loop drives a Worker's processing goroutine: read from r in
// fixed-size chunks, run proc, write the result to w, until r returns an
// error (including io.EOF) or Stop is called. It is the generic engine
// behind every Worker in this package that isn't a Chain or an
// external-process adapter.
type Loop struct {
	chunkBytes int
	proc       ByteProcessor

	mu      sync.Mutex
	reader  format.Reader
	writer  format.Writer
	stopped bool
	done    chan struct{}
}

// NewLoop builds a Loop that reads chunkBytes-sized pieces at a time.
func NewLoop(chunkBytes int, proc ByteProcessor) *Loop {
	return &Loop{chunkBytes: chunkBytes, proc: proc, done: make(chan struct{})}
}

// Start launches the processing goroutine against the given reader and
// writer. The writer may still be nil at this point -- chain wiring calls
// SetReader before SetWriter -- so the loop re-reads l.writer on every
// iteration rather than closing over the value passed here, the same
// pattern fftchain.maybeEmit uses to pick up a writer installed after the
// goroutine already started. Calling Start again
// after Stop restarts the loop against possibly-new reader/writer.
func (l *Loop) Start(r format.Reader, w format.Writer) {
	l.mu.Lock()
	l.reader = r
	l.writer = w
	l.stopped = false
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	go func() {
		defer close(done)
		buf := make([]byte, l.chunkBytes)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				out, perr := l.proc(buf[:n])
				if perr == nil && len(out) > 0 {
					if w := l.currentWriter(); w != nil {
						_, _ = w.Write(out)
					}
				}
			}
			if err != nil {
				if w := l.currentWriter(); w != nil {
					_ = w.Close()
				}
				return
			}
			if l.isStopped() {
				return
			}
		}
	}()
}

// SetWriter re-points a running (or not-yet-started) loop at a new
// writer, picked up on the next iteration.
func (l *Loop) SetWriter(w format.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

func (l *Loop) currentWriter() format.Writer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer
}

func (l *Loop) isStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// Stop marks the loop stopped, closes the Reader passed to Start, and
// waits for the processing goroutine to exit. A Read already blocked in
// that Reader must return before Stop does.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	r := l.reader
	l.mu.Unlock()
	if r != nil {
		_ = r.Close()
	}
	<-l.done
}
