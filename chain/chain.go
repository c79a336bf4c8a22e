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

// Package chain implements the ordered composition of Workers described
// in spec.md §4.1: a Chain enforces that every adjacent pair of stages
// agrees on sample format, and supports in-place replacement of a single
// stage while the rest of the pipeline keeps running.
//
// A Chain is itself a Worker: its declared input/output format are its
// first and last stage's formats, so Chains nest (a ClientAudioChain is a
// Chain used as one stage of the larger ClientDemodulatorChain).
package chain

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"hz.tools/dspd/dsperrors"
	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
)

// Connector lets an embedding Chain (such as the orchestrator's
// ClientDemodulatorChain) override how two adjacent stages get wired
// together -- e.g. to retain the inter-stage Buffer so a third party can
// tap it, the way spec.md §4.4 retains "selectorBuffer" and
// "audioBuffer". The zero value uses a private, untappable Buffer.
type Connector interface {
	Connect(a, b worker.Worker, buf *format.Buffer) (*format.Buffer, error)
}

// Chain is an ordered sequence of Workers connected by Buffers.
type Chain struct {
	mu      sync.Mutex
	workers []worker.Worker
	bufs    []*format.Buffer // bufs[i] connects workers[i] to workers[i+1]
	connect Connector
	log     *log.Logger
}

// New builds a Chain from an ordered list of Workers, connecting each
// adjacent pair with a private Buffer of the upstream stage's output
// format. Returns dsperrors.ErrFormatMismatch if any adjacent pair
// disagrees.
func New(workers []worker.Worker) (*Chain, error) {
	return NewWithConnector(workers, nil)
}

// NewWithConnector is New, but lets the caller supply a Connector to
// customize how Buffers are created and shared between stages.
func NewWithConnector(workers []worker.Worker, connector Connector) (*Chain, error) {
	c := &Chain{
		workers: append([]worker.Worker(nil), workers...),
		bufs:    make([]*format.Buffer, max0(len(workers)-1)),
		connect: connector,
		log:     log.NewWithOptions(nil, log.Options{Prefix: "chain"}),
	}
	for i := 0; i < len(c.workers)-1; i++ {
		if err := c.wire(i, i+1); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Len reports the number of stages.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.workers)
}

// At returns the stage at index i.
func (c *Chain) At(i int) worker.Worker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workers[i]
}

// InputFormat implements worker.Worker: the format of the first stage.
func (c *Chain) InputFormat() format.Format {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workers[0].InputFormat()
}

// OutputFormat implements worker.Worker: the format of the last stage.
func (c *Chain) OutputFormat() format.Format {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workers[len(c.workers)-1].OutputFormat()
}

// SetReader feeds the first stage.
func (c *Chain) SetReader(r format.Reader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workers[0].SetReader(r)
}

// SetWriter binds the last stage's output.
func (c *Chain) SetWriter(w format.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workers[len(c.workers)-1].SetWriter(w)
}

// Stop cascades to every stage, in order, so each releases its OS
// resources. Stop is idempotent.
func (c *Chain) Stop() {
	c.mu.Lock()
	workers := append([]worker.Worker(nil), c.workers...)
	c.mu.Unlock()
	for _, w := range workers {
		w.Stop()
	}
}

// connectFormat checks a -> b format agreement and constructs (or, via
// the embedder's Connector, reuses) the Buffer joining them.
func (c *Chain) connectFormat(a, b worker.Worker) (*format.Buffer, error) {
	if a.OutputFormat() != b.InputFormat() {
		return nil, &dsperrors.FormatMismatchError{
			Stage:    "chain.connect",
			Got:      stringerFormat(a.OutputFormat()),
			Expected: stringerFormat(b.InputFormat()),
		}
	}
	if c.connect != nil {
		return c.connect.Connect(a, b, nil)
	}
	return format.NewBuffer(a.OutputFormat()), nil
}

type stringerFormat format.Format

func (s stringerFormat) String() string { return format.Format(s).String() }

// wire connects workers[i] -> workers[i+1], creating bufs[i].
func (c *Chain) wire(i, j int) error {
	a, b := c.workers[i], c.workers[j]
	buf, err := c.connectFormat(a, b)
	if err != nil {
		return err
	}
	a.SetWriter(buf)
	b.SetReader(buf.NewReader())
	c.bufs[i] = buf
	return nil
}

// Replace swaps the Worker at index i for w, per spec.md §4.1: disconnect
// the old stage from its neighbors, stop it, install the new one, and
// reconnect. If the new stage's format breaks the chain invariant, the
// error is returned to the caller *before* any reconnection happens, so
// the Chain is left exactly as it was (old stage still installed,
// still running) -- callers must fix up neighboring stages first, as
// spec.md §4.1 requires, rather than relying on this method to paper
// over a bad ordering.
func (c *Chain) Replace(i int, w worker.Worker) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.workers) {
		return fmt.Errorf("chain: index %d out of range", i)
	}

	// Validate format compatibility with neighbors before touching
	// anything.
	if i > 0 && c.workers[i-1].OutputFormat() != w.InputFormat() {
		return &dsperrors.FormatMismatchError{
			Stage:    "chain.replace",
			Got:      stringerFormat(c.workers[i-1].OutputFormat()),
			Expected: stringerFormat(w.InputFormat()),
		}
	}
	if i < len(c.workers)-1 && w.OutputFormat() != c.workers[i+1].InputFormat() {
		return &dsperrors.FormatMismatchError{
			Stage:    "chain.replace",
			Got:      stringerFormat(w.OutputFormat()),
			Expected: stringerFormat(c.workers[i+1].InputFormat()),
		}
	}

	old := c.workers[i]
	c.log.Debug("replacing stage", "index", i, "old", fmt.Sprintf("%T", old), "new", fmt.Sprintf("%T", w))

	old.Stop()
	c.workers[i] = w

	if i > 0 {
		prev := c.workers[i-1]
		buf, err := c.connectFormat(prev, w)
		if err != nil {
			return err
		}
		prev.SetWriter(buf)
		w.SetReader(buf.NewReader())
		c.bufs[i-1] = buf
	}
	if i < len(c.workers)-1 {
		next := c.workers[i+1]
		buf, err := c.connectFormat(w, next)
		if err != nil {
			return err
		}
		w.SetWriter(buf)
		next.SetReader(buf.NewReader())
		c.bufs[i] = buf
	}
	return nil
}

// Pump runs a blocking forward loop suitable for a dedicated goroutine:
// it repeatedly calls read into a scratch buffer and hands the result to
// write, stopping on any error (including io.EOF).
func Pump(read func([]byte) (int, error), write func([]byte) error) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := read(buf)
		if n > 0 {
			if werr := write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}
