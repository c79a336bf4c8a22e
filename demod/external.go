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
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"hz.tools/dspd/dsperrors"
	"hz.tools/dspd/format"
	"hz.tools/dspd/worker"
)

// ExternalProcessConfig describes one of the named external decoders
// spec.md §6 lists (streamer, direwolf, dump1090, dablin, jt9, wsprd,
// nrsc5, ...): a host executable fed IQ or audio on stdin, producing
// bytes on stdout.
type ExternalProcessConfig struct {
	Name         string
	Args         []string
	InputFormat  format.Format
	OutputFormat format.Format
	// ShutdownTimeout bounds how long Stop waits for the process to exit
	// before sending a termination signal.
	ShutdownTimeout time.Duration
}

// ExternalProcess models a spawned decoder subprocess as a Worker: a
// feeder goroutine copies the Reader into the child's stdin, and a
// drainer goroutine copies the child's stdout into the Writer, per
// spec.md §9 ("model each as a Worker that owns a child process and a
// pair of copy threads").
type ExternalProcess struct {
	worker.Base
	cfg ExternalProcessConfig
	log *log.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	started bool
	onFail  func(error)
}

// NewExternalProcess builds (but does not yet start) an ExternalProcess
// Worker for the given config.
func NewExternalProcess(cfg ExternalProcessConfig) *ExternalProcess {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 2 * time.Second
	}
	return &ExternalProcess{
		Base: worker.NewBase(cfg.InputFormat, cfg.OutputFormat),
		cfg:  cfg,
		log:  log.NewWithOptions(nil, log.Options{Prefix: "demod." + cfg.Name}),
	}
}

// OnFailure registers a callback invoked once if the child process exits
// unexpectedly (spec.md §7's ExternalProcessFailure). The callback fires
// at most once.
func (e *ExternalProcess) OnFailure(fn func(error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFail = fn
}

func (e *ExternalProcess) SetReader(r format.Reader) {
	e.Base.SetReader(r)
	e.start(r)
}

func (e *ExternalProcess) SetWriter(w format.Writer) {
	e.Base.SetWriter(w)
}

func (e *ExternalProcess) start(r format.Reader) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	cmd := exec.CommandContext(ctx, e.cfg.Name, e.cfg.Args...)
	e.cmd = cmd
	e.mu.Unlock()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		e.fail(err)
		return
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		e.fail(err)
		return
	}

	if err := cmd.Start(); err != nil {
		e.fail(err)
		return
	}

	go e.feed(r, stdin)
	go e.drain(stdout)

	go func() {
		err := cmd.Wait()
		if err != nil {
			e.log.Warn("external decoder exited", "name", e.cfg.Name, "err", err)
			e.fail(err)
		}
	}()
}

func (e *ExternalProcess) feed(r format.Reader, stdin io.WriteCloser) {
	defer stdin.Close()
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := stdin.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (e *ExternalProcess) drain(stdout io.ReadCloser) {
	defer stdout.Close()
	buf := make([]byte, 32*1024)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			e.mu.Lock()
			w := e.Base.Writer()
			e.mu.Unlock()
			if w != nil {
				_, _ = w.Write(buf[:n])
			}
		}
		if err != nil {
			e.mu.Lock()
			w := e.Base.Writer()
			e.mu.Unlock()
			if w != nil {
				_ = w.Close()
			}
			return
		}
	}
}

func (e *ExternalProcess) fail(err error) {
	e.mu.Lock()
	cb := e.onFail
	e.onFail = nil
	e.mu.Unlock()
	if cb != nil {
		cb(&dsperrors.ExternalProcessFailureError{Name: e.cfg.Name, Err: err})
	}
}

// Stop waits up to ShutdownTimeout for the process to exit, then cancels
// the process's context (SIGKILL via exec.CommandContext). Stop does not
// close the child's stdin itself: stdin is closed only by the feeder
// goroutine, once its Reader returns an error.
func (e *ExternalProcess) Stop() {
	e.mu.Lock()
	cmd := e.cmd
	cancel := e.cancel
	e.mu.Unlock()
	if cmd == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(e.cfg.ShutdownTimeout):
		if cancel != nil {
			cancel()
		}
		<-done
	}
}
