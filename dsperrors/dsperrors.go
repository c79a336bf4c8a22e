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

// Package dsperrors defines the error kinds the DSP engine surfaces to its
// orchestrator and, ultimately, to the client session.
package dsperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors matching the kinds enumerated in the engine's error
// handling design. Use errors.Is against these, or errors.As against the
// typed variants below when the caller needs the offending detail.
var (
	// ErrFormatMismatch means two adjacent stages disagree on sample
	// format. Expected during mode transitions.
	ErrFormatMismatch = errors.New("dspd: format mismatch")

	// ErrIncompatibleRates means the primary and secondary demodulator
	// demand conflicting fixed audio rates. Fatal for the transition that
	// raised it.
	ErrIncompatibleRates = errors.New("dspd: incompatible fixed audio rates")

	// ErrUnknownMode means a mode token did not resolve to a registered
	// demodulator constructor.
	ErrUnknownMode = errors.New("dspd: unknown mode")

	// ErrExternalProcessFailure means a spawned decoder subprocess exited
	// unexpectedly.
	ErrExternalProcessFailure = errors.New("dspd: external process failure")

	// ErrSourceUnavailable means the SDR source is not in the running
	// state yet.
	ErrSourceUnavailable = errors.New("dspd: source unavailable")
)

// FormatMismatchError carries the two formats that failed to line up.
type FormatMismatchError struct {
	Stage    string
	Got      fmt.Stringer
	Expected fmt.Stringer
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("dspd: format mismatch at %s: got %s, expected %s", e.Stage, e.Got, e.Expected)
}

func (e *FormatMismatchError) Unwrap() error { return ErrFormatMismatch }

// IncompatibleRatesError carries the two conflicting fixed audio rates.
type IncompatibleRatesError struct {
	Primary, Secondary uint
}

func (e *IncompatibleRatesError) Error() string {
	return fmt.Sprintf("dspd: primary wants fixed audio rate %d, secondary wants %d", e.Primary, e.Secondary)
}

func (e *IncompatibleRatesError) Unwrap() error { return ErrIncompatibleRates }

// UnknownModeError carries the unresolved mode token.
type UnknownModeError struct {
	Token string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("dspd: unknown mode %q", e.Token)
}

func (e *UnknownModeError) Unwrap() error { return ErrUnknownMode }

// ExternalProcessFailureError carries the process name and exit detail.
type ExternalProcessFailureError struct {
	Name string
	Err  error
}

func (e *ExternalProcessFailureError) Error() string {
	return fmt.Sprintf("dspd: external process %q failed: %v", e.Name, e.Err)
}

func (e *ExternalProcessFailureError) Unwrap() error { return ErrExternalProcessFailure }
