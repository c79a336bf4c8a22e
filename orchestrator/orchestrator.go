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

// Package orchestrator implements ClientDemodulatorChain, the per-client
// graph that ties a Selector, a primary demodulator, an optional secondary
// demodulator, a ClientAudioChain and an on-demand FftChain together and
// keeps their sample rates, dial frequency and squelch state consistent
// as the user retunes.
//
// It is grounded on original_source/owrx/dsp.go's ClientDemodulatorChain
// class: setDemodulator, stopDemodulator, setSecondaryDemodulator, the
// _getSelectorOutputRate/_getClientAudioInputRate rate rules, and
// _updateDialFrequency/_syncSquelch are all translated mutator-by-mutator
// into the method set below, built on this repo's chain.Chain and
// selector.Selector rather than reproducing the Python class's direct
// field pokes.
package orchestrator

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"hz.tools/dspd/chain"
	"hz.tools/dspd/clientaudio"
	"hz.tools/dspd/demod"
	"hz.tools/dspd/dsperrors"
	"hz.tools/dspd/fftchain"
	"hz.tools/dspd/format"
	"hz.tools/dspd/selector"
	"hz.tools/dspd/worker"
)

// ClientDemodulatorChain is the three-stage backbone
// [Selector, primary demod, ClientAudioChain] plus the optional secondary
// demodulator and secondary waterfall that can be layered on top of it.
type ClientDemodulatorChain struct {
	mu sync.Mutex

	selector   *selector.Selector
	primary    worker.Worker
	audioChain *clientaudio.ClientAudioChain
	inner      *chain.Chain

	selectorBuffer *format.Buffer
	audioBuffer    *format.Buffer

	secondary         worker.Worker
	secondarySelector *selector.SecondarySelector
	secondaryWriter   format.Writer

	fftChain           *fftchain.FftChain
	fftCfg             fftchain.Config
	secondaryFftWriter format.Writer

	outputRate, hdOutputRate uint

	centerFreq, freqOffset, secondaryFreqOffset float64
	squelchLevel                                float64

	wfmTau     float64
	wfmRbds    bool
	metaWriter format.Writer

	onSecondaryDspRateChange      func(rate uint)
	onSecondaryDspBandwidthChange func(bandwidth float64)

	log *log.Logger
}

// New builds a ClientDemodulatorChain reading IQ at inputRate, with the
// given initial regular and HD client audio rates. The backbone starts
// wired with a Dummy primary, the same as after StopDemodulator.
func New(inputRate, outputRate, hdOutputRate uint) *ClientDemodulatorChain {
	o := &ClientDemodulatorChain{
		outputRate:   outputRate,
		hdOutputRate: hdOutputRate,
		squelchLevel: selector.DisableSquelch,
		wfmTau:       50e-6,
		fftCfg:       fftchain.DefaultConfig(),
		log:          log.NewWithOptions(nil, log.Options{Prefix: "orchestrator"}),
	}

	o.selector = selector.New(inputRate, outputRate)
	primary := demod.NewDummy(format.Float)
	o.primary = primary
	o.audioChain = clientaudio.New(primary.OutputFormat(), outputRate, outputRate, clientaudio.CompressionAdpcm, false, 0)

	inner, err := chain.NewWithConnector([]worker.Worker{o.selector, primary, o.audioChain}, o)
	if err != nil {
		// The selector always emits ComplexFloat, Dummy always declares a
		// ComplexFloat input, and ClientAudioChain is constructed with
		// Dummy's own output format as its input: these three can never
		// disagree at construction time.
		panic(err)
	}
	o.inner = inner
	return o
}

// Connect implements chain.Connector. It retains selectorBuffer across
// primary-demod swaps (so taps -- the secondary selector, the secondary
// FFT -- keep seeing samples without the decimation work being repeated),
// and reopens audioBuffer only when the primary's output format actually
// changes, per spec.md §4.4.
func (o *ClientDemodulatorChain) Connect(a, b worker.Worker, _ *format.Buffer) (*format.Buffer, error) {
	switch {
	case a == worker.Worker(o.selector):
		if o.selectorBuffer == nil || o.selectorBuffer.Format() != a.OutputFormat() {
			o.selectorBuffer = format.NewBuffer(a.OutputFormat())
		}
		return o.selectorBuffer, nil
	case b == worker.Worker(o.audioChain):
		if o.audioBuffer == nil || o.audioBuffer.Format() != a.OutputFormat() {
			o.audioBuffer = format.NewBuffer(a.OutputFormat())
		}
		return o.audioBuffer, nil
	default:
		return format.NewBuffer(a.OutputFormat()), nil
	}
}

// SetReader wires the raw wideband IQ source into the Selector.
func (o *ClientDemodulatorChain) SetReader(r format.Reader) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inner.SetReader(r)
}

// SetWriter wires the regular/HD audio sink at the end of ClientAudioChain.
func (o *ClientDemodulatorChain) SetWriter(w format.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inner.SetWriter(w)
}

// InputFormat implements worker.Worker: the graph always accepts IQ.
func (o *ClientDemodulatorChain) InputFormat() format.Format { return format.ComplexFloat }

// OutputFormat implements worker.Worker: ClientAudioChain's current output.
func (o *ClientDemodulatorChain) OutputFormat() format.Format {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.audioChain.OutputFormat()
}

// HdAudioActive reports whether the current primary demodulator is an
// HdAudio producer, which decides whether the manager should deliver the
// graph's output on the hd_audio channel instead of audio.
func (o *ClientDemodulatorChain) HdAudioActive() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.primary.(worker.HdAudio)
	return ok
}

// SetSsbAgcProfile pushes the ssb_agc_profile property to the primary
// demodulator if it implements worker.AgcProfile.
func (o *ClientDemodulatorChain) SetSsbAgcProfile(profile string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if a, ok := o.primary.(worker.AgcProfile); ok {
		a.SetAgcProfile(profile)
	}
}

// Stop tears down the whole graph: the backbone, any secondary demod and
// selector, and the secondary FFT chain.
func (o *ClientDemodulatorChain) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inner.Stop()
	o.teardownSecondaryLocked()
	o.teardownSecondaryFftLocked()
}

// rate negotiation, per spec.md §4.4.

func (o *ClientDemodulatorChain) rSelLocked() (uint, error) {
	if fr, ok := o.primary.(worker.FixedIfSampleRate); ok {
		return fr.FixedIfSampleRate(), nil
	}
	if o.secondary != nil {
		if fr, ok := o.secondary.(worker.FixedAudioRate); ok {
			r := fr.FixedAudioRate()
			if pr, ok := o.primary.(worker.FixedAudioRate); ok && pr.FixedAudioRate() != r {
				return 0, &dsperrors.IncompatibleRatesError{Primary: pr.FixedAudioRate(), Secondary: r}
			}
			return r, nil
		}
	}
	if _, ok := o.primary.(worker.HdAudio); ok {
		return o.hdOutputRate, nil
	}
	return o.outputRate, nil
}

func (o *ClientDemodulatorChain) rAudLocked() (uint, error) {
	if fr, ok := o.primary.(worker.FixedAudioRate); ok {
		return fr.FixedAudioRate(), nil
	}
	if o.secondary != nil {
		if fr, ok := o.secondary.(worker.FixedAudioRate); ok {
			return fr.FixedAudioRate(), nil
		}
	}
	if _, ok := o.primary.(worker.HdAudio); ok {
		return o.hdOutputRate, nil
	}
	return o.outputRate, nil
}

func (o *ClientDemodulatorChain) rClientLocked() uint {
	if _, ok := o.primary.(worker.HdAudio); ok {
		return o.hdOutputRate
	}
	return o.outputRate
}

func (o *ClientDemodulatorChain) updateDialFrequencyLocked() {
	dial := o.centerFreq + o.freqOffset
	if o.secondarySelector != nil {
		dial += o.secondaryFreqOffset
	}
	push := func(w worker.Worker) {
		if w == nil {
			return
		}
		if d, ok := w.(worker.DialFrequencyReceiver); ok {
			d.SetDialFrequency(dial)
		}
	}
	push(o.primary)
	push(o.secondary)
}

func (o *ClientDemodulatorChain) resyncSquelchLocked() {
	supports := func(w worker.Worker) bool {
		if w == nil {
			return true
		}
		s, ok := w.(worker.SupportsSquelch)
		return ok && s.SupportsSquelch()
	}
	if !supports(o.primary) || !supports(o.secondary) {
		o.selector.SetSquelchLevel(selector.DisableSquelch)
		return
	}
	o.selector.SetSquelchLevel(o.squelchLevel)
}

// SetDemodulator installs new as the primary demodulator, per spec.md
// §4.4's nine-step sequence. Stopping the outgoing stage is left to
// inner.Replace (step 8): some Workers (ExternalProcess) wrap exec.Cmd,
// whose Wait must not be called twice, so this orchestrator never calls
// Stop on a backbone stage outside of Chain.Replace/Chain.Stop (the
// secondary demodulator and selector, which are not in the backbone, are
// stopped directly).
func (o *ClientDemodulatorChain) SetDemodulator(new worker.Worker) error {
	if new == nil {
		return errors.New("orchestrator: demodulator must not be nil")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	_ = o.audioChain.SetFormat(new.OutputFormat()) // step 1, rejection swallowed until step 8

	o.primary = new // steps 2-3

	rSel, err := o.rSelLocked() // step 4
	if err != nil {
		return err
	}
	o.selector.SetOutputRate(rSel)
	rAud, err := o.rAudLocked()
	if err != nil {
		return err
	}
	if setter, ok := new.(worker.SetSampleRate); ok {
		setter.SetSampleRate(rAud)
	}

	if d, ok := new.(worker.DeemphasisTau); ok { // step 5
		d.SetDeemphasisTau(o.wfmTau)
	}
	if d, ok := new.(worker.Rds); ok {
		d.SetRdsRbds(o.wfmRbds)
	}
	if d, ok := new.(worker.MetaProvider); ok && o.metaWriter != nil {
		d.SetMetaWriter(o.metaWriter)
	}

	o.updateDialFrequencyLocked() // step 6
	o.resyncSquelchLocked()       // step 7

	if err := o.inner.Replace(1, new); err != nil { // step 8
		return err
	}

	rAud2, err := o.rAudLocked() // step 9
	if err != nil {
		return err
	}
	o.audioChain.SetInputRate(rAud2)
	o.audioChain.SetClientRate(o.rClientLocked())
	return nil
}

// StopDemodulator replaces the primary with a Dummy of the same output
// format (so ClientAudioChain does not churn), stops the old primary, and
// clears the secondary.
func (o *ClientDemodulatorChain) StopDemodulator() {
	o.mu.Lock()
	defer o.mu.Unlock()

	dummy := demod.NewDummy(o.primary.OutputFormat())
	o.primary = dummy
	if err := o.inner.Replace(1, dummy); err != nil {
		// Dummy's input is always ComplexFloat (the selector's output)
		// and its output format is copied from the stage it replaces,
		// so this can never disagree with either neighbor.
		o.log.Error("replacing primary with dummy", "err", err)
	}
	o.teardownSecondaryLocked()
	o.teardownSecondaryFftLocked()
}

func (o *ClientDemodulatorChain) teardownSecondaryLocked() {
	if o.secondary != nil {
		o.secondary.Stop()
		o.secondary = nil
	}
	if o.secondarySelector != nil {
		o.secondarySelector.Stop()
		o.secondarySelector = nil
	}
}

func (o *ClientDemodulatorChain) teardownSecondaryFftLocked() {
	if o.fftChain != nil {
		o.fftChain.Stop()
		o.fftChain = nil
	}
}

// SetSecondaryDemodulator installs (or, if new is nil, clears) the
// secondary demodulator, per spec.md §4.4. If new's rate is incompatible
// with the primary, the previously active secondary is left running
// untouched (spec.md §7 scenario 6): the old secondary is only torn down
// once the new one has already cleared the rate check.
func (o *ClientDemodulatorChain) SetSecondaryDemodulator(new worker.Worker) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	oldSecondary := o.secondary
	oldSecondarySelector := o.secondarySelector

	o.secondary = new // step 2, trial -- not yet committed

	rSel, err := o.rSelLocked() // step 3
	if err != nil {
		o.secondary = oldSecondary
		return err
	}
	rAud, err := o.rAudLocked()
	if err != nil {
		o.secondary = oldSecondary
		return err
	}

	// Past the point of no return: the new secondary's rates check out,
	// so the old one (if any) can now be safely torn down.
	if oldSecondary != nil {
		oldSecondary.Stop()
	}
	if oldSecondarySelector != nil {
		oldSecondarySelector.Stop()
		o.secondarySelector = nil
	}

	o.selector.SetOutputRate(rSel)
	o.audioChain.SetInputRate(rAud)
	if setter, ok := o.primary.(worker.SetSampleRate); ok {
		setter.SetSampleRate(rAud)
	}

	o.updateDialFrequencyLocked() // step 4
	o.resyncSquelchLocked()

	if new == nil {
		o.syncSecondaryFftLocked(rSel)
		return nil
	}

	if ss, ok := new.(worker.SecondarySelector); ok { // step 5
		bw := ss.SecondaryBandwidth()
		sel := selector.NewSecondary(rSel, bw)
		sel.SetFrequencyOffset(o.secondaryFreqOffset)
		o.secondarySelector = sel
		if o.onSecondaryDspBandwidthChange != nil {
			o.onSecondaryDspBandwidthChange(bw)
		}
	}

	switch { // step 6
	case o.secondarySelector != nil:
		o.secondarySelector.SetReader(o.selectorBuffer.NewReader())
		buf := format.NewBuffer(format.ComplexFloat)
		o.secondarySelector.SetWriter(buf)
		new.SetReader(buf.NewReader())
	case new.InputFormat() == format.ComplexFloat:
		new.SetReader(o.selectorBuffer.NewReader())
	default:
		new.SetReader(o.audioBuffer.NewReader())
	}

	if o.secondaryWriter != nil { // step 7
		new.SetWriter(o.secondaryWriter)
	}

	o.syncSecondaryFftLocked(rSel) // step 8
	return nil
}

// syncSecondaryFftLocked manages the secondary waterfall's lifecycle: it
// exists only while the primary or secondary demod wants one shown.
func (o *ClientDemodulatorChain) syncSecondaryFftLocked(rSel uint) {
	wants := false
	if sf, ok := o.primary.(worker.SecondaryFftShown); ok && sf.SecondaryFftShown() {
		wants = true
	}
	if sf, ok := o.secondary.(worker.SecondaryFftShown); ok && sf.SecondaryFftShown() {
		wants = true
	}
	if !wants {
		o.teardownSecondaryFftLocked()
		return
	}
	if o.fftChain == nil {
		o.fftChain = fftchain.New(o.fftCfg)
		o.fftChain.SetReader(o.selectorBuffer.NewReader())
		if o.secondaryFftWriter != nil {
			o.fftChain.SetWriter(o.secondaryFftWriter)
		}
	}
	o.fftChain.SetSampleRate(rSel)
	if o.onSecondaryDspRateChange != nil {
		o.onSecondaryDspRateChange(rSel)
	}
}

// OnSecondaryDspRateChange registers the callback the manager subscribes
// with for secondary_dsp_config's if_samp_rate field (spec.md §6, §9's
// "orchestrator publishes, manager subscribes" split).
func (o *ClientDemodulatorChain) OnSecondaryDspRateChange(fn func(rate uint)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onSecondaryDspRateChange = fn
}

// OnSecondaryDspBandwidthChange registers the callback for
// secondary_dsp_config's secondary_bw field.
func (o *ClientDemodulatorChain) OnSecondaryDspBandwidthChange(fn func(bandwidth float64)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onSecondaryDspBandwidthChange = fn
}

// Other setters, per spec.md §4.4's "Other setters" list.

func (o *ClientDemodulatorChain) SetLowCut(hz *float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selector.SetLowCut(hz)
}

func (o *ClientDemodulatorChain) SetHighCut(hz *float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selector.SetHighCut(hz)
}

func (o *ClientDemodulatorChain) SetBandpass(low, high *float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selector.SetBandpass(low, high)
}

func (o *ClientDemodulatorChain) SetCenterFrequency(hz float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.centerFreq = hz
	o.updateDialFrequencyLocked()
}

func (o *ClientDemodulatorChain) SetFrequencyOffset(hz float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.freqOffset = hz
	o.selector.SetFrequencyOffset(hz)
	o.updateDialFrequencyLocked()
}

func (o *ClientDemodulatorChain) SetSecondaryFrequencyOffset(hz float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.secondaryFreqOffset = hz
	if o.secondarySelector != nil {
		o.secondarySelector.SetFrequencyOffset(hz)
	}
	o.updateDialFrequencyLocked()
}

// SetAudioCompression delegates to ClientAudioChain. If the returned error
// wraps dsperrors.ErrFormatMismatch (compressed <-> uncompressed change),
// the caller must re-wire the audio output channel.
func (o *ClientDemodulatorChain) SetAudioCompression(c clientaudio.Compression) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.audioChain.SetAudioCompression(c)
}

func (o *ClientDemodulatorChain) SetNrEnabled(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.audioChain.SetNrEnabled(enabled)
}

func (o *ClientDemodulatorChain) SetNrThreshold(threshold int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.audioChain.SetNrThreshold(threshold)
}

func (o *ClientDemodulatorChain) SetSquelchLevel(dbfs float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.squelchLevel = dbfs
	o.resyncSquelchLocked()
}

// applyRatesLocked re-derives R_sel/R_aud/R_client and pushes whichever of
// them the primary's fixed-rate capabilities don't pin down, per
// set_output_rate/set_hd_output_rate's contract in spec.md §4.4.
func (o *ClientDemodulatorChain) applyRatesLocked() {
	if _, fixed := o.primary.(worker.FixedIfSampleRate); !fixed {
		if rSel, err := o.rSelLocked(); err == nil {
			o.selector.SetOutputRate(rSel)
			if rAud, err := o.rAudLocked(); err == nil {
				if setter, ok := o.primary.(worker.SetSampleRate); ok {
					setter.SetSampleRate(rAud)
				}
				if setter, ok := o.secondary.(worker.SetSampleRate); ok {
					setter.SetSampleRate(rAud)
				}
				o.audioChain.SetInputRate(rAud)
			}
		}
	}
	if _, fixed := o.primary.(worker.FixedAudioRate); !fixed {
		o.audioChain.SetClientRate(o.rClientLocked())
	}
}

func (o *ClientDemodulatorChain) SetOutputRate(rate uint) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outputRate = rate
	o.applyRatesLocked()
}

func (o *ClientDemodulatorChain) SetHdOutputRate(rate uint) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hdOutputRate = rate
	o.applyRatesLocked()
}

func (o *ClientDemodulatorChain) SetSampleRate(rate uint) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selector.SetInputRate(rate)
}

func (o *ClientDemodulatorChain) SetSlotFilter(slot int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if sf, ok := o.primary.(worker.SlotFilter); ok {
		sf.SetSlotFilter(slot)
	}
}

func (o *ClientDemodulatorChain) SetAudioServiceID(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if as, ok := o.primary.(worker.AudioServiceSelector); ok {
		as.SetAudioServiceID(id)
	}
}

func (o *ClientDemodulatorChain) SetWfmDeemphasisTau(tau float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.wfmTau = tau
	if d, ok := o.primary.(worker.DeemphasisTau); ok {
		d.SetDeemphasisTau(tau)
	}
}

func (o *ClientDemodulatorChain) SetWfmRdsRbds(rbds bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.wfmRbds = rbds
	if d, ok := o.primary.(worker.Rds); ok {
		d.SetRdsRbds(rbds)
	}
}

func (o *ClientDemodulatorChain) SetMetaWriter(w format.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.metaWriter = w
	if d, ok := o.primary.(worker.MetaProvider); ok {
		d.SetMetaWriter(w)
	}
}

func (o *ClientDemodulatorChain) SetSmeterWriter(w format.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selector.SetPowerWriter(w)
}

func (o *ClientDemodulatorChain) SetSecondaryWriter(w format.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.secondaryWriter = w
	if o.secondary != nil {
		o.secondary.SetWriter(w)
	}
}

func (o *ClientDemodulatorChain) SetSecondaryFftWriter(w format.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.secondaryFftWriter = w
	if o.fftChain != nil {
		o.fftChain.SetWriter(w)
	}
}

func (o *ClientDemodulatorChain) SetSecondaryFftFps(fps int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fftCfg.Fps = fps
	if o.fftChain != nil {
		o.fftChain.SetFps(fps)
	}
}

func (o *ClientDemodulatorChain) SetSecondaryFftVOverlapFactor(factor float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fftCfg.OverlapFactor = factor
	if o.fftChain != nil {
		o.fftChain.SetVOverlapFactor(factor)
	}
}

// SetSecondaryFftSize rebuilds the FFT chain, since its size is structural.
func (o *ClientDemodulatorChain) SetSecondaryFftSize(size int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fftCfg.Size = size
	if o.fftChain != nil {
		o.fftChain.SetSize(size)
	}
}

// SetSecondaryFftCompression returns true if the FFT output format changed
// (adpcm <-> none), meaning the caller must re-wire the secondary_fft
// output channel.
func (o *ClientDemodulatorChain) SetSecondaryFftCompression(c fftchain.Compression) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fftCfg.Compression = c
	if o.fftChain == nil {
		return false
	}
	changed, _ := o.fftChain.SetCompression(c)
	return changed
}

// GetSecondaryFftOutputFormat returns the current (or, if no chain is
// built, the would-be) secondary FFT output format.
func (o *ClientDemodulatorChain) GetSecondaryFftOutputFormat() format.Format {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fftChain != nil {
		return o.fftChain.OutputFormat()
	}
	if o.fftCfg.Compression == fftchain.CompressionAdpcm {
		return format.Char
	}
	return format.Float
}
