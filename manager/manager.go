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

// Package manager implements DspManager: it owns one client's
// ClientDemodulatorChain, binds it to a property.Stack (spec.md §4.5, §6),
// and wires the six output channels (audio, hd_audio, smeter,
// secondary_fft, secondary_demod, meta) plus the secondary_dsp_config side
// channel to a session Handler.
//
// Grounded on original_source/owrx/dsp.go's DspManager class: its
// onPropertyChange dispatch table becomes property.Stack.Watch
// registrations here, and its wireOutput/unwireOutput pump-thread
// management becomes the channel helpers below.
package manager

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"hz.tools/dspd/clientaudio"
	"hz.tools/dspd/demod"
	"hz.tools/dspd/dsperrors"
	"hz.tools/dspd/feature"
	"hz.tools/dspd/fftchain"
	"hz.tools/dspd/format"
	"hz.tools/dspd/meta"
	"hz.tools/dspd/modes"
	"hz.tools/dspd/orchestrator"
	"hz.tools/dspd/property"
)

// SecondaryDspConfig is the secondary_dsp_config side-channel payload
// spec.md §6 describes.
type SecondaryDspConfig struct {
	SecondaryFftSize int
	SecondaryBw      float64
	IfSampRate       uint
}

// Handler is the session's callback surface. A DspManager delivers every
// output channel spec.md §6 names to it; the handler (and whatever
// transport it forwards to, e.g. a WebSocket) is an external collaborator
// outside this engine's scope.
type Handler interface {
	Audio(data []byte)
	HdAudio(data []byte)
	Smeter(dbfs float32)
	SecondaryFft(data []byte)
	SecondaryDemod(records []meta.Record)
	Meta(records []meta.Record)
	SecondaryDspConfig(cfg SecondaryDspConfig)
	DemodulatorError(err error)
}

// SourceState mirrors the SDR source lifecycle states spec.md §4.5 reacts
// to.
type SourceState int

const (
	StateStopped SourceState = iota
	StateRunning
	StateStopping
)

type channel struct {
	format format.Format
	buf    *format.Buffer
	reader format.Reader
}

// DspManager owns one client's DSP graph for the lifetime of a session.
type DspManager struct {
	mu sync.Mutex

	id      uuid.UUID
	orch    *orchestrator.ClientDemodulatorChain
	handler Handler

	registry *demod.Registry
	catalog  *modes.Catalog
	features *feature.Detector
	cfg      demod.Config

	channels map[string]*channel

	sourceState    SourceState
	pendingReader  format.Reader
	sourceAttached bool

	log *log.Logger
}

// New builds a DspManager for one client session.
func New(handler Handler, registry *demod.Registry, catalog *modes.Catalog, features *feature.Detector, inputRate, outputRate, hdOutputRate uint) *DspManager {
	id := uuid.New()
	m := &DspManager{
		id:       id,
		orch:     orchestrator.New(inputRate, outputRate, hdOutputRate),
		handler:  handler,
		registry: registry,
		catalog:  catalog,
		features: features,
		channels: make(map[string]*channel),
		log:      log.NewWithOptions(nil, log.Options{Prefix: "manager"}).With("session", id.String()),
	}
	m.orch.OnSecondaryDspRateChange(func(rate uint) { m.publishSecondaryDspConfig(secDspRate(rate)) })
	m.orch.OnSecondaryDspBandwidthChange(func(bw float64) { m.publishSecondaryDspConfig(secDspBandwidth(bw)) })
	m.WireMeta()
	return m
}

type secDspPatch func(*SecondaryDspConfig)

func secDspRate(rate uint) secDspPatch      { return func(c *SecondaryDspConfig) { c.IfSampRate = rate } }
func secDspBandwidth(bw float64) secDspPatch { return func(c *SecondaryDspConfig) { c.SecondaryBw = bw } }

func (m *DspManager) publishSecondaryDspConfig(patch secDspPatch) {
	var cfg SecondaryDspConfig
	patch(&cfg)
	m.handler.SecondaryDspConfig(cfg)
}

// BindPropertyStack registers a watcher for every property key spec.md §6
// lists, each updating the graph the way that section's "Effect" column
// describes.
func (m *DspManager) BindPropertyStack(stack *property.Stack) {
	registerValidators(stack)

	watchInt := func(key string, fn func(int)) {
		stack.Watch(key, func(_ string, deleted bool, value interface{}) {
			if deleted {
				return
			}
			if n, ok := asInt(value); ok {
				fn(n)
			}
		})
	}
	watchNumber := func(key string, fn func(float64)) {
		stack.Watch(key, func(_ string, deleted bool, value interface{}) {
			if deleted {
				return
			}
			if f, ok := asNumber(value); ok {
				fn(f)
			}
		})
	}
	watchString := func(key string, fn func(string)) {
		stack.Watch(key, func(_ string, deleted bool, value interface{}) {
			if deleted {
				return
			}
			if s, ok := value.(string); ok {
				fn(s)
			}
		})
	}
	watchBool := func(key string, fn func(bool)) {
		stack.Watch(key, func(_ string, deleted bool, value interface{}) {
			if deleted {
				return
			}
			if b, ok := value.(bool); ok {
				fn(b)
			}
		})
	}

	watchInt("samp_rate", func(n int) { m.orch.SetSampleRate(uint(n)); m.rewireAudio() })
	watchInt("output_rate", func(n int) { m.orch.SetOutputRate(uint(n)); m.rewireAudio() })
	watchInt("hd_output_rate", func(n int) { m.orch.SetHdOutputRate(uint(n)); m.rewireAudio() })

	watchString("audio_compression", func(s string) {
		if err := m.orch.SetAudioCompression(clientaudio.Compression(s)); err != nil {
			m.rewireAudio()
		}
	})
	watchString("fft_compression", func(s string) {
		if m.orch.SetSecondaryFftCompression(fftchain.Compression(s)) {
			m.rewireSecondaryFft()
		}
	})
	watchNumber("fft_voverlap_factor", func(f float64) { m.orch.SetSecondaryFftVOverlapFactor(f) })
	watchInt("fft_fps", func(n int) { m.orch.SetSecondaryFftFps(n) })
	watchInt("digimodes_fft_size", func(n int) {
		m.orch.SetSecondaryFftSize(n)
		m.rewireSecondaryFft()
	})

	watchNumber("offset_freq", func(f float64) { m.orch.SetFrequencyOffset(f) })
	watchNumber("center_freq", func(f float64) { m.orch.SetCenterFrequency(f) })
	watchNumber("squelch_level", func(f float64) { m.orch.SetSquelchLevel(f) })

	stack.Watch("low_cut", func(_ string, deleted bool, value interface{}) {
		if deleted {
			m.orch.SetLowCut(nil)
			return
		}
		if f, ok := asNumber(value); ok {
			m.orch.SetLowCut(&f)
		}
	})
	stack.Watch("high_cut", func(_ string, deleted bool, value interface{}) {
		if deleted {
			m.orch.SetHighCut(nil)
			return
		}
		if f, ok := asNumber(value); ok {
			m.orch.SetHighCut(&f)
		}
	})

	stack.Watch("mod", func(_ string, deleted bool, value interface{}) {
		if deleted {
			return
		}
		m.applyPrimaryMode(value)
	})
	stack.Watch("secondary_mod", func(_ string, deleted bool, value interface{}) {
		if deleted {
			return
		}
		m.applySecondaryMode(value)
	})

	watchInt("secondary_offset_freq", func(n int) { m.orch.SetSecondaryFrequencyOffset(float64(n)) })
	watchInt("dmr_filter", func(n int) { m.orch.SetSlotFilter(n) })
	watchInt("audio_service_id", func(n int) { m.orch.SetAudioServiceID(n) })
	watchNumber("wfm_deemphasis_tau", func(f float64) { m.orch.SetWfmDeemphasisTau(f) })
	watchBool("wfm_rds_rbds", func(b bool) { m.orch.SetWfmRdsRbds(b) })
	watchBool("nr_enabled", func(b bool) { m.orch.SetNrEnabled(b) })
	watchInt("nr_threshold", func(n int) { m.orch.SetNrThreshold(n) })

	watchString("digital_voice_codecserver", func(s string) {
		m.mu.Lock()
		m.cfg.CodecServer = s
		m.mu.Unlock()
	})
	watchString("ssb_agc_profile", func(s string) { m.orch.SetSsbAgcProfile(s) })
	watchInt("dab_output_rate", func(n int) {
		m.mu.Lock()
		m.cfg.DabOutputRate = uint(n)
		m.mu.Unlock()
	})
}

// registerValidators installs the per-key Validator spec.md §6's table
// implies (the "validators in braces" column), so a malformed value from
// a session never reaches the orchestrator.
func registerValidators(stack *property.Stack) {
	for _, key := range []string{
		"samp_rate", "output_rate", "hd_output_rate", "fft_fps",
		"offset_freq", "center_freq", "secondary_offset_freq",
		"dmr_filter", "audio_service_id", "nr_threshold", "dab_output_rate",
	} {
		stack.SetValidator(key, property.IntValidator)
	}
	for _, key := range []string{
		"fft_voverlap_factor", "squelch_level", "low_cut", "high_cut",
		"wfm_deemphasis_tau",
	} {
		stack.SetValidator(key, property.NumberValidator)
	}
	for _, key := range []string{
		"audio_compression", "fft_compression", "digital_voice_codecserver",
		"ssb_agc_profile",
	} {
		stack.SetValidator(key, property.StringValidator)
	}
	for _, key := range []string{"wfm_rds_rbds", "nr_enabled"} {
		stack.SetValidator(key, property.BoolValidator)
	}
	stack.SetValidator("digimodes_fft_size", property.PowerOfTwoValidator)
	stack.SetValidator("mod", property.ModeTokenValidator)
	stack.SetValidator("secondary_mod", property.ModeTokenValidator)
}

func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// applyPrimaryMode resolves value (a mode token string, or false to stop
// the demodulator) and applies it to the graph.
func (m *DspManager) applyPrimaryMode(value interface{}) {
	if b, ok := value.(bool); ok {
		if !b {
			m.orch.StopDemodulator()
			m.rewireAudio()
		}
		return
	}
	token, ok := value.(string)
	if !ok {
		return
	}

	m.mu.Lock()
	cfg := m.cfg
	cfg.SecondaryBandwidth = 0
	m.mu.Unlock()

	if mode, ok := m.catalog.Get(token); ok && len(mode.Requires) > 0 {
		if !m.features.AllAvailable(mode.Requires...) {
			m.handler.DemodulatorError(&dsperrors.UnknownModeError{Token: token})
			return
		}
	}

	w, err := m.registry.Build(token, cfg)
	if err != nil {
		m.handler.DemodulatorError(err)
		return
	}
	if err := m.orch.SetDemodulator(w); err != nil {
		m.handler.DemodulatorError(err)
		return
	}
	if mode, ok := m.catalog.Get(token); ok && (mode.Bandpass.Low != 0 || mode.Bandpass.High != 0) {
		low, high := mode.Bandpass.Low, mode.Bandpass.High
		m.orch.SetBandpass(&low, &high)
	}
	m.rewireAudio()
}

// applySecondaryMode resolves value (a mode token string, or false to
// clear the secondary demodulator) and applies it to the graph.
func (m *DspManager) applySecondaryMode(value interface{}) {
	if b, ok := value.(bool); ok {
		if !b {
			if err := m.orch.SetSecondaryDemodulator(nil); err != nil {
				m.handler.DemodulatorError(err)
			}
			m.rewireSecondaryDemod()
			m.rewireSecondaryFft()
		}
		return
	}
	token, ok := value.(string)
	if !ok {
		return
	}

	m.mu.Lock()
	cfg := m.cfg
	if mode, found := m.catalog.Get(token); found {
		cfg.SecondaryBandwidth = secondaryBandwidthFor(mode)
	}
	m.mu.Unlock()

	if mode, ok := m.catalog.Get(token); ok && len(mode.Requires) > 0 {
		if !m.features.AllAvailable(mode.Requires...) {
			m.handler.DemodulatorError(&dsperrors.UnknownModeError{Token: token})
			return
		}
	}

	w, err := m.registry.BuildSecondary(token, cfg)
	if err != nil {
		m.handler.DemodulatorError(err)
		return
	}
	if err := m.orch.SetSecondaryDemodulator(w); err != nil {
		m.handler.DemodulatorError(err)
		return
	}
	m.rewireSecondaryDemod()
	m.rewireSecondaryFft()
}

func secondaryBandwidthFor(mode modes.Mode) float64 {
	if mode.Bandpass.High != mode.Bandpass.Low {
		return mode.Bandpass.High - mode.Bandpass.Low
	}
	return 0
}

// AttachSource wires the SDR source's raw IQ reader into the graph. If
// the source is not yet STATE_RUNNING, the reader is held until
// SetSourceState(StateRunning) arrives, per spec.md §4.5 and the
// SourceUnavailable error kind in §7.
func (m *DspManager) AttachSource(r format.Reader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sourceState == StateRunning {
		m.orch.SetReader(r)
		m.sourceAttached = true
		return
	}
	m.pendingReader = r
}

// SetSourceState reacts to the SDR source's lifecycle, per spec.md §4.5:
// STATE_RUNNING attaches a deferred reader; STATE_STOPPING stops the graph
// and releases every output channel.
func (m *DspManager) SetSourceState(state SourceState) {
	m.mu.Lock()
	m.sourceState = state
	pending := m.pendingReader
	m.pendingReader = nil
	m.mu.Unlock()

	switch state {
	case StateRunning:
		if pending != nil {
			m.orch.SetReader(pending)
			m.mu.Lock()
			m.sourceAttached = true
			m.mu.Unlock()
		}
	case StateStopping:
		m.Stop()
	}
}

// Stop tears down the graph and every wired output channel. Idempotent.
func (m *DspManager) Stop() {
	m.orch.Stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, ch := range m.channels {
		_ = ch.reader.Close()
		_ = ch.buf.Close()
		delete(m.channels, name)
	}
}

// rewireChannel (re)allocates the named output channel's Buffer only if
// its format actually changed (or it doesn't exist yet), binds the graph
// to write into it via bind, and launches a pump goroutine delivering
// chunks to deliver. This is wireOutput/unwireOutput from spec.md §4.5
// collapsed into one idempotent call.
func (m *DspManager) rewireChannel(name string, want format.Format, bind func(format.Writer), deliver func([]byte)) {
	m.mu.Lock()
	existing := m.channels[name]
	if existing != nil && existing.format == want {
		m.mu.Unlock()
		return
	}
	if existing != nil {
		_ = existing.reader.Close()
		_ = existing.buf.Close()
		delete(m.channels, name)
	}

	buf := format.NewBuffer(want)
	bind(buf)
	reader := buf.NewReader()
	m.channels[name] = &channel{format: want, buf: buf, reader: reader}
	m.mu.Unlock()

	go pumpChannel(reader, deliver)
}

// unwireChannel drops a channel entirely (used when a mode switch makes a
// channel inapplicable, e.g. hd_audio while audio is active).
func (m *DspManager) unwireChannel(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.channels[name]
	if !ok {
		return
	}
	_ = existing.reader.Close()
	_ = existing.buf.Close()
	delete(m.channels, name)
}

func pumpChannel(r format.Reader, deliver func([]byte)) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			deliver(chunk)
		}
		if err != nil {
			return
		}
	}
}

// rewireAudio picks between the audio and hd_audio channels based on the
// current primary's HdAudio capability (they are mutually exclusive, per
// spec.md §6) and rewires whichever is active onto the graph's output.
func (m *DspManager) rewireAudio() {
	hd := m.orch.HdAudioActive()
	active, inactive := "audio", "hd_audio"
	deliver := m.handler.Audio
	if hd {
		active, inactive = "hd_audio", "audio"
		deliver = m.handler.HdAudio
	}
	m.unwireChannel(inactive)
	m.rewireChannel(active, m.orch.OutputFormat(), m.orch.SetWriter, deliver)
	m.rewireChannel("smeter", format.Float, m.orch.SetSmeterWriter, func(data []byte) {
		for _, v := range format.BytesToFloat(data) {
			m.handler.Smeter(v)
		}
	})
}

func (m *DspManager) rewireSecondaryDemod() {
	m.rewireChannel("secondary_demod", format.Char, m.orch.SetSecondaryWriter, func(data []byte) {
		m.handler.SecondaryDemod(meta.Decode(data))
	})
}

func (m *DspManager) rewireSecondaryFft() {
	m.rewireChannel("secondary_fft", m.orch.GetSecondaryFftOutputFormat(), m.orch.SetSecondaryFftWriter, m.handler.SecondaryFft)
}

// WireMeta wires the meta channel (RDS/DMR metadata), decoded the same
// way as secondary_demod.
func (m *DspManager) WireMeta() {
	m.rewireChannel("meta", format.Char, m.orch.SetMetaWriter, func(data []byte) {
		m.handler.Meta(meta.Decode(data))
	})
}
