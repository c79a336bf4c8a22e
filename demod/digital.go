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
	"time"

	"hz.tools/dspd/format"
)

// DigitalVoice wraps an ExternalProcess talking to an AMBE codec server
// (digital_voice_codecserver) for DMR/D-STAR/NXDN/P25-style modes, adding
// the SlotFilter and AudioServiceSelector capabilities those protocols
// need.
type DigitalVoice struct {
	*ExternalProcess
	slot      int
	serviceID int
}

// NewDMR builds a DigitalVoice demodulator that shells out to a
// streamer-style external process talking to the given AMBE codec
// server endpoint.
func NewDMR(codecServer string) *DigitalVoice {
	return &DigitalVoice{
		ExternalProcess: NewExternalProcess(ExternalProcessConfig{
			Name:            "streamer",
			Args:            []string{"-d", "dmr", "-c", codecServer},
			InputFormat:     format.ComplexFloat,
			OutputFormat:    format.Short,
			ShutdownTimeout: 2 * time.Second,
		}),
	}
}

func (d *DigitalVoice) SetSlotFilter(slot int)        { d.slot = slot }
func (d *DigitalVoice) SetAudioServiceID(id int)      { d.serviceID = id }
func (d *DigitalVoice) FixedAudioRate() uint          { return 8000 }

// DAB wraps dablin as an ExternalProcess, advertising FixedIfSampleRate
// (the 2.048Msps DAB channel raster) and AudioServiceSelector (service
// multiplex selection).
type DAB struct {
	*ExternalProcess
	serviceID  int
	outputRate uint
}

// NewDAB builds a DAB demodulator targeting the given output rate
// (dab_output_rate, default 48000).
func NewDAB(outputRate uint) *DAB {
	if outputRate == 0 {
		outputRate = 48000
	}
	return &DAB{
		ExternalProcess: NewExternalProcess(ExternalProcessConfig{
			Name:         "dablin",
			InputFormat:  format.ComplexFloat,
			OutputFormat: format.Short,
		}),
		outputRate: outputRate,
	}
}

func (d *DAB) FixedIfSampleRate() uint     { return 2048000 }
func (d *DAB) FixedAudioRate() uint        { return d.outputRate }
func (d *DAB) SetAudioServiceID(id int)    { d.serviceID = id }

// NRSC5 wraps nrsc5 for HD Radio (FM/AM in-band on-channel digital).
type NRSC5 struct {
	*ExternalProcess
}

func NewNRSC5() *NRSC5 {
	return &NRSC5{ExternalProcess: NewExternalProcess(ExternalProcessConfig{
		Name:         "nrsc5",
		InputFormat:  format.ComplexFloat,
		OutputFormat: format.Short,
	})}
}

func (d *NRSC5) HdAudio() bool { return true }
