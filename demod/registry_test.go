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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hz.tools/dspd/dsperrors"
	"hz.tools/dspd/worker"
)

func TestRegistryBuildsEveryDefaultPrimaryMode(t *testing.T) {
	r := NewRegistry()
	for _, token := range []string{"nfm", "wfm", "am", "usb", "lsb", "dmr", "dab", "nrsc5", "adsb"} {
		w, err := r.Build(token, Config{})
		require.NoError(t, err, token)
		assert.NotNil(t, w, token)
	}
}

func TestRegistryBuildsEveryDefaultSecondaryMode(t *testing.T) {
	r := NewRegistry()
	for _, token := range []string{"ft8", "wspr", "packet"} {
		w, err := r.BuildSecondary(token, Config{})
		require.NoError(t, err, token)
		assert.NotNil(t, w, token)
	}
}

func TestRegistryBuildUnknownModeReturnsTypedError(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build("not-a-mode", Config{})
	require.Error(t, err)
	var typed *dsperrors.UnknownModeError
	assert.ErrorAs(t, err, &typed)
	assert.ErrorIs(t, err, dsperrors.ErrUnknownMode)
}

func TestRegistryWfmDefaultsDeemphasisWhenZero(t *testing.T) {
	r := NewRegistry()
	w, err := r.Build("wfm", Config{WfmDeemphasisTau: 0})
	require.NoError(t, err)
	wfm, ok := w.(*WideFM)
	require.True(t, ok)
	assert.Equal(t, 50e-6, wfm.tau)
}

func TestRegistryRegisterOverridesExistingToken(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register("nfm", func(Config) (worker.Worker, error) {
		called = true
		return NewNarrowFM(), nil
	})
	_, err := r.Build("nfm", Config{})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestDabDefaultsOutputRateWhenZero(t *testing.T) {
	d := NewDAB(0)
	assert.Equal(t, uint(48000), d.FixedAudioRate())
	assert.Equal(t, uint(2048000), d.FixedIfSampleRate())
}
