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

package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogHasNamedEntries(t *testing.T) {
	c := Default()
	for _, token := range []string{"nfm", "wfm", "am", "usb", "lsb", "dmr", "dab", "nrsc5", "adsb", "ft8", "wspr", "packet"} {
		_, ok := c.Get(token)
		assert.True(t, ok, "catalog missing %q", token)
	}
	_, ok := c.Get("not-a-mode")
	assert.False(t, ok)
}

func TestDigitalServiceModesHaveNoAnalogBandpass(t *testing.T) {
	c := Default()
	for _, token := range []string{"dmr", "dab", "nrsc5", "adsb"} {
		m, ok := c.Get(token)
		require.True(t, ok)
		assert.Zero(t, m.Bandpass.Low)
		assert.Zero(t, m.Bandpass.High)
		assert.True(t, m.Service)
	}
}

func TestSecondaryModesCarryAnalogModeAndRequires(t *testing.T) {
	c := Default()
	ft8, ok := c.Get("ft8")
	require.True(t, ok)
	assert.Equal(t, "usb", ft8.AnalogMode)
	assert.True(t, ft8.Secondary)
	assert.True(t, ft8.SecondaryFft)
	assert.Contains(t, ft8.Requires, "jt9")
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	doc := []byte(`
modes:
  - token: nfm
    bandpass: {low: -5000, high: 5000}
    squelch: true
  - token: custom
    bandpass: {low: -1000, high: 1000}
`)
	c, err := Load(doc)
	require.NoError(t, err)

	nfm, ok := c.Get("nfm")
	require.True(t, ok)
	assert.Equal(t, -5000.0, nfm.Bandpass.Low)

	custom, ok := c.Get("custom")
	require.True(t, ok)
	assert.Equal(t, 1000.0, custom.Bandpass.High)

	assert.ElementsMatch(t, []string{"nfm", "custom"}, c.Tokens())
}
