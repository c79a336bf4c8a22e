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

package property

import "regexp"

// Validator checks whether a raw property value is acceptable before a
// handler acts on it.
type Validator func(value interface{}) bool

// IntValidator accepts any Go int-ish value.
func IntValidator(value interface{}) bool {
	switch value.(type) {
	case int, int32, int64, uint, uint32, uint64:
		return true
	default:
		return false
	}
}

// NumberValidator accepts ints or floats (spec.md's squelch_level,
// low_cut/high_cut: "number or deleted").
func NumberValidator(value interface{}) bool {
	switch value.(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

// StringValidator accepts any string.
func StringValidator(value interface{}) bool {
	_, ok := value.(string)
	return ok
}

// BoolValidator accepts any bool.
func BoolValidator(value interface{}) bool {
	_, ok := value.(bool)
	return ok
}

// PowerOfTwoValidator accepts an int that is a power of two (for
// digimodes_fft_size).
func PowerOfTwoValidator(value interface{}) bool {
	n, ok := asInt(value)
	if !ok || n <= 0 {
		return false
	}
	return n&(n-1) == 0
}

func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

// modeTokenPattern matches spec.md §6's `mod`/`secondary_mod` grammar.
var modeTokenPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// RegexValidator builds a Validator accepting strings matching re.
func RegexValidator(re *regexp.Regexp) Validator {
	return func(value interface{}) bool {
		s, ok := value.(string)
		return ok && re.MatchString(s)
	}
}

// ModeTokenValidator accepts spec.md §6's `mod`/`secondary_mod` values:
// a lowercase token, or a bool (used to disable a secondary mode).
func ModeTokenValidator(value interface{}) bool {
	if _, ok := value.(bool); ok {
		return true
	}
	s, ok := value.(string)
	return ok && modeTokenPattern.MatchString(s)
}

// Or builds a Validator accepting a value if any of vs accepts it,
// matching owrx.property.validators.OrValidator referenced in
// original_source/owrx/dsp.go.
func Or(vs ...Validator) Validator {
	return func(value interface{}) bool {
		for _, v := range vs {
			if v(value) {
				return true
			}
		}
		return false
	}
}
