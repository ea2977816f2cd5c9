package dsp

// FilterOrder is the order of the IIR low-pass filter (one sample of
// history retained across calls).
const FilterOrder = 1

// FScale is the Q15 fractional-bit count used by the fixed-point filter
// coefficients.
const FScale = 15

// Reference Q15 coefficients for a Butterworth(1, 0.01) low-pass,
// reproduced from _examples/original_source/src/rtl_433.c (a[1],
// b[0], b[1]). a1 is applied additively, matching the legacy
// accumulator exactly: y[n] = (a1*y[n-1] + b0*x[n] + b1*x[n-1]) >> (FScale-1),
// each product pre-shifted right by one to avoid 32-bit overflow. See
// DESIGN.md ("Filter cold-start / shift precedence") for how the shift is
// resolved.
const (
	coeffA1 = 31755
	coeffB0 = 507
	coeffB1 = 507
)

// Filter is a first-order fixed-point IIR low-pass filter. Its history is
// not shared between protocol instances: one Filter precedes demodulation
// for the whole pipeline, per spec's data model.
type Filter struct {
	lastInput  uint16
	lastOutput int16
	primed     bool
}

// NewFilter returns a filter with zeroed history, ready for the first block
// of a stream.
func NewFilter() *Filter {
	return &Filter{}
}

// Apply filters in into out, both of length n, using narrow 32-bit
// arithmetic with the pre-shift-by-one discipline described in spec §4.2.
// History carries across calls so that filter phase is continuous across
// block boundaries (spec's filter continuity testable property).
func (f *Filter) Apply(in []uint16, out []int16) {
	n := len(in)
	if n == 0 {
		return
	}
	prevIn := f.lastInput
	prevOut := f.lastOutput
	if !f.primed {
		// First call ever: spec's open question flags the legacy
		// implementation reading y[-1] from before the buffer start.
		// We instead seed explicitly from zeroed history, which is
		// equivalent to the legacy sentinel on a cold start.
		prevOut = 0
		f.primed = true
	}

	for i := 0; i < n; i++ {
		acc := (int32(coeffA1)*int32(prevOut))>>1 +
			(int32(coeffB0)*int32(in[i]))>>1 +
			(int32(coeffB1)*int32(prevIn))>>1
		y := int16(acc >> (FScale - 1))
		out[i] = y
		prevIn = in[i]
		prevOut = y
	}

	f.lastInput = prevIn
	f.lastOutput = prevOut
}

// ApplyWide is functionally equivalent to Apply but accumulates in 64-bit
// and shifts once instead of pre-shifting each term, avoiding the narrow
// intermediate entirely. Each term's low bit is cleared before the sum so
// that rounding is identical to Apply's at the LSB; it is exercised by
// filter_test.go's comparison with Apply and otherwise unused, kept behind
// its own entry point rather than a runtime flag so the bit-exact Apply
// path stays the default for compatibility with legacy captures.
func (f *Filter) ApplyWide(in []uint16, out []int16) {
	n := len(in)
	if n == 0 {
		return
	}
	prevIn := f.lastInput
	prevOut := f.lastOutput
	if !f.primed {
		prevOut = 0
		f.primed = true
	}

	for i := 0; i < n; i++ {
		t0 := int64(coeffA1) * int64(prevOut)
		t1 := int64(coeffB0) * int64(in[i])
		t2 := int64(coeffB1) * int64(prevIn)
		acc := t0 + t1 + t2 - (t0 & 1) - (t1 & 1) - (t2 & 1)
		y := int16(acc >> FScale)
		out[i] = y
		prevIn = in[i]
		prevOut = y
	}

	f.lastInput = prevIn
	f.lastOutput = prevOut
}

// Reset clears filter history, returning the filter to its cold-start
// state.
func (f *Filter) Reset() {
	*f = Filter{}
}
