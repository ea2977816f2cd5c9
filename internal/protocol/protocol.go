// Package protocol defines the closed set of sensor protocol profiles
// (Rubicson, Prologue, ...) and their frame decoders. Modeling the
// protocol set as a closed variant (spec §9, "Dynamic dispatch over
// protocols") means adding a sensor family extends this table, not the
// pipeline coordinator.
//
// Grounded on demod_print_bits_packet in
// _examples/original_source/src/rtl_433.c for the field layouts, and on
// the donor's decoder_types.go for the shape of a decoded-reading record
// fanned out to multiple sinks.
package protocol

import (
	"fmt"

	"github.com/cwsl/rtlsensor/internal/pulse"
)

// Kind identifies a sensor protocol family.
type Kind int

const (
	Rubicson Kind = iota
	Prologue
)

func (k Kind) String() string {
	switch k {
	case Rubicson:
		return "rubicson"
	case Prologue:
		return "prologue"
	default:
		return "unknown"
	}
}

// Profile couples a protocol's PWM timing limits with its frame decoder.
type Profile struct {
	Kind   Kind
	Limits pulse.Limits
	Decode func(p *pulse.BitPacket) (Reading, bool)
}

// Reading is a decoded sensor frame, independent of its protocol family.
// Fields not meaningful for a given Kind are left at their zero value; the
// text formatter in internal/sink only emits the fields pinned for
// that Kind by spec §6.
type Reading struct {
	Kind Kind

	ID        int
	RandomID  int
	Channel   int
	Button    bool
	FirstRead bool
	TempTenths int // tenths of a degree Celsius
}

// TempString renders TempTenths as spec §6 pins it: integer part, ".",
// one-digit absolute remainder, sign only on the integer part.
func (r Reading) TempString() string {
	sign := ""
	t := r.TempTenths
	if t < 0 {
		sign = "-"
		t = -t
	}
	return fmt.Sprintf("%s%d.%d", sign, t/10, t%10)
}

// Profiles returns the standard table of enabled protocol profiles, in
// pipeline iteration order. Thresholds are in samples at the filter's
// output rate, reproduced from spec §4.3 ("Why per-protocol instance").
func Profiles() []Profile {
	return []Profile{
		{
			Kind:   Rubicson,
			Limits: pulse.Limits{Short: 1744, Long: 3500, Reset: 5000},
			Decode: DecodeRubicson,
		},
		{
			Kind:   Prologue,
			Limits: pulse.Limits{Short: 3500, Long: 7000, Reset: 15000},
			Decode: DecodePrologue,
		},
	}
}
