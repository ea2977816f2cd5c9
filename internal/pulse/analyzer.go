package pulse

// Pulse describes one detected on-off-keyed pulse, as reported by Analyzer.
type Pulse struct {
	Start            int64 // sample index of rising edge
	End              int64 // one past the sample index of the falling edge
	Length           int64 // End - Start
	RunningAverage   float64
	DistanceFromPrior int64 // samples since the end of the previous pulse
}

// Analyzer is the alternative consumer of the filtered block described in
// spec §4.4: it does not decode bits, it reports pulse timing. Mutually
// exclusive with decoding for a given run (spec §4.4).
//
// Grounded on the pwm_analyze function in
// _examples/original_source/src/rtl_433.c, with the running average
// computed via gonum/stat.Mean (see running_average.go) instead of a
// hand-rolled accumulator, per SPEC_FULL.md's domain-stack wiring of
// gonum.
type Analyzer struct {
	OnPulse func(Pulse)

	counter    int64
	armed      bool
	rising     bool
	pulseStart int64
	pulseEnd   int64

	lengths []float64
}

// NewAnalyzer returns an analyzer ready to consume a stream starting at
// sample 0.
func NewAnalyzer(onPulse func(Pulse)) *Analyzer {
	return &Analyzer{OnPulse: onPulse, armed: true}
}

// Process scans samples for edges at the given threshold, emitting a Pulse
// for each detected high pulse. Edge detection uses the same strict
// threshold as the demodulator (spec §4.3/§4.4).
func (a *Analyzer) Process(samples []int16, level int32) {
	for _, s := range samples {
		above := int32(s) > level
		below := int32(s) < level

		if above && a.armed {
			a.pulseStart = a.counter
			a.armed = false
			a.rising = true
		}

		a.counter++

		if below && a.rising {
			length := a.counter - a.pulseStart
			a.lengths = append(a.lengths, float64(length))
			if len(a.lengths) > maxRunningWindow {
				a.lengths = a.lengths[len(a.lengths)-maxRunningWindow:]
			}
			distance := a.pulseStart - a.pulseEnd
			a.pulseEnd = a.counter
			a.rising = false

			if a.OnPulse != nil {
				a.OnPulse(Pulse{
					Start:             a.pulseStart,
					End:               a.pulseEnd,
					Length:            length,
					RunningAverage:    runningMean(a.lengths),
					DistanceFromPrior: distance,
				})
			}
		}
		if below {
			a.armed = true
		}
	}
}
