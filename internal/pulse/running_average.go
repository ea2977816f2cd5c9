package pulse

import "gonum.org/v1/gonum/stat"

// maxRunningWindow bounds how many recent pulse lengths feed the running
// average, so a long capture doesn't grow this unboundedly; the oldest
// samples are dropped once the window fills.
const maxRunningWindow = 4096

// runningMean returns the mean pulse length over the trailing window,
// using gonum/stat.Mean the way the donor's audio_extensions/morse/
// spectrum_analyzer.go and audio_extensions/ft8/waterfall.go compute
// signal statistics, rather than a hand-rolled running sum.
func runningMean(lengths []float64) float64 {
	if len(lengths) > maxRunningWindow {
		lengths = lengths[len(lengths)-maxRunningWindow:]
	}
	if len(lengths) == 0 {
		return 0
	}
	return stat.Mean(lengths, nil)
}
