package pulse

import "testing"

func TestAnalyzerReportsPulseLengthAndDistance(t *testing.T) {
	var got []Pulse
	a := NewAnalyzer(func(p Pulse) { got = append(got, p) })

	const level = int32(0)
	high := int16(50)
	low := int16(-50)

	// Pulse 1: samples 0..4 high (5 samples), then low.
	a.Process(repeatSample(high, 5), level)
	a.Process(repeatSample(low, 10), level)

	// Pulse 2: 3 samples high, then low again.
	a.Process(repeatSample(high, 3), level)
	a.Process(repeatSample(low, 4), level)

	if len(got) != 2 {
		t.Fatalf("expected 2 reported pulses, got %d", len(got))
	}
	// The sample counter advances once more (the falling-edge sample
	// itself) before a pulse's length is measured, the same off-by-one
	// pwm_analyze's own counter++ placement produces; a 5-sample high
	// run reports length 6, a 3-sample run reports length 4.
	if got[0].Length != 6 {
		t.Fatalf("pulse 1 length = %d, want 6", got[0].Length)
	}
	if got[1].Length != 4 {
		t.Fatalf("pulse 2 length = %d, want 4", got[1].Length)
	}
	if got[1].RunningAverage != 5 {
		t.Fatalf("running average after 2 pulses of length 6,4 = %v, want 5", got[1].RunningAverage)
	}
}

func TestAnalyzerWindowIsBounded(t *testing.T) {
	a := NewAnalyzer(nil)
	const level = int32(0)
	for i := 0; i < maxRunningWindow+500; i++ {
		a.Process([]int16{50, -50}, level)
	}
	if len(a.lengths) > maxRunningWindow {
		t.Fatalf("lengths window grew to %d, want <= %d", len(a.lengths), maxRunningWindow)
	}
}
