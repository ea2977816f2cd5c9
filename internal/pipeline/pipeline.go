// Package pipeline wires the envelope detector, low-pass filter, pulse
// demodulators (or analyzer), and frame decoders into the per-block
// coordinator described in spec §4.6, and fans decoded readings out to
// whatever sinks the caller registers.
//
// Grounded on the rtlsdr_callback block-processing shape in
// _examples/original_source/src/rtl_433.c and on the donor's
// MultiDecoder.onDecodeCallback fan-out in decoder.go/decoder_types.go.
package pipeline

import (
	"fmt"
	"log"

	"github.com/cwsl/rtlsensor/internal/dsp"
	"github.com/cwsl/rtlsensor/internal/protocol"
	"github.com/cwsl/rtlsensor/internal/pulse"
)

// DebugMode gates verbose per-block diagnostics, mirroring the donor's
// package-level DebugMode toggle in main.go.
var DebugMode bool

// Sink receives every decoded reading, independent of how it got there
// (stderr text, MQTT, WebSocket — see internal/sink; Prometheus — see
// internal/metrics).
type Sink interface {
	Publish(protocol.Reading)
}

// RawWriter accepts the filtered sample block for optional archival (spec
// §6 positional output filename, §4.6 "optionally write the filtered
// block to the raw sink"). Implementations must report short writes as an
// error; the coordinator terminates the stream on one (spec §7).
type RawWriter interface {
	WriteSamples(samples []int16) error
}

// Config holds the per-run parameters the coordinator needs: decimation
// exponent, threshold level, analyzer flag, and the (possibly nil) raw
// sink — the "pipeline context" of spec's data model, owned exclusively
// by the Coordinator.
type Config struct {
	Decimation uint
	Level      int32
	Analyze    bool
	RawSink    RawWriter
	// BytesBudget, if > 0, is the remaining byte budget across the whole
	// run (spec §4.6, "If a remaining-byte budget is configured").
	BytesBudget int64
}

// Coordinator owns the filter, the active protocol demodulator instances
// (or the analyzer), and the configured sinks, for the process lifetime
// (spec §5 shared resources).
type Coordinator struct {
	cfg Config

	filter      *dsp.Filter
	demods      []*pulse.Demodulator
	profiles    []protocol.Profile
	analyzer    *pulse.Analyzer
	sinks       []Sink
	overflowSum int

	envScratch []uint16
	fltScratch []int16
}

// New constructs a coordinator. When cfg.Analyze is true, protocol
// demodulators are not constructed (spec §4.4: analyzer mode is mutually
// exclusive with decoding for a given run); otherwise one Demodulator is
// built per entry in protocol.Profiles(), each reporting frames back to
// the coordinator's own decode-and-publish step.
func New(cfg Config, sinks ...Sink) *Coordinator {
	c := &Coordinator{
		cfg:      cfg,
		filter:   dsp.NewFilter(),
		sinks:    sinks,
		profiles: protocol.Profiles(),
	}

	if cfg.Analyze {
		c.analyzer = pulse.NewAnalyzer(func(p pulse.Pulse) {
			log.Printf("pulse start=%d end=%d len=%d avg=%.1f dist=%d",
				p.Start, p.End, p.Length, p.RunningAverage, p.DistanceFromPrior)
		})
	} else {
		for _, prof := range c.profiles {
			prof := prof
			d := pulse.NewDemodulator(prof.Limits, func(bp *pulse.BitPacket) {
				c.decodeAndPublish(prof, bp)
			})
			c.demods = append(c.demods, d)
		}
	}

	return c
}

// ProcessBlock runs one received IQ block through the full stage pipeline
// (spec §4.6). It returns the number of input bytes actually consumed,
// which is less than len(iq) only when the configured byte budget was
// exhausted mid-block; in that case the caller must stop the source.
func (c *Coordinator) ProcessBlock(iq []byte) (consumed int, budgetExhausted bool) {
	length := len(iq)
	if c.cfg.BytesBudget > 0 && int64(length) >= c.cfg.BytesBudget {
		length = int(c.cfg.BytesBudget)
		budgetExhausted = true
	}
	block := iq[:length]

	n := dsp.Detect(block, c.cfg.Decimation)
	env := dsp.Samples(block, n, c.envScratch)
	c.envScratch = env

	if cap(c.fltScratch) < n {
		c.fltScratch = make([]int16, n)
	}
	filtered := c.fltScratch[:n]
	c.filter.Apply(env, filtered)

	if c.cfg.Analyze {
		c.analyzer.Process(filtered, c.cfg.Level)
	} else {
		for _, d := range c.demods {
			d.Process(filtered, c.cfg.Level)
		}
	}

	if c.cfg.RawSink != nil {
		if err := c.cfg.RawSink.WriteSamples(filtered); err != nil {
			log.Printf("short write on raw sink, stopping: %v", err)
			return length, true
		}
	}

	if c.cfg.BytesBudget > 0 {
		c.cfg.BytesBudget -= int64(length)
	}

	return length, budgetExhausted
}

func (c *Coordinator) decodeAndPublish(prof protocol.Profile, bp *pulse.BitPacket) {
	if bp.Overflows > 0 {
		c.overflowSum += bp.Overflows
		if DebugMode {
			log.Printf("%s: bit-packet overflow (%d), clamped and continuing", prof.Kind, bp.Overflows)
		}
	}

	reading, ok := prof.Decode(bp)
	if !ok {
		return
	}
	for _, s := range c.sinks {
		s.Publish(reading)
	}
}

// OverflowCount returns the cumulative number of clamped bit-packet
// overflows across all protocol instances, for the Prometheus overflow
// counter in internal/metrics.
func (c *Coordinator) OverflowCount() int { return c.overflowSum }

// String helper for diagnostics (not used by the decode path itself).
func (c *Coordinator) String() string {
	return fmt.Sprintf("coordinator{decimation=%d level=%d analyze=%v profiles=%d}",
		c.cfg.Decimation, c.cfg.Level, c.cfg.Analyze, len(c.profiles))
}
