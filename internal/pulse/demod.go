package pulse

// Limits holds a protocol's PWM timing thresholds, in samples at the
// filter's output rate. Spec invariant: 0 < Short < Long < Reset.
type Limits struct {
	Short int
	Long  int
	Reset int
}

// Demodulator runs one protocol's threshold/timing state machine over a
// filtered sample stream, packing classified bits into its BitPacket and
// invoking OnFrame whenever inter-burst silence exceeds Reset.
//
// State variables and transition order are a direct port of pwm_demod in
// _examples/original_source/src/rtl_433.c: five unconditional per-sample
// checks executed in a fixed order, preserved here exactly so that a
// captured sample file decodes bit-for-bit identically (spec §4.3,
// "Tie-breaks").
type Demodulator struct {
	Limits Limits
	Packet *BitPacket

	// OnFrame is invoked with the just-completed packet when inter-burst
	// silence exceeds Limits.Reset. The packet is reset immediately
	// after the callback returns.
	OnFrame func(*BitPacket)

	pulseCount    bool
	pulseDistance bool
	sampleCounter int
	startC        bool
}

// NewDemodulator constructs a protocol instance with an empty bit packet.
func NewDemodulator(limits Limits, onFrame func(*BitPacket)) *Demodulator {
	return &Demodulator{
		Limits:  limits,
		Packet:  NewBitPacket(),
		OnFrame: onFrame,
	}
}

// Process runs the state machine over one block of filtered samples
// against the given threshold level. level is the same squared-magnitude
// unit as the envelope (spec's level_limit).
func (d *Demodulator) Process(samples []int16, level int32) {
	for _, s := range samples {
		above := int32(s) > level
		below := int32(s) < level

		if above {
			d.pulseCount = true
			d.startC = true
		}
		if d.pulseCount && below {
			d.pulseDistance = true
			d.sampleCounter = 0
			d.pulseCount = false
		}
		if d.startC {
			d.sampleCounter++
		}
		if d.pulseDistance && above {
			switch {
			case d.sampleCounter < d.Limits.Short:
				d.Packet.AddBit(0)
			case d.sampleCounter < d.Limits.Long:
				d.Packet.AddBit(1)
			default:
				d.Packet.NextRow()
				d.pulseCount = false
				d.sampleCounter = 0
			}
			d.pulseDistance = false
		}
		if d.sampleCounter > d.Limits.Reset {
			d.startC = false
			d.sampleCounter = 0
			d.pulseDistance = false
			if d.OnFrame != nil {
				d.OnFrame(d.Packet)
			}
			d.Packet.Reset()
		}
	}
}

// Reset clears all demodulator state and the bit packet, for an explicit
// frame boundary outside the normal silence-timeout path.
func (d *Demodulator) Reset() {
	d.pulseCount = false
	d.pulseDistance = false
	d.sampleCounter = 0
	d.startC = false
	d.Packet.Reset()
}
