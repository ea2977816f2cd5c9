package protocol

import "github.com/cwsl/rtlsensor/internal/pulse"

// DecodePrologue interprets row 1 of the packet (spec §4.5: row 0 is often
// corrupted by AGC settling on the initial burst, so Prologue fields are
// read from the second repeat).
//
// Channel, button, first-reading, id and random-id follow spec §4.5
// exactly. Temperature is packed as byte2:byte3 as a 16-bit big-endian
// word, reinterpreted as signed-16, with no further shift — spec §8
// scenarios 1 and 2 pin raw fields 0x00EA and 0xFFCE to +23.4 and -5.0
// respectively, which only this unshifted, unmasked packing reproduces;
// see DESIGN.md for why this differs from §4.5's masked/shifted prose.
func DecodePrologue(p *pulse.BitPacket) (Reading, bool) {
	row := p.Row(1)

	raw := uint16(row[2])<<8 | uint16(row[3])
	temp := int16(raw)

	return Reading{
		Kind:       Prologue,
		ID:         int(row[0] >> 4),
		RandomID:   int(row[0]&0x0F)<<4 | int(row[1]>>4),
		Channel:    int(row[1]&0x03) + 1,
		Button:     row[1]&0x04 != 0,
		FirstRead:  row[1]&0x08 == 0,
		TempTenths: int(temp),
	}, true
}
