package protocol

import "github.com/cwsl/rtlsensor/internal/pulse"

// DecodeRubicson interprets row 0 of the packet (spec §4.5: row 0 is used
// for Rubicson, since later rows are more reliable for Prologue but the
// legacy decoder reads Rubicson's temperature/ID from the first row
// regardless).
//
// Temperature is a 12-bit signed big-endian value: pack byte1:byte2 as a
// 16-bit big-endian word, then arithmetic-shift right by 4 to recover the
// signed 12-bit reading (spec §8 scenario 3 pins {0xA0,0x07,0xB0,0x00,0x00}
// to temp=12.3, which this formula reproduces exactly; see DESIGN.md for
// why this differs from §4.5's abbreviated (byte1<<12)|(byte2<<4) prose).
// ID is the upper nibble of byte 0.
func DecodeRubicson(p *pulse.BitPacket) (Reading, bool) {
	row := p.Row(0)

	raw := uint16(row[1])<<8 | uint16(row[2])
	temp := int16(raw) >> 4

	return Reading{
		Kind:       Rubicson,
		ID:         int(row[0] >> 4),
		TempTenths: int(temp),
	}, true
}
