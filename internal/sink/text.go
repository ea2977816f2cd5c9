package sink

import (
	"fmt"
	"io"

	"github.com/cwsl/rtlsensor/internal/protocol"
)

// TextSink writes decoded readings to an io.Writer (normally os.Stderr)
// in the exact line format spec §6 pins, one block per packet ending
// with a blank line.
type TextSink struct {
	w io.Writer
}

// NewTextSink wraps w.
func NewTextSink(w io.Writer) *TextSink { return &TextSink{w: w} }

// Publish implements pipeline.Sink.
func (t *TextSink) Publish(r protocol.Reading) {
	switch r.Kind {
	case protocol.Prologue:
		fmt.Fprintf(t.w, "button = %d\n", boolToInt(r.Button))
		fmt.Fprintf(t.w, "first reading = %d\n", boolToInt(r.FirstRead))
		fmt.Fprintf(t.w, "temp = %s\n", r.TempString())
		fmt.Fprintf(t.w, "channel = %d\n", r.Channel)
		fmt.Fprintf(t.w, "id = %d\n", r.ID)
		fmt.Fprintf(t.w, "rid = %d\n", r.RandomID)
		fmt.Fprintf(t.w, "hrid = %02x\n", r.RandomID)
		fmt.Fprintln(t.w)
	case protocol.Rubicson:
		fmt.Fprintf(t.w, "rid = %x\n", r.ID)
		fmt.Fprintf(t.w, "temp = %s\n", r.TempString())
		fmt.Fprintln(t.w)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
