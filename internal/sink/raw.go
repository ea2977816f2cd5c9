// Package sink implements the pipeline's output fan-out: the raw filtered
// sample file (spec §6), text decoded-reading lines on stderr (spec §6),
// and the MQTT and WebSocket sinks added by SPEC_FULL.md. The Prometheus
// sink lives in internal/metrics.
//
// Grounded on the donor's pcm_binary.go (framed binary writers) and
// mqtt_publisher.go (publish-on-decode fan-out).
package sink

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// RawFile writes filtered samples in spec §6's raw sink format: native
// -endian signed-16-bit samples, one per filtered sample, written
// contiguously, with no header.
type RawFile struct {
	w   io.Writer
	c   io.Closer
	buf []byte
}

// NewRawFile wraps w as a raw sink. If c is non-nil it is closed by
// Close (used for the file-backed case; the "-" stdout case passes a nil
// closer since the process owns stdout's lifetime).
func NewRawFile(w io.Writer, c io.Closer) *RawFile {
	return &RawFile{w: w, c: c}
}

// NewGzipRawFile wraps w with on-the-fly gzip compression (the SPEC_FULL.md
// `-z` convenience flag layered on top of the spec-mandated raw format;
// the bytes written to disk are compressed, but each decompressed sample
// is still exactly the uncompressed raw format spec §6 pins).
func NewGzipRawFile(w io.WriteCloser) *RawFile {
	gz := gzip.NewWriter(w)
	return &RawFile{w: gz, c: multiCloser{gz, w}}
}

type multiCloser struct {
	first  io.Closer
	second io.Closer
}

func (m multiCloser) Close() error {
	if err := m.first.Close(); err != nil {
		return err
	}
	return m.second.Close()
}

// WriteSamples appends samples to the sink in native byte order. A short
// write is reported as an error so the caller can terminate the stream
// and cancel the source per spec §7.
func (r *RawFile) WriteSamples(samples []int16) error {
	need := len(samples) * 2
	if cap(r.buf) < need {
		r.buf = make([]byte, need)
	}
	r.buf = r.buf[:need]
	for i, s := range samples {
		binary.NativeEndian.PutUint16(r.buf[i*2:], uint16(s))
	}
	n, err := r.w.Write(r.buf)
	if err != nil {
		return fmt.Errorf("write raw sink: %w", err)
	}
	if n != need {
		return fmt.Errorf("short write on raw sink: wrote %d of %d bytes", n, need)
	}
	return nil
}

// Close releases the underlying writer, if this sink owns one.
func (r *RawFile) Close() error {
	if r.c != nil {
		return r.c.Close()
	}
	return nil
}
