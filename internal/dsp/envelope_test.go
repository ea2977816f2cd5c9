package dsp

import "testing"

func TestDetectEnvelopeBounds(t *testing.T) {
	// I=Q=127 post bias-correct is spec §8 scenario 4's pinned maximum:
	// 127*127 + 127*127 = 32258.
	buf := []byte{0xFF, 0xFF} // 0xFF ^ 0x80 = 0x7F = 127 as int8
	n := Detect(buf, 0)
	if n != 1 {
		t.Fatalf("Detect returned %d samples, want 1", n)
	}
	samples := Samples(buf, n, nil)
	if samples[0] != 32258 {
		t.Fatalf("envelope = %d, want 32258", samples[0])
	}
	if samples[0] > MaxEnvelope {
		t.Fatalf("envelope %d exceeds MaxEnvelope %d", samples[0], MaxEnvelope)
	}

	// Envelope values stay within [0, 32258] across the range a biased
	// 8-bit ADC actually produces (raw byte 1..255, i.e. post-XOR int8
	// -127..127); only the unreachable raw-zero corner would exceed it.
	for i := 1; i < 256; i += 17 {
		for q := 1; q < 256; q += 17 {
			b := []byte{byte(i), byte(q)}
			m := Detect(b, 0)
			s := Samples(b, m, nil)
			if s[0] > 32258 {
				t.Fatalf("envelope(%d,%d) = %d, exceeds 32258", i, q, s[0])
			}
		}
	}
}

func TestDetectDecimation(t *testing.T) {
	// Four complex samples (8 bytes), decimation=1 keeps every other one.
	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = byte(i)
	}
	n := Detect(buf, 1)
	if n != 2 {
		t.Fatalf("Detect with decimation=1 over 4 samples returned %d, want 2", n)
	}
}

func TestDetectBlockLengthInvariant(t *testing.T) {
	// For every input block, output filtered length equals
	// input_bytes / 2^(d+1) exactly (spec §8 invariant).
	for _, d := range []uint{0, 1, 2, 3} {
		inputBytes := 1 << (d + 4) // multiple of 2^(d+1)
		buf := make([]byte, inputBytes)
		n := Detect(buf, d)
		want := inputBytes / (1 << (d + 1))
		if n != want {
			t.Fatalf("decimation=%d: Detect returned %d, want %d", d, n, want)
		}
	}
}

func TestSamplesReusesBackingArray(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	dst := make([]uint16, 0, 4)
	out := Samples(buf, 2, dst)
	if cap(out) != cap(dst) {
		t.Fatalf("Samples allocated a new backing array despite sufficient capacity: cap(out)=%d cap(dst)=%d", cap(out), cap(dst))
	}
}
