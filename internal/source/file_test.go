package source

import (
	"context"
	"os"
	"testing"
)

func TestFileAdapterDeliversAllBytesInChunks(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i)
	}

	f, err := os.CreateTemp(t.TempDir(), "replay-*.bin")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	f.Close()

	a := &FileAdapter{Path: f.Name(), BlockSize: 300}

	var got []byte
	var blocks int
	err = a.Run(context.Background(), func(b Block) bool {
		got = append(got, b.Data...)
		blocks++
		return false
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if blocks != 4 {
		t.Fatalf("delivered %d blocks, want 4 (300,300,300,100)", blocks)
	}
	if len(got) != len(data) {
		t.Fatalf("delivered %d bytes total, want %d", len(got), len(data))
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("byte %d mismatch: got %d want %d", i, got[i], data[i])
		}
	}
}

func TestFileAdapterStopRequestedByCallback(t *testing.T) {
	data := make([]byte, 1000)
	f, err := os.CreateTemp(t.TempDir(), "replay-*.bin")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	f.Write(data)
	f.Close()

	a := &FileAdapter{Path: f.Name(), BlockSize: 300}
	blocks := 0
	err = a.Run(context.Background(), func(b Block) bool {
		blocks++
		return blocks == 2
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if blocks != 2 {
		t.Fatalf("delivered %d blocks, want exactly 2 (stop requested)", blocks)
	}
}

func TestFileAdapterMissingFile(t *testing.T) {
	a := &FileAdapter{Path: "/nonexistent/path/to/nowhere.bin"}
	err := a.Run(context.Background(), func(Block) bool { return false })
	if err == nil {
		t.Fatal("expected error opening a missing replay file")
	}
}
