package source

import (
	"context"
	"fmt"
	"sync"
)

// Device is the external collaborator spec §1 describes only by
// interface: opening the dongle, setting frequency/gain/rate, and
// delivering samples. A concrete implementation wraps librtlsdr (or any
// compatible SDR front end) outside this module; internal/source only
// depends on this seam.
type Device interface {
	SetSampleRate(hz uint32) error
	SetCenterFreq(hz uint32) error
	SetGain(tenthsDB int) error // 0 selects automatic gain
	ResetBuffers() error
	// ReadAsync delivers blockSize-byte blocks to cb until Close is
	// called or the device fails, mirroring rtlsdr_read_async's
	// callback-driven delivery model.
	ReadAsync(blockSize int, cb func([]byte)) error
	// ReadSync performs one synchronous read, used only by the `-S`
	// synchronous mode (SyncAdapter).
	ReadSync(buf []byte) (n int, err error)
	Close() error
}

// DeviceConfig mirrors spec §6's device-related CLI flags.
type DeviceConfig struct {
	Index      int
	FrequencyHz uint32
	SampleRate  uint32
	GainTenths  int // 0 selects auto
	BlockSize   int
}

// DeviceAdapter wraps a live Device in asynchronous callback mode (spec
// §4.7's first adapter). Device errors on rate/freq/gain are non-fatal
// per spec §7: they are logged and the run continues; failure to reset
// buffers is fatal and returned to the caller.
type DeviceAdapter struct {
	Dev    Device
	Config DeviceConfig
	// Warn receives a formatted warning for every non-fatal device
	// error, in the donor's "warn and continue" idiom.
	Warn func(format string, args ...any)
}

func (a *DeviceAdapter) warn(format string, args ...any) {
	if a.Warn != nil {
		a.Warn(format, args...)
	}
}

// Run configures the device and streams blocks via ReadAsync until ctx is
// canceled or the callback requests a stop.
func (a *DeviceAdapter) Run(ctx context.Context, onBlock BlockFunc) error {
	if err := a.Dev.SetSampleRate(a.Config.SampleRate); err != nil {
		a.warn("failed to set sample rate: %v", err)
	}
	if err := a.Dev.SetCenterFreq(a.Config.FrequencyHz); err != nil {
		a.warn("failed to set center freq: %v", err)
	}
	if err := a.Dev.SetGain(a.Config.GainTenths); err != nil {
		a.warn("failed to set tuner gain: %v", err)
	}
	if err := a.Dev.ResetBuffers(); err != nil {
		return fmt.Errorf("reset device buffers: %w", err)
	}

	stopped := make(chan struct{})
	var stopOnce sync.Once
	signalStop := func() { stopOnce.Do(func() { close(stopped) }) }

	var cbErr error
	go func() {
		cbErr = a.Dev.ReadAsync(a.Config.BlockSize, func(data []byte) {
			select {
			case <-stopped:
				return
			default:
			}
			if stop := onBlock(Block{Data: data}); stop {
				a.Dev.Close()
				signalStop()
			}
		})
		signalStop()
	}()

	select {
	case <-ctx.Done():
		a.Dev.Close()
		<-stopped
		return ctx.Err()
	case <-stopped:
		return cbErr
	}
}

// SyncAdapter performs the `-S` synchronous read mode: it reads
// fixed-size blocks and hands each to onBlock, like the other adapters.
// cmd/rtlsensor passes it the same decoding callback as the async
// adapter, so these blocks go through pipeline.Coordinator; raw IQ bytes
// are not passed through to a sink.
type SyncAdapter struct {
	Dev       Device
	BlockSize int
}

func (a *SyncAdapter) Run(ctx context.Context, onBlock BlockFunc) error {
	buf := make([]byte, a.BlockSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := a.Dev.ReadSync(buf)
		if err != nil {
			return fmt.Errorf("sync read: %w", err)
		}
		if n < len(buf) {
			return fmt.Errorf("short read, samples lost")
		}
		if stop := onBlock(Block{Data: buf[:n]}); stop {
			return nil
		}
	}
}
