package source

import "fmt"

// NoDevice is the default Device used when no live SDR driver has been
// linked into the build. Every method fails with the same explanatory
// error; a real build wires a librtlsdr-backed Device in its place before
// constructing DeviceAdapter, satisfying the same interface.
type NoDevice struct{}

var errNoDevice = fmt.Errorf("no live device driver linked into this build; use -r to replay a capture")

func (NoDevice) SetSampleRate(uint32) error        { return errNoDevice }
func (NoDevice) SetCenterFreq(uint32) error        { return errNoDevice }
func (NoDevice) SetGain(int) error                 { return errNoDevice }
func (NoDevice) ResetBuffers() error                { return errNoDevice }
func (NoDevice) ReadAsync(int, func([]byte)) error  { return errNoDevice }
func (NoDevice) ReadSync([]byte) (int, error)       { return 0, errNoDevice }
func (NoDevice) Close() error                       { return nil }
