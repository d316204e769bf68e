// Package audiocore provides the sample source contract consumed by the
// audio output drivers in this module.
package audiocore

import "encoding/binary"

// Sample is a source of PCM audio data. The driver reads the format
// descriptors once per playback and streams the buffer via DMA, so the
// buffer must stay valid and unmodified while playback is active.
type Sample interface {
	// SampleRate returns the playback rate in Hz.
	SampleRate() uint32
	// BitsPerSample returns the width of a single sample, 8 or 16.
	BitsPerSample() uint8
	// ChannelCount returns the number of interleaved channels.
	ChannelCount() uint8
	// Signed returns true if samples are two's-complement signed values.
	Signed() bool
	// Buffer returns the raw little-endian PCM data.
	Buffer() []byte
}

// RawSample is an in-memory PCM buffer.
type RawSample struct {
	buf        []byte
	sampleRate uint32
	bits       uint8
	channels   uint8
	signed     bool
}

// NewRawSample wraps an existing little-endian PCM buffer.
func NewRawSample(buf []byte, sampleRate uint32, bits, channels uint8, signed bool) *RawSample {
	return &RawSample{
		buf:        buf,
		sampleRate: sampleRate,
		bits:       bits,
		channels:   channels,
		signed:     signed,
	}
}

// NewRawSampleInt16 builds a signed 16-bit RawSample from samples.
// For two channels the samples are expected interleaved left, right.
func NewRawSampleInt16(samples []int16, sampleRate uint32, channels uint8) *RawSample {
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	return &RawSample{
		buf:        buf,
		sampleRate: sampleRate,
		bits:       16,
		channels:   channels,
		signed:     true,
	}
}

func (r *RawSample) SampleRate() uint32   { return r.sampleRate }
func (r *RawSample) BitsPerSample() uint8 { return r.bits }
func (r *RawSample) ChannelCount() uint8  { return r.channels }
func (r *RawSample) Signed() bool         { return r.signed }
func (r *RawSample) Buffer() []byte       { return r.buf }

// SetSampleRate changes the rate used by the next playback. It has no
// effect on playback already in progress.
func (r *RawSample) SetSampleRate(rate uint32) { r.sampleRate = rate }
