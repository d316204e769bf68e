// Package audiodma implements DMA-driven audio playback into a
// peripheral data register, paced by the peripheral's DREQ line.
package audiodma

import (
	"encoding/binary"
	"errors"
	"math"
	"runtime"
)

const timeoutRetries = math.MaxUint16 * 8

// Staging cap for samples that need sign or width conversion. Sources
// larger than this must be provided pre-converted.
const maxStagingBytes = 64 * 1024

var (
	// ErrNoChannel is returned when every DMA channel is claimed.
	ErrNoChannel = errors.New("audiodma: no DMA channel found")
	// ErrMemory is returned when a source needs a conversion staging
	// buffer larger than the engine is willing to allocate.
	ErrMemory = errors.New("audiodma: sample too large to stage for conversion")
	// ErrSource is returned for malformed sources: empty buffers,
	// lengths that are not a whole number of frames, or sample widths
	// other than 8 or 16 bits.
	ErrSource = errors.New("audiodma: audio source error")
)

// PlaybackConfig describes one playback session.
//
// SingleChannel, AudioChannel and SwapChannels exist for parity with
// multi-voice mixers that share this engine; single-output drivers pass
// the zero values.
type PlaybackConfig struct {
	// Loop restarts the transfer from the first frame when the buffer
	// drains, until Stop is called.
	Loop bool
	// SingleChannel selects a single channel out of a multi-channel
	// source instead of streaming all frames.
	SingleChannel bool
	// AudioChannel is the channel index used with SingleChannel.
	AudioChannel uint8
	// OutputSigned converts unsigned sources to two's-complement
	// during staging.
	OutputSigned bool
	// BitsPerSample is the per-channel width the consuming peripheral
	// expects. The engine stages everything as 16-bit units, so any
	// other value is rejected as a source error.
	BitsPerSample uint8
	// DestRegister is the address of the peripheral data register.
	DestRegister uintptr
	// DREQ is the data-request line pacing the transfer.
	DREQ uint32
	// SwapChannels exchanges left and right slots during staging.
	SwapChannels bool
}

func gosched() {
	runtime.Gosched()
}

type dmaTxSize uint32

const (
	dmaTxSize8 dmaTxSize = iota
	dmaTxSize16
	dmaTxSize32
)

// stage validates a source buffer and converts it into the stream of
// 16-bit channel slots the DMA channel transfers. A nil staging slice
// means the source is already in that form and streams in place. The
// returned size is 16-bit for a mono output (the destination register
// replicates narrow writes) and 32-bit for stereo slot pairs.
func stage(src []byte, bits, channels uint8, signed bool, cfg PlaybackConfig) ([]uint16, dmaTxSize, error) {
	if len(src) == 0 || channels == 0 || (bits != 8 && bits != 16) {
		return nil, 0, ErrSource
	}
	frameBytes := int(bits/8) * int(channels)
	if len(src)%frameBytes != 0 {
		return nil, 0, ErrSource
	}
	// Every slot leaves the engine 16 bits wide; the consumer must
	// expect that width.
	if cfg.BitsPerSample != 16 {
		return nil, 0, ErrSource
	}

	outChannels := channels
	if cfg.SingleChannel {
		outChannels = 1
	}
	size := dmaTxSize16
	if outChannels == 2 {
		size = dmaTxSize32
	}

	flipSign := cfg.OutputSigned && !signed
	needStage := bits == 8 || flipSign || cfg.SingleChannel ||
		(cfg.SwapChannels && channels == 2)
	if !needStage {
		return nil, size, nil
	}

	n := len(src) / int(bits/8)
	if cfg.SingleChannel {
		n /= int(channels)
	}
	if 2*n > maxStagingBytes {
		return nil, 0, ErrMemory
	}
	staging := make([]uint16, n)
	first, step := 0, 1
	if cfg.SingleChannel {
		first, step = int(cfg.AudioChannel), int(channels)
	}
	for i := 0; i < n; i++ {
		var v uint16
		if bits == 8 {
			b := src[first+i*step]
			if flipSign {
				b ^= 0x80
			}
			// Widen to the high byte; the low byte stays zero.
			v = uint16(b) << 8
		} else {
			v = binary.LittleEndian.Uint16(src[2*(first+i*step):])
			if flipSign {
				v ^= 0x8000
			}
		}
		staging[i] = v
	}
	if cfg.SwapChannels && outChannels == 2 {
		for i := 0; i+1 < len(staging); i += 2 {
			staging[i], staging[i+1] = staging[i+1], staging[i]
		}
	}
	return staging, size, nil
}
