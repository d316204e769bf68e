// Package audiobusio implements digital audio output over I2S using a
// PIO state machine for bit timing and a DMA channel to feed its TX
// FIFO.
package audiobusio

import (
	"errors"

	"github.com/xs5871/circuitpython/audiocore"
	"github.com/xs5871/circuitpython/audiodma"
)

var (
	// ErrMainClockNotImplemented is returned when a main clock output
	// is requested; only the bit clock and word select pair is driven.
	ErrMainClockNotImplemented = errors.New("audiobusio: main clock output not implemented")
	// ErrPinsNotSequential is returned when the bit clock and word
	// select pins are not adjacent GPIO numbers.
	ErrPinsNotSequential = errors.New("audiobusio: bit clock and word select must be sequential pins")
	// ErrTooManyChannels is returned for samples with more than two
	// channels.
	ErrTooManyChannels = errors.New("audiobusio: too many channels in sample")
)

// The programs spend 6 state machine cycles per output bit.
const i2sClocksPerBit = 6

// Construction clocks the state machine as if playing 16-bit stereo at
// 44.1kHz so an attached DAC sees clocks and can settle before the
// first play. Play always reprograms the divider.
const warmupFrequency = 44100 * 32 * i2sClocksPerBit

// bitClockFrequency returns the state machine clock rate needed to
// stream the given format. Frames are always transmitted as 16-bit
// minimum stereo pairs: many DACs reject shorter frames, and the
// programs' bit loops are fixed at two 15-bit-plus-sign slots.
func bitClockFrequency(sampleRate uint32, bitsPerSample, channelCount uint8) (uint32, error) {
	if channelCount > 2 {
		return 0, ErrTooManyChannels
	}
	if bitsPerSample < 16 {
		bitsPerSample = 16
	}
	bitsPerFrame := uint32(bitsPerSample) * 2
	return bitsPerFrame * sampleRate * i2sClocksPerBit, nil
}

// sequencer is the state machine binding owned by an I2SOut.
type sequencer interface {
	SetFrequency(hz uint32) error
	Restart()
	Stop()
	Deinit()
	Deinited() bool
}

// player is the DMA playback engine owned by an I2SOut.
type player interface {
	SetupPlayback(sample audiocore.Sample, cfg audiodma.PlaybackConfig) error
	Pause()
	Resume()
	IsPaused() bool
	Stop()
	IsPlaying() bool
	Deinit()
}

// I2SOut streams samples to an I2S DAC. It exclusively owns one state
// machine binding and one DMA playback engine for its lifetime; Deinit
// releases both.
type I2SOut struct {
	sm      sequencer
	dma     player
	txReg   uintptr
	txDREQ  uint32
	playing bool
}

func newI2SOut(sm sequencer, dma player, txReg uintptr, txDREQ uint32) *I2SOut {
	return &I2SOut{
		sm:     sm,
		dma:    dma,
		txReg:  txReg,
		txDREQ: txDREQ,
	}
}

// Play starts playing sample, stopping any playback already in
// progress first. With loop set the sample repeats until Stop.
//
// Mono samples reach both output channels without duplication: the DMA
// engine writes them 16 bits wide and the TX FIFO register replicates
// narrow writes across its full width.
func (i2s *I2SOut) Play(sample audiocore.Sample, loop bool) error {
	if i2s.IsPlaying() {
		i2s.Stop()
	}

	bitsPerSample := sample.BitsPerSample()
	// Transmit a minimum of 16 bits per slot.
	if bitsPerSample < 16 {
		bitsPerSample = 16
	}
	frequency, err := bitClockFrequency(sample.SampleRate(), sample.BitsPerSample(), sample.ChannelCount())
	if err != nil {
		return err
	}

	if err := i2s.sm.SetFrequency(frequency); err != nil {
		return err
	}
	// The warm-up or previous session left the program mid-bitstream.
	i2s.sm.Restart()

	err = i2s.dma.SetupPlayback(sample, audiodma.PlaybackConfig{
		Loop: loop,
		// The line format is two's-complement regardless of source.
		OutputSigned:  true,
		BitsPerSample: bitsPerSample,
		DestRegister:  i2s.txReg,
		DREQ:          i2s.txDREQ,
	})
	if err != nil {
		i2s.Stop()
		return err
	}

	i2s.playing = true
	return nil
}

// Pause holds the sample stream. The state machine keeps running, so
// the DAC continues to see clocks.
func (i2s *I2SOut) Pause() {
	i2s.dma.Pause()
}

// Resume continues a paused stream.
func (i2s *I2SOut) Resume() {
	i2s.dma.Resume()
}

// IsPaused reports whether playback is paused.
func (i2s *I2SOut) IsPaused() bool {
	return i2s.dma.IsPaused()
}

// Stop ends playback immediately. Safe to call when not playing.
func (i2s *I2SOut) Stop() {
	i2s.dma.Stop()
	i2s.sm.Stop()
	i2s.playing = false
}

// IsPlaying reports whether a sample is still streaming. The DMA
// engine is authoritative: when a non-looping sample drains on its own
// the stale local state is reconciled with an internal Stop.
func (i2s *I2SOut) IsPlaying() bool {
	playing := i2s.dma.IsPlaying()
	if !playing && i2s.playing {
		i2s.Stop()
	}
	return playing
}

// Deinit stops playback and releases the state machine and DMA
// resources. Idempotent.
func (i2s *I2SOut) Deinit() {
	if i2s.Deinited() {
		return
	}
	if i2s.IsPlaying() {
		i2s.Stop()
	}
	i2s.sm.Deinit()
	i2s.dma.Deinit()
}

// Deinited reports whether Deinit has run.
func (i2s *I2SOut) Deinited() bool {
	return i2s.sm.Deinited()
}
