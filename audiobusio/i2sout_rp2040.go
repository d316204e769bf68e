//go:build rp2040

package audiobusio

import (
	"machine"

	pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/xs5871/circuitpython/audiodma"
	"github.com/xs5871/circuitpython/rp2pio"
)

// I2SOutConfig selects the pins and line format for an I2SOut.
//
// BitClock and WordSelect must be adjacent GPIO numbers in either
// order; the side-set mechanism drives them as one contiguous pair.
// The caller is responsible for the pins being free.
type I2SOutConfig struct {
	BitClock   machine.Pin
	WordSelect machine.Pin
	Data       machine.Pin
	// MainClockOutput requests a separate master clock line. Not
	// supported by these programs.
	MainClockOutput bool
	// LeftJustified aligns the first data bit with the word select
	// transition instead of the standard one-bit offset.
	LeftJustified bool
}

// NewI2SOut claims sm, loads the program variant matching the wiring,
// and starts clocking at the warm-up rate. Play reprograms the clock
// for each sample.
func NewI2SOut(sm pio.StateMachine, cfg I2SOutConfig) (*I2SOut, error) {
	if cfg.MainClockOutput {
		return nil, ErrMainClockNotImplemented
	}

	program, sidesetBase, err := selectProgram(uint8(cfg.BitClock), uint8(cfg.WordSelect), cfg.LeftJustified)
	if err != nil {
		return nil, err
	}

	binding, err := rp2pio.NewStateMachine(sm, program, rp2pio.StateMachineConfig{
		FirstOutPin:     cfg.Data,
		OutPinCount:     1,
		FirstSidesetPin: machine.Pin(sidesetBase),
		SidesetPinCount: 2,
		Frequency:       warmupFrequency,
		// Shift out 32 bits MSB first; the program pulls explicitly.
		PullThreshold: 32,
		OutShiftRight: false,
		AutoPull:      false,
	})
	if err != nil {
		return nil, err
	}

	dma := &audiodma.Player{}
	dma.Init()

	return newI2SOut(binding, dma, binding.TxReg(), audiodma.PIOTxDREQ(sm)), nil
}
