//go:build rp2040

// Package rp2pio binds a PIO state machine to a fixed program and pin
// assignment and manages its run/stop/deinit lifecycle on behalf of a
// peripheral driver.
package rp2pio

import (
	"machine"
	"unsafe"

	pio "github.com/tinygo-org/pio/rp2-pio"
)

// StateMachineConfig describes the program's pin mapping and shift
// behaviour. Side-set pins are always driven on every instruction (no
// side-set enable bit).
type StateMachineConfig struct {
	// FirstOutPin is the base pin written by `out pins` instructions.
	FirstOutPin machine.Pin
	OutPinCount uint8
	// FirstSidesetPin is the lowest-numbered pin of the side-set group.
	FirstSidesetPin machine.Pin
	SidesetPinCount uint8
	// Frequency is the initial state machine clock rate in Hz. It may
	// be overwritten later with SetFrequency.
	Frequency uint32
	// PullThreshold is the OSR shift count, in bits.
	PullThreshold uint16
	// OutShiftRight selects the OSR shift direction. False shifts out
	// the most significant bit first.
	OutShiftRight bool
	AutoPull      bool
}

// StateMachine is a claimed PIO state machine loaded with one program.
type StateMachine struct {
	sm       pio.StateMachine
	offset   uint8
	proglen  uint8
	deinited bool
}

// NewStateMachine loads program into PIO memory, configures and starts
// the state machine. The program wraps over its full length. All out
// and side-set pins are configured for PIO use, driven low, and set to
// output before the machine starts.
//
// Program space exhaustion is returned as pio.ErrOutOfProgramSpace.
func NewStateMachine(sm pio.StateMachine, program []uint16, cfg StateMachineConfig) (*StateMachine, error) {
	sm.TryClaim() // SM should be claimed beforehand, we just guarantee it's claimed.
	Pio := sm.PIO()

	offset, err := Pio.AddProgram(program, -1)
	if err != nil {
		return nil, err
	}

	whole, frac, err := pio.ClkDivFromFrequency(cfg.Frequency, machine.CPUFrequency())
	if err != nil {
		Pio.ClearProgramSection(offset, uint8(len(program)))
		return nil, err
	}

	pinCfg := machine.PinConfig{Mode: Pio.PinMode()}
	var pinMask uint32
	for i := uint8(0); i < cfg.OutPinCount; i++ {
		pin := cfg.FirstOutPin + machine.Pin(i)
		pin.Configure(pinCfg)
		pinMask |= 1 << pin
	}
	for i := uint8(0); i < cfg.SidesetPinCount; i++ {
		pin := cfg.FirstSidesetPin + machine.Pin(i)
		pin.Configure(pinCfg)
		pinMask |= 1 << pin
	}

	smc := pio.DefaultStateMachineConfig()
	smc.SetOutPins(cfg.FirstOutPin, cfg.OutPinCount)
	smc.SetSidesetPins(cfg.FirstSidesetPin)
	smc.SetSidesetParams(cfg.SidesetPinCount, false, false)
	smc.SetOutShift(cfg.OutShiftRight, cfg.AutoPull, cfg.PullThreshold)
	smc.SetWrap(offset, offset+uint8(len(program))-1)
	smc.SetClkDivIntFrac(whole, frac)

	sm.Init(offset, smc)
	sm.SetPindirsMasked(pinMask, pinMask)
	sm.SetPinsMasked(0, pinMask)
	sm.SetEnabled(true)

	return &StateMachine{
		sm:      sm,
		offset:  offset,
		proglen: uint8(len(program)),
	}, nil
}

// SetFrequency reprograms the clock divider so the state machine runs
// at hz state machine cycles per second.
func (s *StateMachine) SetFrequency(hz uint32) error {
	whole, frac, err := pio.ClkDivFromFrequency(hz, machine.CPUFrequency())
	if err != nil {
		return err
	}
	s.sm.SetClkDiv(whole, frac)
	return nil
}

// Restart rewinds the program counter to the first instruction,
// discards FIFO contents and internal shift state, zeroes the clock
// divider phase, and resumes execution. Required between playback
// sessions since the previous session stops mid-bitstream.
func (s *StateMachine) Restart() {
	s.sm.SetEnabled(false)
	s.sm.ClearFIFOs()
	s.sm.Restart()
	s.sm.ClkDivRestart()
	s.sm.Exec(pio.EncodeJmp(s.offset, pio.JmpAlways))
	s.sm.SetEnabled(true)
}

// Stop halts execution and discards FIFO contents.
func (s *StateMachine) Stop() {
	s.sm.SetEnabled(false)
	s.sm.ClearFIFOs()
}

// Deinit stops the state machine, frees its program memory and
// releases the claim. Idempotent.
func (s *StateMachine) Deinit() {
	if s.deinited {
		return
	}
	s.Stop()
	s.sm.PIO().ClearProgramSection(s.offset, s.proglen)
	s.sm.Unclaim()
	s.deinited = true
}

// Deinited reports whether Deinit has run.
func (s *StateMachine) Deinited() bool { return s.deinited }

// TxReg returns the address of the state machine's TX FIFO register,
// the destination for DMA-fed output.
func (s *StateMachine) TxReg() uintptr {
	return uintptr(unsafe.Pointer(s.sm.TxReg()))
}

// SM returns the underlying state machine.
func (s *StateMachine) SM() pio.StateMachine { return s.sm }
