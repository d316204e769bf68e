package audiobusio

import (
	"errors"
	"testing"

	pio "github.com/tinygo-org/pio/rp2-pio"
)

// sideDelay packs the side-set value and delay cycles of an
// instruction in a program with two side-set bits and no enable bit.
func sideDelay(side, delay uint16) uint16 {
	return side<<11 | delay<<8
}

// All four programs share the same instruction skeleton and delays;
// only the side-set values differ per variant.
func TestProgramEncodings(t *testing.T) {
	base := []uint16{
		pio.EncodePull(false, false),
		pio.EncodeMov(pio.SrcDestX, pio.SrcDestOSR),
		pio.EncodeSet(pio.SrcDestY, 14),
		pio.EncodeOut(pio.SrcDestPins, 1),
		pio.EncodeJmp(3, pio.JmpYNZeroDec),
		pio.EncodeOut(pio.SrcDestPins, 1),
		pio.EncodeSet(pio.SrcDestY, 14),
		pio.EncodeOut(pio.SrcDestPins, 1),
		pio.EncodeJmp(7, pio.JmpYNZeroDec),
		pio.EncodeOut(pio.SrcDestPins, 1),
	}
	delays := []uint16{0, 0, 0, 2, 2, 2, 2, 2, 2, 2}

	cases := []struct {
		name    string
		program []uint16
		sides   []uint16
	}{
		{"standard", i2sProgram, []uint16{3, 3, 3, 2, 3, 0, 1, 0, 1, 2}},
		{"left justified", i2sProgramLeftJustified, []uint16{1, 1, 1, 2, 3, 2, 3, 0, 1, 0}},
		{"swapped", i2sProgramSwap, []uint16{3, 3, 3, 1, 3, 0, 2, 0, 2, 1}},
		{"left justified swapped", i2sProgramLeftJustifiedSwap, []uint16{2, 2, 2, 1, 3, 1, 3, 0, 2, 0}},
	}
	for _, tc := range cases {
		if len(tc.program) != len(base) {
			t.Fatalf("%s: program length %d, want %d", tc.name, len(tc.program), len(base))
		}
		for i := range tc.program {
			want := base[i] | sideDelay(tc.sides[i], delays[i])
			if tc.program[i] != want {
				t.Errorf("%s: instr %d mismatch got!=expected: %#x != %#x", tc.name, i, tc.program[i], want)
			}
		}
	}
}

// Jump targets must stay inside the program so the loader can relocate
// the tables to any offset.
func TestProgramsRelocatable(t *testing.T) {
	const instrBitsMsk = 0xe000
	programs := [][]uint16{
		i2sProgram, i2sProgramLeftJustified, i2sProgramSwap, i2sProgramLeftJustifiedSwap,
	}
	for pi, program := range programs {
		for i, instr := range program {
			if instr&instrBitsMsk != 0 { // not a jmp
				continue
			}
			target := instr & 0x1f
			if int(target) >= len(program) {
				t.Errorf("program %d: instr %d jumps to %d, outside program of length %d",
					pi, i, target, len(program))
			}
		}
	}
}

func TestSelectProgram(t *testing.T) {
	cases := []struct {
		name          string
		bitClock      uint8
		wordSelect    uint8
		leftJustified bool
		want          []uint16
		wantBase      uint8
	}{
		{"bit clock below word select", 2, 3, false, i2sProgram, 2},
		{"bit clock below, left justified", 2, 3, true, i2sProgramLeftJustified, 2},
		{"bit clock above word select", 3, 2, false, i2sProgramSwap, 2},
		{"bit clock above, left justified", 3, 2, true, i2sProgramLeftJustifiedSwap, 2},
		{"high pin pair", 27, 28, false, i2sProgram, 27},
		{"high pin pair swapped", 28, 27, false, i2sProgramSwap, 27},
	}
	for _, tc := range cases {
		program, base, err := selectProgram(tc.bitClock, tc.wordSelect, tc.leftJustified)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if &program[0] != &tc.want[0] {
			t.Errorf("%s: wrong program selected", tc.name)
		}
		if base != tc.wantBase {
			t.Errorf("%s: side-set base %d, want %d", tc.name, base, tc.wantBase)
		}
	}
}

func TestSelectProgramNonSequentialPins(t *testing.T) {
	pairs := [][2]uint8{{2, 5}, {5, 2}, {2, 2}, {0, 9}}
	for _, pins := range pairs {
		_, _, err := selectProgram(pins[0], pins[1], false)
		if !errors.Is(err, ErrPinsNotSequential) {
			t.Errorf("pins (%d, %d): got %v, want ErrPinsNotSequential", pins[0], pins[1], err)
		}
	}
}

func TestBitClockFrequency(t *testing.T) {
	cases := []struct {
		sampleRate uint32
		bits       uint8
		channels   uint8
		want       uint32
	}{
		// 8 bits clamps to a 16-bit slot.
		{44100, 8, 1, 16 * 2 * 44100 * 6},
		{44100, 16, 2, 16 * 2 * 44100 * 6},
		{44100, 24, 2, 24 * 2 * 44100 * 6},
		{22050, 16, 1, 16 * 2 * 22050 * 6},
	}
	for _, tc := range cases {
		got, err := bitClockFrequency(tc.sampleRate, tc.bits, tc.channels)
		if err != nil {
			t.Errorf("(%d, %d, %d): unexpected error: %v", tc.sampleRate, tc.bits, tc.channels, err)
			continue
		}
		if got != tc.want {
			t.Errorf("(%d, %d, %d): got %d, want %d", tc.sampleRate, tc.bits, tc.channels, got, tc.want)
		}
	}
}

func TestBitClockFrequencyTooManyChannels(t *testing.T) {
	for _, bits := range []uint8{8, 16, 24} {
		if _, err := bitClockFrequency(44100, bits, 3); !errors.Is(err, ErrTooManyChannels) {
			t.Errorf("%d bits, 3 channels: got %v, want ErrTooManyChannels", bits, err)
		}
	}
}
