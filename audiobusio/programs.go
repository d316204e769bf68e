package audiobusio

// The I2S output programs, assembled with pioasm. Four variants cover
// the two justifications times the two physical pin orders. Side-set
// width is 2 and drives the clock pair on every instruction; jumps are
// program-relative so the tables load at any offset.
//
// Each program runs 6 state machine cycles per output bit and shifts
// one 32-bit FIFO word per frame: 15 bits plus sign for each channel
// slot.

/* i2s.pio:

.program i2s
.side_set 2

; Load the next frame
                    ;        /--- LRCLK
                    ;        |/-- BCLK
                    ;        ||
    pull noblock      side 0b11 ; Loads OSR with the next FIFO value or X
    mov x osr         side 0b11 ; Save the value in case the FIFO runs dry
    set y 14          side 0b11
bitloop1:
    out pins 1        side 0b10 [2] ; Right channel first
    jmp y-- bitloop1  side 0b11 [2]
    out pins 1        side 0b00 [2]
    set y 14          side 0b01 [2]
bitloop0:
    out pins 1        side 0b00 [2] ; Then left channel
    jmp y-- bitloop0  side 0b01 [2]
    out pins 1        side 0b10 [2]
*/
var i2sProgram = []uint16{
	0x9880, //  0: pull   noblock         side 3
	0xb827, //  1: mov    x, osr          side 3
	0xf84e, //  2: set    y, 14           side 3
	0x7201, //  3: out    pins, 1         side 2 [2]
	0x1a83, //  4: jmp    y--, 3          side 3 [2]
	0x6201, //  5: out    pins, 1         side 0 [2]
	0xea4e, //  6: set    y, 14           side 1 [2]
	0x6201, //  7: out    pins, 1         side 0 [2]
	0x0a87, //  8: jmp    y--, 7          side 1 [2]
	0x7201, //  9: out    pins, 1         side 2 [2]
}

/* i2s_left.pio:

.program i2s
.side_set 2

; Load the next frame
                     ;        /--- LRCLK
                     ;        |/-- BCLK
                     ;        ||
    pull noblock      side 0b01
    mov x osr         side 0b01
    set y 14          side 0b01
bitloop1:
    out pins 1        side 0b10 [2] ; Right channel first
    jmp y-- bitloop1  side 0b11 [2]
    out pins 1        side 0b10 [2]
    set y 14          side 0b11 [2]
bitloop0:
    out pins 1        side 0b00 [2] ; Then left channel
    jmp y-- bitloop0  side 0b01 [2]
    out pins 1        side 0b00 [2]
*/
var i2sProgramLeftJustified = []uint16{
	0x8880, //  0: pull   noblock         side 1
	0xa827, //  1: mov    x, osr          side 1
	0xe84e, //  2: set    y, 14           side 1
	0x7201, //  3: out    pins, 1         side 2 [2]
	0x1a83, //  4: jmp    y--, 3          side 3 [2]
	0x7201, //  5: out    pins, 1         side 2 [2]
	0xfa4e, //  6: set    y, 14           side 3 [2]
	0x6201, //  7: out    pins, 1         side 0 [2]
	0x0a87, //  8: jmp    y--, 7          side 1 [2]
	0x6201, //  9: out    pins, 1         side 0 [2]
}

// Same programs with the BCLK and LRCLK side-set bits exchanged, for
// wirings where the word select pin is the lower-numbered of the pair.

/* i2s_swap.pio:

.program i2s
.side_set 2

; Load the next frame
                    ;        /--- BCLK
                    ;        |/-- LRCLK
                    ;        ||
    pull noblock      side 0b11
    mov x osr         side 0b11
    set y 14          side 0b11
bitloop1:
    out pins 1        side 0b01 [2] ; Right channel first
    jmp y-- bitloop1  side 0b11 [2]
    out pins 1        side 0b00 [2]
    set y 14          side 0b10 [2]
bitloop0:
    out pins 1        side 0b00 [2] ; Then left channel
    jmp y-- bitloop0  side 0b10 [2]
    out pins 1        side 0b01 [2]
*/
var i2sProgramSwap = []uint16{
	0x9880, //  0: pull   noblock         side 3
	0xb827, //  1: mov    x, osr          side 3
	0xf84e, //  2: set    y, 14           side 3
	0x6a01, //  3: out    pins, 1         side 1 [2]
	0x1a83, //  4: jmp    y--, 3          side 3 [2]
	0x6201, //  5: out    pins, 1         side 0 [2]
	0xf24e, //  6: set    y, 14           side 2 [2]
	0x6201, //  7: out    pins, 1         side 0 [2]
	0x1287, //  8: jmp    y--, 7          side 2 [2]
	0x6a01, //  9: out    pins, 1         side 1 [2]
}

/* i2s_swap_left.pio:

.program i2s
.side_set 2

; Load the next frame
                    ;        /--- BCLK
                    ;        |/-- LRCLK
                    ;        ||
    pull noblock      side 0b10
    mov x osr         side 0b10
    set y 14          side 0b10
bitloop1:
    out pins 1        side 0b01 [2] ; Right channel first
    jmp y-- bitloop1  side 0b11 [2]
    out pins 1        side 0b01 [2]
    set y 14          side 0b11 [2]
bitloop0:
    out pins 1        side 0b00 [2] ; Then left channel
    jmp y-- bitloop0  side 0b10 [2]
    out pins 1        side 0b00 [2]
*/
var i2sProgramLeftJustifiedSwap = []uint16{
	0x9080, //  0: pull   noblock         side 2
	0xb027, //  1: mov    x, osr          side 2
	0xf04e, //  2: set    y, 14           side 2
	0x6a01, //  3: out    pins, 1         side 1 [2]
	0x1a83, //  4: jmp    y--, 3          side 3 [2]
	0x6a01, //  5: out    pins, 1         side 1 [2]
	0xfa4e, //  6: set    y, 14           side 3 [2]
	0x6201, //  7: out    pins, 1         side 0 [2]
	0x1287, //  8: jmp    y--, 7          side 2 [2]
	0x6201, //  9: out    pins, 1         side 0 [2]
}

// selectProgram picks the program variant and side-set base pin for a
// clock pair wiring. The side-set mechanism drives two contiguous pins
// upward from the base, so the physical pin order decides which
// side-set bit is BCLK and therefore which bit-timing table applies.
func selectProgram(bitClock, wordSelect uint8, leftJustified bool) (program []uint16, sidesetBase uint8, err error) {
	switch {
	case bitClock == wordSelect-1:
		if leftJustified {
			return i2sProgramLeftJustified, bitClock, nil
		}
		return i2sProgram, bitClock, nil
	case bitClock == wordSelect+1:
		if leftJustified {
			return i2sProgramLeftJustifiedSwap, wordSelect, nil
		}
		return i2sProgramSwap, wordSelect, nil
	}
	return nil, 0, ErrPinsNotSequential
}
