//go:build rp2040

package audiodma

import (
	"device/rp"
	"runtime/volatile"
	"unsafe"

	pio "github.com/tinygo-org/pio/rp2-pio"
)

// The RP2040 has 12 DMA channels.
const numChannels = 12

// dmaChannelHW is the register bank of a single DMA channel.
// See rp.DMA_Type.
type dmaChannelHW struct {
	READ_ADDR            volatile.Register32
	WRITE_ADDR           volatile.Register32
	TRANS_COUNT          volatile.Register32
	CTRL_TRIG            volatile.Register32
	AL1_CTRL             volatile.Register32
	AL1_READ_ADDR        volatile.Register32
	AL1_WRITE_ADDR       volatile.Register32
	AL1_TRANS_COUNT_TRIG volatile.Register32
	_                    [8]volatile.Register32 // AL2/AL3 aliases
}

var dmaChannels = (*[numChannels]dmaChannelHW)(unsafe.Pointer(rp.DMA))

// arbiter tracks which DMA channels are claimed through software.
type dmaArbiter struct {
	claimedChannels uint16
}

var arbiter dmaArbiter

type dmaChannel struct {
	hw  *dmaChannelHW
	idx uint8
}

// claim returns an unclaimed DMA channel, or ok=false if all channels
// are in use.
func (arb *dmaArbiter) claim() (dmaChannel, bool) {
	for i := uint8(0); i < numChannels; i++ {
		if arb.claimedChannels&(1<<i) == 0 {
			arb.claimedChannels |= 1 << i
			return dmaChannel{hw: &dmaChannels[i], idx: i}, true
		}
	}
	return dmaChannel{}, false
}

func (arb *dmaArbiter) unclaim(ch dmaChannel) {
	arb.claimedChannels &^= 1 << ch.idx
}

func (ch dmaChannel) busy() bool {
	return ch.hw.CTRL_TRIG.Get()&rp.DMA_CH0_CTRL_TRIG_BUSY != 0
}

// abort aborts the current transfer sequence on the channel and blocks
// until all in-flight transfers have been flushed through the address
// and data FIFOs. After this, it is safe to restart the channel.
func (ch dmaChannel) abort() {
	// The abort bit remains high until in-flight transfers have been
	// flushed, so it must be polled back to zero before the channel is
	// reused.
	chMask := uint32(1 << ch.idx)
	rp.DMA.CHAN_ABORT.Set(chMask)
	retries := timeoutRetries
	for rp.DMA.CHAN_ABORT.Get()&chMask != 0 && retries > 0 {
		gosched()
		retries--
	}
	if retries == 0 {
		println("DMA abort timeout")
	}
}

// interruptEnable routes the channel's completion interrupt to DMA_IRQ_0.
func (ch dmaChannel) interruptEnable(enable bool) {
	if enable {
		rp.DMA.INTE0.SetBits(1 << ch.idx)
	} else {
		rp.DMA.INTE0.ClearBits(1 << ch.idx)
	}
}

// TX DREQ lines for the PIO state machines. 2.5.3.1. System DREQ Table.
const (
	_DREQ_PIO0_TX0 = 0x0
	_DREQ_PIO1_TX0 = 0x8
)

// PIOTxDREQ returns the TX FIFO data-request line for a PIO state
// machine. Only one DMA channel may ever be paced by a given DREQ.
func PIOTxDREQ(sm pio.StateMachine) uint32 {
	return _DREQ_PIO0_TX0 + uint32(sm.PIO().BlockIndex())*(_DREQ_PIO1_TX0-_DREQ_PIO0_TX0) + uint32(sm.StateMachineIndex())
}

type dmaChannelConfig struct {
	CTRL uint32
}

func defaultChannelConfig(channel uint8) (cc dmaChannelConfig) {
	cc.setRing(false, 0)
	cc.setBSwap(false)
	cc.setIRQQuiet(false)
	cc.setHighPriority(false)
	cc.setChainTo(uint32(channel))
	cc.setTREQ_SEL(rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_PERMANENT)
	cc.setReadIncrement(true)
	cc.setWriteIncrement(false)
	cc.setTransferDataSize(dmaTxSize32)
	return cc
}

// Select a Transfer Request signal. The channel uses the transfer
// request signal to pace its data transfer rate.
func (cc *dmaChannelConfig) setTREQ_SEL(dreq uint32) {
	cc.CTRL = (cc.CTRL & ^uint32(rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_Msk)) | (dreq << rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_Pos)
}

func (cc *dmaChannelConfig) setChainTo(chainTo uint32) {
	cc.CTRL = (cc.CTRL & ^uint32(rp.DMA_CH0_CTRL_TRIG_CHAIN_TO_Msk)) | (chainTo << rp.DMA_CH0_CTRL_TRIG_CHAIN_TO_Pos)
}

func (cc *dmaChannelConfig) setTransferDataSize(size dmaTxSize) {
	cc.CTRL = (cc.CTRL & ^uint32(rp.DMA_CH0_CTRL_TRIG_DATA_SIZE_Msk)) | (uint32(size) << rp.DMA_CH0_CTRL_TRIG_DATA_SIZE_Pos)
}

func (cc *dmaChannelConfig) setRing(write bool, sizeBits uint32) {
	cc.CTRL = (cc.CTRL & ^uint32(rp.DMA_CH0_CTRL_TRIG_RING_SIZE_Msk)) |
		(sizeBits << rp.DMA_CH0_CTRL_TRIG_RING_SIZE_Pos)
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_RING_SEL_Pos, write)
}

func (cc *dmaChannelConfig) setReadIncrement(incr bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_INCR_READ_Pos, incr)
}

func (cc *dmaChannelConfig) setWriteIncrement(incr bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_INCR_WRITE_Pos, incr)
}

func (cc *dmaChannelConfig) setBSwap(bswap bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_BSWAP_Pos, bswap)
}

func (cc *dmaChannelConfig) setIRQQuiet(irqQuiet bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_IRQ_QUIET_Pos, irqQuiet)
}

func (cc *dmaChannelConfig) setHighPriority(highPriority bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_HIGH_PRIORITY_Pos, highPriority)
}

func (cc *dmaChannelConfig) setEnable(enable bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_EN_Pos, enable)
}

func setBitPos(cc *uint32, pos uint32, bit bool) {
	if bit {
		*cc = *cc | (1 << pos)
	} else {
		*cc = *cc & ^(1 << pos)
	}
}
