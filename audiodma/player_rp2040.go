//go:build rp2040

package audiodma

import (
	"device/rp"
	"runtime/interrupt"
	"unsafe"

	"github.com/xs5871/circuitpython/audiocore"
)

// Player streams one sample buffer into a peripheral data register over
// a claimed DMA channel. A Player owns at most one channel at a time;
// the channel is claimed by SetupPlayback and released by Stop.
//
// The DREQ line paces every transfer, so the peripheral's FIFO provides
// the backpressure and no software polling is needed while playing.
type Player struct {
	ch dmaChannel
	// staging holds converted samples for the duration of playback so
	// the collector cannot move them out from under the channel.
	staging   []uint16
	readAddr  uint32
	transfers uint32
	claimed   bool
	active    bool
	paused    bool
	loop      bool
}

// players maps claimed channel indices to their Player for interrupt
// dispatch.
var players [numChannels]*Player

var dmaIRQ interrupt.Interrupt

func init() {
	dmaIRQ = interrupt.New(rp.IRQ_DMA_IRQ_0, handleDMAInterrupt)
	dmaIRQ.Enable()
}

func handleDMAInterrupt(interrupt.Interrupt) {
	status := rp.DMA.INTS0.Get()
	rp.DMA.INTS0.Set(status) // acknowledge
	for i := uint8(0); i < numChannels; i++ {
		if status&(1<<i) != 0 && players[i] != nil {
			players[i].service()
		}
	}
}

// service runs in interrupt context when the channel's transfer count
// reaches zero.
func (p *Player) service() {
	if !p.active {
		return
	}
	if p.loop {
		hw := p.ch.hw
		hw.READ_ADDR.Set(p.readAddr)
		hw.AL1_TRANS_COUNT_TRIG.Set(p.transfers)
		return
	}
	p.active = false
}

// Init resets the engine to its idle state.
func (p *Player) Init() {
	p.Stop()
}

// Deinit stops playback and releases the DMA channel. Idempotent.
func (p *Player) Deinit() {
	p.Stop()
}

// SetupPlayback stages the sample and starts a DMA transfer into
// cfg.DestRegister paced by cfg.DREQ.
//
// Mono sources are transferred as 16-bit writes: the RP2040 bus fabric
// replicates narrow writes across the full 32-bit register (RP2040
// datasheet 2.1.4), so a peripheral consuming 32-bit FIFO words sees
// the sample duplicated into both halves. Stereo sources are
// transferred as 32-bit frame pairs.
func (p *Player) SetupPlayback(sample audiocore.Sample, cfg PlaybackConfig) error {
	src := sample.Buffer()
	staging, size, err := stage(src, sample.BitsPerSample(), sample.ChannelCount(), sample.Signed(), cfg)
	if err != nil {
		return err
	}

	var readAddr uint32
	var halfwords int
	if staging != nil {
		readAddr = uint32(uintptr(unsafe.Pointer(&staging[0])))
		halfwords = len(staging)
	} else {
		readAddr = uint32(uintptr(unsafe.Pointer(&src[0])))
		halfwords = len(src) / 2
	}
	transfers := uint32(halfwords)
	if size == dmaTxSize32 {
		transfers = uint32(halfwords / 2)
	}

	if !p.claimed {
		ch, ok := arbiter.claim()
		if !ok {
			return ErrNoChannel
		}
		p.ch = ch
		p.claimed = true
		players[ch.idx] = p
	}
	p.staging = staging

	p.readAddr = readAddr
	p.transfers = transfers
	p.loop = cfg.Loop
	p.paused = false
	p.active = true

	hw := p.ch.hw
	hw.READ_ADDR.Set(readAddr)
	hw.WRITE_ADDR.Set(uint32(cfg.DestRegister))
	hw.TRANS_COUNT.Set(transfers)

	cc := defaultChannelConfig(p.ch.idx)
	cc.setTREQ_SEL(cfg.DREQ)
	cc.setTransferDataSize(size)
	cc.setEnable(true)

	p.ch.interruptEnable(true)
	// Writing CTRL_TRIG starts the transfer.
	hw.CTRL_TRIG.Set(cc.CTRL)
	return nil
}

// Pause holds the transfer by dropping the channel enable bit. The
// in-flight state is retained; Resume continues where it left off.
func (p *Player) Pause() {
	if !p.claimed || p.paused {
		return
	}
	p.ch.hw.AL1_CTRL.ClearBits(rp.DMA_CH0_CTRL_TRIG_EN_Msk)
	p.paused = true
}

// Resume continues a paused transfer.
func (p *Player) Resume() {
	if !p.claimed || !p.paused {
		return
	}
	p.ch.hw.AL1_CTRL.SetBits(rp.DMA_CH0_CTRL_TRIG_EN_Msk)
	p.paused = false
}

// IsPaused reports whether playback is currently paused.
func (p *Player) IsPaused() bool { return p.paused }

// Stop aborts the transfer immediately and releases the DMA channel.
// Safe to call at any time, including when not playing.
func (p *Player) Stop() {
	p.loop = false
	p.active = false
	p.paused = false
	if !p.claimed {
		return
	}
	p.ch.interruptEnable(false)
	// The channel must be enabled for the abort to flush in-flight
	// transfers.
	p.ch.hw.AL1_CTRL.SetBits(rp.DMA_CH0_CTRL_TRIG_EN_Msk)
	p.ch.abort()
	p.ch.hw.AL1_CTRL.ClearBits(rp.DMA_CH0_CTRL_TRIG_EN_Msk)
	players[p.ch.idx] = nil
	arbiter.unclaim(p.ch)
	p.claimed = false
	p.staging = nil
}

// IsPlaying reports whether a playback session is live. Looping and
// paused sessions stay live until Stop; a drained non-looping transfer
// reports false.
func (p *Player) IsPlaying() bool {
	if !p.claimed || !p.active {
		return false
	}
	if p.loop || p.paused {
		return true
	}
	if !p.ch.busy() {
		// Drained between the completion interrupt and this query.
		p.active = false
		return false
	}
	return true
}
