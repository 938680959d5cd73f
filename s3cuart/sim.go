// s3cuart/sim.go

package s3cuart

import (
	"io"
	"sync"
	"time"
)

// idleSpins is how many back-to-back status reads without received data a
// SimBus allows before it applies its idle delay.
const idleSpins = 32

// RegWrite is one store recorded by a SimBus.
type RegWrite struct {
	Reg   Reg
	Value uint32
}

// SimBus is an in-memory model of the UART0 and port H registers. It keeps a
// register file and a log of every store. Bytes written to UTXH0 are captured
// and optionally copied to an io.Writer; bytes handed to Feed show up in
// URXH0 with UTRSTAT0 bit 0 set while any are pending.
//
// SimBus is safe for concurrent use: one goroutine can play the driver while
// another plays the far end of the line.
type SimBus struct {
	mu       sync.Mutex
	regs     map[Reg]uint32
	writes   []RegWrite
	rx       ring
	tx       []byte
	out      io.Writer
	loopback bool
	txStall  bool
	rxStall  bool

	idleDelay time.Duration
	idlePolls int
}

// NewSimBus returns a register block in its reset state.
func NewSimBus() *SimBus {
	s := &SimBus{}
	s.Reset()
	return s
}

// Reset restores the reset values and forgets pending and captured bytes.
// The output writer and loopback setting are kept.
func (s *SimBus) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs = map[Reg]uint32{
		GPHCON:  0,
		GPHUP:   0,
		ULCON0:  0,
		UCON0:   0,
		UBRDIV0: 0,
	}
	s.writes = nil
	s.tx = nil
	s.rx.reset()
	s.txStall, s.rxStall = false, false
	s.idlePolls = 0
}

func (s *SimBus) Get(r Reg) uint32 {
	s.mu.Lock()
	v := s.get(r)
	var pause time.Duration
	if s.idlePolls > idleSpins {
		pause = s.idleDelay
	}
	s.mu.Unlock()
	if pause > 0 {
		time.Sleep(pause)
	}
	return v
}

func (s *SimBus) get(r Reg) uint32 {
	switch r {
	case UTRSTAT0:
		var st uint32
		if !s.txStall {
			st |= UTRSTAT_TxBufEmpty | UTRSTAT_TxShiftIdle
		}
		if !s.rxStall && s.rx.len() > 0 {
			st |= UTRSTAT_RxReady
			s.idlePolls = 0
		} else {
			s.idlePolls++
		}
		return st
	case URXH0:
		b, _ := s.rx.get()
		return uint32(b)
	case UTXH0:
		return 0
	}
	return s.regs[r]
}

func (s *SimBus) Set(r Reg, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, RegWrite{Reg: r, Value: v})
	s.idlePolls = 0
	switch r {
	case UTXH0:
		b := byte(v)
		s.tx = append(s.tx, b)
		if s.out != nil {
			_, _ = s.out.Write([]byte{b})
		}
		if s.loopback || s.regs[UCON0]&UCON_Loopback != 0 {
			s.rx.put(b)
		}
	case URXH0, UTRSTAT0:
		// read-only
	default:
		s.regs[r] = v
	}
}

// Feed queues bytes arriving on the RX pin.
func (s *SimBus) Feed(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range p {
		s.rx.put(b)
	}
	s.idlePolls = 0
}

// Pending returns how many received bytes have not been read yet.
func (s *SimBus) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rx.len()
}

// Overruns returns how many received bytes were lost to a full FIFO.
func (s *SimBus) Overruns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rx.dropped
}

// Transmitted returns a copy of every byte written to UTXH0 since the last
// Reset or TakeTransmitted.
func (s *SimBus) Transmitted() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.tx...)
}

// TakeTransmitted returns the captured bytes and clears the capture.
func (s *SimBus) TakeTransmitted() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.tx
	s.tx = nil
	return tx
}

// Writes returns a copy of the store log.
func (s *SimBus) Writes() []RegWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RegWrite(nil), s.writes...)
}

// Reg returns the last value stored to r without side effects.
func (s *SimBus) Reg(r Reg) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[r]
}

// SetOutput copies every transmitted byte to w. A nil w turns copying off.
func (s *SimBus) SetOutput(w io.Writer) {
	s.mu.Lock()
	s.out = w
	s.mu.Unlock()
}

// SetLoopback wires TX back to RX outside the UART, as a jumper between the
// TXD0 and RXD0 pins would. The UCON0 loopback bit has the same effect.
func (s *SimBus) SetLoopback(on bool) {
	s.mu.Lock()
	s.loopback = on
	s.mu.Unlock()
}

// SetIdleDelay makes a status read sleep for d once the bus has been polled
// repeatedly with nothing received and nothing stored, so a driver spinning
// on UTRSTAT0 does not keep a host CPU busy. Zero, the default, never sleeps.
func (s *SimBus) SetIdleDelay(d time.Duration) {
	s.mu.Lock()
	s.idleDelay = d
	s.mu.Unlock()
}

// StallTx holds the transmit-ready flags low.
func (s *SimBus) StallTx(on bool) {
	s.mu.Lock()
	s.txStall = on
	s.mu.Unlock()
}

// StallRx holds the receive-ready flag low even if bytes are pending.
func (s *SimBus) StallRx(on bool) {
	s.mu.Lock()
	s.rxStall = on
	s.mu.Unlock()
}
