// s3cuart/uart.go

package s3cuart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned by the bounded calls when a status flag never
	// asserted. It wraps the context error that ended the wait.
	ErrTimeout = errors.New("s3cuart: timed out waiting for UART status")
	// ErrAlreadyConfigured is returned by a second Init. Reprogramming a live
	// channel is not supported by the hardware sequence.
	ErrAlreadyConfigured = errors.New("s3cuart: UART already configured")
)

// UART is a handle on one UART channel. The zero value needs a Bus; use New
// or the package-level UART0.
//
// SendByte, ReceiveByte and everything built on them block until the
// hardware raises the matching status flag, with no timeout. The *Context
// and *Timeout variants give up instead.
type UART struct {
	Bus Bus

	// Format selects the formatter policies used by Printf.
	Format Formatter

	txMu       sync.Mutex
	rxMu       sync.Mutex
	cfgMu      sync.Mutex
	configured bool

	stats Stats
}

// New returns an unconfigured UART on bus.
func New(bus Bus) *UART {
	return &UART{Bus: bus}
}

// Init routes GPH2/GPH3 to UART0, enables their pull-ups, and programs
// polling mode, the baud divisor and 8N1 framing. It must run once, before
// any other call.
func (u *UART) Init() error {
	u.cfgMu.Lock()
	defer u.cfgMu.Unlock()
	if u.configured {
		return ErrAlreadyConfigured
	}

	// Pins: clear the mode fields, then select the alternate function.
	clearBits(u.Bus, GPHCON, GPHCON_Msk)
	setBits(u.Bus, GPHCON, GPHCON_UART0)
	clearBits(u.Bus, GPHUP, GPHUP_GPH2|GPHUP_GPH3)

	u.Bus.Set(UCON0, Control)
	u.Bus.Set(UBRDIV0, BaudDivisor)
	u.Bus.Set(ULCON0, LineControl)

	u.configured = true
	return nil
}

// Configured reports whether Init has run.
func (u *UART) Configured() bool {
	u.cfgMu.Lock()
	defer u.cfgMu.Unlock()
	return u.configured
}

// SetLoopback switches the UART's internal loopback: transmitted bytes are
// received back and nothing reaches the TXD0 pin. It is meant for self-tests.
func (u *UART) SetLoopback(on bool) {
	u.txMu.Lock()
	defer u.txMu.Unlock()
	if on {
		setBits(u.Bus, UCON0, UCON_Loopback)
	} else {
		clearBits(u.Bus, UCON0, UCON_Loopback)
	}
}

// ---------------- Byte transport ----------------

func (u *UART) txReady() bool { return hasBits(u.Bus, UTRSTAT0, UTRSTAT_TxShiftIdle) }
func (u *UART) rxReady() bool { return hasBits(u.Bus, UTRSTAT0, UTRSTAT_RxReady) }

// SendByte waits for the transmitter to empty and hands c to it.
func (u *UART) SendByte(c byte) {
	u.txMu.Lock()
	u.sendByte(c)
	u.txMu.Unlock()
}

func (u *UART) sendByte(c byte) {
	for !u.txReady() {
		u.dbgSpin()
	}
	u.Bus.Set(UTXH0, uint32(c))
	u.dbgTx()
}

// ReceiveByte waits for a received byte and returns it.
func (u *UART) ReceiveByte() byte {
	u.rxMu.Lock()
	defer u.rxMu.Unlock()
	return u.receiveByte()
}

func (u *UART) receiveByte() byte {
	for !u.rxReady() {
		u.dbgSpin()
	}
	b := byte(u.Bus.Get(URXH0))
	u.dbgRx()
	return b
}

// SendByteContext is SendByte that gives up when ctx is done.
func (u *UART) SendByteContext(ctx context.Context, c byte) error {
	u.txMu.Lock()
	defer u.txMu.Unlock()
	for !u.txReady() {
		select {
		case <-ctx.Done():
			u.dbgTimeout()
			return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		default:
			u.dbgSpin()
		}
	}
	u.Bus.Set(UTXH0, uint32(c))
	u.dbgTx()
	return nil
}

// ReceiveByteContext is ReceiveByte that gives up when ctx is done.
func (u *UART) ReceiveByteContext(ctx context.Context) (byte, error) {
	u.rxMu.Lock()
	defer u.rxMu.Unlock()
	for !u.rxReady() {
		select {
		case <-ctx.Done():
			u.dbgTimeout()
			return 0, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		default:
			u.dbgSpin()
		}
	}
	b := byte(u.Bus.Get(URXH0))
	u.dbgRx()
	return b, nil
}

func (u *UART) SendByteTimeout(c byte, d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return u.SendByteContext(ctx, c)
}

func (u *UART) ReceiveByteTimeout(d time.Duration) (byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return u.ReceiveByteContext(ctx)
}

// ---------------- Character stream ----------------

// PutChar transmits the low byte of c and returns c.
func (u *UART) PutChar(c int) int {
	u.SendByte(byte(c))
	return c
}

// GetChar returns the next received byte. It blocks until one arrives, so
// there is no end-of-input value.
func (u *UART) GetChar() int {
	return int(u.ReceiveByte())
}

// Puts transmits s up to its end or its first NUL, whichever comes first.
// No line ending is added. It always returns 0.
func (u *UART) Puts(s string) int {
	u.txMu.Lock()
	defer u.txMu.Unlock()
	for i := 0; i < len(s) && s[i] != 0; i++ {
		u.sendByte(s[i])
	}
	return 0
}

// ---------------- io interfaces ----------------

// Write implements io.Writer. All of p is sent, including NUL bytes, before
// another writer can interleave.
func (u *UART) Write(p []byte) (int, error) {
	u.txMu.Lock()
	defer u.txMu.Unlock()
	for _, b := range p {
		u.sendByte(b)
	}
	return len(p), nil
}

func (u *UART) WriteString(s string) (int, error) {
	u.txMu.Lock()
	defer u.txMu.Unlock()
	for i := 0; i < len(s); i++ {
		u.sendByte(s[i])
	}
	return len(s), nil
}

func (u *UART) WriteByte(c byte) error {
	u.SendByte(c)
	return nil
}

// ReadByte implements io.ByteReader. It blocks like ReceiveByte and never
// returns an error.
func (u *UART) ReadByte() (byte, error) {
	return u.ReceiveByte(), nil
}

// Read implements io.Reader. It blocks until one byte has arrived, then
// takes whatever else is already waiting without blocking again.
func (u *UART) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	u.rxMu.Lock()
	defer u.rxMu.Unlock()
	p[0] = u.receiveByte()
	n := 1
	for n < len(p) && u.rxReady() {
		p[n] = byte(u.Bus.Get(URXH0))
		u.dbgRx()
		n++
	}
	return n, nil
}

// ---------------- Formatted output ----------------

// txWriter sends through a UART whose TX lock is already held.
type txWriter struct{ u *UART }

func (w txWriter) WriteByte(c byte) error {
	w.u.sendByte(c)
	return nil
}

// Printf renders format to the line using u.Format. The whole call is sent
// before another writer can interleave. See Formatter.Fprintf for the
// directive set.
func (u *UART) Printf(format string, args ...any) (int, error) {
	u.txMu.Lock()
	defer u.txMu.Unlock()
	return u.Format.Fprintf(txWriter{u}, format, args...)
}
