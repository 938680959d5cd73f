// s3cuart/regs.go

// Package s3cuart is a polling driver for UART0 of the Samsung S3C2440 with a
// small printf engine on top. Every transmitted or received byte goes through
// a busy-wait on UTRSTAT0; there are no interrupts, no FIFOs and no DMA.
//
// Registers are reached through a Bus. On the target (build tag s3c2440) the
// bus dereferences the fixed physical addresses; on the host it is a SimBus,
// which is also what the tests drive.
package s3cuart

import "strconv"

// Reg is the physical address of a UART0 or GPIO port H register.
type Reg uintptr

const (
	GPHCON   Reg = 0x56000070 // port H pin function
	GPHUP    Reg = 0x56000078 // port H pull-up disable
	ULCON0   Reg = 0x50000000 // line control
	UCON0    Reg = 0x50000004 // control
	UTRSTAT0 Reg = 0x50000010 // TX/RX status
	UTXH0    Reg = 0x50000020 // transmit buffer, 8 bits wide (little endian)
	URXH0    Reg = 0x50000024 // receive buffer, 8 bits wide (little endian)
	UBRDIV0  Reg = 0x50000028 // baud rate divisor
)

var regNames = map[Reg]string{
	GPHCON:   "GPHCON",
	GPHUP:    "GPHUP",
	ULCON0:   "ULCON0",
	UCON0:    "UCON0",
	UTRSTAT0: "UTRSTAT0",
	UTXH0:    "UTXH0",
	URXH0:    "URXH0",
	UBRDIV0:  "UBRDIV0",
}

func (r Reg) String() string {
	if s, ok := regNames[r]; ok {
		return s
	}
	return "0x" + strconv.FormatUint(uint64(r), 16)
}

// Byte reports whether the register is only 8 bits wide.
func (r Reg) Byte() bool { return r == UTXH0 || r == URXH0 }

// GPHCON: two bits per pin. GPH2 is TXD0, GPH3 is RXD0.
const (
	GPHCON_GPH2_Pos = 4
	GPHCON_GPH3_Pos = 6
	GPHCON_Msk      = 3<<GPHCON_GPH2_Pos | 3<<GPHCON_GPH3_Pos
	GPHCON_UART0    = 2<<GPHCON_GPH2_Pos | 2<<GPHCON_GPH3_Pos // alternate function
)

// GPHUP: a set bit disables the pull-up on that pin.
const (
	GPHUP_GPH2 = 1 << 2
	GPHUP_GPH3 = 1 << 3
)

// ULCON0 bitfields.
const (
	ULCON_WordLen8   = 3 << 0
	ULCON_StopBits2  = 1 << 2
	ULCON_ParityMsk  = 7 << 3
	ULCON_ParityNone = 0 << 3
	ULCON_Infrared   = 1 << 6
)

// UCON0 bitfields.
const (
	UCON_RxPolling = 1 << 0 // receive mode: interrupt request or polling
	UCON_TxPolling = 1 << 2 // transmit mode: interrupt request or polling
	UCON_Loopback  = 1 << 5 // TX shifter wired internally to RX
	UCON_RxModeMsk = 3 << 0
	UCON_TxModeMsk = 3 << 2
)

// UTRSTAT0 bitfields.
const (
	UTRSTAT_RxReady     = 1 << 0 // receive buffer holds a byte
	UTRSTAT_TxBufEmpty  = 1 << 1
	UTRSTAT_TxShiftIdle = 1 << 2 // transmit buffer and shifter both empty
)

// Line configuration written by Init. These are fixed for one board clock.
const (
	// LineControl is 8 data bits, no parity, one stop bit.
	LineControl = ULCON_WordLen8 | ULCON_ParityNone
	// Control puts both directions in polling mode.
	Control = UCON_RxPolling | UCON_TxPolling
	// PCLK is the APB clock the divisor is computed for.
	PCLK = 50000000
	// Baud is the line rate.
	Baud = 115200
	// BaudDivisor is Divisor(PCLK, Baud).
	BaudDivisor = 26
)

// MaxDivisor is the largest value the 16-bit UBRDIV0 field holds.
const MaxDivisor = 0xffff

// Divisor returns the UBRDIV value for the given APB clock and baud rate,
// per the datasheet formula int(pclk/(baud*16)) - 1. It returns 0 when baud
// is 0 or above pclk/16.
func Divisor(pclk, baud uint32) uint32 {
	if baud == 0 {
		return 0
	}
	d := uint64(pclk) / (uint64(baud) * 16)
	if d == 0 {
		return 0
	}
	return uint32(d - 1)
}

// BaudRate returns the line rate that UBRDIV value div produces at pclk.
func BaudRate(pclk, div uint32) uint32 {
	return uint32(uint64(pclk) / ((uint64(div) + 1) * 16))
}

// Bus reads and writes UART0 registers. Implementations must perform each
// access exactly once and in program order; reading URXH0 consumes a byte.
type Bus interface {
	Get(r Reg) uint32
	Set(r Reg, v uint32)
}

func setBits(b Bus, r Reg, bits uint32)   { b.Set(r, b.Get(r)|bits) }
func clearBits(b Bus, r Reg, bits uint32) { b.Set(r, b.Get(r)&^bits) }
func hasBits(b Bus, r Reg, bits uint32) bool {
	return b.Get(r)&bits == bits
}
