//go:build s3c2440

package s3cuart

import (
	"runtime/volatile"
	"unsafe"
)

// mmio accesses the registers at their physical addresses.
type mmio struct{}

func (mmio) Get(r Reg) uint32 {
	if r.Byte() {
		return uint32((*volatile.Register8)(unsafe.Pointer(uintptr(r))).Get())
	}
	return (*volatile.Register32)(unsafe.Pointer(uintptr(r))).Get()
}

func (mmio) Set(r Reg, v uint32) {
	if r.Byte() {
		(*volatile.Register8)(unsafe.Pointer(uintptr(r))).Set(uint8(v))
		return
	}
	(*volatile.Register32)(unsafe.Pointer(uintptr(r))).Set(v)
}

// UART0 is the on-chip UART0. Call Init once before using it.
var (
	UART0  = &_UART0
	_UART0 = UART{Bus: mmio{}}
)
