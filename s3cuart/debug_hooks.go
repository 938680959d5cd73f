//go:build s3cuartdebug

package s3cuart

import "sync/atomic"

// Stats holds counters since the last reset.
type Stats struct {
	TxBytes  uint32 // bytes written to UTXH0
	RxBytes  uint32 // bytes read from URXH0
	Spins    uint32 // status polls that found the flag clear
	Timeouts uint32 // bounded calls that gave up
}

func (u *UART) dbgTx()      { atomic.AddUint32(&u.stats.TxBytes, 1) }
func (u *UART) dbgRx()      { atomic.AddUint32(&u.stats.RxBytes, 1) }
func (u *UART) dbgSpin()    { atomic.AddUint32(&u.stats.Spins, 1) }
func (u *UART) dbgTimeout() { atomic.AddUint32(&u.stats.Timeouts, 1) }

func (u *UART) DebugReset() {
	atomic.StoreUint32(&u.stats.TxBytes, 0)
	atomic.StoreUint32(&u.stats.RxBytes, 0)
	atomic.StoreUint32(&u.stats.Spins, 0)
	atomic.StoreUint32(&u.stats.Timeouts, 0)
}

func (u *UART) DebugStats() Stats {
	return Stats{
		TxBytes:  atomic.LoadUint32(&u.stats.TxBytes),
		RxBytes:  atomic.LoadUint32(&u.stats.RxBytes),
		Spins:    atomic.LoadUint32(&u.stats.Spins),
		Timeouts: atomic.LoadUint32(&u.stats.Timeouts),
	}
}
