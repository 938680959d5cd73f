//go:build !s3cuartdebug

package s3cuart

type Stats struct{}

func (u *UART) dbgTx()      {}
func (u *UART) dbgRx()      {}
func (u *UART) dbgSpin()    {}
func (u *UART) dbgTimeout() {}

func (u *UART) DebugReset()       {}
func (u *UART) DebugStats() Stats { return Stats{} }
