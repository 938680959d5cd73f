//go:build !s3c2440

package s3cuart

// Host shim: UART0 is backed by a simulated register block so code written
// against the target instance also runs under go test.

var (
	UART0  = &_UART0
	_UART0 = UART{Bus: NewSimBus()}
)

// Sim returns the simulated register block behind UART0.
func Sim() *SimBus { return _UART0.Bus.(*SimBus) }
