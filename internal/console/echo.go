// Package console is the application layer that sits on the UART driver.
// The driver moves bytes and nothing else; line-ending policy lives here.
package console

import "context"

// Banner is written once when an echo session starts.
const Banner = "hello world!\r\n"

// Device is the character surface Echo needs. *s3cuart.UART satisfies it.
type Device interface {
	ReceiveByteContext(ctx context.Context) (byte, error)
	PutChar(c int) int
	Puts(s string) int
}

// Echo writes banner and then sends every received byte straight back. A
// carriage return is preceded by a line feed and a line feed by a carriage
// return, so either terminal convention starts a fresh line. Echo returns
// when ctx is done.
func Echo(ctx context.Context, dev Device, banner string) error {
	dev.Puts(banner)
	for {
		c, err := dev.ReceiveByteContext(ctx)
		if err != nil {
			return err
		}
		switch c {
		case '\r':
			dev.PutChar('\n')
		case '\n':
			dev.PutChar('\r')
		}
		dev.PutChar(int(c))
	}
}
