//go:build s3c2440

package main

import (
	"errors"
	"time"

	"github.com/jangala-dev/tinygo-s3cuart/s3cuart"
)

// Self-test for UART0 on the board. The checks run in the UART's internal
// loopback mode, so no jumper is needed; results are printed with loopback
// off to whatever terminal is attached at 115200 8N1.

var u = s3cuart.UART0

const byteTimeout = 50 * time.Millisecond

func drain() {
	for {
		if _, err := u.ReceiveByteTimeout(byteTimeout); err != nil {
			return
		}
	}
}

// recvExact collects n looped-back bytes, giving up on the first stall.
func recvExact(n int) (string, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		b, err := u.ReceiveByteTimeout(byteTimeout)
		if err != nil {
			return string(out), err
		}
		out = append(out, b)
	}
	return string(out), nil
}

// expect runs emit in loopback and checks what came back.
func expect(want string, emit func()) string {
	drain()
	emit()
	got, err := recvExact(len(want))
	if err != nil {
		return "timeout after " + string(got)
	}
	if got != want {
		return "got '" + got + "' want '" + want + "'"
	}
	return ""
}

func main() {
	if err := u.Init(); err != nil {
		println("uart0 init:", err.Error())
		for {
		}
	}

	pass, fail := 0, 0
	run := func(name string, f func() string) {
		u.SetLoopback(true)
		msg := f()
		u.SetLoopback(false)
		u.Printf("[Test] %s\r\n", name)
		if msg == "" {
			u.Puts("  PASS\r\n")
			pass++
		} else {
			u.Printf("  FAIL: %s\r\n", msg)
			fail++
		}
	}

	u.Puts("s3cuart self-test starting\r\n")

	run("round-trip: every byte value", func() string {
		drain()
		for i := 0; i < 256; i++ {
			u.SendByte(byte(i))
			b, err := u.ReceiveByteTimeout(byteTimeout)
			if err != nil {
				return "timeout"
			}
			if b != byte(i) {
				s, _ := s3cuart.Sprintf("sent %x got %x", i, b)
				return s
			}
		}
		return ""
	})

	run("puts: order, no terminator", func() string {
		return expect("abc", func() { u.Puts("abc") })
	})

	run("printf: literal", func() string {
		return expect("no directives", func() { u.Printf("no directives") })
	})

	run("printf: %d", func() string {
		return expect("-123 0", func() { u.Printf("%d %d", -123, 0) })
	})

	run("printf: %x", func() string {
		return expect("ff", func() { u.Printf("%x", 255) })
	})

	run("printf: %%", func() string {
		return expect("100%", func() { u.Printf("100%%") })
	})

	run("printf: unknown directive dropped", func() string {
		return expect("[7]", func() { u.Printf("[%q%d]", 7) })
	})

	run("timeout: idle line", func() string {
		drain()
		if _, err := u.ReceiveByteTimeout(byteTimeout); !errors.Is(err, s3cuart.ErrTimeout) {
			return "expected ErrTimeout"
		}
		return ""
	})

	u.Printf("\r\nSummary\r\n  passed = %d\r\n  failed = %d\r\n", pass, fail)
	for {
	}
}
