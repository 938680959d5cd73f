package s3cuart

import (
	"bytes"
	"testing"
	"time"
)

func TestSimBus_StatusFollowsFIFO(t *testing.T) {
	s := NewSimBus()
	if st := s.Get(UTRSTAT0); st&UTRSTAT_RxReady != 0 {
		t.Fatalf("RX ready on empty FIFO: %#x", st)
	}
	if st := s.Get(UTRSTAT0); st&UTRSTAT_TxShiftIdle == 0 {
		t.Fatalf("TX not ready after reset: %#x", st)
	}

	s.Feed([]byte("ok"))
	if st := s.Get(UTRSTAT0); st&UTRSTAT_RxReady == 0 {
		t.Fatalf("RX not ready with pending bytes: %#x", st)
	}
	if b := s.Get(URXH0); b != 'o' {
		t.Fatalf("URXH0 = %q; want 'o'", b)
	}
	if b := s.Get(URXH0); b != 'k' {
		t.Fatalf("URXH0 = %q; want 'k'", b)
	}
	if s.Pending() != 0 {
		t.Fatalf("Pending = %d after drain", s.Pending())
	}
	if st := s.Get(UTRSTAT0); st&UTRSTAT_RxReady != 0 {
		t.Fatalf("RX still ready after drain: %#x", st)
	}
}

func TestSimBus_TxCaptureOutputAndLoopback(t *testing.T) {
	s := NewSimBus()
	var out bytes.Buffer
	s.SetOutput(&out)
	s.Set(UTXH0, 0x1ff) // only the low byte reaches the line

	if got := s.Transmitted(); len(got) != 1 || got[0] != 0xff {
		t.Fatalf("captured %v; want [0xff]", got)
	}
	if out.Len() != 1 || out.Bytes()[0] != 0xff {
		t.Fatalf("output %v; want [0xff]", out.Bytes())
	}
	if s.Pending() != 0 {
		t.Fatal("byte looped back with loopback off")
	}

	s.SetLoopback(true)
	s.Set(UTXH0, 'L')
	if b := s.Get(URXH0); b != 'L' {
		t.Fatalf("looped back %q; want 'L'", b)
	}
	if got := s.TakeTransmitted(); string(got) != "\xffL" {
		t.Fatalf("TakeTransmitted = %q", got)
	}
	if len(s.Transmitted()) != 0 {
		t.Fatal("TakeTransmitted did not clear the capture")
	}
}

func TestSimBus_ReadOnlyRegistersIgnoreStores(t *testing.T) {
	s := NewSimBus()
	s.Set(UTRSTAT0, 0)
	if st := s.Get(UTRSTAT0); st&UTRSTAT_TxShiftIdle == 0 {
		t.Fatal("store to UTRSTAT0 changed status")
	}
	s.Set(URXH0, 'x')
	if s.Pending() != 0 {
		t.Fatal("store to URXH0 queued a byte")
	}
	if n := len(s.Writes()); n != 2 {
		t.Fatalf("write log has %d entries; want 2", n)
	}
}

func TestSimBus_Overrun(t *testing.T) {
	s := NewSimBus()
	data := make([]byte, 600)
	for i := range data {
		data[i] = byte(i)
	}
	s.Feed(data)

	// The FIFO keeps the newest 511 bytes.
	if got := s.Pending(); got != 511 {
		t.Fatalf("Pending = %d; want 511", got)
	}
	if got := s.Overruns(); got != 600-511 {
		t.Fatalf("Overruns = %d; want %d", got, 600-511)
	}
	if b := s.Get(URXH0); b != uint32(byte(600-511)) {
		t.Fatalf("oldest kept byte = %d; want %d", b, byte(600-511))
	}
}

func TestSimBus_Reset(t *testing.T) {
	s := NewSimBus()
	s.Set(UBRDIV0, 26)
	s.Feed([]byte("x"))
	s.Set(UTXH0, 'y')
	s.StallTx(true)
	s.Reset()
	if s.Reg(UBRDIV0) != 0 || s.Pending() != 0 || len(s.Transmitted()) != 0 || len(s.Writes()) != 0 {
		t.Fatal("Reset left state behind")
	}
	if st := s.Get(UTRSTAT0); st&UTRSTAT_TxShiftIdle == 0 {
		t.Fatal("Reset did not clear TX stall")
	}
}

func TestRegString(t *testing.T) {
	if got := UTRSTAT0.String(); got != "UTRSTAT0" {
		t.Fatalf("String = %q", got)
	}
	if got := Reg(0x1234).String(); got != "0x1234" {
		t.Fatalf("String = %q", got)
	}
	if !UTXH0.Byte() || UCON0.Byte() {
		t.Fatal("Byte() width wrong")
	}
}

func TestDivisor(t *testing.T) {
	if got := Divisor(PCLK, Baud); got != BaudDivisor {
		t.Fatalf("Divisor(PCLK, Baud) = %d; want %d", got, BaudDivisor)
	}
	if got := BaudRate(PCLK, BaudDivisor); got != 115740 {
		t.Fatalf("BaudRate = %d; want 115740", got)
	}
	if Divisor(PCLK, 0) != 0 || Divisor(16, 115200) != 0 {
		t.Fatal("degenerate divisors should be 0")
	}
	if got := Divisor(PCLK, 1<<28); got != 0 {
		t.Fatalf("Divisor(PCLK, 1<<28) = %d; want 0", got)
	}
	if got := Divisor(4000000000, 1); got != 249999999 {
		t.Fatalf("Divisor(4GHz, 1) = %d; want 249999999", got)
	}
	if got := BaudRate(PCLK, 0x0fffffff); got != 0 {
		t.Fatalf("BaudRate(PCLK, 0x0fffffff) = %d; want 0", got)
	}
	if got := BaudRate(PCLK, 0xffffffff); got != 0 {
		t.Fatalf("BaudRate(PCLK, 0xffffffff) = %d; want 0", got)
	}
}

func TestSimBus_IdleDelayThrottlesEmptyPolling(t *testing.T) {
	const delay = 50 * time.Millisecond
	s := NewSimBus()
	s.SetIdleDelay(delay)

	start := time.Now()
	for i := 0; i < idleSpins; i++ {
		s.Get(UTRSTAT0)
	}
	if el := time.Since(start); el >= delay {
		t.Fatalf("first %d polls took %v; want no delay", idleSpins, el)
	}

	start = time.Now()
	s.Get(UTRSTAT0)
	if el := time.Since(start); el < delay {
		t.Fatalf("idle poll took %v; want at least %v", el, delay)
	}

	s.Feed([]byte{'a'})
	start = time.Now()
	if st := s.Get(UTRSTAT0); st&UTRSTAT_RxReady == 0 {
		t.Fatalf("RX not ready after Feed: %#x", st)
	}
	if el := time.Since(start); el >= delay {
		t.Fatalf("poll with data pending took %v", el)
	}
}

func TestSimBus_IdleDelayLeavesTransmitAlone(t *testing.T) {
	s := NewSimBus()
	s.SetIdleDelay(time.Second)
	u := New(s)
	if err := u.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	msg := bytes.Repeat([]byte("x"), 4*idleSpins)
	start := time.Now()
	if _, err := u.Write(msg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if el := time.Since(start); el >= time.Second {
		t.Fatalf("Write took %v; transmit polling was throttled", el)
	}
	if got := s.Transmitted(); !bytes.Equal(got, msg) {
		t.Fatalf("transmitted %d bytes; want %d", len(got), len(msg))
	}
}

func TestSimBus_IdleDelayedReceiveStillWakes(t *testing.T) {
	s := NewSimBus()
	s.SetIdleDelay(time.Millisecond)
	u := New(s)
	if err := u.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	got := make(chan byte, 1)
	go func() { got <- u.ReceiveByte() }()
	time.Sleep(20 * time.Millisecond)
	s.Feed([]byte{'z'})

	select {
	case b := <-got:
		if b != 'z' {
			t.Fatalf("got %q; want 'z'", b)
		}
	case <-time.After(time.Second):
		t.Fatal("receiver did not wake after Feed")
	}
}
