package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jangala-dev/tinygo-s3cuart/internal/board"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "warn")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown", "k", 1)
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("log output %q", out)
	}
	if _, err := newLogger(&buf, "loud"); err == nil {
		t.Fatal("newLogger accepted an unknown level")
	}
}

func TestListBoards(t *testing.T) {
	var buf bytes.Buffer
	if err := listBoards(&buf, board.All()); err != nil {
		t.Fatalf("listBoards: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "NAME") {
		t.Fatalf("missing header in %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "s3c2440 ") {
			if !strings.Contains(line, " 26 ") || !strings.Contains(line, "115740") {
				t.Fatalf("s3c2440 row %q", line)
			}
			return
		}
	}
	t.Fatalf("no s3c2440 row in %q", out)
}

func TestRunSim_EchoesInput(t *testing.T) {
	logger, _ = newLogger(io.Discard, "error")
	var out bytes.Buffer
	err := runSim(context.Background(), board.Default(), "> ", stringKeys("ab\r"), &out)
	if err != nil {
		t.Fatalf("runSim: %v", err)
	}
	if got, want := out.String(), "> ab\n\r"; got != want {
		t.Fatalf("output %q; want %q", got, want)
	}
}

func TestRunSim_EscapeStops(t *testing.T) {
	logger, _ = newLogger(io.Discard, "error")
	var out bytes.Buffer
	keys := stringKeys("x\x1dy")
	if err := runSim(context.Background(), board.Default(), "", keys, &out); err != nil {
		t.Fatalf("runSim: %v", err)
	}
	if strings.Contains(out.String(), "y") {
		t.Fatalf("output %q includes bytes typed after the escape key", out.String())
	}
}

// idleReader reports an idle line a few times before delivering data.
type idleReader struct {
	idle int
	data []byte
}

func (r *idleReader) Read(p []byte) (int, error) {
	if r.idle > 0 {
		r.idle--
		return 0, io.EOF
	}
	if len(r.data) == 0 {
		time.Sleep(time.Millisecond)
		return 0, io.EOF
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

type syncBuffer struct {
	ch chan []byte
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.ch <- append([]byte(nil), p...)
	return len(p), nil
}

func TestPump_IdleIsNotAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := &syncBuffer{ch: make(chan []byte, 4)}
	done := make(chan error, 1)
	go func() { done <- pump(ctx, &idleReader{idle: 3, data: []byte("boot\r\n")}, w) }()

	select {
	case got := <-w.ch:
		if string(got) != "boot\r\n" {
			t.Fatalf("pumped %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("nothing pumped")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("pump returned %v; want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("pump did not stop")
	}
}

func TestSendKeys(t *testing.T) {
	var buf bytes.Buffer
	if err := sendKeys(context.Background(), stringKeys("hé\x1dignored"), &buf); err != nil {
		t.Fatalf("sendKeys: %v", err)
	}
	if got := buf.String(); got != "hé" {
		t.Fatalf("sent %q; want \"hé\"", got)
	}
}

func TestSerialConfig(t *testing.T) {
	c := serialConfig(board.Default(), "/dev/ttyS0", 0)
	if c.Baud != 115200 || c.Size != 8 || c.Name != "/dev/ttyS0" {
		t.Fatalf("config %+v", c)
	}
	if c := serialConfig(board.Default(), "x", 9600); c.Baud != 9600 {
		t.Fatalf("override ignored: %+v", c)
	}
}
