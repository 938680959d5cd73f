package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	tty "github.com/mattn/go-tty"
	"github.com/spf13/cobra"
	"github.com/tarm/serial"

	"github.com/jangala-dev/tinygo-s3cuart/internal/board"
)

var (
	termOpts = struct {
		port string
		baud int
	}{}

	termCmd = &cobra.Command{
		Use:   "term",
		Short: "Open a serial terminal to the board's UART0",
		Long: "Connect the local terminal to the board at the profile's baud rate, 8N1.\n" +
			"Press Ctrl-] to quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := selectedBoard()
			if err != nil {
				return err
			}
			port, err := serial.OpenPort(serialConfig(p, termOpts.port, termOpts.baud))
			if err != nil {
				return fmt.Errorf("open %s: %w", termOpts.port, err)
			}
			defer port.Close()
			logger.Info("connected", "port", termOpts.port, "board", p.Name, "baud", lineBaud(p, termOpts.baud))

			t, err := tty.Open()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			defer t.Close()
			restore := t.MustRaw()
			defer restore()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			pumpErr := make(chan error, 1)
			go func() { pumpErr <- pump(ctx, port, t.Output()) }()

			err = sendKeys(ctx, t.ReadRune, port)
			cancel()
			if perr := <-pumpErr; perr != nil && !errors.Is(perr, context.Canceled) {
				logger.Warn("serial read stopped", "err", perr)
			}
			return err
		},
	}
)

func lineBaud(p board.Profile, override int) int {
	if override > 0 {
		return override
	}
	return int(p.Baud)
}

// serialConfig matches the line format programmed by the driver: 8N1.
func serialConfig(p board.Profile, name string, baud int) *serial.Config {
	return &serial.Config{
		Name:        name,
		Baud:        lineBaud(p, baud),
		ReadTimeout: 100 * time.Millisecond,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}
}

// pump copies from the board to the terminal until ctx is done. A read that
// times out with no data reports io.EOF, which only means the line was idle.
func pump(ctx context.Context, r io.Reader, w io.Writer) error {
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
}

// sendKeys forwards keystrokes to the board until the escape key.
func sendKeys(ctx context.Context, keys keySource, w io.Writer) error {
	var buf [utf8.UTFMax]byte
	for {
		r, err := keys()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if r == escapeKey {
			return nil
		}
		n := utf8.EncodeRune(buf[:], r)
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func init() {
	termCmd.Flags().StringVarP(&termOpts.port, "port", "p", "/dev/ttyUSB0", "serial device connected to UART0")
	termCmd.Flags().IntVar(&termOpts.baud, "baud", 0, "override the profile's baud rate")
}
