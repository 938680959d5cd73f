package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	tty "github.com/mattn/go-tty"
	"github.com/spf13/cobra"

	"github.com/jangala-dev/tinygo-s3cuart/internal/board"
	"github.com/jangala-dev/tinygo-s3cuart/internal/console"
	"github.com/jangala-dev/tinygo-s3cuart/s3cuart"
)

// escapeKey ends an interactive session (Ctrl-]).
const escapeKey = 0x1d

var (
	simOpts = struct {
		input  string
		banner string
	}{}

	simCmd = &cobra.Command{
		Use:   "sim",
		Short: "Run the echo firmware against a simulated UART0",
		Long: "Initialize the driver on a simulated register block and run the echo application on it.\n" +
			"Keystrokes are fed to the RX line; the TX line is printed. Press Ctrl-] to quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := selectedBoard()
			if err != nil {
				return err
			}
			if simOpts.input != "" {
				return runSim(cmd.Context(), p, simOpts.banner, stringKeys(simOpts.input), cmd.OutOrStdout())
			}

			t, err := tty.Open()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			defer t.Close()
			restore := t.MustRaw()
			defer restore()
			return runSim(cmd.Context(), p, simOpts.banner, t.ReadRune, t.Output())
		},
	}
)

// keySource yields one keystroke per call. io.EOF ends the session once the
// echo has caught up.
type keySource func() (rune, error)

func stringKeys(s string) keySource {
	r := strings.NewReader(s)
	return func() (rune, error) {
		c, _, err := r.ReadRune()
		return c, err
	}
}

// simIdleDelay bounds how long a keystroke waits for the polling echo loop.
const simIdleDelay = time.Millisecond

func runSim(ctx context.Context, p board.Profile, banner string, keys keySource, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sim := s3cuart.NewSimBus()
	sim.SetOutput(out)
	sim.SetIdleDelay(simIdleDelay)
	u := s3cuart.New(sim)
	if err := u.Init(); err != nil {
		return err
	}
	for _, w := range sim.Writes() {
		logger.Debug("register write", "reg", w.Reg.String(), "value", fmt.Sprintf("%#08x", w.Value))
	}
	div := sim.Reg(s3cuart.UBRDIV0)
	logger.Info("uart0 configured",
		"board", p.Name,
		"ubrdiv", div,
		"baud", s3cuart.BaudRate(p.PCLK, div))
	if div != p.Divisor {
		logger.Warn("firmware divisor does not match board profile",
			"firmware", div, "profile", p.Divisor)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	echoErr := make(chan error, 1)
	go func() { echoErr <- console.Echo(ctx, u, banner) }()

	var buf [utf8.UTFMax]byte
	for {
		r, err := keys()
		if errors.Is(err, io.EOF) {
			waitDrained(ctx, sim)
			break
		}
		if err != nil {
			cancel()
			<-echoErr
			return err
		}
		if r == escapeKey {
			break
		}
		n := utf8.EncodeRune(buf[:], r)
		sim.Feed(buf[:n])
	}

	cancel()
	if err := <-echoErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Debug("session closed", "tx_bytes", len(sim.Transmitted()), "overruns", sim.Overruns())
	return nil
}

// waitDrained returns once the echo loop has taken every fed byte.
func waitDrained(ctx context.Context, sim *s3cuart.SimBus) {
	for sim.Pending() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Millisecond):
		}
	}
}

func init() {
	simCmd.Flags().StringVarP(&simOpts.input, "input", "i", "", "feed this text instead of reading the terminal")
	simCmd.Flags().StringVar(&simOpts.banner, "banner", console.Banner, "text sent before echoing starts")
}
