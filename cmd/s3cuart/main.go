// Command s3cuart is the host-side companion of the UART0 driver: it lists
// board clock profiles, runs the driver against a simulated register block,
// and talks to a real board over a serial port.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/jangala-dev/tinygo-s3cuart/internal/board"
)

var (
	rootOpts = struct {
		logLevel string
		board    string
	}{}

	logger = slog.New(slog.NewTextHandler(os.Stderr))

	rootCmd = &cobra.Command{
		Use:   "s3cuart",
		Short: "Host tools for the S3C2440 UART0 driver",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(cmd.ErrOrStderr(), rootOpts.logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		SilenceUsage: true,
	}
)

// newLogger returns a text logger writing to w at the named level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.HandlerOptions{Level: lvl}.NewTextHandler(w)), nil
}

// selectedBoard resolves the --board flag.
func selectedBoard() (board.Profile, error) {
	if rootOpts.board == "" {
		return board.Default(), nil
	}
	return board.All().Find(rootOpts.board)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootOpts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&rootOpts.board, "board", "b", "", "board profile (default: the profile tagged default)")
	rootCmd.AddCommand(boardsCmd, simCmd, termCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
