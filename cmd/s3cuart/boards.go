package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jangala-dev/tinygo-s3cuart/internal/board"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List board clock profiles",
	Long:  "List the UART0 clock profiles with their divisor and the line rate it really produces.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listBoards(cmd.OutOrStdout(), board.All())
	},
}

func listBoards(w io.Writer, ps board.Profiles) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSOC\tPCLK\tBAUD\tUBRDIV\tACTUAL\tERROR")
	for _, name := range ps.Names() {
		p, err := ps.Find(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%+.2f%%\n",
			p.Name, p.SoC, p.PCLK, p.Baud, p.Divisor, p.ActualBaud(), p.BaudError())
	}
	return tw.Flush()
}
