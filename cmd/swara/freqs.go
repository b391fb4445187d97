package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/idtap/swara"
	"github.com/spf13/cobra"
)

var (
	freqsLow  float64
	freqsHigh float64
)

func init() {
	freqsCmd.Flags().Float64Var(&freqsLow, "low", 100, "Lowest frequency listed, in Hz.")
	freqsCmd.Flags().Float64Var(&freqsHigh, "high", 1000, "Highest frequency listed, in Hz.")
	rootCmd.AddCommand(freqsCmd)
}

var freqsCmd = &cobra.Command{
	Use:   "freqs [piece ...]",
	Short: "Lists the tuning of a raga",
	Long: `Lists the legal pitches of the raga of each given piece between --low and
--high. Without arguments, lists the default raga (Yaman) tuned to
SWARA_FUNDAMENTAL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if freqsLow <= 0 || freqsHigh <= freqsLow {
			return fmt.Errorf("invalid frequency window [%v, %v]", freqsLow, freqsHigh)
		}
		if len(args) == 0 {
			r, err := swara.NewRaga(swara.RagaOptions{Fundamental: cfg.Fundamental})
			if err != nil {
				return err
			}
			return writeFreqs(cmd.OutOrStdout(), r)
		}
		return forEachFile(cmd, args, func(filename string) error {
			p, err := loadPiece(filename)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v:\n", filename)
			return writeFreqs(cmd.OutOrStdout(), p.Raga)
		})
	},
}

func writeFreqs(w io.Writer, r *swara.Raga) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (sa = %.2f Hz)\n", r.Name, r.Fundamental)
	for _, p := range r.LegalPitches(freqsLow, freqsHigh) {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", p.OctavedSargamLetter(), p.WesternPitch(), p.Frequency(), p.A440CentsDeviation())
	}
	return tw.Flush()
}
