package main

import (
	"bytes"
	"fmt"

	"github.com/idtap/swara"
	"github.com/idtap/swara/gomidi"
	"github.com/spf13/cobra"
)

var (
	midiTrack int
	midiBPM   float64
	midiBend  float64
)

func init() {
	midiCmd.Flags().IntVar(&midiTrack, "track", 0, "Track to export.")
	midiCmd.Flags().Float64Var(&midiBPM, "bpm", 60, "Tempo of the exported file.")
	midiCmd.Flags().Float64Var(&midiBend, "bend-range", 12, "Pitch bend range in semitones.")
	rootCmd.AddCommand(midiCmd)
}

var midiCmd = &cobra.Command{
	Use:   "midi piece ...",
	Short: "Exports a track as a Standard MIDI File",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.MIDITicks <= 0 || cfg.MIDITicks > gomidi.MaxTicks {
			return fmt.Errorf("%v ticks per quarter note: %w", cfg.MIDITicks, swara.ErrOutOfRange)
		}
		return forEachFile(cmd, args, func(filename string) error {
			p, err := loadPiece(filename)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			err = gomidi.WriteTrack(&buf, p, midiTrack, gomidi.Options{
				Ticks:     uint16(cfg.MIDITicks),
				BPM:       midiBPM,
				BendRange: midiBend,
			})
			if err != nil {
				return fmt.Errorf("could not export track %v: %v", midiTrack, err)
			}
			return output(cmd, filename, ".mid", buf.Bytes())
		})
	},
}
