package main

import (
	"fmt"

	"github.com/idtap/swara/internal/logger"
	"github.com/idtap/swara/oto"
	"github.com/idtap/swara/render"
	"github.com/spf13/cobra"
)

var (
	renderTrack int
	renderRate  int
	renderWav   bool
	renderRaw   bool
	renderPCM   bool
	renderPlay  bool
)

func init() {
	renderCmd.Flags().IntVar(&renderTrack, "track", -1, "Track to render; negative mixes all tracks.")
	renderCmd.Flags().IntVar(&renderRate, "rate", 0, "Sample rate in Hz. Defaults to SWARA_SAMPLE_RATE.")
	renderCmd.Flags().BoolVarP(&renderWav, "wav", "w", false, "Output the rendered audio as a .wav file.")
	renderCmd.Flags().BoolVarP(&renderRaw, "raw", "r", false, "Output the rendered audio as a .raw file.")
	renderCmd.Flags().BoolVarP(&renderPCM, "pcm", "c", false, "Convert audio to 16-bit signed PCM when outputting. By default, float32 samples are written.")
	renderCmd.Flags().BoolVarP(&renderPlay, "play", "p", false, "Play the rendered audio (default when no other output is given).")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render piece ...",
	Short: "Renders the pitch contour of pieces as audio",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rate := renderRate
		if rate <= 0 {
			rate = cfg.SampleRate
		}
		play := renderPlay || (!renderWav && !renderRaw)
		var context *oto.Context
		if play {
			var err error
			if context, err = oto.NewContext(rate); err != nil {
				return fmt.Errorf("could not acquire audio context: %v", err)
			}
		}
		return forEachFile(cmd, args, func(filename string) error {
			p, err := loadPiece(filename)
			if err != nil {
				return err
			}
			var buffer []float32
			if renderTrack < 0 {
				buffer, err = render.Piece(p, rate)
			} else {
				buffer, err = render.Track(p, renderTrack, rate)
			}
			if err != nil {
				return fmt.Errorf("could not render: %v", err)
			}
			logger.Debug("rendered piece", logger.Fields{"file": filename, "samples": len(buffer), "sampleRate": rate})
			if renderRaw {
				if err := output(cmd, filename, ".raw", render.Raw(buffer, renderPCM)); err != nil {
					return fmt.Errorf("error outputting .raw file: %v", err)
				}
			}
			if renderWav {
				wav, err := render.Wav(buffer, rate, renderPCM)
				if err != nil {
					return fmt.Errorf("could not generate .wav file: %v", err)
				}
				if err := output(cmd, filename, ".wav", wav); err != nil {
					return fmt.Errorf("error outputting .wav file: %v", err)
				}
			}
			if play {
				return context.Play(buffer).Wait()
			}
			return nil
		})
	},
}
