package main

import (
	"github.com/idtap/swara/internal/config"
	"github.com/idtap/swara/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfg = config.Load()

	outputDir string
	toStdout  bool
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "swara",
	Short: "Tools for transcribed raga performances",
	Long: `swara reads transcriptions of raga performances (.json or .yml pieces) and
reports on them, converts between the formats, exports tracks as MIDI and
renders them as audio.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevel != "" {
			logger.SetLevel(logger.ParseLevel(logLevel))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, files are placed next to the input file.")
	rootCmd.PersistentFlags().BoolVarP(&toStdout, "stdout", "s", false, "Do not write files; write to standard output instead.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error. Overrides SWARA_LOG_LEVEL.")
}
