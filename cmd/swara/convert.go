package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var convertTo string

func init() {
	convertCmd.Flags().StringVarP(&convertTo, "to", "t", "", "Output format: json or yml. By default .json becomes .yml and vice versa.")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert piece ...",
	Short: "Converts pieces between .json and .yml",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachFile(cmd, args, func(filename string) error {
			p, err := loadPiece(filename)
			if err != nil {
				return err
			}
			format := convertTo
			if format == "" {
				format = "yml"
				if ext := extension(filename); ext == ".yml" || ext == ".yaml" {
					format = "json"
				}
			}
			var contents []byte
			switch format {
			case "json":
				contents, err = p.ToSerialized()
			case "yml", "yaml":
				format = "yml"
				contents, err = p.ToYAML()
			default:
				return fmt.Errorf("unknown output format %q", format)
			}
			if err != nil {
				return fmt.Errorf("could not encode %v: %v", format, err)
			}
			return output(cmd, filename, "."+format, contents)
		})
	},
}
