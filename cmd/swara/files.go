package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/idtap/swara"
	"github.com/spf13/cobra"
)

var errFailed = errors.New("some inputs could not be processed")

var pieceExtensions = []string{"*.json", "*.yml", "*.yaml"}

// forEachFile calls process for every path in args, expanding directories to
// the pieces they contain. Failures are reported and do not stop the loop.
func forEachFile(cmd *cobra.Command, args []string, process func(filename string) error) error {
	failed := false
	fail := func(filename string, err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "could not process file %v: %v\n", filename, err)
		sentry.CaptureException(fmt.Errorf("%s %s: %w", cmd.Name(), filename, err))
		failed = true
	}
	for _, param := range args {
		info, err := os.Stat(param)
		if err != nil || !info.IsDir() {
			if err := process(param); err != nil {
				fail(param, err)
			}
			continue
		}
		var files []string
		for _, pattern := range pieceExtensions {
			matches, err := filepath.Glob(filepath.Join(param, pattern))
			if err != nil {
				fail(param, fmt.Errorf("could not glob the path for %v files: %v", pattern, err))
				continue
			}
			files = append(files, matches...)
		}
		for _, file := range files {
			if err := process(file); err != nil {
				fail(file, err)
			}
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

func loadPiece(filename string) (*swara.Piece, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read file %v: %v", filename, err)
	}
	return swara.UnmarshalPiece(data)
}

// output writes contents next to the input file, or into the output
// directory, replacing the extension of filename with extension.
func output(cmd *cobra.Command, filename, extension string, contents []byte) error {
	if toStdout {
		_, err := cmd.OutOrStdout().Write(contents)
		return err
	}
	dir, name := filepath.Split(filename)
	if outputDir != "" {
		dir = outputDir
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
	}
	name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
	f := filepath.Join(dir, name)
	if err := os.WriteFile(f, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %v", f, err)
	}
	return nil
}

func extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
