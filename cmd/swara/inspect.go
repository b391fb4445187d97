package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/idtap/swara"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	report struct {
		File   string
		Title  string
		Raga   string
		DurTot float64
		Meters int
		Chunk  float64
		Tracks []trackReport
	}

	trackReport struct {
		Index      int
		Instrument string
		Phrases    int
		Sections   []sectionReport
		Pitches    []pitchShare
		Windows    []windowReport
	}

	// windowReport lists the sargam sung or played in one window of the
	// chunked view of a track.
	windowReport struct {
		Start  float64
		Sargam []string
	}

	sectionReport struct {
		Start  float64
		Label  string
		Labels []string
	}

	pitchShare struct {
		Name    string
		Percent float64
	}
)

const reportTemplate = `{{ .File }}: {{ .Title | default "untitled" | title }}
  raga {{ .Raga }}, {{ printf "%.2f" .DurTot }} s, {{ .Meters }} meter(s)
{{- range .Tracks }}
  track {{ .Index }} ({{ .Instrument | title }}): {{ .Phrases }} phrase(s)
{{- range .Sections }}
    {{ printf "%8.2f" .Start }} s  {{ .Label | default "unlabeled" }}{{ if .Labels }} [{{ .Labels | join ", " }}]{{ end }}
{{- end }}
{{- range .Pitches }}
    {{ printf "%-3s" .Name }} {{ printf "%5.1f" .Percent }}% {{ repeat (int .Percent) "#" }}
{{- end }}
    windows of {{ printf "%.2f" $.Chunk }} s
{{- range .Windows }}
    {{ printf "%8.2f" .Start }} s  {{ .Sargam | join " " | default "-" }}
{{- end }}
{{- end }}
`

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs()).Parse(reportTemplate))

// reportFuncs are the sprig functions with title replaced by a Unicode aware
// title caser.
func reportFuncs() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	caser := cases.Title(language.English)
	funcs["title"] = func(s string) string {
		return caser.String(s)
	}
	return funcs
}

var inspectChunk float64

func init() {
	inspectCmd.Flags().Float64Var(&inspectChunk, "chunk", 0, "Seconds per window of the sargam listing. Defaults to SWARA_CHUNK_DURATION.")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect piece ...",
	Short: "Summarizes pieces",
	Long: `Prints for each piece its raga, duration and, per track, the sections with
their labels, how long each sargam letter is held and the sargam of each
window of --chunk seconds.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chunk := inspectChunk
		if chunk == 0 {
			chunk = cfg.ChunkDuration
		}
		if chunk <= 0 {
			return fmt.Errorf("chunk of %v s: %w", chunk, swara.ErrOutOfRange)
		}
		return forEachFile(cmd, args, func(filename string) error {
			p, err := loadPiece(filename)
			if err != nil {
				return err
			}
			r, err := newReport(filename, p, chunk)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), r)
		})
	},
}

func newReport(filename string, p *swara.Piece, chunk float64) (report, error) {
	r := report{File: filename, Title: p.Title, Raga: p.Raga.Name, DurTot: p.DurTot, Meters: len(p.Meters), Chunk: chunk}
	for track := 0; track < p.Tracks(); track++ {
		tr := trackReport{Index: track, Instrument: swara.DefaultInstrumentation, Phrases: len(p.PhraseGrid[track])}
		if track < len(p.Instrumentation) {
			tr.Instrument = p.Instrumentation[track]
		}
		sections, err := p.Sections(track)
		if err != nil {
			return report{}, fmt.Errorf("track %v: %w", track, err)
		}
		for _, s := range sections {
			tr.Sections = append(tr.Sections, sectionReport{
				Start:  s.StartTime,
				Label:  s.Categorization.TopLevel,
				Labels: s.Categorization.Selected(),
			})
		}
		tally := p.DurationsOfFixedPitches(track, swara.SargamLetterOutput, true)
		for name, share := range tally {
			tr.Pitches = append(tr.Pitches, pitchShare{Name: name, Percent: 100 * share})
		}
		sort.Slice(tr.Pitches, func(i, j int) bool {
			if tr.Pitches[i].Percent != tr.Pitches[j].Percent {
				return tr.Pitches[i].Percent > tr.Pitches[j].Percent
			}
			return tr.Pitches[i].Name < tr.Pitches[j].Name
		})
		for i, window := range p.ChunkedDisplaySargam(track, chunk) {
			w := windowReport{Start: float64(i) * chunk}
			for _, s := range window {
				w.Sargam = append(w.Sargam, s.Sargam)
			}
			tr.Windows = append(tr.Windows, w)
		}
		r.Tracks = append(r.Tracks, tr)
	}
	return r, nil
}

func writeReport(w io.Writer, r report) error {
	var b strings.Builder
	if err := reportTmpl.Execute(&b, r); err != nil {
		return fmt.Errorf("could not execute report template: %v", err)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
