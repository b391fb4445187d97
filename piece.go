package swara

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/idtap/swara/internal/logger"
	"github.com/viterin/vek"
)

// Times closer than this, in seconds, are considered equal.
const timeEpsilon = 1e-6

type (
	// Piece is a transcribed performance: one row of phrases per track
	// (instrument or voice), the raga they are heard in, section boundaries
	// and meters. All tracks last DurTot seconds; Reset pads shorter tracks
	// with trailing silence.
	//
	// SectionStartsGrid holds, per track, the sorted indices of the phrases
	// that open a section; 0 is always among them. SectionCatGrid holds one
	// categorization per section.
	Piece struct {
		ID                    string                 `json:"_id" yaml:"id"`
		Title                 string                 `json:"title" yaml:"title"`
		Raga                  *Raga                  `json:"raga" yaml:"raga"`
		Instrumentation       []string               `json:"instrumentation" yaml:"instrumentation"`
		TrackTitles           []string               `json:"trackTitles" yaml:"trackTitles"`
		Soloist               string                 `json:"soloist,omitempty" yaml:"soloist,omitempty"`
		SoloInstrument        string                 `json:"soloInstrument,omitempty" yaml:"soloInstrument,omitempty"`
		Location              string                 `json:"location,omitempty" yaml:"location,omitempty"`
		AudioID               string                 `json:"audioID,omitempty" yaml:"audioID,omitempty"`
		DateCreated           time.Time              `json:"dateCreated" yaml:"dateCreated"`
		DateModified          time.Time              `json:"dateModified" yaml:"dateModified"`
		ExcerptRange          *ExcerptRange          `json:"excerptRange,omitempty" yaml:"excerptRange,omitempty"`
		PhraseGrid            [][]*Phrase            `json:"phraseGrid" yaml:"phraseGrid"`
		SectionStartsGrid     [][]int                `json:"sectionStartsGrid" yaml:"sectionStartsGrid"`
		SectionCatGrid        [][]Categorization     `json:"sectionCatGrid" yaml:"sectionCatGrid"`
		Meters                []*Meter               `json:"meters" yaml:"meters"`
		AssemblageDescriptors []AssemblageDescriptor `json:"assemblageDescriptors" yaml:"assemblageDescriptors"`

		DurTot       float64     `json:"durTot" yaml:"durTot"`
		DurArrayGrid [][]float64 `json:"durArrayGrid" yaml:"durArrayGrid"`
	}

	// ExcerptRange locates a transcribed excerpt within a longer recording,
	// in seconds.
	ExcerptRange struct {
		Start float64 `json:"start" yaml:"start"`
		End   float64 `json:"end" yaml:"end"`
	}

	// PieceOptions are the arguments of NewPiece. The number of tracks is the
	// larger of len(PhraseGrid) and len(Instrumentation).
	PieceOptions struct {
		Title             string
		Raga              *Raga
		PhraseGrid        [][]*Phrase
		Instrumentation   []string
		TrackTitles       []string
		SectionStartsGrid [][]int
		SectionCatGrid    [][]Categorization
		Meters            []*Meter
		Soloist           string
		SoloInstrument    string
		Location          string
	}

	// Section is a run of phrases of one track from one section start to
	// the next.
	Section struct {
		Phrases        []*Phrase
		Categorization Categorization
		StartTime      float64
		DurTot         float64
	}
)

func NewPiece(o PieceOptions) (*Piece, error) {
	now := time.Now().UTC()
	p := &Piece{
		ID:                uuid.NewString(),
		Title:             o.Title,
		Raga:              o.Raga,
		Instrumentation:   append([]string(nil), o.Instrumentation...),
		TrackTitles:       append([]string(nil), o.TrackTitles...),
		Soloist:           o.Soloist,
		SoloInstrument:    o.SoloInstrument,
		Location:          o.Location,
		DateCreated:       now,
		DateModified:      now,
		SectionStartsGrid: o.SectionStartsGrid,
		SectionCatGrid:    o.SectionCatGrid,
	}
	if p.Raga == nil {
		r, err := NewRaga(RagaOptions{})
		if err != nil {
			return nil, err
		}
		p.Raga = r
	}
	tracks := len(o.PhraseGrid)
	if len(p.Instrumentation) > tracks {
		tracks = len(p.Instrumentation)
	}
	if tracks == 0 {
		tracks = 1
	}
	p.PhraseGrid = make([][]*Phrase, tracks)
	for i, row := range o.PhraseGrid {
		p.PhraseGrid[i] = append([]*Phrase(nil), row...)
	}
	for _, m := range o.Meters {
		if err := p.AddMeter(m); err != nil {
			return nil, err
		}
	}
	if err := p.Reset(); err != nil {
		return nil, err
	}
	return p, nil
}

// Tracks is the number of tracks of the piece.
func (p *Piece) Tracks() int {
	return len(p.PhraseGrid)
}

func (p *Piece) checkTrack(track int) error {
	if track < 0 || track >= len(p.PhraseGrid) {
		return fmt.Errorf("track %v of %v: %w", track, len(p.PhraseGrid), ErrOutOfRange)
	}
	return nil
}

// Reset recomputes every derived field: phrase indices and start times,
// durations, padding of short tracks and the section grids. It is
// idempotent. A piece without raga, without tracks or with a missing phrase
// is rejected with ErrMissingField and left as it was.
func (p *Piece) Reset() error {
	if err := p.checkModel(); err != nil {
		return err
	}
	p.normalizeTracks()
	for _, phrases := range p.PhraseGrid {
		for i, ph := range phrases {
			ph.PieceIdx = i
			ph.Reset()
			for _, t := range ph.Trajectories() {
				if t.Silent() {
					t.FundID12 = p.Raga.Fundamental
				}
			}
		}
	}
	if err := p.DurArrayFromPhrases(); err != nil {
		return err
	}
	for track := range p.PhraseGrid {
		p.normalizeSections(track)
	}
	sort.SliceStable(p.Meters, func(i, j int) bool { return p.Meters[i].StartTime < p.Meters[j].StartTime })
	return nil
}

func (p *Piece) checkModel() error {
	if p.Raga == nil {
		return fmt.Errorf("piece raga: %w", ErrMissingField)
	}
	if len(p.PhraseGrid) == 0 {
		return fmt.Errorf("piece phraseGrid: %w", ErrMissingField)
	}
	for track, phrases := range p.PhraseGrid {
		for i, ph := range phrases {
			if ph == nil {
				return fmt.Errorf("phrase %v of track %v: %w", i, track, ErrMissingField)
			}
		}
	}
	return nil
}

func (p *Piece) normalizeTracks() {
	n := len(p.PhraseGrid)
	for len(p.Instrumentation) < n {
		p.Instrumentation = append(p.Instrumentation, DefaultInstrumentation)
	}
	for len(p.TrackTitles) < n {
		p.TrackTitles = append(p.TrackTitles, "")
	}
	for len(p.SectionStartsGrid) < n {
		p.SectionStartsGrid = append(p.SectionStartsGrid, []int{0})
	}
	for len(p.SectionCatGrid) < n {
		p.SectionCatGrid = append(p.SectionCatGrid, nil)
	}
}

// normalizeSections sorts and deduplicates the section starts of a track,
// keeps 0 among them and drops starts past the last phrase. Each
// categorization moves with its start; the first one wins on a duplicate and
// starts without one get the default.
func (p *Piece) normalizeSections(track int) {
	type section struct {
		start int
		cat   Categorization
	}
	n := len(p.PhraseGrid[track])
	cats := p.SectionCatGrid[track]
	var sections []section
	for i, s := range p.SectionStartsGrid[track] {
		if s < 0 || (s > 0 && s >= n) {
			continue
		}
		cat := DefaultSectionCategorization()
		if i < len(cats) {
			cat = cats[i]
		}
		sections = append(sections, section{s, cat})
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].start < sections[j].start })
	if len(sections) == 0 || sections[0].start != 0 {
		sections = append([]section{{0, DefaultSectionCategorization()}}, sections...)
	}
	starts := make([]int, 0, len(sections))
	kept := make([]Categorization, 0, len(sections))
	for i, sec := range sections {
		if i > 0 && sec.start == sections[i-1].start {
			continue
		}
		starts = append(starts, sec.start)
		kept = append(kept, sec.cat)
	}
	p.SectionStartsGrid[track] = starts
	p.SectionCatGrid[track] = kept
}

// DurTotFromPhrases sets DurTot to the duration of the longest track and
// pads every shorter track with trailing silence: an empty track gets a
// phrase of silence, otherwise its last phrase is extended.
func (p *Piece) DurTotFromPhrases() error {
	if err := p.checkModel(); err != nil {
		return err
	}
	durTots := make([]float64, len(p.PhraseGrid))
	for track, phrases := range p.PhraseGrid {
		durs := make([]float64, len(phrases))
		for i, ph := range phrases {
			durs[i] = ph.DurTot
		}
		if len(durs) > 0 {
			durTots[track] = vek.Sum(durs)
		}
	}
	p.DurTot = vek.Max(durTots)
	for track, d := range durTots {
		extra := p.DurTot - d
		if extra <= timeEpsilon {
			continue
		}
		logger.Debug("padding track with silence", logger.Fields{"track": track, "seconds": extra})
		if err := p.padTrack(track, extra); err != nil {
			return fmt.Errorf("could not pad track %v: %w", track, err)
		}
	}
	return nil
}

func (p *Piece) padTrack(track int, extra float64) error {
	silence, err := NewTrajectory(TrajectoryOptions{
		ID:              ShapeSilence,
		DurTot:          extra,
		FundID12:        p.Raga.Fundamental,
		Instrumentation: p.Instrumentation[track],
	})
	if err != nil {
		return err
	}
	phrases := p.PhraseGrid[track]
	if len(phrases) == 0 {
		ph, err := NewPhrase(PhraseOptions{
			Trajectories:    []*Trajectory{silence},
			Instrumentation: []string{p.Instrumentation[track]},
		})
		if err != nil {
			return err
		}
		p.PhraseGrid[track] = []*Phrase{ph}
		return nil
	}
	last := phrases[len(phrases)-1]
	last.TrajectoryGrid[0] = append(last.TrajectoryGrid[0], silence)
	last.ConsolidateSilentTrajs()
	return nil
}

// DurArrayFromPhrases pads the tracks (see DurTotFromPhrases), then derives
// each phrase's share of the piece and its start time.
func (p *Piece) DurArrayFromPhrases() error {
	if err := p.DurTotFromPhrases(); err != nil {
		return err
	}
	p.DurArrayGrid = make([][]float64, len(p.PhraseGrid))
	for track, phrases := range p.PhraseGrid {
		durs := make([]float64, len(phrases))
		for i, ph := range phrases {
			durs[i] = ph.DurTot
		}
		start := 0.0
		for i, ph := range phrases {
			ph.PieceIdx = i
			ph.StartTime = start
			start += ph.DurTot
			for _, t := range ph.Trajectories() {
				t.PhraseIdx = i
			}
		}
		if p.DurTot > 0 && len(durs) > 0 {
			durs = vek.DivNumber(durs, p.DurTot)
		}
		p.DurArrayGrid[track] = durs
	}
	return nil
}

// Sections splits a track at its section starts.
func (p *Piece) Sections(track int) ([]Section, error) {
	if err := p.checkTrack(track); err != nil {
		return nil, err
	}
	phrases := p.PhraseGrid[track]
	starts := p.SectionStartsGrid[track]
	ret := make([]Section, 0, len(starts))
	for i, s := range starts {
		end := len(phrases)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		sec := Section{Phrases: phrases[s:end], Categorization: p.SectionCatGrid[track][i]}
		if len(sec.Phrases) > 0 {
			sec.StartTime = sec.Phrases[0].StartTime
			for _, ph := range sec.Phrases {
				sec.DurTot += ph.DurTot
			}
		}
		ret = append(ret, sec)
	}
	return ret, nil
}

// SetSectionStarts replaces the section starts of a track. Categorizations
// follow the sections they belonged to; new sections get the default one.
func (p *Piece) SetSectionStarts(track int, starts []int) error {
	if err := p.checkTrack(track); err != nil {
		return err
	}
	old := make(map[int]Categorization, len(p.SectionStartsGrid[track]))
	for i, s := range p.SectionStartsGrid[track] {
		old[s] = p.SectionCatGrid[track][i]
	}
	p.SectionStartsGrid[track] = append([]int(nil), starts...)
	p.SectionCatGrid[track] = nil
	p.normalizeSections(track)
	for i, s := range p.SectionStartsGrid[track] {
		if c, ok := old[s]; ok {
			p.SectionCatGrid[track][i] = c
		}
	}
	return nil
}

// AddMeter adds a meter; meters may not overlap in time.
func (p *Piece) AddMeter(m *Meter) error {
	if err := m.Validate(); err != nil {
		return err
	}
	for _, o := range p.Meters {
		if m.overlaps(o) {
			return fmt.Errorf("meter at %v s overlaps meter at %v s: %w", m.StartTime, o.StartTime, ErrOverlap)
		}
	}
	p.Meters = append(p.Meters, m)
	sort.SliceStable(p.Meters, func(i, j int) bool { return p.Meters[i].StartTime < p.Meters[j].StartTime })
	return nil
}

func (p *Piece) RemoveMeter(uniqueID string) error {
	for i, m := range p.Meters {
		if m.UniqueID == uniqueID {
			p.Meters = append(p.Meters[:i], p.Meters[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("meter %v: %w", uniqueID, ErrNotFound)
}

// UpdateFundamental retunes the raga and everything in the piece.
func (p *Piece) UpdateFundamental(fundamental float64) {
	p.Raga.Fundamental = fundamental
	for _, phrases := range p.PhraseGrid {
		for _, ph := range phrases {
			ph.UpdateFundamental(fundamental)
		}
	}
}

// Assemblages resolves the stored assemblage descriptors against the
// phrases of the track playing each assemblage's instrument.
func (p *Piece) Assemblages() ([]*Assemblage, error) {
	ret := make([]*Assemblage, 0, len(p.AssemblageDescriptors))
	for _, d := range p.AssemblageDescriptors {
		track := p.trackOfInstrument(d.Instrument)
		if track < 0 {
			return nil, fmt.Errorf("instrument %q of assemblage %v: %w", d.Instrument, d.Name, ErrNotFound)
		}
		a, err := AssemblageFromDescriptor(d, p.PhraseGrid[track])
		if err != nil {
			return nil, err
		}
		ret = append(ret, a)
	}
	return ret, nil
}

// AddAssemblage stores an assemblage, replacing any with the same id.
func (p *Piece) AddAssemblage(a *Assemblage) error {
	track := p.trackOfInstrument(a.Instrument)
	if track < 0 {
		return fmt.Errorf("instrument %q of assemblage %v: %w", a.Instrument, a.Name, ErrNotFound)
	}
	d := a.Descriptor()
	if _, err := AssemblageFromDescriptor(d, p.PhraseGrid[track]); err != nil {
		return err
	}
	for i, o := range p.AssemblageDescriptors {
		if o.ID == d.ID {
			p.AssemblageDescriptors[i] = d
			return nil
		}
	}
	p.AssemblageDescriptors = append(p.AssemblageDescriptors, d)
	return nil
}

func (p *Piece) trackOfInstrument(instrument string) int {
	for i, inst := range p.Instrumentation {
		if inst == instrument {
			return i
		}
	}
	return -1
}

// Copy makes a deep copy of a piece.
func (p *Piece) Copy() *Piece {
	ret := *p
	ret.Raga = p.Raga.Copy()
	ret.Instrumentation = append([]string(nil), p.Instrumentation...)
	ret.TrackTitles = append([]string(nil), p.TrackTitles...)
	if p.ExcerptRange != nil {
		e := *p.ExcerptRange
		ret.ExcerptRange = &e
	}
	ret.PhraseGrid = make([][]*Phrase, len(p.PhraseGrid))
	for i, phrases := range p.PhraseGrid {
		ret.PhraseGrid[i] = make([]*Phrase, len(phrases))
		for j, ph := range phrases {
			ret.PhraseGrid[i][j] = ph.Copy()
		}
	}
	ret.SectionStartsGrid = make([][]int, len(p.SectionStartsGrid))
	for i, s := range p.SectionStartsGrid {
		ret.SectionStartsGrid[i] = append([]int(nil), s...)
	}
	ret.SectionCatGrid = make([][]Categorization, len(p.SectionCatGrid))
	for i, cats := range p.SectionCatGrid {
		ret.SectionCatGrid[i] = make([]Categorization, len(cats))
		for j, c := range cats {
			ret.SectionCatGrid[i][j] = c.Copy()
		}
	}
	ret.Meters = make([]*Meter, len(p.Meters))
	for i, m := range p.Meters {
		ret.Meters[i] = m.Copy()
	}
	ret.AssemblageDescriptors = make([]AssemblageDescriptor, len(p.AssemblageDescriptors))
	for i, d := range p.AssemblageDescriptors {
		nd := d
		nd.LoosePhraseIDs = append([]string(nil), d.LoosePhraseIDs...)
		nd.Strands = make([]StrandDescriptor, len(d.Strands))
		for j, s := range d.Strands {
			nd.Strands[j] = StrandDescriptor{Label: s.Label, ID: s.ID, PhraseIDs: append([]string(nil), s.PhraseIDs...)}
		}
		ret.AssemblageDescriptors[i] = nd
	}
	ret.DurArrayGrid = make([][]float64, len(p.DurArrayGrid))
	for i, d := range p.DurArrayGrid {
		ret.DurArrayGrid[i] = append([]float64(nil), d...)
	}
	return &ret
}
