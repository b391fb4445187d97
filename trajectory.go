package swara

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/viterin/vek"
)

const (
	DefaultInstrumentation = "Sitar"
	defaultSlope           = 2
	durSumTolerance        = 1e-3
)

var vocalInstrumentation = map[string]bool{
	"Vocal (M)": true,
	"Vocal (F)": true,
}

var defaultVib = VibObj{Periods: 8, VertOffset: 0, InitUp: true, Extent: 0.05}

type (
	// VibObj parametrizes the vibrato shape. Extent is the peak-to-peak width
	// in octaves, VertOffset shifts the center of oscillation (clamped to
	// half the extent).
	VibObj struct {
		Periods    float64 `json:"periods" yaml:"periods"`
		VertOffset float64 `json:"vertOffset" yaml:"vertOffset"`
		InitUp     bool    `json:"initUp" yaml:"initUp"`
		Extent     float64 `json:"extent" yaml:"extent"`
	}

	// Vocalization is the sung syllable material of a trajectory: the
	// consonants at its start and end and the vowel in between, each in
	// romanization with Hindi, IPA and plain English renderings.
	Vocalization struct {
		StartConsonant         string `json:"startConsonant,omitempty" yaml:"startConsonant,omitempty"`
		StartConsonantHindi    string `json:"startConsonantHindi,omitempty" yaml:"startConsonantHindi,omitempty"`
		StartConsonantIPA      string `json:"startConsonantIpa,omitempty" yaml:"startConsonantIpa,omitempty"`
		StartConsonantEngTrans string `json:"startConsonantEngTrans,omitempty" yaml:"startConsonantEngTrans,omitempty"`
		EndConsonant           string `json:"endConsonant,omitempty" yaml:"endConsonant,omitempty"`
		EndConsonantHindi      string `json:"endConsonantHindi,omitempty" yaml:"endConsonantHindi,omitempty"`
		EndConsonantIPA        string `json:"endConsonantIpa,omitempty" yaml:"endConsonantIpa,omitempty"`
		EndConsonantEngTrans   string `json:"endConsonantEngTrans,omitempty" yaml:"endConsonantEngTrans,omitempty"`
		Vowel                  string `json:"vowel,omitempty" yaml:"vowel,omitempty"`
		VowelHindi             string `json:"vowelHindi,omitempty" yaml:"vowelHindi,omitempty"`
		VowelIPA               string `json:"vowelIpa,omitempty" yaml:"vowelIpa,omitempty"`
		VowelEngTrans          string `json:"vowelEngTrans,omitempty" yaml:"vowelEngTrans,omitempty"`
	}

	// Trajectory is a single melodic gesture: a curve of one of the shapes in
	// ShapeID through its pitches, lasting DurTot seconds. DurArray divides
	// the normalized duration between the curve's segments and sums to 1.
	//
	// Num, PhraseIdx and StartTime are derived by the owning phrase.
	Trajectory struct {
		ID              ShapeID       `json:"id" yaml:"id"`
		Pitches         []Pitch       `json:"pitches" yaml:"pitches"`
		DurTot          float64       `json:"durTot" yaml:"durTot"`
		DurArray        []float64     `json:"durArray" yaml:"durArray"`
		Slope           float64       `json:"slope,omitempty" yaml:"slope,omitempty"`
		Articulations   Articulations `json:"articulations" yaml:"articulations"`
		VibObj          *VibObj       `json:"vibObj,omitempty" yaml:"vibObj,omitempty"`
		Instrumentation string        `json:"instrumentation" yaml:"instrumentation"`
		Vocalization    `yaml:",inline"`
		Automation      *Automation `json:"automation,omitempty" yaml:"automation,omitempty"`
		FundID12        float64     `json:"fundID12" yaml:"fundID12"`
		GroupID         string      `json:"groupId,omitempty" yaml:"groupId,omitempty"`
		UniqueID        string      `json:"uniqueId" yaml:"uniqueId"`
		Tags            []string    `json:"tags,omitempty" yaml:"tags,omitempty"`

		Num       int     `json:"num" yaml:"num"`
		PhraseIdx int     `json:"phraseIdx" yaml:"phraseIdx"`
		StartTime float64 `json:"startTime" yaml:"startTime"`
	}

	// TrajectoryOptions are the arguments of NewTrajectory. Nil slices and
	// zero values take the shape's defaults.
	TrajectoryOptions struct {
		ID              ShapeID
		Pitches         []Pitch
		DurTot          float64
		DurArray        []float64
		Slope           float64
		Articulations   Articulations
		VibObj          *VibObj
		Instrumentation string
		Vocalization    Vocalization
		Automation      *Automation
		FundID12        float64
		UniqueID        string
		Tags            []string
	}
)

// NewTrajectory builds a trajectory and fills in the shape-dependent
// defaults: segment fractions, slope, vibrato parameters and articulations.
// Zero-length segments are collapsed, see collapseZeroSegments.
func NewTrajectory(o TrajectoryOptions) (*Trajectory, error) {
	if !o.ID.Valid() {
		return nil, fmt.Errorf("shape id %d: %w", int(o.ID), ErrInvalidShape)
	}
	t := &Trajectory{
		ID:              o.ID,
		DurTot:          o.DurTot,
		Slope:           o.Slope,
		Articulations:   o.Articulations.Copy(),
		Instrumentation: o.Instrumentation,
		Vocalization:    o.Vocalization,
		Automation:      o.Automation.Copy(),
		FundID12:        o.FundID12,
		UniqueID:        o.UniqueID,
		Tags:            append([]string(nil), o.Tags...),
	}
	for _, p := range o.Pitches {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid pitch in %v trajectory: %w", t.ID, err)
		}
		t.Pitches = append(t.Pitches, p.Copy())
	}
	if len(t.Pitches) == 0 && (t.ID == ShapeFixed || t.ID == ShapeVibrato) {
		p, _ := NewPitch(PitchOptions{})
		t.Pitches = []Pitch{p}
	}
	if t.DurTot == 0 {
		t.DurTot = 1
	}
	if t.DurTot < 0 {
		return nil, fmt.Errorf("trajectory duration %v: %w", t.DurTot, ErrOutOfRange)
	}
	if o.DurArray != nil {
		t.DurArray = append([]float64(nil), o.DurArray...)
	} else {
		t.DurArray = defaultDurArray(t.ID, len(t.Pitches))
	}
	t.collapseZeroSegments()
	if err := t.ID.checkArity(len(t.Pitches), len(t.DurArray)); err != nil {
		return nil, err
	}
	if sum := vek.Sum(t.DurArray); math.Abs(sum-1) > durSumTolerance {
		return nil, fmt.Errorf("durations of %v trajectory sum to %v, not 1: %w", t.ID, sum, ErrOutOfRange)
	}
	if t.ID.Sloped() && t.Slope == 0 {
		t.Slope = defaultSlope
	}
	if o.VibObj != nil {
		v := *o.VibObj
		t.VibObj = &v
	} else if t.ID == ShapeVibrato {
		v := defaultVib
		t.VibObj = &v
	}
	if t.Instrumentation == "" {
		t.Instrumentation = DefaultInstrumentation
	}
	if t.FundID12 == 0 {
		t.FundID12 = DefaultFundamental
		if len(t.Pitches) > 0 {
			t.FundID12 = t.Pitches[0].Fundamental
		}
	}
	if t.UniqueID == "" {
		t.UniqueID = uuid.NewString()
	}
	t.ConvertCIsoToHindiAndIpa()
	t.defaultArticulations()
	return t, nil
}

func defaultDurArray(id ShapeID, pitches int) []float64 {
	if id.Step() {
		return append([]float64(nil), shapes[id].durs...)
	}
	n := id.segments(pitches)
	if n < 1 {
		n = 1
	}
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = 1 / float64(n)
	}
	return ret
}

// collapseZeroSegments drops zero-length segments. A glide loses the pitch
// the segment led to, a step shape the pitch held during it. The shape is
// then re-derived from what is left: a single pitch becomes Fixed and a ladle
// reduced to two pitches becomes the bend of its surviving half. Durations
// that do not fit the pitches, or that are all zero, are left for the arity
// and sum checks to reject.
func (t *Trajectory) collapseZeroSegments() {
	n := len(t.DurArray)
	if n < 2 || n != t.ID.segments(len(t.Pitches)) {
		return
	}
	durs := t.DurArray[:0:0]
	pitches := t.Pitches[:0:0]
	zeroFirst := t.DurArray[0] == 0
	if t.ID.Step() {
		for i, d := range t.DurArray {
			if d == 0 {
				continue
			}
			durs = append(durs, d)
			pitches = append(pitches, t.Pitches[i])
		}
	} else {
		pitches = append(pitches, t.Pitches[0])
		for i, d := range t.DurArray {
			if d == 0 {
				continue
			}
			durs = append(durs, d)
			pitches = append(pitches, t.Pitches[i+1])
		}
	}
	if len(durs) == n || len(durs) == 0 {
		return
	}
	t.DurArray = durs
	t.Pitches = pitches
	switch {
	case len(pitches) == 1:
		t.ID = ShapeFixed
		t.DurArray = []float64{1}
	case len(pitches) == 2 && t.ID == ShapeLadle:
		t.ID = ShapeApproach
		if zeroFirst {
			t.ID = ShapeBend
		}
	case len(pitches) == 2 && t.ID == ShapeReverseLadle:
		t.ID = ShapeBend
		if zeroFirst {
			t.ID = ShapeDeparture
		}
	}
}

// defaultArticulations places the opening stroke, the hammers and slides of
// step shapes and the consonants of vocal trajectories. Existing keys are
// kept; vocal trajectories never carry plucks.
func (t *Trajectory) defaultArticulations() {
	if t.Articulations == nil {
		t.Articulations = Articulations{}
		if t.ID != ShapeSilence {
			t.Articulations[0] = NewStroke("d")
		}
	}
	if t.ID.Step() {
		start := 0.0
		for i, name := range shapes[t.ID].boundaries {
			start += t.DurArray[i]
			if i+1 >= len(t.Pitches) {
				break
			}
			key := KeyOf(start)
			if _, ok := t.Articulations[key]; ok {
				continue
			}
			if name == "" {
				name = HammerOff
				if t.Pitches[i+1].Frequency() > t.Pitches[i].Frequency() {
					name = HammerOn
				}
			}
			t.Articulations[key] = Articulation{Name: name}
		}
	}
	if t.StartConsonant != "" {
		t.Articulations[0] = Articulation{
			Name:     Consonant,
			Stroke:   t.StartConsonant,
			Hindi:    t.StartConsonantHindi,
			IPA:      t.StartConsonantIPA,
			EngTrans: t.StartConsonantEngTrans,
		}
	}
	if t.EndConsonant != "" {
		t.Articulations[KeyOf(1)] = Articulation{
			Name:     Consonant,
			Stroke:   t.EndConsonant,
			Hindi:    t.EndConsonantHindi,
			IPA:      t.EndConsonantIPA,
			EngTrans: t.EndConsonantEngTrans,
		}
	}
	if t.Vocal() {
		for k, a := range t.Articulations {
			if a.Name == Pluck {
				delete(t.Articulations, k)
			}
		}
	}
}

// Compute evaluates the trajectory at normalized time x in [0, 1], in Hz or,
// with logScale, in log2 Hz. x outside [0, 1] is not checked.
func (t *Trajectory) Compute(x float64, logScale bool) float64 {
	lf := t.logCompute(x)
	if logScale {
		return lf
	}
	return math.Pow(2, lf)
}

// Validate checks the shape, arity and pitches of a trajectory.
func (t *Trajectory) Validate() error {
	if !t.ID.Valid() {
		return fmt.Errorf("shape id %d: %w", int(t.ID), ErrInvalidShape)
	}
	if err := t.ID.checkArity(len(t.Pitches), len(t.DurArray)); err != nil {
		return err
	}
	for i, p := range t.Pitches {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("pitch %v of trajectory %v: %w", i, t.Num, err)
		}
	}
	return nil
}

func (t *Trajectory) Name() string {
	return t.ID.String()
}

func (t *Trajectory) Sloped() bool {
	return t.ID.Sloped()
}

func (t *Trajectory) Silent() bool {
	return t.ID == ShapeSilence
}

func (t *Trajectory) Vocal() bool {
	return vocalInstrumentation[t.Instrumentation]
}

func (t *Trajectory) EndTime() float64 {
	return t.StartTime + t.DurTot
}

func (t *Trajectory) LogFreqs() []float64 {
	ret := make([]float64, len(t.Pitches))
	for i, p := range t.Pitches {
		ret[i] = p.LogFreq()
	}
	return ret
}

func (t *Trajectory) Freqs() []float64 {
	ret := make([]float64, len(t.Pitches))
	for i, p := range t.Pitches {
		ret[i] = p.Frequency()
	}
	return ret
}

// MinLogFreq is the lowest log frequency the trajectory reaches, vibrato
// excursions included. Silent trajectories report their fundamental.
func (t *Trajectory) MinLogFreq() float64 {
	if t.Silent() || len(t.Pitches) == 0 {
		return math.Log2(t.FundID12)
	}
	m := vek.Min(t.LogFreqs())
	if t.ID == ShapeVibrato && t.VibObj != nil {
		m += t.VibObj.VertOffset - t.VibObj.Extent/2
	}
	return m
}

func (t *Trajectory) MaxLogFreq() float64 {
	if t.Silent() || len(t.Pitches) == 0 {
		return math.Log2(t.FundID12)
	}
	m := vek.Max(t.LogFreqs())
	if t.ID == ShapeVibrato && t.VibObj != nil {
		m += t.VibObj.VertOffset + t.VibObj.Extent/2
	}
	return m
}

// UpdateFundamental retunes the pitches and the silence fundamental.
func (t *Trajectory) UpdateFundamental(fundamental float64) {
	for i := range t.Pitches {
		t.Pitches[i].Fundamental = fundamental
	}
	t.FundID12 = fundamental
}

// Copy makes a deep copy of a trajectory, including its unique id.
func (t *Trajectory) Copy() *Trajectory {
	if t == nil {
		return nil
	}
	ret := *t
	ret.Pitches = make([]Pitch, len(t.Pitches))
	for i, p := range t.Pitches {
		ret.Pitches[i] = p.Copy()
	}
	ret.DurArray = append([]float64(nil), t.DurArray...)
	ret.Articulations = t.Articulations.Copy()
	if t.VibObj != nil {
		v := *t.VibObj
		ret.VibObj = &v
	}
	ret.Automation = t.Automation.Copy()
	ret.Tags = append([]string(nil), t.Tags...)
	return &ret
}

// PitchOutput selects the key DurationsOfFixedPitches tallies by.
type PitchOutput int

const (
	PitchNumberOutput PitchOutput = iota
	ChromaOutput
	ScaleDegreeOutput
	SargamLetterOutput
)

// Tally maps a pitch key (see PitchOutput) to seconds, or to proportions.
type Tally map[string]float64

func pitchKey(p Pitch, output PitchOutput) string {
	switch output {
	case ChromaOutput:
		return strconv.Itoa(p.Chroma())
	case ScaleDegreeOutput:
		return strconv.Itoa(p.ScaleDegree())
	case SargamLetterOutput:
		return p.SargamLetter()
	}
	return strconv.Itoa(p.NumberedPitch())
}

// Add accumulates another tally into t.
func (t Tally) Add(other Tally) {
	for k, v := range other {
		t[k] += v
	}
}

// Proportions returns the tally normalized to sum to 1.
func (t Tally) Proportions() Tally {
	total := 0.0
	for _, v := range t {
		total += v
	}
	ret := make(Tally, len(t))
	for k, v := range t {
		if total > 0 {
			ret[k] = v / total
		}
	}
	return ret
}

// DurationsOfFixedPitches tallies the seconds the trajectory dwells on a
// steady pitch. Glides count only where both ends are the same pitch;
// silence counts nothing.
func (t *Trajectory) DurationsOfFixedPitches(output PitchOutput) Tally {
	ret := Tally{}
	p := t.Pitches
	np := func(i int) int { return p[i].NumberedPitch() }
	add := func(i int, dur float64) { ret[pitchKey(p[i], output)] += dur }
	switch t.ID {
	case ShapeFixed, ShapeVibrato:
		add(0, t.DurTot)
	case ShapeBend, ShapeApproach, ShapeDeparture:
		if np(0) == np(1) {
			add(0, t.DurTot)
		}
	case ShapeLadle, ShapeReverseLadle:
		switch {
		case np(0) == np(1) && np(1) == np(2):
			add(0, t.DurTot)
		case np(0) == np(1):
			add(0, t.DurTot*t.DurArray[0])
		case np(1) == np(2):
			add(1, t.DurTot*t.DurArray[1])
		}
	case ShapeYoyo:
		for i := range t.DurArray {
			if np(i) == np(i+1) {
				add(i, t.DurTot*t.DurArray[i])
			}
		}
	case ShapeKrintin, ShapeKrintinSlide, ShapeKrintinSlideHammer, ShapeDenseKrintin, ShapeSlide:
		for i := range p {
			add(i, t.DurTot*t.DurArray[i])
		}
	}
	return ret
}
