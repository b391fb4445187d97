package swara

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultFundamental is the frequency of middle sa when nothing else is
// given, in Hz.
const DefaultFundamental = 261.63

type (
	// Pitch is a scale degree (swara) in a given octave, resolved to a
	// frequency through a ratio table and a reference frequency. LogOffset is
	// a fractional deviation in octaves from the nominal frequency.
	//
	// Sa and pa have no accidentals; for them Raised is always true.
	Pitch struct {
		Swara       int        `json:"swara" yaml:"swara"`
		Raised      bool       `json:"raised" yaml:"raised"`
		Oct         int        `json:"oct" yaml:"oct"`
		Fundamental float64    `json:"fundamental" yaml:"fundamental"`
		Ratios      RatioTable `json:"ratios" yaml:"ratios"`
		LogOffset   float64    `json:"logOffset" yaml:"logOffset"`
	}

	// PitchOptions are the arguments of NewPitch. The zero value is middle sa
	// at DefaultFundamental in equal temperament.
	PitchOptions struct {
		Swara       int
		Oct         int
		Lowered     bool
		Fundamental float64
		Ratios      RatioTable
		LogOffset   float64
	}
)

var (
	chromaOfDegree = [7][2]int{{0, 0}, {1, 2}, {3, 4}, {5, 6}, {7, 7}, {8, 9}, {10, 11}}
	solfege        = [12]string{"Do", "Ra", "Re", "Me", "Mi", "Fa", "Fi", "Sol", "Le", "La", "Te", "Ti"}
	westernNames   = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	// chroma -> degree, raised
	chromaTable = [12]struct {
		swara  int
		raised bool
	}{
		{0, true}, {1, false}, {1, true}, {2, false}, {2, true}, {3, false},
		{3, true}, {4, true}, {5, false}, {5, true}, {6, false}, {6, true},
	}
	octaveMarks = map[int]string{-2: "\u0324", -1: "\u0323", 1: "\u0307", 2: "\u0308"}
)

// ParseSwara accepts a degree name in any case, either in full ("dha") or as
// its initial letter ("d").
func ParseSwara(s string) (int, error) {
	l := strings.ToLower(strings.TrimSpace(s))
	for i, name := range sargamNames {
		if l == name || (len(l) == 1 && l[0] == name[0]) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrInvalidSwara)
}

// NewPitch builds a pitch, validating the degree and the ratio table.
func NewPitch(o PitchOptions) (Pitch, error) {
	if o.Swara < 0 || o.Swara > 6 {
		return Pitch{}, fmt.Errorf("swara %v out of 0..6: %w", o.Swara, ErrInvalidSwara)
	}
	p := Pitch{
		Swara:       o.Swara,
		Raised:      fixedDegree(o.Swara) || !o.Lowered,
		Oct:         o.Oct,
		Fundamental: o.Fundamental,
		Ratios:      o.Ratios.Copy(),
		LogOffset:   o.LogOffset,
	}
	if p.Fundamental == 0 {
		p.Fundamental = DefaultFundamental
	}
	if p.Ratios == nil {
		p.Ratios = ETRatios()
	}
	if err := p.Validate(); err != nil {
		return Pitch{}, err
	}
	return p, nil
}

// PitchFromNumber resolves a chromatic number (sa = 0, one unit per
// semitone, octave-spanning) into a pitch in equal temperament. Pitch classes
// 1, 3, 5, 8 and 10 are read as lowered degrees, 2, 4, 6, 9 and 11 as raised
// ones. Every integer resolves; whether the result is legal in a raga is the
// raga's business.
func PitchFromNumber(number int, fundamental float64) Pitch {
	c := chromaTable[mod(number, 12)]
	if fundamental == 0 {
		fundamental = DefaultFundamental
	}
	return Pitch{
		Swara:       c.swara,
		Raised:      c.raised,
		Oct:         floorDiv(number, 12),
		Fundamental: fundamental,
		Ratios:      ETRatios(),
	}
}

// Validate checks the degree range and the shape of the ratio table.
func (p Pitch) Validate() error {
	if p.Swara < 0 || p.Swara > 6 {
		return fmt.Errorf("swara %v out of 0..6: %w", p.Swara, ErrInvalidSwara)
	}
	if err := p.Ratios.Validate(); err != nil {
		return fmt.Errorf("invalid pitch ratios: %w", err)
	}
	return nil
}

func (p Pitch) ratio() float64 {
	r, err := p.Ratios.Ratio(p.Swara, p.Raised)
	if err != nil {
		return math.NaN()
	}
	return r
}

// Frequency returns the sounding frequency in Hz. A malformed ratio table
// yields NaN; Validate reports why.
func (p Pitch) Frequency() float64 {
	return p.NonOffsetFrequency() * math.Pow(2, p.LogOffset)
}

func (p Pitch) NonOffsetFrequency() float64 {
	return p.ratio() * p.Fundamental * math.Pow(2, float64(p.Oct))
}

func (p Pitch) LogFreq() float64 {
	return math.Log2(p.Frequency())
}

func (p Pitch) NonOffsetLogFreq() float64 {
	return math.Log2(p.NonOffsetFrequency())
}

// SetOctave moves the pitch to another octave.
func (p *Pitch) SetOctave(oct int) {
	p.Oct = oct
}

// SameAs compares degree, octave and accidental, ignoring the tuning and the
// offset.
func (p Pitch) SameAs(other Pitch) bool {
	return p.Swara == other.Swara && p.Oct == other.Oct && p.Raised == other.Raised
}

func (p Pitch) Copy() Pitch {
	p.Ratios = p.Ratios.Copy()
	return p
}

func (p Pitch) accidentalIndex() int {
	if p.Raised && !fixedDegree(p.Swara) {
		return 1
	}
	return 0
}

// NumberedPitch is the octave-spanning chromatic number of the pitch.
func (p Pitch) NumberedPitch() int {
	return chromaOfDegree[p.Swara][p.accidentalIndex()] + 12*p.Oct
}

func (p Pitch) Chroma() int {
	return mod(p.NumberedPitch(), 12)
}

// ScaleDegree is the one-based degree number, sa = 1.
func (p Pitch) ScaleDegree() int {
	return p.Swara + 1
}

// SargamLetter is the initial of the degree, upper case for raised (and
// unaltered) variants, lower case for lowered ones.
func (p Pitch) SargamLetter() string {
	s := sargamNames[p.Swara][:1]
	if p.Raised {
		return strings.ToUpper(s)
	}
	return s
}

// OctavedSargamLetter marks the octave with combining dots above or below
// the letter.
func (p Pitch) OctavedSargamLetter() string {
	return p.SargamLetter() + octaveMarks[p.Oct]
}

func (p Pitch) SolfegeLetter() string {
	return solfege[p.Chroma()]
}

func (p Pitch) OctavedSolfegeLetter() string {
	return p.SolfegeLetter() + octaveMarks[p.Oct]
}

func (p Pitch) PitchClass() string {
	return strconv.Itoa(p.Chroma())
}

// WesternPitch names the pitch class with sa as C.
func (p Pitch) WesternPitch() string {
	return westernNames[p.Chroma()]
}

// A440CentsDeviation names the nearest equal tempered note at A4 = 440 Hz
// and the deviation from it in cents, e.g. "C4 (+3¢)".
func (p Pitch) A440CentsDeviation() string {
	midi := 69 + 12*math.Log2(p.Frequency()/440)
	nearest := int(math.Round(midi))
	cents := int(math.Round((midi - float64(nearest)) * 100))
	return fmt.Sprintf("%s%d (%+d¢)", westernNames[mod(nearest, 12)], floorDiv(nearest, 12)-1, cents)
}

// MovableCCentsDeviation is the deviation in cents from the equal tempered
// pitch of the same class with sa as C.
func (p Pitch) MovableCCentsDeviation() string {
	et := p.Fundamental * math.Pow(2, float64(p.NumberedPitch())/12)
	cents := int(math.Round(1200 * math.Log2(p.Frequency()/et)))
	return fmt.Sprintf("%s (%+d¢)", p.WesternPitch(), cents)
}

func (p Pitch) String() string {
	return p.OctavedSargamLetter()
}
