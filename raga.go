package swara

import (
	"fmt"
	"math"
	"sort"

	"github.com/idtap/swara/internal/logger"
	"github.com/viterin/vek"
)

const (
	// Quantization considers legal frequencies in this window, in Hz.
	quantizeLow  = 75.0
	quantizeHigh = 2400.0
	// Residual offsets smaller than this, in octaves, snap to zero.
	logEpsilon = 1e-6
)

type (
	// Raga is a modal framework: the allowed variants of each scale degree and
	// their tuning ratios relative to sa at Fundamental.
	//
	// Ratios lists the ratios of the allowed variants only, in degree order
	// with lowered before raised. Tuning is the full per-degree table the
	// ratios are drawn from; it also tunes the variants the rule set does not
	// allow.
	Raga struct {
		Name        string     `json:"name" yaml:"name"`
		Fundamental float64    `json:"fundamental" yaml:"fundamental"`
		RuleSet     RuleSet    `json:"ruleSet" yaml:"ruleSet"`
		Ratios      []float64  `json:"ratios" yaml:"ratios"`
		Tuning      RatioTable `json:"tuning" yaml:"tuning"`
	}

	// RagaOptions are the arguments of NewRaga. Zero fields take the defaults:
	// Yaman at DefaultFundamental in equal temperament.
	RagaOptions struct {
		Name        string
		Fundamental float64
		RuleSet     *RuleSet
		Ratios      []float64
		Tuning      RatioTable
	}

	variant struct {
		swara  int
		raised bool
	}
)

// NewRaga builds a raga. If the given ratios do not match the number of
// variants the rule set allows, they are recomputed from the tuning table.
func NewRaga(o RagaOptions) (*Raga, error) {
	r := &Raga{
		Name:        o.Name,
		Fundamental: o.Fundamental,
		Tuning:      o.Tuning.Copy(),
	}
	if r.Name == "" {
		r.Name = "Yaman"
	}
	if r.Fundamental == 0 {
		r.Fundamental = DefaultFundamental
	}
	if o.RuleSet != nil {
		r.RuleSet = *o.RuleSet
	} else {
		r.RuleSet = YamanRuleSet()
	}
	if r.Tuning == nil {
		r.Tuning = ETRatios()
	}
	if err := r.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning for raga %v: %w", r.Name, err)
	}
	n := r.RuleSetNumPitches()
	switch {
	case o.Ratios == nil:
		r.Ratios = r.ratiosFromTuning()
	case len(o.Ratios) != n:
		logger.Warn("raga ratios do not match rule set, recomputing from tuning", logger.Fields{
			"raga":     r.Name,
			"ratios":   len(o.Ratios),
			"expected": n,
		})
		r.Ratios = r.ratiosFromTuning()
	default:
		r.Ratios = append([]float64(nil), o.Ratios...)
		r.syncTuning()
	}
	return r, nil
}

// variants lists the allowed (degree, accidental) pairs in ratio order.
func (r *Raga) variants() []variant {
	ret := make([]variant, 0, 12)
	for s := 0; s < 7; s++ {
		if fixedDegree(s) {
			if r.RuleSet[s].Raised {
				ret = append(ret, variant{s, true})
			}
			continue
		}
		if r.RuleSet[s].Lowered {
			ret = append(ret, variant{s, false})
		}
		if r.RuleSet[s].Raised {
			ret = append(ret, variant{s, true})
		}
	}
	return ret
}

func (r *Raga) ratiosFromTuning() []float64 {
	vs := r.variants()
	ret := make([]float64, len(vs))
	for i, v := range vs {
		ret[i], _ = r.Tuning.Ratio(v.swara, v.raised)
	}
	return ret
}

// syncTuning writes the explicit ratios back into the tuning table.
func (r *Raga) syncTuning() {
	for i, v := range r.variants() {
		if fixedDegree(v.swara) {
			r.Tuning[v.swara][0] = r.Ratios[i]
		} else if v.raised {
			r.Tuning[v.swara][1] = r.Ratios[i]
		} else {
			r.Tuning[v.swara][0] = r.Ratios[i]
		}
	}
}

// RuleSetNumPitches is the number of variants the rule set allows per octave.
func (r *Raga) RuleSetNumPitches() int {
	return len(r.variants())
}

// StratifiedRatios returns the per-degree ratio table pitches of this raga
// are built with.
func (r *Raga) StratifiedRatios() RatioTable {
	ret := r.Tuning.Copy()
	for i, v := range r.variants() {
		if i >= len(r.Ratios) {
			break
		}
		if fixedDegree(v.swara) || !v.raised {
			ret[v.swara][0] = r.Ratios[i]
		} else {
			ret[v.swara][1] = r.Ratios[i]
		}
	}
	return ret
}

func (r *Raga) pitch(v variant, oct int) Pitch {
	return Pitch{
		Swara:       v.swara,
		Raised:      v.raised,
		Oct:         oct,
		Fundamental: r.Fundamental,
		Ratios:      r.StratifiedRatios(),
	}
}

// LegalPitches enumerates the pitches of the raga with frequencies in [low,
// high], ascending. The enumeration starts from the lowest octave whose sa
// is at or above low.
func (r *Raga) LegalPitches(low, high float64) []Pitch {
	lowExp := int(math.Ceil(math.Log2(low / r.Fundamental)))
	highExp := int(math.Ceil(math.Log2(high / r.Fundamental)))
	var ret []Pitch
	for exp := lowExp; exp < highExp; exp++ {
		for _, v := range r.variants() {
			p := r.pitch(v, exp)
			if f := p.Frequency(); f >= low && f <= high {
				ret = append(ret, p)
			}
		}
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Frequency() < ret[j].Frequency() })
	return ret
}

// LegalFrequencies returns the frequencies of LegalPitches(low, high).
func (r *Raga) LegalFrequencies(low, high float64) []float64 {
	pitches := r.LegalPitches(low, high)
	ret := make([]float64, len(pitches))
	for i, p := range pitches {
		ret[i] = p.Frequency()
	}
	return ret
}

// Quantize returns the legal pitch nearest to logFreq (log2 of Hz), carrying
// the remaining deviation in its LogOffset.
func (r *Raga) Quantize(logFreq float64) (Pitch, error) {
	pitches := r.LegalPitches(quantizeLow, quantizeHigh)
	if len(pitches) == 0 {
		return Pitch{}, fmt.Errorf("raga %v has no pitches between %v and %v Hz: %w", r.Name, quantizeLow, quantizeHigh, ErrOutOfRaga)
	}
	logs := make([]float64, len(pitches))
	for i, p := range pitches {
		logs[i] = p.LogFreq()
	}
	idx := vek.ArgMin(vek.Abs(vek.SubNumber(logs, logFreq)))
	p := pitches[idx]
	p.LogOffset = logFreq - logs[idx]
	if math.Abs(p.LogOffset) < logEpsilon {
		p.LogOffset = 0
	}
	return p, nil
}

// PitchNumbers lists the legal chromatic pitch classes, ascending.
func (r *Raga) PitchNumbers() []int {
	vs := r.variants()
	ret := make([]int, len(vs))
	for i, v := range vs {
		ret[i] = r.pitch(v, 0).NumberedPitch()
	}
	sort.Ints(ret)
	return ret
}

// PitchNumbersIn lists the legal chromatic numbers in [low, high].
func (r *Raga) PitchNumbersIn(low, high int) []int {
	var ret []int
	nums := r.PitchNumbers()
	for oct := floorDiv(low, 12); oct <= floorDiv(high, 12); oct++ {
		for _, n := range nums {
			pn := n + 12*oct
			if pn >= low && pn <= high {
				ret = append(ret, pn)
			}
		}
	}
	return ret
}

// PitchNumberToScaleNumber converts a chromatic number into the raga's
// scale number: the zero-based index among the legal pitches, counted from
// sa in octave 0.
func (r *Raga) PitchNumberToScaleNumber(pitchNumber int) (int, error) {
	nums := r.PitchNumbers()
	chroma := mod(pitchNumber, 12)
	idx := sort.SearchInts(nums, chroma)
	if idx == len(nums) || nums[idx] != chroma {
		return 0, fmt.Errorf("pitch number %v in raga %v: %w", pitchNumber, r.Name, ErrOutOfRaga)
	}
	return idx + floorDiv(pitchNumber, 12)*len(nums), nil
}

func (r *Raga) ScaleNumberToPitchNumber(scaleNumber int) (int, error) {
	nums := r.PitchNumbers()
	if len(nums) == 0 {
		return 0, fmt.Errorf("raga %v has an empty rule set: %w", r.Name, ErrOutOfRaga)
	}
	return nums[mod(scaleNumber, len(nums))] + 12*floorDiv(scaleNumber, len(nums)), nil
}

func (r *Raga) ScaleNumberToSargamLetter(scaleNumber int) (string, error) {
	pn, err := r.ScaleNumberToPitchNumber(scaleNumber)
	if err != nil {
		return "", err
	}
	return PitchFromNumber(pn, r.Fundamental).SargamLetter(), nil
}

// PitchFromPitchNumber resolves a chromatic number into a pitch tuned by the
// raga. Numbers outside the rule set fail with ErrOutOfRaga.
func (r *Raga) PitchFromPitchNumber(pitchNumber int) (Pitch, error) {
	if _, err := r.PitchNumberToScaleNumber(pitchNumber); err != nil {
		return Pitch{}, err
	}
	p := PitchFromNumber(pitchNumber, r.Fundamental)
	p.Ratios = r.StratifiedRatios()
	return p, nil
}

// SargamLetters lists the letters of the allowed variants.
func (r *Raga) SargamLetters() []string {
	vs := r.variants()
	ret := make([]string, len(vs))
	for i, v := range vs {
		ret[i] = r.pitch(v, 0).SargamLetter()
	}
	return ret
}

// ChikariPitches are the drone strings: sa in the two octaves above middle.
func (r *Raga) ChikariPitches() []Pitch {
	return []Pitch{r.pitch(variant{0, true}, 2), r.pitch(variant{0, true}, 1)}
}

func (r *Raga) ChikariFreqs() []float64 {
	ps := r.ChikariPitches()
	ret := make([]float64, len(ps))
	for i, p := range ps {
		ret[i] = p.Frequency()
	}
	return ret
}

// Copy makes a deep copy of a raga.
func (r *Raga) Copy() *Raga {
	if r == nil {
		return nil
	}
	ret := *r
	ret.Ratios = append([]float64(nil), r.Ratios...)
	ret.Tuning = r.Tuning.Copy()
	return &ret
}

// Validate checks the tuning table and the ratio count.
func (r *Raga) Validate() error {
	if err := r.Tuning.Validate(); err != nil {
		return fmt.Errorf("invalid tuning for raga %v: %w", r.Name, err)
	}
	if len(r.Ratios) != r.RuleSetNumPitches() {
		return fmt.Errorf("raga %v has %v ratios, rule set allows %v: %w", r.Name, len(r.Ratios), r.RuleSetNumPitches(), ErrRatioShape)
	}
	return nil
}
