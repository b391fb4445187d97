package swara

import "github.com/google/uuid"

const (
	Pluck     = "pluck"
	HammerOn  = "hammer-on"
	HammerOff = "hammer-off"
	Slide     = "slide"
	Dampen    = "dampen"
	Consonant = "consonant"
)

type (
	// Articulation is an event at a point within a trajectory: a plucked
	// stroke, a hammer or a slide on an instrument, or a consonant in a vocal
	// line. Strokes are "d" (da) or "r" (ra).
	Articulation struct {
		Name           string `json:"name" yaml:"name"`
		Stroke         string `json:"stroke,omitempty" yaml:"stroke,omitempty"`
		StrokeNickname string `json:"strokeNickname,omitempty" yaml:"strokeNickname,omitempty"`
		Hindi          string `json:"hindi,omitempty" yaml:"hindi,omitempty"`
		IPA            string `json:"ipa,omitempty" yaml:"ipa,omitempty"`
		EngTrans       string `json:"engTrans,omitempty" yaml:"engTrans,omitempty"`
	}

	// Articulations maps normalized trajectory time to the event there.
	Articulations map[TimeKey]Articulation

	// Chikari is a strike of the drone strings at some time within a phrase.
	Chikari struct {
		Fundamental float64 `json:"fundamental" yaml:"fundamental"`
		Pitches     []Pitch `json:"pitches" yaml:"pitches"`
		UniqueID    string  `json:"uniqueId" yaml:"uniqueId"`
	}
)

// NewStroke returns a plucked articulation with its bol nickname.
func NewStroke(stroke string) Articulation {
	a := Articulation{Name: Pluck, Stroke: stroke}
	switch stroke {
	case "d":
		a.StrokeNickname = "da"
	case "r":
		a.StrokeNickname = "ra"
	}
	return a
}

// Copy makes a copy of the articulation map.
func (a Articulations) Copy() Articulations {
	if a == nil {
		return nil
	}
	ret := make(Articulations, len(a))
	for k, v := range a {
		ret[k] = v
	}
	return ret
}

// Keys returns the times of the articulations in ascending order.
func (a Articulations) Keys() []TimeKey {
	return sortedKeys(a)
}

// NewChikari strikes the drone strings of the raga.
func NewChikari(r *Raga) Chikari {
	return Chikari{
		Fundamental: r.Fundamental,
		Pitches:     r.ChikariPitches(),
		UniqueID:    uuid.NewString(),
	}
}

func (c Chikari) Copy() Chikari {
	ret := c
	ret.Pitches = make([]Pitch, len(c.Pitches))
	for i, p := range c.Pitches {
		ret.Pitches[i] = p.Copy()
	}
	return ret
}

func (c Chikari) Freqs() []float64 {
	ret := make([]float64, len(c.Pitches))
	for i, p := range c.Pitches {
		ret[i] = p.Frequency()
	}
	return ret
}
