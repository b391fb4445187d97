package swara

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type (
	// Subdivision is one level of a metric hierarchy: the number of pulses
	// each pulse of the level above divides into, or a list of groups whose
	// sizes add up to it (3+2+2). A single count is a bare number on the
	// wire.
	Subdivision []int

	// Meter is a rhythmic grid laid over part of a piece: Repetitions cycles
	// of the Hierarchy, starting at StartTime. Tempo counts top-level beats
	// per minute.
	Meter struct {
		Hierarchy   []Subdivision `json:"hierarchy" yaml:"hierarchy"`
		Tempo       float64       `json:"tempo" yaml:"tempo"`
		StartTime   float64       `json:"startTime" yaml:"startTime"`
		Repetitions int           `json:"repetitions" yaml:"repetitions"`
		UniqueID    string        `json:"uniqueId" yaml:"uniqueId"`
	}
)

// NewMeter builds a meter of the given hierarchy, e.g. {{4}, {4}} for four
// beats of four pulses.
func NewMeter(hierarchy []Subdivision, tempo, startTime float64, repetitions int) (*Meter, error) {
	m := &Meter{
		Hierarchy:   hierarchy,
		Tempo:       tempo,
		StartTime:   startTime,
		Repetitions: repetitions,
		UniqueID:    uuid.NewString(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (s Subdivision) Count() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

func (m *Meter) Validate() error {
	if m.Tempo <= 0 {
		return fmt.Errorf("meter tempo %v: %w", m.Tempo, ErrOutOfRange)
	}
	if m.Repetitions < 1 {
		return fmt.Errorf("meter repetitions %v: %w", m.Repetitions, ErrOutOfRange)
	}
	if len(m.Hierarchy) == 0 {
		return fmt.Errorf("meter hierarchy: %w", ErrMissingField)
	}
	for i, s := range m.Hierarchy {
		if len(s) == 0 {
			return fmt.Errorf("meter level %v is empty: %w", i, ErrMissingField)
		}
		for _, v := range s {
			if v < 1 {
				return fmt.Errorf("meter level %v has count %v: %w", i, v, ErrOutOfRange)
			}
		}
	}
	return nil
}

// CycleDur is the duration of one cycle in seconds.
func (m *Meter) CycleDur() float64 {
	return float64(m.Hierarchy[0].Count()) * 60 / m.Tempo
}

func (m *Meter) DurTot() float64 {
	return m.CycleDur() * float64(m.Repetitions)
}

func (m *Meter) EndTime() float64 {
	return m.StartTime + m.DurTot()
}

// PulseTimes lists the absolute times of the pulses at a level of the
// hierarchy, 0 being the beats, over all repetitions.
func (m *Meter) PulseTimes(layer int) ([]float64, error) {
	if layer < 0 || layer >= len(m.Hierarchy) {
		return nil, fmt.Errorf("meter layer %v of %v: %w", layer, len(m.Hierarchy), ErrOutOfRange)
	}
	perCycle := 1
	for _, s := range m.Hierarchy[:layer+1] {
		perCycle *= s.Count()
	}
	dur := m.CycleDur() / float64(perCycle)
	n := perCycle * m.Repetitions
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = m.StartTime + float64(i)*dur
	}
	return ret, nil
}

// overlaps reports whether the two meters share any stretch of time.
func (m *Meter) overlaps(o *Meter) bool {
	return m.StartTime < o.EndTime() && o.StartTime < m.EndTime()
}

func (m *Meter) Copy() *Meter {
	ret := *m
	ret.Hierarchy = make([]Subdivision, len(m.Hierarchy))
	for i, s := range m.Hierarchy {
		ret.Hierarchy[i] = append(Subdivision(nil), s...)
	}
	return &ret
}

func (s Subdivision) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]int(s))
}

func (s *Subdivision) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*s = Subdivision{single}
		return nil
	}
	var groups []int
	if err := json.Unmarshal(data, &groups); err != nil {
		return fmt.Errorf("subdivision must be a number or a list of numbers: %w", err)
	}
	*s = groups
	return nil
}

func (s Subdivision) MarshalYAML() (interface{}, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []int(s), nil
}

func (s *Subdivision) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var single int
		if err := value.Decode(&single); err != nil {
			return fmt.Errorf("subdivision must be a number: %w", err)
		}
		*s = Subdivision{single}
		return nil
	}
	var groups []int
	if err := value.Decode(&groups); err != nil {
		return fmt.Errorf("subdivision must be a list of numbers: %w", err)
	}
	*s = groups
	return nil
}
