package swara

import (
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

type (
	// RatioEntry is the tuning ratio of one scale degree. Sa and pa (degrees 0
	// and 4) have a single ratio, the other degrees have two: [lowered,
	// raised]. On the wire a single ratio is a bare number and a pair is a two
	// element list.
	RatioEntry []float64

	// RatioTable holds one RatioEntry per scale degree, sa to ni.
	RatioTable []RatioEntry

	// DegreeRule tells which variants of a scale degree a raga allows. For sa
	// and pa only Raised is meaningful.
	DegreeRule struct {
		Lowered bool
		Raised  bool
	}

	// RuleSet is the set of allowed variants for the seven scale degrees.
	RuleSet [7]DegreeRule
)

var sargamNames = [7]string{"sa", "re", "ga", "ma", "pa", "dha", "ni"}

// fixedDegree reports whether the degree has a single, unaltered variant.
func fixedDegree(swara int) bool {
	return swara == 0 || swara == 4
}

// ETRatios returns the 12-tone equal temperament ratio table.
func ETRatios() RatioTable {
	et := func(n int) float64 { return math.Pow(2, float64(n)/12) }
	return RatioTable{
		{et(0)},
		{et(1), et(2)},
		{et(3), et(4)},
		{et(5), et(6)},
		{et(7)},
		{et(8), et(9)},
		{et(10), et(11)},
	}
}

// JustRatios returns a five-limit just intonation ratio table.
func JustRatios() RatioTable {
	return RatioTable{
		{1},
		{16.0 / 15, 9.0 / 8},
		{6.0 / 5, 5.0 / 4},
		{4.0 / 3, 45.0 / 32},
		{3.0 / 2},
		{8.0 / 5, 5.0 / 3},
		{9.0 / 5, 15.0 / 8},
	}
}

// Validate checks that the table has seven entries of the right shape.
func (t RatioTable) Validate() error {
	if len(t) != 7 {
		return fmt.Errorf("ratio table has %v entries, expected 7: %w", len(t), ErrRatioShape)
	}
	for i, e := range t {
		if fixedDegree(i) && len(e) != 1 {
			return fmt.Errorf("%v expects a single ratio, got %v: %w", sargamNames[i], len(e), ErrRatioShape)
		}
		if !fixedDegree(i) && len(e) != 2 {
			return fmt.Errorf("%v expects [lowered, raised] ratios, got %v values: %w", sargamNames[i], len(e), ErrRatioShape)
		}
		for _, r := range e {
			if !(r > 0) {
				return fmt.Errorf("%v has non-positive ratio %v: %w", sargamNames[i], r, ErrRatioShape)
			}
		}
	}
	return nil
}

// Ratio returns the ratio of the given degree and accidental.
func (t RatioTable) Ratio(swara int, raised bool) (float64, error) {
	if swara < 0 || swara >= len(t) {
		return 0, fmt.Errorf("swara %v: %w", swara, ErrInvalidSwara)
	}
	e := t[swara]
	if fixedDegree(swara) {
		if len(e) != 1 {
			return 0, fmt.Errorf("%v: %w", sargamNames[swara], ErrRatioShape)
		}
		return e[0], nil
	}
	if len(e) != 2 {
		return 0, fmt.Errorf("%v: %w", sargamNames[swara], ErrRatioShape)
	}
	if raised {
		return e[1], nil
	}
	return e[0], nil
}

// Copy makes a deep copy of a ratio table.
func (t RatioTable) Copy() RatioTable {
	if t == nil {
		return nil
	}
	ret := make(RatioTable, len(t))
	for i, e := range t {
		ret[i] = append(RatioEntry(nil), e...)
	}
	return ret
}

func (e RatioEntry) MarshalJSON() ([]byte, error) {
	if len(e) == 1 {
		return json.Marshal(e[0])
	}
	return json.Marshal([]float64(e))
}

func (e *RatioEntry) UnmarshalJSON(data []byte) error {
	var single float64
	if err := json.Unmarshal(data, &single); err == nil {
		*e = RatioEntry{single}
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("ratio must be a number or a list of numbers: %w", ErrRatioShape)
	}
	*e = pair
	return nil
}

func (e RatioEntry) MarshalYAML() (interface{}, error) {
	if len(e) == 1 {
		return e[0], nil
	}
	return []float64(e), nil
}

func (e *RatioEntry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single float64
		if err := value.Decode(&single); err != nil {
			return fmt.Errorf("ratio must be a number: %w", ErrRatioShape)
		}
		*e = RatioEntry{single}
	case yaml.SequenceNode:
		var pair []float64
		if err := value.Decode(&pair); err != nil {
			return fmt.Errorf("ratio must be a list of numbers: %w", ErrRatioShape)
		}
		*e = pair
	default:
		return fmt.Errorf("ratio must be a number or a list of numbers: %w", ErrRatioShape)
	}
	return nil
}

// YamanRuleSet is the default rule set: all natural degrees with tivra ma.
func YamanRuleSet() RuleSet {
	return RuleSet{
		{Raised: true},
		{Raised: true},
		{Raised: true},
		{Raised: true},
		{Raised: true},
		{Raised: true},
		{Raised: true},
	}
}

// RuleSetFromPitchNumbers builds a rule set allowing exactly the given
// chromatic pitch classes.
func RuleSetFromPitchNumbers(numbers []int) RuleSet {
	var r RuleSet
	for _, n := range numbers {
		p := PitchFromNumber(n, DefaultFundamental)
		if fixedDegree(p.Swara) || p.Raised {
			r[p.Swara].Raised = true
		} else {
			r[p.Swara].Lowered = true
		}
	}
	return r
}

// Allowed reports whether the given variant of a degree is part of the rule
// set.
func (r RuleSet) Allowed(swara int, raised bool) bool {
	if swara < 0 || swara > 6 {
		return false
	}
	if fixedDegree(swara) || raised {
		return r[swara].Raised
	}
	return r[swara].Lowered
}

type wireDegreeRule struct {
	Lowered bool `json:"lowered" yaml:"lowered"`
	Raised  bool `json:"raised" yaml:"raised"`
}

func (r RuleSet) wire() map[string]interface{} {
	ret := make(map[string]interface{}, 7)
	for i, name := range sargamNames {
		if fixedDegree(i) {
			ret[name] = r[i].Raised
		} else {
			ret[name] = wireDegreeRule{Lowered: r[i].Lowered, Raised: r[i].Raised}
		}
	}
	return ret
}

func (r RuleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

func (r RuleSet) MarshalYAML() (interface{}, error) {
	return r.wire(), nil
}

func (r *RuleSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("could not unmarshal rule set: %w", err)
	}
	for i, name := range sargamNames {
		msg, ok := raw[name]
		if !ok {
			return fmt.Errorf("rule set lacks %v: %w", name, ErrMissingField)
		}
		if fixedDegree(i) {
			if err := json.Unmarshal(msg, &r[i].Raised); err != nil {
				return fmt.Errorf("rule for %v must be a boolean: %w", name, err)
			}
			continue
		}
		var w wireDegreeRule
		if err := json.Unmarshal(msg, &w); err != nil {
			return fmt.Errorf("rule for %v must be {lowered, raised}: %w", name, err)
		}
		r[i] = DegreeRule(w)
	}
	return nil
}

func (r *RuleSet) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]yaml.Node
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("could not unmarshal rule set: %w", err)
	}
	for i, name := range sargamNames {
		node, ok := raw[name]
		if !ok {
			return fmt.Errorf("rule set lacks %v: %w", name, ErrMissingField)
		}
		if fixedDegree(i) {
			if err := node.Decode(&r[i].Raised); err != nil {
				return fmt.Errorf("rule for %v must be a boolean: %w", name, err)
			}
			continue
		}
		var w wireDegreeRule
		if err := node.Decode(&w); err != nil {
			return fmt.Errorf("rule for %v must be {lowered, raised}: %w", name, err)
		}
		r[i] = DegreeRule(w)
	}
	return nil
}
