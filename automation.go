package swara

import (
	"fmt"
	"math"
	"sort"

	"github.com/viterin/vek"
)

type (
	// AutomationValue is a breakpoint: a value at a normalized time, both in
	// [0, 1].
	AutomationValue struct {
		NormTime float64 `json:"normTime" yaml:"normTime"`
		Value    float64 `json:"value" yaml:"value"`
	}

	// Automation is a piecewise-linear envelope over the normalized duration
	// of a trajectory. Values are sorted by time, the first at 0 and the last
	// at 1.
	Automation struct {
		Label  string            `json:"label,omitempty" yaml:"label,omitempty"`
		Values []AutomationValue `json:"values" yaml:"values"`
	}
)

func checkUnit(name string, v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return fmt.Errorf("%v %v not in [0, 1]: %w", name, v, ErrOutOfRange)
	}
	return nil
}

// NewAutomation builds an envelope from breakpoints. Without breakpoints it is
// flat at 1. Missing endpoints take the value of the nearest breakpoint.
func NewAutomation(label string, values []AutomationValue) (*Automation, error) {
	a := &Automation{Label: label}
	if len(values) == 0 {
		a.Values = []AutomationValue{{0, 1}, {1, 1}}
		return a, nil
	}
	for _, v := range values {
		if err := a.AddValue(v.NormTime, v.Value); err != nil {
			return nil, err
		}
	}
	if a.Values[0].NormTime != 0 {
		a.Values = append([]AutomationValue{{0, a.Values[0].Value}}, a.Values...)
	}
	if last := a.Values[len(a.Values)-1]; last.NormTime != 1 {
		a.Values = append(a.Values, AutomationValue{1, last.Value})
	}
	return a, nil
}

// AddValue inserts a breakpoint, replacing any existing one at the same time.
func (a *Automation) AddValue(normTime, value float64) error {
	if err := checkUnit("normTime", normTime); err != nil {
		return err
	}
	if err := checkUnit("value", value); err != nil {
		return err
	}
	i := sort.Search(len(a.Values), func(i int) bool { return a.Values[i].NormTime >= normTime })
	if i < len(a.Values) && a.Values[i].NormTime == normTime {
		a.Values[i].Value = value
		return nil
	}
	a.Values = append(a.Values, AutomationValue{})
	copy(a.Values[i+1:], a.Values[i:])
	a.Values[i] = AutomationValue{normTime, value}
	return nil
}

// RemoveValue deletes an interior breakpoint. The endpoints cannot be
// removed.
func (a *Automation) RemoveValue(idx int) error {
	if idx <= 0 || idx >= len(a.Values)-1 {
		return fmt.Errorf("cannot remove automation value %v of %v: %w", idx, len(a.Values), ErrOutOfRange)
	}
	a.Values = append(a.Values[:idx], a.Values[idx+1:]...)
	return nil
}

// ValueAtX interpolates the envelope at x in [0, 1].
func (a *Automation) ValueAtX(x float64) (float64, error) {
	if err := checkUnit("x", x); err != nil {
		return 0, err
	}
	if len(a.Values) == 0 {
		return 0, fmt.Errorf("automation has no values: %w", ErrMissingField)
	}
	if x <= a.Values[0].NormTime {
		return a.Values[0].Value, nil
	}
	last := a.Values[len(a.Values)-1]
	if x >= last.NormTime {
		return last.Value, nil
	}
	i := sort.Search(len(a.Values), func(i int) bool { return a.Values[i].NormTime > x }) - 1
	v0, v1 := a.Values[i], a.Values[i+1]
	if v1.NormTime == v0.NormTime {
		return v1.Value, nil
	}
	t := (x - v0.NormTime) / (v1.NormTime - v0.NormTime)
	return v0.Value + t*(v1.Value-v0.Value), nil
}

// GenerateValueCurve samples the envelope every valueDur seconds over
// duration seconds, scaled by max. At least two samples are returned.
func (a *Automation) GenerateValueCurve(valueDur, duration, max float64) ([]float64, error) {
	if valueDur <= 0 {
		return nil, fmt.Errorf("value duration %v: %w", valueDur, ErrOutOfRange)
	}
	n := int(math.Round(duration / valueDur))
	if n < 2 {
		n = 2
	}
	ret := make([]float64, n)
	for i := range ret {
		v, err := a.ValueAtX(float64(i) / float64(n-1))
		if err != nil {
			return nil, err
		}
		ret[i] = v
	}
	return vek.MulNumber(ret, max), nil
}

// Partition splits the envelope into one envelope per segment of durArray,
// each renormalized to its own [0, 1].
func (a *Automation) Partition(durArray []float64) ([]*Automation, error) {
	if len(durArray) == 0 {
		return nil, nil
	}
	ends := vek.CumSum(durArray)
	ends[len(ends)-1] = 1
	ret := make([]*Automation, len(durArray))
	start := 0.0
	for i, end := range ends {
		end = math.Min(end, 1)
		span := end - start
		startVal, err := a.ValueAtX(clamp(start, 0, 1))
		if err != nil {
			return nil, err
		}
		endVal, err := a.ValueAtX(end)
		if err != nil {
			return nil, err
		}
		part := &Automation{Label: a.Label, Values: []AutomationValue{{0, startVal}}}
		for _, v := range a.Values {
			if v.NormTime > start && v.NormTime < end && span > 0 {
				part.Values = append(part.Values, AutomationValue{(v.NormTime - start) / span, v.Value})
			}
		}
		part.Values = append(part.Values, AutomationValue{1, endVal})
		ret[i] = part
		start = end
	}
	return ret, nil
}

// CompressAutomations joins consecutive envelopes, one per segment of
// durArray, into a single envelope. Where two segments meet, the breakpoint of
// the later segment wins.
func CompressAutomations(autos []*Automation, durArray []float64) (*Automation, error) {
	if len(autos) != len(durArray) {
		return nil, fmt.Errorf("%v automations for %v segments: %w", len(autos), len(durArray), ErrArity)
	}
	if len(autos) == 0 {
		return NewAutomation("", nil)
	}
	for i, a := range autos {
		if a == nil || len(a.Values) == 0 {
			return nil, fmt.Errorf("values of automation %v: %w", i, ErrMissingField)
		}
	}
	ret := &Automation{Label: autos[0].Label}
	start := 0.0
	for i, a := range autos {
		for _, v := range a.Values {
			t := clamp(start+v.NormTime*durArray[i], 0, 1)
			if n := len(ret.Values); n > 0 && math.Abs(ret.Values[n-1].NormTime-t) < 1e-12 {
				ret.Values[n-1] = AutomationValue{t, v.Value}
				continue
			}
			ret.Values = append(ret.Values, AutomationValue{t, v.Value})
		}
		start += durArray[i]
	}
	ret.Values[0].NormTime = 0
	ret.Values[len(ret.Values)-1].NormTime = 1
	return ret, nil
}

// Copy makes a deep copy of an automation.
func (a *Automation) Copy() *Automation {
	if a == nil {
		return nil
	}
	ret := *a
	ret.Values = append([]AutomationValue(nil), a.Values...)
	return &ret
}
