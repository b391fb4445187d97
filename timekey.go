package swara

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// TimeKey is a time in hundredths, used to key events within a trajectory
// (as a fraction of its duration) or within a phrase (in seconds). It prints
// and parses as a two-decimal string, "0.25".
type TimeKey int

// KeyOf rounds a time to the nearest hundredth.
func KeyOf(t float64) TimeKey {
	return TimeKey(math.Round(t * 100))
}

func (k TimeKey) Float() float64 {
	return float64(k) / 100
}

func (k TimeKey) String() string {
	return strconv.FormatFloat(k.Float(), 'f', 2, 64)
}

func ParseTimeKey(s string) (TimeKey, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse time key %q: %w", s, err)
	}
	return KeyOf(f), nil
}

func (k TimeKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *TimeKey) UnmarshalText(text []byte) error {
	v, err := ParseTimeKey(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k TimeKey) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

func (k *TimeKey) UnmarshalYAML(value *yaml.Node) error {
	return k.UnmarshalText([]byte(value.Value))
}
