package swara_test

import (
	"encoding/json"
	"math"
	"sort"
	"testing"

	"github.com/idtap/swara"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYamanLegalFrequencies(t *testing.T) {
	r, err := swara.NewRaga(swara.RagaOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Yaman", r.Name)
	freqs := r.LegalFrequencies(100, 800)
	require.GreaterOrEqual(t, len(freqs), 3)
	expected := []float64{130.815, 146.83, 164.82}
	for i, want := range expected {
		assert.InDelta(t, want, freqs[i], 0.01, "frequency %v", i)
	}
}

func TestLegalPitchesSorted(t *testing.T) {
	bhairav := swara.RuleSetFromPitchNumbers([]int{0, 1, 4, 5, 7, 8, 11})
	for _, rs := range []*swara.RuleSet{nil, &bhairav} {
		r, err := swara.NewRaga(swara.RagaOptions{RuleSet: rs, Tuning: swara.JustRatios()})
		require.NoError(t, err)
		pitches := r.LegalPitches(75, 2400)
		freqs := r.LegalFrequencies(75, 2400)
		require.Equal(t, len(pitches), len(freqs))
		assert.True(t, sort.Float64sAreSorted(freqs))
		for i, p := range pitches {
			assert.Equal(t, p.Frequency(), freqs[i])
		}
	}
}

func TestQuantize(t *testing.T) {
	r, err := swara.NewRaga(swara.RagaOptions{})
	require.NoError(t, err)
	p, err := r.Quantize(math.Log2(300))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Swara)
	assert.True(t, p.Raised)
	assert.InDelta(t, math.Log2(300/293.6648), p.LogOffset, 1e-3)
	assert.InDelta(t, 300, p.Frequency(), 1e-6)

	exact, err := r.Quantize(math.Log2(261.63))
	require.NoError(t, err)
	assert.Equal(t, 0, exact.Swara)
	assert.Equal(t, 0.0, exact.LogOffset)
}

func TestScaleNumbers(t *testing.T) {
	r, err := swara.NewRaga(swara.RagaOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4, 6, 7, 9, 11}, r.PitchNumbers())
	sn, err := r.PitchNumberToScaleNumber(14)
	require.NoError(t, err)
	assert.Equal(t, 8, sn)
	_, err = r.PitchNumberToScaleNumber(1)
	assert.ErrorIs(t, err, swara.ErrOutOfRaga)
	pn, err := r.ScaleNumberToPitchNumber(-1)
	require.NoError(t, err)
	assert.Equal(t, -1, pn)
	letter, err := r.ScaleNumberToSargamLetter(3)
	require.NoError(t, err)
	assert.Equal(t, "M", letter)
	assert.Equal(t, []int{-1, 0, 2, 4}, r.PitchNumbersIn(-2, 4))
}

func TestPitchFromPitchNumberOutOfRaga(t *testing.T) {
	r, err := swara.NewRaga(swara.RagaOptions{})
	require.NoError(t, err)
	_, err = r.PitchFromPitchNumber(5)
	assert.ErrorIs(t, err, swara.ErrOutOfRaga)
	p, err := r.PitchFromPitchNumber(6)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Swara)
	assert.True(t, p.Raised)
	// the unconditional conversion still resolves it
	assert.Equal(t, "m", swara.PitchFromNumber(5, 0).SargamLetter())
}

func TestMismatchedRatiosAreRecomputed(t *testing.T) {
	r, err := swara.NewRaga(swara.RagaOptions{Ratios: []float64{1, 1.5}})
	require.NoError(t, err)
	assert.Len(t, r.Ratios, 7)
	assert.NoError(t, r.Validate())
}

func TestExplicitRatiosTuneTheRaga(t *testing.T) {
	ratios := []float64{1, 9.0 / 8, 5.0 / 4, 45.0 / 32, 3.0 / 2, 5.0 / 3, 15.0 / 8}
	r, err := swara.NewRaga(swara.RagaOptions{Ratios: ratios})
	require.NoError(t, err)
	p, err := r.PitchFromPitchNumber(4)
	require.NoError(t, err)
	assert.InDelta(t, 261.63*5/4, p.Frequency(), 1e-9)
}

func TestRuleSetWireFormat(t *testing.T) {
	rs := swara.RuleSetFromPitchNumbers([]int{0, 1, 4, 5, 7, 8, 11})
	b, err := json.Marshal(rs)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, true, raw["sa"])
	assert.Equal(t, map[string]interface{}{"lowered": true, "raised": false}, raw["re"])

	var back swara.RuleSet
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, rs, back)

	y, err := yaml.Marshal(rs)
	require.NoError(t, err)
	var backYaml swara.RuleSet
	require.NoError(t, yaml.Unmarshal(y, &backYaml))
	assert.Equal(t, rs, backYaml)
}

func TestRatioTableWireFormat(t *testing.T) {
	b, err := json.Marshal(swara.JustRatios())
	require.NoError(t, err)
	var raw []interface{}
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, float64(1), raw[0])
	assert.Len(t, raw[1], 2)

	var bad swara.RatioTable
	err = json.Unmarshal([]byte(`[1, "x"]`), &bad)
	assert.Error(t, err)
}
