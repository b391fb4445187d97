package swara_test

import (
	"math"
	"testing"

	"github.com/idtap/swara"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pitch(t *testing.T, number int) swara.Pitch {
	t.Helper()
	return swara.PitchFromNumber(number, 0)
}

func TestKrintinCompute(t *testing.T) {
	traj, err := swara.NewTrajectory(swara.TrajectoryOptions{
		ID:       swara.ShapeKrintin,
		Pitches:  []swara.Pitch{pitch(t, 0), pitch(t, 7)},
		DurArray: []float64{0.3, 0.7},
	})
	require.NoError(t, err)
	assert.InDelta(t, 261.63, traj.Compute(0.2, false), 0.01)
	assert.InDelta(t, 392.0, traj.Compute(0.5, false), 0.01)
	assert.InDelta(t, math.Log2(392.0), traj.Compute(0.5, true), 1e-4)

	art, ok := traj.Articulations[swara.KeyOf(0)]
	require.True(t, ok)
	assert.Equal(t, swara.Pluck, art.Name)
	assert.Equal(t, "da", art.StrokeNickname)
	assert.Equal(t, swara.HammerOn, traj.Articulations[swara.KeyOf(0.3)].Name)
}

func TestStepShapeDefaults(t *testing.T) {
	cases := []struct {
		id      swara.ShapeID
		numbers []int
		slides  []swara.TimeKey
	}{
		{swara.ShapeKrintin, []int{4, 2}, nil},
		{swara.ShapeKrintinSlide, []int{4, 2, 7}, []swara.TimeKey{67}},
		{swara.ShapeKrintinSlideHammer, []int{4, 2, 7, 4}, []swara.TimeKey{50}},
		{swara.ShapeDenseKrintin, []int{4, 2, 4, 7, 9, 7}, []swara.TimeKey{50}},
		{swara.ShapeSlide, []int{4, 7}, []swara.TimeKey{50}},
	}
	for _, c := range cases {
		t.Run(c.id.String(), func(t *testing.T) {
			pitches := make([]swara.Pitch, len(c.numbers))
			for i, n := range c.numbers {
				pitches[i] = pitch(t, n)
			}
			traj, err := swara.NewTrajectory(swara.TrajectoryOptions{ID: c.id, Pitches: pitches})
			require.NoError(t, err)
			assert.Len(t, traj.DurArray, len(traj.Pitches))
			sum := 0.0
			for _, d := range traj.DurArray {
				sum += d
			}
			assert.InDelta(t, 1, sum, 1e-9)
			for _, k := range c.slides {
				assert.Equal(t, swara.Slide, traj.Articulations[k].Name, "at %v", k)
			}
			assert.Len(t, traj.Articulations, len(pitches))
		})
	}
}

func TestArityErrors(t *testing.T) {
	_, err := swara.NewTrajectory(swara.TrajectoryOptions{ID: swara.ShapeBend, Pitches: []swara.Pitch{pitch(t, 0)}})
	assert.ErrorIs(t, err, swara.ErrArity)
	_, err = swara.NewTrajectory(swara.TrajectoryOptions{
		ID:       swara.ShapeKrintin,
		Pitches:  []swara.Pitch{pitch(t, 0), pitch(t, 7)},
		DurArray: []float64{1},
	})
	assert.ErrorIs(t, err, swara.ErrArity)
	_, err = swara.NewTrajectory(swara.TrajectoryOptions{ID: swara.ShapeID(14)})
	assert.ErrorIs(t, err, swara.ErrInvalidShape)
	_, err = swara.NewTrajectory(swara.TrajectoryOptions{
		ID:       swara.ShapeBend,
		Pitches:  []swara.Pitch{pitch(t, 0), pitch(t, 2)},
		DurArray: []float64{0.5},
	})
	assert.ErrorIs(t, err, swara.ErrOutOfRange)
}

func TestGlideEndpoints(t *testing.T) {
	a, b := pitch(t, 0), pitch(t, 4)
	for _, id := range []swara.ShapeID{swara.ShapeBend, swara.ShapeApproach, swara.ShapeDeparture} {
		traj, err := swara.NewTrajectory(swara.TrajectoryOptions{ID: id, Pitches: []swara.Pitch{a, b}})
		require.NoError(t, err, id.String())
		assert.InDelta(t, a.Frequency(), traj.Compute(0, false), 1e-6, id.String())
		assert.InDelta(t, b.Frequency(), traj.Compute(1, false), 1e-6, id.String())
	}
	bend, _ := swara.NewTrajectory(swara.TrajectoryOptions{ID: swara.ShapeBend, Pitches: []swara.Pitch{a, b}})
	assert.InDelta(t, (a.LogFreq()+b.LogFreq())/2, bend.Compute(0.5, true), 1e-9)
	assert.False(t, bend.Sloped())
	approach, _ := swara.NewTrajectory(swara.TrajectoryOptions{ID: swara.ShapeApproach, Pitches: []swara.Pitch{a, b}})
	assert.Equal(t, 2.0, approach.Slope)
}

func TestLadleAndYoyo(t *testing.T) {
	ps := []swara.Pitch{pitch(t, 0), pitch(t, 4), pitch(t, 2)}
	for _, id := range []swara.ShapeID{swara.ShapeLadle, swara.ShapeReverseLadle, swara.ShapeYoyo} {
		traj, err := swara.NewTrajectory(swara.TrajectoryOptions{ID: id, Pitches: ps, DurArray: []float64{0.4, 0.6}})
		require.NoError(t, err, id.String())
		assert.InDelta(t, ps[0].LogFreq(), traj.Compute(0, true), 1e-9, id.String())
		assert.InDelta(t, ps[1].LogFreq(), traj.Compute(0.4, true), 1e-9, id.String())
		assert.InDelta(t, ps[2].LogFreq(), traj.Compute(1, true), 1e-9, id.String())
	}
}

func TestZeroSegmentsCollapse(t *testing.T) {
	traj, err := swara.NewTrajectory(swara.TrajectoryOptions{
		ID:       swara.ShapeYoyo,
		Pitches:  []swara.Pitch{pitch(t, 0), pitch(t, 2), pitch(t, 4), pitch(t, 5)},
		DurArray: []float64{0.5, 0, 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, traj.DurArray)
	require.Len(t, traj.Pitches, 3)
	assert.Equal(t, 5, traj.Pitches[2].NumberedPitch())
}

func TestZeroSegmentsRederiveShape(t *testing.T) {
	sa, ga, pa := pitch(t, 0), pitch(t, 4), pitch(t, 7)
	tests := []struct {
		name     string
		id       swara.ShapeID
		pitches  []swara.Pitch
		durs     []float64
		want     swara.ShapeID
		wantPits []swara.Pitch
	}{
		{"ladle without approach", swara.ShapeLadle, []swara.Pitch{sa, ga, pa}, []float64{0, 1}, swara.ShapeBend, []swara.Pitch{sa, pa}},
		{"ladle without bend", swara.ShapeLadle, []swara.Pitch{sa, ga, pa}, []float64{1, 0}, swara.ShapeApproach, []swara.Pitch{sa, ga}},
		{"reverse ladle without bend", swara.ShapeReverseLadle, []swara.Pitch{sa, ga, pa}, []float64{0, 1}, swara.ShapeDeparture, []swara.Pitch{sa, pa}},
		{"reverse ladle without departure", swara.ShapeReverseLadle, []swara.Pitch{sa, ga, pa}, []float64{1, 0}, swara.ShapeBend, []swara.Pitch{sa, ga}},
		{"yoyo keeps its shape", swara.ShapeYoyo, []swara.Pitch{sa, ga, pa}, []float64{0, 1}, swara.ShapeYoyo, []swara.Pitch{sa, pa}},
		{"krintin down to one pitch", swara.ShapeKrintin, []swara.Pitch{sa, pa}, []float64{0, 1}, swara.ShapeFixed, []swara.Pitch{pa}},
		{"slide down to one pitch", swara.ShapeSlide, []swara.Pitch{sa, pa}, []float64{1, 0}, swara.ShapeFixed, []swara.Pitch{sa}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traj, err := swara.NewTrajectory(swara.TrajectoryOptions{ID: tt.id, Pitches: tt.pitches, DurArray: tt.durs})
			require.NoError(t, err)
			assert.Equal(t, tt.want, traj.ID)
			require.Len(t, traj.Pitches, len(tt.wantPits))
			for i, p := range tt.wantPits {
				assert.Equal(t, p.NumberedPitch(), traj.Pitches[i].NumberedPitch())
			}
			assert.InDelta(t, 1, traj.DurArray[0]*float64(len(traj.DurArray)), 1e-9)
			assert.InDelta(t, tt.wantPits[0].Frequency(), traj.Compute(0, false), 1e-6)
			last := tt.wantPits[len(tt.wantPits)-1]
			assert.InDelta(t, last.Frequency(), traj.Compute(1, false), 1e-6)
		})
	}

	_, err := swara.NewTrajectory(swara.TrajectoryOptions{
		ID:       swara.ShapeKrintinSlide,
		Pitches:  []swara.Pitch{sa, ga, pa},
		DurArray: []float64{0, 0.5, 0.5},
	})
	assert.ErrorIs(t, err, swara.ErrArity)
	_, err = swara.NewTrajectory(swara.TrajectoryOptions{
		ID:       swara.ShapeLadle,
		Pitches:  []swara.Pitch{sa, ga, pa},
		DurArray: []float64{0, 0},
	})
	assert.ErrorIs(t, err, swara.ErrOutOfRange)
}

func TestVibrato(t *testing.T) {
	vib := swara.VibObj{Periods: 4, Extent: 0.1, InitUp: true}
	traj, err := swara.NewTrajectory(swara.TrajectoryOptions{
		ID:      swara.ShapeVibrato,
		Pitches: []swara.Pitch{pitch(t, 0)},
		VibObj:  &vib,
	})
	require.NoError(t, err)
	base := pitch(t, 0).LogFreq()
	assert.InDelta(t, base, traj.Compute(0, true), 1e-9)
	assert.InDelta(t, base, traj.Compute(1, true), 1e-9)
	assert.InDelta(t, base+0.05, traj.Compute(1.0/8, true), 1e-9)
	for i := 0; i <= 100; i++ {
		v := traj.Compute(float64(i)/100, true)
		assert.LessOrEqual(t, v, base+0.05+1e-9)
		assert.GreaterOrEqual(t, v, base-0.05-1e-9)
	}
	assert.InDelta(t, base+0.05, traj.MaxLogFreq(), 1e-9)
	assert.InDelta(t, base-0.05, traj.MinLogFreq(), 1e-9)
}

func TestSilence(t *testing.T) {
	traj, err := swara.NewTrajectory(swara.TrajectoryOptions{ID: swara.ShapeSilence, DurTot: 2, FundID12: 220})
	require.NoError(t, err)
	assert.True(t, traj.Silent())
	assert.Empty(t, traj.Articulations)
	assert.InDelta(t, 220, traj.Compute(0.7, false), 1e-9)
}

func TestVocalTrajectory(t *testing.T) {
	traj, err := swara.NewTrajectory(swara.TrajectoryOptions{
		ID:              swara.ShapeFixed,
		Pitches:         []swara.Pitch{pitch(t, 0)},
		Instrumentation: "Vocal (F)",
		Vocalization:    swara.Vocalization{StartConsonant: "ka", Vowel: "ā"},
	})
	require.NoError(t, err)
	for _, a := range traj.Articulations {
		assert.NotEqual(t, swara.Pluck, a.Name)
	}
	art := traj.Articulations[0]
	assert.Equal(t, swara.Consonant, art.Name)
	assert.Equal(t, "क", art.Hindi)
	assert.Equal(t, "आ", traj.VowelHindi)
	assert.Equal(t, "kaa", traj.Syllable())
}

func TestDurationsOfFixedPitches(t *testing.T) {
	krintin, err := swara.NewTrajectory(swara.TrajectoryOptions{
		ID:       swara.ShapeKrintin,
		Pitches:  []swara.Pitch{pitch(t, 0), pitch(t, 7)},
		DurArray: []float64{0.3, 0.7},
		DurTot:   2,
	})
	require.NoError(t, err)
	tally := krintin.DurationsOfFixedPitches(swara.PitchNumberOutput)
	assert.InDelta(t, 0.6, tally["0"], 1e-9)
	assert.InDelta(t, 1.4, tally["7"], 1e-9)
	letters := krintin.DurationsOfFixedPitches(swara.SargamLetterOutput)
	assert.InDelta(t, 1.4, letters["P"], 1e-9)

	same, _ := swara.NewTrajectory(swara.TrajectoryOptions{ID: swara.ShapeBend, Pitches: []swara.Pitch{pitch(t, 2), pitch(t, 2)}})
	assert.Equal(t, swara.Tally{"2": 1}, same.DurationsOfFixedPitches(swara.PitchNumberOutput))
	moving, _ := swara.NewTrajectory(swara.TrajectoryOptions{ID: swara.ShapeBend, Pitches: []swara.Pitch{pitch(t, 2), pitch(t, 4)}})
	assert.Empty(t, moving.DurationsOfFixedPitches(swara.PitchNumberOutput))

	props := tally.Proportions()
	assert.InDelta(t, 0.3, props["0"], 1e-9)
}

func TestTrajectoryCopyIsDeep(t *testing.T) {
	traj, err := swara.NewTrajectory(swara.TrajectoryOptions{ID: swara.ShapeBend, Pitches: []swara.Pitch{pitch(t, 0), pitch(t, 4)}})
	require.NoError(t, err)
	c := traj.Copy()
	c.Pitches[0].Oct = 1
	c.Articulations[swara.KeyOf(0.5)] = swara.NewStroke("r")
	assert.Equal(t, 0, traj.Pitches[0].Oct)
	assert.Len(t, traj.Articulations, 1)
	assert.Equal(t, traj.UniqueID, c.UniqueID)
}
