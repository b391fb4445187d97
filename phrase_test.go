package swara_test

import (
	"testing"

	"github.com/idtap/swara"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(t *testing.T, number int, durTot float64) *swara.Trajectory {
	t.Helper()
	traj, err := swara.NewTrajectory(swara.TrajectoryOptions{
		ID:      swara.ShapeFixed,
		Pitches: []swara.Pitch{swara.PitchFromNumber(number, 0)},
		DurTot:  durTot,
	})
	require.NoError(t, err)
	return traj
}

func silence(t *testing.T, durTot float64) *swara.Trajectory {
	t.Helper()
	traj, err := swara.NewTrajectory(swara.TrajectoryOptions{ID: swara.ShapeSilence, DurTot: durTot})
	require.NoError(t, err)
	return traj
}

func phrase(t *testing.T, trajs ...*swara.Trajectory) *swara.Phrase {
	t.Helper()
	p, err := swara.NewPhrase(swara.PhraseOptions{Trajectories: trajs})
	require.NoError(t, err)
	return p
}

func TestPhraseTiming(t *testing.T) {
	p := phrase(t, fixed(t, 0, 1), fixed(t, 2, 1))
	assert.Equal(t, []float64{0.5, 0.5}, p.DurArray)
	assert.Equal(t, 2.0, p.DurTot)
	trajs := p.Trajectories()
	assert.Equal(t, 1.0, trajs[1].StartTime)
	assert.Equal(t, 1, trajs[1].Num)
}

func TestPhraseResetIdempotent(t *testing.T) {
	p := phrase(t, fixed(t, 0, 0.3), fixed(t, 2, 0.45), fixed(t, 4, 1.25))
	p.Reset()
	durArray := append([]float64(nil), p.DurArray...)
	var starts []float64
	for _, traj := range p.Trajectories() {
		starts = append(starts, traj.StartTime)
	}
	p.Reset()
	assert.Equal(t, durArray, p.DurArray)
	for i, traj := range p.Trajectories() {
		assert.Equal(t, starts[i], traj.StartTime)
	}
}

func TestPhraseOfSilence(t *testing.T) {
	p, err := swara.NewPhrase(swara.PhraseOptions{DurTot: 3, Fundamental: 200})
	require.NoError(t, err)
	require.Len(t, p.Trajectories(), 1)
	assert.True(t, p.Trajectories()[0].Silent())
	assert.Equal(t, 200.0, p.Trajectories()[0].FundID12)
	assert.Equal(t, 3.0, p.DurTot)
}

func TestTrajIdxFromTime(t *testing.T) {
	p := phrase(t, fixed(t, 0, 1), fixed(t, 2, 1))
	cases := []struct {
		time float64
		idx  int
	}{{0, 0}, {0.99, 0}, {1, 1}, {2, 1}}
	for _, c := range cases {
		idx, err := p.TrajIdxFromTime(c.time)
		require.NoError(t, err)
		assert.Equal(t, c.idx, idx, "time %v", c.time)
	}
	_, err := p.TrajIdxFromTime(2.5)
	assert.ErrorIs(t, err, swara.ErrOutOfRange)

	f, err := p.Compute(0.75, false)
	require.NoError(t, err)
	assert.InDelta(t, swara.PitchFromNumber(2, 0).Frequency(), f, 1e-9)
}

func TestConsolidateSilentTrajs(t *testing.T) {
	p := phrase(t, silence(t, 1), silence(t, 0.5), fixed(t, 0, 1), silence(t, 1))
	p.ConsolidateSilentTrajs()
	trajs := p.Trajectories()
	require.Len(t, trajs, 3)
	assert.Equal(t, 1.5, trajs[0].DurTot)
	assert.Equal(t, 1, trajs[1].Num)
	assert.Equal(t, 1.5, trajs[1].StartTime)
	assert.Equal(t, 3.5, p.DurTot)
}

func TestRemoveTrajectoryKeepsLength(t *testing.T) {
	p := phrase(t, fixed(t, 0, 1), fixed(t, 2, 1), silence(t, 1))
	require.NoError(t, p.RemoveTrajectory(1))
	trajs := p.Trajectories()
	require.Len(t, trajs, 2)
	assert.True(t, trajs[1].Silent())
	assert.Equal(t, 2.0, trajs[1].DurTot)
	assert.Equal(t, 3.0, p.DurTot)
	assert.ErrorIs(t, p.RemoveTrajectory(5), swara.ErrOutOfRange)
}

func TestSwaraAndFirstTrajs(t *testing.T) {
	krintin, err := swara.NewTrajectory(swara.TrajectoryOptions{
		ID:       swara.ShapeKrintin,
		Pitches:  []swara.Pitch{swara.PitchFromNumber(0, 0), swara.PitchFromNumber(2, 0)},
		DurArray: []float64{0.25, 0.75},
		DurTot:   2,
	})
	require.NoError(t, err)
	p := phrase(t, silence(t, 1), krintin)
	p.StartTime = 10
	events := p.Swara()
	require.Len(t, events, 2)
	assert.InDelta(t, 11, events[0].Time, 1e-9)
	assert.InDelta(t, 11.5, events[1].Time, 1e-9)
	assert.Equal(t, []int{1}, p.FirstTrajIdxs())
	assert.Len(t, p.AllPitches(true), 2)
}

func TestGroups(t *testing.T) {
	p := phrase(t, fixed(t, 0, 1), fixed(t, 2, 1), fixed(t, 4, 1), fixed(t, 5, 1), fixed(t, 7, 1))
	trajs := p.Trajectories()

	_, err := swara.NewGroup([]*swara.Trajectory{trajs[0]}, "")
	assert.ErrorIs(t, err, swara.ErrGroupSize)
	_, err = swara.NewGroup([]*swara.Trajectory{trajs[0], trajs[2]}, "")
	assert.ErrorIs(t, err, swara.ErrNotAdjacent)
	assert.Empty(t, trajs[0].GroupID)

	g, err := p.AddGroup(0, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, trajs[1], g.Trajectories[0])
	assert.Equal(t, g.ID, trajs[1].GroupID)
	_, err = p.AddGroup(0, 1, 0)
	assert.ErrorIs(t, err, swara.ErrDuplicate)

	require.NoError(t, g.AddTraj(trajs[0]))
	assert.Equal(t, trajs[0], g.Trajectories[0])
	require.Len(t, g.Trajectories, 3)
	assert.ErrorIs(t, g.AddTraj(trajs[4]), swara.ErrNotAdjacent)
	assert.Len(t, g.Trajectories, 3)
	assert.Empty(t, trajs[4].GroupID)

	assert.InDelta(t, swara.PitchFromNumber(4, 0).Frequency(), g.MaxFreq(), 1e-9)
	assert.InDelta(t, swara.PitchFromNumber(0, 0).Frequency(), g.MinFreq(), 1e-9)

	found, err := p.GetGroupFromID(g.ID)
	require.NoError(t, err)
	assert.Same(t, g, found)

	require.NoError(t, p.InsertTrajectory(1, fixed(t, 7, 1)))
	assert.Empty(t, p.GetGroups(0))
	assert.Empty(t, trajs[1].GroupID)
}

func TestPhraseCopyRelinksGroups(t *testing.T) {
	p := phrase(t, fixed(t, 0, 1), fixed(t, 2, 1))
	_, err := p.AddGroup(0, 0, 1)
	require.NoError(t, err)
	c := p.Copy()
	g := c.GetGroups(0)[0]
	assert.Same(t, c.Trajectories()[0], g.Trajectories[0])
	g.Trajectories[0].DurTot = 5
	assert.Equal(t, 1.0, p.Trajectories()[0].DurTot)
}
