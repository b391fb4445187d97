package swara

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Group marks a run of adjacent trajectories in one phrase as a unit for
// analysis. It points into the trajectories owned by the phrase; each member
// carries the group's id in its GroupID.
type Group struct {
	ID           string        `json:"id" yaml:"id"`
	Trajectories []*Trajectory `json:"trajectories" yaml:"trajectories"`
}

// NewGroup validates that the trajectories are at least two, belong to the
// same phrase and are contiguous, then tags them with the group id. An empty
// id gets a fresh one.
func NewGroup(trajs []*Trajectory, id string) (*Group, error) {
	if len(trajs) < 2 {
		return nil, fmt.Errorf("got %v: %w", len(trajs), ErrGroupSize)
	}
	if id == "" {
		id = uuid.NewString()
	}
	g := &Group{ID: id, Trajectories: append([]*Trajectory(nil), trajs...)}
	g.sort()
	if err := g.TestForAdjacency(); err != nil {
		return nil, err
	}
	for _, t := range g.Trajectories {
		t.GroupID = g.ID
	}
	return g, nil
}

func (g *Group) sort() {
	sort.SliceStable(g.Trajectories, func(i, j int) bool { return g.Trajectories[i].Num < g.Trajectories[j].Num })
}

// TestForAdjacency checks that the members share a phrase and form an
// unbroken run of trajectory numbers.
func (g *Group) TestForAdjacency() error {
	for i, t := range g.Trajectories {
		if t.PhraseIdx != g.Trajectories[0].PhraseIdx {
			return fmt.Errorf("trajectory %v is in phrase %v, not %v: %w", t.Num, t.PhraseIdx, g.Trajectories[0].PhraseIdx, ErrNotAdjacent)
		}
		if i > 0 && t.Num != g.Trajectories[i-1].Num+1 {
			return fmt.Errorf("trajectory %v does not follow %v: %w", t.Num, g.Trajectories[i-1].Num, ErrNotAdjacent)
		}
	}
	return nil
}

// AddTraj adds a trajectory at either end of the group. A trajectory that
// would break contiguity is rejected and the group left unchanged.
func (g *Group) AddTraj(t *Trajectory) error {
	prev := g.Trajectories
	g.Trajectories = append(append([]*Trajectory(nil), prev...), t)
	g.sort()
	if err := g.TestForAdjacency(); err != nil {
		g.Trajectories = prev
		return err
	}
	t.GroupID = g.ID
	return nil
}

// AllPitches lists the pitches of the members in order. Without repetition,
// consecutive equal pitches are listed once.
func (g *Group) AllPitches(repetition bool) []Pitch {
	return collectPitches(g.Trajectories, repetition)
}

func collectPitches(trajs []*Trajectory, repetition bool) []Pitch {
	var ret []Pitch
	for _, t := range trajs {
		if t.Silent() {
			continue
		}
		for _, p := range t.Pitches {
			if !repetition && len(ret) > 0 && ret[len(ret)-1].SameAs(p) {
				continue
			}
			ret = append(ret, p)
		}
	}
	return ret
}

func (g *Group) MinFreq() float64 {
	m := math.Inf(1)
	for _, t := range g.Trajectories {
		m = math.Min(m, math.Pow(2, t.MinLogFreq()))
	}
	return m
}

func (g *Group) MaxFreq() float64 {
	m := math.Inf(-1)
	for _, t := range g.Trajectories {
		m = math.Max(m, math.Pow(2, t.MaxLogFreq()))
	}
	return m
}
