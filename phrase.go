package swara

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/viterin/vek"
)

type (
	// Phrase is a run of trajectories played back to back. Each grid holds
	// one row per track of the phrase; row 0 is the melodic line whose
	// trajectories define the phrase's duration.
	//
	// DurTot, DurArray and the Num, PhraseIdx and StartTime of the
	// trajectories are derived; Reset recomputes them.
	Phrase struct {
		TrajectoryGrid     [][]*Trajectory       `json:"trajectoryGrid" yaml:"trajectoryGrid"`
		ChikariGrid        []map[TimeKey]Chikari `json:"chikariGrid" yaml:"chikariGrid"`
		GroupsGrid         [][]*Group            `json:"groupsGrid" yaml:"groupsGrid"`
		CategorizationGrid []Categorization      `json:"categorizationGrid" yaml:"categorizationGrid"`
		Instrumentation    []string              `json:"instrumentation,omitempty" yaml:"instrumentation,omitempty"`
		UniqueID           string                `json:"uniqueId" yaml:"uniqueId"`

		DurTot    float64   `json:"durTot" yaml:"durTot"`
		DurArray  []float64 `json:"durArray" yaml:"durArray"`
		StartTime float64   `json:"startTime" yaml:"startTime"`
		PieceIdx  int       `json:"pieceIdx" yaml:"pieceIdx"`
	}

	// PhraseOptions are the arguments of NewPhrase. Without trajectories, a
	// positive DurTot yields a phrase of one silent trajectory.
	PhraseOptions struct {
		Trajectories    []*Trajectory
		DurTot          float64
		StartTime       float64
		PieceIdx        int
		Chikaris        map[TimeKey]Chikari
		Categorization  *Categorization
		Instrumentation []string
		Fundamental     float64
		UniqueID        string
	}

	// SwaraEvent is a pitch with the absolute time it is reached at.
	SwaraEvent struct {
		Pitch Pitch   `json:"pitch" yaml:"pitch"`
		Time  float64 `json:"time" yaml:"time"`
	}
)

func NewPhrase(o PhraseOptions) (*Phrase, error) {
	p := &Phrase{
		TrajectoryGrid:  [][]*Trajectory{append([]*Trajectory(nil), o.Trajectories...)},
		ChikariGrid:     []map[TimeKey]Chikari{{}},
		GroupsGrid:      [][]*Group{nil},
		StartTime:       o.StartTime,
		PieceIdx:        o.PieceIdx,
		Instrumentation: append([]string(nil), o.Instrumentation...),
		UniqueID:        o.UniqueID,
	}
	for k, c := range o.Chikaris {
		p.ChikariGrid[0][k] = c.Copy()
	}
	if o.Categorization != nil {
		p.CategorizationGrid = []Categorization{o.Categorization.Copy()}
	} else {
		p.CategorizationGrid = []Categorization{DefaultPhraseCategorization()}
	}
	if p.UniqueID == "" {
		p.UniqueID = uuid.NewString()
	}
	if len(o.Trajectories) == 0 && o.DurTot > 0 {
		t, err := NewTrajectory(TrajectoryOptions{ID: ShapeSilence, DurTot: o.DurTot, FundID12: o.Fundamental})
		if err != nil {
			return nil, fmt.Errorf("could not create silent trajectory: %w", err)
		}
		p.TrajectoryGrid[0] = []*Trajectory{t}
	}
	for i, t := range p.TrajectoryGrid[0] {
		if t == nil {
			return nil, fmt.Errorf("trajectory %v of phrase is nil: %w", i, ErrMissingField)
		}
	}
	p.Reset()
	return p, nil
}

// Trajectories returns the melodic line, row 0 of the trajectory grid.
func (p *Phrase) Trajectories() []*Trajectory {
	if len(p.TrajectoryGrid) == 0 {
		return nil
	}
	return p.TrajectoryGrid[0]
}

// Chikaris returns the drone strikes of row 0, keyed by time in seconds
// from the start of the phrase.
func (p *Phrase) Chikaris() map[TimeKey]Chikari {
	if len(p.ChikariGrid) == 0 {
		return nil
	}
	return p.ChikariGrid[0]
}

// Reset recomputes every derived field of the phrase and its trajectories
// from the trajectory durations. It is idempotent.
func (p *Phrase) Reset() {
	if len(p.TrajectoryGrid) == 0 {
		p.TrajectoryGrid = [][]*Trajectory{nil}
	}
	for len(p.ChikariGrid) < len(p.TrajectoryGrid) {
		p.ChikariGrid = append(p.ChikariGrid, map[TimeKey]Chikari{})
	}
	for len(p.GroupsGrid) < len(p.TrajectoryGrid) {
		p.GroupsGrid = append(p.GroupsGrid, nil)
	}
	p.durTotFromTrajectories()
	p.durArrayFromTrajectories()
	for _, row := range p.TrajectoryGrid {
		starts := trajStarts(row)
		for i, t := range row {
			t.Num = i
			t.PhraseIdx = p.PieceIdx
			t.StartTime = starts[i]
		}
	}
}

func (p *Phrase) durTotFromTrajectories() {
	trajs := p.Trajectories()
	durs := make([]float64, len(trajs))
	for i, t := range trajs {
		durs[i] = t.DurTot
	}
	p.DurTot = 0
	if len(durs) > 0 {
		p.DurTot = vek.Sum(durs)
	}
}

func (p *Phrase) durArrayFromTrajectories() {
	trajs := p.Trajectories()
	p.DurArray = make([]float64, len(trajs))
	if p.DurTot <= 0 {
		return
	}
	for i, t := range trajs {
		p.DurArray[i] = t.DurTot
	}
	p.DurArray = vek.DivNumber(p.DurArray, p.DurTot)
}

// trajStarts returns the start time of each trajectory relative to the
// first.
func trajStarts(row []*Trajectory) []float64 {
	ret := make([]float64, len(row))
	if len(row) == 0 {
		return ret
	}
	durs := make([]float64, len(row))
	for i, t := range row {
		durs[i] = t.DurTot
	}
	ends := vek.CumSum(durs)
	copy(ret[1:], ends[:len(ends)-1])
	return ret
}

// EndTime is the absolute time the phrase ends at.
func (p *Phrase) EndTime() float64 {
	return p.StartTime + p.DurTot
}

// TrajIdxFromTime finds the trajectory sounding at time seconds from the
// start of the phrase. A time exactly on a boundary belongs to the later
// trajectory, the phrase end to the last one.
func (p *Phrase) TrajIdxFromTime(time float64) (int, error) {
	trajs := p.Trajectories()
	if len(trajs) == 0 || time < 0 || time > p.DurTot+timeEpsilon {
		return 0, fmt.Errorf("time %v in phrase of %v s: %w", time, p.DurTot, ErrOutOfRange)
	}
	for i := len(trajs) - 1; i >= 0; i-- {
		if trajs[i].StartTime <= time+timeEpsilon {
			return i, nil
		}
	}
	return 0, nil
}

// Compute evaluates the melodic line at normalized phrase time x in [0, 1].
func (p *Phrase) Compute(x float64, logScale bool) (float64, error) {
	idx, err := p.TrajIdxFromTime(x * p.DurTot)
	if err != nil {
		return 0, err
	}
	t := p.Trajectories()[idx]
	innerX := 0.0
	if t.DurTot > 0 {
		innerX = clamp((x*p.DurTot-t.StartTime)/t.DurTot, 0, 1)
	}
	return t.Compute(innerX, logScale), nil
}

// AllPitches lists the pitches of the melodic line. Without repetition,
// consecutive equal pitches are listed once.
func (p *Phrase) AllPitches(repetition bool) []Pitch {
	return collectPitches(p.Trajectories(), repetition)
}

// FirstTrajIdxs lists the trajectories that begin a new sounding note: those
// after silence or opening with a stroke or consonant.
func (p *Phrase) FirstTrajIdxs() []int {
	var ret []int
	trajs := p.Trajectories()
	for i, t := range trajs {
		if t.Silent() {
			continue
		}
		a, ok := t.Articulations[0]
		if i == 0 || trajs[i-1].Silent() || (ok && (a.Name == Pluck || a.Name == Consonant)) {
			ret = append(ret, i)
		}
	}
	return ret
}

// Swara lists the pitches of the melodic line with the absolute times they
// are reached at.
func (p *Phrase) Swara() []SwaraEvent {
	var ret []SwaraEvent
	for _, t := range p.Trajectories() {
		if t.Silent() {
			continue
		}
		offset := 0.0
		for i, pitch := range t.Pitches {
			if i > 0 && i-1 < len(t.DurArray) {
				offset += t.DurArray[i-1]
			}
			ret = append(ret, SwaraEvent{Pitch: pitch, Time: p.StartTime + t.StartTime + offset*t.DurTot})
		}
	}
	return ret
}

// InsertTrajectory puts t at index idx of the melodic line. Groups the
// insertion splits are dissolved.
func (p *Phrase) InsertTrajectory(idx int, t *Trajectory) error {
	trajs := p.Trajectories()
	if idx < 0 || idx > len(trajs) {
		return fmt.Errorf("insert at %v of %v trajectories: %w", idx, len(trajs), ErrOutOfRange)
	}
	trajs = append(trajs, nil)
	copy(trajs[idx+1:], trajs[idx:])
	trajs[idx] = t
	p.TrajectoryGrid[0] = trajs
	p.Reset()
	p.pruneGroups()
	return nil
}

// RemoveTrajectory replaces the trajectory at idx with silence of the same
// duration, then merges neighbouring silences. The phrase keeps its length.
func (p *Phrase) RemoveTrajectory(idx int) error {
	trajs := p.Trajectories()
	if idx < 0 || idx >= len(trajs) {
		return fmt.Errorf("remove %v of %v trajectories: %w", idx, len(trajs), ErrOutOfRange)
	}
	old := trajs[idx]
	silence, err := NewTrajectory(TrajectoryOptions{ID: ShapeSilence, DurTot: old.DurTot, FundID12: old.FundID12})
	if err != nil {
		return err
	}
	old.GroupID = ""
	trajs[idx] = silence
	p.ConsolidateSilentTrajs()
	return nil
}

// ConsolidateSilentTrajs merges runs of adjacent silent trajectories into
// one.
func (p *Phrase) ConsolidateSilentTrajs() {
	trajs := p.Trajectories()
	var out []*Trajectory
	for _, t := range trajs {
		if n := len(out); n > 0 && t.Silent() && out[n-1].Silent() {
			out[n-1].DurTot += t.DurTot
			continue
		}
		out = append(out, t)
	}
	p.TrajectoryGrid[0] = out
	p.Reset()
	p.pruneGroups()
}

// pruneGroups drops groups whose members left the phrase or no longer
// stand side by side, clearing the members' group ids.
func (p *Phrase) pruneGroups() {
	for track, groups := range p.GroupsGrid {
		var row []*Trajectory
		if track < len(p.TrajectoryGrid) {
			row = p.TrajectoryGrid[track]
		}
		kept := groups[:0]
		for _, g := range groups {
			ok := len(g.Trajectories) >= 2 && g.TestForAdjacency() == nil
			for _, t := range g.Trajectories {
				if t.Num >= len(row) || row[t.Num] != t {
					ok = false
				}
			}
			if ok {
				kept = append(kept, g)
				continue
			}
			for _, t := range g.Trajectories {
				if t.GroupID == g.ID {
					t.GroupID = ""
				}
			}
		}
		p.GroupsGrid[track] = kept
	}
}

// AddGroup groups the trajectories with the given numbers in a track.
// Trajectories can belong to one group at most.
func (p *Phrase) AddGroup(track int, nums ...int) (*Group, error) {
	if track < 0 || track >= len(p.TrajectoryGrid) {
		return nil, fmt.Errorf("track %v of %v: %w", track, len(p.TrajectoryGrid), ErrOutOfRange)
	}
	row := p.TrajectoryGrid[track]
	trajs := make([]*Trajectory, len(nums))
	for i, n := range nums {
		if n < 0 || n >= len(row) {
			return nil, fmt.Errorf("trajectory %v of %v: %w", n, len(row), ErrNotFound)
		}
		if row[n].GroupID != "" {
			return nil, fmt.Errorf("trajectory %v already in group %v: %w", n, row[n].GroupID, ErrDuplicate)
		}
		trajs[i] = row[n]
	}
	g, err := NewGroup(trajs, "")
	if err != nil {
		return nil, err
	}
	p.GroupsGrid[track] = append(p.GroupsGrid[track], g)
	return g, nil
}

func (p *Phrase) GetGroups(track int) []*Group {
	if track < 0 || track >= len(p.GroupsGrid) {
		return nil
	}
	return p.GroupsGrid[track]
}

func (p *Phrase) GetGroupFromID(id string) (*Group, error) {
	for _, groups := range p.GroupsGrid {
		for _, g := range groups {
			if g.ID == id {
				return g, nil
			}
		}
	}
	return nil, fmt.Errorf("group %v: %w", id, ErrNotFound)
}

// RemoveGroup dissolves a group, leaving its trajectories in place.
func (p *Phrase) RemoveGroup(id string) error {
	for track, groups := range p.GroupsGrid {
		for i, g := range groups {
			if g.ID != id {
				continue
			}
			for _, t := range g.Trajectories {
				t.GroupID = ""
			}
			p.GroupsGrid[track] = append(groups[:i], groups[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("group %v: %w", id, ErrNotFound)
}

// relinkGroups points the members of every group at the trajectories of the
// same number in the phrase, so that groups share them instead of holding
// copies.
func (p *Phrase) relinkGroups() error {
	for track, groups := range p.GroupsGrid {
		if track >= len(p.TrajectoryGrid) {
			return fmt.Errorf("groups for missing track %v: %w", track, ErrNotFound)
		}
		row := p.TrajectoryGrid[track]
		for _, g := range groups {
			for i, member := range g.Trajectories {
				if member == nil || member.Num < 0 || member.Num >= len(row) {
					return fmt.Errorf("group %v refers to a missing trajectory: %w", g.ID, ErrNotFound)
				}
				g.Trajectories[i] = row[member.Num]
				g.Trajectories[i].GroupID = g.ID
			}
			if err := g.TestForAdjacency(); err != nil {
				return fmt.Errorf("group %v: %w", g.ID, err)
			}
		}
	}
	return nil
}

// UpdateFundamental retunes every trajectory and drone strike.
func (p *Phrase) UpdateFundamental(fundamental float64) {
	for _, row := range p.TrajectoryGrid {
		for _, t := range row {
			t.UpdateFundamental(fundamental)
		}
	}
	for _, chikaris := range p.ChikariGrid {
		for k, c := range chikaris {
			c.Fundamental = fundamental
			for i := range c.Pitches {
				c.Pitches[i].Fundamental = fundamental
			}
			chikaris[k] = c
		}
	}
}

// Copy makes a deep copy of a phrase; the groups of the copy point at the
// copied trajectories.
func (p *Phrase) Copy() *Phrase {
	ret := *p
	ret.TrajectoryGrid = make([][]*Trajectory, len(p.TrajectoryGrid))
	for i, row := range p.TrajectoryGrid {
		ret.TrajectoryGrid[i] = make([]*Trajectory, len(row))
		for j, t := range row {
			ret.TrajectoryGrid[i][j] = t.Copy()
		}
	}
	ret.ChikariGrid = make([]map[TimeKey]Chikari, len(p.ChikariGrid))
	for i, m := range p.ChikariGrid {
		ret.ChikariGrid[i] = make(map[TimeKey]Chikari, len(m))
		for k, c := range m {
			ret.ChikariGrid[i][k] = c.Copy()
		}
	}
	ret.GroupsGrid = make([][]*Group, len(p.GroupsGrid))
	for i, groups := range p.GroupsGrid {
		for _, g := range groups {
			ng := &Group{ID: g.ID, Trajectories: make([]*Trajectory, len(g.Trajectories))}
			for j, t := range g.Trajectories {
				if i < len(ret.TrajectoryGrid) && t.Num >= 0 && t.Num < len(ret.TrajectoryGrid[i]) {
					ng.Trajectories[j] = ret.TrajectoryGrid[i][t.Num]
				} else {
					ng.Trajectories[j] = t.Copy()
				}
			}
			ret.GroupsGrid[i] = append(ret.GroupsGrid[i], ng)
		}
	}
	ret.CategorizationGrid = make([]Categorization, len(p.CategorizationGrid))
	for i, c := range p.CategorizationGrid {
		ret.CategorizationGrid[i] = c.Copy()
	}
	ret.DurArray = append([]float64(nil), p.DurArray...)
	ret.Instrumentation = append([]string(nil), p.Instrumentation...)
	return &ret
}
