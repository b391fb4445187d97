package swara

import (
	"fmt"
	"math"
)

type (
	// DisplayBol is a plucked stroke placed in absolute time, for drawing.
	DisplayBol struct {
		Time     float64 `json:"time" yaml:"time"`
		Bol      string  `json:"bol" yaml:"bol"`
		LogFreq  float64 `json:"logFreq" yaml:"logFreq"`
		UniqueID string  `json:"uniqueId" yaml:"uniqueId"`
		Track    int     `json:"track" yaml:"track"`
	}

	// DisplaySargam is a pitch label placed in absolute time. Pos is the
	// direction of the melody arriving at it: -1 falling, 0 level or first, 1
	// rising.
	DisplaySargam struct {
		Time    float64 `json:"time" yaml:"time"`
		Sargam  string  `json:"sargam" yaml:"sargam"`
		LogFreq float64 `json:"logFreq" yaml:"logFreq"`
		Pos     int     `json:"pos" yaml:"pos"`
		Track   int     `json:"track" yaml:"track"`
	}

	// DisplayVowel is the sung syllable at the start of a vocal note.
	DisplayVowel struct {
		Time     float64 `json:"time" yaml:"time"`
		Syllable string  `json:"syllable" yaml:"syllable"`
		Hindi    string  `json:"hindi" yaml:"hindi"`
		IPA      string  `json:"ipa" yaml:"ipa"`
		LogFreq  float64 `json:"logFreq" yaml:"logFreq"`
		UniqueID string  `json:"uniqueId" yaml:"uniqueId"`
		Track    int     `json:"track" yaml:"track"`
	}

	// PhraseDiv marks the start of a phrase other than the first; Section is
	// set when the phrase also opens a section.
	PhraseDiv struct {
		Time     float64 `json:"time" yaml:"time"`
		Idx      int     `json:"idx" yaml:"idx"`
		Section  bool    `json:"section" yaml:"section"`
		UniqueID string  `json:"uniqueId" yaml:"uniqueId"`
		Track    int     `json:"track" yaml:"track"`
	}
)

// PhraseIdxFromTime finds the phrase sounding at time seconds. A time on a
// boundary belongs to the later phrase, the end of the piece to the last.
func (p *Piece) PhraseIdxFromTime(time float64, track int) (int, error) {
	if err := p.checkTrack(track); err != nil {
		return 0, err
	}
	phrases := p.PhraseGrid[track]
	if len(phrases) == 0 || time < 0 || time > p.DurTot+timeEpsilon {
		return 0, fmt.Errorf("time %v in piece of %v s: %w", time, p.DurTot, ErrOutOfRange)
	}
	for i := len(phrases) - 1; i >= 0; i-- {
		if phrases[i].StartTime <= time+timeEpsilon {
			return i, nil
		}
	}
	return 0, nil
}

func (p *Piece) PhraseAt(time float64, track int) (*Phrase, error) {
	idx, err := p.PhraseIdxFromTime(time, track)
	if err != nil {
		return nil, err
	}
	return p.PhraseGrid[track][idx], nil
}

// TrajAt finds the trajectory sounding at time seconds.
func (p *Piece) TrajAt(time float64, track int) (*Trajectory, error) {
	ph, err := p.PhraseAt(time, track)
	if err != nil {
		return nil, err
	}
	idx, err := ph.TrajIdxFromTime(clamp(time-ph.StartTime, 0, ph.DurTot))
	if err != nil {
		return nil, err
	}
	return ph.Trajectories()[idx], nil
}

// TrackFrequencyAt evaluates a track's melodic line at time seconds, in Hz.
// Silence evaluates to NaN.
func (p *Piece) TrackFrequencyAt(time float64, track int) (float64, error) {
	ph, err := p.PhraseAt(time, track)
	if err != nil {
		return 0, err
	}
	idx, err := ph.TrajIdxFromTime(clamp(time-ph.StartTime, 0, ph.DurTot))
	if err != nil {
		return 0, err
	}
	t := ph.Trajectories()[idx]
	if t.Silent() {
		return math.NaN(), nil
	}
	x := 0.0
	if t.DurTot > 0 {
		x = clamp((time-ph.StartTime-t.StartTime)/t.DurTot, 0, 1)
	}
	return t.Compute(x, false), nil
}

// TrajFromUniqueID searches every track for a trajectory.
func (p *Piece) TrajFromUniqueID(uniqueID string) (*Trajectory, int, error) {
	for track, phrases := range p.PhraseGrid {
		for _, ph := range phrases {
			for _, t := range ph.Trajectories() {
				if t.UniqueID == uniqueID {
					return t, track, nil
				}
			}
		}
	}
	return nil, 0, fmt.Errorf("trajectory %v: %w", uniqueID, ErrNotFound)
}

func (p *Piece) PhraseFromUniqueID(uniqueID string) (*Phrase, int, error) {
	for track, phrases := range p.PhraseGrid {
		for _, ph := range phrases {
			if ph.UniqueID == uniqueID {
				return ph, track, nil
			}
		}
	}
	return nil, 0, fmt.Errorf("phrase %v: %w", uniqueID, ErrNotFound)
}

func (p *Piece) TrackFromTrajUniqueID(uniqueID string) (int, error) {
	_, track, err := p.TrajFromUniqueID(uniqueID)
	return track, err
}

// AllTrajectories lists the melodic line of a track across phrases.
func (p *Piece) AllTrajectories(track int) []*Trajectory {
	if p.checkTrack(track) != nil {
		return nil
	}
	var ret []*Trajectory
	for _, ph := range p.PhraseGrid[track] {
		ret = append(ret, ph.Trajectories()...)
	}
	return ret
}

// AllPitches lists the pitches of a track. Without repetition, consecutive
// equal pitches are listed once, also across phrase boundaries.
func (p *Piece) AllPitches(track int, repetition bool) []Pitch {
	return collectPitches(p.AllTrajectories(track), repetition)
}

// DurationsOfFixedPitches tallies the seconds a track dwells on each steady
// pitch, or the proportions of that time when proportional is set.
func (p *Piece) DurationsOfFixedPitches(track int, output PitchOutput, proportional bool) Tally {
	ret := Tally{}
	for _, t := range p.AllTrajectories(track) {
		ret.Add(t.DurationsOfFixedPitches(output))
	}
	if proportional {
		return ret.Proportions()
	}
	return ret
}

// SectionIdxFromTime finds the section of a track sounding at time seconds.
func (p *Piece) SectionIdxFromTime(time float64, track int) (int, error) {
	phraseIdx, err := p.PhraseIdxFromTime(time, track)
	if err != nil {
		return 0, err
	}
	starts := p.SectionStartsGrid[track]
	for i := len(starts) - 1; i >= 0; i-- {
		if starts[i] <= phraseIdx {
			return i, nil
		}
	}
	return 0, nil
}

// AllDisplayBols lists the plucked strokes of a track.
func (p *Piece) AllDisplayBols(track int) []DisplayBol {
	var ret []DisplayBol
	for _, ph := range p.phrasesOf(track) {
		for _, t := range ph.Trajectories() {
			for _, k := range t.Articulations.Keys() {
				a := t.Articulations[k]
				if a.Name != Pluck {
					continue
				}
				x := clamp(k.Float(), 0, 1)
				ret = append(ret, DisplayBol{
					Time:     ph.StartTime + t.StartTime + x*t.DurTot,
					Bol:      a.StrokeNickname,
					LogFreq:  t.Compute(x, true),
					UniqueID: t.UniqueID,
					Track:    track,
				})
			}
		}
	}
	return ret
}

// AllDisplaySargam lists the pitch labels of a track, one per change of
// pitch.
func (p *Piece) AllDisplaySargam(track int) []DisplaySargam {
	var ret []DisplaySargam
	var prev *Pitch
	for _, ph := range p.phrasesOf(track) {
		for _, s := range ph.Swara() {
			pos := 0
			if prev != nil {
				if s.Pitch.SameAs(*prev) {
					continue
				}
				if s.Pitch.Frequency() > prev.Frequency() {
					pos = 1
				} else {
					pos = -1
				}
			}
			pitch := s.Pitch
			prev = &pitch
			ret = append(ret, DisplaySargam{
				Time:    s.Time,
				Sargam:  pitch.OctavedSargamLetter(),
				LogFreq: pitch.LogFreq(),
				Pos:     pos,
				Track:   track,
			})
		}
	}
	return ret
}

// AllDisplayVowels lists the syllables of a vocal track, one per sung note:
// a trajectory opening with a consonant, following silence or changing
// vowel.
func (p *Piece) AllDisplayVowels(track int) []DisplayVowel {
	var ret []DisplayVowel
	prevVowel := ""
	for _, ph := range p.phrasesOf(track) {
		for _, t := range ph.Trajectories() {
			if t.Silent() || !t.Vocal() {
				prevVowel = ""
				continue
			}
			if t.Vowel == "" || (t.Vowel == prevVowel && t.StartConsonant == "") {
				prevVowel = t.Vowel
				continue
			}
			prevVowel = t.Vowel
			ret = append(ret, DisplayVowel{
				Time:     ph.StartTime + t.StartTime,
				Syllable: t.Syllable(),
				Hindi:    t.StartConsonantHindi + t.VowelHindi,
				IPA:      t.StartConsonantIPA + t.VowelIPA,
				LogFreq:  t.Compute(0, true),
				UniqueID: t.UniqueID,
				Track:    track,
			})
		}
	}
	return ret
}

// AllPhraseDivs lists the boundaries between the phrases of a track.
func (p *Piece) AllPhraseDivs(track int) []PhraseDiv {
	var ret []PhraseDiv
	phrases := p.phrasesOf(track)
	if len(phrases) == 0 {
		return nil
	}
	sections := make(map[int]bool)
	for _, s := range p.SectionStartsGrid[track] {
		sections[s] = true
	}
	for i, ph := range phrases[1:] {
		ret = append(ret, PhraseDiv{
			Time:     ph.StartTime,
			Idx:      i + 1,
			Section:  sections[i+1],
			UniqueID: ph.UniqueID,
			Track:    track,
		})
	}
	return ret
}

func (p *Piece) phrasesOf(track int) []*Phrase {
	if p.checkTrack(track) != nil {
		return nil
	}
	return p.PhraseGrid[track]
}

// chunk distributes items over consecutive windows of duration seconds
// covering the piece. Windows are half open. An item with a duration lands in
// every window it starts in, ends in or spans; a point item lands only in the
// window holding its time.
func chunk[T any](items []T, span func(T) (float64, float64), duration, total float64) [][]T {
	if duration <= 0 {
		return nil
	}
	n := int(math.Ceil(total / duration))
	if n < 1 {
		n = 1
	}
	ret := make([][]T, n)
	for i := range ret {
		ws, we := float64(i)*duration, float64(i+1)*duration
		for _, item := range items {
			s, e := span(item)
			startIn := s >= ws && s < we
			if e <= s {
				if startIn {
					ret[i] = append(ret[i], item)
				}
				continue
			}
			endIn := e > ws && e <= we
			spans := s < ws && e > we
			if startIn || endIn || spans {
				ret[i] = append(ret[i], item)
			}
		}
	}
	return ret
}

func point[T any](time func(T) float64) func(T) (float64, float64) {
	return func(item T) (float64, float64) {
		t := time(item)
		return t, t
	}
}

// ChunkedTrajs splits a track's trajectories into windows of duration
// seconds.
func (p *Piece) ChunkedTrajs(track int, duration float64) [][]*Trajectory {
	var trajs []*Trajectory
	starts := make(map[*Trajectory]float64)
	for _, ph := range p.phrasesOf(track) {
		for _, t := range ph.Trajectories() {
			trajs = append(trajs, t)
			starts[t] = ph.StartTime + t.StartTime
		}
	}
	return chunk(trajs, func(t *Trajectory) (float64, float64) {
		return starts[t], starts[t] + t.DurTot
	}, duration, p.DurTot)
}

func (p *Piece) ChunkedPhrases(track int, duration float64) [][]*Phrase {
	return chunk(p.phrasesOf(track), func(ph *Phrase) (float64, float64) {
		return ph.StartTime, ph.EndTime()
	}, duration, p.DurTot)
}

func (p *Piece) ChunkedDisplayBols(track int, duration float64) [][]DisplayBol {
	return chunk(p.AllDisplayBols(track), point(func(b DisplayBol) float64 { return b.Time }), duration, p.DurTot)
}

func (p *Piece) ChunkedDisplaySargam(track int, duration float64) [][]DisplaySargam {
	return chunk(p.AllDisplaySargam(track), point(func(s DisplaySargam) float64 { return s.Time }), duration, p.DurTot)
}

func (p *Piece) ChunkedDisplayVowels(track int, duration float64) [][]DisplayVowel {
	return chunk(p.AllDisplayVowels(track), point(func(v DisplayVowel) float64 { return v.Time }), duration, p.DurTot)
}

func (p *Piece) ChunkedPhraseDivs(track int, duration float64) [][]PhraseDiv {
	return chunk(p.AllPhraseDivs(track), point(func(d PhraseDiv) float64 { return d.Time }), duration, p.DurTot)
}

// ChunkedMeters splits the meters into windows of duration seconds.
func (p *Piece) ChunkedMeters(duration float64) [][]*Meter {
	return chunk(p.Meters, func(m *Meter) (float64, float64) {
		return m.StartTime, m.EndTime()
	}, duration, p.DurTot)
}
