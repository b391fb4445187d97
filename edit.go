package swara

import "fmt"

// Transform applies an edit to a copy of the piece and returns the copy with
// every derived field recomputed. The receiver is left untouched, also when
// the edit fails.
func (p *Piece) Transform(edit func(*Piece) error) (*Piece, error) {
	if err := p.checkModel(); err != nil {
		return nil, err
	}
	c := p.Copy()
	if err := edit(c); err != nil {
		return nil, err
	}
	if err := c.Reset(); err != nil {
		return nil, err
	}
	return c, nil
}

// InsertPhrase puts ph at index idx of a track. Section starts after the
// insertion point move along with their phrases.
func (p *Piece) InsertPhrase(track, idx int, ph *Phrase) error {
	if err := p.checkTrack(track); err != nil {
		return err
	}
	phrases := p.PhraseGrid[track]
	if idx < 0 || idx > len(phrases) {
		return fmt.Errorf("insert at %v of %v phrases: %w", idx, len(phrases), ErrOutOfRange)
	}
	phrases = append(phrases, nil)
	copy(phrases[idx+1:], phrases[idx:])
	phrases[idx] = ph
	p.PhraseGrid[track] = phrases
	for i, s := range p.SectionStartsGrid[track] {
		if s > 0 && s >= idx {
			p.SectionStartsGrid[track][i] = s + 1
		}
	}
	return p.Reset()
}

// RemovePhrase deletes the phrase at idx of a track. A section that started
// at it now starts at the following phrase; the track is padded back to the
// length of the piece when other tracks are longer.
func (p *Piece) RemovePhrase(track, idx int) error {
	if err := p.checkTrack(track); err != nil {
		return err
	}
	phrases := p.PhraseGrid[track]
	if idx < 0 || idx >= len(phrases) {
		return fmt.Errorf("remove %v of %v phrases: %w", idx, len(phrases), ErrOutOfRange)
	}
	p.PhraseGrid[track] = append(phrases[:idx], phrases[idx+1:]...)
	starts := p.SectionStartsGrid[track]
	cats := p.SectionCatGrid[track]
	var keptStarts []int
	var keptCats []Categorization
	for i, s := range starts {
		if s > idx {
			s--
		}
		if n := len(keptStarts); n > 0 && keptStarts[n-1] == s {
			continue
		}
		keptStarts = append(keptStarts, s)
		if i < len(cats) {
			keptCats = append(keptCats, cats[i])
		}
	}
	p.SectionStartsGrid[track] = keptStarts
	p.SectionCatGrid[track] = keptCats
	return p.Reset()
}

// SetDurTot lengthens every track with trailing silence, or shortens it by
// trimming trailing silence. Shortening fails, leaving the piece unchanged,
// when some track does not end in enough silence.
func (p *Piece) SetDurTot(durTot float64) error {
	if durTot <= 0 {
		return fmt.Errorf("piece duration %v: %w", durTot, ErrOutOfRange)
	}
	diff := durTot - p.DurTot
	switch {
	case diff > timeEpsilon:
		for track := range p.PhraseGrid {
			if err := p.padTrack(track, diff); err != nil {
				return err
			}
		}
	case diff < -timeEpsilon:
		trim := -diff
		for track, phrases := range p.PhraseGrid {
			if trailingSilence(phrases) < trim-timeEpsilon {
				return fmt.Errorf("track %v ends in less than %v s of silence: %w", track, trim, ErrOutOfRange)
			}
		}
		for track := range p.PhraseGrid {
			p.trimTrack(track, trim)
		}
	default:
		return nil
	}
	return p.Reset()
}

func trailingSilence(phrases []*Phrase) float64 {
	total := 0.0
	for i := len(phrases) - 1; i >= 0; i-- {
		trajs := phrases[i].Trajectories()
		for j := len(trajs) - 1; j >= 0; j-- {
			if !trajs[j].Silent() {
				return total
			}
			total += trajs[j].DurTot
		}
	}
	return total
}

func (p *Piece) trimTrack(track int, trim float64) {
	phrases := p.PhraseGrid[track]
	for trim > timeEpsilon && len(phrases) > 0 {
		last := phrases[len(phrases)-1]
		trajs := last.Trajectories()
		if len(trajs) == 0 {
			phrases = phrases[:len(phrases)-1]
			continue
		}
		t := trajs[len(trajs)-1]
		if t.DurTot > trim+timeEpsilon {
			t.DurTot -= trim
			trim = 0
		} else {
			trim -= t.DurTot
			last.TrajectoryGrid[0] = trajs[:len(trajs)-1]
		}
		last.Reset()
		last.pruneGroups()
		if len(last.Trajectories()) == 0 {
			phrases = phrases[:len(phrases)-1]
		}
	}
	p.PhraseGrid[track] = phrases
}
