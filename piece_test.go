package swara_test

import (
	"math"
	"testing"

	"github.com/idtap/swara"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func piece(t *testing.T, grid ...[]*swara.Phrase) *swara.Piece {
	t.Helper()
	instruments := make([]string, len(grid))
	for i := range instruments {
		instruments[i] = swara.DefaultInstrumentation
	}
	p, err := swara.NewPiece(swara.PieceOptions{Title: "test", PhraseGrid: grid, Instrumentation: instruments})
	require.NoError(t, err)
	return p
}

func TestEmptyTrackIsPadded(t *testing.T) {
	p := piece(t, []*swara.Phrase{phrase(t, fixed(t, 0, 1), fixed(t, 2, 2))}, nil)
	assert.Equal(t, 3.0, p.DurTot)
	require.Len(t, p.PhraseGrid[1], 1)
	trajs := p.PhraseGrid[1][0].Trajectories()
	require.Len(t, trajs, 1)
	assert.True(t, trajs[0].Silent())
	assert.Equal(t, 3.0, trajs[0].DurTot)
	assert.Equal(t, p.Raga.Fundamental, trajs[0].FundID12)
}

func TestShortTrackIsPadded(t *testing.T) {
	p := piece(t,
		[]*swara.Phrase{phrase(t, fixed(t, 0, 2)), phrase(t, fixed(t, 4, 2))},
		[]*swara.Phrase{phrase(t, fixed(t, 7, 1), silence(t, 0.5))},
	)
	assert.Equal(t, 4.0, p.DurTot)
	require.Len(t, p.PhraseGrid[1], 1)
	trajs := p.PhraseGrid[1][0].Trajectories()
	require.Len(t, trajs, 2)
	assert.Equal(t, 3.0, trajs[1].DurTot)
	assert.Equal(t, []float64{1}, p.DurArrayGrid[1])
	assert.Equal(t, []float64{0.5, 0.5}, p.DurArrayGrid[0])
	assert.Equal(t, 2.0, p.PhraseGrid[0][1].StartTime)
	assert.Equal(t, 1, p.PhraseGrid[0][1].Trajectories()[0].PhraseIdx)
}

func TestPieceResetIdempotent(t *testing.T) {
	p := piece(t, []*swara.Phrase{phrase(t, fixed(t, 0, 0.7)), phrase(t, fixed(t, 2, 1.1))}, nil)
	before, err := p.ToSerialized()
	require.NoError(t, err)
	require.NoError(t, p.Reset())
	after, err := p.ToSerialized()
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestTimeQueries(t *testing.T) {
	p := piece(t, []*swara.Phrase{phrase(t, fixed(t, 0, 1), fixed(t, 2, 1)), phrase(t, fixed(t, 4, 2))})
	idx, err := p.PhraseIdxFromTime(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	idx, err = p.PhraseIdxFromTime(4, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	_, err = p.PhraseIdxFromTime(4.5, 0)
	assert.ErrorIs(t, err, swara.ErrOutOfRange)
	_, err = p.PhraseAt(1, 3)
	assert.ErrorIs(t, err, swara.ErrOutOfRange)

	traj, err := p.TrajAt(1.5, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, traj.Pitches[0].NumberedPitch())
	f, err := p.TrackFrequencyAt(3, 0)
	require.NoError(t, err)
	assert.InDelta(t, swara.PitchFromNumber(4, 0).Frequency(), f, 1e-9)

	found, track, err := p.TrajFromUniqueID(traj.UniqueID)
	require.NoError(t, err)
	assert.Same(t, traj, found)
	assert.Equal(t, 0, track)
	_, _, err = p.PhraseFromUniqueID("nope")
	assert.ErrorIs(t, err, swara.ErrNotFound)

	assert.Len(t, p.AllTrajectories(0), 3)
	assert.Len(t, p.AllPitches(0, false), 3)
	tally := p.DurationsOfFixedPitches(0, swara.PitchNumberOutput, true)
	assert.InDelta(t, 0.5, tally["4"], 1e-9)
}

func TestTrackFrequencyInSilence(t *testing.T) {
	p := piece(t, []*swara.Phrase{phrase(t, silence(t, 1), fixed(t, 0, 1))})
	f, err := p.TrackFrequencyAt(0.5, 0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f))
}

func TestSections(t *testing.T) {
	p := piece(t, []*swara.Phrase{
		phrase(t, fixed(t, 0, 1)), phrase(t, fixed(t, 2, 1)), phrase(t, fixed(t, 4, 1)), phrase(t, fixed(t, 5, 1)),
	})
	require.NoError(t, p.SetSectionStarts(0, []int{2, 2, 0, 9}))
	assert.Equal(t, []int{0, 2}, p.SectionStartsGrid[0])
	assert.Len(t, p.SectionCatGrid[0], 2)
	secs, err := p.Sections(0)
	require.NoError(t, err)
	require.Len(t, secs, 2)
	assert.Equal(t, 2.0, secs[1].StartTime)
	assert.Equal(t, 2.0, secs[1].DurTot)
	assert.Len(t, secs[1].Phrases, 2)
	idx, err := p.SectionIdxFromTime(2.5, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	require.NoError(t, p.SectionCatGrid[0][1].Set("Tala", "Tintal", true))
	require.NoError(t, p.InsertPhrase(0, 1, phrase(t, fixed(t, 7, 1))))
	assert.Equal(t, []int{0, 3}, p.SectionStartsGrid[0])
	assert.Equal(t, []string{"Tala: Tintal"}, p.SectionCatGrid[0][1].Selected())
	assert.Equal(t, 5.0, p.DurTot)

	require.NoError(t, p.RemovePhrase(0, 3))
	assert.Equal(t, []int{0, 3}, p.SectionStartsGrid[0])
	assert.Equal(t, 4.0, p.DurTot)

	divs := p.AllPhraseDivs(0)
	require.Len(t, divs, 3)
	assert.True(t, divs[2].Section)
	assert.False(t, divs[0].Section)
	assert.Equal(t, 1.0, divs[0].Time)
}

func TestMeters(t *testing.T) {
	p := piece(t, []*swara.Phrase{phrase(t, fixed(t, 0, 10))})
	m, err := swara.NewMeter([]swara.Subdivision{{4}, {4}}, 60, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.0, m.CycleDur())
	assert.Equal(t, 8.0, m.EndTime())
	require.NoError(t, p.AddMeter(m))
	overlapping, _ := swara.NewMeter([]swara.Subdivision{{3}}, 60, 7, 1)
	assert.ErrorIs(t, p.AddMeter(overlapping), swara.ErrOverlap)
	after, _ := swara.NewMeter([]swara.Subdivision{{3}}, 60, 8, 1)
	require.NoError(t, p.AddMeter(after))

	chunks := p.ChunkedMeters(5)
	require.Len(t, chunks, 2)
	assert.Equal(t, []*swara.Meter{m}, chunks[0])
	assert.Equal(t, []*swara.Meter{m, after}, chunks[1])

	require.NoError(t, p.RemoveMeter(m.UniqueID))
	assert.ErrorIs(t, p.RemoveMeter(m.UniqueID), swara.ErrNotFound)
}

func TestPulseTimes(t *testing.T) {
	m, err := swara.NewMeter([]swara.Subdivision{{2}, {3, 2}}, 120, 1, 1)
	require.NoError(t, err)
	beats, err := m.PulseTimes(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1.5}, beats)
	pulses, err := m.PulseTimes(1)
	require.NoError(t, err)
	assert.Len(t, pulses, 10)
	_, err = m.PulseTimes(2)
	assert.ErrorIs(t, err, swara.ErrOutOfRange)
	_, err = swara.NewMeter([]swara.Subdivision{{4}}, 0, 0, 1)
	assert.ErrorIs(t, err, swara.ErrOutOfRange)
}

func TestChunkedTrajs(t *testing.T) {
	p := piece(t, []*swara.Phrase{
		phrase(t, fixed(t, 0, 1), fixed(t, 2, 3)),
		phrase(t, fixed(t, 4, 1)),
	})
	chunks := p.ChunkedTrajs(0, 2)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2)
	// the second trajectory spans [1, 4): it ends in window 1 and starts in 0
	assert.Len(t, chunks[1], 1)
	assert.Len(t, chunks[2], 1)
	assert.Equal(t, 4, chunks[2][0].Pitches[0].NumberedPitch())

	bols := p.ChunkedDisplayBols(0, 2)
	require.Len(t, bols, 3)
	assert.Len(t, bols[0], 2)
	assert.Empty(t, bols[1])
	assert.Len(t, bols[2], 1)
	assert.Equal(t, "da", bols[2][0].Bol)

	sargam := p.AllDisplaySargam(0)
	require.Len(t, sargam, 3)
	assert.Equal(t, 0, sargam[0].Pos)
	assert.Equal(t, 1, sargam[1].Pos)
	assert.Equal(t, "G", sargam[2].Sargam)
}

func TestChunkedPointsOnBoundary(t *testing.T) {
	p := piece(t, []*swara.Phrase{
		phrase(t, fixed(t, 0, 2)),
		phrase(t, fixed(t, 4, 2)),
	})
	divs := p.ChunkedPhraseDivs(0, 2)
	require.Len(t, divs, 2)
	assert.Empty(t, divs[0])
	require.Len(t, divs[1], 1)
	assert.Equal(t, 2.0, divs[1][0].Time)

	sargam := p.ChunkedDisplaySargam(0, 2)
	require.Len(t, sargam, 2)
	assert.Len(t, sargam[0], 1)
	assert.Len(t, sargam[1], 1)

	bols := p.ChunkedDisplayBols(0, 1)
	require.Len(t, bols, 4)
	total := 0
	for _, window := range bols {
		total += len(window)
	}
	assert.Equal(t, len(p.AllDisplayBols(0)), total)
}

func TestDisplayVowels(t *testing.T) {
	sung := func(vowel, consonant string) *swara.Trajectory {
		traj, err := swara.NewTrajectory(swara.TrajectoryOptions{
			ID:              swara.ShapeFixed,
			Pitches:         []swara.Pitch{swara.PitchFromNumber(0, 0)},
			Instrumentation: "Vocal (M)",
			Vocalization:    swara.Vocalization{Vowel: vowel, StartConsonant: consonant},
		})
		require.NoError(t, err)
		return traj
	}
	p, err := swara.NewPiece(swara.PieceOptions{
		Instrumentation: []string{"Vocal (M)"},
		PhraseGrid:      [][]*swara.Phrase{{phrase(t, sung("a", ""), sung("a", ""), sung("a", "ma"), sung("ī", ""))}},
	})
	require.NoError(t, err)
	vowels := p.AllDisplayVowels(0)
	require.Len(t, vowels, 3)
	assert.Equal(t, "ma", vowels[1].Syllable)
	assert.Equal(t, 2.0, vowels[1].Time)
	assert.Equal(t, "ee", vowels[2].Syllable)
	assert.Empty(t, p.AllDisplayBols(0))
}

func TestTransformLeavesOriginal(t *testing.T) {
	p := piece(t, []*swara.Phrase{phrase(t, fixed(t, 0, 1), fixed(t, 2, 1))})
	before, err := p.ToSerialized()
	require.NoError(t, err)
	q, err := p.Transform(func(c *swara.Piece) error {
		return c.PhraseGrid[0][0].RemoveTrajectory(0)
	})
	require.NoError(t, err)
	assert.True(t, q.PhraseGrid[0][0].Trajectories()[0].Silent())
	after, err := p.ToSerialized()
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))

	_, err = p.Transform(func(c *swara.Piece) error { return c.RemovePhrase(0, 7) })
	assert.ErrorIs(t, err, swara.ErrOutOfRange)
}

func TestSetDurTot(t *testing.T) {
	p := piece(t, []*swara.Phrase{phrase(t, fixed(t, 0, 2))}, nil)
	require.NoError(t, p.SetDurTot(5))
	assert.Equal(t, 5.0, p.DurTot)
	assert.Len(t, p.PhraseGrid[0][0].Trajectories(), 2)
	require.NoError(t, p.SetDurTot(3))
	assert.Equal(t, 3.0, p.DurTot)
	assert.Equal(t, 1.0, p.PhraseGrid[0][0].Trajectories()[1].DurTot)
	assert.Equal(t, 3.0, p.PhraseGrid[1][0].DurTot)
	assert.ErrorIs(t, p.SetDurTot(1), swara.ErrOutOfRange)
	assert.Equal(t, 3.0, p.DurTot)
	require.NoError(t, p.SetDurTot(2))
	assert.Len(t, p.PhraseGrid[0][0].Trajectories(), 1)
}

func TestUpdateFundamental(t *testing.T) {
	p := piece(t, []*swara.Phrase{phrase(t, fixed(t, 0, 1), silence(t, 1))})
	p.UpdateFundamental(220)
	f, err := p.TrackFrequencyAt(0.5, 0)
	require.NoError(t, err)
	assert.InDelta(t, 220, f, 1e-9)
	assert.Equal(t, 220.0, p.PhraseGrid[0][0].Trajectories()[1].FundID12)
}

func TestAssemblages(t *testing.T) {
	p := piece(t, []*swara.Phrase{phrase(t, fixed(t, 0, 1)), phrase(t, fixed(t, 2, 1)), phrase(t, fixed(t, 4, 1))})
	phrases := p.PhraseGrid[0]
	a := swara.NewAssemblage(swara.DefaultInstrumentation, "motifs")
	s, err := a.AddStrand("rising")
	require.NoError(t, err)
	_, err = a.AddStrand("rising")
	assert.ErrorIs(t, err, swara.ErrDuplicate)
	require.NoError(t, a.AddPhrase(phrases[2], s.ID))
	require.NoError(t, a.AddPhrase(phrases[0], s.ID))
	assert.Equal(t, []*swara.Phrase{phrases[0], phrases[2]}, s.Phrases)
	require.NoError(t, a.AddPhrase(phrases[1], ""))
	assert.ErrorIs(t, a.AddPhrase(phrases[1], s.ID), swara.ErrDuplicate)
	require.NoError(t, a.MovePhraseToStrand(phrases[1], s.ID))
	assert.Empty(t, a.LoosePhrases)
	require.NoError(t, a.RemoveStrand(s.ID))
	assert.Len(t, a.LoosePhrases, 3)

	require.NoError(t, p.AddAssemblage(a))
	all, err := p.Assemblages()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Phrases(), 3)
	assert.Same(t, phrases[0], all[0].LoosePhrases[0])

	stranger := swara.NewAssemblage("Sarangi", "other")
	assert.ErrorIs(t, p.AddAssemblage(stranger), swara.ErrNotFound)
	_, err = swara.AssemblageFromDescriptor(swara.AssemblageDescriptor{LoosePhraseIDs: []string{"missing"}}, phrases)
	assert.ErrorIs(t, err, swara.ErrNotFound)
}

func TestSectionCategoriesFollowStarts(t *testing.T) {
	phrases := []*swara.Phrase{phrase(t, fixed(t, 0, 1)), phrase(t, fixed(t, 2, 1)), phrase(t, fixed(t, 4, 1))}
	p, err := swara.NewPiece(swara.PieceOptions{
		PhraseGrid:        [][]*swara.Phrase{phrases},
		SectionStartsGrid: [][]int{{2, 0}},
		SectionCatGrid:    [][]swara.Categorization{{{TopLevel: "at2"}, {TopLevel: "at0"}}},
	})
	require.NoError(t, err)
	check := func(p *swara.Piece) {
		t.Helper()
		assert.Equal(t, []int{0, 2}, p.SectionStartsGrid[0])
		secs, err := p.Sections(0)
		require.NoError(t, err)
		require.Len(t, secs, 2)
		assert.Equal(t, "at0", secs[0].Categorization.TopLevel)
		assert.Equal(t, "at2", secs[1].Categorization.TopLevel)
	}
	check(p)

	p.SectionStartsGrid[0] = []int{2, 0}
	p.SectionCatGrid[0] = []swara.Categorization{{TopLevel: "at2"}, {TopLevel: "at0"}}
	data, err := p.ToSerialized()
	require.NoError(t, err)
	q, err := swara.FromSerialized(data)
	require.NoError(t, err)
	check(q)
}

func TestResetRejectsIncompletePiece(t *testing.T) {
	p := piece(t, []*swara.Phrase{phrase(t, fixed(t, 0, 1))})

	empty := p.Copy()
	empty.PhraseGrid = nil
	assert.ErrorIs(t, empty.DurTotFromPhrases(), swara.ErrMissingField)
	assert.ErrorIs(t, empty.Reset(), swara.ErrMissingField)
	_, err := empty.Transform(func(*swara.Piece) error { return nil })
	assert.ErrorIs(t, err, swara.ErrMissingField)

	noRaga := p.Copy()
	noRaga.Raga = nil
	assert.ErrorIs(t, noRaga.Reset(), swara.ErrMissingField)

	hole := p.Copy()
	hole.PhraseGrid[0] = append(hole.PhraseGrid[0], nil)
	assert.ErrorIs(t, hole.DurArrayFromPhrases(), swara.ErrMissingField)

	_, err = p.Transform(func(c *swara.Piece) error {
		c.Raga = nil
		return nil
	})
	assert.ErrorIs(t, err, swara.ErrMissingField)
	assert.NotNil(t, p.Raga)
}
