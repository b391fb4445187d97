// Package gomidi exports tracks of a piece as Standard MIDI Files. Every
// sounding trajectory becomes one note on the key nearest to its onset, and
// the rest of its contour is carried by pitch bend messages.
package gomidi

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/idtap/swara"
	"github.com/idtap/swara/internal/logger"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type (
	// Options control the export. Zero values take the defaults.
	Options struct {
		Ticks     uint16  // ticks per quarter note up to MaxTicks, default 960
		BPM       float64 // tempo of the exported file, default 60
		Channel   uint8
		Velocity  uint8   // default 100
		BendRange float64 // pitch bend range in semitones, default 12
		BendStep  float64 // seconds between pitch bend samples, default 0.02
	}

	event struct {
		tick int
		msg  []byte
	}
)

const bendScale = 8192

// MaxTicks is the finest metrical resolution of an SMF header.
const MaxTicks = 1<<15 - 1

func (o Options) withDefaults() Options {
	if o.Ticks == 0 {
		o.Ticks = 960
	}
	if o.BPM <= 0 {
		o.BPM = 60
	}
	if o.Velocity == 0 {
		o.Velocity = 100
	}
	if o.BendRange <= 0 {
		o.BendRange = 12
	}
	if o.BendStep <= 0 {
		o.BendStep = 0.02
	}
	return o
}

// MIDINumber converts a frequency in Hz to a fractional MIDI note number
// (A4 = 440 Hz = 69).
func MIDINumber(freq float64) float64 {
	return 69 + 12*math.Log2(freq/440)
}

// Track builds a single track SMF of the given track of the piece.
func Track(p *swara.Piece, track int, o Options) (*smf.SMF, error) {
	if track < 0 || track >= p.Tracks() {
		return nil, fmt.Errorf("track %v: %w", track, swara.ErrOutOfRange)
	}
	if o.Ticks > MaxTicks {
		return nil, fmt.Errorf("%v ticks per quarter note: %w", o.Ticks, swara.ErrOutOfRange)
	}
	o = o.withDefaults()
	ticksPerSecond := o.BPM / 60 * float64(o.Ticks)
	toTick := func(seconds float64) int {
		return int(math.Round(seconds * ticksPerSecond))
	}
	bend := func(semitones float64) []byte {
		v := math.Round(semitones / o.BendRange * bendScale)
		v = math.Max(-bendScale, math.Min(bendScale-1, v))
		return midi.Pitchbend(o.Channel, int16(v))
	}

	name := p.Title
	if track < len(p.TrackTitles) && p.TrackTitles[track] != "" {
		name = p.TrackTitles[track]
	}
	events := []event{
		{0, smf.MetaTrackSequenceName(name)},
		{0, smf.MetaTempo(o.BPM)},
		// RPN 0 sets the pitch bend range
		{0, midi.ControlChange(o.Channel, 101, 0)},
		{0, midi.ControlChange(o.Channel, 100, 0)},
		{0, midi.ControlChange(o.Channel, 6, uint8(o.BendRange))},
		{0, midi.ControlChange(o.Channel, 38, 0)},
	}
	for _, ph := range p.PhraseGrid[track] {
		for _, traj := range ph.Trajectories() {
			if traj.Silent() || traj.DurTot <= 0 {
				continue
			}
			start := ph.StartTime + traj.StartTime
			end := start + traj.DurTot
			onset := MIDINumber(traj.Compute(0, false))
			key := math.Round(onset)
			if key < 0 || key > 127 {
				logger.Warn("trajectory out of MIDI range", logger.Fields{"uniqueId": traj.UniqueID, "key": key})
				continue
			}
			events = append(events,
				event{toTick(start), bend(onset - key)},
				event{toTick(start), midi.NoteOn(o.Channel, uint8(key), o.Velocity)},
			)
			if traj.ID != swara.ShapeFixed {
				for t := start + o.BendStep; t < end; t += o.BendStep {
					x := (t - start) / traj.DurTot
					events = append(events, event{toTick(t), bend(MIDINumber(traj.Compute(x, false)) - key)})
				}
				events = append(events, event{toTick(end), bend(MIDINumber(traj.Compute(1, false)) - key)})
			}
			events = append(events, event{toTick(end), midi.NoteOff(o.Channel, uint8(key))})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(o.Ticks)
	var tr smf.Track
	last := 0
	for _, e := range events {
		tr.Add(uint32(e.tick-last), e.msg)
		last = e.tick
	}
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("could not add track to SMF: %w", err)
	}
	return s, nil
}

// WriteTrack writes the given track of the piece to w as a .mid file.
func WriteTrack(w io.Writer, p *swara.Piece, track int, o Options) error {
	s, err := Track(p, track, o)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("could not write SMF: %w", err)
	}
	return nil
}
