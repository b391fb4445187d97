// Package render turns the frequency contour of a track into audio: a plain
// sine follows the computed pitch of every sounding trajectory and the
// trajectory's automation, if any, shapes its gain.
package render

import (
	"fmt"
	"math"

	"github.com/idtap/swara"
	"github.com/viterin/vek/vek32"
)

// Amplitude is the peak level of the rendered sine before automation.
const Amplitude = 0.5

// Track renders a track of the piece as an interleaved stereo float32 buffer
// (L, R, L, R, ...) at sampleRate. Silent trajectories render as zeros; the
// oscillator phase carries across trajectory boundaries so that connected
// gestures do not click.
func Track(p *swara.Piece, track int, sampleRate int) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %v: %w", sampleRate, swara.ErrOutOfRange)
	}
	if track < 0 || track >= p.Tracks() {
		return nil, fmt.Errorf("track %v: %w", track, swara.ErrOutOfRange)
	}
	length := int(math.Round(p.DurTot * float64(sampleRate)))
	mono := make([]float32, length)
	gain := vek32.Ones(length)
	phase := 0.0
	for _, ph := range p.PhraseGrid[track] {
		for _, traj := range ph.Trajectories() {
			start := ph.StartTime + traj.StartTime
			first := clamp(int(math.Round(start*float64(sampleRate))), 0, length)
			last := clamp(int(math.Round((start+traj.DurTot)*float64(sampleRate))), 0, length)
			if traj.Silent() || traj.DurTot <= 0 {
				continue
			}
			for i := first; i < last; i++ {
				x := (float64(i)/float64(sampleRate) - start) / traj.DurTot
				x = math.Min(math.Max(x, 0), 1)
				phase += 2 * math.Pi * traj.Compute(x, false) / float64(sampleRate)
				mono[i] = float32(math.Sin(phase))
				if traj.Automation == nil {
					continue
				}
				v, err := traj.Automation.ValueAtX(x)
				if err != nil {
					return nil, fmt.Errorf("automation of trajectory %v: %w", traj.UniqueID, err)
				}
				gain[i] = float32(v)
			}
			phase = math.Mod(phase, 2*math.Pi)
		}
	}
	vek32.Mul_Inplace(mono, gain)
	vek32.MulNumber_Inplace(mono, Amplitude)
	stereo := make([]float32, 2*length)
	for i, v := range mono {
		stereo[2*i] = v
		stereo[2*i+1] = v
	}
	return stereo, nil
}

// Piece mixes all tracks of the piece into one stereo buffer, scaled by the
// number of tracks.
func Piece(p *swara.Piece, sampleRate int) ([]float32, error) {
	var mix []float32
	for track := 0; track < p.Tracks(); track++ {
		buf, err := Track(p, track, sampleRate)
		if err != nil {
			return nil, err
		}
		if mix == nil {
			mix = buf
			continue
		}
		vek32.Add_Inplace(mix, buf)
	}
	if p.Tracks() > 1 {
		vek32.MulNumber_Inplace(mix, 1/float32(p.Tracks()))
	}
	return mix, nil
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
