package swara

import (
	"fmt"
	"math"
)

// ShapeID identifies the curve family of a trajectory.
type ShapeID int

const (
	ShapeFixed ShapeID = iota
	ShapeBend
	ShapeApproach
	ShapeDeparture
	ShapeLadle
	ShapeReverseLadle
	ShapeYoyo
	ShapeKrintin
	ShapeKrintinSlide
	ShapeKrintinSlideHammer
	ShapeDenseKrintin
	ShapeSlide
	ShapeSilence
	ShapeVibrato
	numShapes
)

type shapeInfo struct {
	name string
	// pitches is the exact pitch count, or -minimum when variable.
	pitches int
	// step shapes hold one segment per pitch; glides one per adjacent pair.
	step   bool
	sloped bool
	// default segment fractions of step shapes
	durs []float64
	// articulations placed on the internal boundaries of step shapes; "" is a
	// hammer in the direction of the pitch change
	boundaries []string
}

var shapes = [numShapes]shapeInfo{
	ShapeFixed:              {name: "Fixed", pitches: 1},
	ShapeBend:               {name: "Bend: Simple", pitches: 2},
	ShapeApproach:           {name: "Bend: Sloped Start", pitches: 2, sloped: true},
	ShapeDeparture:          {name: "Bend: Sloped End", pitches: 2, sloped: true},
	ShapeLadle:              {name: "Bend: Ladle", pitches: 3, sloped: true},
	ShapeReverseLadle:       {name: "Bend: Reverse Ladle", pitches: 3, sloped: true},
	ShapeYoyo:               {name: "Bend: Simple Multiple", pitches: -2},
	ShapeKrintin:            {name: "Krintin", pitches: 2, step: true, durs: []float64{0.2, 0.8}, boundaries: []string{""}},
	ShapeKrintinSlide:       {name: "Krintin Slide", pitches: 3, step: true, durs: []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, boundaries: []string{"", Slide}},
	ShapeKrintinSlideHammer: {name: "Krintin Slide Hammer", pitches: 4, step: true, durs: []float64{0.25, 0.25, 0.25, 0.25}, boundaries: []string{"", Slide, ""}},
	ShapeDenseKrintin:       {name: "Dense Krintin Slide Hammer", pitches: 6, step: true, durs: []float64{1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6}, boundaries: []string{"", "", Slide, "", ""}},
	ShapeSlide:              {name: "Slide", pitches: 2, step: true, durs: []float64{0.5, 0.5}, boundaries: []string{Slide}},
	ShapeSilence:            {name: "Silent", pitches: 0},
	ShapeVibrato:            {name: "Vibrato", pitches: 1},
}

func (s ShapeID) Valid() bool {
	return s >= 0 && s < numShapes
}

func (s ShapeID) String() string {
	if !s.Valid() {
		return fmt.Sprintf("ShapeID(%d)", int(s))
	}
	return shapes[s].name
}

// Step reports whether the shape holds each pitch for a segment instead of
// gliding between them.
func (s ShapeID) Step() bool {
	return s.Valid() && shapes[s].step
}

// Sloped reports whether the Slope parameter affects the curve.
func (s ShapeID) Sloped() bool {
	return s.Valid() && shapes[s].sloped
}

// segments returns the number of duration segments for a pitch count.
func (s ShapeID) segments(pitches int) int {
	switch {
	case s == ShapeSilence, s == ShapeFixed, s == ShapeVibrato:
		return 1
	case shapes[s].step:
		return pitches
	}
	return pitches - 1
}

// checkArity validates pitch and segment counts against the shape.
func (s ShapeID) checkArity(pitches, segments int) error {
	want := shapes[s].pitches
	switch {
	case s == ShapeSilence:
		if pitches > 1 {
			return fmt.Errorf("%v takes at most one pitch, got %v: %w", s, pitches, ErrArity)
		}
	case want < 0:
		if pitches < -want {
			return fmt.Errorf("%v takes at least %v pitches, got %v: %w", s, -want, pitches, ErrArity)
		}
	case pitches != want:
		return fmt.Errorf("%v takes %v pitches, got %v: %w", s, want, pitches, ErrArity)
	}
	if n := s.segments(pitches); segments != n {
		return fmt.Errorf("%v with %v pitches takes %v durations, got %v: %w", s, pitches, n, segments, ErrArity)
	}
	return nil
}

// bend is a half-cosine glide from a to b over x in [0, 1].
func bend(x, a, b float64) float64 {
	piX := math.Cos(math.Pi*(x+1))/2 + 0.5
	return a + piX*(b-a)
}

func approach(x, a, b, slope float64) float64 {
	return (a-b)*math.Pow(1-x, slope) + b
}

func departure(x, a, b, slope float64) float64 {
	return (b-a)*math.Pow(x, slope) + a
}

// logCompute evaluates the curve at normalized time x, in log2 Hz.
func (t *Trajectory) logCompute(x float64) float64 {
	lf := t.LogFreqs()
	d := t.DurArray
	switch t.ID {
	case ShapeFixed:
		return lf[0]
	case ShapeBend:
		return bend(x, lf[0], lf[1])
	case ShapeApproach:
		return approach(x, lf[0], lf[1], t.Slope)
	case ShapeDeparture:
		return departure(x, lf[0], lf[1], t.Slope)
	case ShapeLadle:
		if x < d[0] {
			return approach(x/d[0], lf[0], lf[1], t.Slope)
		}
		return bend((x-d[0])/d[1], lf[1], lf[2])
	case ShapeReverseLadle:
		if x < d[0] {
			return bend(x/d[0], lf[0], lf[1])
		}
		return departure((x-d[0])/d[1], lf[1], lf[2], t.Slope)
	case ShapeYoyo:
		i, start := t.segmentAt(x)
		return bend((x-start)/d[i], lf[i], lf[i+1])
	case ShapeKrintin, ShapeKrintinSlide, ShapeKrintinSlideHammer, ShapeDenseKrintin, ShapeSlide:
		i, _ := t.segmentAt(x)
		return lf[i]
	case ShapeSilence:
		return math.Log2(t.FundID12)
	case ShapeVibrato:
		return t.vibrato(x, lf[0])
	}
	panic(fmt.Sprintf("logCompute: unknown shape %d", int(t.ID)))
}

// segmentAt finds the segment containing x and its start.
func (t *Trajectory) segmentAt(x float64) (int, float64) {
	start := 0.0
	for i, d := range t.DurArray {
		if i == len(t.DurArray)-1 || x < start+d {
			return i, start
		}
		start += d
	}
	return 0, 0
}

// vibrato oscillates around base in log frequency. The first and the last
// half-period ease in from and out to base.
func (t *Trajectory) vibrato(x, base float64) float64 {
	v := t.VibObj
	if v == nil {
		v = &defaultVib
	}
	if v.Periods <= 0 {
		return base
	}
	half := v.Extent / 2
	vo := clamp(v.VertOffset, -half, half)
	phase := 0.0
	if v.InitUp {
		phase = math.Pi
	}
	omega := 2 * math.Pi * v.Periods
	osc := func(x float64) float64 { return base + vo + math.Cos(omega*x+phase)*half }
	edge := 1 / (2 * v.Periods)
	switch {
	case x < edge:
		peak := osc(edge)
		return base + (peak-base)*(1-math.Cos(omega*x))/2
	case x > 1-edge:
		start := 1 - edge
		from := osc(start)
		return from + (base-from)*(1-math.Cos(omega*(x-start)))/2
	}
	return osc(x)
}
