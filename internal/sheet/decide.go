package sheet

import "math"

const offsetEpsilon = 1e-6

// Decide picks where a released drag should rest.
//
// A release faster than threshold is a flick and moves exactly one state from
// current in the direction of travel, stopping at Full and Collapsed.
// Anything slower rests on the snap point nearest to the clamped end offset;
// on a tie the state closest to current wins, then the more open one.
func Decide(r Release, current State, points SnapPoints, threshold float64) SnapPoint {
	if !current.Valid() {
		current = Half
	}
	if math.Abs(r.Velocity) > threshold {
		return points[current.Step(r.Velocity)]
	}

	end := points.Clamp(r.EndOffset)
	best := points[Full]
	bestDist := math.Abs(end - best.Offset)
	for _, s := range States[1:] {
		p := points[s]
		d := math.Abs(end - p.Offset)
		switch {
		case d < bestDist-offsetEpsilon:
			best, bestDist = p, d
		case math.Abs(d-bestDist) <= offsetEpsilon &&
			s.distance(current) < best.State.distance(current):
			best, bestDist = p, d
		}
	}
	return best
}
