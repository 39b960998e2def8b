package sheet

import "math"

// Geometry is the space the panel lives in.
type Geometry struct {
	ViewportHeight float64
	ReservedTop    float64
}

// PanelHeight is the height available below the reserved top, never negative.
func (g Geometry) PanelHeight() float64 {
	h := g.ViewportHeight - g.ReservedTop
	if math.IsNaN(h) || h < 0 {
		return 0
	}
	return h
}

// SnapPoint is a resting position, measured down from the fully open panel.
type SnapPoint struct {
	State  State
	Offset float64
}

// SnapPoints holds one snap point per state, indexed by State.
type SnapPoints [3]SnapPoint

// Resolve maps a geometry to its three snap points.
//
// When the panel is no taller than the collapsed strip it cannot collapse, so
// every offset is pinned to zero and the panel is effectively always full.
// On panels so short that the half offset would reach the collapsed one, Half
// is placed the same fraction of the way down the collapsed range instead.
func Resolve(g Geometry, o Options) SnapPoints {
	h := g.PanelHeight()
	collapsed := h - o.CollapsedVisible
	if collapsed <= 0 {
		return SnapPoints{
			{State: Full},
			{State: Half},
			{State: Collapsed},
		}
	}
	half := h * o.HalfFraction
	if half >= collapsed {
		half = collapsed * o.HalfFraction
	}
	return SnapPoints{
		{State: Full, Offset: 0},
		{State: Half, Offset: half},
		{State: Collapsed, Offset: collapsed},
	}
}

// Offset returns the offset for s.
func (p SnapPoints) Offset(s State) float64 {
	if !s.Valid() {
		return 0
	}
	return p[s].Offset
}

// Max is the largest legal offset.
func (p SnapPoints) Max() float64 {
	return p[Collapsed].Offset
}

// Degenerate reports whether the geometry left no room to collapse.
func (p SnapPoints) Degenerate() bool {
	return p.Max() <= 0
}

// Clamp bounds v to [0, Max].
func (p SnapPoints) Clamp(v float64) float64 {
	return clamp(v, 0, p.Max())
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
