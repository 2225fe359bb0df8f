package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// StartPoint describes where the initial oil is placed
type StartPoint struct {
	Center r2.Vec  // Center of the spill
	Radius float64 // Cells with a midpoint within Radius of Center are seeded, 0 seeds one cell
	Spread float64 // Gaussian spread, weights are exp(-|m-c|^2/Spread)
	Total  float64 // Total amount of oil placed on the mesh
}

/*
InitialOilDistribution sets OilAmount on every transport cell: cells selected by start share Total with Gaussian
weights, all others are set to zero. When no midpoint falls inside the radius, the triangle containing the center is
seeded, or failing that, the one with the nearest midpoint.
*/
func (m *Mesh) InitialOilDistribution(start StartPoint) (err error) {
	if !m.ready {
		return ErrGeometryNotReady
	}
	if len(m.Triangles) == 0 {
		return fmt.Errorf("mesh has no transport capable cells to seed")
	}
	if start.Total < 0 {
		return fmt.Errorf("initial oil total must not be negative, have %g", start.Total)
	}
	var (
		selected []int
		weights  []float64
	)
	for _, k := range m.Triangles {
		c := &m.Cells[k]
		c.OilAmount, c.OilChange = 0, 0
		if start.Radius <= 0 {
			continue
		}
		d2 := r2.Norm2(r2.Sub(c.Midpoint, start.Center))
		if d2 <= start.Radius*start.Radius {
			selected = append(selected, k)
			weights = append(weights, gaussian(d2, start.Spread))
		}
	}
	if len(selected) == 0 || floats.Sum(weights) == 0 {
		selected = []int{m.locate(start.Center)}
		weights = []float64{1}
	}
	norm := floats.Sum(weights)
	for i, k := range selected {
		m.Cells[k].OilAmount = start.Total * weights[i] / norm
	}
	return
}

func gaussian(d2, spread float64) float64 {
	if spread <= 0 {
		return 1
	}
	return math.Exp(-d2 / spread)
}

// locate returns the triangle containing p, or the triangle whose midpoint is nearest to p
func (m *Mesh) locate(p r2.Vec) (kBest int) {
	var (
		best = math.Inf(1)
	)
	kBest = m.Triangles[0]
	for _, k := range m.Triangles {
		c := &m.Cells[k]
		if ContainsPoint(c.Vertices, p) {
			return k
		}
		if d2 := r2.Norm2(r2.Sub(c.Midpoint, p)); d2 < best {
			best, kBest = d2, k
		}
	}
	return
}

// CellsWithinArea returns the transport cells whose midpoint lies in the closed box xRange by yRange
func (m *Mesh) CellsWithinArea(xRange, yRange [2]float64) (indices []int, err error) {
	if !m.ready {
		return nil, ErrGeometryNotReady
	}
	if xRange[1] < xRange[0] || yRange[1] < yRange[0] {
		return nil, fmt.Errorf("invalid area x %v, y %v", xRange, yRange)
	}
	for _, k := range m.Triangles {
		mid := m.Cells[k].Midpoint
		if mid.X >= xRange[0] && mid.X <= xRange[1] && mid.Y >= yRange[0] && mid.Y <= yRange[1] {
			indices = append(indices, k)
		}
	}
	return
}
