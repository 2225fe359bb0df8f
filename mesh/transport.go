package mesh

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

/*
FluxKernel returns the amount of oil per unit time leaving cell A into neighbor B across face f, where f is seen from A.
Any kernel used with the mesh must satisfy:
  - kernel(uA, uB, f) == -kernel(uB, uA, f.Reverse())
  - kernel(u, u, f) == 0
A kernel is also responsible for any area scaling of the exchange. f.Normal points out of A and is available to
kernels with a preferred direction, such as transport by a current.
*/
type FluxKernel func(uA, uB float64, f Face) float64

type FluxType uint8

const (
	FLUX_Diffusion FluxType = iota
	FLUX_Proportional
)

var (
	FluxNames = map[string]FluxType{
		"diffusion":    FLUX_Diffusion,
		"proportional": FLUX_Proportional,
	}
	FluxPrintNames = []string{"Diffusion", "Proportional"}
)

func (ft FluxType) Print() (txt string) {
	txt = FluxPrintNames[ft]
	return
}

func NewFluxType(label string) (ft FluxType, err error) {
	var (
		ok bool
	)
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return FLUX_Diffusion, nil
	}
	if ft, ok = FluxNames[label]; !ok {
		err = fmt.Errorf("unable to use flux named %s", label)
	}
	return
}

// Kernel returns the flux function of this type using coefficient as its rate or diffusivity
func (ft FluxType) Kernel(coefficient float64) FluxKernel {
	switch ft {
	case FLUX_Proportional:
		return ProportionalKernel(coefficient)
	default:
		return DiffusionKernel(coefficient)
	}
}

// ProportionalKernel exchanges rate times the difference in oil, independent of geometry
func ProportionalKernel(rate float64) FluxKernel {
	return func(uA, uB float64, f Face) float64 {
		return rate * (uA - uB)
	}
}

/*
DiffusionKernel is the two point finite volume diffusion flux, weighted by edge length over midpoint distance and
normalized by the mean area of the two cells. The mean is symmetric in the two areas so the exchange is conservative.
*/
func DiffusionKernel(diffusivity float64) FluxKernel {
	return func(uA, uB float64, f Face) float64 {
		meanArea := 0.5 * (f.AreaA + f.AreaB)
		return diffusivity * f.Length / (f.Distance * meanArea) * (uA - uB)
	}
}

/*
CalculateChange stores in the cell's OilChange the net exchange with its neighbors over dt. Only the cell's own
OilChange is written; OilAmount of the cell and its neighbors is read as it stands, so all cells must be processed
before any of them is committed.
*/
func (m *Mesh) CalculateChange(k int, dt float64) (err error) {
	if !m.ready {
		return ErrGeometryNotReady
	}
	if k < 0 || k >= len(m.Cells) {
		return fmt.Errorf("cell index %d out of range [0,%d)", k, len(m.Cells))
	}
	c := &m.Cells[k]
	if !c.Type.Transports() {
		return
	}
	var (
		flux float64
	)
	for _, nb := range c.Neighbors {
		flux += m.Kernel(c.OilAmount, m.Cells[nb.Index].OilAmount, nb.Face)
	}
	c.OilChange = -dt * flux
	return
}

/*
MaxStableTimeStep is the largest step for which the explicit update keeps every cell a convex combination of itself
and its neighbors, assuming a kernel linear in the difference of amounts.
*/
func (m *Mesh) MaxStableTimeStep() (dtMax float64) {
	dtMax = math.Inf(1)
	for _, k := range m.Triangles {
		var sum float64
		for _, nb := range m.Cells[k].Neighbors {
			sum += m.Kernel(1, 0, nb.Face)
		}
		if sum > 0 {
			dtMax = math.Min(dtMax, 1/sum)
		}
	}
	return
}

// TotalOil is the sum of OilAmount over the transport cells
func (m *Mesh) TotalOil() float64 {
	return m.OilInCells(m.Triangles)
}

// OilInCells is the sum of OilAmount over the listed cells
func (m *Mesh) OilInCells(indices []int) float64 {
	amounts := make([]float64, len(indices))
	for i, k := range indices {
		amounts[i] = m.Cells[k].OilAmount
	}
	return floats.Sum(amounts)
}

// Amounts returns a copy of OilAmount for every cell, indexed by cell
func (m *Mesh) Amounts() (u []float64) {
	u = make([]float64, len(m.Cells))
	for i := range m.Cells {
		u[i] = m.Cells[i].OilAmount
	}
	return
}
