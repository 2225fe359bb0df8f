package plotting

import "github.com/notargets/oilspill/mesh"

type Plotter interface {
	Plot(cells []mesh.Cell, time float64, area []int, dir string) error
}

// Plotters sends every frame to each plotter in turn, stopping at the first error
type Plotters []Plotter

func (ps Plotters) Plot(cells []mesh.Cell, time float64, area []int, dir string) (err error) {
	for _, p := range ps {
		if err = p.Plot(cells, time, area, dir); err != nil {
			return
		}
	}
	return
}
