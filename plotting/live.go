package plotting

import (
	"math"

	"github.com/notargets/avs/chart2d"
	"github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"

	"github.com/notargets/oilspill/mesh"
)

/*
LivePlotter draws the oil field in an OpenGL window while the run progresses. Each triangle gets its own three
vertices in the plot mesh, so the per cell amount shades the triangle flat.
*/
type LivePlotter struct {
	Width, Height int
	FMin, FMax    float64
	chart         *chart2d.Chart2D
	gm            geometry.TriMesh
	cells         []int
}

func NewLivePlotter(width, height int) *LivePlotter {
	return &LivePlotter{
		Width:  width,
		Height: height,
	}
}

// NewPlotMesh builds the flat shaded plot mesh of the transport cells and the cell index of each plot triangle
func NewPlotMesh(cells []mesh.Cell) (gm geometry.TriMesh, index []int) {
	var (
		xy    []float32
		verts [][3]int64
	)
	for _, c := range cells {
		if !c.Type.Transports() {
			continue
		}
		base := int64(len(xy) / 2)
		for _, v := range c.Vertices {
			xy = append(xy, float32(v.X), float32(v.Y))
		}
		verts = append(verts, [3]int64{base, base + 1, base + 2})
		index = append(index, c.Index)
	}
	gm = geometry.NewTriMesh(xy, verts)
	return
}

func (lp *LivePlotter) Plot(cells []mesh.Cell, time float64, area []int, dir string) (err error) {
	if lp.chart == nil {
		lp.gm, lp.cells = NewPlotMesh(cells)
		xMin, xMax, yMin, yMax := boundingBox(lp.gm.XY)
		lp.chart = chart2d.NewChart2D(xMin, xMax, yMin, yMax,
			lp.Width, lp.Height, utils2.WHITE, utils2.BLACK)
		if lp.FMax <= lp.FMin {
			lp.FMin, lp.FMax = fieldRange(cells)
		}
		lp.chart.AddTriMesh(lp.gm)
		if line := areaOutline(cells, area); len(line) != 0 {
			lp.chart.AddLine(line, utils2.RED)
		}
	}
	field := make([]float32, len(lp.gm.XY)/2)
	for i, k := range lp.cells {
		for n := 0; n < 3; n++ {
			field[3*i+n] = float32(cells[k].OilAmount)
		}
	}
	vs := geometry.VertexScalar{
		TMesh:       &lp.gm,
		FieldValues: field,
	}
	lp.chart.AddShadedVertexScalar(&vs, float32(lp.FMin), float32(lp.FMax))
	return
}

func boundingBox(xy []float32) (xMin, xMax, yMin, yMax float32) {
	xMin, xMax = float32(math.MaxFloat32), -float32(math.MaxFloat32)
	yMin, yMax = float32(math.MaxFloat32), -float32(math.MaxFloat32)
	for i := 0; i < len(xy)/2; i++ {
		x, y := xy[2*i], xy[2*i+1]
		xMin, xMax = min(xMin, x), max(xMax, x)
		yMin, yMax = min(yMin, y), max(yMax, y)
	}
	return
}

// areaOutline lists the edges of the area cells as line segments x1,y1,x2,y2
func areaOutline(cells []mesh.Cell, area []int) (line []float32) {
	for _, k := range area {
		verts := cells[k].Vertices
		for i := range verts {
			a, b := verts[i], verts[(i+1)%len(verts)]
			line = append(line, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y))
		}
	}
	return
}
