package plotting

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/oilspill/mesh"
	"github.com/notargets/oilspill/readfiles"
)

func newBox(t *testing.T) (m *mesh.Mesh) {
	g, err := readfiles.NewRectangleGrid(3, 2, 0, 1.5, 0, 1)
	require.NoError(t, err)
	m, err = mesh.NewMeshFromPrimitives(g.Prims, mesh.DefaultCellFactory())
	require.NoError(t, err)
	require.NoError(t, m.CalculateGeometry())
	for i, k := range m.Triangles {
		m.Cells[k].OilAmount = float64(i)
	}
	return
}

func TestColorScale(t *testing.T) {
	assert.Equal(t, color.RGBA{B: 128, A: 255}, ColorScale(0, 0, 1))
	assert.Equal(t, color.RGBA{R: 200, A: 255}, ColorScale(1, 0, 1))
	// Values outside the range are clamped
	assert.Equal(t, ColorScale(0, 0, 1), ColorScale(-5, 0, 1))
	assert.Equal(t, ColorScale(1, 0, 1), ColorScale(7, 0, 1))
	// A degenerate range maps to the low end
	assert.Equal(t, ColorScale(0, 0, 1), ColorScale(3, 2, 2))
}

func TestPNGPlotter(t *testing.T) {
	var (
		m   = newBox(t)
		dir = t.TempDir()
	)
	area, err := m.CellsWithinArea([2]float64{0, 0.5}, [2]float64{0, 0.5})
	require.NoError(t, err)
	for _, fast := range []bool{false, true} {
		p := NewPNGPlotter(320, 240, fast)
		require.NoError(t, p.Plot(m.Cells, 0, area, dir))
		require.NoError(t, p.Plot(m.Cells, 0.5, area, dir))
		assert.Equal(t, 2, p.Frame)
		assert.Equal(t, 0., p.FMin)
		assert.Equal(t, float64(len(m.Triangles)-1), p.FMax)
	}
	file, err := os.Open(filepath.Join(dir, FrameName(1)))
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
	// Corner pixels lie in the margin
	r, g, b, _ := img.At(1, img.Bounds().Dy()-2).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})

	assert.Error(t, NewPNGPlotter(32, 32, true).Plot(m.Cells, 0, nil, filepath.Join(dir, "missing")))
}

func TestMJPEGAssembler(t *testing.T) {
	var (
		m      = newBox(t)
		dir    = t.TempDir()
		images = filepath.Join(dir, "images")
	)
	require.NoError(t, os.MkdirAll(images, 0755))
	a := NewMJPEGAssembler(5)
	assert.Error(t, a.Assemble(images, 2, 4))

	p := NewPNGPlotter(160, 120, true)
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Plot(m.Cells, float64(i), nil, images))
	}
	require.NoError(t, a.Assemble(images, 2, 4))
	fi, err := os.Stat(filepath.Join(dir, "oil.avi"))
	require.NoError(t, err)
	assert.True(t, fi.Size() > 0)
}

func TestSeriesChart(t *testing.T) {
	var (
		sc       = NewSeriesChart()
		fileName = filepath.Join(t.TempDir(), "oil_area_time.png")
	)
	require.NoError(t, sc.Chart([]float64{0.1, 0.2, 0.3}, []float64{0, 0.25, 0.5}, fileName))
	file, err := os.Open(fileName)
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, sc.Width, img.Bounds().Dx())

	assert.Error(t, sc.Chart([]float64{0.1}, []float64{0}, fileName))
	assert.Error(t, sc.Chart([]float64{0.1, 0.2}, []float64{0}, fileName))
}

func TestNewPlotMesh(t *testing.T) {
	m := newBox(t)
	gm, index := NewPlotMesh(m.Cells)
	assert.Equal(t, m.Triangles, index)
	assert.Equal(t, 3*2*len(m.Triangles), len(gm.XY))
	assert.Equal(t, len(m.Triangles), len(gm.TriVerts))
	xMin, xMax, yMin, yMax := boundingBox(gm.XY)
	assert.Equal(t, [4]float32{0, 1.5, 0, 1}, [4]float32{xMin, xMax, yMin, yMax})
	assert.Equal(t, 4*2*3, len(areaOutline(m.Cells, m.Triangles[:2])))
}
