package mesh

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/notargets/oilspill/readfiles"
)

var stripNodes = [][2]float64{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}}

func prim(nodes ...int) (p readfiles.Primitive) {
	p = readfiles.Primitive{Tag: len(nodes), Nodes: nodes}
	for _, n := range nodes {
		p.Points = append(p.Points, stripNodes[n])
	}
	return
}

// Four unit right triangles in a 2x1 strip, preceded by a corner point and a boundary line
func stripPrims() []readfiles.Primitive {
	return []readfiles.Primitive{
		prim(0),
		prim(0, 1),
		prim(0, 1, 3), // T0, cell 2
		prim(1, 4, 3), // T1, cell 3
		prim(1, 2, 4), // T2, cell 4
		prim(2, 5, 4), // T3, cell 5
	}
}

func newStrip(t *testing.T) (m *Mesh) {
	var err error
	m, err = NewMeshFromPrimitives(stripPrims(), DefaultCellFactory())
	require.NoError(t, err)
	require.NoError(t, m.CalculateGeometry())
	return
}

func step(t *testing.T, m *Mesh, dt float64) {
	for k := range m.Cells {
		require.NoError(t, m.CalculateChange(k, dt))
	}
	for k := range m.Cells {
		m.Cells[k].Commit()
	}
}

func TestMeshGeometry(t *testing.T) {
	m := newStrip(t)
	assert.Equal(t, 6, len(m.Cells))
	assert.Equal(t, []int{2, 3, 4, 5}, m.Triangles)
	{ // Non transport cells carry no geometry
		assert.Equal(t, Vertex, m.Cells[0].Type)
		assert.Equal(t, Line, m.Cells[1].Type)
		for _, k := range []int{0, 1} {
			assert.Equal(t, 0., m.Cells[k].Area)
			assert.Nil(t, m.Cells[k].Neighbors)
		}
	}
	{ // Areas and midpoints
		mids := []r2.Vec{{X: 1. / 3, Y: 1. / 3}, {X: 2. / 3, Y: 2. / 3}, {X: 4. / 3, Y: 1. / 3}, {X: 5. / 3, Y: 2. / 3}}
		for i, k := range m.Triangles {
			assert.InDelta(t, 0.5, m.Cells[k].Area, 1.e-14)
			assert.InDelta(t, mids[i].X, m.Cells[k].Midpoint.X, 1.e-14)
			assert.InDelta(t, mids[i].Y, m.Cells[k].Midpoint.Y, 1.e-14)
		}
	}
	{ // Neighbors share an edge, and the relation is symmetric
		expected := map[int][]int{2: {3}, 3: {2, 4}, 4: {3, 5}, 5: {4}}
		for k, nbs := range expected {
			assert.Equal(t, len(nbs), len(m.Cells[k].Neighbors))
			for _, nb := range nbs {
				assert.True(t, m.Cells[k].HasNeighbor(nb))
				assert.True(t, m.Cells[nb].HasNeighbor(k))
			}
		}
	}
	{ // Face geometry between T0 and T1
		f := m.Cells[2].Neighbors[0].Face
		assert.InDelta(t, math.Sqrt2, f.Length, 1.e-14)
		assert.InDelta(t, math.Sqrt2/3, f.Distance, 1.e-14)
		assert.InDelta(t, 1/math.Sqrt2, f.Normal.X, 1.e-14)
		assert.InDelta(t, 1/math.Sqrt2, f.Normal.Y, 1.e-14)
		// T1 lists T2 across edge (1,4) first, then T0 across edge (3,1)
		assert.Equal(t, 4, m.Cells[3].Neighbors[0].Index)
		assert.Equal(t, 2, m.Cells[3].Neighbors[1].Index)
		r := m.Cells[3].Neighbors[1].Face
		assert.InDelta(t, -f.Normal.X, r.Normal.X, 1.e-14)
		assert.InDelta(t, f.Length, r.Length, 1.e-14)
	}
	{ // Geometry is idempotent
		before := make([]Cell, len(m.Cells))
		for i, c := range m.Cells {
			before[i] = c
			before[i].Neighbors = append([]Neighbor(nil), c.Neighbors...)
		}
		require.NoError(t, m.CalculateGeometry())
		require.NoError(t, m.CalculateGeometry())
		assert.Equal(t, before, m.Cells)
		require.NoError(t, m.Calculate(3))
		assert.Equal(t, before[3], m.Cells[3])
	}
	{ // Out of range
		assert.Error(t, m.Calculate(-1))
		assert.Error(t, m.Calculate(6))
	}
	assert.NoError(t, m.CheckConnectivity())
	{ // 9 distinct edges, 3 of them shared
		edges := m.Edges()
		assert.Equal(t, 9, len(edges))
		for i := 1; i < len(edges); i++ {
			assert.True(t, edges[i-1] < edges[i])
		}
	}
	m.PrintStatistics()
}

func TestDegenerateCell(t *testing.T) {
	prims := stripPrims()
	prims = append(prims, readfiles.Primitive{
		Tag:    3,
		Nodes:  []int{0, 1, 2},
		Points: [][2]float64{{0, 0}, {1, 0}, {2, 0}},
	})
	m, err := NewMeshFromPrimitives(prims, DefaultCellFactory())
	require.NoError(t, err)
	err = m.CalculateGeometry()
	var degenerate *DegenerateCellError
	require.True(t, errors.As(err, &degenerate))
	assert.Equal(t, 6, degenerate.Index)
	assert.False(t, m.GeometryReady())
	assert.ErrorIs(t, m.CalculateChange(2, 0.1), ErrGeometryNotReady)
	assert.Equal(t, -1, degenerate.Node)

	// A repeated node is reported before the area check
	prims[len(prims)-1] = readfiles.Primitive{
		Tag:    3,
		Nodes:  []int{0, 7, 7},
		Points: [][2]float64{{0, 0}, {1, 0}, {1, 0}},
	}
	m, err = NewMeshFromPrimitives(prims, DefaultCellFactory())
	require.NoError(t, err)
	err = m.CalculateGeometry()
	require.True(t, errors.As(err, &degenerate))
	assert.Equal(t, 6, degenerate.Index)
	assert.Equal(t, 7, degenerate.Node)
}

func TestCellFactory(t *testing.T) {
	{ // Unknown tag
		_, err := NewMeshFromPrimitives([]readfiles.Primitive{{Tag: 7}}, DefaultCellFactory())
		var unknown *UnknownTagError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, 7, unknown.Tag)
	}
	{ // Vertex count must match the variant
		f := NewCellFactory()
		f.Register(3, NewTriangle)
		_, err := f.Create(3, 0, readfiles.Primitive{Tag: 3, Nodes: []int{0, 1}, Points: [][2]float64{{0, 0}, {1, 0}}})
		assert.Error(t, err)
	}
	{ // Registration replaces an earlier constructor
		f := DefaultCellFactory()
		f.Register(2, NewVertex)
		_, err := f.Create(2, 0, prim(0, 1))
		assert.Error(t, err)
		c, err := f.Create(2, 4, prim(5))
		require.NoError(t, err)
		assert.Equal(t, Vertex, c.Type)
		assert.Equal(t, 4, c.Index)
	}
}

func TestTransport(t *testing.T) {
	{ // Antisymmetric exchange between a pair, nothing reaches cells without oil gradients
		m := newStrip(t)
		m.Kernel = ProportionalKernel(1)
		m.Cells[2].OilAmount = 1
		for k := range m.Cells {
			require.NoError(t, m.CalculateChange(k, 0.1))
		}
		assert.InDelta(t, -0.1, m.Cells[2].OilChange, 1.e-15)
		assert.InDelta(t, 0.1, m.Cells[3].OilChange, 1.e-15)
		assert.Equal(t, 0., m.Cells[4].OilChange)
		assert.Equal(t, 0., m.Cells[0].OilChange)
	}
	{ // 100 on the first cell of the strip, one step
		m := newStrip(t)
		m.Kernel = ProportionalKernel(0.5)
		m.Cells[2].OilAmount = 100
		step(t, m, 0.1)
		assert.True(t, m.Cells[2].OilAmount < 100)
		assert.True(t, m.Cells[3].OilAmount > 0)
		assert.Equal(t, 0., m.Cells[4].OilAmount)
		assert.Equal(t, 0., m.Cells[5].OilAmount)
		assert.InDelta(t, 100, m.TotalOil(), 1.e-12)
		for _, c := range m.Cells {
			assert.Equal(t, 0., c.OilChange)
		}
	}
	{ // Total oil is conserved for both kernels
		for _, kernel := range []FluxKernel{ProportionalKernel(0.7), DiffusionKernel(0.01)} {
			m := newStrip(t)
			m.Kernel = kernel
			m.Cells[2].OilAmount = 3
			m.Cells[5].OilAmount = 1
			for n := 0; n < 50; n++ {
				step(t, m, 0.05)
			}
			assert.InDelta(t, 4, m.TotalOil(), 1.e-12)
			for _, k := range m.Triangles {
				assert.True(t, m.Cells[k].OilAmount > 0)
			}
		}
	}
	{ // Uniform oil stays uniform
		m := newStrip(t)
		for _, k := range m.Triangles {
			m.Cells[k].OilAmount = 2
		}
		step(t, m, 0.1)
		for _, k := range m.Triangles {
			assert.Equal(t, 2., m.Cells[k].OilAmount)
		}
	}
	{ // Processing order does not change the result
		m1, m2 := newStrip(t), newStrip(t)
		for i, k := range m1.Triangles {
			m1.Cells[k].OilAmount = float64(i * i)
			m2.Cells[k].OilAmount = float64(i * i)
		}
		order := rand.New(rand.NewSource(3)).Perm(len(m2.Cells))
		for k := range m1.Cells {
			require.NoError(t, m1.CalculateChange(k, 0.02))
		}
		for _, k := range order {
			require.NoError(t, m2.CalculateChange(k, 0.02))
		}
		for k := range m1.Cells {
			assert.Equal(t, m1.Cells[k].OilChange, m2.Cells[k].OilChange)
		}
	}
	{ // Diffusion coefficient on the T0,T1 face is L/(d*meanArea) = 6
		f := newStrip(t).Cells[2].Neighbors[0].Face
		assert.InDelta(t, 6, DiffusionKernel(1)(1, 0, f), 1.e-12)
		assert.InDelta(t, DiffusionKernel(1)(0.3, 0.8, f), -DiffusionKernel(1)(0.8, 0.3, f.Reverse()), 1.e-15)
	}
	{ // Stability bound
		m := newStrip(t)
		m.Kernel = ProportionalKernel(2)
		assert.InDelta(t, 0.25, m.MaxStableTimeStep(), 1.e-15)
		m.Kernel = DiffusionKernel(1)
		assert.InDelta(t, 1/(6+6/math.Sqrt(5)), m.MaxStableTimeStep(), 1.e-12)
	}
}

func TestFluxType(t *testing.T) {
	for label, expected := range map[string]FluxType{
		"":              FLUX_Diffusion,
		"Diffusion":     FLUX_Diffusion,
		" proportional": FLUX_Proportional,
	} {
		ft, err := NewFluxType(label)
		require.NoError(t, err)
		assert.Equal(t, expected, ft)
	}
	_, err := NewFluxType("upwind")
	assert.Error(t, err)
	assert.Equal(t, "Proportional", FLUX_Proportional.Print())
	assert.Equal(t, 3., FLUX_Proportional.Kernel(3)(1, 0, Face{}))
}

func TestInitialOilDistribution(t *testing.T) {
	m := newStrip(t)
	{ // Radius zero seeds the containing triangle
		require.NoError(t, m.InitialOilDistribution(StartPoint{Center: r2.Vec{X: 0.2, Y: 0.2}, Total: 2}))
		assert.Equal(t, []float64{0, 0, 2, 0, 0, 0}, m.Amounts())
	}
	{ // Cells within the radius share the total, all others are reset
		require.NoError(t, m.InitialOilDistribution(StartPoint{Center: r2.Vec{X: 0.5, Y: 0.5}, Radius: 0.8, Total: 2}))
		assert.InDelta(t, 1, m.Cells[2].OilAmount, 1.e-15)
		assert.InDelta(t, 1, m.Cells[3].OilAmount, 1.e-15)
		assert.Equal(t, 0., m.Cells[4].OilAmount)
		assert.InDelta(t, 2, m.TotalOil(), 1.e-15)
	}
	{ // Gaussian weights favor the nearest cell
		require.NoError(t, m.InitialOilDistribution(StartPoint{
			Center: r2.Vec{X: 1. / 3, Y: 1. / 3}, Radius: 0.8, Spread: 0.1, Total: 1}))
		assert.True(t, m.Cells[2].OilAmount > m.Cells[3].OilAmount)
		assert.InDelta(t, 1, m.TotalOil(), 1.e-15)
	}
	{ // Outside the mesh the nearest midpoint is seeded
		require.NoError(t, m.InitialOilDistribution(StartPoint{Center: r2.Vec{X: 10, Y: 10}, Radius: 0.1, Total: 1}))
		assert.Equal(t, 1., m.Cells[5].OilAmount)
	}
	assert.Error(t, m.InitialOilDistribution(StartPoint{Total: -1}))
}

func TestCellsWithinArea(t *testing.T) {
	m := newStrip(t)
	cells, err := m.CellsWithinArea([2]float64{0, 1}, [2]float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, cells)
	// Closed interval on the midpoint
	cells, err = m.CellsWithinArea([2]float64{4. / 3, 2}, [2]float64{0, 1. / 3})
	require.NoError(t, err)
	assert.Equal(t, []int{4}, cells)
	cells, err = m.CellsWithinArea([2]float64{5, 6}, [2]float64{0, 1})
	require.NoError(t, err)
	assert.Empty(t, cells)
	_, err = m.CellsWithinArea([2]float64{1, 0}, [2]float64{0, 1})
	assert.Error(t, err)
}

func TestNewMeshFromFile(t *testing.T) {
	g, err := readfiles.NewRectangleGrid(4, 3, 0, 1, 0, 0.5)
	require.NoError(t, err)
	fileName := t.TempDir() + "/box.msh"
	require.NoError(t, g.WriteGmshFile(fileName))
	m, err := NewMesh(fileName, DefaultCellFactory())
	require.NoError(t, err)
	require.NoError(t, m.CalculateGeometry())
	assert.Equal(t, 24, len(m.Triangles))
	var area float64
	for _, k := range m.Triangles {
		area += m.Cells[k].Area
	}
	assert.InDelta(t, 0.5, area, 1.e-12)
	assert.NoError(t, m.CheckConnectivity())
}
