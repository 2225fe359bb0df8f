package mesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/notargets/oilspill/readfiles"
	"github.com/notargets/oilspill/types"
)

// AreaTolerance is the smallest triangle area, relative to its longest edge squared, accepted as non degenerate
const AreaTolerance = 1.e-12

var ErrGeometryNotReady = errors.New("mesh geometry has not been calculated")

// DegenerateCellError reports a triangle whose vertices are collinear or coincident
type DegenerateCellError struct {
	Index int
	Area  float64
	Node  int // Node repeated within the cell, -1 when the nodes are distinct
}

func (e *DegenerateCellError) Error() string {
	if e.Node >= 0 {
		return fmt.Sprintf("cell %d is degenerate, node %d is repeated", e.Index, e.Node)
	}
	return fmt.Sprintf("cell %d is degenerate, area = %g", e.Index, e.Area)
}

/*
Mesh owns every cell in one contiguous slice, addressed by the cell index. Cross references between cells (neighbors,
restart entries, region queries) are indices into Cells.
*/
type Mesh struct {
	File      string
	Cells     []Cell
	Triangles []int      // Indices of the transport capable cells, in mesh order
	Kernel    FluxKernel // Flux between neighboring cells, see transport.go
	edges     map[types.EdgeKey][]int
	ready     bool
}

// NewMesh reads a Gmsh file and builds one cell per primitive, in file order
func NewMesh(path string, factory *CellFactory) (m *Mesh, err error) {
	var (
		prims []readfiles.Primitive
	)
	if prims, err = readfiles.ReadGmsh(path, false); err != nil {
		return nil, err
	}
	if m, err = NewMeshFromPrimitives(prims, factory); err != nil {
		return nil, fmt.Errorf("unable to build mesh from %s: %w", path, err)
	}
	m.File = path
	return
}

func NewMeshFromPrimitives(prims []readfiles.Primitive, factory *CellFactory) (m *Mesh, err error) {
	m = &Mesh{
		Cells:  make([]Cell, len(prims)),
		Kernel: DiffusionKernel(1),
	}
	for i, p := range prims {
		if m.Cells[i], err = factory.Create(p.Tag, i, p); err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
		if m.Cells[i].Type.Transports() {
			m.Triangles = append(m.Triangles, i)
		}
	}
	return
}

// GeometryReady is true once CalculateGeometry has completed for every transport cell
func (m *Mesh) GeometryReady() bool { return m.ready }

// buildEdgeIndex maps every edge of every transport cell to the cells using it
func (m *Mesh) buildEdgeIndex() {
	m.edges = make(map[types.EdgeKey][]int, 3*len(m.Triangles)/2+1)
	for _, k := range m.Triangles {
		for _, key := range types.PolygonEdges(m.Cells[k].Nodes) {
			m.edges[key] = append(m.edges[key], k)
		}
	}
}

// Edges returns the keys of every edge of the transport cells, in ascending order
func (m *Mesh) Edges() (keys types.EdgeKeySlice) {
	if m.edges == nil {
		m.buildEdgeIndex()
	}
	keys = make(types.EdgeKeySlice, 0, len(m.edges))
	for key := range m.edges {
		keys = append(keys, key)
	}
	keys.Sort()
	return
}

/*
Calculate computes area, midpoint and neighbors of a transport capable cell. Other variants carry no area and are
left untouched. Neighbors are recomputed from the edge index on every call, so repeated calls give the same result.
*/
func (m *Mesh) Calculate(k int) (err error) {
	if k < 0 || k >= len(m.Cells) {
		return fmt.Errorf("cell index %d out of range [0,%d)", k, len(m.Cells))
	}
	c := &m.Cells[k]
	if !c.Type.Transports() {
		return
	}
	if m.edges == nil {
		m.buildEdgeIndex()
	}
	for _, key := range types.PolygonEdges(c.Nodes) {
		if key.IsDegenerate() {
			return &DegenerateCellError{Index: k, Node: key.GetVertices(false)[0]}
		}
	}
	if c.Area, err = cellArea(k, c.Vertices); err != nil {
		return
	}
	c.Midpoint = Centroid(c.Vertices)
	var (
		neighbors []Neighbor
		n         = len(c.Nodes)
	)
	for i, key := range types.PolygonEdges(c.Nodes) {
		for _, nb := range m.edges[key] {
			if nb == k || containsIndex(neighbors, nb) {
				continue
			}
			var face Face
			edge := [2]r2.Vec{c.Vertices[i], c.Vertices[(i+1)%n]}
			if face, err = m.newFace(c, &m.Cells[nb], edge); err != nil {
				return
			}
			neighbors = append(neighbors, Neighbor{Index: nb, Face: face})
		}
	}
	c.Neighbors = neighbors
	return
}

// CalculateGeometry runs Calculate on every transport cell
func (m *Mesh) CalculateGeometry() (err error) {
	m.ready = false
	m.buildEdgeIndex()
	for _, k := range m.Triangles {
		if err = m.Calculate(k); err != nil {
			return
		}
	}
	m.ready = true
	return
}

func (m *Mesh) newFace(a, b *Cell, edge [2]r2.Vec) (f Face, err error) {
	var (
		midB  = Centroid(b.Vertices)
		areaB = math.Abs(SignedArea(b.Vertices))
		t     = r2.Sub(edge[1], edge[0])
	)
	f = Face{
		Length:   r2.Norm(t),
		Distance: r2.Norm(r2.Sub(midB, a.Midpoint)),
		AreaA:    a.Area,
		AreaB:    areaB,
	}
	if f.Distance == 0 {
		err = fmt.Errorf("cells %d and %d have coincident midpoints", a.Index, b.Index)
		return
	}
	// Rotate the edge tangent and orient it away from the owning cell
	f.Normal = r2.Scale(1/f.Length, r2.Vec{X: t.Y, Y: -t.X})
	edgeMid := r2.Scale(0.5, r2.Add(edge[0], edge[1]))
	if r2.Dot(f.Normal, r2.Sub(edgeMid, a.Midpoint)) < 0 {
		f.Normal = r2.Scale(-1, f.Normal)
	}
	return
}

func containsIndex(neighbors []Neighbor, k int) bool {
	for _, nb := range neighbors {
		if nb.Index == k {
			return true
		}
	}
	return false
}

func cellArea(k int, verts []r2.Vec) (area float64, err error) {
	var (
		maxLen2 float64
		n       = len(verts)
	)
	area = math.Abs(SignedArea(verts))
	for i := 0; i < n; i++ {
		maxLen2 = math.Max(maxLen2, r2.Norm2(r2.Sub(verts[(i+1)%n], verts[i])))
	}
	if area <= AreaTolerance*maxLen2 || maxLen2 == 0 {
		err = &DegenerateCellError{Index: k, Area: area, Node: -1}
	}
	return
}

// SignedArea is the shoelace area of the polygon, positive for counter clockwise ordering
func SignedArea(verts []r2.Vec) (area float64) {
	var (
		n = len(verts)
	)
	for i := 0; i < n; i++ {
		area += r2.Cross(verts[i], verts[(i+1)%n])
	}
	return 0.5 * area
}

// Centroid is the mean of the vertex coordinates
func Centroid(verts []r2.Vec) (mid r2.Vec) {
	if len(verts) == 0 {
		return
	}
	for _, v := range verts {
		mid = r2.Add(mid, v)
	}
	return r2.Scale(1/float64(len(verts)), mid)
}

// ContainsPoint reports whether p lies inside or on the boundary of the triangle
func ContainsPoint(verts []r2.Vec, p r2.Vec) bool {
	if len(verts) != 3 {
		return false
	}
	var (
		d1 = r2.Cross(r2.Sub(verts[1], verts[0]), r2.Sub(p, verts[0]))
		d2 = r2.Cross(r2.Sub(verts[2], verts[1]), r2.Sub(p, verts[1]))
		d3 = r2.Cross(r2.Sub(verts[0], verts[2]), r2.Sub(p, verts[2]))
	)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	typeCounts := make(map[CellType]int)
	for _, c := range m.Cells {
		typeCounts[c.Type]++
	}
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  File: %s\n", m.File)
	fmt.Printf("  Cells: %d\n", len(m.Cells))
	for _, ct := range []CellType{Vertex, Line, Triangle} {
		fmt.Printf("    %s: %d\n", ct, typeCounts[ct])
	}
	if !m.ready {
		return
	}
	var (
		edges         = m.Edges()
		boundaryEdges int
		area          float64
		minArea       = math.MaxFloat64
	)
	for _, key := range edges {
		if len(m.edges[key]) == 1 {
			boundaryEdges++
		}
	}
	for _, k := range m.Triangles {
		area += m.Cells[k].Area
		minArea = math.Min(minArea, m.Cells[k].Area)
	}
	fmt.Printf("  Edges: %d, boundary edges: %d\n", len(edges), boundaryEdges)
	fmt.Printf("  Total area: %8.5f, smallest cell area: %11.4e\n", area, minArea)
}
