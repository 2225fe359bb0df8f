package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// CellType is the geometric variant of a cell
type CellType uint8

const (
	Vertex CellType = iota + 1
	Line
	Triangle
)

var cellTypeNames = map[CellType]string{
	Vertex:   "Vertex",
	Line:     "Line",
	Triangle: "Triangle",
}

func (ct CellType) String() string {
	if name, ok := cellTypeNames[ct]; ok {
		return name
	}
	return fmt.Sprintf("CellType(%d)", ct)
}

// NumVertices is the number of points defining the variant
func (ct CellType) NumVertices() int {
	switch ct {
	case Vertex:
		return 1
	case Line:
		return 2
	case Triangle:
		return 3
	}
	return 0
}

// Transports is true for variants that carry an area and exchange oil with neighbors
func (ct CellType) Transports() bool {
	return ct == Triangle
}

// Face is the geometry shared by a cell and one of its neighbors, seen from the owning cell (A)
type Face struct {
	Length   float64 // Length of the shared edge
	Distance float64 // Distance between the two cell midpoints
	AreaA    float64 // Area of the owning cell
	AreaB    float64 // Area of the neighbor
	Normal   r2.Vec  // Unit normal of the shared edge, pointing out of the owning cell
}

// Reverse is the same face seen from the neighbor
func (f Face) Reverse() Face {
	return Face{
		Length:   f.Length,
		Distance: f.Distance,
		AreaA:    f.AreaB,
		AreaB:    f.AreaA,
		Normal:   r2.Scale(-1, f.Normal),
	}
}

type Neighbor struct {
	Index int // Index of the neighbor within the mesh
	Face  Face
}

/*
Cell is one primitive of the mesh. Area, Midpoint and Neighbors are only populated for transport capable cells, after
the mesh geometry is calculated. OilChange is only non zero between the compute and commit phases of a step.
*/
type Cell struct {
	Index     int
	Type      CellType
	Nodes     []int
	Vertices  []r2.Vec
	Area      float64
	Midpoint  r2.Vec
	Neighbors []Neighbor
	OilAmount float64
	OilChange float64
}

// Commit applies the pending change and clears it
func (c *Cell) Commit() {
	c.OilAmount += c.OilChange
	c.OilChange = 0
}

// HasNeighbor reports whether index is among the cell's neighbors
func (c *Cell) HasNeighbor(index int) bool {
	for _, nb := range c.Neighbors {
		if nb.Index == index {
			return true
		}
	}
	return false
}

func newCell(ct CellType, index int, nodes []int, points []r2.Vec) (c Cell, err error) {
	if len(points) != ct.NumVertices() {
		err = fmt.Errorf("cell %d: a %s needs %d vertices, have %d", index, ct, ct.NumVertices(), len(points))
		return
	}
	if len(nodes) != len(points) {
		err = fmt.Errorf("cell %d: have %d node ids for %d vertices", index, len(nodes), len(points))
		return
	}
	c = Cell{
		Index:    index,
		Type:     ct,
		Nodes:    append([]int(nil), nodes...),
		Vertices: append([]r2.Vec(nil), points...),
	}
	return
}

func NewVertex(index int, nodes []int, points []r2.Vec) (Cell, error) {
	return newCell(Vertex, index, nodes, points)
}

func NewLine(index int, nodes []int, points []r2.Vec) (Cell, error) {
	return newCell(Line, index, nodes, points)
}

func NewTriangle(index int, nodes []int, points []r2.Vec) (Cell, error) {
	return newCell(Triangle, index, nodes, points)
}
