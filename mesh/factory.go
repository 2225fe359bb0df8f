package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/notargets/oilspill/readfiles"
)

// Constructor builds a cell of one variant from its node ids and coordinates
type Constructor func(index int, nodes []int, points []r2.Vec) (Cell, error)

// UnknownTagError is returned when a primitive tag has no registered constructor
type UnknownTagError struct {
	Tag int
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("no cell constructor registered for primitive tag %d", e.Tag)
}

/*
CellFactory maps primitive type tags to cell constructors. It is populated before a mesh is built and passed to the
mesh constructor; nothing retains it afterward.
*/
type CellFactory struct {
	constructors map[int]Constructor
}

func NewCellFactory() *CellFactory {
	return &CellFactory{
		constructors: make(map[int]Constructor),
	}
}

// DefaultCellFactory registers the tags produced by the Gmsh reader: 1 Vertex, 2 Line, 3 Triangle
func DefaultCellFactory() (f *CellFactory) {
	f = NewCellFactory()
	f.Register(1, NewVertex)
	f.Register(2, NewLine)
	f.Register(3, NewTriangle)
	return
}

// Register associates tag with ctor, replacing any earlier registration
func (f *CellFactory) Register(tag int, ctor Constructor) {
	f.constructors[tag] = ctor
}

// Create builds the cell at index from a primitive
func (f *CellFactory) Create(tag, index int, prim readfiles.Primitive) (c Cell, err error) {
	ctor, ok := f.constructors[tag]
	if !ok {
		return c, &UnknownTagError{Tag: tag}
	}
	points := make([]r2.Vec, len(prim.Points))
	for i, pt := range prim.Points {
		points[i] = r2.Vec{X: pt[0], Y: pt[1]}
	}
	return ctor(index, prim.Nodes, points)
}
