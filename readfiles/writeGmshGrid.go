package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Grid is a node list with primitives indexing into it, suitable for writing as Gmsh 2.2
type Grid struct {
	Points [][2]float64
	Prims  []Primitive
}

/*
NewRectangleGrid triangulates the box [xMin,xMax]x[yMin,yMax] with nx by ny quads, each split into two triangles.
The four corners are emitted as point primitives and the perimeter as line primitives ahead of the triangles, the
way Gmsh orders elements of decreasing dimension.
*/
func NewRectangleGrid(nx, ny int, xMin, xMax, yMin, yMax float64) (g *Grid, err error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("grid must have at least one quad in each direction, have nx = %d, ny = %d", nx, ny)
	}
	if xMax <= xMin || yMax <= yMin {
		return nil, fmt.Errorf("invalid grid bounds: x [%g, %g], y [%g, %g]", xMin, xMax, yMin, yMax)
	}
	var (
		dx, dy = (xMax - xMin) / float64(nx), (yMax - yMin) / float64(ny)
		node   = func(i, j int) int { return j*(nx+1) + i }
	)
	g = &Grid{
		Points: make([][2]float64, (nx+1)*(ny+1)),
	}
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			g.Points[node(i, j)] = [2]float64{xMin + float64(i)*dx, yMin + float64(j)*dy}
		}
	}
	for _, c := range []int{node(0, 0), node(nx, 0), node(nx, ny), node(0, ny)} {
		g.addPrim(c)
	}
	// Perimeter, counter clockwise
	for i := 0; i < nx; i++ {
		g.addPrim(node(i, 0), node(i+1, 0))
	}
	for j := 0; j < ny; j++ {
		g.addPrim(node(nx, j), node(nx, j+1))
	}
	for i := nx; i > 0; i-- {
		g.addPrim(node(i, ny), node(i-1, ny))
	}
	for j := ny; j > 0; j-- {
		g.addPrim(node(0, j), node(0, j-1))
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b, c, d := node(i, j), node(i+1, j), node(i+1, j+1), node(i, j+1)
			g.addPrim(a, b, d)
			g.addPrim(b, c, d)
		}
	}
	return
}

func (g *Grid) addPrim(nodes ...int) {
	p := Primitive{
		Tag:    len(nodes),
		Nodes:  nodes,
		Points: make([][2]float64, len(nodes)),
	}
	for i, n := range nodes {
		p.Points[i] = g.Points[n]
	}
	g.Prims = append(g.Prims, p)
}

// WriteGmsh writes the grid in Gmsh 2.2 ASCII format, node ids are one based
func (g *Grid) WriteGmsh(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")
	fmt.Fprintf(bw, "$Nodes\n%d\n", len(g.Points))
	for i, pt := range g.Points {
		fmt.Fprintf(bw, "%d %s %s 0\n", i+1,
			strconv.FormatFloat(pt[0], 'g', -1, 64), strconv.FormatFloat(pt[1], 'g', -1, 64))
	}
	fmt.Fprintf(bw, "$EndNodes\n")
	fmt.Fprintf(bw, "$Elements\n%d\n", len(g.Prims))
	for i, p := range g.Prims {
		elemType, ok := GmshElementType[p.Tag]
		if !ok {
			return fmt.Errorf("primitive %d has tag %d with no Gmsh element type", i, p.Tag)
		}
		// Two tags: physical and elementary entity, both set to the primitive tag
		fmt.Fprintf(bw, "%d %d 2 %d %d", i+1, elemType, p.Tag, p.Tag)
		for _, n := range p.Nodes {
			fmt.Fprintf(bw, " %d", n+1)
		}
		fmt.Fprintf(bw, "\n")
	}
	fmt.Fprintf(bw, "$EndElements\n")
	return bw.Flush()
}

// WriteGmshFile writes the grid to filename
func (g *Grid) WriteGmshFile(filename string) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(filename); err != nil {
		return fmt.Errorf("unable to create mesh file %s: %w", filename, err)
	}
	if err = g.WriteGmsh(file); err != nil {
		file.Close()
		return fmt.Errorf("unable to write mesh file %s: %w", filename, err)
	}
	return file.Close()
}
