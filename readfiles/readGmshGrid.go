package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Primitive is one geometric element read from a mesh file
type Primitive struct {
	Tag    int          // Primitive type tag: the number of nodes (1 point, 2 line, 3 triangle, 4 quad)
	Nodes  []int        // Zero based node indices, in file node order
	Points [][2]float64 // Coordinates of each node
}

// gmshPrimitiveTag maps Gmsh v2.2 first order element types to primitive tags
var gmshPrimitiveTag = map[int]int{
	15: 1, // 1-node point
	1:  2, // 2-node line
	2:  3, // 3-node triangle
	3:  4, // 4-node quadrangle
}

// GmshElementType is the inverse of gmshPrimitiveTag, used when writing
var GmshElementType = map[int]int{
	1: 15,
	2: 1,
	3: 2,
	4: 3,
}

type gmshNodes struct {
	index  map[int]int // Gmsh node id to zero based index
	coords [][2]float64
}

// ReadGmsh reads a Gmsh MSH file format version 2.2 (ASCII)
func ReadGmsh(filename string, verbose bool) (prims []Primitive, err error) {
	var (
		file *os.File
	)
	if verbose {
		fmt.Printf("Reading Gmsh file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open mesh file %s: %w", filename, err)
	}
	defer file.Close()
	if prims, err = ParseGmsh(file); err != nil {
		return nil, fmt.Errorf("unable to read mesh file %s: %w", filename, err)
	}
	if verbose {
		fmt.Printf("Read %d primitives\n", len(prims))
	}
	return
}

// ParseGmsh parses Gmsh 2.2 ASCII content, returning elements in file order
func ParseGmsh(r io.Reader) (prims []Primitive, err error) {
	var (
		scanner  = bufio.NewScanner(r)
		nodes    *gmshNodes
		elements [][]int
		elemTags []int
		version  string
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "$MeshFormat":
			if version, err = readMeshFormat(scanner); err != nil {
				return nil, err
			}
			if !strings.HasPrefix(version, "2.") {
				return nil, fmt.Errorf("unsupported Gmsh format version: %s, only 2.2 ASCII is read", version)
			}
		case "$Nodes":
			if nodes, err = readNodes(scanner); err != nil {
				return nil, err
			}
		case "$Elements":
			if elemTags, elements, err = readElements(scanner); err != nil {
				return nil, err
			}
		default:
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				// Skip sections we have no use for, e.g. $PhysicalNames, $NodeData
				if err = skipTo(scanner, "$End"+line[1:]); err != nil {
					return nil, err
				}
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if len(version) == 0 {
		return nil, fmt.Errorf("could not find $MeshFormat section")
	}
	if nodes == nil {
		return nil, fmt.Errorf("could not find $Nodes section")
	}
	prims = make([]Primitive, 0, len(elements))
	for i, elem := range elements {
		p := Primitive{
			Tag:    elemTags[i],
			Nodes:  make([]int, len(elem)),
			Points: make([][2]float64, len(elem)),
		}
		for j, id := range elem {
			ind, ok := nodes.index[id]
			if !ok {
				return nil, fmt.Errorf("element %d references unknown node %d", i, id)
			}
			p.Nodes[j] = ind
			p.Points[j] = nodes.coords[ind]
		}
		prims = append(prims, p)
	}
	return
}

func readMeshFormat(scanner *bufio.Scanner) (version string, err error) {
	if !scanner.Scan() {
		return "", fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return "", fmt.Errorf("invalid MeshFormat line")
	}
	version = parts[0]
	if parts[1] != "0" {
		return "", fmt.Errorf("binary Gmsh files are not supported")
	}
	err = skipTo(scanner, "$EndMeshFormat")
	return
}

func readNodes(scanner *bufio.Scanner) (nodes *gmshNodes, err error) {
	var (
		numNodes int
	)
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF in Nodes")
	}
	if numNodes, err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
		return nil, fmt.Errorf("invalid node count: %w", err)
	}
	nodes = &gmshNodes{
		index:  make(map[int]int, numNodes),
		coords: make([][2]float64, 0, numNodes),
	}
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF reading nodes")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		var (
			id   int
			x, y float64
		)
		if id, err = strconv.Atoi(parts[0]); err != nil {
			return nil, fmt.Errorf("invalid node id in line [%s]: %w", scanner.Text(), err)
		}
		if x, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return nil, fmt.Errorf("invalid x coordinate in line [%s]: %w", scanner.Text(), err)
		}
		if y, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return nil, fmt.Errorf("invalid y coordinate in line [%s]: %w", scanner.Text(), err)
		}
		if _, dup := nodes.index[id]; dup {
			return nil, fmt.Errorf("duplicate node id %d", id)
		}
		nodes.index[id] = len(nodes.coords)
		nodes.coords = append(nodes.coords, [2]float64{x, y})
	}
	err = skipTo(scanner, "$EndNodes")
	return
}

func readElements(scanner *bufio.Scanner) (tags []int, elements [][]int, err error) {
	var (
		numElements int
	)
	if !scanner.Scan() {
		return nil, nil, fmt.Errorf("unexpected EOF in Elements")
	}
	if numElements, err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
		return nil, nil, fmt.Errorf("invalid element count: %w", err)
	}
	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return nil, nil, fmt.Errorf("unexpected EOF reading elements")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			return nil, nil, fmt.Errorf("invalid element line: %s", scanner.Text())
		}
		var elemType, numTags int
		if elemType, err = strconv.Atoi(parts[1]); err != nil {
			return nil, nil, fmt.Errorf("element %s: invalid element type: %w", parts[0], err)
		}
		if numTags, err = strconv.Atoi(parts[2]); err != nil {
			return nil, nil, fmt.Errorf("element %s: invalid tag count: %w", parts[0], err)
		}
		tag, ok := gmshPrimitiveTag[elemType]
		if !ok {
			// Skip higher order and 3D element types
			continue
		}
		nodeStart := 3 + numTags
		if len(parts) < nodeStart+tag {
			return nil, nil, fmt.Errorf("element %s: expected %d nodes, got %d",
				parts[0], tag, len(parts)-nodeStart)
		}
		ids := make([]int, tag)
		for j := 0; j < tag; j++ {
			if ids[j], err = strconv.Atoi(parts[nodeStart+j]); err != nil {
				return nil, nil, fmt.Errorf("element %s: invalid node id: %w", parts[0], err)
			}
		}
		tags = append(tags, tag)
		elements = append(elements, ids)
	}
	err = skipTo(scanner, "$EndElements")
	return
}

func skipTo(scanner *bufio.Scanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	return fmt.Errorf("unexpected EOF looking for %s", endMarker)
}
