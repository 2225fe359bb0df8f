package types

import (
	"fmt"
	"math"
	"sort"
)

/*
EdgeKey is an always positive number that stores an edge's node ids as indices in a way that can be compared
An edge between nodes [4] and [0] will always be stored as [0,4], in the ascending order of the index values
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	// This packs two node ids into two 32 bit unsigned integers to act as a hash
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(i1 + i2<<32)
	return
}

func (ek EdgeKey) GetVertices(rev bool) (verts [2]int) {
	var (
		enTmp EdgeKey
	)
	enTmp = ek >> 32
	verts[1] = int(enTmp)
	verts[0] = int(ek - enTmp*(1<<32))
	if rev {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

// IsDegenerate is true when both ends of the edge are the same node
func (ek EdgeKey) IsDegenerate() bool {
	v := ek.GetVertices(false)
	return v[0] == v[1]
}

// PolygonEdges returns the keys of the closed polygon through nodes, in node order
func PolygonEdges(nodes []int) (keys []EdgeKey) {
	var (
		n = len(nodes)
	)
	if n < 2 {
		return
	}
	if n == 2 {
		return []EdgeKey{NewEdgeKey([2]int{nodes[0], nodes[1]})}
	}
	keys = make([]EdgeKey, n)
	for i := 0; i < n; i++ {
		keys[i] = NewEdgeKey([2]int{nodes[i], nodes[(i+1)%n]})
	}
	return
}

type EdgeKeySlice []EdgeKey

func (p EdgeKeySlice) Len() int           { return len(p) }
func (p EdgeKeySlice) Less(i, j int) bool { return p[i] < p[j] }
func (p EdgeKeySlice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// Sort is a convenience method.
func (p EdgeKeySlice) Sort() { sort.Sort(p) }
