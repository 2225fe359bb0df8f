package mesh

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

/*
Adjacency builds the triangle to triangle shared node counts as the sparse product C*C^T, where C is the triangle by
node incidence matrix. Rows and columns are positions within m.Triangles. An off diagonal entry of 2 marks two
triangles sharing an edge.
*/
func (m *Mesh) Adjacency() (A *sparse.CSR) {
	var (
		K  = len(m.Triangles)
		Nv int
	)
	for _, k := range m.Triangles {
		for _, n := range m.Cells[k].Nodes {
			if n+1 > Nv {
				Nv = n + 1
			}
		}
	}
	if K == 0 || Nv == 0 {
		return sparse.NewCSR(0, 0, nil, nil, nil)
	}
	SpCToV_Tmp := sparse.NewDOK(K, Nv)
	for row, k := range m.Triangles {
		for _, n := range m.Cells[k].Nodes {
			SpCToV_Tmp.Set(row, n, 1)
		}
	}
	SpCToV := SpCToV_Tmp.ToCSR()
	A = sparse.NewCSR(K, K, nil, nil, nil)
	A.Mul(SpCToV, SpCToV.T())
	return
}

// CheckConnectivity verifies the edge index neighbors against the incidence product
func (m *Mesh) CheckConnectivity() (err error) {
	if !m.ready {
		return ErrGeometryNotReady
	}
	var (
		A     = m.Adjacency()
		count int
	)
	A.DoNonZero(func(i, j int, v float64) {
		if err != nil || i == j {
			return
		}
		ki, kj := m.Triangles[i], m.Triangles[j]
		shared := v == 2
		if shared != m.Cells[ki].HasNeighbor(kj) {
			err = fmt.Errorf("cells %d and %d share %v nodes, neighbor relation is %v",
				ki, kj, v, m.Cells[ki].HasNeighbor(kj))
		}
		if shared {
			count++
		}
	})
	if err != nil {
		return
	}
	var listed int
	for _, k := range m.Triangles {
		listed += len(m.Cells[k].Neighbors)
	}
	if listed != count {
		err = fmt.Errorf("edge index lists %d neighbor pairs, incidence product has %d", listed, count)
	}
	return
}
