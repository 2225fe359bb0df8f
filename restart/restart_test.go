package restart

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/oilspill/mesh"
	"github.com/notargets/oilspill/readfiles"
)

func newBox(t *testing.T) (m *mesh.Mesh) {
	g, err := readfiles.NewRectangleGrid(2, 2, 0, 1, 0, 1)
	require.NoError(t, err)
	m, err = mesh.NewMeshFromPrimitives(g.Prims, mesh.DefaultCellFactory())
	require.NoError(t, err)
	require.NoError(t, m.CalculateGeometry())
	return
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := newBox(t)
	for i, k := range m.Triangles {
		m.Cells[k].OilAmount = 0.1 * float64(i+1) / 3
	}
	s := NewSnapshot(m, 1.2345)
	assert.Equal(t, len(m.Cells), len(s.Entries))

	fileName := filepath.Join(t.TempDir(), "input", "box_restartFile.txt")
	require.NoError(t, s.WriteFile(fileName))
	s2, err := ReadFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, s, s2)

	m2 := newBox(t)
	require.NoError(t, s2.Apply(m2))
	assert.Equal(t, m.Amounts(), m2.Amounts())
}

func TestSnapshotFormat(t *testing.T) {
	s := &Snapshot{Time: 2, Entries: []Entry{{0, 0}, {1, 0.25}, {2, 1e-20}}}
	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))
	assert.Equal(t, "2\n0;0\n1;0.25\n2;1e-20\n", buf.String())
}

func TestRead(t *testing.T) {
	{ // Blank lines and surrounding space are tolerated
		s, err := Read(strings.NewReader("0.5\n\n0; 1.5\n 1;0\n"))
		require.NoError(t, err)
		assert.Equal(t, 0.5, s.Time)
		assert.Equal(t, []Entry{{0, 1.5}, {1, 0}}, s.Entries)
	}
	for _, bad := range []string{
		"",
		"abc\n",
		"1\n0,1.5\n",
		"1\nx;1\n",
		"1\n0;y\n",
	} {
		_, err := Read(strings.NewReader(bad))
		assert.Error(t, err, bad)
	}
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestApplyMismatch(t *testing.T) {
	m := newBox(t)
	s := NewSnapshot(m, 0)
	{ // Too few entries
		short := &Snapshot{Entries: s.Entries[1:]}
		assert.ErrorIs(t, short.Apply(m), ErrSnapshotMismatch)
	}
	{ // Duplicate index
		dup := &Snapshot{Entries: append([]Entry(nil), s.Entries...)}
		dup.Entries[1].Index = 0
		assert.ErrorIs(t, dup.Apply(m), ErrSnapshotMismatch)
	}
	{ // Index outside the mesh
		out := &Snapshot{Entries: append([]Entry(nil), s.Entries...)}
		out.Entries[0].Index = len(m.Cells)
		assert.ErrorIs(t, out.Apply(m), ErrSnapshotMismatch)
	}
	{ // Amounts for point and line cells are ignored
		s.Entries[0].Oil = 7
		require.NoError(t, s.Apply(m))
		assert.Equal(t, 0., m.Cells[0].OilAmount)
	}
}
