package restart

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notargets/oilspill/mesh"
)

var ErrSnapshotMismatch = errors.New("restart snapshot does not match the mesh")

type Entry struct {
	Index int
	Oil   float64
}

// Snapshot is the oil state of every cell at Time
type Snapshot struct {
	Time    float64
	Entries []Entry
}

// NewSnapshot captures the amount of every cell of m, in mesh index order
func NewSnapshot(m *mesh.Mesh, time float64) (s *Snapshot) {
	s = &Snapshot{
		Time:    time,
		Entries: make([]Entry, len(m.Cells)),
	}
	for i, c := range m.Cells {
		s.Entries[i] = Entry{Index: c.Index, Oil: c.OilAmount}
	}
	return
}

/*
Write emits the snapshot as text: the time on the first line, then one "<index>;<oil>" line per entry. Floats use the
shortest representation that reads back to the same value.
*/
func (s *Snapshot) Write(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", formatFloat(s.Time))
	for _, e := range s.Entries {
		fmt.Fprintf(bw, "%d;%s\n", e.Index, formatFloat(e.Oil))
	}
	return bw.Flush()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// WriteFile writes the snapshot to fileName, creating the parent directory
func (s *Snapshot) WriteFile(fileName string) (err error) {
	var (
		file *os.File
	)
	if err = os.MkdirAll(filepath.Dir(fileName), 0755); err != nil {
		return fmt.Errorf("unable to create restart directory: %w", err)
	}
	if file, err = os.Create(fileName); err != nil {
		return fmt.Errorf("unable to create restart file %s: %w", fileName, err)
	}
	if err = s.Write(file); err != nil {
		file.Close()
		return fmt.Errorf("unable to write restart file %s: %w", fileName, err)
	}
	return file.Close()
}

// Read parses a snapshot, blank lines are ignored
func Read(r io.Reader) (s *Snapshot, err error) {
	var (
		scanner = bufio.NewScanner(r)
		lineNo  int
		haveT   bool
	)
	s = &Snapshot{}
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !haveT {
			if s.Time, err = strconv.ParseFloat(line, 64); err != nil {
				return nil, fmt.Errorf("line %d: invalid restart time %q", lineNo, line)
			}
			haveT = true
			continue
		}
		fields := strings.Split(line, ";")
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected <index>;<oil>, have %q", lineNo, line)
		}
		var e Entry
		if e.Index, err = strconv.Atoi(strings.TrimSpace(fields[0])); err != nil {
			return nil, fmt.Errorf("line %d: invalid cell index %q", lineNo, fields[0])
		}
		if e.Oil, err = strconv.ParseFloat(strings.TrimSpace(fields[1]), 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid oil amount %q", lineNo, fields[1])
		}
		s.Entries = append(s.Entries, e)
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	if !haveT {
		return nil, fmt.Errorf("restart data is empty")
	}
	return
}

func ReadFile(fileName string) (s *Snapshot, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(fileName); err != nil {
		return nil, fmt.Errorf("unable to read restart file %s: %w", fileName, err)
	}
	defer file.Close()
	if s, err = Read(file); err != nil {
		return nil, fmt.Errorf("restart file %s: %w", fileName, err)
	}
	return
}

/*
Apply restores OilAmount on every transport cell of m. The snapshot must hold exactly one entry per cell of the mesh;
entries for cells that do not transport oil are accepted and ignored.
*/
func (s *Snapshot) Apply(m *mesh.Mesh) (err error) {
	if len(s.Entries) != len(m.Cells) {
		return fmt.Errorf("%w: %d entries for %d cells", ErrSnapshotMismatch, len(s.Entries), len(m.Cells))
	}
	seen := make([]bool, len(m.Cells))
	for _, e := range s.Entries {
		if e.Index < 0 || e.Index >= len(m.Cells) {
			return fmt.Errorf("%w: cell index %d out of range", ErrSnapshotMismatch, e.Index)
		}
		if seen[e.Index] {
			return fmt.Errorf("%w: cell index %d listed twice", ErrSnapshotMismatch, e.Index)
		}
		seen[e.Index] = true
	}
	for _, e := range s.Entries {
		c := &m.Cells[e.Index]
		c.OilChange = 0
		if c.Type.Transports() {
			c.OilAmount = e.Oil
		}
	}
	return
}
