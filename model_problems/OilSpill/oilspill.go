package OilSpill

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/notargets/oilspill/InputParameters"
	"github.com/notargets/oilspill/mesh"
	"github.com/notargets/oilspill/restart"
)

var (
	ErrResumeAtEnd = errors.New("restart time is at or beyond the end time")
	ErrZeroStep    = errors.New("time step rounds to zero")
)

// Plotter renders the cells at a point in time, outlining the cells of the area of interest
type Plotter interface {
	Plot(cells []mesh.Cell, time float64, area []int, dir string) error
}

// VideoAssembler turns the frames written to imagesDir into a video
type VideoAssembler interface {
	Assemble(imagesDir string, writeFrequency, intervals int) error
}

// Charter draws the area of interest time series
type Charter interface {
	Chart(times, oil []float64, fileName string) error
}

type Sample struct {
	Time float64 `json:"time"`
	Oil  float64 `json:"oil"`
}

// AreaSeries is the oil inside the area of interest after each step, in step order
type AreaSeries []Sample

type Summary struct {
	Config     string     `json:"config"`
	MeshFile   string     `json:"mesh_file"`
	Cells      int        `json:"cells"`
	Triangles  int        `json:"triangles"`
	FluxType   string     `json:"flux_type"`
	Dt         float64    `json:"dt"`
	TStart     float64    `json:"t_start"`
	TEnd       float64    `json:"t_end"`
	Steps      int        `json:"steps"`
	InitialOil float64    `json:"initial_oil"`
	FinalOil   float64    `json:"final_oil"`
	Series     AreaSeries `json:"oil_area_time"`
}

type OilSpill struct {
	Name           string // Experiment name, results are written under <resultsDir>/<Name>_results
	Params         *InputParameters.OilSpillParameters
	Mesh           *mesh.Mesh
	Plotter        Plotter
	Video          VideoAssembler
	Chart          Charter
	Log            *log.Logger
	ResultsDir     string
	ImagesDir      string
	InputDir       string
	Time, Dt       float64
	Series         AreaSeries
	FluxType       mesh.FluxType
	LogFrequency   int
	state          State
	fishCells      []int
	initialOil     float64
	plotCount      int
	elapsed        time.Duration
	stabilityLimit float64
}

// RoundTo rounds x to the given number of decimals
func RoundTo(x float64, decimals int) float64 {
	return scalar.Round(x, decimals)
}

// ExperimentName is the config file name without directory or extension
func ExperimentName(configFile string) string {
	if configFile == "" {
		return "default_experiment"
	}
	base := filepath.Base(configFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

/*
NewOilSpill prepares a run: the results layout is created, the mesh is read and its geometry calculated, then the oil
state is restored from the restart file when one is configured, or seeded from the initial oil parameters.
*/
func NewOilSpill(ip *InputParameters.OilSpillParameters, name string, logger *log.Logger) (c *OilSpill, err error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c = &OilSpill{
		Name:         name,
		Params:       ip,
		Log:          logger,
		LogFrequency: 50,
		state:        Init,
	}
	if err = ip.Validate(); err != nil {
		return c, c.fail(err)
	}
	if c.FluxType, err = mesh.NewFluxType(ip.Settings.FluxType); err != nil {
		return c, c.fail(err)
	}
	if err = c.makeResultsDirs(); err != nil {
		return c, c.fail(err)
	}
	if c.Mesh, err = mesh.NewMesh(ip.Geometry.FilePath, mesh.DefaultCellFactory()); err != nil {
		return c, c.fail(err)
	}
	c.Mesh.Kernel = c.FluxType.Kernel(ip.Settings.Diffusivity)
	fmt.Printf("Calculating geometry for %d cells...\n", len(c.Mesh.Cells))
	if err = c.Mesh.CalculateGeometry(); err != nil {
		return c, c.fail(err)
	}
	if err = c.transition(GeometryReady); err != nil {
		return
	}
	if err = c.initializeSolution(); err != nil {
		return c, c.fail(err)
	}
	xRange, yRange := ip.FishRange()
	if c.fishCells, err = c.Mesh.CellsWithinArea(xRange, yRange); err != nil {
		return c, c.fail(err)
	}
	c.Log.Printf("%d cells within fish area x %v, y %v", len(c.fishCells), xRange, yRange)
	return
}

func (c *OilSpill) makeResultsDirs() (err error) {
	c.ResultsDir = filepath.Join(c.Params.IO.ResultsDir, c.Name+"_results")
	c.InputDir = filepath.Join(c.ResultsDir, "input")
	c.ImagesDir = filepath.Join(c.ResultsDir, "images")
	for _, dir := range []string{c.InputDir, c.ImagesDir} {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("unable to create results directory %s: %w", dir, err)
		}
	}
	return
}

func (c *OilSpill) initializeSolution() (err error) {
	var (
		ip = c.Params
	)
	c.Time = ip.Settings.TStart
	if ip.IO.RestartFile != "" {
		var snap *restart.Snapshot
		if snap, err = restart.ReadFile(ip.IO.RestartFile); err != nil {
			return
		}
		if snap.Time >= ip.Settings.TEnd {
			return fmt.Errorf("%w: restart time %g, end time %g", ErrResumeAtEnd, snap.Time, ip.Settings.TEnd)
		}
		if err = snap.Apply(c.Mesh); err != nil {
			return
		}
		c.Time = snap.Time
		c.Log.Printf("Restarting from %s at time %g", ip.IO.RestartFile, c.Time)
		if err = c.transition(Restored); err != nil {
			return
		}
	} else {
		if err = c.Mesh.InitialOilDistribution(ip.StartPoint()); err != nil {
			return
		}
		if err = c.transition(Seeded); err != nil {
			return
		}
	}
	c.initialOil = c.Mesh.TotalOil()
	if c.Dt = RoundTo((ip.Settings.TEnd-c.Time)/float64(ip.Settings.NSteps), 6); c.Dt <= 0 {
		return fmt.Errorf("%w: t_end = %g, time = %g, nSteps = %d",
			ErrZeroStep, ip.Settings.TEnd, c.Time, ip.Settings.NSteps)
	}
	c.stabilityLimit = c.Mesh.MaxStableTimeStep()
	if c.Dt > c.stabilityLimit {
		c.Log.Printf("warning: dt = %g exceeds the stable limit %g for the %s flux, oil amounts may turn negative",
			c.Dt, c.stabilityLimit, c.FluxType.Print())
	}
	return
}

// State is the current lifecycle position of the run
func (c *OilSpill) State() State { return c.state }

// FishCells returns the indices of the cells in the area of interest
func (c *OilSpill) FishCells() []int { return c.fishCells }

/*
Solve advances the solution nSteps times and finalizes the run. Each step computes every cell's change before any cell
is updated. A frame is plotted ahead of the steps divisible by the write frequency, and once more at the end.
*/
func (c *OilSpill) Solve() (series AreaSeries, err error) {
	var (
		ip     = c.Params
		nSteps = ip.Settings.NSteps
		wf     = ip.IO.WriteFrequency
		m      = c.Mesh
		start  time.Time
	)
	if err = c.transition(Stepping); err != nil {
		return
	}
	c.PrintInitialization()
	c.Series = make(AreaSeries, 0, nSteps)
	for steps := 0; steps < nSteps; steps++ {
		if wf > 0 && steps%wf == 0 {
			if err = c.plot(); err != nil {
				return nil, c.fail(err)
			}
		}
		start = time.Now()
		for _, k := range m.Triangles {
			if err = m.CalculateChange(k, c.Dt); err != nil {
				return nil, c.fail(err)
			}
		}
		for _, k := range m.Triangles {
			m.Cells[k].Commit()
		}
		c.elapsed += time.Since(start)
		c.Time = RoundTo(c.Time+c.Dt, 4)
		c.Series = append(c.Series, Sample{Time: c.Time, Oil: m.OilInCells(c.fishCells)})
		if (c.LogFrequency > 0 && steps%c.LogFrequency == 0) || steps == nSteps-1 {
			c.PrintUpdate(steps + 1)
		}
	}
	if err = c.plot(); err != nil {
		return nil, c.fail(err)
	}
	if err = c.transition(Finalizing); err != nil {
		return
	}
	if err = c.finalize(); err != nil {
		return nil, c.fail(err)
	}
	c.PrintFinal()
	if err = c.transition(Done); err != nil {
		return
	}
	return c.Series, nil
}

func (c *OilSpill) plot() (err error) {
	if c.Plotter == nil {
		return
	}
	if err = c.Plotter.Plot(c.Mesh.Cells, c.Time, c.fishCells, c.ImagesDir); err != nil {
		return fmt.Errorf("unable to plot time %g: %w", c.Time, err)
	}
	c.plotCount++
	return
}

// RestartFile is where the final snapshot of the run is written
func (c *OilSpill) RestartFile() string {
	return filepath.Join(c.InputDir, c.Name+"_restartFile.txt")
}

func (c *OilSpill) finalize() (err error) {
	var (
		ip = c.Params
	)
	snap := restart.NewSnapshot(c.Mesh, ip.Settings.TEnd)
	if err = snap.WriteFile(c.RestartFile()); err != nil {
		return
	}
	c.Log.Printf("Restart file written to %s", c.RestartFile())
	if err = c.writeSummary(); err != nil {
		return
	}
	if c.Chart != nil && len(c.Series) < 2 {
		c.Log.Printf("Skipping oil in area chart, %d sample(s)", len(c.Series))
	} else if c.Chart != nil {
		times, oil := make([]float64, len(c.Series)), make([]float64, len(c.Series))
		for i, s := range c.Series {
			times[i], oil[i] = s.Time, s.Oil
		}
		if err = c.Chart.Chart(times, oil, filepath.Join(c.ResultsDir, "oil_area_time.png")); err != nil {
			return fmt.Errorf("unable to chart oil in area: %w", err)
		}
	}
	if c.Video != nil && ip.IO.WriteFrequency > 0 && c.plotCount > 0 {
		if err = c.Video.Assemble(c.ImagesDir, ip.IO.WriteFrequency, ip.Settings.NSteps); err != nil {
			return fmt.Errorf("unable to assemble video: %w", err)
		}
	}
	c.Log.Printf("Oil distribution over time:")
	for _, s := range c.Series {
		c.Log.Printf("  Time step %g: Oil amount %g", s.Time, s.Oil)
	}
	return
}

func (c *OilSpill) writeSummary() (err error) {
	var (
		data []byte
		ip   = c.Params
	)
	sum := Summary{
		Config:     c.Name,
		MeshFile:   ip.Geometry.FilePath,
		Cells:      len(c.Mesh.Cells),
		Triangles:  len(c.Mesh.Triangles),
		FluxType:   c.FluxType.Print(),
		Dt:         c.Dt,
		TStart:     ip.Settings.TStart,
		TEnd:       ip.Settings.TEnd,
		Steps:      ip.Settings.NSteps,
		InitialOil: c.initialOil,
		FinalOil:   c.Mesh.TotalOil(),
		Series:     c.Series,
	}
	if data, err = yaml.Marshal(sum); err != nil {
		return
	}
	fileName := filepath.Join(c.ResultsDir, "oil_area_time.yaml")
	if err = os.WriteFile(fileName, data, 0644); err != nil {
		return fmt.Errorf("unable to write summary %s: %w", fileName, err)
	}
	return
}

func (c *OilSpill) PrintInitialization() {
	fmt.Printf("Using mesh from file: [%s]\n", c.Params.Geometry.FilePath)
	fmt.Printf("Algorithm: %s, dt = %8.6f, stable limit = %11.4e\n", c.FluxType.Print(), c.Dt, c.stabilityLimit)
	fmt.Printf("Solving from time = %8.4f until finaltime = %8.4f\n", c.Time, c.Params.Settings.TEnd)
	fmt.Printf("    iter    time    FishArea       Total\n")
}

func (c *OilSpill) PrintUpdate(steps int) {
	last := c.Series[len(c.Series)-1]
	fmt.Printf("%8d%8.4f%12.4e%12.4e\n", steps, last.Time, last.Oil, c.Mesh.TotalOil())
}

func (c *OilSpill) PrintFinal() {
	var (
		steps = len(c.Series)
		rate  float64
	)
	if steps > 0 && len(c.Mesh.Triangles) > 0 {
		rate = float64(c.elapsed.Microseconds()) / float64(len(c.Mesh.Triangles)*steps)
	}
	fmt.Printf("\nRate of execution = %8.5f us/(cell*iteration) over %d iterations\n", rate, steps)
	fmt.Printf("Total oil: initial = %12.6e, final = %12.6e\n", c.initialOil, c.Mesh.TotalOil())
}
