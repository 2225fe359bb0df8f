package InputParameters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/notargets/oilspill/mesh"
)

// Default area of interest, x then y range
var DefaultFishArea = [][]float64{{0, 0.45}, {0, 0.2}}

type Geometry struct {
	FilePath         string      `json:"filepath" mapstructure:"filepath"`
	FishArea         [][]float64 `json:"fish_area" mapstructure:"fish_area"`                   // [[xMin,xMax],[yMin,yMax]]
	InitialOilArea   []float64   `json:"initial_oil_area" mapstructure:"initial_oil_area"`     // Spill center [x,y]
	InitialOilRadius float64     `json:"initial_oil_radius" mapstructure:"initial_oil_radius"` // 0 seeds a single cell
	InitialOilSpread float64     `json:"initial_oil_spread" mapstructure:"initial_oil_spread"`
	InitialOilTotal  float64     `json:"initial_oil_total" mapstructure:"initial_oil_total"`
}

type Settings struct {
	NSteps      int     `json:"nSteps" mapstructure:"nSteps"`
	TStart      float64 `json:"t_start" mapstructure:"t_start"`
	TEnd        float64 `json:"t_end" mapstructure:"t_end"`
	FluxType    string  `json:"fluxType" mapstructure:"fluxType"`
	Diffusivity float64 `json:"diffusivity" mapstructure:"diffusivity"`
}

type IO struct {
	WriteFrequency int    `json:"writeFrequency" mapstructure:"writeFrequency"` // 0 writes the final image only
	RestartFile    string `json:"restartFile" mapstructure:"restartFile"`
	LogName        string `json:"logName" mapstructure:"logName"`
	ResultsDir     string `json:"resultsDir" mapstructure:"resultsDir"`
}

// Parameters obtained from the TOML, YAML or JSON input file
type OilSpillParameters struct {
	Geometry Geometry `json:"geometry" mapstructure:"geometry"`
	Settings Settings `json:"settings" mapstructure:"settings"`
	IO       IO       `json:"IO" mapstructure:"IO"`
}

func (ip *OilSpillParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

/*
Load reads a run configuration from fileName. TOML files are read through viper, YAML and JSON through Parse. Defaults
are applied to fields left unset, relative paths are left as given and a leading ~ is expanded.
*/
func Load(fileName string) (ip *OilSpillParameters, err error) {
	var (
		data []byte
	)
	if fileName, err = homedir.Expand(fileName); err != nil {
		return
	}
	ip = &OilSpillParameters{}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".toml":
		v := viper.New()
		v.SetConfigFile(fileName)
		if err = v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file %s: %w", fileName, err)
		}
		if err = v.Unmarshal(ip); err != nil {
			return nil, fmt.Errorf("unable to decode config file %s: %w", fileName, err)
		}
	case ".yaml", ".yml", ".json":
		if data, err = os.ReadFile(fileName); err != nil {
			return nil, fmt.Errorf("unable to read config file %s: %w", fileName, err)
		}
		if err = ip.Parse(data); err != nil {
			return nil, fmt.Errorf("unable to decode config file %s: %w", fileName, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file type %q, use .toml, .yaml or .json", filepath.Ext(fileName))
	}
	ip.SetDefaults()
	return
}

func (ip *OilSpillParameters) SetDefaults() {
	if len(ip.Geometry.FishArea) == 0 {
		ip.Geometry.FishArea = [][]float64{
			append([]float64(nil), DefaultFishArea[0]...),
			append([]float64(nil), DefaultFishArea[1]...),
		}
	}
	if ip.Geometry.InitialOilSpread == 0 {
		ip.Geometry.InitialOilSpread = 0.01
	}
	if ip.Geometry.InitialOilTotal == 0 {
		ip.Geometry.InitialOilTotal = 1
	}
	if ip.Settings.Diffusivity == 0 {
		ip.Settings.Diffusivity = 1
	}
	if ip.IO.LogName == "" {
		ip.IO.LogName = "logfile.log"
	}
	if ip.IO.ResultsDir == "" {
		ip.IO.ResultsDir = "results"
	}
}

// Validate checks every field needed for a run, reporting the first problem found
func (ip *OilSpillParameters) Validate() (err error) {
	var (
		g, s, o = ip.Geometry, ip.Settings, ip.IO
	)
	if g.FilePath == "" {
		return fmt.Errorf("missing filepath in geometry section")
	}
	if _, err = os.Stat(g.FilePath); err != nil {
		return fmt.Errorf("the mesh file %s does not exist", g.FilePath)
	}
	if len(g.FishArea) != 2 || len(g.FishArea[0]) != 2 || len(g.FishArea[1]) != 2 {
		return fmt.Errorf("fish_area in geometry section must be [[xMin, xMax], [yMin, yMax]], have %v", g.FishArea)
	}
	if g.FishArea[0][1] < g.FishArea[0][0] || g.FishArea[1][1] < g.FishArea[1][0] {
		return fmt.Errorf("fish_area in geometry section has an empty range: %v", g.FishArea)
	}
	if len(g.InitialOilArea) == 0 {
		return fmt.Errorf("missing initial_oil_area in geometry section")
	}
	if len(g.InitialOilArea) != 2 {
		return fmt.Errorf("initial_oil_area in geometry section must be [x, y], have %v", g.InitialOilArea)
	}
	if g.InitialOilRadius < 0 || g.InitialOilSpread < 0 || g.InitialOilTotal < 0 {
		return fmt.Errorf("initial oil radius, spread and total must not be negative")
	}
	if s.NSteps <= 0 {
		return fmt.Errorf("missing or non positive nSteps in settings section")
	}
	if s.TEnd <= s.TStart {
		return fmt.Errorf("missing t_end or t_end <= t_start in settings section")
	}
	if _, err = mesh.NewFluxType(s.FluxType); err != nil {
		return fmt.Errorf("settings section: %w", err)
	}
	if s.Diffusivity < 0 {
		return fmt.Errorf("diffusivity in settings section must not be negative")
	}
	if o.WriteFrequency < 0 {
		return fmt.Errorf("writeFrequency in IO section must not be negative")
	}
	if o.RestartFile != "" {
		if _, err = os.Stat(o.RestartFile); err != nil {
			return fmt.Errorf("the restart file %s does not exist", o.RestartFile)
		}
	}
	return nil
}

// StartPoint converts the initial oil fields to the mesh seeding descriptor
func (ip *OilSpillParameters) StartPoint() (sp mesh.StartPoint) {
	g := ip.Geometry
	sp = mesh.StartPoint{
		Radius: g.InitialOilRadius,
		Spread: g.InitialOilSpread,
		Total:  g.InitialOilTotal,
	}
	if len(g.InitialOilArea) == 2 {
		sp.Center.X, sp.Center.Y = g.InitialOilArea[0], g.InitialOilArea[1]
	}
	return
}

// FishRange returns the area of interest as x and y ranges
func (ip *OilSpillParameters) FishRange() (xRange, yRange [2]float64) {
	fa := ip.Geometry.FishArea
	xRange = [2]float64{fa[0][0], fa[0][1]}
	yRange = [2]float64{fa[1][0], fa[1][1]}
	return
}

func (ip *OilSpillParameters) Print() {
	g, s, o := ip.Geometry, ip.Settings, ip.IO
	fmt.Printf("\"%s\"\t\t= Mesh File\n", g.FilePath)
	fmt.Printf("%v\t\t= Fish Area\n", g.FishArea)
	fmt.Printf("%v\t\t\t= Initial Oil Center\n", g.InitialOilArea)
	fmt.Printf("%8.5f\t\t= Initial Oil Radius\n", g.InitialOilRadius)
	fmt.Printf("%8.5f\t\t= Initial Oil Spread\n", g.InitialOilSpread)
	fmt.Printf("%8.5f\t\t= Initial Oil Total\n", g.InitialOilTotal)
	fmt.Printf("[%d]\t\t\t\t= Number of Steps\n", s.NSteps)
	fmt.Printf("%8.5f\t\t= Start Time\n", s.TStart)
	fmt.Printf("%8.5f\t\t= End Time\n", s.TEnd)
	fmt.Printf("[%s]\t\t\t= Flux Type\n", s.FluxType)
	fmt.Printf("%8.5f\t\t= Diffusivity\n", s.Diffusivity)
	fmt.Printf("[%d]\t\t\t\t= Write Frequency\n", o.WriteFrequency)
	if o.RestartFile != "" {
		fmt.Printf("\"%s\"\t\t= Restart File\n", o.RestartFile)
	}
}
