package plotting

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/floats"
)

// SeriesChart renders the oil in the area of interest against time as a PNG line chart
type SeriesChart struct {
	Width, Height int
	Title         string
}

func NewSeriesChart() *SeriesChart {
	return &SeriesChart{
		Width:  1024,
		Height: 512,
		Title:  "Oil in fish area",
	}
}

func (sc *SeriesChart) Chart(times, oil []float64, fileName string) (err error) {
	var (
		file *os.File
	)
	if len(times) != len(oil) {
		return fmt.Errorf("have %d times for %d values", len(times), len(oil))
	}
	if len(times) < 2 {
		return fmt.Errorf("need at least two samples to chart, have %d", len(times))
	}
	yMax := floats.Max(oil)
	if yMax <= 0 {
		yMax = 1
	}
	graph := chart.Chart{
		Title:  sc.Title,
		Width:  sc.Width,
		Height: sc.Height,
		XAxis: chart.XAxis{
			Name:  "time",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.2f", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Name:  "oil",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: 1.05 * yMax},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "oil in area",
				XValues: times,
				YValues: oil,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 3.0},
			},
		},
	}
	if file, err = os.Create(fileName); err != nil {
		return fmt.Errorf("unable to create chart %s: %w", fileName, err)
	}
	if err = graph.Render(chart.PNG, file); err != nil {
		file.Close()
		return fmt.Errorf("unable to render chart %s: %w", fileName, err)
	}
	return file.Close()
}
