// Package report collects per-generation fitness and renders it as CSV or a PNG plot.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/baldhumanity/neat-ff/neat"
)

// Point is the fitness summary of one generation.
type Point struct {
	Generation int
	Best       float64
	Mean       float64
}

// Curve accumulates fitness points. It implements neat.Reporter.
type Curve struct {
	mu     sync.Mutex
	points []Point
}

// NewCurve returns an empty curve.
func NewCurve() *Curve {
	return &Curve{}
}

// ReportGeneration appends the generation's best and mean fitness.
func (c *Curve) ReportGeneration(_ context.Context, stats neat.GenerationStats, _ []*neat.Individual) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.points = append(c.points, Point{
		Generation: stats.Generation,
		Best:       stats.BestFitness,
		Mean:       stats.MeanFitness,
	})
	return nil
}

// Points returns a copy of the collected points.
func (c *Curve) Points() []Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Point(nil), c.points...)
}

// WriteCSV writes a "generation,best,mean" header followed by one row per generation.
func (c *Curve) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"generation", "best", "mean"}); err != nil {
		return err
	}
	for _, p := range c.Points() {
		row := []string{
			strconv.Itoa(p.Generation),
			strconv.FormatFloat(p.Best, 'g', -1, 64),
			strconv.FormatFloat(p.Mean, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SavePlot draws best and mean fitness over generations into an image file.
// The format follows the file extension (png, svg, pdf...).
func (c *Curve) SavePlot(title, outPath string) error {
	points := c.Points()
	if len(points) == 0 {
		return fmt.Errorf("no generations to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"

	bestPts := make(plotter.XYs, len(points))
	meanPts := make(plotter.XYs, len(points))
	for i, pt := range points {
		bestPts[i].X = float64(pt.Generation)
		bestPts[i].Y = pt.Best
		meanPts[i].X = float64(pt.Generation)
		meanPts[i].Y = pt.Mean
	}

	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return err
	}
	meanLine, err := plotter.NewLine(meanPts)
	if err != nil {
		return err
	}
	meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(bestLine, meanLine)
	p.Legend.Add("best", bestLine)
	p.Legend.Add("mean", meanLine)
	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return fmt.Errorf("save plot '%s': %w", outPath, err)
	}
	return nil
}
