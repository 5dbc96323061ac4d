// Package report records trial costs and plots them.
package report

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"edge-tuner/internal/models"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Point is one completed trial.
type Point struct {
	Trial  int
	Params models.ParameterSet
	Cost   float64
}

// History is a search.Observer that keeps every completed trial.
type History struct {
	mu     sync.Mutex
	points []Point
	failed int
}

func NewHistory() *History {
	return &History{}
}

func (h *History) TrialCompleted(trial int, params models.ParameterSet, report models.CostReport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points = append(h.points, Point{Trial: trial, Params: params, Cost: report.Cost})
}

func (h *History) TrialFailed(trial int, params models.ParameterSet, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed++
}

// Points returns completed trials ordered by trial index.
func (h *History) Points() []Point {
	h.mu.Lock()
	out := append([]Point(nil), h.points...)
	h.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Trial < out[j].Trial })
	return out
}

// BestSoFar returns the running minimum cost after each completed trial.
func (h *History) BestSoFar() []float64 {
	points := h.Points()
	out := make([]float64, len(points))
	best := math.Inf(1)
	for i, p := range points {
		best = math.Min(best, p.Cost)
		out[i] = best
	}
	return out
}

// Plot draws each trial's cost and the running best against the trial number.
func (h *History) Plot(title, outPath string) error {
	points := h.Points()
	if len(points) == 0 {
		return fmt.Errorf("no completed trials to plot")
	}
	best := h.BestSoFar()

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Trial"
	p.Y.Label.Text = "Cost"

	costPts := make(plotter.XYs, len(points))
	bestPts := make(plotter.XYs, len(points))
	for i, pt := range points {
		costPts[i].X = float64(pt.Trial + 1)
		costPts[i].Y = pt.Cost
		bestPts[i].X = costPts[i].X
		bestPts[i].Y = best[i]
	}

	scatter, err := plotter.NewScatter(costPts)
	if err != nil {
		return err
	}
	line, err := plotter.NewLine(bestPts)
	if err != nil {
		return err
	}

	p.Add(scatter, line, plotter.NewGrid())
	p.Legend.Add("trial", scatter)
	p.Legend.Add("best", line)
	p.Legend.Top = true

	return p.Save(6*vg.Inch, 4*vg.Inch, outPath)
}
