// Package evaluator scores a ParameterSet against a GroupSet.
package evaluator

import (
	"context"
	"fmt"
	"math"
	"time"

	"edge-tuner/internal/features"
	"edge-tuner/internal/logger"
	"edge-tuner/internal/models"
)

const component = "Evaluator"

// Evaluator computes the group cost for one parameter set. It holds no
// per-call state and is safe for concurrent use.
type Evaluator struct {
	logger logger.Logger
}

func New(log logger.Logger) *Evaluator {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	return &Evaluator{logger: log}
}

// Evaluate normalizes every image with params and returns the pooled intra-
// and inter-group difference averages with the resulting cost. All feature
// maps are released before it returns.
func (e *Evaluator) Evaluate(ctx context.Context, groups models.GroupSet, params models.ParameterSet) (models.CostReport, error) {
	if err := params.Validate(); err != nil {
		return models.CostReport{}, err
	}
	// Evaluate is a standalone entry point and does not assume a caller
	// such as the search driver has validated groups already.
	if err := groups.Validate(); err != nil {
		return models.CostReport{}, err
	}

	start := time.Now()

	maps, err := e.normalizeAll(ctx, groups, params)
	defer func() {
		for _, g := range maps {
			models.CloseAll(g)
		}
	}()
	if err != nil {
		return models.CostReport{}, err
	}

	intraSum, intraPairs, err := intra(ctx, maps)
	if err != nil {
		return models.CostReport{}, err
	}
	interSum, interPairs, err := inter(ctx, maps)
	if err != nil {
		return models.CostReport{}, err
	}

	report := models.CostReport{
		Parameters: params,
		IntraAvg:   intraSum / float64(intraPairs),
		InterAvg:   interSum / float64(interPairs),
		IntraPairs: intraPairs,
		InterPairs: interPairs,
	}
	report.Cost = models.Cost(report.IntraAvg, report.InterAvg)
	report.Duration = time.Since(start)

	if !isFinite(report.IntraAvg) || !isFinite(report.InterAvg) || !isFinite(report.Cost) {
		return models.CostReport{}, fmt.Errorf("evaluate %s: non-finite cost (intra=%v inter=%v)",
			params, report.IntraAvg, report.InterAvg)
	}

	e.logger.Debug(component, "parameters evaluated", map[string]interface{}{
		"cost":        report.Cost,
		"blur":        params.GaussianBlurSize,
		"laplacian":   params.LaplacianFilterSize,
		"intra":       report.IntraAvg,
		"inter":       report.InterAvg,
		"duration_ms": report.Duration.Milliseconds(),
	})

	return report, nil
}

// normalizeAll returns feature maps mirroring the group structure. On error
// the maps produced so far are still returned so the caller can close them.
func (e *Evaluator) normalizeAll(ctx context.Context, groups models.GroupSet, params models.ParameterSet) ([][]*models.FeatureMap, error) {
	maps := make([][]*models.FeatureMap, len(groups))
	for gi, g := range groups {
		maps[gi] = make([]*models.FeatureMap, 0, len(g.Images))
		for _, img := range g.Images {
			fm, err := features.Normalize(ctx, img, params)
			if err != nil {
				return maps, fmt.Errorf("group %q: %w", g.Name, err)
			}
			maps[gi] = append(maps[gi], fm)
		}
	}
	return maps, nil
}

// intra sums differences over every unordered pair within each group.
func intra(ctx context.Context, maps [][]*models.FeatureMap) (float64, int, error) {
	var sum float64
	var pairs int
	for _, g := range maps {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		for i := 0; i < len(g); i++ {
			for j := i + 1; j < len(g); j++ {
				d, err := features.Difference(g[i], g[j])
				if err != nil {
					return 0, 0, err
				}
				sum += d
				pairs++
			}
		}
	}
	return sum, pairs, nil
}

// inter sums differences over every image pair drawn from two distinct groups.
func inter(ctx context.Context, maps [][]*models.FeatureMap) (float64, int, error) {
	var sum float64
	var pairs int
	for gi := 0; gi < len(maps); gi++ {
		for gj := gi + 1; gj < len(maps); gj++ {
			if err := ctx.Err(); err != nil {
				return 0, 0, err
			}
			for _, a := range maps[gi] {
				for _, b := range maps[gj] {
					d, err := features.Difference(a, b)
					if err != nil {
						return 0, 0, err
					}
					sum += d
					pairs++
				}
			}
		}
	}
	return sum, pairs, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
