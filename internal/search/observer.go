package search

import (
	"edge-tuner/internal/logger"
	"edge-tuner/internal/models"
)

// Observer receives the outcome of every trial. Calls are serialized by the
// driver, also when trials run in parallel.
type Observer interface {
	TrialCompleted(trial int, params models.ParameterSet, report models.CostReport)
	TrialFailed(trial int, params models.ParameterSet, err error)
}

// Observers fans each notification out in order.
type Observers []Observer

func (o Observers) TrialCompleted(trial int, params models.ParameterSet, report models.CostReport) {
	for _, obs := range o {
		obs.TrialCompleted(trial, params, report)
	}
}

func (o Observers) TrialFailed(trial int, params models.ParameterSet, err error) {
	for _, obs := range o {
		obs.TrialFailed(trial, params, err)
	}
}

// LogObserver writes one line per trial, tagged with the run ID.
type LogObserver struct {
	logger logger.Logger
}

func NewLogObserver(log logger.Logger, runID string) *LogObserver {
	return &LogObserver{logger: logger.WithFields(log, map[string]interface{}{"run_id": runID})}
}

func (l *LogObserver) TrialCompleted(trial int, params models.ParameterSet, report models.CostReport) {
	l.logger.Info(component, "trial completed", map[string]interface{}{
		"trial":     trial,
		"cost":      report.Cost,
		"blur":      params.GaussianBlurSize,
		"laplacian": params.LaplacianFilterSize,
		"intra":     report.IntraAvg,
		"inter":     report.InterAvg,
	})
}

func (l *LogObserver) TrialFailed(trial int, params models.ParameterSet, err error) {
	l.logger.Warning(component, "trial failed", map[string]interface{}{
		"trial":     trial,
		"blur":      params.GaussianBlurSize,
		"laplacian": params.LaplacianFilterSize,
		"error":     err.Error(),
	})
}
