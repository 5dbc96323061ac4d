// Package search runs a bounded random search over normalization parameters.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"edge-tuner/internal/logger"
	"edge-tuner/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const component = "SearchDriver"

// Mode selects how a failing trial is handled.
type Mode string

const (
	// ModeStrict aborts the search on the first failing trial.
	ModeStrict Mode = "strict"
	// ModeLenient reports the failure, skips the trial and continues.
	ModeLenient Mode = "lenient"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStrict:
		return ModeStrict, nil
	case ModeLenient:
		return ModeLenient, nil
	default:
		return "", models.NewValidationError("mode", s, "must be strict or lenient")
	}
}

type Evaluator interface {
	Evaluate(ctx context.Context, groups models.GroupSet, params models.ParameterSet) (models.CostReport, error)
}

type Sampler interface {
	Sample() models.ParameterSet
}

type Options struct {
	// Workers bounds concurrent trials; values <= 1 run sequentially.
	Workers  int
	Mode     Mode
	Observer Observer
	Logger   logger.Logger
	// RunID tags logs and the result; a random UUID when empty.
	RunID string
}

// Result is the outcome of a search run. Trial indices are zero-based.
type Result struct {
	RunID          string              `json:"run_id"`
	BestParameters models.ParameterSet `json:"best_parameters"`
	Best           models.CostReport   `json:"best"`
	BestTrial      int                 `json:"best_trial"`
	Trials         int                 `json:"trials"`
	Failed         int                 `json:"failed"`
	Duration       time.Duration       `json:"duration"`
}

// Driver repeatedly samples parameters, evaluates them and keeps the best.
type Driver struct {
	evaluator Evaluator
	sampler   Sampler
	opts      Options
}

func NewDriver(evaluator Evaluator, sampler Sampler, opts Options) (*Driver, error) {
	if evaluator == nil || sampler == nil {
		return nil, fmt.Errorf("search driver requires an evaluator and a sampler")
	}
	if opts.Mode == "" {
		opts.Mode = ModeStrict
	}
	if opts.Mode != ModeStrict && opts.Mode != ModeLenient {
		return nil, models.NewValidationError("mode", opts.Mode, "must be strict or lenient")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = logger.NoOpLogger{}
	}
	if opts.Observer == nil {
		opts.Observer = Observers{}
	}
	return &Driver{evaluator: evaluator, sampler: sampler, opts: opts}, nil
}

// Search runs exactly trials trials unless ctx is cancelled or, in strict
// mode, a trial fails. The best report is the lowest cost seen; on equal
// cost the lowest trial index wins.
func (d *Driver) Search(ctx context.Context, groups models.GroupSet, trials int) (*Result, error) {
	if trials < 1 {
		return nil, models.NewValidationError("trials", trials, "must be >= 1")
	}
	if err := groups.Validate(); err != nil {
		return nil, err
	}

	runID := d.opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	start := time.Now()

	// Parameters are drawn up front in trial order so a seed yields the same
	// plan whatever the worker count.
	plan := make([]models.ParameterSet, trials)
	for i := range plan {
		plan[i] = d.sampler.Sample()
	}

	d.opts.Logger.Info(component, "search started", map[string]interface{}{
		"run_id":  runID,
		"trials":  trials,
		"workers": d.opts.Workers,
		"mode":    string(d.opts.Mode),
		"groups":  len(groups),
		"images":  groups.ImageCount(),
	})

	t := &tracker{observer: d.opts.Observer}

	var err error
	if d.opts.Workers == 1 {
		for i := range plan {
			if err = d.runTrial(ctx, t, groups, i, plan[i]); err != nil {
				break
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.opts.Workers)
		for i := range plan {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				return d.runTrial(gctx, t, groups, i, plan[i])
			})
		}
		err = g.Wait()
		if err == nil {
			err = ctx.Err()
		}
	}

	if err != nil {
		d.opts.Logger.Error(component, err, map[string]interface{}{
			"run_id":    runID,
			"completed": t.completed,
			"failed":    t.failed,
		})
		return nil, err
	}

	if !t.best.found {
		return nil, fmt.Errorf("%w: %d of %d trials failed, last: %w",
			models.ErrNoSuccessfulTrials, t.failed, trials, t.lastErr)
	}

	result := &Result{
		RunID:          runID,
		BestParameters: t.best.report.Parameters,
		Best:           t.best.report,
		BestTrial:      t.best.index,
		Trials:         t.completed + t.failed,
		Failed:         t.failed,
		Duration:       time.Since(start),
	}

	d.opts.Logger.Info(component, "search finished", map[string]interface{}{
		"run_id":      runID,
		"best_cost":   result.Best.Cost,
		"best_trial":  result.BestTrial,
		"blur":        result.BestParameters.GaussianBlurSize,
		"laplacian":   result.BestParameters.LaplacianFilterSize,
		"failed":      result.Failed,
		"duration_ms": result.Duration.Milliseconds(),
	})

	return result, nil
}

func (d *Driver) runTrial(ctx context.Context, t *tracker, groups models.GroupSet, trial int, params models.ParameterSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	report, err := d.evaluator.Evaluate(ctx, groups, params)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		t.fail(trial, params, err)
		if d.opts.Mode == ModeStrict {
			return fmt.Errorf("trial %d (%s): %w", trial, params, err)
		}
		return nil
	}

	t.complete(trial, params, report)
	return nil
}

type bestTrial struct {
	index  int
	report models.CostReport
	found  bool
}

// tracker serializes observer calls and best-trial updates.
type tracker struct {
	mu        sync.Mutex
	observer  Observer
	best      bestTrial
	completed int
	failed    int
	lastErr   error
}

func (t *tracker) complete(trial int, params models.ParameterSet, report models.CostReport) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.completed++
	t.observer.TrialCompleted(trial, params, report)

	if !t.best.found || report.Cost < t.best.report.Cost ||
		(report.Cost == t.best.report.Cost && trial < t.best.index) {
		t.best = bestTrial{index: trial, report: report, found: true}
	}
}

func (t *tracker) fail(trial int, params models.ParameterSet, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failed++
	t.lastErr = err
	t.observer.TrialFailed(trial, params, err)
}
