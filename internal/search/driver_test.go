package search

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"edge-tuner/internal/evaluator"
	"edge-tuner/internal/imagetest"
	"edge-tuner/internal/models"
	"edge-tuner/internal/sampler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceSampler hands out blur sizes 1, 3, 5, ... so trial i has blur 2i+1.
type sequenceSampler struct {
	next int
}

func (s *sequenceSampler) Sample() models.ParameterSet {
	p := models.ParameterSet{GaussianBlurSize: 2*s.next + 1, LaplacianFilterSize: 3}
	s.next++
	return p
}

// costEvaluator returns costs[trial], or fails when the entry is NaN.
type costEvaluator struct {
	costs []float64
}

var errTrial = errors.New("trial exploded")

func (e *costEvaluator) Evaluate(ctx context.Context, groups models.GroupSet, params models.ParameterSet) (models.CostReport, error) {
	c := e.costs[(params.GaussianBlurSize-1)/2]
	if math.IsNaN(c) {
		return models.CostReport{}, errTrial
	}
	return models.CostReport{Parameters: params, Cost: c}, nil
}

type recorder struct {
	mu        sync.Mutex
	completed map[int]models.CostReport
	failed    map[int]error
}

func newRecorder() *recorder {
	return &recorder{completed: map[int]models.CostReport{}, failed: map[int]error{}}
}

func (r *recorder) TrialCompleted(trial int, params models.ParameterSet, report models.CostReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed[trial] = report
}

func (r *recorder) TrialFailed(trial int, params models.ParameterSet, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[trial] = err
}

func nan() float64 { return math.NaN() }

func newRealDriver(t *testing.T, seed uint64, opts Options) *Driver {
	t.Helper()
	s, err := sampler.New(seed, sampler.DefaultBounds())
	require.NoError(t, err)
	d, err := NewDriver(evaluator.New(nil), s, opts)
	require.NoError(t, err)
	return d
}

func TestSearch_TwentyTrialScenario(t *testing.T) {
	groups := imagetest.DistinctPairs(t)
	rec := newRecorder()
	d := newRealDriver(t, 1, Options{Observer: rec})

	result, err := d.Search(context.Background(), groups, 20)
	require.NoError(t, err)

	assert.Less(t, result.Best.Cost, 0.0)
	assert.Equal(t, 20, result.Trials)
	assert.Zero(t, result.Failed)
	assert.NotEmpty(t, result.RunID)
	require.NoError(t, result.BestParameters.Validate())

	require.Len(t, rec.completed, 20)
	for trial, report := range rec.completed {
		assert.LessOrEqual(t, result.Best.Cost, report.Cost, "trial %d", trial)
	}
	assert.Equal(t, rec.completed[result.BestTrial].Cost, result.Best.Cost)
}

func TestSearch_SingleTrial(t *testing.T) {
	groups := imagetest.DistinctPairs(t)
	rec := newRecorder()
	d := newRealDriver(t, 3, Options{Observer: rec})

	result, err := d.Search(context.Background(), groups, 1)
	require.NoError(t, err)

	require.Len(t, rec.completed, 1)
	assert.Equal(t, 0, result.BestTrial)
	assert.Equal(t, rec.completed[0], result.Best)
	assert.Equal(t, rec.completed[0].Parameters, result.BestParameters)
}

func TestSearch_ParallelMatchesSequential(t *testing.T) {
	groups := imagetest.DistinctPairs(t)

	seq, err := newRealDriver(t, 11, Options{Workers: 1}).Search(context.Background(), groups, 12)
	require.NoError(t, err)
	par, err := newRealDriver(t, 11, Options{Workers: 4}).Search(context.Background(), groups, 12)
	require.NoError(t, err)

	assert.Equal(t, seq.BestTrial, par.BestTrial)
	assert.Equal(t, seq.BestParameters, par.BestParameters)
	assert.Equal(t, seq.Best.Cost, par.Best.Cost)
}

func TestSearch_DegenerateGroups(t *testing.T) {
	groups := imagetest.DistinctPairs(t)[:1]
	d := newRealDriver(t, 1, Options{Mode: ModeLenient})

	_, err := d.Search(context.Background(), groups, 5)
	assert.ErrorIs(t, err, models.ErrDegenerateGroupSet)
}

func TestSearch_InvalidTrials(t *testing.T) {
	d := newRealDriver(t, 1, Options{})

	_, err := d.Search(context.Background(), imagetest.DistinctPairs(t), 0)
	assert.ErrorIs(t, err, models.ErrInvalidParameters)
}

func TestSearch_TieGoesToLowestTrial(t *testing.T) {
	for _, workers := range []int{1, 3} {
		d, err := NewDriver(&costEvaluator{costs: []float64{3, 1, 2, 1, 1}}, &sequenceSampler{}, Options{Workers: workers})
		require.NoError(t, err)

		result, err := d.Search(context.Background(), imagetest.DistinctPairs(t), 5)
		require.NoError(t, err)
		assert.Equal(t, 1, result.BestTrial, "workers=%d", workers)
		assert.Equal(t, 3, result.BestParameters.GaussianBlurSize)
	}
}

func TestSearch_StrictAbortsOnFailure(t *testing.T) {
	rec := newRecorder()
	d, err := NewDriver(&costEvaluator{costs: []float64{2, 1, nan(), 0}}, &sequenceSampler{}, Options{Observer: rec})
	require.NoError(t, err)

	_, err = d.Search(context.Background(), imagetest.DistinctPairs(t), 4)
	assert.ErrorIs(t, err, errTrial)
	assert.Contains(t, rec.failed, 2)
	assert.NotContains(t, rec.completed, 3)
}

func TestSearch_LenientSkipsFailures(t *testing.T) {
	for _, workers := range []int{1, 2} {
		rec := newRecorder()
		d, err := NewDriver(&costEvaluator{costs: []float64{2, nan(), 1, nan()}}, &sequenceSampler{},
			Options{Mode: ModeLenient, Workers: workers, Observer: rec})
		require.NoError(t, err)

		result, err := d.Search(context.Background(), imagetest.DistinctPairs(t), 4)
		require.NoError(t, err)

		assert.Equal(t, 4, result.Trials)
		assert.Equal(t, 2, result.Failed)
		assert.Equal(t, 2, result.BestTrial)
		assert.Len(t, rec.failed, 2)
		assert.Len(t, rec.completed, 2)
	}
}

func TestSearch_LenientAllFailed(t *testing.T) {
	d, err := NewDriver(&costEvaluator{costs: []float64{nan(), nan()}}, &sequenceSampler{}, Options{Mode: ModeLenient})
	require.NoError(t, err)

	_, err = d.Search(context.Background(), imagetest.DistinctPairs(t), 2)
	assert.ErrorIs(t, err, models.ErrNoSuccessfulTrials)
	assert.ErrorIs(t, err, errTrial)
}

func TestSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		d, err := NewDriver(&costEvaluator{costs: []float64{1, 2, 3}}, &sequenceSampler{}, Options{Workers: workers})
		require.NoError(t, err)

		_, err = d.Search(ctx, imagetest.DistinctPairs(t), 3)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeStrict, false},
		{"strict", ModeStrict, false},
		{" Lenient ", ModeLenient, false},
		{"loose", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, models.ErrInvalidParameters)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
