package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"edge-tuner/internal/evaluator"
	"edge-tuner/internal/logger"
	"edge-tuner/internal/metrics"
	"edge-tuner/internal/models"
	"edge-tuner/internal/pipeline"
	"edge-tuner/internal/report"
	"edge-tuner/internal/sampler"
	"edge-tuner/internal/search"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		groupFlags []string
		outDir     string
		textfile   string
		plotPath   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search --group IMG,IMG --group IMG,IMG [...]",
		Short: "Search for the kernel sizes that best separate image groups",
		Long: `Run a bounded random search over Gaussian blur and Laplacian kernel sizes.

Every --group takes a comma separated list of at least two images that should
look alike, optionally prefixed with a name ("cats=a.png,b.png"). At least two
groups are required and all images must share the same dimensions.

Each trial samples blur 2k+1 (k in [blur_k_min, blur_k_max]) and Laplacian
2k+1 (k in [laplacian_k_min, laplacian_k_max]) and computes
cost = intra² - inter, where intra and inter are the mean edge map
differences within and across groups. The lowest cost wins.

Examples:
  edge-tuner search --group a1.png,a2.png --group b1.png,b2.png --trials 50
  edge-tuner search --group cats=c1.png,c2.png --group dogs=d1.png,d2.png --workers 4 --seed 7
  edge-tuner search --config tune.yaml --group ... --out best/ --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.lifecycle.Shutdown()
			flags := cmd.Flags()

			cfg := a.cfg
			if flags.Changed("trials") {
				cfg.Search.Trials, _ = flags.GetInt("trials")
			}
			if flags.Changed("workers") {
				cfg.Search.Workers, _ = flags.GetInt("workers")
			}
			if flags.Changed("seed") {
				cfg.Search.Seed, _ = flags.GetUint64("seed")
			}
			if flags.Changed("mode") {
				cfg.Search.Mode, _ = flags.GetString("mode")
			}
			if outDir != "" {
				cfg.Output.DisplayDir = outDir
			}
			if textfile != "" {
				cfg.Metrics.Textfile = textfile
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			specs, err := parseGroupSpecs(groupFlags)
			if err != nil {
				return err
			}
			groups, err := pipeline.NewLoader(a.logger).LoadGroups(specs)
			if err != nil {
				return err
			}
			a.lifecycle.Register("images", groups.Close)

			seed := cfg.Search.Seed
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			smp, err := sampler.New(seed, cfg.Sampler)
			if err != nil {
				return err
			}
			mode, err := search.ParseMode(cfg.Search.Mode)
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			recorder := metrics.NewRecorder()
			history := report.NewHistory()
			runLog := logger.WithFields(a.logger, map[string]interface{}{"run_id": runID})
			driver, err := search.NewDriver(evaluator.New(runLog), smp, search.Options{
				Workers:  cfg.Search.Workers,
				Mode:     mode,
				Observer: search.Observers{search.NewLogObserver(a.logger, runID), recorder, history},
				Logger:   a.logger,
				RunID:    runID,
			})
			if err != nil {
				return err
			}

			ctx := a.lifecycle.Context()
			result, searchErr := driver.Search(ctx, groups, cfg.Search.Trials)

			if cfg.Metrics.Textfile != "" {
				if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
					a.logger.Error("CLI", err, map[string]interface{}{"textfile": cfg.Metrics.Textfile})
				}
			}
			if searchErr != nil {
				return searchErr
			}

			if plotPath != "" {
				if err := history.Plot(fmt.Sprintf("edge-tuner search (seed %d)", seed), plotPath); err != nil {
					return fmt.Errorf("plot: %w", err)
				}
			}

			if err := printResult(cmd.OutOrStdout(), result, seed, jsonOutput); err != nil {
				return err
			}

			if cfg.Output.DisplayDir != "" {
				var images []*models.Image
				for _, g := range groups {
					images = append(images, g.Images...)
				}
				paths, err := a.renderEdges(ctx, images, result.BestParameters, cfg.Output.DisplayDir)
				if err != nil {
					return err
				}
				a.logger.Info("CLI", "edge maps written", map[string]interface{}{
					"count": len(paths),
					"dir":   cfg.Output.DisplayDir,
				})
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&groupFlags, "group", nil, "comma separated images of one group, optionally NAME=...")
	cmd.Flags().Int("trials", 20, "number of random trials")
	cmd.Flags().Int("workers", 1, "concurrent trials")
	cmd.Flags().Uint64("seed", 0, "random seed (0 picks one)")
	cmd.Flags().String("mode", string(search.ModeStrict), "strict aborts on a failing trial, lenient skips it")
	cmd.Flags().StringVar(&outDir, "out", "", "write edge maps of the best parameters here")
	cmd.Flags().StringVar(&textfile, "metrics-textfile", "", "write Prometheus metrics to this file")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write a cost per trial plot (png, svg or pdf)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

// parseGroupSpecs turns "name=a,b" or "a,b" flag values into group specs.
func parseGroupSpecs(values []string) ([]pipeline.GroupSpec, error) {
	specs := make([]pipeline.GroupSpec, 0, len(values))
	for i, v := range values {
		name := fmt.Sprintf("group%d", i+1)
		list := v
		if n, rest, ok := strings.Cut(v, "="); ok {
			name, list = strings.TrimSpace(n), rest
		}

		var paths []string
		for _, p := range strings.Split(list, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		if name == "" || len(paths) == 0 {
			return nil, fmt.Errorf("invalid --group %q", v)
		}
		specs = append(specs, pipeline.GroupSpec{Name: name, Paths: paths})
	}
	return specs, nil
}

func printResult(w io.Writer, r *search.Result, seed uint64, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*search.Result
			Seed uint64 `json:"seed"`
		}{r, seed})
	}

	fmt.Fprintf(w, "Best parameters: %s\n", r.BestParameters)
	fmt.Fprintf(w, "Cost: %g (intra %g, inter %g)\n", r.Best.Cost, r.Best.IntraAvg, r.Best.InterAvg)
	fmt.Fprintf(w, "Best trial: %d of %d (%d failed)\n", r.BestTrial+1, r.Trials, r.Failed)
	fmt.Fprintf(w, "Seed: %d\n", seed)
	fmt.Fprintf(w, "Run: %s\n", r.RunID)
	return nil
}
