package main

import (
	"fmt"

	"edge-tuner/internal/features"
	"edge-tuner/internal/models"
	"edge-tuner/internal/pipeline"

	"github.com/spf13/cobra"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		params models.ParameterSet
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "compare IMAGE1 IMAGE2",
		Short: "Print distributions and the edge difference of two images",
		Long: `Normalize two images, print the pixel distribution of each input and each
edge map, and print the mean absolute difference of the edge maps.

With --out (or output.display_dir in the config) both edge maps are also
written as 8-bit PNGs sharing one intensity scale.

Examples:
  edge-tuner compare left.png right.png
  edge-tuner compare left.png right.png --blur 9 --laplacian 5 --out display/`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.lifecycle.Shutdown()
			ctx := a.lifecycle.Context()
			out := cmd.OutOrStdout()

			if err := params.Validate(); err != nil {
				return err
			}

			loader := pipeline.NewLoader(a.logger)
			images := make([]*models.Image, 0, len(args))
			defer func() {
				for _, img := range images {
					img.Close()
				}
			}()
			for _, p := range args {
				img, err := loader.Load(p)
				if err != nil {
					return err
				}
				images = append(images, img)
			}

			maps := make([]*models.FeatureMap, 0, len(images))
			defer func() { models.CloseAll(maps) }()

			for i, img := range images {
				d, err := features.DescribeImage(img)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Image %d: %s\n", i+1, d)
			}
			for i, img := range images {
				fm, err := features.Normalize(ctx, img, params)
				if err != nil {
					return err
				}
				maps = append(maps, fm)

				d, err := features.Describe(fm)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Edges %d: %s\n", i+1, d)
			}

			dir := outDir
			if dir == "" {
				dir = a.cfg.Output.DisplayDir
			}
			if dir != "" {
				paths, err := a.renderEdges(ctx, images, params, dir)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintf(out, "Wrote %s\n", p)
				}
			}

			diff, err := features.Difference(maps[0], maps[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Difference: %g\n", diff)
			return nil
		},
	}

	cmd.Flags().IntVar(&params.GaussianBlurSize, "blur", 5, "Gaussian kernel size (odd)")
	cmd.Flags().IntVar(&params.LaplacianFilterSize, "laplacian", 3, "Laplacian aperture (odd, <= 31)")
	cmd.Flags().StringVar(&outDir, "out", "", "directory for display PNGs")
	return cmd
}
