package main

import (
	"fmt"

	"edge-tuner/internal/models"
	"edge-tuner/internal/pipeline"

	"github.com/spf13/cobra"
)

func newEdgesCmd(a *app) *cobra.Command {
	var (
		params models.ParameterSet
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "edges IMAGE...",
		Short: "Write jointly rescaled edge maps of images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.lifecycle.Shutdown()

			if err := params.Validate(); err != nil {
				return err
			}
			dir := outDir
			if dir == "" {
				dir = a.cfg.Output.DisplayDir
			}
			if dir == "" {
				return fmt.Errorf("--out is required when output.display_dir is not configured")
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

			paths, err := a.renderEdges(a.lifecycle.Context(), images, params, dir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&params.GaussianBlurSize, "blur", 5, "Gaussian kernel size (odd)")
	cmd.Flags().IntVar(&params.LaplacianFilterSize, "laplacian", 3, "Laplacian aperture (odd, <= 31)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory")
	return cmd
}
