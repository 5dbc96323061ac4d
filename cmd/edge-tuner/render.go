package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"edge-tuner/internal/features"
	"edge-tuner/internal/models"
	"edge-tuner/internal/pipeline"
)

// renderEdges normalizes images with params and writes them to dir, rescaled
// jointly so the outputs can be compared by eye.
func (a *app) renderEdges(ctx context.Context, images []*models.Image, params models.ParameterSet, dir string) ([]string, error) {
	maps := make([]*models.FeatureMap, 0, len(images))
	defer func() { models.CloseAll(maps) }()

	names := make([]string, 0, len(images))
	for i, img := range images {
		fm, err := features.Normalize(ctx, img, params)
		if err != nil {
			return nil, err
		}
		maps = append(maps, fm)
		names = append(names, edgeFileName(i, img.Name))
	}

	display, err := features.ForDisplay(maps)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, m := range display {
			m.Close()
		}
	}()

	return pipeline.NewSaver(a.logger).SaveAll(dir, names, display)
}

// edgeFileName keeps outputs unique when inputs from different directories
// share a base name.
func edgeFileName(i int, source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%02d_%s_edges.png", i, base)
}
