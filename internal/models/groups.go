package models

import "fmt"

// Group is an ordered set of images expected to look alike.
type Group struct {
	Name   string
	Images []*Image
}

// GroupSet is the read-only input of one search run.
type GroupSet []Group

// Validate checks the set has at least two groups of at least two images
// each, and that every image shares the first image's dimensions.
func (gs GroupSet) Validate() error {
	if len(gs) < 2 {
		return fmt.Errorf("%w: need at least 2 groups, got %d", ErrDegenerateGroupSet, len(gs))
	}

	var ref *Image
	for gi, g := range gs {
		if len(g.Images) < 2 {
			return fmt.Errorf("%w: group %q (#%d) has %d image(s), need at least 2",
				ErrDegenerateGroupSet, g.Name, gi, len(g.Images))
		}
		for ii, img := range g.Images {
			if img == nil || img.Mat == nil {
				return fmt.Errorf("%w: group %q image #%d is nil", ErrDegenerateGroupSet, g.Name, ii)
			}
			if ref == nil {
				ref = img
				continue
			}
			if img.Width != ref.Width || img.Height != ref.Height {
				return fmt.Errorf("%w: %s is %dx%d, expected %dx%d like %s",
					ErrDimensionMismatch, img.Name, img.Width, img.Height, ref.Width, ref.Height, ref.Name)
			}
		}
	}
	return nil
}

// ImageCount returns the total number of images across all groups.
func (gs GroupSet) ImageCount() int {
	n := 0
	for _, g := range gs {
		n += len(g.Images)
	}
	return n
}

// Close releases every image in the set.
func (gs GroupSet) Close() {
	for _, g := range gs {
		for _, img := range g.Images {
			img.Close()
		}
	}
}
