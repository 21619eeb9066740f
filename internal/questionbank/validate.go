package questionbank

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ErrInvalidCatalog is returned when a catalog fails its integrity checks.
var ErrInvalidCatalog = errors.New("invalid question catalog")

const weightSumTolerance = 1e-9

// validScoreSet is the only multiset of raw scores a question may carry.
var validScoreSet = []float64{0, 1, 2}

// validateCatalog performs all structural checks on the catalog.
// Returns a combined error describing every problem found, or nil if valid.
func validateCatalog(c Catalog) error {
	var errs []string

	if strings.TrimSpace(c.Profile) == "" {
		errs = append(errs, "catalog profile is empty")
	}
	if len(c.Areas) == 0 {
		errs = append(errs, "catalog declares no areas")
	}
	if len(c.Questions) == 0 {
		errs = append(errs, "catalog has no questions")
	}

	// Areas and their dimensions
	dims := make(map[string]map[string]bool, len(c.Areas))
	var weightSum float64
	for _, a := range c.Areas {
		if a.Key == "" {
			errs = append(errs, "area with empty key")
			continue
		}
		if _, dup := dims[a.Key]; dup {
			errs = append(errs, fmt.Sprintf("duplicate area key: %q", a.Key))
			continue
		}
		if a.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("area %q: weight must be > 0, got %g", a.Key, a.Weight))
		}
		weightSum += a.Weight
		if len(a.Dimensions) == 0 {
			errs = append(errs, fmt.Sprintf("area %q declares no dimensions", a.Key))
		}
		set := make(map[string]bool, len(a.Dimensions))
		for _, d := range a.Dimensions {
			if d.Key == "" {
				errs = append(errs, fmt.Sprintf("area %q has a dimension with empty key", a.Key))
				continue
			}
			if set[d.Key] {
				errs = append(errs, fmt.Sprintf("area %q: duplicate dimension key %q", a.Key, d.Key))
			}
			set[d.Key] = true
		}
		dims[a.Key] = set
	}
	if len(c.Areas) > 0 && math.Abs(weightSum-1.0) > weightSumTolerance {
		errs = append(errs, fmt.Sprintf("area weights must sum to 1.0, got %g", weightSum))
	}

	// Questions
	ids := make(map[int]bool, len(c.Questions))
	for _, q := range c.Questions {
		prefix := fmt.Sprintf("question %d", q.ID)
		if q.ID <= 0 {
			errs = append(errs, fmt.Sprintf("%s: id must be positive", prefix))
		}
		if ids[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question id: %d", q.ID))
		}
		ids[q.ID] = true

		areaDims, ok := dims[q.Area]
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("%s references undeclared area %q", prefix, q.Area))
		case !areaDims[q.Dimension]:
			errs = append(errs, fmt.Sprintf("%s references undeclared dimension %q in area %q", prefix, q.Dimension, q.Area))
		}

		if len(q.Options) != len(q.Scores) {
			errs = append(errs, fmt.Sprintf("%s: %d options but %d scores", prefix, len(q.Options), len(q.Scores)))
		}
		if len(q.Options) != 3 {
			errs = append(errs, fmt.Sprintf("%s: must have exactly 3 options, got %d", prefix, len(q.Options)))
		}
		sorted := slices.Clone(q.Scores)
		slices.Sort(sorted)
		if !slices.Equal(sorted, validScoreSet) {
			errs = append(errs, fmt.Sprintf("%s: scores must be a permutation of {0,1,2}, got %v", prefix, q.Scores))
		} else if !isMonotonic(q.Scores) {
			errs = append(errs, fmt.Sprintf("%s: scores must be [2,1,0] or [0,1,2], got %v", prefix, q.Scores))
		}
		if q.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("%s: weight must be > 0, got %g", prefix, q.Weight))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalidCatalog, strings.Join(errs, "\n  "))
	}
	return nil
}

func isMonotonic(scores []float64) bool {
	inc, dec := true, true
	for i := 1; i < len(scores); i++ {
		if scores[i] <= scores[i-1] {
			inc = false
		}
		if scores[i] >= scores[i-1] {
			dec = false
		}
	}
	return inc || dec
}
