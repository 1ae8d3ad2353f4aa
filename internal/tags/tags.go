// Package tags derives the "layer: label" tags that control annotation
// visibility, and evaluates the per-render visibility state against them.
package tags

import (
	"fmt"
	"sort"
)

// Make returns the canonical tag for a label within a layer.
func Make(layer, label string) string {
	return layer + ": " + label
}

// HiddenSet is the set of tags the viewer toggled off.
type HiddenSet map[string]struct{}

// NewHiddenSet builds a hidden set from tags.
func NewHiddenSet(tags ...string) HiddenSet {
	s := make(HiddenSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// IsHidden reports whether tag is toggled off. A nil set hides nothing.
func (s HiddenSet) IsHidden(tag string) bool {
	if tag == "" {
		return false
	}
	_, ok := s[tag]
	return ok
}

// Hide adds tag to the set.
func (s HiddenSet) Hide(tag string) {
	s[tag] = struct{}{}
}

// Show removes tag from the set.
func (s HiddenSet) Show(tag string) {
	delete(s, tag)
}

// Sorted returns the hidden tags in sorted order.
func (s HiddenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// IsHidden reports whether the annotation with label in layer is hidden.
// Annotations without a label have no tag and are always visible.
func IsHidden(hidden HiddenSet, layer, label string) bool {
	if label == "" {
		return false
	}
	return hidden.IsHidden(Make(layer, label))
}

// Visibility is the caller-owned filter applied at render time.
type Visibility struct {
	Hidden         HiddenSet
	ScoreThreshold float64
}

// Validate checks that the threshold lies in [0,1].
func (v Visibility) Validate() error {
	if v.ScoreThreshold < 0 || v.ScoreThreshold > 1 {
		return fmt.Errorf("score threshold %v outside [0,1]", v.ScoreThreshold)
	}
	return nil
}

// PassesScore reports whether score clears the threshold. A missing score
// always passes.
func (v Visibility) PassesScore(score *float64) bool {
	return score == nil || *score > v.ScoreThreshold
}

// Drawn reports whether an item tagged (layer, label) carrying score is drawn:
// its tag is not hidden and it has no score or a score above the threshold.
func (v Visibility) Drawn(layer, label string, score *float64) bool {
	return !IsHidden(v.Hidden, layer, label) && v.PassesScore(score)
}
