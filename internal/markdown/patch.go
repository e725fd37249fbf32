package markdown

import (
	"errors"
	"fmt"
	"slices"
)

// Patch replaces source[Start:End] with NewText.
type Patch struct {
	Start   int
	End     int
	NewText []byte
}

// ApplyPatches returns a copy of original with every patch applied. Patches
// may be given in any order but must not overlap.
func ApplyPatches(original []byte, patches []Patch) ([]byte, error) {
	if len(patches) == 0 {
		return slices.Clone(original), nil
	}

	sorted := slices.Clone(patches)
	slices.SortStableFunc(sorted, func(a, b Patch) int { return a.Start - b.Start })

	prevEnd := 0
	for i, p := range sorted {
		if p.Start < 0 || p.End < p.Start || p.End > len(original) {
			return nil, fmt.Errorf("invalid patch bounds: [%d, %d) for content of length %d", p.Start, p.End, len(original))
		}
		if i > 0 && p.Start < prevEnd {
			return nil, errors.New("overlapping patches detected")
		}
		prevEnd = p.End
	}

	out := make([]byte, 0, len(original))
	last := 0
	for _, p := range sorted {
		out = append(out, original[last:p.Start]...)
		out = append(out, p.NewText...)
		last = p.End
	}
	out = append(out, original[last:]...)
	return out, nil
}
