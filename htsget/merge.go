package htsget

import "sort"

// MergeAll sorts positions by (Start, End), merges any that touch or
// overlap, and returns Header-class ranges before Body-class ranges —
// matching the wire order htsget clients expect (header bytes first).
// Positions are merged within their own class only; a Header range and
// a Body range are never combined even if their byte spans touch.
func MergeAll(positions []BytesPosition) []BytesPosition {
	if len(positions) == 0 {
		return nil
	}

	var headers, bodies []BytesPosition
	for _, p := range positions {
		if p.HasClass && p.Class == ClassHeader {
			headers = append(headers, p)
		} else {
			bodies = append(bodies, p)
		}
	}

	out := make([]BytesPosition, 0, len(positions))
	out = append(out, mergeSameClass(headers)...)
	out = append(out, mergeSameClass(bodies)...)
	return out
}

func mergeSameClass(positions []BytesPosition) []BytesPosition {
	if len(positions) == 0 {
		return nil
	}
	sorted := make([]BytesPosition, len(positions))
	copy(sorted, positions)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := []BytesPosition{sorted[0]}
	for _, p := range sorted[1:] {
		last := &merged[len(merged)-1]
		if p.Start <= last.End {
			if p.End > last.End {
				last.End = p.End
			}
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

// UpdateClasses propagates a Header-to-Body class transition across an
// ordered list of positions: every position ending at or before
// headerEnd is marked Header, every position starting at or after it is
// marked Body. A position that straddles headerEnd (header and body
// bytes both fall in the same merged range) is left unclassified: it is neither purely
// header nor purely body, so its Url must carry no class tag at all
// rather than a misleading single-class label.
func UpdateClasses(positions []BytesPosition, headerEnd uint64) []BytesPosition {
	out := make([]BytesPosition, len(positions))
	for i, p := range positions {
		switch {
		case p.End <= headerEnd:
			out[i] = p.WithClass(ClassHeader)
		case p.Start >= headerEnd:
			out[i] = p.WithClass(ClassBody)
		default:
			p.HasClass = false
			out[i] = p
		}
	}
	return out
}
