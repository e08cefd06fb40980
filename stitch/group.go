package stitch

import (
	"sort"
	"strings"
)

// Group folds segments into groups of maxGroupSize consecutive segments. A
// new group starts every maxGroupSize segments; the final group may be
// smaller. Group text is the space-joined trimmed text of its members, so
// concatenating all group texts yields the same words as concatenating all
// segment texts. maxGroupSize <= 0 uses DefaultMaxGroupSize.
func Group(segments []Segment, maxGroupSize int) []MergedSegment {
	if maxGroupSize <= 0 {
		maxGroupSize = DefaultMaxGroupSize
	}
	if len(segments) == 0 {
		return []MergedSegment{}
	}

	groups := make([]MergedSegment, 0, (len(segments)+maxGroupSize-1)/maxGroupSize)
	for i := 0; i < len(segments); i += maxGroupSize {
		end := min(i+maxGroupSize, len(segments))
		members := segments[i:end]

		texts := make([]string, 0, len(members))
		for _, seg := range members {
			if t := strings.TrimSpace(seg.Text); t != "" {
				texts = append(texts, t)
			}
		}
		groups = append(groups, MergedSegment{
			Start: members[0].Start,
			End:   members[len(members)-1].End,
			Text:  strings.Join(texts, " "),
		})
	}
	return groups
}

// Timeline inserts a Missing marker for every gap into the grouped
// sequence, ordered by start time. Groups sort before markers that start at
// the same time. Group boundaries are not affected by gaps.
func Timeline(groups []MergedSegment, gaps []Gap) []MergedSegment {
	out := make([]MergedSegment, 0, len(groups)+len(gaps))
	out = append(out, groups...)
	for _, g := range gaps {
		out = append(out, MergedSegment{Start: g.Start, End: g.End, Missing: true})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return !out[i].Missing && out[j].Missing
	})
	return out
}

// FullText joins the non-empty group texts of a sequence with single spaces.
func FullText(seq []MergedSegment) string {
	texts := make([]string, 0, len(seq))
	for _, s := range seq {
		if t := strings.TrimSpace(s.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, " ")
}
