package ledger

import (
	"strconv"
	"strings"
)

// OverlapTags computes, for each row, the cross-category annotation: a
// parenthesized list of "{initial}{ordinal}" entries naming where else
// the row's code appears, with the ordinal being the code's 1-based
// insertion position inside that bucket. Rows whose code appears nowhere
// else get an empty string. The result is index-aligned with rows.
func OverlapTags(rows []ProblemRecord) []string {
	type position struct {
		ordinal int
	}
	buckets := make(map[Category]map[string]position)
	for _, rec := range rows {
		bucket := buckets[rec.Category]
		if bucket == nil {
			bucket = make(map[string]position)
			buckets[rec.Category] = bucket
		}
		if _, seen := bucket[rec.Code]; !seen {
			bucket[rec.Code] = position{ordinal: len(bucket) + 1}
		}
	}

	tags := make([]string, len(rows))
	for i, rec := range rows {
		var entries []string
		for _, category := range categoryOrder {
			if category == rec.Category {
				continue
			}
			if pos, ok := buckets[category][rec.Code]; ok {
				entries = append(entries, category.Initial()+strconv.Itoa(pos.ordinal))
			}
		}
		if len(entries) > 0 {
			tags[i] = "(" + strings.Join(entries, ", ") + ")"
		}
	}
	return tags
}
