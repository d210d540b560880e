package ranking

import (
	"math"
	"sort"

	"github.com/boardroom-ai/boardroom/internal/models"
)

// Aggregate combines the parsed rankings into one consensus ordering.
// labelOrder carries the labels in roster order; it determines tie-breaks
// and the placement of responses nobody ranked.
//
// A response's average rank is the mean of its 1-based position across the
// rankings that mention it. A ranking that omits a response contributes
// nothing for it; there is no worst-rank penalty. Responses with zero
// mentions are reported with VoteCount 0 after all ranked entries, in
// roster order.
func Aggregate(rankings []models.RankingResult, labelMap models.LabelMap, labelOrder []string) []models.AggregateEntry {
	positions := make(map[string][]int, len(labelOrder))

	for _, r := range rankings {
		for pos, label := range r.Parsed {
			if _, ok := labelMap[label]; !ok {
				continue
			}
			positions[label] = append(positions[label], pos+1)
		}
	}

	ranked := make([]models.AggregateEntry, 0, len(labelOrder))
	var unranked []models.AggregateEntry

	for _, label := range labelOrder {
		target, ok := labelMap[label]
		if !ok {
			continue
		}
		entry := models.AggregateEntry{
			Title: target.Title,
			Model: target.Model,
		}
		if ps := positions[label]; len(ps) > 0 {
			sum := 0
			for _, p := range ps {
				sum += p
			}
			avg := float64(sum) / float64(len(ps))
			entry.AverageRank = math.Round(avg*100) / 100
			entry.VoteCount = len(ps)
			ranked = append(ranked, entry)
		} else {
			unranked = append(unranked, entry)
		}
	}

	// Stable sort preserves roster order among equal average ranks.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AverageRank < ranked[j].AverageRank
	})

	return append(ranked, unranked...)
}
