package service

import (
	"sort"
	"strings"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
)

// Score weights. A name match always outweighs every statistic.
const (
	scoreExactName    = 1_000_000
	scorePrefixName   = 500_000
	scoreContainsName = 100_000
	scoreBaseGame     = 10_000
	rankCeiling       = 1000
	bayesWeight       = 100
	yearBase          = 1900
	yearWeight        = 0.1
)

// Score rates how well r answers query. The bonuses are additive.
func Score(r bgg.SearchResult, query string) float64 {
	name := strings.ToLower(strings.TrimSpace(r.Name))
	q := strings.ToLower(strings.TrimSpace(query))

	var score float64
	switch {
	case name == q:
		score += scoreExactName
	case strings.HasPrefix(name, q):
		score += scorePrefixName
	case strings.Contains(name, q):
		score += scoreContainsName
	}
	if !r.IsExpansion {
		score += scoreBaseGame
	}
	if r.Rank > 0 {
		score += float64(max(0, rankCeiling-r.Rank))
	}
	score += r.BayesAverage * bayesWeight
	score += float64(max(0, r.YearPublished-yearBase)) * yearWeight
	return score
}

// rankResults scores every result and sorts them best first. Ties keep
// their upstream order.
func rankResults(results []bgg.SearchResult, query string) {
	for i := range results {
		results[i].SearchScore = Score(results[i], query)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SearchScore > results[j].SearchScore
	})
}
