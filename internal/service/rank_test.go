package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		result bgg.SearchResult
		query  string
		want   float64
	}{
		{"exact name, case-insensitive", bgg.SearchResult{Name: "CATAN"}, "catan", 1_000_000 + 10_000},
		{"prefix", bgg.SearchResult{Name: "Catan Junior"}, "catan", 500_000 + 10_000},
		{"contains", bgg.SearchResult{Name: "Star Trek: Catan"}, "catan", 100_000 + 10_000},
		{"no name match", bgg.SearchResult{Name: "Carcassonne"}, "catan", 10_000},
		{"expansion loses base bonus", bgg.SearchResult{Name: "Carcassonne", IsExpansion: true}, "catan", 0},
		{"rank bonus", bgg.SearchResult{Name: "x", Rank: 100, IsExpansion: true}, "catan", 900},
		{"rank beyond ceiling", bgg.SearchResult{Name: "x", Rank: 5000, IsExpansion: true}, "catan", 0},
		{"bayes bonus", bgg.SearchResult{Name: "x", BayesAverage: 7.5, IsExpansion: true}, "catan", 750},
		{"year bonus", bgg.SearchResult{Name: "x", YearPublished: 2000, IsExpansion: true}, "catan", 10},
		{"year before 1900", bgg.SearchResult{Name: "x", YearPublished: 1850, IsExpansion: true}, "catan", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.result, tt.query), 1e-9)
		})
	}
}

func TestRankResults(t *testing.T) {
	results := []bgg.SearchResult{
		{ID: "1", Name: "Catan: Seafarers", IsExpansion: true, Rank: 10, BayesAverage: 8},
		{ID: "2", Name: "Catan Junior", Rank: 2000},
		{ID: "3", Name: "Catan", Rank: 900},
		{ID: "4", Name: "Other A"},
		{ID: "5", Name: "Other B"},
	}

	rankResults(results, "Catan")

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	// Exact beats prefix regardless of rating; ties keep their order.
	assert.Equal(t, []string{"3", "2", "1", "4", "5"}, ids)
	for _, r := range results {
		assert.NotZero(t, r.SearchScore, r.ID)
	}
}
