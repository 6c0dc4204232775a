package bgg

import (
	"context"
	"net/url"
	"strings"
)

// SearchGames queries the /search endpoint and returns the raw XML.
// gameType is a BGG type list such as "boardgame" or
// "boardgame,boardgameexpansion"; exact restricts matches to the exact name.
func (c *Client) SearchGames(ctx context.Context, query, gameType string, exact bool) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	if gameType != "" {
		params.Set("type", gameType)
	}
	if exact {
		params.Set("exact", "1")
	}
	return c.Get(ctx, "/search", params)
}

// ParseSearchResults maps a /search document to search results. Items
// without an id are skipped; an id listed under several types is kept once
// and counts as an expansion if any of its entries says so.
func ParseSearchResults(raw string) []SearchResult {
	items, err := decodeItems(raw)
	if err != nil {
		return []SearchResult{}
	}

	results := make([]SearchResult, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			continue
		}
		expansion := GameType(item.Type) == TypeBoardGameExpansion
		inbound := hasInboundExpansion(item.Links)

		if i, ok := seen[id]; ok {
			if expansion {
				results[i].Type = TypeBoardGameExpansion
				results[i].IsExpansion = true
			}
			continue
		}

		result := SearchResult{
			ID:                      id,
			Name:                    primaryName(item.Names),
			YearPublished:           item.YearPublished.Int(),
			Type:                    normalizeType(item.Type),
			Thumbnail:               item.Thumbnail.String(),
			Image:                   item.Image.String(),
			IsExpansion:             expansion || inbound,
			HasInboundExpansionLink: inbound,
			Rank:                    extractBoardGameRank(item.Statistics.Ratings.Ranks),
			BayesAverage:            item.Statistics.Ratings.BayesAverage.Float(),
			Average:                 item.Statistics.Ratings.Average.Float(),
		}
		seen[id] = len(results)
		results = append(results, result)
	}
	return results
}

// normalizeType maps BGG's type attribute onto the two supported types.
func normalizeType(t string) GameType {
	if GameType(t) == TypeBoardGameExpansion {
		return TypeBoardGameExpansion
	}
	return TypeBoardGame
}
