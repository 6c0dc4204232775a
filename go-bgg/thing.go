package bgg

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"
)

// GetGameDetails fetches one game with statistics and versions embedded.
func (c *Client) GetGameDetails(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", newInvalidGameIDError("game id cannot be empty")
	}

	params := url.Values{}
	params.Set("id", id)
	params.Set("stats", "1")
	params.Set("versions", "1")
	return c.Get(ctx, "/thing", params)
}

// GetBatchMetadata fetches statistics for many games. Ids are split into
// batches that are requested concurrently; the <item> elements of every
// batch are joined into one <items> document in batch order.
func (c *Client) GetBatchMetadata(ctx context.Context, ids []string) (string, error) {
	if len(ids) == 0 {
		return "<items></items>", nil
	}

	batches := chunk(ids, c.batchSize)
	docs := make([]string, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			params := url.Values{}
			params.Set("id", strings.Join(batch, ","))
			params.Set("stats", "1")
			doc, err := c.Get(gctx, "/thing", params)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return spliceItems(docs), nil
}

func chunk(ids []string, size int) [][]string {
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

// ParseGameDetails maps a /thing document to game details. A document
// without items, or one that cannot be decoded, yields an empty list.
func ParseGameDetails(raw string) []GameDetails {
	games, err := DecodeItems(raw)
	if err != nil {
		return []GameDetails{}
	}
	return games
}

// ParseItemMetadata maps a /thing document to the slim metadata records
// used to enrich search hits.
func ParseItemMetadata(raw string) []ItemMetadata {
	items, err := decodeItems(raw)
	if err != nil {
		return []ItemMetadata{}
	}
	metas := make([]ItemMetadata, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		game := convertXMLToGameDetails(item)
		metas = append(metas, game.Metadata())
	}
	return metas
}

// convertXMLToGameDetails converts an XML thing item to a GameDetails struct.
func convertXMLToGameDetails(item xmlItem) GameDetails {
	game := GameDetails{
		ID:            strings.TrimSpace(item.ID),
		Name:          primaryName(item.Names),
		YearPublished: item.YearPublished.Int(),
		Description:   item.Description.String(),
		Thumbnail:     item.Thumbnail.String(),
		Image:         item.Image.String(),
		MinPlayers:    item.MinPlayers.Int(),
		MaxPlayers:    item.MaxPlayers.Int(),
		PlayingTime:   item.PlayingTime.Int(),
		MinPlayTime:   item.MinPlayTime.Int(),
		MaxPlayTime:   item.MaxPlayTime.Int(),
		MinAge:        item.MinAge.Int(),
		Type:          normalizeType(item.Type),
	}
	game.AlternateNames = alternateNames(item.Names)

	// Extract links by type
	for _, link := range item.Links {
		value := link.String()
		if link.isInbound() {
			if isExpansionLinkType(link.Type) {
				game.InboundExpansionLinks = append(game.InboundExpansionLinks, InboundLink{
					Type:  link.Type,
					ID:    link.ID,
					Value: value,
				})
			}
			continue
		}
		if value == "" {
			continue
		}
		switch link.Type {
		case "boardgamedesigner":
			game.Designers = append(game.Designers, value)
		case "boardgameartist":
			game.Artists = append(game.Artists, value)
		case "boardgamepublisher":
			game.Publishers = append(game.Publishers, value)
		case "boardgamecategory":
			game.Categories = append(game.Categories, value)
		case "boardgamemechanic":
			game.Mechanics = append(game.Mechanics, value)
		}
	}
	game.HasInboundExpansionLink = len(game.InboundExpansionLinks) > 0
	game.IsExpansion = game.Type == TypeBoardGameExpansion || game.HasInboundExpansionLink

	// Extract statistics
	ratings := item.Statistics.Ratings
	game.Rating = ratings.Average.Float()
	game.BayesAverage = ratings.BayesAverage.Float()
	game.UsersRated = ratings.UsersRated.Int()
	game.Weight = ratings.AverageWeight.Float()
	game.Rank = extractBoardGameRank(ratings.Ranks)

	game.Versions = make([]GameVersion, 0, len(item.Versions))
	for _, v := range item.Versions {
		if version, ok := convertXMLToVersion(v); ok {
			game.Versions = append(game.Versions, version)
		}
	}

	return game
}

// convertXMLToVersion converts a <versions><item> entry. Entries without an
// id are dropped.
func convertXMLToVersion(v xmlVersion) (GameVersion, bool) {
	id := strings.TrimSpace(v.ID)
	if id == "" {
		return GameVersion{}, false
	}

	version := GameVersion{
		ID:            id,
		Name:          primaryName(v.Names),
		YearPublished: v.YearPublished.Int(),
		ProductCode:   v.ProductCode.String(),
		Thumbnail:     v.Thumbnail.String(),
		Image:         v.Image.String(),
		Width:         v.Width.String(),
		Length:        v.Length.String(),
		Depth:         v.Depth.String(),
		Weight:        v.Weight.String(),
		Publishers:    []string{},
		Languages:     []string{},
	}

	for _, link := range v.Links {
		value := link.String()
		if value == "" {
			continue
		}
		switch link.Type {
		case "language":
			version.Languages = append(version.Languages, value)
		case "boardgamepublisher":
			version.Publishers = append(version.Publishers, value)
		}
	}

	version.LanguageCount = len(version.Languages)
	version.IsMultilingual = version.LanguageCount > 1
	if version.LanguageCount > 0 {
		version.PrimaryLanguage = version.Languages[0]
	}
	version.Dimensions = BuildDimensions(version.Width, version.Length, version.Depth)
	version.WeightInfo = BuildWeightInfo(version.Weight)

	return version, true
}

// primaryName returns the name tagged primary, else the first non-empty one.
func primaryName(names []xmlName) string {
	for _, name := range names {
		if name.Type == "primary" {
			if v := name.String(); v != "" {
				return v
			}
		}
	}
	for _, name := range names {
		if v := name.String(); v != "" {
			return v
		}
	}
	return ""
}

// alternateNames returns every alternate name once, in document order.
func alternateNames(names []xmlName) []string {
	result := []string{}
	seen := make(map[string]struct{})
	for _, name := range names {
		if name.Type != "alternate" {
			continue
		}
		v := name.String()
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

func isExpansionLinkType(t string) bool {
	return t == "boardgameexpansion" || t == "boardgameintegration"
}

func hasInboundExpansion(links []xmlLink) bool {
	for _, link := range links {
		if link.isInbound() && isExpansionLinkType(link.Type) {
			return true
		}
	}
	return false
}
