// Package bgg provides a client for the BoardGameGeek XML API and the
// mappers that turn its responses into marketplace domain types.
package bgg

// GameType is the BGG item type of a game.
type GameType string

const (
	TypeBoardGame          GameType = "boardgame"
	TypeBoardGameExpansion GameType = "boardgameexpansion"
)

// FilterGameType restricts search results to base games or expansions.
type FilterGameType string

const (
	FilterAll       FilterGameType = ""
	FilterBaseGame  FilterGameType = "base-game"
	FilterExpansion FilterGameType = "expansion"
)

// Filters are the caller-supplied search constraints.
type Filters struct {
	GameType FilterGameType `json:"gameType,omitempty"`
}

// SearchResult represents a game in search results.
type SearchResult struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	YearPublished           int      `json:"year_published,omitempty"`
	Rank                    int      `json:"rank,omitempty"` // 0 = Not Ranked
	BayesAverage            float64  `json:"bayes_average,omitempty"`
	Average                 float64  `json:"average,omitempty"`
	Type                    GameType `json:"type"`
	Thumbnail               string   `json:"thumbnail,omitempty"`
	Image                   string   `json:"image,omitempty"`
	IsExpansion             bool     `json:"is_expansion"`
	HasInboundExpansionLink bool     `json:"has_inbound_expansion_link"`
	SearchScore             float64  `json:"search_score"`
}

// InboundLink is a cross-reference from another BGG item pointing at this one.
type InboundLink struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value string `json:"value"`
}

// GameDetails represents detailed information about a board game,
// including its versions and localized names.
type GameDetails struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	YearPublished int    `json:"year_published"`
	MinPlayers    int    `json:"min_players"`
	MaxPlayers    int    `json:"max_players"`
	PlayingTime   int    `json:"playing_time"`
	MinPlayTime   int    `json:"min_play_time"`
	MaxPlayTime   int    `json:"max_play_time"`
	MinAge        int    `json:"min_age"`
	Description   string `json:"description"`
	Thumbnail     string `json:"thumbnail"`
	Image         string `json:"image"`

	Rating       float64 `json:"rating"`
	BayesAverage float64 `json:"bayes_average,omitempty"`
	UsersRated   int     `json:"users_rated"`
	Weight       float64 `json:"weight"`
	Rank         int     `json:"rank"` // 0 = Not Ranked

	Mechanics      []string      `json:"mechanics"`
	Categories     []string      `json:"categories"`
	Designers      []string      `json:"designers"`
	Artists        []string      `json:"artists"`
	Publishers     []string      `json:"publishers"`
	AlternateNames []string      `json:"alternate_names"`
	Versions       []GameVersion `json:"versions"`

	Type                    GameType      `json:"type"`
	IsExpansion             bool          `json:"is_expansion"`
	HasInboundExpansionLink bool          `json:"has_inbound_expansion_link"`
	InboundExpansionLinks   []InboundLink `json:"inbound_expansion_links,omitempty"`
}

// Dimensions is the metric rendering of a version's box size.
type Dimensions struct {
	Metric        string `json:"metric"`
	HasDimensions bool   `json:"has_dimensions"`
}

// WeightInfo is the metric rendering of a version's weight.
type WeightInfo struct {
	Metric   string `json:"metric"`
	RawValue string `json:"raw_value"`
}

// GameVersion is a distinct physical printing of a game.
type GameVersion struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	YearPublished int      `json:"year_published"`
	Publishers    []string `json:"publishers"`
	Languages     []string `json:"languages"`
	ProductCode   string   `json:"product_code"`
	Thumbnail     string   `json:"thumbnail"`
	Image         string   `json:"image"`

	// Raw values as reported by BGG (inches and pounds unless a unit says otherwise).
	Width  string `json:"width"`
	Length string `json:"length"`
	Depth  string `json:"depth"`
	Weight string `json:"weight"`

	PrimaryLanguage string      `json:"primary_language,omitempty"`
	IsMultilingual  bool        `json:"is_multilingual"`
	LanguageCount   int         `json:"language_count"`
	Dimensions      *Dimensions `json:"dimensions,omitempty"`
	WeightInfo      *WeightInfo `json:"weight_info,omitempty"`
}

// ItemMetadata is the slim per-game record used to correct and enrich
// search hits.
type ItemMetadata struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Type                    GameType `json:"type"`
	YearPublished           int      `json:"year_published,omitempty"`
	IsExpansion             bool     `json:"is_expansion"`
	HasInboundExpansionLink bool     `json:"has_inbound_expansion_link"`
	Rank                    int      `json:"rank,omitempty"`
	BayesAverage            float64  `json:"bayes_average,omitempty"`
	Average                 float64  `json:"average,omitempty"`
	Thumbnail               string   `json:"thumbnail,omitempty"`
	Image                   string   `json:"image,omitempty"`
	Mechanics               []string `json:"mechanics,omitempty"`
	Categories              []string `json:"categories,omitempty"`
}

// Metadata returns the slim metadata view of the game.
func (g *GameDetails) Metadata() ItemMetadata {
	return ItemMetadata{
		ID:                      g.ID,
		Name:                    g.Name,
		Type:                    g.Type,
		YearPublished:           g.YearPublished,
		IsExpansion:             g.IsExpansion,
		HasInboundExpansionLink: g.HasInboundExpansionLink,
		Rank:                    g.Rank,
		BayesAverage:            g.BayesAverage,
		Average:                 g.Rating,
		Thumbnail:               g.Thumbnail,
		Image:                   g.Image,
		Mechanics:               append([]string(nil), g.Mechanics...),
		Categories:              append([]string(nil), g.Categories...),
	}
}
