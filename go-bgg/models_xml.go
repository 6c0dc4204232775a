package bgg

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// XML structures for parsing BGG API responses.
// These are internal types used for XML parsing.

// xmlScalar is a field BGG encodes either as element text, as a nested
// <value> element or as a value attribute.
type xmlScalar struct {
	Text  string `xml:",chardata"`
	Child string `xml:"value"`
	Attr  string `xml:"value,attr"`
}

// String returns the first non-empty representation, entity-decoded.
func (s xmlScalar) String() string {
	for _, v := range []string{s.Text, s.Child, s.Attr} {
		if v = strings.TrimSpace(v); v != "" {
			return DecodeEntities(v)
		}
	}
	return ""
}

// Int returns the scalar as an integer, or 0 when absent or malformed.
func (s xmlScalar) Int() int {
	v := s.String()
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

// Float returns the scalar as a float, or 0 when absent or malformed.
func (s xmlScalar) Float() float64 {
	f, err := strconv.ParseFloat(s.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

// xmlItems is the root element for search and thing responses.
type xmlItems struct {
	XMLName xml.Name  `xml:"items"`
	Items   []xmlItem `xml:"item"`
}

// xmlItem represents a search hit or a detailed game item.
type xmlItem struct {
	Type          string        `xml:"type,attr"`
	ID            string        `xml:"id,attr"`
	Thumbnail     xmlScalar     `xml:"thumbnail"`
	Image         xmlScalar     `xml:"image"`
	Names         []xmlName     `xml:"name"`
	Description   xmlScalar     `xml:"description"`
	YearPublished xmlScalar     `xml:"yearpublished"`
	MinPlayers    xmlScalar     `xml:"minplayers"`
	MaxPlayers    xmlScalar     `xml:"maxplayers"`
	PlayingTime   xmlScalar     `xml:"playingtime"`
	MinPlayTime   xmlScalar     `xml:"minplaytime"`
	MaxPlayTime   xmlScalar     `xml:"maxplaytime"`
	MinAge        xmlScalar     `xml:"minage"`
	Links         []xmlLink     `xml:"link"`
	Statistics    xmlStatistics `xml:"statistics"`
	Versions      []xmlVersion  `xml:"versions>item"`
}

// xmlName represents a name element with type and value attributes.
type xmlName struct {
	xmlScalar
	Type      string `xml:"type,attr"`
	SortIndex string `xml:"sortindex,attr"`
}

// xmlLink represents a link element (designer, category, mechanic, etc.).
type xmlLink struct {
	xmlScalar
	Type    string `xml:"type,attr"`
	ID      string `xml:"id,attr"`
	Inbound string `xml:"inbound,attr"`
}

func (l xmlLink) isInbound() bool {
	return strings.EqualFold(strings.TrimSpace(l.Inbound), "true")
}

// xmlStatistics contains game statistics.
type xmlStatistics struct {
	Ratings xmlRatings `xml:"ratings"`
}

// xmlRatings contains rating information.
type xmlRatings struct {
	UsersRated    xmlScalar `xml:"usersrated"`
	Average       xmlScalar `xml:"average"`
	BayesAverage  xmlScalar `xml:"bayesaverage"`
	Ranks         []xmlRank `xml:"ranks>rank"`
	AverageWeight xmlScalar `xml:"averageweight"`
}

// xmlRank represents a single rank entry.
type xmlRank struct {
	Type         string `xml:"type,attr"`
	ID           string `xml:"id,attr"`
	Name         string `xml:"name,attr"`
	FriendlyName string `xml:"friendlyname,attr"`
	Value        string `xml:"value,attr"`
}

// xmlVersion is one <versions><item> entry of a thing response.
type xmlVersion struct {
	Type          string    `xml:"type,attr"`
	ID            string    `xml:"id,attr"`
	Thumbnail     xmlScalar `xml:"thumbnail"`
	Image         xmlScalar `xml:"image"`
	Names         []xmlName `xml:"name"`
	YearPublished xmlScalar `xml:"yearpublished"`
	ProductCode   xmlScalar `xml:"productcode"`
	Width         xmlScalar `xml:"width"`
	Length        xmlScalar `xml:"length"`
	Depth         xmlScalar `xml:"depth"`
	Weight        xmlScalar `xml:"weight"`
	Links         []xmlLink `xml:"link"`
}
