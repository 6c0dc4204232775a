package bgg

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ToJSON renders parsed domain values as indented JSON for the smoke CLI.
func ToJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", newParseError("failed to marshal to JSON", err)
	}
	return string(data), nil
}

// extractBoardGameRank returns the board game rank from a list of XML ranks.
// Returns 0 if not ranked or not found.
func extractBoardGameRank(ranks []xmlRank) int {
	for _, rank := range ranks {
		if rank.Name == "boardgame" {
			if rank.Value != "Not Ranked" {
				if r, err := strconv.Atoi(rank.Value); err == nil {
					return r
				}
			}
			break
		}
	}
	return 0
}

// DecodeEntities decodes named, decimal and hex HTML entities. BGG double
// encodes some localized names, so a second pass runs when the first one
// still leaves an entity behind.
func DecodeEntities(s string) string {
	decoded := html.UnescapeString(s)
	if strings.Contains(decoded, "&") && entityPattern.MatchString(decoded) {
		decoded = html.UnescapeString(decoded)
	}
	// A triple-encoded newline ("&amp;amp;#10;") is still an entity after
	// two passes.
	return strings.ReplaceAll(decoded, "&#10;", "\n")
}

var entityPattern = regexp.MustCompile(`&(?:#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)

// CleanXML strips control characters other than tab, CR and LF, and escapes
// any bare '&' that does not start an entity reference.
func CleanXML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c < 0x20 && c != '\t' && c != '\n' && c != '\r', c == 0x7f:
			continue
		case c == '&':
			if loc := entityPattern.FindStringIndex(s[i:]); loc != nil && loc[0] == 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString("&amp;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var openTagPattern = regexp.MustCompile(`<([A-Za-z_][A-Za-z0-9_.:-]*)[^>]*>`)

// looksLikeXML reports whether s has an opening tag with a matching
// closing tag. Tags are scanned one at a time so a well-formed document
// returns at its root element.
func looksLikeXML(s string) bool {
	for rest := s; ; {
		loc := openTagPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			return false
		}
		tag, name := rest[loc[0]:loc[1]], rest[loc[2]:loc[3]]
		after := rest[loc[1]:]
		if !strings.HasSuffix(tag, "/>") && strings.Contains(after, "</"+name+">") {
			return true
		}
		rest = after
	}
}

// newDecoder returns a lenient decoder over already UTF-8 text.
func newDecoder(raw string) *xml.Decoder {
	dec := xml.NewDecoder(strings.NewReader(CleanXML(raw)))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.AutoClose = xml.HTMLAutoClose
	// Bodies are decoded to UTF-8 before they reach the parser, whatever
	// the declaration claims.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) {
		return r, nil
	}
	return dec
}

// decodeItems decodes an <items> document. A document whose root is a bare
// <item> is treated as a single-item list; any other root yields no items.
func decodeItems(raw string) ([]xmlItem, error) {
	dec := newDecoder(raw)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, newParseError("failed to read XML", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "items":
			var doc xmlItems
			if err := dec.DecodeElement(&doc, &start); err != nil {
				return nil, newParseError("failed to decode items", err)
			}
			return doc.Items, nil
		case "item":
			var item xmlItem
			if err := dec.DecodeElement(&item, &start); err != nil {
				return nil, newParseError("failed to decode item", err)
			}
			return []xmlItem{item}, nil
		default:
			return nil, nil
		}
	}
}

// DecodeItems is the strict counterpart of ParseGameDetails: a document that
// cannot be decoded is reported as a PARSE_ERROR instead of an empty list.
func DecodeItems(raw string) ([]GameDetails, error) {
	items, err := decodeItems(raw)
	if err != nil {
		return nil, err
	}
	games := make([]GameDetails, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		games = append(games, convertXMLToGameDetails(item))
	}
	return games, nil
}

// spliceItems joins the <item> elements of several <items> documents into
// one document, in argument order.
func spliceItems(docs []string) string {
	var b strings.Builder
	b.WriteString("<items>")
	for _, doc := range docs {
		b.WriteString(itemsInner(doc))
	}
	b.WriteString("</items>")
	return b.String()
}

// itemsInner returns the text between the root <items ...> tag and its
// closing tag, or "" when the document has no such root.
func itemsInner(doc string) string {
	start := strings.Index(doc, "<items")
	if start < 0 {
		return ""
	}
	open := strings.IndexByte(doc[start:], '>')
	if open < 0 {
		return ""
	}
	open += start
	if doc[open-1] == '/' {
		return ""
	}
	end := strings.LastIndex(doc, "</items>")
	if end < open {
		return ""
	}
	return doc[open+1 : end]
}
