package tui

import (
	"fmt"
	"strings"

	xhtml "golang.org/x/net/html"
)

// htmlToText renders a BGG description (HTML fragments and entities) as
// wrapped plain-text lines.
func htmlToText(content string, width int) []string {
	// BGG double-escapes markup, so entities are decoded before tokenizing.
	decoded := xhtml.UnescapeString(content)
	r := &htmlRenderer{}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(decoded))
	for {
		tt := tokenizer.Next()
		if tt == xhtml.ErrorToken {
			break
		}

		switch tt {
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, hasAttr := tokenizer.TagName()
			var href string
			if string(name) == "a" && hasAttr {
				for {
					k, v, more := tokenizer.TagAttr()
					if string(k) == "href" {
						href = string(v)
					}
					if !more {
						break
					}
				}
			}
			r.start(string(name), href, tt == xhtml.SelfClosingTagToken)
		case xhtml.EndTagToken:
			name, _ := tokenizer.TagName()
			r.end(string(name))
		case xhtml.TextToken:
			r.text(string(tokenizer.Text()))
		}
	}

	output := strings.TrimRight(r.b.String(), "\n ")
	return wrapText(output, width)
}

type htmlRenderer struct {
	b          strings.Builder
	quoteDepth int
	olCounters []int // -1 for <ul>
	links      []linkState
	skip       int
}

type linkState struct {
	href  string
	start int // offset of the link text in b
}

func (r *htmlRenderer) start(tag, href string, selfClosing bool) {
	switch tag {
	case "br":
		r.newline()
	case "p", "div":
		r.paragraph()
	case "blockquote":
		r.ensureNewline()
		r.quoteDepth++
	case "ol":
		r.olCounters = append(r.olCounters, 0)
	case "ul":
		r.olCounters = append(r.olCounters, -1)
	case "li":
		r.ensureNewline()
		marker := "- "
		if n := len(r.olCounters); n > 0 && r.olCounters[n-1] >= 0 {
			r.olCounters[n-1]++
			marker = fmt.Sprintf("%d. ", r.olCounters[n-1])
		}
		r.write(marker)
	case "a":
		if !selfClosing {
			r.links = append(r.links, linkState{href: href, start: r.b.Len()})
		}
	case "script", "style":
		if !selfClosing {
			r.skip++
		}
	}
}

func (r *htmlRenderer) end(tag string) {
	switch tag {
	case "p", "div":
		r.paragraph()
	case "blockquote":
		r.ensureNewline()
		r.quoteDepth = max(r.quoteDepth-1, 0)
	case "ol", "ul":
		if n := len(r.olCounters); n > 0 {
			r.olCounters = r.olCounters[:n-1]
		}
		r.ensureNewline()
	case "a":
		n := len(r.links)
		if n == 0 {
			return
		}
		link := r.links[n-1]
		r.links = r.links[:n-1]
		r.closeLink(link)
	case "script", "style":
		r.skip = max(r.skip-1, 0)
	}
}

// closeLink appends the target after the link text unless the text already
// is the URL, possibly truncated by BGG with a trailing "...".
func (r *htmlRenderer) closeLink(link linkState) {
	if link.href == "" {
		return
	}
	text := strings.TrimLeft(strings.TrimSpace(r.b.String()[link.start:]), "│ ")
	shown := strings.TrimSuffix(text, "...")
	if shown != "" && strings.HasPrefix(link.href, shown) {
		s := r.b.String()[:link.start]
		r.b.Reset()
		r.b.WriteString(s)
		r.write(link.href)
		return
	}
	r.b.WriteString(" (" + link.href + ")")
}

func (r *htmlRenderer) text(s string) {
	if r.skip > 0 {
		return
	}
	if strings.TrimSpace(s) == "" {
		if s != "" && !r.atLineStart() && !strings.HasSuffix(r.b.String(), " ") {
			r.b.WriteString(" ")
		}
		return
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i > 0 {
			r.newline()
		}
		if r.quoteDepth > 0 || r.atLineStart() {
			line = strings.TrimLeft(line, " \t")
		}
		r.write(line)
	}
}

// write appends s, adding the quote prefix at the start of a line.
func (r *htmlRenderer) write(s string) {
	if s == "" {
		return
	}
	if r.atLineStart() && r.quoteDepth > 0 {
		r.b.WriteString(strings.Repeat("│ ", r.quoteDepth))
	}
	r.b.WriteString(s)
}

func (r *htmlRenderer) atLineStart() bool {
	s := r.b.String()
	return s == "" || strings.HasSuffix(s, "\n")
}

func (r *htmlRenderer) newline() {
	r.trimTrailingSpace()
	r.b.WriteString("\n")
}

func (r *htmlRenderer) ensureNewline() {
	if !r.atLineStart() {
		r.newline()
	}
}

// paragraph leaves exactly one blank line after existing content.
func (r *htmlRenderer) paragraph() {
	s := r.b.String()
	switch {
	case s == "", strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		r.b.WriteString("\n")
	default:
		r.newline()
		r.b.WriteString("\n")
	}
}

func (r *htmlRenderer) trimTrailingSpace() {
	s := r.b.String()
	trimmed := strings.TrimRight(s, " ")
	if len(trimmed) != len(s) {
		r.b.Reset()
		r.b.WriteString(trimmed)
	}
}
