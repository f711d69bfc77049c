package catalog

import (
	"io"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/osa030/versionbox/internal/domain/song"
)

// Markup contract.
const (
	classSongItem  = "song-item"
	classSongCover = "song-cover"
	classSongTitle = "song-title"

	attrGroup   = "data-song-title-group"
	attrVideoID = "data-youtube-id"
	attrEmbed   = "data-embed-url"
)

// ParseMarkup reads every song item of an HTML document, in document order.
// Items without an id are numbered song-1, song-2, ... by position.
func ParseMarkup(r io.Reader) ([]song.Record, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse markup")
	}

	var records []song.Record
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, classSongItem) {
			records = append(records, parseItem(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return finalize(records)
}

func parseItem(n *html.Node) song.Record {
	rec := song.Record{
		ID:       song.ID(attr(n, "id")),
		Group:    strings.TrimSpace(attr(n, attrGroup)),
		VideoID:  strings.TrimSpace(attr(n, attrVideoID)),
		EmbedURL: strings.TrimSpace(attr(n, attrEmbed)),
	}

	if audio := find(n, func(c *html.Node) bool { return c.DataAtom == atom.Audio }); audio != nil {
		rec.AudioURL = attr(audio, "src")
		if rec.AudioURL == "" {
			if source := find(audio, func(c *html.Node) bool { return c.DataAtom == atom.Source }); source != nil {
				rec.AudioURL = attr(source, "src")
			}
		}
	}
	if cover := find(n, func(c *html.Node) bool { return hasClass(c, classSongCover) }); cover != nil {
		rec.CoverURL = attr(cover, "src")
	}
	if title := find(n, func(c *html.Node) bool { return hasClass(c, classSongTitle) }); title != nil {
		rec.Title = strings.Join(strings.Fields(text(title)), " ")
	}
	return rec
}

// find returns the first element below n matching match, depth first.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
