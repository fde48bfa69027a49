package feed

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/news-browser/app/digest"
)

// Channel describes the RSS channel a document is exported as.
type Channel struct {
	Title       string
	Link        string
	Description string
	SelfLink    string
	PublishedAt time.Time
}

// Generator renders canonical documents as RSS 2.0.
type Generator struct {
	version string
}

func NewGenerator(version string) *Generator {
	return &Generator{version: version}
}

func (g *Generator) Run(channel Channel, doc *digest.Document) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	title := cmp.Or(channel.Title, doc.Title(), "Curated News")
	g.writeElement(&buf, "title", title, 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(channel.Description, fmt.Sprintf("Curated items from %s", title)), 4)

	if channel.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfLink)))
	}

	pubDate := channel.PublishedAt
	if seconds, ok := doc.Date(); ok {
		pubDate = time.Unix(seconds, 0).UTC()
	}
	if !pubDate.IsZero() {
		g.writeElement(&buf, "pubDate", pubDate.Format(time.RFC1123Z), 4)
		g.writeElement(&buf, "lastBuildDate", pubDate.Format(time.RFC1123Z), 4)
	}
	g.writeElement(&buf, "generator", fmt.Sprintf("News-Browser/%s", g.version), 4)

	for _, category := range doc.Categories() {
		for _, raw := range category.Content {
			g.writeItem(&buf, category.Title, digest.ParseItem(raw), pubDate)
		}
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, category string, item digest.NewsItem, pubDate time.Time) {
	fields := item.DisplayFields()

	buf.WriteString("    <item>\n")

	link := ""
	if len(fields.Sources) > 0 {
		link = fields.Sources[0]
	}

	guid := link
	if guid == "" {
		hash := sha256.Sum256([]byte(category + "|" + fields.Text))
		guid = hex.EncodeToString(hash[:])
	}
	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(guid)))
	xml.EscapeText(buf, []byte(guid))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", fields.Text, 6)
	g.writeElement(buf, "link", link, 6)
	g.writeElement(buf, "description", fields.Text, 6)
	if !pubDate.IsZero() {
		g.writeElement(buf, "pubDate", pubDate.Format(time.RFC1123Z), 6)
	}
	g.writeElement(buf, "category", category, 6)

	if fields.ImageURL != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"image/jpeg\" />\n",
			html.EscapeString(fields.ImageURL)))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}
