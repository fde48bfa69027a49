package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"github.com/lysyi3m/news-browser/app/digest"
)

const SourceDocumentType = "rssSource"

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
		PublishedAt: cmp.Or(feed.UpdatedParsed, feed.PublishedParsed),
	}

	if feed.Image != nil {
		metadata.ImageURL = feed.Image.URL
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, nil
}

// ToDocument builds a feed document with a single category, keyed by the
// source name, holding the items that passed the filters. The result is in
// canonical form.
func (p *Parser) ToDocument(sourceConfig *Config, metadata *Metadata, items []Item) (*digest.Document, error) {
	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if item.IsFiltered {
			continue
		}
		kept = append(kept, item)
		if sourceConfig.Settings.MaxItems > 0 && len(kept) >= sourceConfig.Settings.MaxItems {
			break
		}
	}

	mapping := digest.NewObject()
	if err := mapping.SetValue(sourceConfig.Name, kept); err != nil {
		return nil, err
	}

	doc := digest.NewDocument()
	if err := doc.SetValue("type", SourceDocumentType); err != nil {
		return nil, err
	}
	if err := doc.SetValue("title", cmp.Or(sourceConfig.Title, metadata.Title, sourceConfig.Name)); err != nil {
		return nil, err
	}
	if metadata.PublishedAt != nil {
		if err := doc.SetValue("date", metadata.PublishedAt.Unix()); err != nil {
			return nil, err
		}
	}
	if err := doc.SetValue("categories", mapping); err != nil {
		return nil, err
	}

	return digest.Normalize(doc), nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:    cmp.Or(item.GUID, item.Link),
		Title:   strings.TrimSpace(item.Title),
		Summary: strings.TrimSpace(cmp.Or(item.Description, item.Content)),
		Link:    item.Link,
	}

	if item.Link != "" {
		normalized.Sources = []string{item.Link}
	}

	if item.PublishedParsed != nil {
		normalized.PublishedAt = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		normalized.PublishedAt = item.UpdatedParsed
	}

	normalized.Authors = p.extractAuthors(item)
	normalized.Categories = item.Categories
	normalized.Images = p.extractImages(item)

	return normalized
}

func (p *Parser) extractImages(item *gofeed.Item) []string {
	var images []string
	if item.Image != nil && item.Image.URL != "" {
		images = append(images, item.Image.URL)
	}
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && enclosure.URL != "" && strings.HasPrefix(enclosure.Type, "image/") {
			images = append(images, enclosure.URL)
		}
	}
	return lo.Uniq(images)
}

func (p *Parser) extractAuthors(item *gofeed.Item) []string {
	var authors []string

	if len(item.Authors) > 0 {
		for _, author := range item.Authors {
			if author != nil {
				authorStr := p.formatAuthor(author.Name, author.Email)
				if authorStr != "" {
					authors = append(authors, authorStr)
				}
			}
		}
	} else if item.Author != nil {
		authorStr := p.formatAuthor(item.Author.Name, item.Author.Email)
		if authorStr != "" {
			authors = append(authors, authorStr)
		}
	}

	return authors
}

func (p *Parser) formatAuthor(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name != "" && email != "" {
		return fmt.Sprintf("%s (%s)", email, name)
	} else if name != "" {
		return name
	} else if email != "" {
		return email
	}

	return ""
}
