package feed

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// ErrInvalidURL rejects preview targets that are not absolute http(s) URLs.
var ErrInvalidURL = errors.New("invalid preview URL")

// Previewer reads the title, description and image a page advertises
// through its Open Graph and standard meta tags. Pages without a
// description get one from the readable article text.
type Previewer struct {
	fetcher *Fetcher
}

func NewPreviewer(fetcher *Fetcher) *Previewer {
	return &Previewer{fetcher: fetcher}
}

func (p *Previewer) Run(ctx context.Context, pageURL string) (*Preview, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}

	data, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return ExtractPreview(pageURL, data)
}

// ExtractPreview reads preview fields from an HTML page. Relative image
// URLs are resolved against pageURL.
func ExtractPreview(pageURL string, data []byte) (*Preview, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	meta := func(names ...string) string {
		for _, name := range names {
			selector := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, name, name)
			if content, ok := doc.Find(selector).First().Attr("content"); ok {
				if content = strings.TrimSpace(content); content != "" {
					return content
				}
			}
		}
		return ""
	}

	preview := &Preview{
		URL:         pageURL,
		Title:       cmp.Or(meta("og:title", "twitter:title"), strings.TrimSpace(doc.Find("title").First().Text())),
		Description: meta("og:description", "twitter:description", "description"),
		ImageURL:    meta("og:image", "twitter:image"),
		SiteName:    meta("og:site_name"),
	}

	if preview.Description == "" {
		fillFromArticle(preview, pageURL, data)
	}

	if preview.Title == "" {
		preview.Title = pageURL
	}

	if preview.ImageURL != "" {
		if base, err := url.Parse(pageURL); err == nil {
			if ref, err := url.Parse(preview.ImageURL); err == nil {
				preview.ImageURL = base.ResolveReference(ref).String()
			}
		}
	}

	return preview, nil
}

func fillFromArticle(preview *Preview, pageURL string, data []byte) {
	base, _ := url.Parse(pageURL)

	article, err := readability.FromReader(bytes.NewReader(data), base)
	if err != nil {
		slog.Debug("No readable article for preview", "url", pageURL, "error", err)
		return
	}

	preview.Title = cmp.Or(preview.Title, strings.TrimSpace(article.Title))
	preview.Description = strings.TrimSpace(article.Excerpt)
	preview.ImageURL = cmp.Or(preview.ImageURL, article.Image)
	preview.SiteName = cmp.Or(preview.SiteName, article.SiteName)
}
