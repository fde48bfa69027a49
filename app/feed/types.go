package feed

import (
	"time"
)

// Source item types

type Metadata struct {
	Title       string
	Link        string
	Description string
	ImageURL    string
	Language    string
	PublishedAt *time.Time
}

// Item is one entry of an RSS/Atom source, shaped so that the browser's
// item text lookup finds its title first.
type Item struct {
	GUID        string     `json:"guid,omitempty"`
	Title       string     `json:"title,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Sources     []string   `json:"sources,omitempty"`
	Images      []string   `json:"images,omitempty"`
	Authors     []string   `json:"authors,omitempty"`
	Categories  []string   `json:"categories,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	Link         string `json:"-"`
	IsFiltered   bool   `json:"-"`
	FilterReason string `json:"-"`
}

// Configuration types

type Config struct {
	Name     string         `yaml:"-" validate:"required"` // Derived from filename (without .yml extension)
	URL      string         `yaml:"url" validate:"required,url"`
	Title    string         `yaml:"title"`
	Format   string         `yaml:"format" validate:"omitempty,oneof=rss atom json"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters" validate:"dive"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval" validate:"gte=0"` // seconds
	MaxItems        int  `yaml:"max_items" validate:"gte=0"`
	Timeout         int  `yaml:"timeout" validate:"gte=0"` // seconds
}

type ConfigFilter struct {
	Field    string   `yaml:"field" validate:"oneof=title summary link authors categories"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// Preview is what a source link shows when hovered.
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}
