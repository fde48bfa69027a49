package feed

import (
	"encoding/json"
	"testing"

	"github.com/lysyi3m/news-browser/app/digest"
)

const testRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <language>en-us</language>
    <pubDate>Mon, 03 Jul 2023 12:00:00 GMT</pubDate>
    <image>
      <url>https://example.com/icon.png</url>
      <title>Test Feed</title>
      <link>https://example.com</link>
    </image>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description>Test Item 1 Description</description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <author>test@example.com (Test Author)</author>
      <category>Technology</category>
      <category>Programming</category>
      <enclosure url="https://example.com/cover.jpg" length="1234" type="image/jpeg" />
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description>Test Item 2 Description</description>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
      <enclosure url="https://example.com/episode.mp3" length="99" type="audio/mpeg" />
    </item>
  </channel>
</rss>`

func TestParseRSS2(t *testing.T) {
	parser := NewParser()
	metadata, items, err := parser.Run([]byte(testRSS))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", metadata.Title)
	}
	if metadata.ImageURL != "https://example.com/icon.png" {
		t.Errorf("Expected image URL 'https://example.com/icon.png', got: %s", metadata.ImageURL)
	}
	if metadata.PublishedAt == nil {
		t.Error("Expected channel publish date to be parsed")
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	item1 := items[0]
	if item1.Title != "Test Item 1" {
		t.Errorf("Expected title 'Test Item 1', got: %s", item1.Title)
	}
	if item1.Summary != "Test Item 1 Description" {
		t.Errorf("Expected summary 'Test Item 1 Description', got: %s", item1.Summary)
	}
	if item1.GUID != "item-1" {
		t.Errorf("Expected GUID 'item-1', got: %s", item1.GUID)
	}
	if len(item1.Sources) != 1 || item1.Sources[0] != "https://example.com/item1" {
		t.Errorf("Expected link as the only source, got: %v", item1.Sources)
	}
	if len(item1.Categories) != 2 {
		t.Errorf("Expected 2 categories, got: %d", len(item1.Categories))
	}
	if len(item1.Images) != 1 || item1.Images[0] != "https://example.com/cover.jpg" {
		t.Errorf("Expected the image enclosure, got: %v", item1.Images)
	}
	if item1.PublishedAt == nil {
		t.Error("Expected item publish date to be parsed")
	}

	item2 := items[1]
	if item2.GUID != "https://example.com/item2" {
		t.Errorf("Expected GUID to fall back to link, got: %s", item2.GUID)
	}
	if len(item2.Images) != 0 {
		t.Errorf("Expected audio enclosure to be ignored, got: %v", item2.Images)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <link href="https://example.com/"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <id>urn:uuid:60a76c80-d399-11d9-b93C-0003939e0af6</id>
  <entry>
    <title>Atom Entry</title>
    <link href="https://example.com/entry"/>
    <id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
    <updated>2023-07-03T10:00:00Z</updated>
    <summary>Entry summary</summary>
    <author><name>Jane</name></author>
  </entry>
</feed>`

	_, items, err := NewParser().Run([]byte(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}
	if items[0].Summary != "Entry summary" {
		t.Errorf("Expected summary 'Entry summary', got: %s", items[0].Summary)
	}
	if len(items[0].Authors) != 1 || items[0].Authors[0] != "Jane" {
		t.Errorf("Expected author 'Jane', got: %v", items[0].Authors)
	}
}

func TestParseInvalidFeed(t *testing.T) {
	if _, _, err := NewParser().Run([]byte("not a feed")); err == nil {
		t.Error("Expected error for invalid feed")
	}
}

func TestParserToDocument(t *testing.T) {
	parser := NewParser()
	metadata, items, err := parser.Run([]byte(testRSS))
	if err != nil {
		t.Fatal(err)
	}

	items[1].IsFiltered = true
	sourceConfig := &Config{Name: "tech_news", Settings: ConfigSettings{MaxItems: 10}}

	doc, err := parser.ToDocument(sourceConfig, metadata, items)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Type() != SourceDocumentType {
		t.Errorf("Expected type %q, got %q", SourceDocumentType, doc.Type())
	}
	if doc.Title() != "Test Feed" {
		t.Errorf("Expected channel title, got %q", doc.Title())
	}
	if _, ok := doc.Date(); !ok {
		t.Error("Expected document date from the channel")
	}

	categories := doc.Categories()
	if len(categories) != 1 {
		t.Fatalf("Expected 1 category, got %d", len(categories))
	}
	if categories[0].Title != "Tech News" || categories[0].Topic != "tech_news" {
		t.Errorf("Unexpected category %q/%q", categories[0].Title, categories[0].Topic)
	}
	if len(categories[0].Content) != 1 {
		t.Fatalf("Expected filtered item to be dropped, got %d items", len(categories[0].Content))
	}

	fields := digest.ParseItem(categories[0].Content[0]).DisplayFields()
	if fields.Text != "Test Item 1" {
		t.Errorf("Expected display text 'Test Item 1', got %q", fields.Text)
	}
	if fields.ImageURL != "https://example.com/cover.jpg" {
		t.Errorf("Expected display image, got %q", fields.ImageURL)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := digest.ValidateCanonical(data); err != nil {
		t.Errorf("Expected canonical document, got %v", err)
	}
}

func TestParserToDocumentMaxItems(t *testing.T) {
	parser := NewParser()
	metadata, items, err := parser.Run([]byte(testRSS))
	if err != nil {
		t.Fatal(err)
	}

	sourceConfig := &Config{Name: "news", Title: "Custom", Settings: ConfigSettings{MaxItems: 1}}
	doc, err := parser.ToDocument(sourceConfig, metadata, items)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Title() != "Custom" {
		t.Errorf("Expected configured title, got %q", doc.Title())
	}
	if got := len(doc.Categories()[0].Content); got != 1 {
		t.Errorf("Expected 1 item, got %d", got)
	}
}
