package source

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/fetch"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
)

// Containers whose nested paragraphs and lists are navigation or metadata,
// not article prose.
const wikiSkipSelector = "table.infobox, table.navbox, table.metadata, table.mw-empty-elt, " +
	"div.infobox, div.navbox, div.metadata, div.mw-empty-elt"

// Wikipedia walks article block elements in document order and groups them
// into heading-delimited sections, starting with an implicit Overview.
type Wikipedia struct {
	getter   fetch.Getter
	baseURL  string
	excluded map[string]struct{}
}

// NewWikipedia builds the Wikipedia adapter.
func NewWikipedia(getter fetch.Getter, cfg Config) *Wikipedia {
	cfg = cfg.ApplyDefaults()
	excluded := make(map[string]struct{}, len(cfg.ExcludedHeadings))
	for _, h := range cfg.ExcludedHeadings {
		excluded[strings.ToLower(h)] = struct{}{}
	}
	return &Wikipedia{
		getter:   getter,
		baseURL:  "https://en.wikipedia.org/wiki/",
		excluded: excluded,
	}
}

// Name implements scrape.Source.
func (w *Wikipedia) Name() string {
	return NameWikipedia
}

// Fetch retrieves and sectionizes the article for a topic.
func (w *Wikipedia) Fetch(ctx context.Context, topic string) (scrape.Document, error) {
	pageURL := w.baseURL + url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
	body, err := w.getter.Get(ctx, pageURL)
	if err != nil {
		return scrape.Document{}, absent(NameWikipedia, topic, scrape.ErrTransport, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return scrape.Document{}, absent(NameWikipedia, topic, scrape.ErrParse, err)
	}

	title := strings.TrimSpace(doc.Find("h1#firstHeading").First().Text())
	if title == "" {
		title = topic
	}

	content := doc.Find("div#mw-content-text").First()
	if content.Length() == 0 {
		return scrape.Document{}, absentEmpty(NameWikipedia, topic)
	}

	sections := w.collectSections(content)
	if len(sections) == 0 {
		return scrape.Document{}, absentEmpty(NameWikipedia, topic)
	}

	return scrape.Document{
		Title:     title,
		Source:    "Wikipedia",
		URL:       pageURL,
		Sections:  sections,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (w *Wikipedia) collectSections(content *goquery.Selection) []scrape.Section {
	var sections []scrape.Section
	current := scrape.Section{Heading: "Overview"}
	discard := false

	content.Find("p, h2, h3, h4, ul, ol").Each(func(_ int, sel *goquery.Selection) {
		if sel.ParentsFiltered(wikiSkipSelector).Length() > 0 {
			return
		}
		switch goquery.NodeName(sel) {
		case "h2", "h3", "h4":
			if !discard && len(current.Paragraphs) > 0 {
				sections = append(sections, current)
			}
			heading := strings.TrimSpace(strings.ReplaceAll(sel.Text(), "[edit]", ""))
			if _, skip := w.excluded[strings.ToLower(heading)]; skip {
				// Content-discarding section: parse on, retain nothing.
				discard = true
				current = scrape.Section{}
				return
			}
			discard = false
			current = scrape.Section{Heading: heading}
		case "p":
			if discard {
				return
			}
			if text := paragraphText(sel); text != "" {
				current.Paragraphs = append(current.Paragraphs, text)
			}
		case "ul", "ol":
			if discard {
				return
			}
			if items := listText(sel); items != "" {
				current.Paragraphs = append(current.Paragraphs, items)
			}
		}
	})

	if !discard && current.Heading != "" && len(current.Paragraphs) > 0 {
		sections = append(sections, current)
	}
	return sections
}

// paragraphText extracts a paragraph's cleaned text with embedded MathML
// flattened in place.
func paragraphText(sel *goquery.Selection) string {
	clone := sel.Clone()
	clone.Find("math").Each(func(_ int, m *goquery.Selection) {
		flattened := mathPlaceholder
		if fragment, err := goquery.OuterHtml(m); err == nil {
			flattened = flattenMathML(fragment)
		}
		m.ReplaceWithHtml(html.EscapeString(flattened))
	})
	return cleanText(clone.Text())
}

// listText flattens a list into one bullet-prefixed paragraph string.
func listText(sel *goquery.Selection) string {
	var items []string
	sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		if text := cleanText(li.Text()); text != "" {
			items = append(items, "  • "+text)
		}
	})
	return strings.Join(items, "\n")
}

// absent wraps an expected adapter failure so errors.Is matches both
// scrape.ErrNoContent and the failure class.
func absent(site, topic string, kind, cause error) error {
	return fmt.Errorf("%s %q: %w: %w: %v", site, topic, scrape.ErrNoContent, kind, cause)
}

// absentEmpty marks a page that resolved but yielded no usable content.
func absentEmpty(site, topic string) error {
	return fmt.Errorf("%s %q: %w", site, topic, scrape.ErrNoContent)
}
