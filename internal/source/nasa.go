package source

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/fetch"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
)

// Candidate content containers scanned in order; the first one yielding any
// long-enough paragraph wins.
var nasaContainerSelectors = []string{
	"article",
	"main",
	".content",
	".wysiwyg-content",
	"#main-content",
}

// NASA resolves topics against a curated URL table, falling back to the
// derived science.nasa.gov universe page.
type NASA struct {
	getter      fetch.Getter
	directURLs  map[string]string
	fallbackFmt string
	minChars    int
}

// NewNASA builds the NASA adapter.
func NewNASA(getter fetch.Getter, cfg Config) *NASA {
	cfg = cfg.ApplyDefaults()
	return &NASA{
		getter:      getter,
		directURLs:  cfg.NASADirectURLs,
		fallbackFmt: "https://science.nasa.gov/universe/%s/",
		minChars:    cfg.MinParagraphChars,
	}
}

// Name implements scrape.Source.
func (n *NASA) Name() string {
	return NameNASA
}

// Fetch retrieves NASA content for a topic.
func (n *NASA) Fetch(ctx context.Context, topic string) (scrape.Document, error) {
	pageURL := n.resolveURL(topic)

	body, err := n.getter.Get(ctx, pageURL)
	if err != nil {
		return scrape.Document{}, absent(NameNASA, topic, scrape.ErrTransport, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return scrape.Document{}, absent(NameNASA, topic, scrape.ErrParse, err)
	}

	content := scanContainers(doc, nasaContainerSelectors, n.minChars)
	if len(content) == 0 {
		return scrape.Document{}, absentEmpty(NameNASA, topic)
	}

	return scrape.Document{
		Title:     topic + " (NASA)",
		Source:    "NASA",
		URL:       pageURL,
		Sections:  []scrape.Section{{Heading: "NASA Overview", Paragraphs: content}},
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (n *NASA) resolveURL(topic string) string {
	topicLower := strings.ToLower(topic)
	keys := make([]string, 0, len(n.directURLs))
	for key := range n.directURLs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(topicLower, key) {
			return n.directURLs[key]
		}
	}
	slug := strings.ReplaceAll(topicLower, " ", "-")
	return strings.Replace(n.fallbackFmt, "%s", slug, 1)
}

// scanContainers walks the candidate selectors in order and returns the long
// paragraphs of the first container that yields any.
func scanContainers(doc *goquery.Document, selectors []string, minChars int) []string {
	for _, selector := range selectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		var texts []string
		container.Find("p").Each(func(_ int, p *goquery.Selection) {
			texts = append(texts, p.Text())
		})
		if content := longParagraphs(texts, minChars); len(content) > 0 {
			return content
		}
	}
	return nil
}
