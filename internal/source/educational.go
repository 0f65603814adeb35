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

const (
	// educationalMaxSites bounds how many curated pages one topic visits.
	educationalMaxSites = 2
	// educationalMaxParagraphs bounds the retained content.
	educationalMaxParagraphs = 15
)

// Educational aggregates curated astronomy teaching pages matched by topic
// substring.
type Educational struct {
	getter   fetch.Getter
	sites    map[string][]string
	minChars int
}

// NewEducational builds the Educational adapter.
func NewEducational(getter fetch.Getter, cfg Config) *Educational {
	cfg = cfg.ApplyDefaults()
	return &Educational{
		getter:   getter,
		sites:    cfg.EducationalSites,
		minChars: cfg.MinParagraphChars,
	}
}

// Name implements scrape.Source.
func (e *Educational) Name() string {
	return NameEducational
}

// Fetch collects paragraphs from the curated sites matching a topic.
func (e *Educational) Fetch(ctx context.Context, topic string) (scrape.Document, error) {
	urls := e.matchURLs(topic)
	if len(urls) == 0 {
		return scrape.Document{}, absentEmpty(NameEducational, topic)
	}
	if len(urls) > educationalMaxSites {
		urls = urls[:educationalMaxSites]
	}

	var (
		content   []string
		sourceURL string
	)
	for _, pageURL := range urls {
		body, err := e.getter.Get(ctx, pageURL)
		if err != nil {
			// A dead curated page is expected; keep trying the rest.
			continue
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			continue
		}
		sourceURL = pageURL
		var texts []string
		doc.Find("p").Each(func(_ int, p *goquery.Selection) {
			texts = append(texts, p.Text())
		})
		content = append(content, longParagraphs(texts, e.minChars)...)
	}

	if len(content) == 0 {
		return scrape.Document{}, absentEmpty(NameEducational, topic)
	}
	if len(content) > educationalMaxParagraphs {
		content = content[:educationalMaxParagraphs]
	}

	return scrape.Document{
		Title:     topic + " (Educational)",
		Source:    "Educational",
		URL:       sourceURL,
		Sections:  []scrape.Section{{Heading: "Educational Overview", Paragraphs: content}},
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (e *Educational) matchURLs(topic string) []string {
	topicLower := strings.ToLower(topic)
	keys := make([]string, 0, len(e.sites))
	for key := range e.sites {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var urls []string
	for _, key := range keys {
		if strings.Contains(topicLower, key) {
			urls = append(urls, e.sites[key]...)
		}
	}
	return urls
}
