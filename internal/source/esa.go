package source

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/fetch"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
)

// esaMaxParagraphs bounds how much of one ESA article is retained.
const esaMaxParagraphs = 10

// ESA performs a two-step fetch: the site search page, then the first result
// link's page.
type ESA struct {
	getter    fetch.Getter
	siteBase  string
	searchFmt string
	minChars  int
}

// NewESA builds the ESA adapter.
func NewESA(getter fetch.Getter, cfg Config) *ESA {
	cfg = cfg.ApplyDefaults()
	return &ESA{
		getter:    getter,
		siteBase:  "https://www.esa.int",
		searchFmt: "https://www.esa.int/esearch?q=",
		minChars:  cfg.MinParagraphChars,
	}
}

// Name implements scrape.Source.
func (e *ESA) Name() string {
	return NameESA
}

// Fetch searches ESA for a topic and normalizes the first result's page.
func (e *ESA) Fetch(ctx context.Context, topic string) (scrape.Document, error) {
	searchURL := e.searchFmt + url.QueryEscape(topic)
	body, err := e.getter.Get(ctx, searchURL)
	if err != nil {
		return scrape.Document{}, absent(NameESA, topic, scrape.ErrTransport, err)
	}
	searchDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return scrape.Document{}, absent(NameESA, topic, scrape.ErrParse, err)
	}

	articleURL := e.firstResultURL(searchDoc)
	if articleURL == "" {
		return scrape.Document{}, absentEmpty(NameESA, topic)
	}

	articleBody, err := e.getter.Get(ctx, articleURL)
	if err != nil {
		return scrape.Document{}, absent(NameESA, topic, scrape.ErrTransport, err)
	}
	articleDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(articleBody))
	if err != nil {
		return scrape.Document{}, absent(NameESA, topic, scrape.ErrParse, err)
	}

	var texts []string
	articleDoc.Find("p").Each(func(_ int, p *goquery.Selection) {
		texts = append(texts, p.Text())
	})
	content := longParagraphs(texts, e.minChars)
	if len(content) == 0 {
		return scrape.Document{}, absentEmpty(NameESA, topic)
	}
	if len(content) > esaMaxParagraphs {
		content = content[:esaMaxParagraphs]
	}

	title := strings.TrimSpace(articleDoc.Find("h1").First().Text())
	if title == "" {
		title = topic
	}

	return scrape.Document{
		Title:     title,
		Source:    "ESA",
		URL:       articleURL,
		Sections:  []scrape.Section{{Heading: "ESA Article", Paragraphs: content}},
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (e *ESA) firstResultURL(doc *goquery.Document) string {
	link := doc.Find(".search-result a, .result-title a").First()
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(e.siteBase)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
