// Package source implements the per-site content adapters. Each adapter
// resolves a topic to one page on its site and normalizes what it finds into
// a scrape.Document; every expected failure (network, missing page, malformed
// markup, content too thin) degrades to scrape.ErrNoContent.
package source

import (
	"regexp"
	"strings"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/fetch"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
)

// Source names as used in job submissions and cache fingerprints.
const (
	NameWikipedia   = "wikipedia"
	NameNASA        = "nasa"
	NameESA         = "esa"
	NameEducational = "educational"
)

// Config carries the tunables shared by the adapters. The zero value is
// completed by ApplyDefaults.
type Config struct {
	// MinParagraphChars filters out short snippets on the NASA/ESA/
	// educational adapters.
	MinParagraphChars int
	// ExcludedHeadings (lower-cased) open content-discarding sections in the
	// Wikipedia adapter.
	ExcludedHeadings []string
	// NASADirectURLs maps lower-cased topic substrings to canonical pages.
	NASADirectURLs map[string]string
	// EducationalSites maps lower-cased topic substrings to curated URLs.
	EducationalSites map[string][]string
}

// ApplyDefaults fills unset fields with the stock tables.
func (c Config) ApplyDefaults() Config {
	if c.MinParagraphChars <= 0 {
		c.MinParagraphChars = 50
	}
	if len(c.ExcludedHeadings) == 0 {
		c.ExcludedHeadings = []string{
			"see also",
			"references",
			"external links",
			"notes",
			"further reading",
		}
	}
	if c.NASADirectURLs == nil {
		c.NASADirectURLs = map[string]string{
			"exoplanet":         "https://exoplanets.nasa.gov/what-is-an-exoplanet/overview/",
			"stellar evolution": "https://science.nasa.gov/astrophysics/focus-areas/how-do-stars-form-and-evolve/",
			"star formation":    "https://science.nasa.gov/astrophysics/focus-areas/how-do-stars-form-and-evolve/",
			"black hole":        "https://science.nasa.gov/astrophysics/focus-areas/black-holes/",
			"hubble":            "https://science.nasa.gov/mission/hubble/",
			"james webb":        "https://science.nasa.gov/mission/webb/",
		}
	}
	if c.EducationalSites == nil {
		c.EducationalSites = map[string][]string{
			"stellar evolution": {
				"https://astronomy.swin.edu.au/cosmos/s/Stellar+Evolution",
			},
			"hertzsprung-russell": {
				"https://astronomy.swin.edu.au/cosmos/h/Hertzsprung-Russell+Diagram",
			},
			"exoplanet": {
				"https://exoplanets.nasa.gov/what-is-an-exoplanet/overview/",
			},
		}
	}
	return c
}

// Registry maps source names to adapters.
type Registry map[string]scrape.Source

// NewRegistry builds the four stock adapters over one page getter.
func NewRegistry(getter fetch.Getter, cfg Config) Registry {
	cfg = cfg.ApplyDefaults()
	return Registry{
		NameWikipedia:   NewWikipedia(getter, cfg),
		NameNASA:        NewNASA(getter, cfg),
		NameESA:         NewESA(getter, cfg),
		NameEducational: NewEducational(getter, cfg),
	}
}

// Names returns the registered source names sorted for display.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for _, candidate := range []string{NameWikipedia, NameNASA, NameESA, NameEducational} {
		if _, ok := r[candidate]; ok {
			names = append(names, candidate)
		}
	}
	for name := range r {
		if !contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// Select resolves the requested names against the registry, preserving the
// request order and dropping unknown names.
func (r Registry) Select(names []string) []scrape.Source {
	out := make([]scrape.Source, 0, len(names))
	for _, name := range names {
		if src, ok := r[strings.ToLower(strings.TrimSpace(name))]; ok {
			out = append(out, src)
		}
	}
	return out
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

var (
	citationRE   = regexp.MustCompile(`\[\d+\]`)
	whitespaceRE = regexp.MustCompile(`[ \t\r\f]+`)
	newlinesRE   = regexp.MustCompile(`\n{3,}`)
)

// cleanText strips citation markers like [12], collapses whitespace runs, and
// squeezes runs of three or more newlines down to two.
func cleanText(text string) string {
	text = citationRE.ReplaceAllString(text, "")
	text = whitespaceRE.ReplaceAllString(text, " ")
	text = newlinesRE.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// longParagraphs extracts every cleaned paragraph of at least min characters.
func longParagraphs(texts []string, min int) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		cleaned := cleanText(t)
		if len(cleaned) >= min {
			out = append(out, cleaned)
		}
	}
	return out
}
