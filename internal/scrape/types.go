// Package scrape defines the core value types shared across subsystems.
package scrape

import (
	"time"
)

// Section is one heading-delimited block of a normalized document. Lists are
// flattened into bullet-prefixed paragraph strings by the adapters.
type Section struct {
	// Heading is empty for implicit sections that carry no title of their own.
	Heading    string   `json:"heading,omitempty"`
	Paragraphs []string `json:"paragraphs"`
}

// Document is the normalized representation of one source's content for one
// topic. Sections preserve source-document order; an adapter never returns a
// Document whose sections are all empty.
type Document struct {
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Sections  []Section `json:"sections"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Empty reports whether the document carries no paragraphs at all.
func (d Document) Empty() bool {
	for _, s := range d.Sections {
		if len(s.Paragraphs) > 0 {
			return false
		}
	}
	return true
}

// SourceDocument pairs a source name with the document it produced.
type SourceDocument struct {
	Name string   `json:"name"`
	Doc  Document `json:"document"`
}

// TopicResult accumulates the documents contributed by each source for one
// topic. Entries appear in source selection order and hold only sources that
// actually produced content.
type TopicResult struct {
	Topic   string           `json:"topic"`
	Sources []SourceDocument `json:"sources"`
}

// Add appends a source's document, replacing any earlier entry for the same
// source name.
func (r *TopicResult) Add(name string, doc Document) {
	for i := range r.Sources {
		if r.Sources[i].Name == name {
			r.Sources[i].Doc = doc
			return
		}
	}
	r.Sources = append(r.Sources, SourceDocument{Name: name, Doc: doc})
}

// HasContent reports whether at least one source contributed a document.
func (r TopicResult) HasContent() bool {
	return len(r.Sources) > 0
}
