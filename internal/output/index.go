package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CategorySummary aggregates one category's results for the run index.
type CategorySummary struct {
	Name        string
	Description string
	Topics      []string
	Files       []string
}

// RunSummary aggregates a completed run for INDEX.txt and index.json.
type RunSummary struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Categories  []CategorySummary
}

// TotalFiles counts artifacts across all categories.
func (s RunSummary) TotalFiles() int {
	total := 0
	for _, cat := range s.Categories {
		total += len(cat.Files)
	}
	return total
}

// Index renders the human-readable INDEX.txt listing every category and
// topic in submission order.
func Index(summary RunSummary, now time.Time) string {
	var lines []string

	lines = append(lines,
		strings.Repeat("=", pageRule),
		"  STUDY MATERIALS INDEX",
		strings.Repeat("=", pageRule),
		"\nGenerated: "+now.Format(timestampLayout),
		fmt.Sprintf("Total Files: %d", summary.TotalFiles()),
		"\n"+strings.Repeat("-", pageRule),
	)

	for _, cat := range summary.Categories {
		title := strings.ToUpper(strings.ReplaceAll(cat.Name, "_", " "))
		lines = append(lines, "\n## "+title)
		if cat.Description != "" {
			lines = append(lines, "   "+cat.Description)
		}
		lines = append(lines, fmt.Sprintf("   Topics: %d", len(cat.Topics)), "")
		for _, topic := range cat.Topics {
			lines = append(lines, "   • "+topic)
		}
	}

	lines = append(lines, "\n"+strings.Repeat("=", pageRule))
	return strings.Join(lines, "\n")
}

type manifestCategory struct {
	Description string   `json:"description"`
	TopicsCount int      `json:"topics_count"`
	FilesSaved  int      `json:"files_saved"`
	Files       []string `json:"files"`
}

type manifest struct {
	StartedAt   string                      `json:"started_at"`
	CompletedAt string                      `json:"completed_at"`
	Categories  map[string]manifestCategory `json:"categories"`
	TotalFiles  int                         `json:"total_files"`
}

// Manifest renders the machine-readable index.json. Category keys are
// emitted in sorted order by the encoder, so equal runs produce equal
// bytes.
func Manifest(summary RunSummary) ([]byte, error) {
	m := manifest{
		StartedAt:   summary.StartedAt.Format(time.RFC3339),
		CompletedAt: summary.CompletedAt.Format(time.RFC3339),
		Categories:  make(map[string]manifestCategory, len(summary.Categories)),
		TotalFiles:  summary.TotalFiles(),
	}
	for _, cat := range summary.Categories {
		files := cat.Files
		if files == nil {
			files = []string{}
		}
		m.Categories[cat.Name] = manifestCategory{
			Description: cat.Description,
			TopicsCount: len(cat.Topics),
			FilesSaved:  len(cat.Files),
			Files:       files,
		}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}
