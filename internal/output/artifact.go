// Package output renders topic artifacts and run indexes. Everything here
// is a pure function of its inputs so identical runs produce identical
// bytes.
package output

import (
	"regexp"
	"strings"
	"time"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	artifactRule    = 40
	pageRule        = 80
)

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SafeFileName strips filesystem-hostile characters from a topic name and
// replaces spaces with underscores.
func SafeFileName(topic string) string {
	name := unsafeFileChars.ReplaceAllString(topic, "_")
	return strings.ReplaceAll(name, " ", "_")
}

// CategoryDirName maps a category name onto its output directory name.
func CategoryDirName(category string) string {
	return strings.ReplaceAll(category, " ", "_")
}

// Artifact renders a topic's aggregated content as the study-file text
// format: a banner header, one block per source in insertion order, and a
// footer.
func Artifact(result scrape.TopicResult, category string, now time.Time) string {
	var lines []string

	lines = append(lines,
		strings.Repeat("=", pageRule),
		"  "+strings.ToUpper(result.Topic),
		strings.Repeat("=", pageRule),
		"\nCategory: "+category,
		"Generated: "+now.Format(timestampLayout),
		strings.Repeat("-", pageRule),
	)

	for _, src := range result.Sources {
		name := src.Doc.Source
		if name == "" {
			name = src.Name
		}
		url := src.Doc.URL
		if url == "" {
			url = "N/A"
		}
		lines = append(lines,
			"\n"+strings.Repeat("─", artifactRule),
			"  Source: "+strings.ToUpper(name),
			"  URL: "+url,
			strings.Repeat("─", artifactRule)+"\n",
		)

		for _, section := range src.Doc.Sections {
			if section.Heading != "" {
				lines = append(lines, "\n## "+section.Heading+"\n")
			}
			for _, paragraph := range section.Paragraphs {
				lines = append(lines, paragraph, "")
			}
		}
	}

	lines = append(lines,
		"\n"+strings.Repeat("=", pageRule),
		"  END OF DOCUMENT",
		strings.Repeat("=", pageRule),
	)

	return strings.Join(lines, "\n")
}
