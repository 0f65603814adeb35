package source

import (
	"strings"

	"github.com/antchfx/xmlquery"
)

// mathPlaceholder replaces mathematical markup that cannot be parsed.
const mathPlaceholder = "[mathematical expression]"

// flattenMathML reduces a MathML fragment to its visible text. Parse failures
// return the fixed placeholder so one bad formula never aborts a paragraph.
func flattenMathML(fragment string) string {
	doc, err := xmlquery.Parse(strings.NewReader(fragment))
	if err != nil {
		return mathPlaceholder
	}
	text := strings.TrimSpace(doc.InnerText())
	if text == "" {
		return mathPlaceholder
	}
	return text
}
