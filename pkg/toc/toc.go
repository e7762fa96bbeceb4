// Package toc parses the documentation site's llms.txt table of contents
// into routes with titles and descriptions.
package toc

import (
	"regexp"
	"strings"
)

// Entry is the metadata attached to a single documentation route.
type Entry struct {
	Title       string
	Description string
}

var (
	headingRe = regexp.MustCompile(`^#+\s+`)
	linkRe    = regexp.MustCompile(`\[([^\]]+)\]\((/llms\.txt[^)]+)\)(?:\s*:\s*(.+))?`)
)

// Parse extracts document routes from markdown link lines of the form
// "[title](route): description", where the route must start with
// /llms.txt and the description is optional. Blank lines, heading lines
// and lines that don't match are skipped; this is best-effort extraction,
// not a validating parser. A route appearing twice keeps the last entry.
func Parse(content string) map[string]Entry {
	routes := make(map[string]Entry)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || headingRe.MatchString(line) {
			continue
		}

		m := linkRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		routes[strings.TrimSpace(m[2])] = Entry{
			Title:       strings.TrimSpace(m[1]),
			Description: strings.TrimSpace(m[3]),
		}
	}

	return routes
}
