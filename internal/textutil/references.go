package textutil

import (
	"fmt"
	"strings"
)

const (
	// ReferenceHeader opens the rendered sources block.
	ReferenceHeader = "Nguồn tham khảo:"
	// NoSourcesLine is rendered when a search pipeline produced no citations;
	// the section is always present, never omitted.
	NoSourcesLine = "Không có nguồn tham khảo."
	// MaxDisplaySources caps the rendered citation count.
	MaxDisplaySources = 5
)

// Citation is one source record, independent of which provider produced it.
// Ref is a URL or an uploaded-file handle.
type Citation struct {
	Title string
	Ref   string
}

// FormatReferences renders the sources block: fixed header, one numbered
// line per citation in first-seen order, capped at MaxDisplaySources.
func FormatReferences(citations []Citation) string {
	var b strings.Builder
	b.WriteString(ReferenceHeader)
	if len(citations) == 0 {
		b.WriteString("\n")
		b.WriteString(NoSourcesLine)
		return b.String()
	}
	if len(citations) > MaxDisplaySources {
		citations = citations[:MaxDisplaySources]
	}
	for i, c := range citations {
		b.WriteString("\n")
		if c.Ref != "" {
			fmt.Fprintf(&b, "%d) %s - %s", i+1, c.Title, c.Ref)
		} else {
			fmt.Fprintf(&b, "%d) %s", i+1, c.Title)
		}
	}
	return b.String()
}
