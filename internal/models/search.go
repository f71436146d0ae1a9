package models

// SearchResult is one citation surfaced by a search provider, already
// normalized from whatever shape the provider used.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// SearchData is the full output of one search call: an optional synthesized
// summary plus the deduplicated result list in provider order.
type SearchData struct {
	Summary string         `json:"summary,omitempty"`
	Results []SearchResult `json:"results"`
}

// HasContent reports whether the search produced anything usable for
// grounding; a summary alone counts even with zero results.
func (d *SearchData) HasContent() bool {
	if d == nil {
		return false
	}
	return d.Summary != "" || len(d.Results) > 0
}
