// Package processor turns raw agent replies into delivery-ready results:
// extracted source links, reformatted text, and generated images.
package processor

import "regexp"

var hyperlinkPattern = regexp.MustCompile(`https?://[^\s)]+`)

// ExtractHyperlinks pulls every http(s) URL out of text, deduplicated and in
// first-occurrence order. The returned slice is never nil.
func ExtractHyperlinks(text string) []string {
	matches := hyperlinkPattern.FindAllString(text, -1)
	links := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		links = append(links, m)
	}
	return links
}
