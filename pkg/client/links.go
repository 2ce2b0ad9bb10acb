package client

import (
	"net/url"
	"strconv"

	"github.com/tomnomnom/linkheader"
)

// ParseLinks maps each rel of an RFC 5988 Link header to the page query
// parameter of its URL. Links without a numeric page are skipped.
func ParseLinks(header string) map[string]int {
	links := make(map[string]int)

	for _, link := range linkheader.Parse(header) {
		u, err := url.Parse(link.URL)
		if err != nil {
			continue
		}
		page, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil {
			continue
		}
		links[link.Rel] = page
	}
	return links
}
