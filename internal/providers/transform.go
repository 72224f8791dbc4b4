package providers

import (
	"net/url"

	"github.com/epluris/epluris/backend/internal/models"
)

var (
	titleAliases   = []string{"title", "name", "fullName"}
	linkAliases    = []string{"link", "url", "website"}
	snippetAliases = []string{"snippet", "description", "summary", "details"}
)

// NormalizeItems maps loosely-shaped JSON objects into the common result
// shape using field alias chains. Items without a valid absolute link are
// dropped.
func NormalizeItems(items []map[string]any, source string) []models.Result {
	out := make([]models.Result, 0, len(items))
	for _, item := range items {
		r := models.Result{
			Title:   firstString(item, titleAliases...),
			Link:    firstString(item, linkAliases...),
			Snippet: firstString(item, snippetAliases...),
			Source:  source,
		}
		if r.Title == "" || !ValidLink(r.Link) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ValidLink reports whether s is a syntactically valid absolute http(s) URL.
func ValidLink(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func firstString(item map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := item[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
