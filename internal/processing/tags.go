// Package processing derives tags and cleans text for vault documents.
package processing

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	urlRegex    = regexp.MustCompile(`https?://[^\s]+`)
	whitespace  = regexp.MustCompile(`\s+`)
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "to": {}, "in": {}, "for": {},
	"of": {}, "and": {}, "or": {}, "on": {}, "with": {}, "from": {},
	"by": {}, "that": {}, "this": {}, "data": {}, "federal": {},
	"government": {}, "states": {}, "united": {},
}

// CleanText strips HTML entities, URLs, and punctuation, then squeezes
// whitespace.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(input)
	decoded = urlRegex.ReplaceAllString(decoded, " ")
	decoded = punctuation.ReplaceAllString(decoded, " ")
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// SuggestTags returns the most frequent words in text that are not
// stop-words, for use as vault tags when the user supplied none.
func SuggestTags(text string, limit, minLen int) []string {
	clean := strings.ToLower(CleanText(text))
	if clean == "" {
		return nil
	}

	freq := make(map[string]int)
	for _, token := range strings.Fields(clean) {
		token = strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len([]rune(token)) < minLen {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		freq[token]++
	}

	if len(freq) == 0 {
		return nil
	}

	type kv struct {
		word  string
		count int
	}

	pairs := make([]kv, 0, len(freq))
	for word, count := range freq {
		pairs = append(pairs, kv{word: word, count: count})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count == pairs[j].count {
			return pairs[i].word < pairs[j].word
		}
		return pairs[i].count > pairs[j].count
	})

	max := limit
	if max <= 0 || max > len(pairs) {
		max = len(pairs)
	}

	tags := make([]string, 0, max)
	for i := 0; i < max; i++ {
		tags = append(tags, pairs[i].word)
	}

	return tags
}

// NormalizeTags lowercases, trims, and deduplicates user-supplied tags while
// preserving their order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
