package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/epluris/epluris/backend/internal/models"
)

const bingBaseURL = "https://api.bing.microsoft.com/v7.0/search"

// Bing adapts the Bing Web Search API.
type Bing struct {
	deps    EngineDeps
	baseURL string
}

// NewBing creates the Bing adapter. baseURL overrides the production URL for
// tests; pass "" for the default.
func NewBing(deps EngineDeps, baseURL string) *Bing {
	if baseURL == "" {
		baseURL = bingBaseURL
	}
	return &Bing{deps: deps, baseURL: baseURL}
}

func (b *Bing) Name() string { return "bing" }

func (b *Bing) Search(ctx context.Context, query string, num int) ([]models.Result, error) {
	apiKey, err := b.deps.Secrets.GetSecret("BING_SEARCH_API_KEY")
	if err != nil {
		return nil, fmt.Errorf("%w: bing api key", ErrMissingCredential)
	}

	u, err := url.Parse(b.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse bing url: %v", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", fmt.Sprint(clampNum(num)))
	q.Set("mkt", "en-US")
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, b.deps.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build bing request: %v", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", apiKey)
	req.Header.Set("User-Agent", userAgent)

	raw, err := doJSON(b.deps.client(), req, b.Name())
	if err != nil {
		return nil, err
	}

	var payload struct {
		WebPages struct {
			Value []struct {
				Name          string `json:"name"`
				URL           string `json:"url"`
				Snippet       string `json:"snippet"`
				DisplayURL    string `json:"displayUrl"`
				ThumbnailURL  string `json:"thumbnailUrl"`
				DatePublished string `json:"datePublished"`
			} `json:"value"`
		} `json:"webPages"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: bing", ErrMalformedResponse)
	}

	results := make([]models.Result, 0, len(payload.WebPages.Value))
	for _, item := range payload.WebPages.Value {
		if !ValidLink(item.URL) {
			continue
		}
		results = append(results, models.Result{
			Title:         item.Name,
			Link:          item.URL,
			Snippet:       item.Snippet,
			Source:        b.Name(),
			DisplayLink:   item.DisplayURL,
			Thumbnail:     item.ThumbnailURL,
			PublishedDate: item.DatePublished,
		})
	}
	return results, nil
}
