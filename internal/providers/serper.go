package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/epluris/epluris/backend/internal/models"
)

const serperBaseURL = "https://google.serper.dev/search"

// Serper adapts the serper.dev search API.
type Serper struct {
	deps    EngineDeps
	baseURL string
}

// NewSerper creates the Serper adapter. baseURL overrides the production URL
// for tests; pass "" for the default.
func NewSerper(deps EngineDeps, baseURL string) *Serper {
	if baseURL == "" {
		baseURL = serperBaseURL
	}
	return &Serper{deps: deps, baseURL: baseURL}
}

func (s *Serper) Name() string { return "serper" }

func (s *Serper) Search(ctx context.Context, query string, num int) ([]models.Result, error) {
	apiKey, err := s.deps.Secrets.GetSecret("SERPER_API_KEY")
	if err != nil {
		return nil, fmt.Errorf("%w: serper api key", ErrMissingCredential)
	}

	body, err := json.Marshal(map[string]any{
		"q":   query,
		"num": clampNum(num),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal serper body: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.deps.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build serper request: %v", err)
	}
	req.Header.Set("X-API-KEY", apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	raw, err := doJSON(s.deps.client(), req, s.Name())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
			Date    string `json:"date"`
		} `json:"organic"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: serper", ErrMalformedResponse)
	}

	results := make([]models.Result, 0, len(payload.Organic))
	for _, item := range payload.Organic {
		if !ValidLink(item.Link) {
			continue
		}
		results = append(results, models.Result{
			Title:         item.Title,
			Link:          item.Link,
			Snippet:       item.Snippet,
			Source:        s.Name(),
			PublishedDate: item.Date,
		})
	}
	return results, nil
}
