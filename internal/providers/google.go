package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/epluris/epluris/backend/internal/models"
)

const googleBaseURL = "https://www.googleapis.com/customsearch/v1"

// Google adapts the Google Custom Search JSON API.
type Google struct {
	deps    EngineDeps
	baseURL string
}

// NewGoogle creates the Google adapter. baseURL overrides the production URL
// for tests; pass "" for the default.
func NewGoogle(deps EngineDeps, baseURL string) *Google {
	if baseURL == "" {
		baseURL = googleBaseURL
	}
	return &Google{deps: deps, baseURL: baseURL}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Search(ctx context.Context, query string, num int) ([]models.Result, error) {
	apiKey, err := g.deps.Secrets.GetSecret("GOOGLE_SEARCH_API_KEY")
	if err != nil {
		return nil, fmt.Errorf("%w: google api key", ErrMissingCredential)
	}
	cseID, err := g.deps.Secrets.GetSecret("GOOGLE_CSE_ID")
	if err != nil {
		return nil, fmt.Errorf("%w: google cse id", ErrMissingCredential)
	}

	u, err := url.Parse(g.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse google url: %v", err)
	}
	q := u.Query()
	q.Set("key", apiKey)
	q.Set("cx", cseID)
	q.Set("q", query)
	q.Set("num", fmt.Sprint(clampNum(num)))
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, g.deps.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build google request: %v", err)
	}
	req.Header.Set("User-Agent", userAgent)

	raw, err := doJSON(g.deps.client(), req, g.Name())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Items []struct {
			Title       string `json:"title"`
			Link        string `json:"link"`
			Snippet     string `json:"snippet"`
			DisplayLink string `json:"displayLink"`
			Pagemap     struct {
				CseImage []struct {
					Src string `json:"src"`
				} `json:"cse_image"`
				CseThumbnail []struct {
					Src string `json:"src"`
				} `json:"cse_thumbnail"`
			} `json:"pagemap"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: google", ErrMalformedResponse)
	}

	results := make([]models.Result, 0, len(payload.Items))
	for _, item := range payload.Items {
		if !ValidLink(item.Link) {
			continue
		}
		r := models.Result{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			Source:      g.Name(),
			DisplayLink: item.DisplayLink,
		}
		if len(item.Pagemap.CseImage) > 0 {
			r.Thumbnail = item.Pagemap.CseImage[0].Src
		} else if len(item.Pagemap.CseThumbnail) > 0 {
			r.Thumbnail = item.Pagemap.CseThumbnail[0].Src
		}
		results = append(results, r)
	}
	return results, nil
}
