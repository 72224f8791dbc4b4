package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/epluris/epluris/backend/internal/models"
	"github.com/epluris/epluris/backend/internal/secrets"
)

// Engine is implemented by each web search provider.
type Engine interface {
	// Search runs the query and returns normalized results. num is advisory;
	// providers may return fewer or more items.
	Search(ctx context.Context, query string, num int) ([]models.Result, error)
	Name() string
}

// EngineDeps bundles what every engine adapter needs.
type EngineDeps struct {
	HTTPClient *http.Client
	Secrets    secrets.Provider
	Timeout    time.Duration
}

func (d EngineDeps) client() *http.Client {
	if d.HTTPClient == nil {
		return http.DefaultClient
	}
	return d.HTTPClient
}

func (d EngineDeps) timeout() time.Duration {
	if d.Timeout <= 0 {
		return DefaultTimeout
	}
	return d.Timeout
}

func clampNum(num int) int {
	if num <= 0 {
		return 10
	}
	return num
}
