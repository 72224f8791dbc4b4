// Package aggregator fans user queries out to search engines and government
// data endpoints and merges the results.
package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/epluris/epluris/backend/internal/cache"
	"github.com/epluris/epluris/backend/internal/models"
	"github.com/epluris/epluris/backend/internal/providers"
	"github.com/epluris/epluris/backend/internal/registry"
)

// ErrUnknownEngine is returned when a caller names a search engine that is
// not registered.
var ErrUnknownEngine = errors.New("unknown search engine")

// enginePriority fixes the merge ranking. Unlisted engines rank last.
var enginePriority = map[string]int{
	"google": 3,
	"bing":   2,
	"serper": 1,
}

// Metadata describes how a dataset response was produced.
type Metadata struct {
	Source       string    `json:"source"`
	Endpoint     string    `json:"endpoint"`
	Timestamp    time.Time `json:"timestamp"`
	ResponseTime int64     `json:"responseTime"`
	Cached       bool      `json:"cached,omitempty"`
}

// DatasetResponse is the envelope for a single endpoint invocation.
type DatasetResponse struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
}

// Aggregator orchestrates concurrent provider calls with partial-failure
// tolerance. Construct once per process and share; all methods are safe for
// concurrent use.
type Aggregator struct {
	log       *slog.Logger
	reg       *registry.Registry
	endpoints *providers.EndpointClient
	cache     *cache.Cache
	timeout   time.Duration
	engines   []providers.Engine
}

// New creates an Aggregator. Engines should be registered in priority order;
// dedup keeps the first occurrence of a link across engine contributions.
func New(log *slog.Logger, reg *registry.Registry, endpoints *providers.EndpointClient, c *cache.Cache, timeout time.Duration, engines ...providers.Engine) *Aggregator {
	if timeout <= 0 {
		timeout = providers.DefaultTimeout
	}
	return &Aggregator{
		log:       log,
		reg:       reg,
		endpoints: endpoints,
		cache:     c,
		timeout:   timeout,
		engines:   engines,
	}
}

// Engines lists the registered engine names in registration order.
func (a *Aggregator) Engines() []string {
	names := make([]string, 0, len(a.engines))
	for _, e := range a.engines {
		names = append(names, e.Name())
	}
	return names
}

// Search runs the query against one named engine. The engine's typed failure
// propagates to the caller unchanged.
func (a *Aggregator) Search(ctx context.Context, query, engineName string, num int) ([]models.Result, error) {
	for _, e := range a.engines {
		if e.Name() == engineName {
			return a.searchEngine(ctx, e, query, num)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engineName)
}

// SearchAll runs the query against every engine concurrently. Individual
// engine failures contribute nothing; the merged list is deduplicated by
// link (case-insensitive, first occurrence wins) and ranked by engine
// priority, ties broken by shorter title. num is advisory per engine and
// never caps the merged set.
func (a *Aggregator) SearchAll(ctx context.Context, query string, num int) []models.Result {
	perEngine := make([][]models.Result, len(a.engines))

	var wg sync.WaitGroup
	for i, e := range a.engines {
		wg.Add(1)
		go func(i int, e providers.Engine) {
			defer wg.Done()
			results, err := a.searchEngine(ctx, e, query, num)
			if err != nil {
				a.log.Warn("engine failed, skipping",
					slog.String("engine", e.Name()),
					slog.Any("err", err),
				)
				return
			}
			perEngine[i] = results
		}(i, e)
	}
	wg.Wait()

	var all []models.Result
	for _, results := range perEngine {
		all = append(all, results...)
	}
	return mergeAndRank(all)
}

// GovSearch fans the query out to the registry endpoints matching the filter
// tokens (all endpoints when tokens is empty). Failing endpoints are dropped
// from the response.
func (a *Aggregator) GovSearch(ctx context.Context, query string, tokens []string) []DatasetResponse {
	candidates := a.reg.CandidatesFor(tokens)
	responses := make([]*DatasetResponse, len(candidates))

	var wg sync.WaitGroup
	for i, ep := range candidates {
		wg.Add(1)
		go func(i int, ep registry.Endpoint) {
			defer wg.Done()
			resp, err := a.fetch(ctx, ep, searchParams(ep, query))
			if err != nil {
				a.log.Warn("endpoint failed, skipping",
					slog.String("endpoint", ep.ID),
					slog.Any("err", err),
				)
				return
			}
			responses[i] = resp
		}(i, ep)
	}
	wg.Wait()

	out := make([]DatasetResponse, 0, len(candidates))
	for _, resp := range responses {
		if resp != nil {
			out = append(out, *resp)
		}
	}
	return out
}

// GetDataset invokes a single registry endpoint. Unknown ids and provider
// failures surface to the caller as typed errors.
func (a *Aggregator) GetDataset(ctx context.Context, id string, params map[string]any) (*DatasetResponse, error) {
	ep, err := a.reg.Find(id)
	if err != nil {
		return nil, err
	}
	return a.fetch(ctx, ep, params)
}

func (a *Aggregator) fetch(ctx context.Context, ep registry.Endpoint, params map[string]any) (*DatasetResponse, error) {
	key := cache.Key(ep.ID, params)

	if raw, ok := a.cache.Get(key); ok {
		return &DatasetResponse{
			Success: true,
			Data:    json.RawMessage(raw),
			Metadata: Metadata{
				Source:    ep.Category,
				Endpoint:  ep.ID,
				Timestamp: time.Now().UTC(),
				Cached:    true,
			},
		}, nil
	}

	start := time.Now()
	raw, err := a.endpoints.Invoke(ctx, ep, params, a.timeout)
	if err != nil {
		return nil, err
	}

	a.cache.Put(key, raw)

	return &DatasetResponse{
		Success: true,
		Data:    raw,
		Metadata: Metadata{
			Source:       ep.Category,
			Endpoint:     ep.ID,
			Timestamp:    time.Now().UTC(),
			ResponseTime: time.Since(start).Milliseconds(),
		},
	}, nil
}

// searchEngine applies the result cache around one engine call. Hits return
// the stored results without touching the network.
func (a *Aggregator) searchEngine(ctx context.Context, e providers.Engine, query string, num int) ([]models.Result, error) {
	key := cache.Key("engine:"+e.Name(), map[string]any{"q": query, "num": num})

	if raw, ok := a.cache.Get(key); ok {
		var results []models.Result
		if err := json.Unmarshal(raw, &results); err == nil {
			return results, nil
		}
	}

	results, err := e.Search(ctx, query, num)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(results); err == nil {
		a.cache.Put(key, raw)
	}
	return results, nil
}

// searchParams adapts the free-text query to each endpoint family, mirroring
// how the upstream APIs expect it.
func searchParams(ep registry.Endpoint, query string) map[string]any {
	switch ep.Category {
	case "GovInfo":
		return map[string]any{"query": query, "pageSize": 5, "offsetMark": "*"}
	case "Congress":
		return map[string]any{"q": query, "format": "json", "limit": 5}
	case "Federal Register":
		// The facets endpoint counts documents; the query does not apply.
		return map[string]any{"facet": "daily"}
	default:
		return map[string]any{"q": query}
	}
}

// mergeAndRank deduplicates by link and applies the deterministic ranking.
// Input order must be engine-invocation order so that dedup keeps the
// highest-priority occurrence.
func mergeAndRank(results []models.Result) []models.Result {
	seen := make(map[string]struct{}, len(results))
	unique := make([]models.Result, 0, len(results))
	for _, r := range results {
		key := strings.ToLower(r.Link)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		pi, pj := enginePriority[unique[i].Source], enginePriority[unique[j].Source]
		if pi != pj {
			return pi > pj
		}
		return len(unique[i].Title) < len(unique[j].Title)
	})

	return unique
}
