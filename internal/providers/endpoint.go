// Package providers contains the adapters that talk to external search and
// government data APIs and normalize their responses.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/epluris/epluris/backend/internal/registry"
	"github.com/epluris/epluris/backend/internal/secrets"
)

// DefaultTimeout bounds upstream calls when the caller does not supply one.
const DefaultTimeout = 30 * time.Second

const userAgent = "ePluris/1.0"

// EndpointClient invokes registry endpoints, building the outbound request
// from the descriptor.
type EndpointClient struct {
	httpClient *http.Client
	secrets    secrets.Provider
}

// NewEndpointClient creates an EndpointClient. A nil httpClient falls back to
// http.DefaultClient; per-call deadlines come from the context.
func NewEndpointClient(httpClient *http.Client, sp secrets.Provider) *EndpointClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &EndpointClient{httpClient: httpClient, secrets: sp}
}

// Invoke calls the endpoint with the given parameters and returns the raw
// JSON payload. Path placeholders are substituted from params; for GET the
// remaining params become query entries, for POST they become the JSON body.
func (c *EndpointClient) Invoke(ctx context.Context, ep registry.Endpoint, params map[string]any, timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var key string
	if ep.RequiresKey {
		v, err := c.secrets.GetSecret(ep.SecretName)
		if err != nil {
			return nil, fmt.Errorf("%w: endpoint %s needs %s", ErrMissingCredential, ep.ID, ep.SecretName)
		}
		key = v
	}

	rawURL, remaining := expandPath(ep.URL, params)

	var body io.Reader
	switch ep.Method {
	case http.MethodPost:
		payload, err := json.Marshal(remaining)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %v", err)
		}
		body = bytes.NewReader(payload)
	default:
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint url: %v", err)
		}
		q := u.Query()
		encodeParams(q, remaining)
		if key != "" && ep.KeyLocation == registry.KeyInQuery {
			q.Set(ep.KeyName, key)
		}
		u.RawQuery = q.Encode()
		rawURL = u.String()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, ep.Method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if ep.Method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
		if key != "" && ep.KeyLocation == registry.KeyInQuery {
			q := req.URL.Query()
			q.Set(ep.KeyName, key)
			req.URL.RawQuery = q.Encode()
		}
	}
	if key != "" && ep.KeyLocation == registry.KeyInHeader {
		req.Header.Set(ep.KeyName, key)
	}

	return doJSON(c.httpClient, req, ep.ID)
}

// expandPath substitutes {param} placeholders in the URL template and returns
// the expanded URL plus the parameters that were not consumed.
func expandPath(template string, params map[string]any) (string, map[string]any) {
	remaining := make(map[string]any, len(params))
	for k, v := range params {
		placeholder := "{" + k + "}"
		if strings.Contains(template, placeholder) {
			template = strings.ReplaceAll(template, placeholder, url.PathEscape(fmt.Sprint(v)))
			continue
		}
		remaining[k] = v
	}
	return template, remaining
}

// encodeParams serializes params into query values: slices become repeated
// keys and nested objects are JSON-encoded into a single value.
func encodeParams(q url.Values, params map[string]any) {
	for k, v := range params {
		switch vv := v.(type) {
		case nil:
			continue
		case []any:
			for _, item := range vv {
				q.Add(k, fmt.Sprint(item))
			}
		case []string:
			for _, item := range vv {
				q.Add(k, item)
			}
		case map[string]any:
			encoded, err := json.Marshal(vv)
			if err != nil {
				continue
			}
			q.Add(k, string(encoded))
		default:
			q.Add(k, fmt.Sprint(v))
		}
	}
}

// doJSON executes the request and enforces the shared error taxonomy.
func doJSON(client *http.Client, req *http.Request, provider string) (json.RawMessage, error) {
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, provider)
		}
		return nil, fmt.Errorf("call %s: %w", provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, provider)
		}
		return nil, fmt.Errorf("read %s response: %w", provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{
			Provider: provider,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(data)),
		}
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, provider)
	}

	return json.RawMessage(data), nil
}
