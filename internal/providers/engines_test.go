package providers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/epluris/epluris/backend/internal/providers"
	"github.com/epluris/epluris/backend/internal/secrets"
	"github.com/stretchr/testify/require"
)

func engineSecrets() secrets.Static {
	return secrets.Static{
		"GOOGLE_SEARCH_API_KEY": "g-key",
		"GOOGLE_CSE_ID":         "g-cse",
		"BING_SEARCH_API_KEY":   "b-key",
		"SERPER_API_KEY":        "s-key",
	}
}

func TestGoogleSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "g-key", q.Get("key"))
		require.Equal(t, "g-cse", q.Get("cx"))
		require.Equal(t, "climate change", q.Get("q"))
		require.Equal(t, "10", q.Get("num"))

		io.WriteString(w, `{"items":[
			{"title":"EPA Climate","link":"https://epa.gov/climate","snippet":"about climate","displayLink":"epa.gov",
			 "pagemap":{"cse_image":[{"src":"https://epa.gov/img.png"}]}},
			{"title":"No Link"},
			{"title":"NOAA","link":"https://noaa.gov","snippet":"oceans"}
		]}`)
	}))
	defer srv.Close()

	g := providers.NewGoogle(providers.EngineDeps{HTTPClient: srv.Client(), Secrets: engineSecrets()}, srv.URL)
	results, err := g.Search(context.Background(), "climate change", 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	require.Equal(t, "EPA Climate", results[0].Title)
	require.Equal(t, "https://epa.gov/img.png", results[0].Thumbnail)
	require.Equal(t, "epa.gov", results[0].DisplayLink)
	require.Equal(t, "google", results[0].Source)
}

func TestGoogleMissingCredential(t *testing.T) {
	g := providers.NewGoogle(providers.EngineDeps{Secrets: secrets.Static{}}, "http://unused")
	_, err := g.Search(context.Background(), "q", 10)
	require.ErrorIs(t, err, providers.ErrMissingCredential)
}

func TestBingSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "b-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		require.Equal(t, "tariffs", r.URL.Query().Get("q"))

		io.WriteString(w, `{"webPages":{"value":[
			{"name":"USITC","url":"https://usitc.gov/hts","snippet":"tariff schedule","displayUrl":"usitc.gov","datePublished":"2026-01-01"},
			{"name":"bad","url":"not-a-url"}
		]}}`)
	}))
	defer srv.Close()

	b := providers.NewBing(providers.EngineDeps{HTTPClient: srv.Client(), Secrets: engineSecrets()}, srv.URL)
	results, err := b.Search(context.Background(), "tariffs", 5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	require.Equal(t, "USITC", results[0].Title)
	require.Equal(t, "2026-01-01", results[0].PublishedDate)
	require.Equal(t, "bing", results[0].Source)
}

func TestSerperSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "s-key", r.Header.Get("X-API-KEY"))

		io.WriteString(w, `{"organic":[
			{"title":"Federal Register","link":"https://federalregister.gov","snippet":"daily journal","date":"2026-02-02"}
		]}`)
	}))
	defer srv.Close()

	s := providers.NewSerper(providers.EngineDeps{HTTPClient: srv.Client(), Secrets: engineSecrets()}, srv.URL)
	results, err := s.Search(context.Background(), "register", 5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	require.Equal(t, "Federal Register", results[0].Title)
	require.Equal(t, "serper", results[0].Source)
}

func TestEngineRemoteErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	b := providers.NewBing(providers.EngineDeps{HTTPClient: srv.Client(), Secrets: engineSecrets()}, srv.URL)
	_, err := b.Search(context.Background(), "q", 5)

	var remoteErr *providers.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	require.Equal(t, http.StatusForbidden, remoteErr.Status)
}
