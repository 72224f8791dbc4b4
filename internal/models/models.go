package models

import "time"

// Result is the normalized shape every search provider produces.
// Link doubles as the dedup identity across providers.
type Result struct {
	Title         string `json:"title"`
	Link          string `json:"link"`
	Snippet       string `json:"snippet"`
	Source        string `json:"source"`
	Thumbnail     string `json:"thumbnail,omitempty"`
	DisplayLink   string `json:"displayLink,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
}

// VaultDocument is the canonical structure stored in Elasticsearch.
type VaultDocument struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Source      string         `json:"source"`
	SourceURL   string         `json:"sourceUrl"`
	Tags        []string       `json:"tags"`
	Notes       string         `json:"notes,omitempty"`
	SavedAt     time.Time      `json:"savedAt"`
	DeletedAt   *time.Time     `json:"deletedAt,omitempty"`
	Metadata    *VaultMetadata `json:"metadata,omitempty"`
}

// VaultMetadata carries provenance details copied from the originating API.
type VaultMetadata struct {
	OriginalID    string `json:"originalId,omitempty"`
	Agency        string `json:"agency,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
}

// VaultStats summarizes one user's vault.
type VaultStats struct {
	TotalDocuments int64          `json:"totalDocuments"`
	TotalTags      int64          `json:"totalTags"`
	Sources        map[string]int `json:"sources"`
	LastUpdated    time.Time      `json:"lastUpdated"`
}

// SaveEvent is the Kafka payload produced by the API on a vault save and
// consumed by the worker.
type SaveEvent struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Source      string         `json:"source"`
	SourceURL   string         `json:"sourceUrl"`
	Tags        []string       `json:"tags"`
	Notes       string         `json:"notes,omitempty"`
	SavedAt     string         `json:"savedAt"`
	Metadata    *VaultMetadata `json:"metadata,omitempty"`
}
