package domain

import (
	"fmt"
	"strings"
	"time"
)

// Default connection and query values.
const (
	DefaultAPIVersion     = "2021-04-30-Preview"
	DefaultIndex          = "azuresql-index-v2"
	DefaultPageSize       = 10
	DefaultMaxBatchSize   = 1000
	DefaultListingSort    = "ItemNum asc"
	DefaultExportPrefix   = "mbs-search-results"
	DefaultExportTZ       = "Australia/Sydney"
	DefaultResetDelay     = 5 * time.Second
	DefaultServerAddr     = "127.0.0.1:8080"
	DefaultRequestTimeout = 30 * time.Second
)

// AuthMode selects how requests to the search service are authenticated.
type AuthMode string

// Available auth modes.
const (
	// AuthAPIKey sends the query or admin key in the api-key header.
	AuthAPIKey AuthMode = "api-key"

	// AuthEntra obtains bearer tokens with the client-credentials flow.
	AuthEntra AuthMode = "entra"
)

// IsValid returns true if the auth mode is recognised.
func (m AuthMode) IsValid() bool {
	return m == AuthAPIKey || m == AuthEntra
}

// ServiceSettings describes the search service connection.
type ServiceSettings struct {
	// Endpoint is the service base URL, e.g. https://name.search.windows.net.
	Endpoint string

	// APIKey is the query key used with AuthAPIKey.
	APIKey string

	// Index is the index name.
	Index string

	// APIVersion is the REST API version.
	APIVersion string

	// Timeout bounds a single request.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64

	// Auth selects the authentication scheme.
	Auth AuthMode

	// TenantID, ClientID and ClientSecret configure AuthEntra.
	TenantID     string
	ClientID     string
	ClientSecret string
}

// IsConfigured returns true if the connection has enough to send requests.
func (s ServiceSettings) IsConfigured() bool {
	if s.Endpoint == "" || s.Index == "" {
		return false
	}
	if s.Auth == AuthEntra {
		return s.TenantID != "" && s.ClientID != "" && s.ClientSecret != ""
	}
	return s.APIKey != ""
}

// QuerySettings holds the fixed parts of every search request.
type QuerySettings struct {
	PageSize              int
	MaxBatchSize          int
	SearchFields          []string
	SelectFields          []string
	FacetFields           []string
	UnquotedFields        []string
	HighlightFields       []string
	HighlightPreTag       string
	HighlightPostTag      string
	SemanticConfiguration string
	QueryLanguage         string
	Answers               string
	Captions              string

	// ListingSort orders results when sorting by relevance without query text.
	ListingSort string

	// FacetLabels maps facet field names to display labels.
	FacetLabels map[string]string
}

// ExportSettings configures export files.
type ExportSettings struct {
	// Dir is where the directory sink writes files.
	Dir string

	// FilenamePrefix starts every export filename.
	FilenamePrefix string

	// Timezone is the IANA zone used for dates in exports and filenames.
	Timezone string

	// ResetDelay is how long a finished export stays visible before the
	// export state returns to idle.
	ResetDelay time.Duration
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string
}

// Settings is the complete application configuration.
type Settings struct {
	Service ServiceSettings
	Query   QuerySettings
	Export  ExportSettings
	Server  ServerSettings
}

// DefaultSettings returns settings with sensible defaults.
// The connection endpoint and credentials have no default.
func DefaultSettings() Settings {
	return Settings{
		Service: ServiceSettings{
			Index:             DefaultIndex,
			APIVersion:        DefaultAPIVersion,
			Timeout:           DefaultRequestTimeout,
			RequestsPerSecond: 5,
			Auth:              AuthAPIKey,
		},
		Query: QuerySettings{
			PageSize:     DefaultPageSize,
			MaxBatchSize: DefaultMaxBatchSize,
			SearchFields: []string{
				"Description", "HumanReadableDescription", "ItemNumAlias",
				"CategoryDescription", "GroupDescription",
			},
			SelectFields: []string{
				"MBSItemId", "ItemNum", "ItemNumAlias", "Description", "HumanReadableDescription",
				"Category", "CategoryDescription", "Group", "GroupDescription", "ItemType",
				"ItemStartDate", "ItemEndDate", "ScheduleFee", "NewItem", "FeeType",
			},
			FacetFields:           []string{"CategoryDescription", "GroupDescription"},
			UnquotedFields:        []string{"Category", "SubGroup", "SubHeading", "ScheduleId", "ItemNum"},
			HighlightFields:       []string{"Description"},
			HighlightPreTag:       "<mark>",
			HighlightPostTag:      "</mark>",
			SemanticConfiguration: "default",
			QueryLanguage:         "en-us",
			Answers:               "extractive|count-3",
			Captions:              "extractive|highlight-false",
			ListingSort:           DefaultListingSort,
			FacetLabels: map[string]string{
				"CategoryDescription": "Category",
				"GroupDescription":    "Group",
			},
		},
		Export: ExportSettings{
			FilenamePrefix: DefaultExportPrefix,
			Timezone:       DefaultExportTZ,
			ResetDelay:     DefaultResetDelay,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
	}
}

// Validate checks values that would produce malformed requests.
func (s Settings) Validate() error {
	if !s.Service.Auth.IsValid() {
		return fmt.Errorf("%w: unknown auth mode %q", ErrInvalidInput, s.Service.Auth)
	}
	if s.Query.PageSize < 1 {
		return fmt.Errorf("%w: page size must be positive", ErrInvalidInput)
	}
	if s.Query.MaxBatchSize < 1 {
		return fmt.Errorf("%w: max batch size must be positive", ErrInvalidInput)
	}
	for _, f := range s.Query.FacetFields {
		if !IsFieldName(f) {
			return fmt.Errorf("%w: invalid facet field %q", ErrInvalidInput, f)
		}
	}
	if !s.Service.IsConfigured() {
		return ErrNotConfigured
	}
	return nil
}

// FacetLabel returns the display label of a facet field.
func (q QuerySettings) FacetLabel(field string) string {
	if label, ok := q.FacetLabels[field]; ok && label != "" {
		return label
	}
	return field
}

// IsSecretSetting reports whether a setting key holds a credential.
func IsSecretSetting(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "secret")
}

// MaskSecret hides all but the last four characters of a credential.
func MaskSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
