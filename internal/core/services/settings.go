package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEndpoint          = "search.endpoint"
	keyAPIKey            = "search.api_key"
	keyIndex             = "search.index"
	keyAPIVersion        = "search.api_version"
	keyTimeout           = "search.timeout_seconds"
	keyRequestsPerSecond = "search.requests_per_second"
	keyAuthMode          = "search.auth.mode"
	keyTenantID          = "search.auth.tenant_id"
	keyClientID          = "search.auth.client_id"
	keyClientSecret      = "search.auth.client_secret"
	keyPageSize          = "search.page_size"
	keyMaxBatchSize      = "search.max_batch_size"
	keyListingSort       = "search.listing_sort"
	keySearchFields      = "search.search_fields"
	keySelectFields      = "search.select_fields"
	keyFacetFields       = "search.facet_fields"
	keyFacetLabels       = "search.facet_labels"
	keyUnquotedFields    = "search.unquoted_fields"
	keyHighlightFields   = "search.highlight_fields"
	keyHighlightPreTag   = "search.highlight_pre_tag"
	keyHighlightPostTag  = "search.highlight_post_tag"
	keySemanticConfig    = "search.semantic_configuration"
	keyQueryLanguage     = "search.query_language"
	keyAnswers           = "search.answers"
	keyCaptions          = "search.captions"
	keyExportDir         = "export.dir"
	keyExportPrefix      = "export.filename_prefix"
	keyExportTimezone    = "export.timezone"
	keyExportResetDelay  = "export.reset_delay_seconds"
	keyServerAddr        = "server.addr"
)

// Environment variables that override stored connection settings.
const (
	EnvEndpoint = "MBSEARCH_ENDPOINT"
	EnvAPIKey   = "MBSEARCH_API_KEY"
	EnvIndex    = "MBSEARCH_INDEX"
)

// keyKind is the stored type of a setting.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindList
)

var settingKinds = map[string]keyKind{
	keyEndpoint:          kindString,
	keyAPIKey:            kindString,
	keyIndex:             kindString,
	keyAPIVersion:        kindString,
	keyTimeout:           kindInt,
	keyRequestsPerSecond: kindFloat,
	keyAuthMode:          kindString,
	keyTenantID:          kindString,
	keyClientID:          kindString,
	keyClientSecret:      kindString,
	keyPageSize:          kindInt,
	keyMaxBatchSize:      kindInt,
	keyListingSort:       kindString,
	keySearchFields:      kindList,
	keySelectFields:      kindList,
	keyFacetFields:       kindList,
	keyFacetLabels:       kindList,
	keyUnquotedFields:    kindList,
	keyHighlightFields:   kindList,
	keyHighlightPreTag:   kindString,
	keyHighlightPostTag:  kindString,
	keySemanticConfig:    kindString,
	keyQueryLanguage:     kindString,
	keyAnswers:           kindString,
	keyCaptions:          kindString,
	keyExportDir:         kindString,
	keyExportPrefix:      kindString,
	keyExportTimezone:    kindString,
	keyExportResetDelay:  kindInt,
	keyServerAddr:        kindString,
}

// SettingsService resolves application settings from the config store.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get returns the effective settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Service: domain.ServiceSettings{
			Endpoint:          strings.TrimRight(s.getEnvString(EnvEndpoint, keyEndpoint, ""), "/"),
			APIKey:            s.getEnvString(EnvAPIKey, keyAPIKey, ""),
			Index:             s.getEnvString(EnvIndex, keyIndex, d.Service.Index),
			APIVersion:        s.getString(keyAPIVersion, d.Service.APIVersion),
			Timeout:           s.getSeconds(keyTimeout, d.Service.Timeout),
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, d.Service.RequestsPerSecond),
			Auth:              domain.AuthMode(s.getString(keyAuthMode, string(d.Service.Auth))),
			TenantID:          s.configStore.GetString(keyTenantID),
			ClientID:          s.configStore.GetString(keyClientID),
			ClientSecret:      s.configStore.GetString(keyClientSecret),
		},
		Query: domain.QuerySettings{
			PageSize:              s.getInt(keyPageSize, d.Query.PageSize),
			MaxBatchSize:          s.getInt(keyMaxBatchSize, d.Query.MaxBatchSize),
			SearchFields:          s.getList(keySearchFields, d.Query.SearchFields),
			SelectFields:          s.getList(keySelectFields, d.Query.SelectFields),
			FacetFields:           s.getList(keyFacetFields, d.Query.FacetFields),
			UnquotedFields:        s.getList(keyUnquotedFields, d.Query.UnquotedFields),
			HighlightFields:       s.getList(keyHighlightFields, d.Query.HighlightFields),
			HighlightPreTag:       s.getString(keyHighlightPreTag, d.Query.HighlightPreTag),
			HighlightPostTag:      s.getString(keyHighlightPostTag, d.Query.HighlightPostTag),
			SemanticConfiguration: s.getString(keySemanticConfig, d.Query.SemanticConfiguration),
			QueryLanguage:         s.getString(keyQueryLanguage, d.Query.QueryLanguage),
			Answers:               s.getString(keyAnswers, d.Query.Answers),
			Captions:              s.getString(keyCaptions, d.Query.Captions),
			ListingSort:           s.getString(keyListingSort, d.Query.ListingSort),
			FacetLabels:           s.getLabels(d.Query.FacetLabels),
		},
		Export: domain.ExportSettings{
			Dir:            s.configStore.GetString(keyExportDir),
			FilenamePrefix: s.getString(keyExportPrefix, d.Export.FilenamePrefix),
			Timezone:       s.getString(keyExportTimezone, d.Export.Timezone),
			ResetDelay:     s.getSeconds(keyExportResetDelay, d.Export.ResetDelay),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, d.Server.Addr),
		},
	}

	return settings, nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var stored any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		stored = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		stored = b
	case kindList:
		stored = splitList(value)
	default:
		stored = value
	}

	if err := s.checkValue(key, stored); err != nil {
		return err
	}
	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the recognised setting keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the effective value of key formatted for display.
// Lists are comma separated and durations are in seconds.
func (s *SettingsService) Value(key string) (string, error) {
	if _, ok := settingKinds[key]; !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	st, err := s.Get()
	if err != nil {
		return "", err
	}

	seconds := func(d time.Duration) string { return strconv.Itoa(int(d / time.Second)) }
	list := func(v []string) string { return strings.Join(v, ",") }

	switch key {
	case keyEndpoint:
		return st.Service.Endpoint, nil
	case keyAPIKey:
		return st.Service.APIKey, nil
	case keyIndex:
		return st.Service.Index, nil
	case keyAPIVersion:
		return st.Service.APIVersion, nil
	case keyTimeout:
		return seconds(st.Service.Timeout), nil
	case keyRequestsPerSecond:
		return strconv.FormatFloat(st.Service.RequestsPerSecond, 'f', -1, 64), nil
	case keyAuthMode:
		return string(st.Service.Auth), nil
	case keyTenantID:
		return st.Service.TenantID, nil
	case keyClientID:
		return st.Service.ClientID, nil
	case keyClientSecret:
		return st.Service.ClientSecret, nil
	case keyPageSize:
		return strconv.Itoa(st.Query.PageSize), nil
	case keyMaxBatchSize:
		return strconv.Itoa(st.Query.MaxBatchSize), nil
	case keyListingSort:
		return st.Query.ListingSort, nil
	case keySearchFields:
		return list(st.Query.SearchFields), nil
	case keySelectFields:
		return list(st.Query.SelectFields), nil
	case keyFacetFields:
		return list(st.Query.FacetFields), nil
	case keyFacetLabels:
		pairs := make([]string, 0, len(st.Query.FacetLabels))
		for field, label := range st.Query.FacetLabels {
			pairs = append(pairs, field+"="+label)
		}
		sort.Strings(pairs)
		return list(pairs), nil
	case keyUnquotedFields:
		return list(st.Query.UnquotedFields), nil
	case keyHighlightFields:
		return list(st.Query.HighlightFields), nil
	case keyHighlightPreTag:
		return st.Query.HighlightPreTag, nil
	case keyHighlightPostTag:
		return st.Query.HighlightPostTag, nil
	case keySemanticConfig:
		return st.Query.SemanticConfiguration, nil
	case keyQueryLanguage:
		return st.Query.QueryLanguage, nil
	case keyAnswers:
		return st.Query.Answers, nil
	case keyCaptions:
		return st.Query.Captions, nil
	case keyExportDir:
		return st.Export.Dir, nil
	case keyExportPrefix:
		return st.Export.FilenamePrefix, nil
	case keyExportTimezone:
		return st.Export.Timezone, nil
	case keyExportResetDelay:
		return seconds(st.Export.ResetDelay), nil
	case keyServerAddr:
		return st.Server.Addr, nil
	}
	return "", nil
}

// Validate checks the effective settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// checkValue rejects values that would never produce a working request.
func (s *SettingsService) checkValue(key string, value any) error {
	switch key {
	case keyAuthMode:
		if !domain.AuthMode(value.(string)).IsValid() {
			return fmt.Errorf("%w: auth mode must be %q or %q",
				domain.ErrInvalidInput, domain.AuthAPIKey, domain.AuthEntra)
		}
	case keyPageSize, keyMaxBatchSize:
		if value.(int) < 1 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
	case keyFacetFields, keyUnquotedFields, keySearchFields, keyHighlightFields:
		for _, f := range value.([]string) {
			if !domain.IsFieldName(f) {
				return fmt.Errorf("%w: invalid field name %q", domain.ErrInvalidInput, f)
			}
		}
	case keyExportTimezone:
		if _, err := time.LoadLocation(value.(string)); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", domain.ErrInvalidInput, value)
		}
	case keyListingSort:
		if v := value.(string); v != "" && !domain.SortOption(v).IsValid() {
			return fmt.Errorf("%w: invalid sort %q", domain.ErrInvalidInput, v)
		}
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getEnvString(env, key, defaultVal string) string {
	if val := strings.TrimSpace(s.getenv(env)); val != "" {
		return val
	}
	return s.getString(key, defaultVal)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return append([]string(nil), defaultVal...)
	}
	return val
}

// getLabels reads Field=Label pairs over the default labels.
func (s *SettingsService) getLabels(defaultVal map[string]string) map[string]string {
	labels := make(map[string]string, len(defaultVal))
	for k, v := range defaultVal {
		labels[k] = v
	}
	for _, pair := range s.configStore.GetStringSlice(keyFacetLabels) {
		field, label, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		field, label = strings.TrimSpace(field), strings.TrimSpace(label)
		if field != "" && label != "" {
			labels[field] = label
		}
	}
	return labels
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}
