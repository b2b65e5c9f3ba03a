// Package request builds content API search URLs from a query configuration.
package request

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"localnews/pkg/utils"
)

// DefaultEndpoint is the Guardian content API search endpoint.
const DefaultEndpoint = "https://content.guardianapis.com/search"

// Fixed API parameters.
const (
	DefaultPageSize = 50
	DefaultShowTags = "contributor"
)

// Query parameter names.
const (
	ParamQuery    = "q"
	ParamAPIKey   = "api-key"
	ParamShowTags = "show-tags"
	ParamPageSize = "page-size"
	ParamOrderBy  = "order-by"
)

// ErrInvalidConfiguration indicates a request that cannot be built from its configuration.
var ErrInvalidConfiguration = errors.New("invalid request configuration")

// OrderBy selects the ordering of search results.
type OrderBy string

// Supported orderings.
const (
	OrderNewest    OrderBy = "newest"
	OrderOldest    OrderBy = "oldest"
	OrderRelevance OrderBy = "relevance"
)

// DefaultOrderBy is used when no ordering is configured.
const DefaultOrderBy = OrderNewest

// Valid reports whether o is a supported ordering.
func (o OrderBy) Valid() bool {
	switch o {
	case OrderNewest, OrderOldest, OrderRelevance:
		return true
	}

	return false
}

// ParseOrderBy converts a user-supplied value into an OrderBy. Empty selects DefaultOrderBy.
func ParseOrderBy(s string) (OrderBy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultOrderBy, nil
	}

	o := OrderBy(s)
	if !o.Valid() {
		return "", fmt.Errorf("%w: unknown order-by %q", ErrInvalidConfiguration, s)
	}

	return o, nil
}

// Config holds the parameters for one search request.
type Config struct {
	SearchTerm string
	OrderBy    OrderBy
	APIKey     string
	ShowTags   string
	PageSize   int
}

// NewConfig returns a Config with the fixed API parameters filled in.
func NewConfig(searchTerm string, orderBy OrderBy, apiKey string) Config {
	return Config{
		SearchTerm: searchTerm,
		OrderBy:    orderBy,
		APIKey:     apiKey,
		ShowTags:   DefaultShowTags,
		PageSize:   DefaultPageSize,
	}
}

// String omits the API key.
func (c Config) String() string {
	return fmt.Sprintf("Config{SearchTerm: %q, OrderBy: %s, PageSize: %d}", c.SearchTerm, c.OrderBy, c.PageSize)
}

// Build appends the search parameters to baseEndpoint. Each parameter appears
// exactly once; other query parameters already on the endpoint are kept.
func Build(baseEndpoint string, cfg Config) (*url.URL, error) {
	if !utils.NewHTTPHelper("").IsValidURL(baseEndpoint) {
		return nil, fmt.Errorf("%w: base endpoint %q is not an absolute http(s) URL", ErrInvalidConfiguration, baseEndpoint)
	}

	u, err := url.Parse(baseEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	orderBy := cfg.OrderBy
	if orderBy == "" {
		orderBy = DefaultOrderBy
	}

	if !orderBy.Valid() {
		return nil, fmt.Errorf("%w: unknown order-by %q", ErrInvalidConfiguration, orderBy)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	showTags := cfg.ShowTags
	if showTags == "" {
		showTags = DefaultShowTags
	}

	query := u.Query()
	query.Set(ParamQuery, cfg.SearchTerm)
	query.Set(ParamAPIKey, cfg.APIKey)
	query.Set(ParamShowTags, showTags)
	query.Set(ParamPageSize, strconv.Itoa(pageSize))
	query.Set(ParamOrderBy, string(orderBy))
	u.RawQuery = query.Encode()

	return u, nil
}

// Redact returns u as a string with the API key masked, for logging.
func Redact(u *url.URL) string {
	if u == nil {
		return ""
	}

	redacted := *u

	query := redacted.Query()
	if query.Has(ParamAPIKey) {
		query.Set(ParamAPIKey, "REDACTED")
		redacted.RawQuery = query.Encode()
	}

	return redacted.String()
}
