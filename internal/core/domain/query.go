package domain

import (
	"sort"
	"strconv"
	"strings"
)

// ResourceKind names a managed collection exposed by the backend.
type ResourceKind string

const (
	ResourceUsers       ResourceKind = "users"
	ResourceKYC         ResourceKind = "kyc"
	ResourceServices    ResourceKind = "services"
	ResourceMentorship  ResourceKind = "mentorship"
	ResourceInvestments ResourceKind = "investments"
)

// ResourceKinds lists every managed collection.
var ResourceKinds = []ResourceKind{
	ResourceUsers,
	ResourceKYC,
	ResourceServices,
	ResourceMentorship,
	ResourceInvestments,
}

// ParseResourceKind normalises textual input into a known resource kind.
func ParseResourceKind(value string) (ResourceKind, bool) {
	normalized := ResourceKind(strings.ToLower(strings.TrimSpace(value)))
	for _, kind := range ResourceKinds {
		if kind == normalized {
			return kind, true
		}
	}
	return "", false
}

// Well-known filter fields. Any other field name is stored as a secondary filter.
const (
	FilterSearch   = "search"
	FilterStatus   = "status"
	FilterPageSize = "page_size"

	// FilterAll is the UI sentinel for "no filter" and is normalised to an empty value.
	FilterAll = "all"
)

// DefaultPageSize applies when a query is created without an explicit page size.
const DefaultPageSize = 10

// ResourceQuery is the filter, search and pagination state of one resource screen.
type ResourceQuery struct {
	SearchText       string
	StatusFilter     string
	SecondaryFilters map[string]string
	Page             int
	PageSize         int
}

// NewResourceQuery returns a query on page 1 with the given page size.
func NewResourceQuery(pageSize int) ResourceQuery {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return ResourceQuery{
		SecondaryFilters: map[string]string{},
		Page:             1,
		PageSize:         pageSize,
	}
}

// Clone returns a copy that shares no state with the receiver.
func (q ResourceQuery) Clone() ResourceQuery {
	out := q
	out.SecondaryFilters = make(map[string]string, len(q.SecondaryFilters))
	for k, v := range q.SecondaryFilters {
		out.SecondaryFilters[k] = v
	}
	return out
}

// Filter returns the current value of the named filter field.
func (q ResourceQuery) Filter(field string) string {
	switch normalizeField(field) {
	case FilterSearch:
		return q.SearchText
	case FilterStatus:
		return q.StatusFilter
	case FilterPageSize:
		return strconv.Itoa(q.PageSize)
	default:
		return q.SecondaryFilters[normalizeField(field)]
	}
}

// WithFilter returns a copy with the named field updated and the page reset to 1.
func (q ResourceQuery) WithFilter(field, value string) (ResourceQuery, error) {
	field = normalizeField(field)
	if field == "" {
		return q, ValidationError("set filter", "filter field is required")
	}
	if field == "page" {
		return q, ValidationError("set filter", "page is not a filter; use SetPage")
	}

	value = strings.TrimSpace(value)
	if strings.EqualFold(value, FilterAll) {
		value = ""
	}

	out := q.Clone()
	switch field {
	case FilterSearch:
		out.SearchText = value
	case FilterStatus:
		out.StatusFilter = value
	case FilterPageSize:
		size, err := strconv.Atoi(value)
		if err != nil || size <= 0 {
			return q, ValidationError("set filter", "page size must be a positive integer")
		}
		out.PageSize = size
	default:
		if value == "" {
			delete(out.SecondaryFilters, field)
		} else {
			out.SecondaryFilters[field] = value
		}
	}
	out.Page = 1
	return out, nil
}

// WithPage returns a copy positioned on the given page without touching any filter.
func (q ResourceQuery) WithPage(page int) ResourceQuery {
	out := q.Clone()
	if page < 1 {
		page = 1
	}
	out.Page = page
	return out
}

// SecondaryKeys returns the secondary filter names in lexical order.
func (q ResourceQuery) SecondaryKeys() []string {
	keys := make([]string, 0, len(q.SecondaryFilters))
	for k := range q.SecondaryFilters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeField(field string) string {
	return strings.ToLower(strings.TrimSpace(field))
}

// ResourcePage is one server-fetched page together with the query it answers.
type ResourcePage[T any] struct {
	Items      []T
	TotalPages int
	Query      ResourceQuery
}
