package model

import (
	"fmt"
	"sort"
	"strings"
)

// ResourceType selects which delegation table to fetch and how its columns
// are laid out.
type ResourceType string

const (
	TypeASN  ResourceType = "asn"
	TypeIPv4 ResourceType = "ipv4"
	TypeIPv6 ResourceType = "ipv6"
)

// AllResourceTypes returns every supported resource type, in fetch order.
func AllResourceTypes() []ResourceType {
	return []ResourceType{TypeASN, TypeIPv4, TypeIPv6}
}

// ParseResourceType converts user input into a ResourceType.
func ParseResourceType(s string) (ResourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asn":
		return TypeASN, nil
	case "ipv4":
		return TypeIPv4, nil
	case "ipv6":
		return TypeIPv6, nil
	}
	return "", fmt.Errorf("unknown resource type: %q", s)
}

func (t ResourceType) String() string { return string(t) }

// Upper renders the type for user-facing messages ("ASN", "IPV4", "IPV6").
func (t ResourceType) Upper() string { return strings.ToUpper(string(t)) }

// IsIP reports whether the type carries address allocations rather than AS
// numbers.
func (t ResourceType) IsIP() bool { return t == TypeIPv4 || t == TypeIPv6 }

// NormalizeCountries validates and uppercases two-letter country codes. Any
// invalid code fails the whole call; nothing is fetched for a partial list.
func NormalizeCountries(codes []string) ([]string, error) {
	normalized := make([]string, 0, len(codes))
	for _, code := range codes {
		cc := strings.ToUpper(strings.TrimSpace(code))
		if !validCountryCode(cc) {
			return nil, fmt.Errorf("invalid country code %q: must be 2 letters", cc)
		}
		normalized = append(normalized, cc)
	}
	return normalized, nil
}

func validCountryCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// RowField is one named cell of a table row.
type RowField struct {
	Name  string
	Value string
}

// RowRecord is one parsed table row as an ordered name/value mapping. Field
// order matches document column order.
type RowRecord struct {
	fields []RowField
}

// NewRowRecord zips column names with cell values; the shorter of the two
// slices bounds the record.
func NewRowRecord(names, values []string) RowRecord {
	n := len(names)
	if len(values) < n {
		n = len(values)
	}
	fields := make([]RowField, n)
	for i := 0; i < n; i++ {
		fields[i] = RowField{Name: names[i], Value: values[i]}
	}
	return RowRecord{fields: fields}
}

// Get returns the value for a column name, or "" when the row has no such
// column.
func (r RowRecord) Get(name string) string {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Names returns the column names in document order.
func (r RowRecord) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Values returns the cell values in document order.
func (r RowRecord) Values() []string {
	values := make([]string, len(r.fields))
	for i, f := range r.fields {
		values[i] = f.Value
	}
	return values
}

func (r RowRecord) Len() int { return len(r.fields) }

// FetchResult is the outcome of fetching one (country, resource type) pair.
// Either Rows is set (success) or Err is set (failure), never both.
type FetchResult struct {
	Country     string
	Type        ResourceType
	Rows        []RowRecord
	Allocations []string
	Err         string
}

// Success reports whether the fetch produced table rows.
func (r *FetchResult) Success() bool {
	return r.Rows != nil && r.Err == ""
}

// HasAllocations reports whether the fetch produced any allocation strings.
func (r *FetchResult) HasAllocations() bool {
	return len(r.Allocations) > 0
}

// ScraperStats aggregates counters for one scraper run. It is not safe for
// concurrent mutation; the run's single collection point owns it.
type ScraperStats struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int

	countries map[string]struct{}
}

func NewScraperStats() *ScraperStats {
	return &ScraperStats{countries: make(map[string]struct{})}
}

// RecordSuccess counts one successful unit of work.
func (s *ScraperStats) RecordSuccess(country string) {
	s.TotalRequests++
	s.SuccessfulRequests++
	s.countries[country] = struct{}{}
}

// RecordFailure counts one failed unit of work.
func (s *ScraperStats) RecordFailure(country string) {
	s.TotalRequests++
	s.FailedRequests++
	s.countries[country] = struct{}{}
}

// Countries returns the distinct country codes touched, sorted.
func (s *ScraperStats) Countries() []string {
	codes := make([]string, 0, len(s.countries))
	for cc := range s.countries {
		codes = append(codes, cc)
	}
	sort.Strings(codes)
	return codes
}

// SuccessRate returns the percentage of successful requests.
func (s *ScraperStats) SuccessRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.SuccessfulRequests) / float64(s.TotalRequests) * 100
}
