package service

import (
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"countrynet/internal/config"
	"countrynet/internal/model"
)

func newTestFetchService() *FetchService {
	logger, _ := zap.NewDevelopment()
	cfg := &config.Config{
		RequestTimeout: time.Second,
		Sources:        map[model.ResourceType]string{},
		RequestHeaders: map[string]string{},
	}
	return NewFetchService(cfg, logger)
}

func asnColumns(number, status string) []string {
	return []string{"ripencc", "FR", "asn", number, "1", "20040602", status}
}

func ipv4Columns(first, last, prefix, status string) []string {
	return []string{"ripencc", "FR", "ipv4", first, last, prefix, "256", "20040602", status}
}

func TestExtractAllocations(t *testing.T) {
	tests := []struct {
		name     string
		columns  []string
		rt       model.ResourceType
		expected []string
	}{
		{
			name:     "allocated ASN",
			columns:  asnColumns("AS12880", "Allocated"),
			rt:       model.TypeASN,
			expected: []string{"AS12880"},
		},
		{
			name:     "reserved ASN",
			columns:  asnColumns("AS12880", "Reserved"),
			rt:       model.TypeASN,
			expected: nil,
		},
		{
			name:     "short ASN row",
			columns:  []string{"ripencc", "FR", "asn", "AS12880"},
			rt:       model.TypeASN,
			expected: nil,
		},
		{
			name:     "allocated ipv4 with literal prefix",
			columns:  ipv4Columns("194.33.125.0", "194.33.125.255", "/24", "Allocated"),
			rt:       model.TypeIPv4,
			expected: []string{"194.33.125.0/24"},
		},
		{
			name:     "assigned ipv4 aggregate",
			columns:  ipv4Columns("194.33.125.0", "194.33.127.255", "Aggreg", "Assigned"),
			rt:       model.TypeIPv4,
			expected: []string{"194.33.125.0/24", "194.33.126.0/23"},
		},
		{
			name:     "aggregate match is case-insensitive",
			columns:  ipv4Columns("192.168.0.0", "192.168.0.255", "AGGREG", "Allocated"),
			rt:       model.TypeIPv4,
			expected: []string{"192.168.0.0/24"},
		},
		{
			name:     "reversed aggregate range is skipped",
			columns:  ipv4Columns("194.33.127.255", "194.33.125.0", "Aggreg", "Assigned"),
			rt:       model.TypeIPv4,
			expected: nil,
		},
		{
			name:     "reserved ipv4",
			columns:  ipv4Columns("194.33.125.0", "194.33.125.255", "/24", "Reserved"),
			rt:       model.TypeIPv4,
			expected: nil,
		},
		{
			name:     "short ipv4 row",
			columns:  []string{"ripencc", "FR", "ipv4", "194.33.125.0", "194.33.125.255", "/24"},
			rt:       model.TypeIPv4,
			expected: nil,
		},
		{
			name:     "allocated ipv6",
			columns:  []string{"ripencc", "FR", "ipv6", "2001:db8::", "2001:db8:ffff:ffff:ffff:ffff:ffff:ffff", "/32", "1", "20040602", "Allocated"},
			rt:       model.TypeIPv6,
			expected: []string{"2001:db8::/32"},
		},
	}

	svc := newTestFetchService()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.extractAllocations(tt.columns, tt.rt)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestExtractAllocations_Deterministic(t *testing.T) {
	svc := newTestFetchService()
	columns := ipv4Columns("91.237.254.0", "91.238.0.255", "Aggreg", "Allocated")

	first := svc.extractAllocations(columns, model.TypeIPv4)
	second := svc.extractAllocations(columns, model.TypeIPv4)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same input produced %v then %v", first, second)
	}
}
