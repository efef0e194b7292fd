package service

import (
	"strings"

	"go.uber.org/zap"

	"countrynet/internal/model"
	"countrynet/internal/netutil"
)

// Column layouts observed in the delegation tables:
//
//	ASN (7 cols):       Zone, Country, Parameter, Number, ..., Date, Status
//	IPv4/IPv6 (9 cols): Zone, Country, Parameter, First, Last, Prefix,
//	                    Number, Date, Status
const (
	asnColumnCount = 7
	ipColumnCount  = 9
)

// asnRow and ipRow give the loosely-typed cell slice named fields before any
// classification logic touches it.
type asnRow struct {
	number string
	status string
}

type ipRow struct {
	first  string
	last   string
	prefix string
	status string
}

func newASNRow(columns []string) (asnRow, bool) {
	if len(columns) < asnColumnCount {
		return asnRow{}, false
	}
	return asnRow{
		number: columns[3],
		status: columns[6],
	}, true
}

func newIPRow(columns []string) (ipRow, bool) {
	if len(columns) < ipColumnCount {
		return ipRow{}, false
	}
	return ipRow{
		first:  strings.TrimSpace(columns[3]),
		last:   strings.TrimSpace(columns[4]),
		prefix: strings.TrimSpace(columns[5]),
		status: strings.TrimSpace(columns[8]),
	}, true
}

// extractAllocations decides whether one table row represents an active
// delegation and renders its allocation strings. Rows that are too short or
// carry an inactive status contribute nothing; that is not an error. An
// aggregate range that fails to decompose is logged and skipped, keeping the
// row itself intact.
func (s *FetchService) extractAllocations(columns []string, rt model.ResourceType) []string {
	switch rt {
	case model.TypeASN:
		row, ok := newASNRow(columns)
		if !ok || row.status != "Allocated" {
			return nil
		}
		return []string{row.number}

	case model.TypeIPv4, model.TypeIPv6:
		row, ok := newIPRow(columns)
		if !ok {
			return nil
		}
		if row.status != "Allocated" && row.status != "Assigned" {
			return nil
		}
		if strings.EqualFold(row.prefix, "Aggreg") {
			cidrs, err := netutil.RangeToCIDRs(row.first, row.last)
			if err != nil {
				s.logger.Warn("failed to compute CIDRs for aggregate range",
					zap.String("first", row.first),
					zap.String("last", row.last),
					zap.Error(err))
				return nil
			}
			return cidrs
		}
		// The prefix cell carries its own leading slash, e.g. "/24".
		return []string{row.first + row.prefix}
	}
	return nil
}
