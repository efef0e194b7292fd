package service

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"countrynet/internal/model"
)

const ipv4Document = `<html><body>
<table class="delegs ipv4 ripencc">
<tr><td colspan="10">RIPE NCC IPv4 delegations</td></tr>
<tr><th>#</th><th>Zone</th><th>Country</th><th>Parameter</th><th>First</th><th>Last</th><th>Prefix</th><th>Number</th><th>Date</th><th>Status</th></tr>
<tr><td>ripencc</td><td>FR</td><td>ipv4</td><td>194.33.125.0</td><td>194.33.125.255</td><td>/24</td><td>256</td><td>20040602</td><td>Allocated</td></tr>
<tr></tr>
<tr><td>ripencc</td><td>FR</td><td>ipv4</td><td>91.237.254.0</td><td>91.238.0.255</td><td>Aggreg</td><td>768</td><td>20120113</td><td>Assigned</td></tr>
<tr><td>ripencc</td><td>FR</td><td>ipv4</td><td>10.9.0.0</td><td>10.9.0.255</td><td>/24</td><td>256</td><td>19990101</td><td>Reserved</td></tr>
</table>
</body></html>`

const asnDocument = `<html><body>
<table class="delegs asn ripencc">
<tr><td colspan="8">RIPE NCC ASN delegations</td></tr>
<tr><th>#</th><th>Zone</th><th>Country</th><th>Parameter</th><th>Range</th><th>Number</th><th>Date</th><th>Status</th></tr>
<tr><td>ripencc</td><td>IR</td><td>asn</td><td>AS12880</td><td>1</td><td>19990408</td><td>Allocated</td></tr>
<tr><td>ripencc</td><td>IR</td><td>asn</td><td>AS25124</td><td>1</td><td>20020814</td><td>Reserved</td></tr>
</table>
</body></html>`

const tablelessDocument = `<html><body><p>Nothing delegated here.</p></body></html>`

func TestParseDocument_IPv4(t *testing.T) {
	svc := newTestFetchService()

	rows, allocations, err := svc.parseDocument(strings.NewReader(ipv4Document), model.TypeIPv4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The structurally empty <tr> contributes nothing; the Reserved row still
	// yields a record, just no allocation.
	if len(rows) != 3 {
		t.Fatalf("expected 3 row records, got %d", len(rows))
	}

	expectedAllocations := []string{"194.33.125.0/24", "91.237.254.0/23", "91.238.0.0/24"}
	if !reflect.DeepEqual(allocations, expectedAllocations) {
		t.Errorf("expected allocations %v, got %v", expectedAllocations, allocations)
	}

	// Data rows carry no index cell; only the header row has one. Each row's
	// cells must line up exactly with the header-minus-first names.
	first := rows[0]
	if first.Len() != 9 {
		t.Fatalf("expected 9 data columns, got %d", first.Len())
	}
	if got := first.Get("Zone"); got != "ripencc" {
		t.Errorf("expected Zone=ripencc, got %q", got)
	}
	if got := first.Get("First"); got != "194.33.125.0" {
		t.Errorf("expected First=194.33.125.0, got %q", got)
	}
	if got := first.Get("Status"); got != "Allocated" {
		t.Errorf("expected Status=Allocated, got %q", got)
	}

	// The index column header is dropped; records start at Zone.
	expectedNames := []string{"Zone", "Country", "Parameter", "First", "Last", "Prefix", "Number", "Date", "Status"}
	if !reflect.DeepEqual(first.Names(), expectedNames) {
		t.Errorf("expected names %v, got %v", expectedNames, first.Names())
	}
}

func TestParseDocument_ASN(t *testing.T) {
	svc := newTestFetchService()

	rows, allocations, err := svc.parseDocument(strings.NewReader(asnDocument), model.TypeASN)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 row records, got %d", len(rows))
	}
	if !reflect.DeepEqual(allocations, []string{"AS12880"}) {
		t.Errorf("expected allocations [AS12880], got %v", allocations)
	}

	first := rows[0]
	if first.Len() != 7 {
		t.Fatalf("expected 7 data columns, got %d", first.Len())
	}
	if got := first.Get("Range"); got != "AS12880" {
		t.Errorf("expected Range=AS12880, got %q", got)
	}
	if got := first.Get("Status"); got != "Allocated" {
		t.Errorf("expected Status=Allocated, got %q", got)
	}
}

func TestParseDocument_NoTable(t *testing.T) {
	svc := newTestFetchService()

	_, _, err := svc.parseDocument(strings.NewReader(tablelessDocument), model.TypeIPv4)
	if !errors.Is(err, errNoTable) {
		t.Errorf("expected errNoTable, got %v", err)
	}
}

func TestParseDocument_TypeSelectsTable(t *testing.T) {
	svc := newTestFetchService()

	// An ASN document holds no ipv4 table and vice versa.
	if _, _, err := svc.parseDocument(strings.NewReader(asnDocument), model.TypeIPv4); !errors.Is(err, errNoTable) {
		t.Errorf("expected errNoTable for ipv4 in ASN document, got %v", err)
	}
	if _, _, err := svc.parseDocument(strings.NewReader(ipv4Document), model.TypeASN); !errors.Is(err, errNoTable) {
		t.Errorf("expected errNoTable for asn in IPv4 document, got %v", err)
	}
}

func TestParseDocument_EmptyTableBody(t *testing.T) {
	svc := newTestFetchService()

	doc := `<html><body><table class="delegs ipv4 ripencc">
<tr><td colspan="10">RIPE NCC IPv4 delegations</td></tr>
<tr><th>#</th><th>Zone</th><th>Country</th><th>Parameter</th><th>First</th><th>Last</th><th>Prefix</th><th>Number</th><th>Date</th><th>Status</th></tr>
</table></body></html>`

	rows, allocations, err := svc.parseDocument(strings.NewReader(doc), model.TypeIPv4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no row records, got %d", len(rows))
	}
	if len(allocations) != 0 {
		t.Errorf("expected no allocations, got %v", allocations)
	}
}
