package service

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"countrynet/internal/model"
)

// errNoTable means the document carried no delegation table for the requested
// resource type. The Fetcher renders it as a per-unit failure message.
var errNoTable = errors.New("no data table")

// parseDocument locates the delegation table for rt and converts its rows
// into ordered RowRecords plus whatever allocation strings the classifier
// extracts. Both lists preserve document row order.
func (s *FetchService) parseDocument(body io.Reader, rt model.ResourceType) ([]model.RowRecord, []string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing document: %w", err)
	}

	table := doc.Find(fmt.Sprintf("table.delegs.%s.ripencc", rt)).First()
	if table.Length() == 0 {
		return nil, nil, errNoTable
	}

	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(th.Text()))
	})

	// The first header labels the row-index column, which has no data cell.
	var names []string
	if len(headers) > 1 {
		names = headers[1:]
	}

	rows := make([]model.RowRecord, 0)
	var allocations []string
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i < 2 {
			return // grouped label row and column-header row
		}
		var columns []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			columns = append(columns, strings.TrimSpace(td.Text()))
		})
		if len(columns) == 0 {
			return // malformed or empty markup, skip the row entirely
		}
		rows = append(rows, model.NewRowRecord(names, columns))
		allocations = append(allocations, s.extractAllocations(columns, rt)...)
	})

	return rows, allocations, nil
}
