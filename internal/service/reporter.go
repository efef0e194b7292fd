package service

import (
	"fmt"
	"io"

	"countrynet/internal/model"
)

// Reporter receives user-facing progress events from a scraper run. A quiet
// run plugs in NopReporter instead of branching on a flag.
type Reporter interface {
	Progress(message string)
	Success(result *model.FetchResult)
	Failure(result *model.FetchResult)
}

// ConsoleReporter writes one line per event.
type ConsoleReporter struct {
	w io.Writer
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (r *ConsoleReporter) Progress(message string) {
	fmt.Fprintln(r.w, message)
}

func (r *ConsoleReporter) Success(result *model.FetchResult) {
	fmt.Fprintf(r.w, "✓ %s data saved for %s\n", result.Type.Upper(), result.Country)
}

func (r *ConsoleReporter) Failure(result *model.FetchResult) {
	fmt.Fprintf(r.w, "⚠ %s\n", result.Err)
}

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) Progress(string)            {}
func (NopReporter) Success(*model.FetchResult) {}
func (NopReporter) Failure(*model.FetchResult) {}
