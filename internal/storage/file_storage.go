package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"countrynet/internal/model"
	"countrynet/internal/netutil"
)

// FileStorage persists fetch results under one output directory: a CSV table
// per (country, resource type) and a shared line-oriented ranges file per
// resource type. The ranges file is append-only within a run; callers must
// serialize Save calls (the scrape service's collector loop does).
type FileStorage struct {
	outputDir string
	logger    *zap.Logger
}

func NewFileStorage(outputDir string, logger *zap.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &FileStorage{outputDir: outputDir, logger: logger}, nil
}

// Save writes the result's rows to the per-country CSV and appends its
// allocations to the per-type ranges file. IPv4/IPv6 results that parsed rows
// but produced no allocations get them regenerated from the rows.
func (s *FileStorage) Save(result *model.FetchResult) error {
	if !result.Success() {
		return fmt.Errorf("refusing to save failed result for %s in %s", result.Type.Upper(), result.Country)
	}

	if err := s.saveCSV(result); err != nil {
		return err
	}

	allocations := result.Allocations
	if len(allocations) == 0 && result.Type.IsIP() {
		allocations = AllocationsFromRows(result.Rows, result.Type, s.logger)
	}
	if len(allocations) == 0 {
		return nil
	}
	return s.appendRanges(result.Type, allocations)
}

func (s *FileStorage) saveCSV(result *model.FetchResult) error {
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s_list.csv", result.Country, result.Type))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(result.Rows) > 0 {
		if err := w.Write(result.Rows[0].Names()); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	for _, row := range result.Rows {
		if err := w.Write(row.Values()); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (s *FileStorage) appendRanges(rt model.ResourceType, allocations []string) error {
	path := s.rangesPath(rt)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	for _, alloc := range allocations {
		if _, err := fmt.Fprintln(f, alloc); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// ClearRanges removes a stale ranges file so a fresh run does not append onto
// the previous one's output.
func (s *FileStorage) ClearRanges(rt model.ResourceType) error {
	if err := os.Remove(s.rangesPath(rt)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStorage) rangesPath(rt model.ResourceType) string {
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_ranges.txt", rt))
}

// AllocationsFromRows rebuilds allocation strings from persisted table rows,
// applying the same aggregate-decomposition rule the classifier uses. IPv4
// rows combine First and Prefix; IPv6 rows combine Prefix and Length.
func AllocationsFromRows(rows []model.RowRecord, rt model.ResourceType, logger *zap.Logger) []string {
	var allocations []string

	switch rt {
	case model.TypeIPv4:
		for _, row := range rows {
			first := strings.TrimSpace(row.Get("First"))
			prefix := strings.TrimSpace(row.Get("Prefix"))
			if first == "" || prefix == "" {
				continue
			}
			if strings.EqualFold(prefix, "Aggreg") {
				last := strings.TrimSpace(row.Get("Last"))
				if last == "" {
					continue
				}
				cidrs, err := netutil.RangeToCIDRs(first, last)
				if err != nil {
					logger.Warn("failed to compute CIDRs for aggregate range",
						zap.String("first", first),
						zap.String("last", last),
						zap.Error(err))
					continue
				}
				allocations = append(allocations, cidrs...)
				continue
			}
			allocations = append(allocations, first+prefix)
		}

	case model.TypeIPv6:
		for _, row := range rows {
			prefix := strings.TrimSpace(row.Get("Prefix"))
			if prefix == "" {
				continue
			}
			if length := strings.TrimSpace(row.Get("Length")); length != "" {
				allocations = append(allocations, prefix+"/"+length)
			} else {
				allocations = append(allocations, prefix)
			}
		}
	}

	return allocations
}
