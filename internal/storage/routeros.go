package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"countrynet/internal/model"
)

// RouterOSExporter appends MikroTik firewall address-list commands for each
// successful IPv4/IPv6 result. ASN results have no address-list rendering and
// are skipped.
type RouterOSExporter struct {
	outputDir string
	logger    *zap.Logger
}

func NewRouterOSExporter(outputDir string, logger *zap.Logger) (*RouterOSExporter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &RouterOSExporter{outputDir: outputDir, logger: logger}, nil
}

// Export writes one address-list entry per allocation to <CC>_<type>.rsc in
// the command namespace of the result's address family.
func (e *RouterOSExporter) Export(result *model.FetchResult) error {
	if result.Type == model.TypeASN {
		return nil
	}

	allocations := result.Allocations
	if len(allocations) == 0 {
		allocations = AllocationsFromRows(result.Rows, result.Type, e.logger)
	}
	if len(allocations) == 0 {
		return nil
	}

	path := filepath.Join(e.outputDir, fmt.Sprintf("%s_%s.rsc", result.Country, result.Type))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	family := "/ip"
	if result.Type == model.TypeIPv6 {
		family = "/ipv6"
	}
	list := fmt.Sprintf("%s-%s", strings.ToLower(result.Country), result.Type)

	for _, alloc := range allocations {
		if _, err := fmt.Fprintf(f, "%s firewall address-list add list=%s address=%s\n", family, list, alloc); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
