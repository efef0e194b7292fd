package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"countrynet/internal/config"
	"countrynet/internal/model"
)

// FetchService retrieves and parses one delegation document per
// (country, resource type) pair. A single HTTP client with a hard timeout is
// shared across all units of work; an optional rate limiter spaces requests
// out so concurrent workers stay polite to the source.
type FetchService struct {
	logger  *zap.Logger
	client  *http.Client
	cfg     *config.Config
	limiter *rate.Limiter
}

func NewFetchService(cfg *config.Config, logger *zap.Logger) *FetchService {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &FetchService{
		logger:  logger,
		cfg:     cfg,
		limiter: limiter,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:      100,
				MaxConnsPerHost:   10,
				IdleConnTimeout:   90 * time.Second,
				ForceAttemptHTTP2: true,
			},
		},
	}
}

// Fetch retrieves the delegation table for one country and resource type. It
// always returns a result: transport failures, missing tables, and anything
// unexpected during parsing end up in FetchResult.Err rather than crossing
// this boundary as an error.
func (s *FetchService) Fetch(ctx context.Context, country string, rt model.ResourceType) *model.FetchResult {
	result := &model.FetchResult{Country: country, Type: rt}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			result.Err = fmt.Sprintf("Request error: %v", err)
			return result
		}
	}

	url := s.sourceURL(country, rt)

	// The request is deliberately not bound to the run context: on interrupt
	// an in-flight request is allowed to finish or hit the client timeout.
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		result.Err = fmt.Sprintf("Request error: %v", err)
		return result
	}
	for name, value := range s.cfg.RequestHeaders {
		req.Header.Set(name, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		result.Err = fmt.Sprintf("Request error: %v", err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Err = fmt.Sprintf("Request error: unexpected status %d for %s", resp.StatusCode, url)
		return result
	}

	rows, allocations, err := s.parseDocument(resp.Body, rt)
	switch {
	case errors.Is(err, errNoTable):
		result.Err = fmt.Sprintf("No data table found for %s in %s", rt.Upper(), country)
	case err != nil:
		result.Err = fmt.Sprintf("Unexpected error: %v", err)
	default:
		result.Rows = rows
		result.Allocations = allocations
	}
	return result
}

func (s *FetchService) sourceURL(country string, rt model.ResourceType) string {
	return strings.ReplaceAll(s.cfg.Sources[rt], "{country}", strings.ToLower(country))
}
