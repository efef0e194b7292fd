package mocks

import (
	"context"

	"countrynet/internal/model"
)

type MockFetcher struct {
	FetchFunc func(ctx context.Context, country string, rt model.ResourceType) *model.FetchResult
}

func (m *MockFetcher) Fetch(ctx context.Context, country string, rt model.ResourceType) *model.FetchResult {
	return m.FetchFunc(ctx, country, rt)
}

type MockStorage struct {
	SaveFunc        func(result *model.FetchResult) error
	ClearRangesFunc func(rt model.ResourceType) error
}

func (m *MockStorage) Save(result *model.FetchResult) error {
	if m.SaveFunc == nil {
		return nil
	}
	return m.SaveFunc(result)
}

func (m *MockStorage) ClearRanges(rt model.ResourceType) error {
	if m.ClearRangesFunc == nil {
		return nil
	}
	return m.ClearRangesFunc(rt)
}

type MockScriptExporter struct {
	ExportFunc func(result *model.FetchResult) error
}

func (m *MockScriptExporter) Export(result *model.FetchResult) error {
	if m.ExportFunc == nil {
		return nil
	}
	return m.ExportFunc(result)
}
