package pagination_test

import (
	"net/url"
	"testing"

	"github.com/cerviguard/console/pkg/pagination"
)

func testConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values take defaults", pagination.PageRequest{}, 1, 20},
		{"negative page clamped", pagination.PageRequest{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size capped", pagination.PageRequest{Page: 2, PageSize: 500}, 2, 100},
		{"valid values untouched", pagination.PageRequest{Page: 4, PageSize: 50}, 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(testConfig())
			if tt.req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", tt.req.Page, tt.wantPage)
			}
			if tt.req.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", tt.req.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := pagination.PageRequest{Page: 3, PageSize: 25}
	if got := req.Offset(); got != 50 {
		t.Errorf("Offset() = %d, want 50", got)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("page", "2")
	values.Set("page_size", "40")
	values.Set("search", "quadrant")

	req := pagination.PageRequestFromQuery(values, testConfig())

	if req.Page != 2 || req.PageSize != 40 {
		t.Errorf("parsed page %d size %d, want 2 and 40", req.Page, req.PageSize)
	}
	if req.Search == nil || *req.Search != "quadrant" {
		t.Errorf("Search = %v, want quadrant", req.Search)
	}
}

func TestPageRequestFromQueryDefaults(t *testing.T) {
	req := pagination.PageRequestFromQuery(url.Values{}, testConfig())

	if req.Page != 1 || req.PageSize != 20 {
		t.Errorf("parsed page %d size %d, want defaults 1 and 20", req.Page, req.PageSize)
	}
	if req.Search != nil {
		t.Errorf("Search = %v, want nil", req.Search)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact division", 100, 20, 5},
		{"remainder adds page", 101, 20, 6},
		{"empty result keeps one page", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult[string](nil, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
			if result.Data == nil {
				t.Error("Data must be an empty slice, not nil")
			}
		})
	}
}
