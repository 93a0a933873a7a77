package pagination

import (
	"net/url"
	"testing"

	"github.com/KartikLabhshetwar/FolioSign/pkg/query"
)

var testConfig = Config{DefaultPageSize: 20, MaxPageSize: 100}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		request      PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values get defaults", PageRequest{}, 1, 20},
		{"negative page clamps to first", PageRequest{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size clamps to max", PageRequest{Page: 2, PageSize: 500}, 2, 100},
		{"valid request unchanged", PageRequest{Page: 3, PageSize: 50}, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.request.Normalize(testConfig)
			if tt.request.Page != tt.wantPage || tt.request.PageSize != tt.wantPageSize {
				t.Errorf("normalized to page=%d size=%d, want page=%d size=%d",
					tt.request.Page, tt.request.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("page", "2")
	values.Set("page_size", "25")
	values.Set("search", "contract")
	values.Set("sort", "name,-created_at")

	req := PageRequestFromQuery(values, testConfig)

	if req.Page != 2 || req.PageSize != 25 {
		t.Errorf("page=%d size=%d, want 2 and 25", req.Page, req.PageSize)
	}
	if req.Search == nil || *req.Search != "contract" {
		t.Errorf("search = %v", req.Search)
	}
	if len(req.Sort) != 2 || req.Sort[1] != (query.SortField{Field: "created_at", Descending: true}) {
		t.Errorf("sort = %v", req.Sort)
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
		{"remainder adds a page", 101, 20, 6},
		{"empty result has one page", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewPageResult([]string{"a"}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
		})
	}

	result := NewPageResult[string](nil, 0, 1, 20)
	if result.Data == nil {
		t.Error("nil data not normalized to empty slice")
	}
}
