package pagination

import (
	"net/url"
	"testing"
)

func TestNormalizeClampsBounds(t *testing.T) {
	tests := []struct {
		name        string
		in          Params
		wantPage    int
		wantPerPage int
	}{
		{name: "defaults", in: Params{}, wantPage: 1, wantPerPage: DefaultPerPage},
		{name: "negative page", in: Params{Page: -3, PerPage: 10}, wantPage: 1, wantPerPage: 10},
		{name: "over max", in: Params{Page: 2, PerPage: 500}, wantPage: 2, wantPerPage: MaxPerPage},
		{name: "within bounds", in: Params{Page: 4, PerPage: 25}, wantPage: 4, wantPerPage: 25},
	}
	for _, tt := range tests {
		got := tt.in.Normalize()
		if got.Page != tt.wantPage || got.PerPage != tt.wantPerPage {
			t.Fatalf("%s: got page=%d per_page=%d", tt.name, got.Page, got.PerPage)
		}
	}
}

func TestOffset(t *testing.T) {
	if off := (Params{Page: 3, PerPage: 15}).Offset(); off != 30 {
		t.Fatalf("expected offset 30, got %d", off)
	}
	if off := (Params{}).Offset(); off != 0 {
		t.Fatalf("expected offset 0, got %d", off)
	}
}

func TestMetaFor(t *testing.T) {
	meta := MetaFor(Params{Page: 2, PerPage: 10}, 25, 10)
	if meta.LastPage != 3 {
		t.Fatalf("expected last page 3, got %d", meta.LastPage)
	}
	if meta.From == nil || *meta.From != 11 {
		t.Fatalf("unexpected from %v", meta.From)
	}
	if meta.To == nil || *meta.To != 20 {
		t.Fatalf("unexpected to %v", meta.To)
	}
}

func TestMetaForEmptyResult(t *testing.T) {
	meta := MetaFor(Params{}, 0, 0)
	if meta.LastPage != 1 {
		t.Fatalf("expected last page 1 for empty set, got %d", meta.LastPage)
	}
	if meta.From != nil || meta.To != nil {
		t.Fatal("expected nil from/to for empty page")
	}
}

func TestLinksFor(t *testing.T) {
	query := url.Values{"search": {"kowal"}, "page": {"2"}}
	meta := MetaFor(Params{Page: 2, PerPage: 15}, 45, 15)

	links := LinksFor("/api/v1/users", query, meta)
	if links.First != "/api/v1/users?page=1&search=kowal" {
		t.Fatalf("unexpected first link %q", links.First)
	}
	if links.Prev == nil || *links.Prev != "/api/v1/users?page=1&search=kowal" {
		t.Fatalf("unexpected prev link %v", links.Prev)
	}
	if links.Next == nil || *links.Next != "/api/v1/users?page=3&search=kowal" {
		t.Fatalf("unexpected next link %v", links.Next)
	}
}

func TestLinksForLastPage(t *testing.T) {
	meta := MetaFor(Params{Page: 3, PerPage: 15}, 45, 15)
	links := LinksFor("/api/v1/users", url.Values{}, meta)
	if links.Next != nil {
		t.Fatal("expected no next link on last page")
	}
	if links.Prev == nil {
		t.Fatal("expected prev link on last page")
	}
}
