package pagination

import (
	"fmt"
	"net/url"
)

const (
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 15
	// MaxPerPage caps how many rows any page query can request.
	MaxPerPage = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Normalize clamps the params to the configured bounds.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Meta describes the position of a page within the full result set.
type Meta struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
}

// Links holds navigation URLs for the surrounding pages.
type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// Page is the wire envelope for a paginated listing.
type Page struct {
	Data  any   `json:"data"`
	Meta  Meta  `json:"meta"`
	Links Links `json:"links"`
}

// MetaFor computes page metadata for a result set of total rows.
func MetaFor(params Params, total int64, returned int) Meta {
	n := params.Normalize()

	lastPage := int((total + int64(n.PerPage) - 1) / int64(n.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	meta := Meta{
		Total:       total,
		PerPage:     n.PerPage,
		CurrentPage: n.Page,
		LastPage:    lastPage,
	}
	if returned > 0 {
		from := n.Offset() + 1
		to := n.Offset() + returned
		meta.From = &from
		meta.To = &to
	}
	return meta
}

// LinksFor builds first/last/prev/next URLs for the given base path and query.
// Query values other than "page" are preserved.
func LinksFor(basePath string, query url.Values, meta Meta) Links {
	links := Links{
		First: pageURL(basePath, query, 1),
		Last:  pageURL(basePath, query, meta.LastPage),
	}
	if meta.CurrentPage > 1 {
		prev := pageURL(basePath, query, meta.CurrentPage-1)
		links.Prev = &prev
	}
	if meta.CurrentPage < meta.LastPage {
		next := pageURL(basePath, query, meta.CurrentPage+1)
		links.Next = &next
	}
	return links
}

func pageURL(basePath string, query url.Values, page int) string {
	q := url.Values{}
	for key, vals := range query {
		if key == "page" {
			continue
		}
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	q.Set("page", fmt.Sprintf("%d", page))
	return basePath + "?" + q.Encode()
}
