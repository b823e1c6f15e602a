package paging

import (
	"github.com/goliatone/go-shopadmin/catalog"
)

// DefaultPageSize applies when a request carries no page size.
const DefaultPageSize = 25

// MaxPageSize bounds requested page sizes.
const MaxPageSize = 500

// Info describes a page within a result set.
type Info struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Normalize clamps size to [1, MaxPageSize] and page to at least 1. A page
// past TotalPages is kept so Slice returns it empty.
func Normalize(total, page, size int) Info {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if total < 0 {
		total = 0
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	return Info{Page: page, PageSize: size, Total: total, TotalPages: pages}
}

// Slice returns the requested page of records along with its Info.
func Slice(records []catalog.Record, page, size int) ([]catalog.Record, Info) {
	info := Normalize(len(records), page, size)
	start := (info.Page - 1) * info.PageSize
	end := min(info.Page*info.PageSize, len(records))
	if start >= end {
		return []catalog.Record{}, info
	}
	return records[start:end], info
}
