package api

import (
	"net/http"
	"strconv"
)

const MaxPerPage = 100

// Page is a 1-based page request.
type Page struct {
	Number  int
	PerPage int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// ParsePage reads page and perpage query params. Values that do not parse
// fall back to page 1 and defaultPerPage; perpage is clamped to [1, MaxPerPage].
func ParsePage(r *http.Request, defaultPerPage int) Page {
	p := Page{Number: 1, PerPage: defaultPerPage}

	if pStr := r.URL.Query().Get("page"); pStr != "" {
		if n, err := strconv.Atoi(pStr); err == nil && n >= 1 {
			p.Number = n
		}
	}

	if lStr := r.URL.Query().Get("perpage"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			p.PerPage = l
		}
	}
	if p.PerPage < 1 {
		p.PerPage = 1
	} else if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}
