// Package view projects the cached task list onto pages.
package view

import "github.com/todolite/todolite/internal/models"

// Page is one projected page of the task list.
// Empty is set only when there is nothing to show at all; it is the
// placeholder marker, never a page that merely fell past the end.
type Page struct {
	Items      []models.Task
	Number     int // effective page number, 1-based
	Size       int // requested page size; 0 when everything fits on one page
	TotalPages int
	TotalItems int
	Empty      bool
}

// Project returns page number of items split into pages of size.
// A number below 1 selects the first page, a number past the end selects the
// last page, and a size below 1 puts every item on a single page.
func Project(items []models.Task, size, number int) Page {
	if size < 0 {
		size = 0
	}
	if len(items) == 0 {
		return Page{Number: 1, Size: size, TotalPages: 1, Empty: true}
	}

	perPage := size
	if perPage < 1 {
		perPage = len(items)
	}

	pages := (len(items) + perPage - 1) / perPage
	number = Clamp(number, pages)

	start := (number - 1) * perPage
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}

	out := make([]models.Task, end-start)
	copy(out, items[start:end])

	return Page{
		Items:      out,
		Number:     number,
		Size:       size,
		TotalPages: pages,
		TotalItems: len(items),
	}
}

// TotalPages returns how many pages count items fill at size per page.
// An empty list still has one (empty) page.
func TotalPages(count, size int) int {
	if count == 0 || size < 1 {
		return 1
	}
	return (count + size - 1) / size
}

// Clamp limits number to [1, pages].
func Clamp(number, pages int) int {
	if pages < 1 {
		pages = 1
	}
	if number < 1 {
		return 1
	}
	if number > pages {
		return pages
	}
	return number
}

// HasNext reports whether a page follows p.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasPrev reports whether a page precedes p.
func (p Page) HasPrev() bool {
	return p.Number > 1
}
