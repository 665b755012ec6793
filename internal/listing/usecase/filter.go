package usecase

import (
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
	"golang.org/x/text/cases"
)

// ApplyFilter returns the advertisements matching criteria in their original order.
// The search term, whitespace included, matches model or description case-insensitively; category and status
// must match exactly unless set to domain.All or left empty.
func ApplyFilter(ads []domain.Advertisement, criteria domain.FilterCriteria) []domain.Advertisement {
	folder := cases.Fold()
	term := folder.String(criteria.Search)

	out := make([]domain.Advertisement, 0, len(ads))
	for _, ad := range ads {
		if !selects(criteria.Category, ad.CategoryName) || !selects(criteria.Status, string(ad.Status)) {
			continue
		}
		if term != "" &&
			!strings.Contains(folder.String(ad.Model), term) &&
			!strings.Contains(folder.String(ad.Description), term) {
			continue
		}
		out = append(out, ad)
	}
	return out
}

func selects(selector, value string) bool {
	return selector == "" || selector == domain.All || selector == value
}

// TotalPages is ceil(n/size). It is 0 for an empty sequence.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage keeps a zero-based page index inside [0, totalPages-1], or 0 when there are no pages.
func ClampPage(page, totalPages int) int {
	if totalPages <= 0 || page < 0 {
		return 0
	}
	if page >= totalPages {
		return totalPages - 1
	}
	return page
}

// PageWindow returns the [start, end) bounds of the zero-based page in a sequence of n items.
func PageWindow(n, size, page int) (start, end int) {
	if n <= 0 || size <= 0 {
		return 0, 0
	}
	page = ClampPage(page, TotalPages(n, size))
	start = page * size
	end = start + size
	if end > n {
		end = n
	}
	return start, end
}
