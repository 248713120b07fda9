package parser

import (
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"krisha_scrooper/models"
)

const (
	paginatorSelector    = ".paginator, .pagination, nav.paginator"
	pageButtonSelector   = ".paginator__btn, .pagination__btn, .page-btn, a[data-page]"
	pageLinkSelector     = `a[href*="page="]`
	nextInsideSelector   = `.paginator__btn--next, .pagination__btn--next, .next, .page-next, [class*="next"]`
	nextStandaloneSelect = `.pagination .next, .pager .next, a[rel="next"], .page-next, .next-page`
)

var pageParamRe = regexp.MustCompile(`page=(\d+)`)

// ResolvePagination infers the page count and whether a next page exists.
// Page numbers are gathered from the paginator, or from the whole document
// when the page has none.
func ResolvePagination(doc *goquery.Document) models.PaginationInfo {
	info := models.PaginationInfo{TotalPages: 1}

	scope := doc.Find(paginatorSelector)
	hasPaginator := scope.Length() > 0
	if !hasPaginator {
		scope = doc.Selection
	}

	var numbers []int
	numbers = append(numbers, pageNumbersFromButtons(scope)...)
	numbers = append(numbers, pageNumbersFromLinks(scope)...)
	if n, ok := maxInt(numbers); ok && n > 1 {
		info.TotalPages = n
	}

	if hasPaginator {
		info.HasNextPage = scope.Find(nextInsideSelector).Length() > 0
	} else {
		info.HasNextPage = doc.Find(nextStandaloneSelect).Length() > 0
	}
	return info
}

// pageNumbersFromButtons reads data-page, or the button text when the
// attribute is missing.
func pageNumbersFromButtons(scope *goquery.Selection) []int {
	var out []int
	scope.Find(pageButtonSelector).Each(func(_ int, btn *goquery.Selection) {
		raw, ok := btn.Attr("data-page")
		if !ok || raw == "" {
			raw = btn.Text()
		}
		if n, ok := leadingInt(raw); ok && n > 0 {
			out = append(out, n)
		}
	})
	return out
}

func pageNumbersFromLinks(scope *goquery.Selection) []int {
	var out []int
	scope.Find(pageLinkSelector).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		m := pageParamRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			out = append(out, n)
		}
	})
	return out
}
