package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"krisha_scrooper/models"
)

const groupedNumber = `(\d+(?:` + sp + `+\d+)*)`

var (
	foundPhraseRe = regexp.MustCompile(`(?i)Найдено` + sp + `+` + groupedNumber + sp + `+объявлени`)
	countPhraseRe = regexp.MustCompile(`(?i)` + groupedNumber + sp + `*(?:объявлени|результат|найден)`)
)

var countRegions = []string{
	".search-results-header",
	".results-count",
	".found-count",
	".search-results__count",
	".listing-header",
	"h1",
	".search-summary",
	".page-title",
}

// ResolveTotalFound returns the site's own result count when the page states
// one, else an estimate from the page count, else the emitted card count.
func ResolveTotalFound(doc *goquery.Document, pagination models.PaginationInfo, emitted, pageSize int) int {
	if n := totalFromSubtitle(doc); n > 0 {
		return n
	}
	if n := totalFromHeaders(doc); n > 0 {
		return n
	}
	if n, ok := estimateFromPages(pagination.TotalPages, pageSize); ok {
		return max(n, emitted)
	}
	return emitted
}

// estimateFromPages multiplies out the page count. Counts whose product would
// overflow are rejected.
func estimateFromPages(pages, pageSize int) (int, bool) {
	if pages <= 1 || pageSize <= 0 || pages > math.MaxInt/pageSize {
		return 0, false
	}
	return pages * pageSize, true
}

func totalFromSubtitle(doc *goquery.Document) int {
	m := foundPhraseRe.FindStringSubmatch(doc.Find(".a-search-subtitle, .search-results-nb").Text())
	if m == nil {
		return 0
	}
	n, _ := parseGroupedInt(m[1])
	return n
}

// totalFromHeaders takes the largest "<n> объявлений" style number found in
// the header regions and the document title.
func totalFromHeaders(doc *goquery.Document) int {
	var b strings.Builder
	for _, selector := range countRegions {
		if sel := doc.Find(selector); sel.Length() > 0 {
			b.WriteString(" ")
			b.WriteString(sel.Text())
		}
	}
	b.WriteString(" ")
	b.WriteString(doc.Find("title").Text())

	var counts []int
	for _, m := range countPhraseRe.FindAllStringSubmatch(b.String(), -1) {
		if n, ok := parseGroupedInt(m[1]); ok {
			counts = append(counts, n)
		}
	}
	n, _ := maxInt(counts)
	return n
}
