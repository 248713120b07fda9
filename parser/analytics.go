package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"krisha_scrooper/models"
)

// AnalyticsSource names where a merged analytics block came from.
type AnalyticsSource string

const (
	SourceRemote   AnalyticsSource = "remote"
	SourceDocument AnalyticsSource = "document"
	SourceNone     AnalyticsSource = "none"
)

const analyticsBlockSelector = ".offer__price-analytics, .price-analytics, .a-price-analysis"

var advertIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/show/(\d+)`),
	regexp.MustCompile(`/a/(\d+)`),
	regexp.MustCompile(`id[=:](\d+)`),
	regexp.MustCompile(`/(\d{10,})`),
}

var percentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(На` + sp + `+[\d,]+%` + sp + `+(?:дешевле|дороже))`),
	regexp.MustCompile(`(?i)([\d,]+%` + sp + `+(?:дешевле|дороже))`),
	regexp.MustCompile(`([+-]?[\d,]+%)`),
}

var percentSelectors = []string{
	".percent, .percentage",
	".difference",
	`*:contains("дешевле")`,
	`*:contains("дороже")`,
	`*:contains("%")`,
}

// analyticsLabel maps a phrase found near a price to the field it fills.
type analyticsLabel struct {
	text  string
	field func(*models.PriceAnalytics) *string
}

func thisListingField(a *models.PriceAnalytics) *string { return &a.ThisListing }
func districtField(a *models.PriceAnalytics) *string    { return &a.SimilarInDistrict }
func cityField(a *models.PriceAnalytics) *string        { return &a.SimilarInCity }

var analyticsLabels = []analyticsLabel{
	{"этого объявления", thisListingField},
	{"данного объявления", thisListingField},
	{"этой квартиры", thisListingField},
	{"похожих в районе", districtField},
	{"в районе", districtField},
	{"похожих в городе", cityField},
	{"в городе", cityField},
	{"среднее по району", districtField},
	{"среднее по городу", cityField},
}

// ExtractAdvertID finds the numeric listing id in a listing URL.
func ExtractAdvertID(rawURL string) (string, bool) {
	for _, re := range advertIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ParseAnalyticsDocument reads the analytics endpoint response.
func ParseAnalyticsDocument(r io.Reader) (models.PriceAnalytics, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return models.PriceAnalytics{}, fmt.Errorf("parse analytics: %w", err)
	}
	return ParseAnalytics(doc.Selection), nil
}

// ParseAnalytics applies the price strategies in order. A later strategy only
// fills fields an earlier one left empty.
func ParseAnalytics(root *goquery.Selection) models.PriceAnalytics {
	var a models.PriceAnalytics

	fillEmpty(&a, analyticsFromColours(root))
	if needsPrimary(a) {
		fillEmpty(&a, analyticsFromRows(root))
	}
	if needsPrimary(a) {
		fillEmpty(&a, analyticsFromLabels(root))
	}
	if a.ThisListing == "" {
		fillEmpty(&a, analyticsFromScan(root))
	}

	a.PercentageDifference = percentageDifference(root)
	return a
}

// SameDocumentAnalytics parses the analytics block embedded in a listing page.
// Pages without such a block yield the empty value.
func SameDocumentAnalytics(doc *goquery.Document) models.PriceAnalytics {
	block := doc.Find(analyticsBlockSelector)
	if block.Length() == 0 {
		return models.PriceAnalytics{}
	}
	return ParseAnalytics(block)
}

// MergeAnalytics keeps the remote result whenever it carries a listing or
// district price, even a partial one. Otherwise the fallback is consulted.
func MergeAnalytics(remote models.PriceAnalytics, fallback func() models.PriceAnalytics) (models.PriceAnalytics, AnalyticsSource) {
	if remote.HasPrimary() {
		return remote, SourceRemote
	}
	local := fallback()
	if local.IsEmpty() {
		return local, SourceNone
	}
	return local, SourceDocument
}

// ApplyAnalytics fills the market-price block and the per-meter price.
func ApplyAnalytics(d *models.ListingDetail, a models.PriceAnalytics) {
	d.MarketPrice = models.MarketPrice{
		ThisListing:          a.ThisListing,
		SimilarInRegion:      firstNonEmpty(a.SimilarInDistrict, a.SimilarInCity),
		SimilarInCity:        a.SimilarInCity,
		PercentageDifference: a.PercentageDifference,
	}
	d.PricePerMeter = firstNonEmpty(a.ThisListing, d.Price)
}

func needsPrimary(a models.PriceAnalytics) bool {
	return a.ThisListing == "" || a.SimilarInDistrict == ""
}

func fillEmpty(dst *models.PriceAnalytics, src models.PriceAnalytics) {
	dst.ThisListing = firstNonEmpty(dst.ThisListing, src.ThisListing)
	dst.SimilarInDistrict = firstNonEmpty(dst.SimilarInDistrict, src.SimilarInDistrict)
	dst.SimilarInCity = firstNonEmpty(dst.SimilarInCity, src.SimilarInCity)
	dst.PercentageDifference = firstNonEmpty(dst.PercentageDifference, src.PercentageDifference)
}

func analyticsFromColours(root *goquery.Selection) models.PriceAnalytics {
	first := func(selector string) string {
		return clean(root.Find(selector).First().Text())
	}
	return models.PriceAnalytics{
		ThisListing:       first(`.green-price, .price-green, [style*="color: green"], [class*="green"]`),
		SimilarInDistrict: first(`.blue-price, .price-blue, [style*="color: blue"], [class*="blue"]`),
		SimilarInCity:     first(`.white-blue-price, .price-city, .city-price`),
	}
}

// analyticsFromRows reads rows 0, 1 and 2 of the comparison table as the
// listing, district and city prices.
func analyticsFromRows(root *goquery.Selection) models.PriceAnalytics {
	var a models.PriceAnalytics
	fields := []func(*models.PriceAnalytics) *string{thisListingField, districtField, cityField}

	root.Find("table tr, .analytics-row, .price-row").Each(func(i int, row *goquery.Selection) {
		if i >= len(fields) {
			return
		}
		cells := row.Find("td, .cell, .price-cell")
		if cells.Length() < 2 {
			return
		}
		if price := firstPrice(cells.Eq(1).Text()); price != "" {
			field := fields[i](&a)
			*field = firstNonEmpty(*field, price)
		}
	})
	return a
}

// analyticsFromLabels looks for a price next to the innermost elements whose
// text mentions one of the known labels.
func analyticsFromLabels(root *goquery.Selection) models.PriceAnalytics {
	var a models.PriceAnalytics
	for _, label := range analyticsLabels {
		field := label.field(&a)
		if *field != "" {
			continue
		}
		innermostContaining(root, label.text).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			nearby := el.Parent().Text() + " " + el.Next().Text() + " " + el.Prev().Text()
			if price := firstPrice(nearby); price != "" {
				*field = price
				return false
			}
			return true
		})
	}
	return a
}

func innermostContaining(root *goquery.Selection, label string) *goquery.Selection {
	contains := func(s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(s.Text()), label)
	}
	return root.Find("*").FilterFunction(func(_ int, el *goquery.Selection) bool {
		if !contains(el) {
			return false
		}
		inner := false
		el.Children().EachWithBreak(func(_ int, child *goquery.Selection) bool {
			inner = contains(child)
			return !inner
		})
		return !inner
	})
}

// analyticsFromScan takes the first two distinct prices in the fragment.
func analyticsFromScan(root *goquery.Selection) models.PriceAnalytics {
	var prices []string
	root.Find("*").Each(func(_ int, el *goquery.Selection) {
		for _, m := range currencyRe.FindAllStringSubmatch(el.Text(), -1) {
			prices = append(prices, clean(m[1])+" ₸")
		}
	})
	prices = dedupe(prices)

	var a models.PriceAnalytics
	if len(prices) > 0 {
		a.ThisListing = prices[0]
	}
	if len(prices) > 1 {
		a.SimilarInDistrict = prices[1]
	}
	return a
}

func percentageDifference(root *goquery.Selection) string {
	for _, selector := range percentSelectors {
		var found string
		root.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			text := clean(el.Text())
			for _, re := range percentPatterns {
				if m := re.FindStringSubmatch(text); m != nil {
					found = clean(m[1])
					return false
				}
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}
