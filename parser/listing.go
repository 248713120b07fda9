package parser

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"

	"krisha_scrooper/models"
)

// ParseListingPage extracts every card, the pagination state and the total
// result count from a search-results document.
func (p *Parser) ParseListingPage(r io.Reader) (*models.ListingPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}
	return p.ListingPageFromDocument(doc), nil
}

func (p *Parser) ListingPageFromDocument(doc *goquery.Document) *models.ListingPage {
	page := &models.ListingPage{
		Summaries: make([]models.ListingSummary, 0),
	}

	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		if isAdvertisement(card) {
			return
		}
		summary, ok := p.ParseCard(card)
		if !ok {
			page.Skipped++
			return
		}
		page.Summaries = append(page.Summaries, summary)
	})

	page.Pagination = ResolvePagination(doc)
	page.TotalFound = ResolveTotalFound(doc, page.Pagination, len(page.Summaries), p.opts.PageSize)
	return page
}
