package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"krisha_scrooper/models"
)

const (
	cardSelector      = ".a-card"
	maxDescriptionLen = 200
)

var titleAreaFloorRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*м².*?(\d+/\d+)\s*этаж`)

func isAdvertisement(card *goquery.Selection) bool {
	return card.HasClass("ddl_campaign") || card.Find(".adfox").Length() > 0
}

// ParseCard extracts one result card. ok is false when the card lacks an id,
// uuid, title or price, or when traversal fails part way.
func (p *Parser) ParseCard(card *goquery.Selection) (summary models.ListingSummary, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			summary, ok = models.ListingSummary{}, false
		}
	}()

	id := ownAttr("data-id")(card)
	uuid := ownAttr("data-uuid")(card)
	if id == "" || uuid == "" {
		return summary, false
	}

	title := textOf(".a-card__title")(card)
	price := textOf(".a-card__price")(card)
	if title == "" || price == "" {
		return summary, false
	}

	area, floor := areaFloorFromTitle(title)

	summary = models.ListingSummary{
		ID:          id,
		UUID:        uuid,
		Title:       title,
		Price:       price,
		Area:        firstOf(card, textOf(".a-card__area"), constant(area)),
		Floor:       firstOf(card, textOf(".a-card__floor"), constant(floor)),
		Address:     textOf(".a-card__subtitle")(card),
		Description: truncate(textOf(".a-card__text-preview")(card), maxDescriptionLen),
		Views:       firstOf(card, textOf(".a-view-count"), constant("0")),
		ImageURL:    p.cardImage(card),
		URL:         attrOf(".a-card__title", "href")(card),
		IsUrgent:    isUrgent(card),
		Features:    cardFeatures(card),
	}
	return summary, true
}

// areaFloorFromTitle reads "45 м², 3/9 этаж" style titles.
func areaFloorFromTitle(title string) (area, floor string) {
	m := titleAreaFloorRe.FindStringSubmatch(title)
	if m == nil {
		return "", ""
	}
	return m[1] + " м²", m[2]
}

func (p *Parser) cardImage(card *goquery.Selection) string {
	return firstOf(card,
		p.cardImageFromUUID,
		p.cardImageOnHost("picture img"),
		p.cardImageOnHost("img"),
	)
}

func (p *Parser) cardImageFromUUID(card *goquery.Selection) string {
	id := ownAttr("data-uuid")(card)
	if len(id) < 2 {
		return ""
	}
	return fmt.Sprintf("https://%s/webp/%s/%s/1-400x300.webp", p.opts.CardPhotoHost, id[:2], id)
}

func (p *Parser) cardImageOnHost(selector string) strategy {
	return func(card *goquery.Selection) string {
		img := card.Find(selector).First()
		if img.Length() == 0 {
			return ""
		}
		src := firstAttr(img, "src", "data-src")
		if src == "" || !strings.Contains(src, p.opts.CardPhotoHost) {
			return ""
		}
		return absoluteURL(src)
	}
}

func isUrgent(card *goquery.Selection) bool {
	return card.HasClass("is-urgent") || strings.Contains(card.Find(".a-card__label").Text(), "Срочно")
}

func cardFeatures(card *goquery.Selection) []string {
	var tags []string
	card.Find(".paid-icon").Each(func(_ int, icon *goquery.Selection) {
		tags = append(tags, textOf(".kr-tooltip__title")(icon))
	})
	tags = append(tags, texts(card, ".credit-badge")...)
	tags = append(tags,
		textOf(".a-is-mortgaged")(card),
		textOf(".a-card__complex-label")(card),
	)
	return dedupe(tags)
}
