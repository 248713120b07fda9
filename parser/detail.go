package parser

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"krisha_scrooper/models"
)

// ErrContentNotFound means the page was fetched but carries neither a title
// nor a price: the listing was removed or the markup changed.
var ErrContentNotFound = errors.New("listing content not found")

var (
	titleRoomsRe = regexp.MustCompile(`(\d+)-комнатная`)
	titleAreaRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*м²`)
	bareNumberRe = regexp.MustCompile(`^\d+$`)
)

// infoRule handles one ".offer__info-item" row whose lowercased title
// contains label.
type infoRule struct {
	label string
	apply func(d *models.ListingDetail, item *goquery.Selection, value string)
}

var infoRules = []infoRule{
	{"город", func(d *models.ListingDetail, _ *goquery.Selection, v string) {
		parts := strings.Split(v, ",")
		d.City = clean(parts[0])
		if len(parts) > 1 {
			d.District = clean(parts[1])
		}
	}},
	{"жилой комплекс", func(d *models.ListingDetail, item *goquery.Selection, v string) {
		d.Complex = firstOf(item, textOf(".offer__advert-short-info a"), constant(v))
	}},
	{"год постройки", func(d *models.ListingDetail, _ *goquery.Selection, v string) { d.YearBuilt = v }},
	{"тип дома", func(d *models.ListingDetail, _ *goquery.Selection, v string) { d.BuildingType = v }},
	{"этаж", func(d *models.ListingDetail, _ *goquery.Selection, v string) { d.Floor = v }},
	{"площадь", func(d *models.ListingDetail, _ *goquery.Selection, v string) { d.Area = v }},
	{"комнат", func(d *models.ListingDetail, _ *goquery.Selection, v string) { d.Rooms = roomsLabel(v) }},
	{"балкон", func(d *models.ListingDetail, _ *goquery.Selection, v string) {
		d.Features = append(d.Features, "Балкон: "+v)
	}},
}

// paramRule handles one ".offer__parameters dl" pair whose dt contains key.
type paramRule struct {
	key   string
	apply func(d *models.ListingDetail, value string)
}

func featureParam(key, label string) paramRule {
	return paramRule{key, func(d *models.ListingDetail, v string) {
		d.Features = append(d.Features, label+": "+v)
	}}
}

var paramRules = []paramRule{
	{"Высота потолков", func(d *models.ListingDetail, v string) { d.CeilingHeight = v }},
	featureParam("Балкон остеклён", "Балкон остеклён"),
	featureParam("Дверь", "Дверь"),
	featureParam("Интернет", "Интернет"),
	featureParam("Парковка", "Парковка"),
	featureParam("Квартира меблирована", "Меблирована"),
	featureParam("Пол", "Пол"),
	featureParam("Безопасность", "Безопасность"),
}

// ParseDetail extracts a listing page. Analytics are not merged here; the
// market-price block is left empty and PricePerMeter mirrors the price.
func (p *Parser) ParseDetail(r io.Reader) (*models.ListingDetail, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse detail page: %w", err)
	}
	return p.ParseDetailDocument(doc)
}

func (p *Parser) ParseDetailDocument(doc *goquery.Document) (*models.ListingDetail, error) {
	root := doc.Selection

	d := &models.ListingDetail{
		Title: firstOf(root, textOf(".offer__advert-title h1"), textOf(".offer__advert-title")),
		Price: textOf(".offer__price")(root),
	}
	if d.Title == "" && d.Price == "" {
		return nil, ErrContentNotFound
	}

	applyInfoRules(d, root)
	applyParamRules(d, root)

	titleRooms, titleArea := roomsAreaFromTitle(d.Title)
	d.Rooms = firstNonEmpty(d.Rooms, titleRooms)
	d.Area = firstNonEmpty(d.Area, titleArea)

	d.Description = firstOf(root, textOf(".js-description"), textOf(".offer__description .text"))
	d.Features = append(d.Features, texts(root, ".paid-labels__item")...)
	d.Features = dedupe(d.Features)

	d.Contact = contactOf(root)
	d.Views = textOf("#a-nb-views strong")(root)

	d.Images = p.ResolveImages(doc)
	if len(d.Images) > 0 {
		d.ImageVariants = p.Variants(d.Images[0])
	}

	d.PricePerMeter = d.Price
	return d, nil
}

func applyInfoRules(d *models.ListingDetail, root *goquery.Selection) {
	root.Find(".offer__info-item").Each(func(_ int, item *goquery.Selection) {
		title := strings.ToLower(textOf(".offer__info-title")(item))
		value := textOf(".offer__advert-short-info")(item)
		for _, rule := range infoRules {
			if strings.Contains(title, rule.label) {
				rule.apply(d, item, value)
				return
			}
		}
	})
}

func applyParamRules(d *models.ListingDetail, root *goquery.Selection) {
	root.Find(".offer__parameters dl").Each(func(_ int, dl *goquery.Selection) {
		key := textOf("dt")(dl)
		value := textOf("dd")(dl)
		for _, rule := range paramRules {
			if strings.Contains(key, rule.key) {
				rule.apply(d, value)
				return
			}
		}
	})
}

func roomsAreaFromTitle(title string) (rooms, area string) {
	if m := titleRoomsRe.FindStringSubmatch(title); m != nil {
		rooms = m[1] + " комнаты"
	}
	if m := titleAreaRe.FindStringSubmatch(title); m != nil {
		area = m[1] + " м²"
	}
	return rooms, area
}

func roomsLabel(v string) string {
	if bareNumberRe.MatchString(v) {
		return v + " комнаты"
	}
	return v
}

func contactOf(root *goquery.Selection) *models.Contact {
	c := &models.Contact{
		Name:  textOf(".owners__name")(root),
		Type:  textOf(".label-user-agent")(root),
		Phone: textOf(".a-phones .phone")(root),
	}
	if c.Name == "" && c.Type == "" {
		return nil
	}
	return c
}
