package scraper

import (
	"net/url"
	"strconv"
	"strings"

	"krisha_scrooper/config"
	"krisha_scrooper/models"
)

// BuildFilterURL turns search selections into a results-page URL. The page
// parameter is only present from page 2 on.
func BuildFilterURL(site *config.SiteConfig, f models.FilterParams) string {
	base := strings.TrimRight(site.BaseURL, "/") + "/" +
		strings.Trim(site.ListingPath, "/") + "/" +
		url.PathEscape(strings.TrimSpace(f.City)) + "/"

	params := url.Values{}
	if f.Rooms != "" {
		params.Set("das[live.rooms]", f.Rooms)
	}
	if f.PriceFrom != "" {
		params.Set("das[price][from]", f.PriceFrom)
	}
	if f.PriceTo != "" {
		params.Set("das[price][to]", f.PriceTo)
	}
	if f.Page > 1 {
		params.Set("page", strconv.Itoa(f.Page))
	}

	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}

// FilterForWatch converts a saved search into first-page selections.
func FilterForWatch(w config.Watch) models.FilterParams {
	return models.FilterParams{
		City:      w.City,
		PriceFrom: w.PriceFrom,
		PriceTo:   w.PriceTo,
		Rooms:     w.Rooms,
		Page:      1,
	}
}
