package models

// ListingSummary is one card from a search-results page.
type ListingSummary struct {
	ID          string   `json:"id"`
	UUID        string   `json:"uuid"`
	Title       string   `json:"title"`
	Price       string   `json:"price"`
	Area        string   `json:"area"`
	Floor       string   `json:"floor"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Views       string   `json:"views"`
	ImageURL    string   `json:"imageUrl"`
	URL         string   `json:"url"`
	IsUrgent    bool     `json:"isUrgent"`
	Features    []string `json:"features"`
}

type PaginationInfo struct {
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
}

// ListingPage is the extraction result for one search-results document.
type ListingPage struct {
	Summaries  []ListingSummary `json:"apartments"`
	Pagination PaginationInfo   `json:"pagination"`
	TotalFound int              `json:"total"`

	// Skipped counts cards that were dropped (ads excluded).
	Skipped int `json:"-"`

	URL         string `json:"url,omitempty"`
	CurrentPage int    `json:"currentPage,omitempty"`
}

// FilterParams are the user's search selections.
type FilterParams struct {
	City      string `json:"city"`
	PriceFrom string `json:"priceFrom"`
	PriceTo   string `json:"priceTo"`
	Rooms     string `json:"rooms"`
	Page      int    `json:"page"`
}
