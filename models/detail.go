package models

type ListingDetail struct {
	Title         string         `json:"title"`
	Price         string         `json:"price"`
	PricePerMeter string         `json:"pricePerMeter"`
	City          string         `json:"city"`
	District      string         `json:"district"`
	BuildingType  string         `json:"buildingType"`
	Complex       string         `json:"complex"`
	YearBuilt     string         `json:"yearBuilt"`
	Area          string         `json:"area"`
	Rooms         string         `json:"rooms"`
	Floor         string         `json:"floor"`
	CeilingHeight string         `json:"ceilingHeight"`
	Description   string         `json:"description"`
	Features      []string       `json:"features"`
	Contact       *Contact       `json:"contact,omitempty"`
	Views         string         `json:"views,omitempty"`
	Images        []string       `json:"images"`
	ImageVariants *ImageVariants `json:"imageVariants,omitempty"`
	MarketPrice   MarketPrice    `json:"marketPrice"`
}

type Contact struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Phone string `json:"phone"`
}

// ImageVariants are size renditions of the first listing photo.
type ImageVariants struct {
	Thumb  string `json:"thumb"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
	Full   string `json:"full"`
}

type MarketPrice struct {
	ThisListing          string `json:"thisListing"`
	SimilarInRegion      string `json:"similarInRegion"`
	SimilarInCity        string `json:"similarInCity,omitempty"`
	PercentageDifference string `json:"percentageDifference"`
}
