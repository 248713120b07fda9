package models

// PriceAnalytics is the price-comparison block. Every field is optional and the
// zero value is a valid result.
type PriceAnalytics struct {
	ThisListing          string `json:"thisListing"`
	SimilarInDistrict    string `json:"similarInDistrict"`
	SimilarInCity        string `json:"similarInCity"`
	PercentageDifference string `json:"percentageDifference"`
}

// HasPrimary reports whether the this-listing or district price is known.
func (a PriceAnalytics) HasPrimary() bool {
	return a.ThisListing != "" || a.SimilarInDistrict != ""
}

// IsEmpty reports whether no value was found at all.
func (a PriceAnalytics) IsEmpty() bool {
	return a == PriceAnalytics{}
}
