package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krisha_scrooper/models"
)

func TestExtractAdvertID(t *testing.T) {
	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://krisha.kz/a/show/1001605848", "1001605848", true},
		{"https://m.krisha.kz/a/show/1001605848/photos", "1001605848", true},
		{"https://krisha.kz/a/42", "42", true},
		{"https://krisha.kz/view?id=777", "777", true},
		{"https://krisha.kz/listing/1234567890", "1234567890", true},
		{"https://krisha.kz/prodazha/kvartiry/astana/", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractAdvertID(tc.url)
		assert.Equal(t, tc.ok, ok, tc.url)
		assert.Equal(t, tc.want, got, tc.url)
	}
}

func TestParseAnalyticsDocument_Rows(t *testing.T) {
	a, err := ParseAnalyticsDocument(bytes.NewReader(loadFixture(t, "analytics.html")))
	require.NoError(t, err)

	assert.Equal(t, models.PriceAnalytics{
		ThisListing:          "463 000 ₸",
		SimilarInDistrict:    "480 000 ₸",
		SimilarInCity:        "512 300 ₸",
		PercentageDifference: "На 3,5% дешевле",
	}, a)
}

func TestParseAnalytics_ColourClassesWin(t *testing.T) {
	doc := docFrom(t, `<div>
		<span class="green-price">450 000 ₸</span>
		<table><tr><td>a</td><td>999 ₸</td></tr><tr><td>b</td><td>480 000 ₸</td></tr></table>
	</div>`)

	a := ParseAnalytics(doc.Selection)
	assert.Equal(t, "450 000 ₸", a.ThisListing)
	assert.Equal(t, "480 000 ₸", a.SimilarInDistrict)
}

func TestParseAnalytics_Labels(t *testing.T) {
	doc := docFrom(t, `<section>
		<div><span>Цена этого объявления</span><b>450 000 ₸</b></div>
		<div><span>Похожих в районе</span><b>480 000 ₸</b></div>
		<div><span>Среднее по городу</span><b>500 000 ₸</b></div>
	</section>`)

	a := ParseAnalytics(doc.Selection)
	assert.Equal(t, "450 000 ₸", a.ThisListing)
	assert.Equal(t, "480 000 ₸", a.SimilarInDistrict)
	assert.Equal(t, "500 000 ₸", a.SimilarInCity)
}

func TestParseAnalytics_DocumentScan(t *testing.T) {
	doc := docFrom(t, `<div><p>Цена 300 000 ₸</p><p>Район 350 000 ₸</p><p>Снова 300 000 ₸</p></div>`)

	a := ParseAnalytics(doc.Selection)
	assert.Equal(t, "300 000 ₸", a.ThisListing)
	assert.Equal(t, "350 000 ₸", a.SimilarInDistrict)
	assert.Equal(t, "", a.SimilarInCity)
}

func TestParseAnalytics_Percentage(t *testing.T) {
	doc := docFrom(t, `<div><span>Дороже рынка: на 3,5% дороже</span></div>`)
	assert.Equal(t, "на 3,5% дороже", ParseAnalytics(doc.Selection).PercentageDifference)

	doc = docFrom(t, `<div><span class="percentage">+12%</span></div>`)
	assert.Equal(t, "+12%", ParseAnalytics(doc.Selection).PercentageDifference)
}

func TestParseAnalytics_EmptyIsValid(t *testing.T) {
	doc := docFrom(t, `<div>Нет данных</div>`)
	assert.True(t, ParseAnalytics(doc.Selection).IsEmpty())
}

func TestSameDocumentAnalytics(t *testing.T) {
	doc := docFrom(t, string(loadFixture(t, "detail.html")))
	a := SameDocumentAnalytics(doc)
	assert.Equal(t, "463 000 ₸", a.ThisListing)
	assert.Equal(t, "480 000 ₸", a.SimilarInDistrict)
	assert.Equal(t, "На 3,5% дешевле", a.PercentageDifference)

	doc = docFrom(t, `<div class="offer__price">25 000 000 ₸</div>`)
	assert.True(t, SameDocumentAnalytics(doc).IsEmpty())
}

func TestMergeAnalytics_RemotePartialIsAuthoritative(t *testing.T) {
	remote := models.PriceAnalytics{ThisListing: "463 000 ₸"}
	called := false
	fallback := func() models.PriceAnalytics {
		called = true
		return models.PriceAnalytics{SimilarInDistrict: "480 000 ₸"}
	}

	got, source := MergeAnalytics(remote, fallback)
	assert.Equal(t, remote, got)
	assert.Equal(t, SourceRemote, source)
	assert.False(t, called)
}

func TestMergeAnalytics_Fallback(t *testing.T) {
	remote := models.PriceAnalytics{SimilarInCity: "500 000 ₸"}
	local := models.PriceAnalytics{ThisListing: "463 000 ₸"}

	got, source := MergeAnalytics(remote, func() models.PriceAnalytics { return local })
	assert.Equal(t, local, got)
	assert.Equal(t, SourceDocument, source)

	got, source = MergeAnalytics(models.PriceAnalytics{}, func() models.PriceAnalytics { return models.PriceAnalytics{} })
	assert.True(t, got.IsEmpty())
	assert.Equal(t, SourceNone, source)
}

func TestApplyAnalytics(t *testing.T) {
	d := &models.ListingDetail{Price: "25 000 000 ₸", PricePerMeter: "25 000 000 ₸"}
	ApplyAnalytics(d, models.PriceAnalytics{SimilarInCity: "500 000 ₸", PercentageDifference: "+3%"})

	assert.Equal(t, models.MarketPrice{
		SimilarInRegion:      "500 000 ₸",
		SimilarInCity:        "500 000 ₸",
		PercentageDifference: "+3%",
	}, d.MarketPrice)
	assert.Equal(t, "25 000 000 ₸", d.PricePerMeter)

	ApplyAnalytics(d, models.PriceAnalytics{ThisListing: "463 000 ₸", SimilarInDistrict: "480 000 ₸"})
	assert.Equal(t, "480 000 ₸", d.MarketPrice.SimilarInRegion)
	assert.Equal(t, "463 000 ₸", d.PricePerMeter)
}
