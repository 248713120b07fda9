package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveImages_SortsIndices(t *testing.T) {
	doc := docFrom(t, `<html><head>
		<meta property="og:image" content="https://alaps-photos-kr.kcdn.kz/webp/3f/`+fixtureUUID+`/1-750x470.jpg">
	</head><body>
		<picture><source srcset="https://alaps-photos-kr.kcdn.kz/webp/3f/`+fixtureUUID+`/3-750x470.webp 1x, x 2x"></picture>
		<div data-photo-url="https://alaps-photos-kr.kcdn.kz/webp/3f/`+fixtureUUID+`/1-120x90.webp"></div>
		<div class="gallery__main"><img src="https://alaps-photos-kr.kcdn.kz/webp/3f/`+fixtureUUID+`/2-750x470.webp"></div>
		<div class="gallery__main"><img src="https://alaps-photos-kr.kcdn.kz/webp/3f/other/9-750x470.webp"></div>
	</body></html>`)

	prefix := "https://alaps-photos-kr.kcdn.kz/webp/3f/" + fixtureUUID + "/"
	got := New(DefaultOptions()).ResolveImages(doc)
	assert.Equal(t, []string{prefix + "1-full.webp", prefix + "2-full.webp", prefix + "3-full.webp"}, got)
}

func TestResolveImages_DefaultIndices(t *testing.T) {
	doc := docFrom(t, `<html><head>
		<meta name="og:image" content="https://alaps-photos-kr.kcdn.kz/webp/3f/`+fixtureUUID+`/1-750x470.jpg">
	</head><body></body></html>`)

	got := New(DefaultOptions()).ResolveImages(doc)
	assert.Len(t, got, 15)
	assert.Equal(t, "https://alaps-photos-kr.kcdn.kz/webp/3f/"+fixtureUUID+"/1-full.webp", got[0])
	assert.Equal(t, "https://alaps-photos-kr.kcdn.kz/webp/3f/"+fixtureUUID+"/15-full.webp", got[14])
}

func TestResolveImages_AnyMetaOnPhotoHost(t *testing.T) {
	doc := docFrom(t, `<html><head>
		<meta name="twitter:image" content="https://alaps-photos-kr.kcdn.kz/webp/3f/`+fixtureUUID+`/1-750x470.jpg">
	</head><body><div class="gallery__small-item" data-photo-url="//alaps-photos-kr.kcdn.kz/webp/3f/`+fixtureUUID+`/4-120x90.webp"></div></body></html>`)

	got := New(DefaultOptions()).ResolveImages(doc)
	assert.Equal(t, []string{"https://alaps-photos-kr.kcdn.kz/webp/3f/" + fixtureUUID + "/4-full.webp"}, got)
}

func TestResolveImages_GalleryFallback(t *testing.T) {
	doc := docFrom(t, `<html><head><meta property="og:image" content="https://alaps-photos-kr.kcdn.kz/no-id.jpg"></head><body>
		<div class="gallery__main"><img src="//alaps-photos-kr.kcdn.kz/webp/ab/x/2-750x470.jpg"></div>
		<div class="gallery__small-item"><img data-src="https://alaps-photos-kr.kcdn.kz/webp/ab/x/1-120x90.webp"></div>
		<div class="gallery__small-item"><img src="https://alaps-photos-kr.kcdn.kz/webp/ab/x/1-280x175.webp"></div>
		<div class="gallery__small-item" data-photo-url="https://alaps-photos-kr.kcdn.kz/cover.webp"></div>
		<div class="gallery__small-item"><img src="https://cdn.example.com/webp/ab/x/3-750x470.jpg"></div>
	</body></html>`)

	got := New(DefaultOptions()).ResolveImages(doc)
	assert.Equal(t, []string{
		"https://alaps-photos-kr.kcdn.kz/webp/ab/x/1-full.webp",
		"https://alaps-photos-kr.kcdn.kz/webp/ab/x/2-full.jpg",
		"https://alaps-photos-kr.kcdn.kz/cover.webp",
	}, got)
}

func TestResolveImages_NoPhotos(t *testing.T) {
	got := New(DefaultOptions()).ResolveImages(docFrom(t, `<html><body></body></html>`))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestConvertImageURL(t *testing.T) {
	p := New(DefaultOptions())

	src := "https://alaps-photos-kr.kcdn.kz/webp/ab/x/1-750x470.jpg"
	assert.Equal(t, "https://alaps-photos-kr.kcdn.kz/webp/ab/x/1-120x90.jpg", p.ConvertImageURL(src, SizeThumb))
	assert.Equal(t, "https://alaps-photos-kr.kcdn.kz/webp/ab/x/1-full.jpg", p.ConvertImageURL(src, SizeFull))

	full := "https://alaps-photos-kr.kcdn.kz/webp/ab/x/1-full.webp"
	assert.Equal(t, "https://alaps-photos-kr.kcdn.kz/webp/ab/x/1-280x175.webp", p.ConvertImageURL(full, SizeMedium))

	foreign := "https://cdn.example.com/1-750x470.jpg"
	assert.Equal(t, foreign, p.ConvertImageURL(foreign, SizeThumb))
}

func TestParsePhotoURL(t *testing.T) {
	id, prefix, ok := parsePhotoURL("https://alaps-photos-kr.kcdn.kz/webp/3f/" + fixtureUUID + "/1-750x470.jpg?v=2")
	assert.True(t, ok)
	assert.Equal(t, fixtureUUID, id)
	assert.Equal(t, "3f", prefix)

	for _, bad := range []string{
		"https://alaps-photos-kr.kcdn.kz/webp/3f/zzzzzzzz-5b7d-4e9f-a1b2-c3d4e5f60718/1-750x470.jpg",
		"https://alaps-photos-kr.kcdn.kz/webp/3f/3f8a1c2e5b7d4e9fa1b2c3d4e5f60718/1-750x470.jpg",
		"https://alaps-photos-kr.kcdn.kz/webp/3f/" + fixtureUUID + ".jpg",
		"https://alaps-photos-kr.kcdn.kz/" + fixtureUUID + "/1-750x470.jpg",
	} {
		_, _, ok := parsePhotoURL(bad)
		assert.False(t, ok, bad)
	}
}
