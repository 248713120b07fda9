package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"krisha_scrooper/models"
)

const (
	defaultImageCount = 15
	unknownImageIndex = 999
)

var (
	photoPrefixRe = regexp.MustCompile(`/webp/([^/]+)/`)
	// The index sits in the last path segment: ".../<uuid>/3-750x470.webp".
	photoIndexRe = regexp.MustCompile(`/(\d+)-[^/]*$`)
	sizeSuffixRe = regexp.MustCompile(`-(?:\d+x\d+|full)\.(webp|jpg|jpeg)`)
)

var (
	galleryIndexSelectors = []string{
		".gallery__small-item img",
		".gallery__main img",
		".gallery__small-item",
		"picture source",
		"[data-photo-url]",
	}
	galleryMarkupSelectors = []string{
		".gallery__small-item img",
		".gallery__main img",
		"picture source",
	}
)

// Image size names accepted by ConvertImageURL.
const (
	SizeThumb  = "thumb"
	SizeMedium = "medium"
	SizeLarge  = "large"
	SizeFull   = "full"
)

var sizeSuffix = map[string]string{
	SizeThumb:  "120x90",
	SizeMedium: "280x175",
	SizeLarge:  "750x470",
	SizeFull:   "full",
}

// ResolveImages rebuilds the photo set from the preview image identifier,
// falling back to the gallery markup when no usable preview exists.
func (p *Parser) ResolveImages(doc *goquery.Document) []string {
	if preview := p.previewImage(doc.Selection); preview != "" {
		if id, prefix, ok := parsePhotoURL(preview); ok {
			return p.canonicalImages(prefix, id, photoIndices(doc.Selection, id))
		}
	}
	return p.galleryImages(doc.Selection)
}

func (p *Parser) previewImage(root *goquery.Selection) string {
	return firstOf(root,
		attrOf(`meta[property="og:image"]`, "content"),
		attrOf(`meta[name="og:image"]`, "content"),
		attrOf(`head meta[property="og:image"]`, "content"),
		p.metaOnPhotoHost,
	)
}

func (p *Parser) metaOnPhotoHost(root *goquery.Selection) string {
	var found string
	root.Find("meta[content]").EachWithBreak(func(_ int, meta *goquery.Selection) bool {
		content, _ := meta.Attr("content")
		if strings.Contains(content, p.opts.PhotoHost) {
			found = clean(content)
			return false
		}
		return true
	})
	return found
}

// parsePhotoURL pulls the photo uuid and path prefix out of a CDN URL. The
// uuid is the first directory segment in canonical dashed form.
func parsePhotoURL(u string) (id, prefix string, ok bool) {
	prefixMatch := photoPrefixRe.FindStringSubmatch(u)
	if prefixMatch == nil {
		return "", "", false
	}
	id, ok = photoUUID(u)
	if !ok {
		return "", "", false
	}
	return id, prefixMatch[1], true
}

func photoUUID(u string) (string, bool) {
	path := u
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	// The last segment is the file name.
	for _, seg := range segments[:len(segments)-1] {
		if len(seg) != 36 {
			continue
		}
		if _, err := uuid.Parse(seg); err == nil {
			return seg, true
		}
	}
	return "", false
}

// photoIndices collects the image numbers referenced in the gallery for the
// given photo uuid.
func photoIndices(root *goquery.Selection, id string) []int {
	seen := make(map[int]bool)
	var out []int
	for _, selector := range galleryIndexSelectors {
		root.Find(selector).Each(func(_ int, node *goquery.Selection) {
			src := mediaSource(node, "src", "data-src", "data-photo-url")
			if !strings.Contains(src, id) {
				return
			}
			n, ok := photoIndex(src)
			if !ok || seen[n] {
				return
			}
			seen[n] = true
			out = append(out, n)
		})
	}
	return out
}

func photoIndex(src string) (int, bool) {
	m := photoIndexRe.FindStringSubmatch(src)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func (p *Parser) canonicalImages(prefix, id string, indices []int) []string {
	if len(indices) == 0 {
		for i := 1; i <= defaultImageCount; i++ {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)

	images := make([]string, 0, len(indices))
	for _, n := range indices {
		images = append(images, p.PhotoURL(prefix, id, n, SizeFull))
	}
	return images
}

// PhotoURL builds a CDN URL for one listing photo.
func (p *Parser) PhotoURL(prefix, id string, index int, size string) string {
	return fmt.Sprintf("https://%s/webp/%s/%s/%d-%s.webp", p.opts.PhotoHost, prefix, id, index, sizeSuffix[size])
}

// galleryImages reads photo URLs straight from the gallery markup.
func (p *Parser) galleryImages(root *goquery.Selection) []string {
	var sources []string
	for _, selector := range galleryMarkupSelectors {
		root.Find(selector).Each(func(_ int, node *goquery.Selection) {
			sources = append(sources, mediaSource(node, "src", "data-src"))
		})
	}
	root.Find(".gallery__small-item[data-photo-url]").Each(func(_ int, node *goquery.Selection) {
		sources = append(sources, firstAttr(node, "data-photo-url"))
	})

	var images []string
	for _, src := range sources {
		if src == "" || !strings.Contains(src, p.opts.PhotoHost) {
			continue
		}
		images = append(images, p.ConvertImageURL(absoluteURL(src), SizeFull))
	}
	images = dedupe(images)

	sort.SliceStable(images, func(i, j int) bool {
		return sortIndex(images[i]) < sortIndex(images[j])
	})
	return images
}

func sortIndex(u string) int {
	if n, ok := photoIndex(u); ok {
		return n
	}
	return unknownImageIndex
}

// ConvertImageURL rewrites the size suffix of a photo URL. URLs outside the
// photo host are returned unchanged.
func (p *Parser) ConvertImageURL(u, size string) string {
	suffix, ok := sizeSuffix[size]
	if !ok || !strings.Contains(u, p.opts.PhotoHost) {
		return u
	}
	loc := sizeSuffixRe.FindStringSubmatchIndex(u)
	if loc == nil {
		return u
	}
	ext := u[loc[2]:loc[3]]
	return u[:loc[0]] + "-" + suffix + "." + ext + u[loc[1]:]
}

// Variants derives the standard renditions of one photo.
func (p *Parser) Variants(first string) *models.ImageVariants {
	return &models.ImageVariants{
		Thumb:  p.ConvertImageURL(first, SizeThumb),
		Medium: p.ConvertImageURL(first, SizeMedium),
		Large:  p.ConvertImageURL(first, SizeLarge),
		Full:   p.ConvertImageURL(first, SizeFull),
	}
}
