package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// strategy reads one field from a fragment. It returns "" when it has nothing.
type strategy func(*goquery.Selection) string

// firstOf tries strategies in order and returns the first non-empty result.
func firstOf(s *goquery.Selection, strategies ...strategy) string {
	for _, fn := range strategies {
		if v := fn(s); v != "" {
			return v
		}
	}
	return ""
}

// textOf reads the collapsed text of every match of selector.
func textOf(selector string) strategy {
	return func(s *goquery.Selection) string {
		return clean(s.Find(selector).Text())
	}
}

// attrOf reads an attribute from the first match of selector.
func attrOf(selector, attr string) strategy {
	return func(s *goquery.Selection) string {
		v, _ := s.Find(selector).First().Attr(attr)
		return clean(v)
	}
}

// ownAttr reads an attribute from the fragment root.
func ownAttr(attr string) strategy {
	return func(s *goquery.Selection) string {
		v, _ := s.Attr(attr)
		return clean(v)
	}
}

// constant lets a value derived elsewhere take part in a chain.
func constant(v string) strategy {
	return func(*goquery.Selection) string {
		return v
	}
}

// texts returns the collapsed text of each match of selector, in document order.
func texts(s *goquery.Selection, selector string) []string {
	var out []string
	s.Find(selector).Each(func(_ int, item *goquery.Selection) {
		if v := clean(item.Text()); v != "" {
			out = append(out, v)
		}
	})
	return out
}

// firstAttr returns the first non-empty attribute among attrs.
func firstAttr(s *goquery.Selection, attrs ...string) string {
	for _, attr := range attrs {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// mediaSource reads the URL an img, source or gallery node points at,
// falling back to the first srcset candidate.
func mediaSource(s *goquery.Selection, attrs ...string) string {
	if v := firstAttr(s, attrs...); v != "" {
		return v
	}
	srcset, ok := s.Attr("srcset")
	if !ok {
		return ""
	}
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
