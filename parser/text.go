package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// sp matches the separators the site puts inside grouped numbers, which
// include NBSP and narrow NBSP.
const sp = `[\s\x{00a0}\x{202f}]`

var (
	currencyRe   = regexp.MustCompile(`(\d+(?:` + sp + `+\d+)*)` + sp + `*₸`)
	leadingIntRe = regexp.MustCompile(`^\d+`)
)

// clean collapses every whitespace run to a single space and trims.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// parseGroupedInt parses "9 778" as 9778.
func parseGroupedInt(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// leadingInt mirrors how the site's own scripts read page buttons: digits
// at the start of the text, the rest ignored.
func leadingInt(s string) (int, bool) {
	m := leadingIntRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// firstPrice returns the first currency-suffixed number in text as "<n> ₸".
func firstPrice(text string) string {
	m := currencyRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return clean(m[1]) + " ₸"
}

// dedupe keeps the first occurrence of each non-empty value.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func maxInt(values []int) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m, true
}

// absoluteURL upgrades protocol-relative CDN sources.
func absoluteURL(src string) string {
	if strings.HasPrefix(src, "http") {
		return src
	}
	return "https:" + src
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
