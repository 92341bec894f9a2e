package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify derives a URL-safe identifier from a display title: accents are
// folded to ASCII, the result is lowercased, characters other than letters,
// digits, underscores, hyphens and whitespace are dropped, and runs of
// whitespace or hyphens become a single hyphen.
func Slugify(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool {
		return r == ' ' || r == '-'
	})
	return strings.Trim(strings.Join(parts, "-"), "-_")
}

// normalizeSlug returns the explicit slug when given, else one derived from title.
func normalizeSlug(slug, title string) (string, error) {
	if slug != "" {
		slug = Slugify(slug)
	} else {
		slug = Slugify(title)
	}
	if slug == "" {
		return "", Validation("title must contain at least one letter or digit")
	}
	return slug, nil
}
