package appdata

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify turns a title into a lowercase ASCII identifier made of letters, digits
// and single dashes. Accented letters lose their marks; other characters are dropped.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFKD.String(title) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(unicode.ToLower(r))
		default:
			dash = true
		}
	}
	return b.String()
}

// FileSlug returns the descriptor slug when it is already filesystem safe and
// falls back to a slugified slug, title or store id otherwise. It is empty only
// when none of them has an ASCII letter or digit.
func (d Descriptor) FileSlug() string {
	if s := d.Slug(); s != "" && Slugify(s) == strings.ToLower(s) {
		return s
	}
	if s := Slugify(d.Slug()); s != "" {
		return s
	}
	if s := Slugify(d.Title()); s != "" {
		return s
	}
	return Slugify(d.ID())
}
