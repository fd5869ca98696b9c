package safety

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	colorPattern  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	urlPattern    = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	handlePattern = regexp.MustCompile(`@\w+`)

	testimonialPattern = regexp.MustCompile(`(?i)\b(?:reviews?|reviewed|testimonials?|rated|customers? says?|clients? says?)\b|\b(?:5|five)[ -]stars?\b|★`)
)

const maxFieldRunes = 60

// ValidColor reports whether s is a #RGB or #RRGGBB colour.
func ValidColor(s string) bool {
	return colorPattern.MatchString(strings.TrimSpace(s))
}

// NormalizeColor lowercases a valid colour and expands the short form.
func NormalizeColor(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 4 {
		return "#" + string([]byte{s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	return s
}

// SanitizeField strips potentially identifying content from a free-text brand
// field: URLs, e-mail addresses, handles, digits and punctuation other than
// hyphen, ampersand and comma. changed is true when anything was removed.
func SanitizeField(s string) (clean string, changed bool) {
	original := collapseSpaces(s)

	out := urlPattern.ReplaceAllString(s, " ")
	out = emailPattern.ReplaceAllString(out, " ")
	out = handlePattern.ReplaceAllString(out, " ")
	out = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || r == '-' || r == '&' || r == ',' {
			return r
		}
		return ' '
	}, out)
	out = collapseSpaces(out)

	if runes := []rune(out); len(runes) > maxFieldRunes {
		out = strings.TrimSpace(string(runes[:maxFieldRunes]))
	}
	return out, out != original
}

// SanitizeLabel reduces s to a short lower_snake label safe for audit reasons.
func SanitizeLabel(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
		if b.Len() >= 40 {
			break
		}
	}
	return strings.Trim(b.String(), "_")
}

// ClaimsTestimonial reports whether text reads as a review or testimonial.
func ClaimsTestimonial(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if testimonialPattern.MatchString(t) {
		return true
	}
	quoted := func(lq, rq string) bool {
		return strings.HasPrefix(t, lq) && strings.HasSuffix(t, rq) && len(t) > len(lq)+len(rq)
	}
	return quoted(`"`, `"`) || quoted("“", "”")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
