package content

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 80

// Slugify lowercases title, folds accented letters to ASCII and joins the
// remaining words with hyphens: "Café Über Alles!" -> "cafe-uber-alles".
func Slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range norm.NFKD.String(title) {
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining mark left over from decomposition.
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			dash := pendingDash && b.Len() > 0
			need := 1
			if dash {
				need++
			}
			if b.Len()+need > maxSlugLen {
				return b.String()
			}
			if dash {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingDash = true
		}
	}
	return b.String()
}

// suffixSlug appends "-n" to base, shortening base so the result stays
// within maxSlugLen.
func suffixSlug(base string, n int) string {
	suffix := "-" + strconv.Itoa(n)
	if len(base)+len(suffix) > maxSlugLen {
		base = strings.TrimRight(base[:maxSlugLen-len(suffix)], "-")
	}
	return base + suffix
}

// ValidSlug reports whether s is non-empty lowercase ASCII words joined
// by single hyphens.
func ValidSlug(s string) bool {
	if s == "" || len(s) > maxSlugLen || s[0] == '-' || s[len(s)-1] == '-' || strings.Contains(s, "--") {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}
