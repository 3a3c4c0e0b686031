package format

import "time"

// Regional indicator symbols occupy U+1F1E6..U+1F1FF, one per latin letter.
const (
	regionalIndicatorA = 0x1F1E6
	regionalIndicatorZ = 0x1F1FF
)

// visitDateLayout matches the long date shown on the city detail view
const visitDateLayout = "Monday, January 2, 2006"

// Emoji derives the flag glyph for a two-letter country code by mapping each
// letter to its regional indicator rune. Anything that is not exactly two
// ASCII letters yields an empty string rather than an error.
func Emoji(countryCode string) string {
	if len(countryCode) != 2 {
		return ""
	}
	runes := make([]rune, 0, 2)
	for i := 0; i < 2; i++ {
		c := countryCode[i]
		switch {
		case c >= 'A' && c <= 'Z':
			runes = append(runes, regionalIndicatorA+rune(c-'A'))
		case c >= 'a' && c <= 'z':
			runes = append(runes, regionalIndicatorA+rune(c-'a'))
		default:
			return ""
		}
	}
	return string(runes)
}

// CountryCode is the inverse of Emoji: it recovers the two-letter country
// code from a flag glyph. Used when importing exports that carry only the
// emoji. Returns an empty string for anything that is not a flag.
func CountryCode(emoji string) string {
	runes := []rune(emoji)
	if len(runes) != 2 {
		return ""
	}
	letters := make([]byte, 0, 2)
	for _, r := range runes {
		if r < regionalIndicatorA || r > regionalIndicatorZ {
			return ""
		}
		letters = append(letters, byte('A'+r-regionalIndicatorA))
	}
	return string(letters)
}

// VisitDate renders the visit date the way the detail view shows it.
// A missing date formats as today.
func VisitDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return time.Now().Format(visitDateLayout)
	}
	return t.Format(visitDateLayout)
}
