package engine

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AddressMatchThreshold is the minimum share of significant tokens two
// addresses must have in common to be considered the same place.
const AddressMatchThreshold = 0.7

// Normalize lower-cases s, strips diacritics (ñ becomes n) and punctuation,
// and collapses whitespace.
func Normalize(s string) string {
	// transform.Transformer keeps state, so the chain is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return unicode.ToLower(r)
	}, stripped)
	return strings.Join(strings.Fields(stripped), " ")
}

// NormalizeIdentifier is Normalize with every space removed, for tax ids,
// national ids and postal codes.
func NormalizeIdentifier(s string) string {
	return strings.ReplaceAll(Normalize(s), " ", "")
}

var dateLayouts = []string{
	time.DateOnly,
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
	time.RFC3339,
}

// NormalizeDate renders a date in canonical YYYY-MM-DD. Unparseable input
// falls back to NormalizeIdentifier so it can only ever match itself.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return NormalizeIdentifier(s)
}

// significantTokens returns the distinct normalized tokens longer than two
// characters.
func significantTokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(Normalize(s)) {
		if utf8.RuneCountInString(tok) > 2 {
			out[tok] = struct{}{}
		}
	}
	return out
}

// AddressOverlap is the number of shared significant tokens divided by the
// size of the larger token set. Both sides are deduplicated first, so a token
// repeated in one address counts once and the result stays within [0, 1].
func AddressOverlap(a, b string) float64 {
	ta, tb := significantTokens(a), significantTokens(b)
	longer := max(len(ta), len(tb))
	if longer == 0 {
		return 0
	}
	shared := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(longer)
}

// AddressesMatch applies AddressMatchThreshold to AddressOverlap.
func AddressesMatch(a, b string) bool {
	return AddressOverlap(a, b) >= AddressMatchThreshold
}
