// Package normalizers provides field normalization functions for account matching
package normalizers

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer maps a raw field value to its comparison form
type Normalizer func(string) string

var registry = map[string]Normalizer{}

func init() {
	for name, fn := range map[string]Normalizer{
		"lowercase":    strings.ToLower,
		"uppercase":    strings.ToUpper,
		"trim":         strings.TrimSpace,
		"fold_accents": FoldAccents,
		"digits_only":  DigitsOnly,
		"alphanumeric": Alphanumeric,
		"nname":        NormalizeName,
		"nemail":       NormalizeEmail,
		"nphone":       NormalizePhone,
		"ngovid":       NormalizeGovID,
		"naddress":     NormalizeAddress,
	} {
		Register(name, fn)
	}
}

// Register makes fn available to field chains under name, replacing any earlier entry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply runs the named normalizer. Unknown names leave the value untouched.
func Apply(value, name string) string {
	if fn, ok := registry[name]; ok {
		return fn(value)
	}
	return value
}

// ApplyChain runs names left to right
func ApplyChain(value string, names ...string) string {
	for _, name := range names {
		value = Apply(value, name)
	}
	return value
}

// FoldAccents replaces accented letters with their base letter (é -> e).
// A chain holds state, so each call builds its own.
func FoldAccents(s string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(stripAccents, s)
	if err != nil {
		return s
	}
	return result
}

func DigitsOnly(s string) string {
	return keep(s, unicode.IsDigit)
}

// Alphanumeric drops everything but letters and digits
func Alphanumeric(s string) string {
	return keep(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

// NormalizeName keeps letters and spaces, uppercases and trims.
// Punctuation inside a name is dropped, not replaced: O'Brien -> OBRIEN.
func NormalizeName(s string) string {
	s = keep(FoldAccents(s), func(r rune) bool {
		return unicode.IsLetter(r) || r == ' '
	})
	return strings.TrimSpace(strings.ToUpper(s))
}

// NormalizeEmail lowercases and trims an email address. No characters are removed.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PhoneDigits is the fixed suffix width kept from a phone number
const PhoneDigits = 10

// NormalizePhone keeps the rightmost PhoneDigits digits of a phone number.
// Shorter results are kept as they are.
func NormalizePhone(s string) string {
	return rightmost(DigitsOnly(s), PhoneDigits)
}

// NormalizeGovID keeps alphanumerics, uppercased
func NormalizeGovID(s string) string {
	return strings.TrimSpace(strings.ToUpper(Alphanumeric(s)))
}

// NormalizeAddress keeps letters, digits and spaces, uppercased and trimmed
func NormalizeAddress(s string) string {
	s = keep(FoldAccents(s), func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' '
	})
	return strings.TrimSpace(strings.ToUpper(s))
}

func keep(s string, fn func(rune) bool) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if fn(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// rightmost returns the last n runes of s
func rightmost(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[len(rs)-n:])
}

// Prefix returns the first n runes of s
func Prefix(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
