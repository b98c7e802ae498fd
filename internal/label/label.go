// Package label canonicalizes free spreadsheet text into stable join keys.
package label

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum    = regexp.MustCompile(`[^A-Z0-9]+`)
	spaceRun    = regexp.MustCompile(`\s+`)
	namePunct   = regexp.MustCompile("[.,\\-/()'\"`]")
	legalTokens = regexp.MustCompile(`\b(S\s*A\s*S|S\s*A|C\s*I\s*A|L\s*T\s*D\s*A|L\s*T\s*D|C\s*A|SOCIEDAD|ANONIMA|COMPANIA|LIMITADA)\b`)
)

// StripAccents removes combining marks after NFD decomposition ("Ñ" -> "N").
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize uppercases, strips accents, collapses every non-alphanumeric run
// into one underscore and trims underscores at both ends.
//
//	"  Razón  Social " -> "RAZON_SOCIAL"
//	"TAMAÑO"           -> "TAMANO"
func Normalize(text string) string {
	s := strings.ToUpper(strings.TrimSpace(text))
	if s == "" {
		return ""
	}
	// broken encodings of Ñ show up as the replacement rune
	s = strings.ReplaceAll(s, "�", "N")
	s = StripAccents(s)
	s = nonAlnum.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Name trims, uppercases and collapses inner whitespace. Accents are kept.
func Name(text string) string {
	s := strings.ToUpper(strings.TrimSpace(text))
	return spaceRun.ReplaceAllString(s, " ")
}

// LegalName is the identity form of a company name: accents, punctuation and
// legal-form tokens (S.A., CIA, LTDA, C.A., S.A.S., SOCIEDAD ...) removed.
//
//	"Tonisa S.A."  -> "TONISA"
//	"Mundocare SA" -> "MUNDOCARE"
func LegalName(text string) string {
	s := StripAccents(strings.ToUpper(strings.TrimSpace(text)))
	s = namePunct.ReplaceAllString(s, " ")
	s = legalTokens.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Key is used for categorical dedup keys: uppercased, whitespace runs become "_".
func Key(text string) string {
	s := strings.ToUpper(strings.TrimSpace(text))
	return spaceRun.ReplaceAllString(s, "_")
}
