package moderation

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tashkeel marks plus tatweel
var arabicDiacritics = runes.In(&unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0640, Hi: 0x0640, Stride: 1},
		{Lo: 0x064B, Hi: 0x0652, Stride: 1},
	},
})

func unifyLetter(r rune) rune {
	switch r {
	case 'إ', 'أ', 'آ':
		return 'ا'
	case 'ة':
		return 'ه'
	case 'ى':
		return 'ي'
	}
	return r
}

// Normalize folds text so that banned terms match regardless of case,
// compatibility forms, Arabic diacritics or letter variants.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	t := transform.Chain(
		norm.NFKC,
		runes.Remove(arabicDiacritics),
		runes.Map(unifyLetter),
	)
	out, _, err := transform.String(t, cases.Lower(language.Und).String(text))
	if err != nil {
		out = strings.ToLower(text)
	}
	return strings.TrimSpace(out)
}
