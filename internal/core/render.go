package core

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// Language selects the phrasing of rendered reports. Numbers are computed
// once and can be rendered in either language.
type Language string

const (
	LangRU Language = "ru"
	LangUZ Language = "uz"
)

// DefaultLanguage is used when a request names no language.
const DefaultLanguage = LangRU

// ParseLanguage maps a request parameter to a Language, falling back to
// DefaultLanguage for anything unrecognized.
func ParseLanguage(s string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LangUZ:
		return LangUZ
	case LangRU:
		return LangRU
	default:
		return DefaultLanguage
	}
}

// pick returns ru or uz depending on lang.
func (l Language) pick(ru, uz string) string {
	if l == LangUZ {
		return uz
	}
	return ru
}

const (
	rulerWidth  = 44
	bannerRule  = "================================================="
	sectionRule = "-------------------------------------------------"
)

// FormatNumber groups digits in threes separated by a single space:
// 12345 renders as "12 345".
func FormatNumber(n int) string {
	return strings.ReplaceAll(humanize.Comma(int64(n)), ",", " ")
}

// joinLines terminates every line with "\n".
func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
