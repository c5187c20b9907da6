//
// locale aware parsing of the score text shown next
// to the grade input, e.g. "( 8,5 / 10 )" on a dutch page.
//
package locale

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Separators are the digit grouping and decimal marks of a locale.
type Separators struct {
	Group   string
	Decimal string
}

// a sample with both a group and a fraction in every locale
const sample = 1234567.1

//
// derives the separators for a locale by formatting
// a sample number and reading back the non-digit runs
//
func SeparatorsFor(tag language.Tag) Separators {

	formatted := message.NewPrinter(tag).Sprint(number.Decimal(sample))

	var marks []string
	var run []rune
	flush := func() {
		if len(run) > 0 {
			marks = append(marks, string(run))
			run = run[:0]
		}
	}
	for _, r := range formatted {
		if unicode.IsDigit(r) {
			flush()
			continue
		}
		run = append(run, r)
	}
	flush()

	switch len(marks) {
	case 0:
		return Separators{Decimal: "."}
	case 1:
		return Separators{Decimal: marks[0]}
	}
	return Separators{Group: marks[0], Decimal: marks[len(marks)-1]}
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

//
// parses a number written for the given locale.
// grouping marks are removed, the first decimal mark becomes
// a dot and the longest numeric prefix is parsed.
//
// returns: NaN when no number can be read
//
func ParseNumber(s string, tag language.Tag) float64 {

	seps := SeparatorsFor(tag)

	s = strings.TrimSpace(s)
	if seps.Group != "" {
		s = strings.ReplaceAll(s, seps.Group, "")
	}
	if seps.Decimal != "." {
		s = strings.Replace(s, seps.Decimal, ".", 1)
	}

	prefix := leadingFloat.FindString(s)
	if prefix == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return math.NaN()
	}

	return f
}

//
// resolves a BCP 47 language string, falling back
// to english when it cannot be read
//
func Tag(lang string) language.Tag {
	if lang == "" {
		return language.English
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	return tag
}
