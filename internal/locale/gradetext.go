package locale

import (
	"math"
	"regexp"

	"golang.org/x/text/language"
)

var gradeText = regexp.MustCompile(`\(\s*(?P<current>\S+)?\s*/\s*(?P<possible>\S+)\s*\)`)

// GradeText reads the current score and points possible from the
// host's "( current / possible )" text.
type GradeText struct {
	Text string
	Tag  language.Tag
}

func (g GradeText) part(name string) float64 {
	m := gradeText.FindStringSubmatch(g.Text)
	if m == nil {
		return math.NaN()
	}
	v := m[gradeText.SubexpIndex(name)]
	if v == "" {
		return math.NaN()
	}
	return ParseNumber(v, g.Tag)
}

func (g GradeText) CurrentScore() float64 {
	return g.part("current")
}

func (g GradeText) PointsPossible() float64 {
	return g.part("possible")
}
