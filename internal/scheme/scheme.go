//
// grading standards (letter-grade schemes) as served by canvas
// and the points-to-letter lookup used by the grade picker.
//
package scheme

import (
	"math"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

//
// one letter grade entry within a grading standard
//
type Tier struct {
	// display name of the grade, e.g. "A" or "A (90-100)"
	Name string `json:"name"`
	// minimum score as a fraction of points possible
	Threshold float64 `json:"value"`
}

//
// an ordered letter-grade scheme, tiers run
// from highest to lowest threshold
//
type Standard struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ContextType string `json:"contextType"`
	ContextID   string `json:"contextId"`
	Tiers       []Tier `json:"gradingScheme"`
}

//
// builds a standard from a canvas grading_standard payload
//
func FromJSON(body gjson.Result) (Standard, error) {

	std := Standard{
		ID:          body.Get("id").String(),
		Title:       body.Get("title").String(),
		ContextType: body.Get("context_type").String(),
		ContextID:   body.Get("context_id").String(),
	}

	entries := body.Get("grading_scheme")
	if !entries.IsArray() {
		return Standard{}, errors.New("grading standard has no grading_scheme")
	}
	for _, e := range entries.Array() {
		std.Tiers = append(std.Tiers, Tier{
			Name:      e.Get("name").String(),
			Threshold: e.Get("value").Float(),
		})
	}

	if err := std.Validate(); err != nil {
		return Standard{}, err
	}

	return std, nil
}

//
// checks the standard has at least one tier and that
// thresholds strictly decrease by position
//
func (s Standard) Validate() error {

	if len(s.Tiers) == 0 {
		return errors.New("grading standard has no tiers")
	}
	for i := 1; i < len(s.Tiers); i++ {
		if !(s.Tiers[i].Threshold < s.Tiers[i-1].Threshold) {
			return errors.Errorf("tier %q threshold %v is not below %q threshold %v",
				s.Tiers[i].Name, s.Tiers[i].Threshold, s.Tiers[i-1].Name, s.Tiers[i-1].Threshold)
		}
	}

	return nil
}

//
// finds the letter grade for a score.
//
// The scheme is scanned from the lowest tier upward; the lowest tier is the
// floor and a tier is chosen once the score falls below the threshold of the
// tier above it. A score exactly on a threshold belongs to that threshold's tier.
//
// points: the score awarded
// possible: the points possible for the assignment
//
// returns: the tier name, or false when either number is not finite
//
func (s Standard) LetterFor(points, possible float64) (string, bool) {

	if !finite(points) || !finite(possible) {
		return "", false
	}

	for i := len(s.Tiers) - 1; i >= 0; i-- {
		if i == 0 || points < s.Tiers[i-1].Threshold*possible {
			return s.Tiers[i].Name, true
		}
	}

	return "", false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
