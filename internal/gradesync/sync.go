//
// keeps a grade input and a letter-grade option list in step.
//
// The option list is built once from a grading standard. Every change to the
// input re-scans the list for the entry whose name equals the input's value,
// so the selection is always derived from the value and never drifts from it.
// A Synchronizer is not safe for concurrent use.
//
package gradesync

import (
	"github.com/nsip/otf-gradesync/internal/scheme"
	"github.com/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Entry is one option in the letter list.
type Entry struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// State is the value/selection pair the picker shows.
type State struct {
	Value    string  `json:"value"`
	Selected *string `json:"selected"`
}

// Scores supplies the numbers shown next to the input.
type Scores interface {
	CurrentScore() float64
	PointsPossible() float64
}

type Synchronizer struct {
	standard scheme.Standard
	entries  []Entry
	input    Input
	scores   Scores
	cfg      Config
	collator *collate.Collator

	// index into entries, -1 when nothing is selected
	selected int
	open     bool
	focused  bool
}

func New(std scheme.Standard, input Input, cfg Config, scores Scores) (*Synchronizer, error) {

	if err := std.Validate(); err != nil {
		return nil, errors.Wrap(err, "cannot build grade picker")
	}
	if input == nil {
		return nil, errors.New("grade input is required")
	}
	if cfg.LetterPattern == nil {
		re, err := CompileLetterPattern("")
		if err != nil {
			return nil, err
		}
		cfg.LetterPattern = re
	}

	s := &Synchronizer{
		standard: std,
		input:    input,
		scores:   scores,
		cfg:      cfg,
		collator: collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics, collate.IgnoreWidth),
		selected: -1,
	}
	for _, t := range std.Tiers {
		s.entries = append(s.entries, Entry{Name: t.Name, Label: t.Name})
	}

	s.reconcile()
	input.OnChange(func(string) { s.reconcile() })

	return s, nil
}

func (s *Synchronizer) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Synchronizer) State() State {
	st := State{Value: s.input.Value()}
	if s.selected >= 0 {
		name := s.entries[s.selected].Name
		st.Selected = &name
	}
	return st
}

//
// the entry whose name exactly equals the input value
//
func (s *Synchronizer) Match() (Entry, bool) {
	i := s.match()
	if i < 0 {
		return Entry{}, false
	}
	return s.entries[i], true
}

func (s *Synchronizer) match() int {
	v := s.input.Value()
	for i, e := range s.entries {
		if e.Name == v {
			return i
		}
	}
	return -1
}

// marks the matching entry, or none, after any value change
func (s *Synchronizer) reconcile() {
	s.selected = s.match()
}

//
// selects the named entry and writes it into the input.
// returns false if no entry has that name.
//
func (s *Synchronizer) Apply(name string) bool {
	for i, e := range s.entries {
		if e.Name == name {
			s.apply(i)
			return true
		}
	}
	return false
}

func (s *Synchronizer) apply(i int) {
	s.selected = i
	s.input.Set(s.entries[i].Name)
}

// StepUp moves to the previous entry. No-op on the first entry or without a match.
func (s *Synchronizer) StepUp() {
	i := s.match()
	if i <= 0 {
		return
	}
	s.apply(i - 1)
}

// StepDown moves to the next entry, or to the first entry when nothing matches.
func (s *Synchronizer) StepDown() {
	i := s.match()
	switch {
	case i < 0:
		s.apply(0)
	case i == len(s.entries)-1:
		return
	default:
		s.apply(i + 1)
	}
}

func (s *Synchronizer) Clear() {
	s.input.Set("")
	s.selected = -1
}

//
// finds the entry matching raw, ignoring case and accents.
// With fuzzy set, raw is compared against each capture of the
// letter pattern applied to the entry name instead.
//
func (s *Synchronizer) MatchLetter(raw string, fuzzy bool) (Entry, bool) {
	i := s.matchLetter(raw, fuzzy)
	if i < 0 {
		return Entry{}, false
	}
	return s.entries[i], true
}

func (s *Synchronizer) matchLetter(raw string, fuzzy bool) int {
	for i, e := range s.entries {
		if !fuzzy {
			if s.equal(e.Name, raw) {
				return i
			}
			continue
		}
		idx := s.cfg.LetterPattern.FindStringSubmatchIndex(e.Name)
		if idx == nil {
			continue
		}
		for g := 1; g*2+1 < len(idx); g++ {
			start, end := idx[g*2], idx[g*2+1]
			if start < 0 {
				continue
			}
			if s.equal(e.Name[start:end], raw) {
				return i
			}
		}
	}
	return -1
}

func (s *Synchronizer) equal(a, b string) bool {
	return s.collator.CompareString(a, b) == 0
}

//
// the letter grade a score earns under the standard
//
func (s *Synchronizer) LetterFor(points float64) (string, bool) {
	possible := 0.0
	if s.scores != nil {
		possible = s.scores.PointsPossible()
	}
	return s.standard.LetterFor(points, possible)
}

//
// settles the typed value on an entry. When letter shortcuts are on and
// the value already is the letter the current score earns, the value is
// left alone; otherwise a letter match is written back into the input.
//
func (s *Synchronizer) Commit() {

	value := s.input.Value()

	if s.cfg.LetterShortcut && s.scores != nil {
		if letter, ok := s.LetterFor(s.scores.CurrentScore()); ok && letter == value {
			return
		}
	}

	i := s.matchLetter(value, s.cfg.LetterShortcut)
	if i < 0 {
		return
	}
	s.apply(i)
}

// Open reports whether the option list is shown.
func (s *Synchronizer) Open() bool {
	if s.cfg.AlwaysOpenOnFocus {
		return s.focused
	}
	return s.open
}

func (s *Synchronizer) setOpen(open bool) {
	if s.cfg.AlwaysOpenOnFocus {
		return
	}
	s.open = open
}

// View is a snapshot of everything the host renders.
type View struct {
	Entries []Entry `json:"entries"`
	State   State   `json:"state"`
	Open    bool    `json:"open"`
	// visible rows, 0 leaves the size to the host
	Rows int `json:"rows"`
}

func (s *Synchronizer) View() View {
	v := View{Entries: s.Entries(), State: s.State(), Open: s.Open()}
	if s.cfg.FitOptions {
		v.Rows = len(s.entries)
	}
	return v
}
