package gradesync

import (
	"regexp"

	"github.com/pkg/errors"
)

// DefaultLetterPattern captures the text before a trailing
// parenthesised qualifier: "A (90-100)" gives "A".
const DefaultLetterPattern = `^\s*(.+) \(.+\)\s*$`

type Config struct {
	// keep the option list open whenever the input has focus
	AlwaysOpenOnFocus bool
	// size the list to show every option
	FitOptions bool
	// match typed letters against the captures of LetterPattern
	LetterShortcut bool
	// letter extraction pattern, DefaultLetterPattern when nil
	LetterPattern *regexp.Regexp
}

//
// compiles a letter extraction pattern, the default
// pattern when expr is empty
//
func CompileLetterPattern(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		expr = DefaultLetterPattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid letter pattern")
	}
	if re.NumSubexp() == 0 {
		return nil, errors.Errorf("letter pattern %q has no capture group", expr)
	}
	return re, nil
}
