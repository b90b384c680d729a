// Package fsaerr defines the categorized validation errors shared by the
// fsa and cfg packages. Every rejection raised during construction or at
// call time is a *ValidationError wrapping one of the sentinel categories
// below, so callers can both errors.Is against a category and read a
// message naming the specific offending state or symbol.
package fsaerr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Category names one of the rejection reasons enumerated in the
// validation design. Category values are sentinel errors: compare with
// errors.Is, never with ==, since a ValidationError wraps the category
// rather than being one.
type Category error

var (
	ErrStartNotInStates  Category = errors.New("start state is not a member of the state set")
	ErrAcceptNotSubset   Category = errors.New("accept states are not a subset of the state set")
	ErrRangeViolation    Category = errors.New("transition function range is not a subset of the state set")
	ErrSymbolArity       Category = errors.New("symbol is not a one-character string")
	ErrMissingCase       Category = errors.New("transition function is missing a case")
	ErrRangeShape        Category = errors.New("transition function value is not a set")
	ErrAlphabetInput     Category = errors.New("input contains a symbol outside the alphabet")
	ErrCFGShape          Category = errors.New("grammar rules are malformed")
	ErrRegexSurface      Category = errors.New("regex surface syntax error")
)

// ValidationError names the rule that was violated and the offending
// states or symbols, in the style of the teacher's SemanticError table:
// a small fixed set of categories, each carrying caller-supplied detail
// rather than a fresh ad-hoc string per call site.
type ValidationError struct {
	category  Category
	offenders []string
	cause     error
}

func (e *ValidationError) Error() string {
	return e.cause.Error()
}

// Unwrap lets errors.Is/errors.As see through to the category sentinel.
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// Category returns the rejection reason this error was raised for.
func (e *ValidationError) Category() Category {
	return e.category
}

// Offenders returns the specific states/symbols/pairs that triggered the
// rejection, sorted lexicographically.
func (e *ValidationError) Offenders() []string {
	out := make([]string, len(e.offenders))
	copy(out, e.offenders)
	return out
}

// New builds a ValidationError for category, naming offenders. singular
// and plural are fmt verbs applied to a single quoted offender or to a
// comma-joined quoted list, mirroring the source library's "Pair {} is
// missing..." / "Pairs {} are missing..." message pairing.
func New(category Category, singular, plural string, offenders []string) *ValidationError {
	sorted := make([]string, len(offenders))
	copy(sorted, offenders)
	sort.Strings(sorted)

	quoted := make([]string, len(sorted))
	for i, o := range sorted {
		quoted[i] = "'" + o + "'"
	}

	var msg string
	switch len(quoted) {
	case 0:
		msg = fmt.Sprintf(singular, "<none>")
	case 1:
		msg = fmt.Sprintf(singular, quoted[0])
	default:
		msg = fmt.Sprintf(plural, strings.Join(quoted, ", "))
	}

	return &ValidationError{
		category:  category,
		offenders: sorted,
		cause:     errors.Wrap(category, msg),
	}
}

// IfAny returns a *ValidationError built from New iff offenders is
// non-empty, and nil otherwise. Validators call this so every check is a
// single expression: "return fsaerr.IfAny(...)".
func IfAny(category Category, singular, plural string, offenders []string) error {
	if len(offenders) == 0 {
		return nil
	}
	return New(category, singular, plural, offenders)
}
