// Package fsa implements deterministic and nondeterministic finite
// automata, finite-state transducers, and a small regex surface language
// that compiles into an NFA.
//
// DFA and NFA share this package (rather than living in dfa/ and nfa/
// packages) because DFA.NonDeterminize returns an NFA and NFA.Determinize
// returns a DFA; splitting them would create an import cycle. The
// original Python implementation this module is grounded on makes the
// same choice, keeping both classes in one fsa module alongside a shared
// _Base validation mixin.
package fsa

import (
	"sort"
	"unicode/utf8"

	"github.com/bits-and-blooms/bitset"
	"github.com/google/uuid"

	"github.com/knsh14/toc/fsaerr"
	"github.com/knsh14/toc/stateset"
)

// State identifies a state of an automaton. Per the data model, a state
// is "any value usable as a map key"; this binding realizes that as a
// string, following the original implementation's own practice of
// stringifying composite states (e.g. `str(frozenset(...))`) whenever a
// combinator needs to synthesize a new state identity. Callers whose
// natural state identifiers are not strings should render them to a
// stable string form before building a transition table.
type State = string

// Symbol is a single-character string. The empty string denotes an
// epsilon-move in NFA transition tables and is never itself a member of
// an alphabet.
type Symbol = string

const epsilon = Symbol("")

// These constants name the regex surface's seven reserved characters,
// collected in reservedChars below. Declared
// here, not in regex.go, because DFA.Encode's GNFA reduction (gnfa.go)
// emits strings using the same operator characters and needs to agree on
// what they are.
const (
	opUnion    = '|'
	opConcat   = '•'
	opStar     = '*'
	opLParen   = '('
	opRParen   = ')'
	opEmpty    = '€'
	opNone     = 'Ø'
)

var reservedChars = []rune{opLParen, opRParen, opUnion, opStar, opConcat, opEmpty, opNone}

// StateSymbolPair is the key of every transition-function map this
// package accepts: a (state, symbol) pair, as specified for DFA/NFA/FST
// alike. For an NFA epsilon-move, Symbol is the empty string.
type StateSymbolPair struct {
	State  State
	Symbol Symbol
}

// alphabetBits is a per-instance membership test for an alphabet,
// grounded on the pack's github.com/bits-and-blooms/bitset dependency:
// accepts()/process() run this once per input symbol, so a bitset test
// is preferred over a map lookup or linear scan.
type alphabetBits struct {
	bits *bitset.BitSet
}

func newAlphabetBits(symbols []Symbol) *alphabetBits {
	ab := &alphabetBits{bits: bitset.New(0)}
	for _, s := range symbols {
		r, _ := utf8.DecodeRuneInString(s)
		ab.bits.Set(uint(r))
	}
	return ab
}

func (ab *alphabetBits) contains(r rune) bool {
	return ab.bits.Test(uint(r))
}

// extractStatesAndAlphabet infers the state set and alphabet from a
// transition function's keys, per the data model: Q is every state
// appearing in a key, and Σ is every symbol appearing in a key except
// epsilon.
func extractStatesAndAlphabet(keys []StateSymbolPair) (*stateset.Set[State], *stateset.Set[Symbol]) {
	states := stateset.New[State]()
	alphabet := stateset.New[Symbol]()
	for _, k := range keys {
		states.Add(k.State)
		if k.Symbol != epsilon {
			alphabet.Add(k.Symbol)
		}
	}
	return states, alphabet
}

// checkStart reports a Start-not-in-states error if start is not a
// member of states.
func checkStart(states *stateset.Set[State], start State) error {
	if states.Contains(start) {
		return nil
	}
	return fsaerr.New(fsaerr.ErrStartNotInStates,
		"start state %s is not a member of the state set",
		"start state %s is not a member of the state set",
		[]string{start})
}

// checkAcceptSubset reports an Accept-not-subset error naming any accept
// state missing from states.
func checkAcceptSubset(states *stateset.Set[State], accept []State) error {
	var bad []string
	for _, a := range accept {
		if !states.Contains(a) {
			bad = append(bad, a)
		}
	}
	return fsaerr.IfAny(fsaerr.ErrAcceptNotSubset,
		"accept state %s is not a member of the state set",
		"accept states %s are not members of the state set",
		bad)
}

// checkSymbolArity reports a Symbol-arity error naming any symbol in
// symbols that is not exactly one rune long.
func checkSymbolArity(symbols *stateset.Set[Symbol]) error {
	var bad []string
	for _, s := range symbols.Values() {
		if utf8.RuneCountInString(s) != 1 {
			bad = append(bad, s)
		}
	}
	return fsaerr.IfAny(fsaerr.ErrSymbolArity,
		"symbol %s is not a one-character string",
		"symbols %s are not one-character strings",
		bad)
}

// checkRangeSubset reports a Range-violation error naming any state in
// targets not present in states. Used by DFA and FST, whose transition
// range is a single state per pair.
func checkRangeSubset(states *stateset.Set[State], targets []State) error {
	seen := stateset.New[State]()
	var bad []string
	for _, t := range targets {
		if seen.Contains(t) {
			continue
		}
		seen.Add(t)
		if !states.Contains(t) {
			bad = append(bad, t)
		}
	}
	return fsaerr.IfAny(fsaerr.ErrRangeViolation,
		"state %s in the range of the transition function is not in the state set",
		"states %s in the range of the transition function are not in the state set",
		bad)
}

// checkTotalDomain reports a Missing-case error naming any (state,
// symbol) pair in Q×symbols absent from present.
func checkTotalDomain(states *stateset.Set[State], symbols *stateset.Set[Symbol], present *stateset.Set[StateSymbolPair]) error {
	var bad []string
	for _, q := range states.Values() {
		for _, a := range symbols.Values() {
			pair := StateSymbolPair{State: q, Symbol: a}
			if !present.Contains(pair) {
				bad = append(bad, q+","+a)
			}
		}
	}
	sort.Strings(bad)
	return fsaerr.IfAny(fsaerr.ErrMissingCase,
		"pair (%s) is missing from the transition function domain",
		"pairs (%s) are missing from the transition function domain",
		bad)
}

// checkInput reports an Alphabet-input error naming any symbol of w not
// in ab.
func checkInput(ab *alphabetBits, w string) error {
	var bad []string
	seen := stateset.New[string]()
	for _, r := range w {
		if !ab.contains(r) {
			s := string(r)
			if !seen.Contains(s) {
				seen.Add(s)
				bad = append(bad, s)
			}
		}
	}
	return fsaerr.IfAny(fsaerr.ErrAlphabetInput,
		"symbol %s is not in the alphabet",
		"symbols %s are not in the alphabet",
		bad)
}

// freshState returns a state identifier guaranteed not to be a member of
// existing, by tagging side (0 for left-hand operand, 1 for right-hand,
// 2 for a combinator's own fresh state) onto name and, if that still
// collides (only possible for the tag-2 "fresh state of my own" case,
// since operand states are never retagged), falling back to a random
// UUID. Grounded on the Design Notes' disjoint-renaming scheme.
func freshState(existing *stateset.Set[State], side int, name string) State {
	tagged := tagState(side, name)
	if !existing.Contains(tagged) {
		return tagged
	}
	return tagState(side, uuid.New().String())
}

func tagState(side int, name string) State {
	switch side {
	case 0:
		return "0:" + name
	case 1:
		return "1:" + name
	default:
		return "2:" + name
	}
}
