package fsa

import (
	"strings"

	"github.com/knsh14/toc/stateset"
)

// FSTTransition is the codomain of an FST's transition function: the
// next state and the output symbol emitted on this move.
type FSTTransition struct {
	Next   State
	Output Symbol
}

// FST is a finite-state transducer: (Q, Σᵢₙ, Σₒᵤₜ, δ, q0) where
// δ: Q×Σᵢₙ → Q×Σₒᵤₜ is total on Q×Σᵢₙ. Unlike DFA/NFA there is no accept
// set — every run of Process over a string in Σᵢₙ* succeeds and
// produces an output string.
type FST struct {
	states      *stateset.Set[State]
	alphabetIn  *stateset.Set[Symbol]
	alphabetOut *stateset.Set[Symbol]
	transitions map[StateSymbolPair]FSTTransition
	start       State
	alphaBits   *alphabetBits
}

// NewFST builds an FST from transitions and start. transitions is keyed
// by (state, input symbol) and valued by (next state, output symbol).
//
// NewFST rejects the input (returning a *fsaerr.ValidationError) if:
//  1. start is not among the inferred states;
//  2. any inferred input symbol is not a one-character string;
//  3. any next state is not among the inferred states;
//  4. any (state, input symbol) pair is missing an entry.
func NewFST(transitions map[StateSymbolPair]FSTTransition, start State) (*FST, error) {
	keys := make([]StateSymbolPair, 0, len(transitions))
	for k := range transitions {
		keys = append(keys, k)
	}
	states, alphabetIn := extractStatesAndAlphabet(keys)

	if err := checkStart(states, start); err != nil {
		return nil, err
	}
	if err := checkSymbolArity(alphabetIn); err != nil {
		return nil, err
	}

	targets := make([]State, 0, len(transitions))
	alphabetOut := stateset.New[Symbol]()
	for _, t := range transitions {
		targets = append(targets, t.Next)
		alphabetOut.Add(t.Output)
	}
	if err := checkRangeSubset(states, targets); err != nil {
		return nil, err
	}

	present := stateset.New[StateSymbolPair]()
	for k := range transitions {
		present.Add(k)
	}
	if err := checkTotalDomain(states, alphabetIn, present); err != nil {
		return nil, err
	}

	tf := make(map[StateSymbolPair]FSTTransition, len(transitions))
	for k, v := range transitions {
		tf[k] = v
	}

	return &FST{
		states:      states,
		alphabetIn:  alphabetIn,
		alphabetOut: alphabetOut,
		transitions: tf,
		start:       start,
		alphaBits:   newAlphabetBits(alphabetIn.Values()),
	}, nil
}

// States returns a defensive copy of Q.
func (f *FST) States() []State { return f.states.Copy().Values() }

// AlphabetIn returns a defensive copy of Σᵢₙ.
func (f *FST) AlphabetIn() []Symbol { return f.alphabetIn.Copy().Values() }

// AlphabetOut returns a defensive copy of Σₒᵤₜ.
func (f *FST) AlphabetOut() []Symbol { return f.alphabetOut.Copy().Values() }

// Start returns q0.
func (f *FST) Start() State { return f.start }

// Process simulates f deterministically over w: for each input symbol a,
// emits the output symbol from δ(current, a) and transitions to its
// state. Returns the concatenation of every emitted symbol. Returns an
// Alphabet-input error if w contains a symbol outside Σᵢₙ.
func (f *FST) Process(w string) (string, error) {
	if err := checkInput(f.alphaBits, w); err != nil {
		return "", err
	}
	var out strings.Builder
	current := f.start
	for _, r := range w {
		t := f.transitions[StateSymbolPair{State: current, Symbol: string(r)}]
		out.WriteString(t.Output)
		current = t.Next
	}
	return out.String(), nil
}
