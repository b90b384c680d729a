package fsa

import (
	"github.com/knsh14/toc/stateset"
)

// NFA is a nondeterministic finite automaton: (Q, Σ, δ, q0, F) where
// δ: Q×(Σ∪{ε}) → 𝒫(Q). Immutable after construction; every accessor
// returns a defensive copy.
type NFA struct {
	states      *stateset.Set[State]
	alphabet    *stateset.Set[Symbol]
	transitions map[StateSymbolPair]*stateset.Set[State]
	start       State
	accept      *stateset.Set[State]
	alphaBits   *alphabetBits
}

// NewNFA builds an NFA from transitions, start, and accept. transitions
// is keyed by (state, symbol); an epsilon-move uses the empty string as
// Symbol. The transition function need not be total over Σ∪{ε}: a
// missing (state, symbol) pair means the successor set is empty, but
// every (state, symbol) pair with a non-epsilon symbol in the inferred
// alphabet must have an explicit entry (possibly to an empty slice).
//
// NewNFA rejects the input (returning a *fsaerr.ValidationError) if:
//  1. start is not among the inferred states;
//  2. any accept state is not among the inferred states;
//  3. any inferred symbol is not a one-character string;
//  4. any successor state is not among the inferred states;
//  5. a (state, symbol) pair with symbol in Σ has no entry at all.
func NewNFA(transitions map[StateSymbolPair][]State, start State, accept []State) (*NFA, error) {
	keys := make([]StateSymbolPair, 0, len(transitions))
	for k := range transitions {
		keys = append(keys, k)
	}
	states, alphabet := extractStatesAndAlphabet(keys)

	if err := checkStart(states, start); err != nil {
		return nil, err
	}
	if err := checkAcceptSubset(states, accept); err != nil {
		return nil, err
	}
	if err := checkSymbolArity(alphabet); err != nil {
		return nil, err
	}

	var allTargets []State
	tf := make(map[StateSymbolPair]*stateset.Set[State], len(transitions))
	for k, vs := range transitions {
		tf[k] = stateset.New(vs...)
		allTargets = append(allTargets, vs...)
	}
	if err := checkRangeSubset(states, allTargets); err != nil {
		return nil, err
	}

	present := stateset.New[StateSymbolPair]()
	for k := range transitions {
		present.Add(StateSymbolPair{State: k.State, Symbol: k.Symbol})
	}
	if err := checkTotalDomain(states, alphabet, present); err != nil {
		return nil, err
	}

	return &NFA{
		states:      states,
		alphabet:    alphabet,
		transitions: tf,
		start:       start,
		accept:      stateset.New(accept...),
		alphaBits:   newAlphabetBits(alphabet.Values()),
	}, nil
}

// States returns a defensive copy of Q.
func (n *NFA) States() []State { return n.states.Copy().Values() }

// Alphabet returns a defensive copy of Σ.
func (n *NFA) Alphabet() []Symbol { return n.alphabet.Copy().Values() }

// Start returns q0.
func (n *NFA) Start() State { return n.start }

// Accept returns a defensive copy of F.
func (n *NFA) Accept() []State { return n.accept.Copy().Values() }

func (n *NFA) successors(states *stateset.Set[State], symbol Symbol) *stateset.Set[State] {
	out := stateset.New[State]()
	for _, q := range states.Values() {
		if next, ok := n.transitions[StateSymbolPair{State: q, Symbol: symbol}]; ok {
			out = out.Union(next)
		}
	}
	return out
}

// epsilonClosure returns the least set containing states and closed
// under ε-moves, expanded breadth-first as specified.
func (n *NFA) epsilonClosure(states *stateset.Set[State]) *stateset.Set[State] {
	closure := states.Copy()
	frontier := n.successors(closure, epsilon)
	for {
		newStates := frontier.Diff(closure)
		if newStates.Empty() {
			return closure
		}
		closure = closure.Union(newStates)
		frontier = n.successors(newStates, epsilon)
	}
}

func (n *NFA) move(current *stateset.Set[State], symbol Symbol) *stateset.Set[State] {
	return n.epsilonClosure(n.successors(current, symbol))
}

// Accepts reports whether n accepts w, per ε-closure simulation. Returns
// an Alphabet-input error if w contains a symbol outside Σ.
func (n *NFA) Accepts(w string) (bool, error) {
	if err := checkInput(n.alphaBits, w); err != nil {
		return false, err
	}
	current := n.epsilonClosure(stateset.New(n.start))
	for _, r := range w {
		current = n.move(current, string(r))
	}
	return !current.Intersect(n.accept).Empty(), nil
}

// disjointCopy renames every state of n by tagging it with side (0 or
// 1), guaranteeing the copy's states are disjoint from the other
// operand's original states. Grounded on the Design Notes' portable
// disjoint-renaming scheme and on the original's own `prime()` renaming
// helper used for the same purpose.
func (n *NFA) disjointCopy(side int) *NFA {
	tf := make(map[StateSymbolPair][]State, len(n.transitions))
	for k, vs := range n.transitions {
		tagged := make([]State, 0, vs.Len())
		for _, v := range vs.Values() {
			tagged = append(tagged, tagState(side, v))
		}
		tf[StateSymbolPair{State: tagState(side, k.State), Symbol: k.Symbol}] = tagged
	}
	var accept []State
	for _, a := range n.accept.Values() {
		accept = append(accept, tagState(side, a))
	}
	// Re-validated states/alphabet/accept are already well-formed by
	// construction, so NewNFA cannot fail here; panics only on a bug.
	renamed, err := NewNFA(tf, tagState(side, n.start), accept)
	if err != nil {
		panic("fsa: disjointCopy produced an invalid NFA: " + err.Error())
	}
	return renamed
}

func mergeTransitions(dst map[StateSymbolPair][]State, src *NFA) {
	for k, vs := range src.transitions {
		dst[k] = vs.Values()
	}
}

// Union returns an NFA recognizing the union of the languages recognized
// by n and other. A fresh start state has ε-edges to both (renamed)
// operand start states, per §4.3.
func (n *NFA) Union(other *NFA) (*NFA, error) {
	left := n.disjointCopy(0)
	right := other.disjointCopy(1)

	tf := make(map[StateSymbolPair][]State)
	mergeTransitions(tf, left)
	mergeTransitions(tf, right)
	addEmptyTransitionsForExtraSymbols(tf, left.states, right.alphabet.Diff(left.alphabet))
	addEmptyTransitionsForExtraSymbols(tf, right.states, left.alphabet.Diff(right.alphabet))

	merged := left.states.Union(right.states)
	newStart := freshState(merged, 2, "union-start")
	tf[StateSymbolPair{State: newStart, Symbol: epsilon}] = []State{left.start, right.start}
	for _, sym := range left.alphabet.Union(right.alphabet).Values() {
		tf[StateSymbolPair{State: newStart, Symbol: sym}] = nil
	}

	accept := append(left.accept.Values(), right.accept.Values()...)
	return NewNFA(tf, newStart, accept)
}

// Concat returns an NFA recognizing the concatenation of the languages
// recognized by n and other: the set of strings uv where n accepts u and
// other accepts v. Not commutative.
func (n *NFA) Concat(other *NFA) (*NFA, error) {
	left := n.disjointCopy(0)
	right := other.disjointCopy(1)

	tf := make(map[StateSymbolPair][]State)
	mergeTransitions(tf, left)
	mergeTransitions(tf, right)
	addEmptyTransitionsForExtraSymbols(tf, left.states, right.alphabet.Diff(left.alphabet))
	addEmptyTransitionsForExtraSymbols(tf, right.states, left.alphabet.Diff(right.alphabet))

	for _, q := range left.accept.Values() {
		key := StateSymbolPair{State: q, Symbol: epsilon}
		tf[key] = append(tf[key], right.start)
	}

	return NewNFA(tf, left.start, right.accept.Values())
}

// addEmptyTransitionsForExtraSymbols ensures every state of states has an
// explicit (state, symbol) entry for every symbol of extra, defaulting
// to the empty successor set. Needed whenever two NFAs with different
// alphabets are combined: each operand's original states must gain a
// total (but empty) transition for the symbols only the other operand
// knows about, or the combined NFA would fail the Missing-case check.
// Grounded on the original's own `add_empty_transitions`/`add_one_way`
// helpers (toc/fsa/fsa.py NFA._combine).
func addEmptyTransitionsForExtraSymbols(tf map[StateSymbolPair][]State, states *stateset.Set[State], extra *stateset.Set[Symbol]) {
	if extra.Empty() {
		return
	}
	for _, q := range states.Values() {
		for _, sym := range extra.Values() {
			key := StateSymbolPair{State: q, Symbol: sym}
			if _, ok := tf[key]; !ok {
				tf[key] = nil
			}
		}
	}
}

// Star returns an NFA recognizing the Kleene star of the language
// recognized by n: ε plus every finite concatenation of strings n
// accepts.
func (n *NFA) Star() (*NFA, error) {
	tf := make(map[StateSymbolPair][]State, len(n.transitions)+1)
	mergeTransitions(tf, n)

	newStart := freshState(n.states, 2, "star-start")
	tf[StateSymbolPair{State: newStart, Symbol: epsilon}] = []State{n.start}
	for _, sym := range n.alphabet.Values() {
		tf[StateSymbolPair{State: newStart, Symbol: sym}] = nil
	}
	for _, q := range n.accept.Values() {
		key := StateSymbolPair{State: q, Symbol: epsilon}
		tf[key] = append(tf[key], n.start)
	}

	accept := append(n.accept.Values(), newStart)
	return NewNFA(tf, newStart, accept)
}

// Determinize returns a DFA recognizing the same language as n, built by
// subset construction. Only subsets reachable from ε-closure({q0}) are
// materialized — the full power set is never built — but reachable
// subset construction is still permitted to be exponential in |Q|, per
// the Non-goals.
func (n *NFA) Determinize() (*DFA, error) {
	startClosure := n.epsilonClosure(stateset.New(n.start))
	startKey, startLabel := canonicalizeStateSet(startClosure)

	labels := map[stateset.Key]string{startKey: startLabel}
	sets := map[stateset.Key]*stateset.Set[State]{startKey: startClosure}

	tf := make(map[StateSymbolPair]State)
	var accept []State
	worklist := []stateset.Key{startKey}
	visited := stateset.New(startKey)

	for len(worklist) > 0 {
		key := worklist[0]
		worklist = worklist[1:]
		subset := sets[key]
		label := labels[key]

		if !subset.Intersect(n.accept).Empty() {
			accept = append(accept, label)
		}

		for _, sym := range n.alphabet.Values() {
			next := n.move(subset, sym)
			nextKey, nextLabel := canonicalizeStateSet(next)
			tf[StateSymbolPair{State: label, Symbol: sym}] = nextLabel

			if !visited.Contains(nextKey) {
				visited.Add(nextKey)
				labels[nextKey] = nextLabel
				sets[nextKey] = next
				worklist = append(worklist, nextKey)
			}
		}
	}

	return NewDFA(tf, startLabel, accept)
}

// canonicalizeStateSet computes the canonical key and label for a subset
// of NFA states, as subset construction needs. An empty subset is a
// legitimate DFA state (the usual "dead" state any automaton without a
// universal alphabet eventually needs); it canonicalizes to the label
// "{}" rather than the empty string, so it can't collide with a
// single-state label of the empty string (which never occurs, since
// State values here are always non-empty tagged/synthesized names).
func canonicalizeStateSet(s *stateset.Set[State]) (stateset.Key, string) {
	vs := s.Values()
	if len(vs) == 0 {
		return stateset.Key(0), "{}"
	}
	key, label := stateset.CanonicalizeSet(vs)
	return key, "{" + label + "}"
}
