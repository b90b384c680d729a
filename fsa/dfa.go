package fsa

import (
	"github.com/knsh14/toc/cfg"
	"github.com/knsh14/toc/stateset"
)

// DFA is a deterministic finite automaton: (Q, Σ, δ, q0, F) where
// δ: Q×Σ → Q is total. Immutable after construction; every accessor
// returns a defensive copy.
type DFA struct {
	states      *stateset.Set[State]
	alphabet    *stateset.Set[Symbol]
	transitions map[StateSymbolPair]State
	start       State
	accept      *stateset.Set[State]
	alphaBits   *alphabetBits
}

// NewDFA builds a DFA from transitions, start, and accept. Unlike an
// NFA's transition function, a DFA's is single-valued and must be total:
// every (state, symbol) pair for state in the inferred Q and symbol in
// the inferred Σ must have an entry.
//
// NewDFA rejects the input (returning a *fsaerr.ValidationError) if:
//  1. start is not among the inferred states;
//  2. any accept state is not among the inferred states;
//  3. any inferred symbol is not a one-character string;
//  4. any target state is not among the inferred states;
//  5. any (state, symbol) pair is missing an entry.
func NewDFA(transitions map[StateSymbolPair]State, start State, accept []State) (*DFA, error) {
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

	targets := make([]State, 0, len(transitions))
	for _, t := range transitions {
		targets = append(targets, t)
	}
	if err := checkRangeSubset(states, targets); err != nil {
		return nil, err
	}

	present := stateset.New[StateSymbolPair]()
	for k := range transitions {
		present.Add(k)
	}
	if err := checkTotalDomain(states, alphabet, present); err != nil {
		return nil, err
	}

	tf := make(map[StateSymbolPair]State, len(transitions))
	for k, v := range transitions {
		tf[k] = v
	}

	return &DFA{
		states:      states,
		alphabet:    alphabet,
		transitions: tf,
		start:       start,
		accept:      stateset.New(accept...),
		alphaBits:   newAlphabetBits(alphabet.Values()),
	}, nil
}

// States returns a defensive copy of Q.
func (d *DFA) States() []State { return d.states.Copy().Values() }

// Alphabet returns a defensive copy of Σ.
func (d *DFA) Alphabet() []Symbol { return d.alphabet.Copy().Values() }

// Start returns q0.
func (d *DFA) Start() State { return d.start }

// Accept returns a defensive copy of F.
func (d *DFA) Accept() []State { return d.accept.Copy().Values() }

// Accepts reports whether d accepts w, by walking δ from q0 one symbol
// at a time. Returns an Alphabet-input error if w contains a symbol
// outside Σ.
func (d *DFA) Accepts(w string) (bool, error) {
	if err := checkInput(d.alphaBits, w); err != nil {
		return false, err
	}
	current := d.start
	for _, r := range w {
		current = d.transitions[StateSymbolPair{State: current, Symbol: string(r)}]
	}
	return d.accept.Contains(current), nil
}

// NonDeterminize returns an NFA recognizing the same language as d, by
// lifting every δ(q, a) = r to a singleton successor set {r}. The result
// never uses ε-moves.
func (d *DFA) NonDeterminize() *NFA {
	tf := make(map[StateSymbolPair][]State, len(d.transitions))
	for k, v := range d.transitions {
		tf[k] = []State{v}
	}
	n, err := NewNFA(tf, d.start, d.accept.Values())
	if err != nil {
		panic("fsa: NonDeterminize produced an invalid NFA: " + err.Error())
	}
	return n
}

// Union returns a DFA recognizing the union of the languages recognized
// by d and other, by product construction over Q_d×Q_other. When d and
// other share the same alphabet, δ is already total on the product
// without a trap state. When their alphabets differ, each operand gets
// its own trap coordinate, entered only on that operand's side when a
// symbol falls outside its own alphabet; the other side's coordinate
// keeps evolving through its own δ as normal. This is the Supplemented
// Feature decision recorded for DFA.Union (the original's
// `maybe_add_state` optimization, ported rather than unconditionally
// allocating a trap state every call) — grounded on
// `toc/fsa/fsa.py DFA.__or__`, which extends each operand with its own
// trap rather than collapsing both sides into one.
func (d *DFA) Union(other *DFA) (*DFA, error) {
	alphabet := d.alphabet.Union(other.alphabet)
	needsTrapD := !other.alphabet.Diff(d.alphabet).Empty()
	needsTrapOther := !d.alphabet.Diff(other.alphabet).Empty()

	allStates := d.states.Union(other.states)
	var trapD, trapOther State
	if needsTrapD {
		trapD = freshState(allStates, 2, "trap-left")
		allStates.Add(trapD)
	}
	if needsTrapOther {
		trapOther = freshState(allStates, 2, "trap-right")
		allStates.Add(trapOther)
	}

	stepSide := func(current State, own *DFA, trap State, trapExists bool, sym Symbol) State {
		if trapExists && current == trap {
			return trap
		}
		if own.alphabet.Contains(sym) {
			return own.transitions[StateSymbolPair{State: current, Symbol: sym}]
		}
		return trap
	}

	leftStates := append(append([]State{}, d.states.Values()...))
	if needsTrapD {
		leftStates = append(leftStates, trapD)
	}
	rightStates := append(append([]State{}, other.states.Values()...))
	if needsTrapOther {
		rightStates = append(rightStates, trapOther)
	}

	isAcceptLeft := func(s State) bool { return !(needsTrapD && s == trapD) && d.accept.Contains(s) }
	isAcceptRight := func(s State) bool { return !(needsTrapOther && s == trapOther) && other.accept.Contains(s) }

	tf := make(map[StateSymbolPair]State)
	var accept []State
	seen := stateset.New[State]()

	for _, p := range leftStates {
		for _, q := range rightStates {
			_, label := stateset.CanonicalizePair(p, q)
			if !seen.Contains(label) {
				seen.Add(label)
				if isAcceptLeft(p) || isAcceptRight(q) {
					accept = append(accept, label)
				}
			}
			for _, sym := range alphabet.Values() {
				np := stepSide(p, d, trapD, needsTrapD, sym)
				nq := stepSide(q, other, trapOther, needsTrapOther, sym)
				_, target := stateset.CanonicalizePair(np, nq)
				tf[StateSymbolPair{State: label, Symbol: sym}] = target
			}
		}
	}

	_, startLabel := stateset.CanonicalizePair(d.start, other.start)
	return NewDFA(tf, startLabel, accept)
}

// Concat returns a DFA recognizing the concatenation of the languages
// recognized by d and other. DFAs have no closed-form product
// construction for concatenation, so this routes through
// NonDeterminize, NFA.Concat, and Determinize, as the original does via
// its own non_determinize/__add__/determinize pipeline.
func (d *DFA) Concat(other *DFA) (*DFA, error) {
	n, err := d.NonDeterminize().Concat(other.NonDeterminize())
	if err != nil {
		return nil, err
	}
	return n.Determinize()
}

// CfGrammarize returns a context-free grammar equivalent to d: a
// right-linear grammar with one variable per state, a production
// V_q -> a V_r for every δ(q,a) = r, and V_q -> € for every accept
// state q. Grounded on the standard DFA-to-right-linear-grammar
// construction the source library's design notes assume §4.4 relies on.
func (d *DFA) CfGrammarize() (*cfg.CFG, error) {
	varOf := make(map[State]cfg.Symbol, d.states.Len())
	for _, q := range d.states.Values() {
		varOf[q] = "Q_" + q
	}

	rules := make(map[cfg.Symbol][]cfg.Production, d.states.Len())
	for _, q := range d.states.Values() {
		v := varOf[q]
		var prods []cfg.Production
		for _, sym := range d.alphabet.Values() {
			target := d.transitions[StateSymbolPair{State: q, Symbol: sym}]
			prods = append(prods, cfg.Production{sym, varOf[target]})
		}
		if d.accept.Contains(q) {
			prods = append(prods, cfg.Production{})
		}
		rules[v] = prods
	}

	return cfg.New(rules, varOf[d.start])
}

// Encode returns a regular expression over the package's regex surface
// syntax (§4.5) denoting the same language as d, by generalized-NFA
// state elimination. See gnfa.go.
func (d *DFA) Encode() (string, error) {
	return encodeDFA(d)
}
