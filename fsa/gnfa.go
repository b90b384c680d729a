package fsa

import (
	"github.com/knsh14/toc/stateset"
)

// gnfaEdgeKey packages a (from, to) pair; gnfa edges are keyed by
// endpoints rather than by symbol since each pair of states carries at
// most one combined regex fragment, grounded on the original's `_GNFA`
// helper class (toc/fsa/fsa.py) and its absorption identities for €
// (empty string) and Ø (empty language), so eliminating a state never
// pollutes the result with redundant "•Ø" or "€" noise.
type gnfaEdgeKey struct {
	from, to State
}

// gnfaGraph is DFA.Encode's working representation during state
// elimination: a graph over d's states plus a fresh start and accept,
// whose edges are regex-surface fragments rather than single symbols.
type gnfaGraph struct {
	start     State
	accept    State
	worklist  *stateset.OrderedLabels // eliminable states, in elimination order
	remaining *stateset.Set[State]    // states still present (worklist ∪ {start, accept})
	label     map[gnfaEdgeKey]string
}

func none() string          { return string(opNone) }
func empt() string          { return string(opEmpty) }
func isNone(s string) bool  { return s == none() }
func isEmpty(s string) bool { return s == empt() }

// regexUnion combines two fragments with |, applying the Ø-absorption
// identity (Ø|x = x) so eliminating a state that has no path through it
// doesn't leave a dangling "Ø|" in the result.
func regexUnion(a, b string) string {
	switch {
	case isNone(a):
		return b
	case isNone(b):
		return a
	case a == b:
		return a
	default:
		return a + string(opUnion) + b
	}
}

// regexConcat combines two fragments with implicit concatenation,
// applying both absorption identities: Ø•x = Ø, and €•x = x.
func regexConcat(a, b string) string {
	switch {
	case isNone(a) || isNone(b):
		return none()
	case isEmpty(a):
		return b
	case isEmpty(b):
		return a
	default:
		return wrapForConcat(a) + wrapForConcat(b)
	}
}

// regexStar wraps a fragment in a Kleene star, applying the identities
// €* = € and Ø* = €: both the empty string and the empty language have
// a star consisting of just the empty string.
func regexStar(a string) string {
	switch {
	case isEmpty(a) || isNone(a):
		return empt()
	default:
		return wrapForStar(a) + string(opStar)
	}
}

// wrapForConcat parenthesizes a fragment if it contains a top-level
// union, since concatenation binds tighter than union in the surface
// grammar and the fragment is about to be concatenated with another.
func wrapForConcat(a string) string {
	if containsTopLevelUnion(a) {
		return string(opLParen) + a + string(opRParen)
	}
	return a
}

// wrapForStar parenthesizes a fragment unless it is already a single
// token, since star binds tighter than everything.
func wrapForStar(a string) string {
	if len([]rune(a)) == 1 {
		return a
	}
	return string(opLParen) + a + string(opRParen)
}

func containsTopLevelUnion(a string) bool {
	depth := 0
	for _, r := range a {
		switch r {
		case opLParen:
			depth++
		case opRParen:
			depth--
		case opUnion:
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// encodeDFA runs GNFA state elimination on d and returns the resulting
// regex. The construction: add a fresh start with an €-edge to d's old
// start, a fresh accept with €-edges in from every old accept state,
// then repeatedly eliminate a non-start, non-accept state q by folding
// every path through q into a direct edge, until only start and accept
// remain.
func encodeDFA(d *DFA) (string, error) {
	g := newGNFAGraph(d)

	for {
		q, ok := g.worklist.PopMin()
		if !ok {
			break
		}
		g.eliminate(q)
	}

	return g.labelOf(g.start, g.accept), nil
}

func newGNFAGraph(d *DFA) *gnfaGraph {
	allStates := d.states.Copy()
	newStart := freshState(allStates, 2, "gnfa-start")
	allStates.Add(newStart)
	newAccept := freshState(allStates, 2, "gnfa-accept")
	allStates.Add(newAccept)

	g := &gnfaGraph{
		start:     newStart,
		accept:    newAccept,
		worklist:  stateset.NewOrderedLabels(d.states.Values()...),
		remaining: allStates,
		label:     map[gnfaEdgeKey]string{},
	}

	for _, p := range allStates.Values() {
		for _, q := range allStates.Values() {
			g.setLabel(p, q, none())
		}
	}

	g.setLabel(newStart, d.start, empt())
	for _, a := range d.accept.Values() {
		g.setLabel(a, newAccept, regexUnion(g.labelOf(a, newAccept), empt()))
	}

	for _, p := range d.states.Values() {
		for _, sym := range d.alphabet.Values() {
			r := d.transitions[StateSymbolPair{State: p, Symbol: sym}]
			g.setLabel(p, r, regexUnion(g.labelOf(p, r), sym))
		}
	}

	return g
}

func (g *gnfaGraph) setLabel(from, to State, v string) {
	g.label[gnfaEdgeKey{from: from, to: to}] = v
}

func (g *gnfaGraph) labelOf(from, to State) string {
	v, ok := g.label[gnfaEdgeKey{from: from, to: to}]
	if !ok {
		return none()
	}
	return v
}

// eliminate removes q from the graph, folding every p->q->r path into a
// direct p->r edge per the `α·β*·γ` combination rule: for every pair of
// remaining states (p, r), new p->r label = old(p,r) | old(p,q)·old(q,q)*·old(q,r).
func (g *gnfaGraph) eliminate(q State) {
	loop := regexStar(g.labelOf(q, q))
	others := g.remaining.Diff(stateset.New(q))

	type update struct {
		from, to State
		v        string
	}
	var updates []update
	for _, p := range others.Values() {
		toQ := g.labelOf(p, q)
		if isNone(toQ) {
			continue
		}
		for _, r := range others.Values() {
			fromQ := g.labelOf(q, r)
			if isNone(fromQ) {
				continue
			}
			through := regexConcat(regexConcat(toQ, loop), fromQ)
			updates = append(updates, update{from: p, to: r, v: regexUnion(g.labelOf(p, r), through)})
		}
	}
	for _, u := range updates {
		g.setLabel(u.from, u.to, u.v)
	}

	g.remaining = others
}
