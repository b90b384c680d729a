// Package cfg implements context-free grammars: construction with strict
// validation, derivation checking, and Chomsky Normal Form
// normalization.
//
// Grounded on the teacher's production/productionSet types
// (nihei9-vartan grammar/production.go) for the shape of a rule table,
// and on toc/cfg/cfg.py for the normalization pipeline's five phases.
package cfg

import (
	"strings"

	"github.com/knsh14/toc/fsaerr"
	"github.com/knsh14/toc/stateset"
)

// Symbol names a variable or terminal of a grammar.
type Symbol = string

// Epsilon denotes the empty production at the public surface. A
// production containing exactly this one symbol is canonicalized to the
// empty sequence during construction, resolving the source library's
// "string vs tuple" open question in the one way Go's static typing
// allows: every production is an explicit []Symbol, and there is no
// separate bare-string production shape.
const Epsilon = Symbol("€")

// Production is an ordered sequence of symbols. The empty sequence and a
// sequence containing only Epsilon are equivalent; New canonicalizes the
// latter to the former.
type Production []Symbol

func (p Production) key() string {
	return strings.Join(p, "\x00")
}

func (p Production) isEmpty() bool {
	return len(p) == 0
}

// CFG is a context-free grammar (V, T, R, S). Immutable after
// construction; every accessor returns a defensive copy.
type CFG struct {
	rules     map[Symbol][]Production
	variables *stateset.Set[Symbol]
	terminals *stateset.Set[Symbol]
	start     Symbol
}

// New builds a CFG from rules (a mapping from each variable to its set
// of productions) and a start variable. The variables of the grammar are
// the keys of rules; the terminals are every symbol appearing in a
// production that is not a variable.
//
// New rejects the input if there are no terminals among the productions,
// or if start is not among the keys of rules.
func New(rules map[Symbol][]Production, start Symbol) (*CFG, error) {
	variables := stateset.New[Symbol]()
	for v := range rules {
		variables.Add(v)
	}

	canonRules := make(map[Symbol][]Production, len(rules))
	terminals := stateset.New[Symbol]()
	for v, prods := range rules {
		seen := stateset.New[string]()
		var out []Production
		for _, p := range prods {
			cp := canonicalizeProduction(p)
			if seen.Contains(cp.key()) {
				continue
			}
			seen.Add(cp.key())
			out = append(out, cp)
			for _, sym := range cp {
				if !variables.Contains(sym) {
					terminals.Add(sym)
				}
			}
		}
		canonRules[v] = out
	}

	if terminals.Empty() {
		return nil, fsaerr.New(fsaerr.ErrCFGShape,
			"grammar has no terminals among its productions",
			"grammar has no terminals among its productions",
			nil)
	}
	if !variables.Contains(start) {
		return nil, fsaerr.New(fsaerr.ErrCFGShape,
			"start variable %s is not among the grammar's variables",
			"start variable %s is not among the grammar's variables",
			[]string{start})
	}

	return &CFG{
		rules:     canonRules,
		variables: variables,
		terminals: terminals,
		start:     start,
	}, nil
}

func canonicalizeProduction(p Production) Production {
	if len(p) == 1 && p[0] == Epsilon {
		return Production{}
	}
	cp := make(Production, len(p))
	copy(cp, p)
	return cp
}

// Rules returns a defensive copy of R.
func (g *CFG) Rules() map[Symbol][]Production {
	out := make(map[Symbol][]Production, len(g.rules))
	for v, prods := range g.rules {
		cp := make([]Production, len(prods))
		for i, p := range prods {
			cp[i] = append(Production{}, p...)
		}
		out[v] = cp
	}
	return out
}

// Variables returns a defensive copy of V.
func (g *CFG) Variables() []Symbol { return g.variables.Copy().Values() }

// Terminals returns a defensive copy of T.
func (g *CFG) Terminals() []Symbol { return g.terminals.Copy().Values() }

// StartVariable returns S.
func (g *CFG) StartVariable() Symbol { return g.start }

// IsVariable reports whether sym is a variable of g.
func (g *CFG) IsVariable(sym Symbol) bool { return g.variables.Contains(sym) }

// IsValidDerivation reports whether derivation is a valid derivation for
// g: derivation[0] must be exactly [S], and for every consecutive pair
// there must be a split derivation[i] = α·[v]·β, a production v → γ in
// R, with derivation[i+1] = α·γ·β — exactly one variable rewritten per
// step. An empty derivation is invalid.
func (g *CFG) IsValidDerivation(derivation [][]Symbol) bool {
	if len(derivation) == 0 {
		return false
	}
	if !equalSeq(derivation[0], []Symbol{g.start}) {
		return false
	}
	for i := 0; i < len(derivation)-1; i++ {
		if !g.yieldsOneStep(derivation[i], derivation[i+1]) {
			return false
		}
	}
	return true
}

func (g *CFG) yieldsOneStep(s1, s2 []Symbol) bool {
	for idx, sym := range s1 {
		if !g.variables.Contains(sym) {
			continue
		}
		for _, prod := range g.rules[sym] {
			candidate := make([]Symbol, 0, len(s1)-1+len(prod))
			candidate = append(candidate, s1[:idx]...)
			candidate = append(candidate, prod...)
			candidate = append(candidate, s1[idx+1:]...)
			if equalSeq(candidate, s2) {
				return true
			}
		}
	}
	return false
}

func equalSeq(a, b []Symbol) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- Chomsky Normal Form ---------------------------------------------

// cnfRule is a (lhs, rhs) pair canonicalized for deduplication in a set,
// mirroring the original's `rule_set = {(v, s) for ...}` working
// representation.
type cnfRule struct {
	lhs Symbol
	rhs Production
}

func (r cnfRule) key() string {
	return r.lhs + "\x01" + r.rhs.key()
}

type ruleSet struct {
	byKey map[string]cnfRule
}

func newRuleSet() *ruleSet {
	return &ruleSet{byKey: map[string]cnfRule{}}
}

func (rs *ruleSet) add(r cnfRule) {
	rs.byKey[r.key()] = r
}

func (rs *ruleSet) remove(r cnfRule) {
	delete(rs.byKey, r.key())
}

func (rs *ruleSet) all() []cnfRule {
	out := make([]cnfRule, 0, len(rs.byKey))
	for _, r := range rs.byKey {
		out = append(out, r)
	}
	return out
}

// freshVariableGenerator hands out variable names guaranteed unused by
// existing, per §4.6's "fresh-name generation uses a counter scoped to
// the transformation."
type freshVariableGenerator struct {
	existing *stateset.Set[Symbol]
	counter  int
}

func newFreshVariableGenerator(existing *stateset.Set[Symbol]) *freshVariableGenerator {
	return &freshVariableGenerator{existing: existing.Copy()}
}

func (g *freshVariableGenerator) next() Symbol {
	for {
		g.counter++
		name := "V" + itoa(g.counter)
		if !g.existing.Contains(name) {
			g.existing.Add(name)
			return name
		}
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// ChomskyNormalize returns an equivalent grammar in Chomsky Normal Form:
// every production is either a single terminal or exactly two
// variables, except that the (fresh) start variable may still produce ε.
// The five phases run in the mandatory order START, TERM, BIN, DEL, UNIT.
func (g *CFG) ChomskyNormalize() (*CFG, error) {
	rs := newRuleSet()
	for v, prods := range g.rules {
		for _, p := range prods {
			rs.add(cnfRule{lhs: v, rhs: p})
		}
	}

	fresh := newFreshVariableGenerator(g.variables)

	// START: a new start variable avoids the original start ever
	// appearing on a right-hand side.
	newStart := fresh.next()
	rs.add(cnfRule{lhs: newStart, rhs: Production{g.start}})

	// TERM: terminals inside a production of length >= 2 are replaced
	// by a fresh variable that derives just that terminal.
	termVars := map[Symbol]Symbol{}
	for _, r := range rs.all() {
		if len(r.rhs) < 2 {
			continue
		}
		changed := false
		newRhs := make(Production, len(r.rhs))
		for i, sym := range r.rhs {
			if g.terminals.Contains(sym) {
				tv, ok := termVars[sym]
				if !ok {
					tv = fresh.next()
					termVars[sym] = tv
					rs.add(cnfRule{lhs: tv, rhs: Production{sym}})
				}
				newRhs[i] = tv
				changed = true
			} else {
				newRhs[i] = sym
			}
		}
		if changed {
			rs.remove(r)
			rs.add(cnfRule{lhs: r.lhs, rhs: newRhs})
		}
	}

	// BIN: productions longer than two symbols are right-binarized
	// through fresh variables.
	for _, r := range rs.all() {
		if len(r.rhs) <= 2 {
			continue
		}
		rs.remove(r)
		lhs := r.lhs
		rhs := r.rhs
		for len(rhs) > 2 {
			mid := fresh.next()
			rs.add(cnfRule{lhs: lhs, rhs: Production{rhs[0], mid}})
			lhs = mid
			rhs = rhs[1:]
		}
		rs.add(cnfRule{lhs: lhs, rhs: rhs})
	}

	// DEL: remove ε-productions (other than the new start's, which is
	// allowed to keep generating ε), expanding every production that
	// contains a nullable variable into every variant with a subset of
	// its nullable occurrences omitted.
	nullable := computeNullable(rs)
	removeEpsilonProductions(rs, nullable, newStart)

	// UNIT: replace A -> B (B a variable) with A -> γ for every
	// non-unit production B -> γ, iterating to a fixed point.
	removeUnitProductions(rs, g.terminals)

	normalizedRules := map[Symbol][]Production{}
	for _, r := range rs.all() {
		normalizedRules[r.lhs] = append(normalizedRules[r.lhs], r.rhs)
	}

	return New(normalizedRules, newStart)
}

// computeNullable finds the least fixed point of "derives ε," following
// the teacher's changed-flag fixpoint loop style (grammar/first.go).
func computeNullable(rs *ruleSet) *stateset.Set[Symbol] {
	nullable := stateset.New[Symbol]()
	for {
		changed := false
		for _, r := range rs.all() {
			if nullable.Contains(r.lhs) {
				continue
			}
			if r.rhs.isEmpty() {
				nullable.Add(r.lhs)
				changed = true
				continue
			}
			allNullable := true
			for _, sym := range r.rhs {
				if !nullable.Contains(sym) {
					allNullable = false
					break
				}
			}
			if allNullable {
				nullable.Add(r.lhs)
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return nullable
}

// removeEpsilonProductions implements DEL: every production containing
// nullable symbols gets a variant for each subset of those symbols'
// occurrences omitted (including the empty subset, i.e. the original),
// and all ε-productions are then dropped except newStart's.
func removeEpsilonProductions(rs *ruleSet, nullable *stateset.Set[Symbol], newStart Symbol) {
	for _, r := range rs.all() {
		var nullableIdx []int
		for i, sym := range r.rhs {
			if nullable.Contains(sym) {
				nullableIdx = append(nullableIdx, i)
			}
		}
		if len(nullableIdx) == 0 {
			continue
		}
		for _, omit := range powerset(nullableIdx) {
			omitSet := stateset.New(omit...)
			var variant Production
			for i, sym := range r.rhs {
				if omitSet.Contains(i) {
					continue
				}
				variant = append(variant, sym)
			}
			if len(variant) == len(r.rhs) {
				continue // the empty-omission variant is the rule itself
			}
			rs.add(cnfRule{lhs: r.lhs, rhs: variant})
		}
	}

	for _, r := range rs.all() {
		if r.rhs.isEmpty() && r.lhs != newStart {
			rs.remove(r)
		}
	}
}

func powerset(idx []int) [][]int {
	out := [][]int{{}}
	for _, v := range idx {
		size := len(out)
		for i := 0; i < size; i++ {
			next := append(append([]int{}, out[i]...), v)
			out = append(out, next)
		}
	}
	return out
}

// removeUnitProductions implements UNIT: A -> B with B a single variable
// is replaced by A -> γ for every production B -> γ, repeated to a
// fixed point as the original's while-loop does, since resolving one
// unit production can reveal another (A -> C from B -> C). A unit
// production that was already removed is never added back, and A -> A
// is never added, so the loop terminates.
func removeUnitProductions(rs *ruleSet, terminals *stateset.Set[Symbol]) {
	isUnit := func(r cnfRule) (Symbol, bool) {
		if len(r.rhs) == 1 && !terminals.Contains(r.rhs[0]) {
			return r.rhs[0], true
		}
		return "", false
	}

	removed := map[string]bool{}
	for {
		var unitRules []cnfRule
		for _, r := range rs.all() {
			if _, ok := isUnit(r); ok {
				unitRules = append(unitRules, r)
			}
		}
		if len(unitRules) == 0 {
			return
		}
		for _, r := range unitRules {
			target, _ := isUnit(r)
			rs.remove(r)
			removed[r.key()] = true
			for _, s := range rs.all() {
				if s.lhs != target {
					continue
				}
				nr := cnfRule{lhs: r.lhs, rhs: s.rhs}
				if t, ok := isUnit(nr); ok && (t == r.lhs || removed[nr.key()]) {
					continue
				}
				rs.add(nr)
			}
		}
	}
}
