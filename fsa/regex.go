package fsa

import (
	"unicode/utf8"

	"github.com/knsh14/toc/fsaerr"
	"github.com/knsh14/toc/stateset"
)

// tokenKind classifies a single token of the regex surface language.
type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokEmpty             // €
	tokNone               // Ø
	tokLParen
	tokRParen
	tokUnion
	tokConcat
	tokStar
)

type token struct {
	kind tokenKind
	sym  Symbol // only meaningful when kind == tokLiteral
}

func isReservedRune(r rune) bool {
	for _, rc := range reservedChars {
		if rc == r {
			return true
		}
	}
	return false
}

// defaultRegexAlphabet returns the printable character set minus the
// operator characters that would otherwise be ambiguous between literal
// and operator use: `(`, `)`, `|`, `*`. The other three reserved
// characters, `•`, `€`, `Ø`, fall outside the printable ASCII range this
// default draws from, so excluding them explicitly is unnecessary.
func defaultRegexAlphabet() *stateset.Set[Symbol] {
	s := stateset.New[Symbol]()
	for r := rune(' '); r <= rune('~'); r++ {
		if r == opLParen || r == opRParen || r == opUnion || r == opStar {
			continue
		}
		s.Add(string(r))
	}
	return s
}

// Fit is the regex surface's static constructor (§4.4): it parses regex
// against alphabet (or, if alphabet is nil, the default alphabet) and
// returns the NFA it denotes. Grounded on the source library's
// NFA.fit: implicit-concatenation insertion, then shunting-yard to
// postfix, then postfix-to-NFA evaluation via a stack of NFA fragments.
func Fit(regex string, alphabet []Symbol) (*NFA, error) {
	var alphaSet *stateset.Set[Symbol]
	if alphabet == nil {
		alphaSet = defaultRegexAlphabet()
	} else {
		alphaSet = stateset.New(alphabet...)
		var bad []string
		for _, s := range alphaSet.Values() {
			r, _ := utf8.DecodeRuneInString(s)
			if isReservedRune(r) {
				bad = append(bad, s)
			}
		}
		if err := fsaerr.IfAny(fsaerr.ErrRegexSurface,
			"alphabet symbol %s collides with a reserved regex character",
			"alphabet symbols %s collide with reserved regex characters",
			bad); err != nil {
			return nil, err
		}
	}

	tokens, err := tokenizeRegex(regex, alphaSet)
	if err != nil {
		return nil, err
	}

	tokens = insertImplicitConcat(tokens)

	if err := validateAdjacency(tokens); err != nil {
		return nil, err
	}

	postfix, err := shuntingYard(tokens)
	if err != nil {
		return nil, err
	}

	return evalPostfix(postfix, alphaSet)
}

func tokenizeRegex(regex string, alphaSet *stateset.Set[Symbol]) ([]token, error) {
	var tokens []token
	var bad []string
	for _, r := range regex {
		switch r {
		case opLParen:
			tokens = append(tokens, token{kind: tokLParen})
		case opRParen:
			tokens = append(tokens, token{kind: tokRParen})
		case opUnion:
			tokens = append(tokens, token{kind: tokUnion})
		case opStar:
			tokens = append(tokens, token{kind: tokStar})
		case opConcat:
			tokens = append(tokens, token{kind: tokConcat})
		case opEmpty:
			tokens = append(tokens, token{kind: tokEmpty})
		case opNone:
			tokens = append(tokens, token{kind: tokNone})
		default:
			s := string(r)
			if !alphaSet.Contains(s) {
				bad = append(bad, s)
				continue
			}
			tokens = append(tokens, token{kind: tokLiteral, sym: s})
		}
	}
	if err := fsaerr.IfAny(fsaerr.ErrRegexSurface,
		"character %s is not in the alphabet",
		"characters %s are not in the alphabet",
		bad); err != nil {
		return nil, err
	}
	return tokens, nil
}

// leftOperandEnd reports whether a token of this kind can be the last
// token of a completed operand — the left context implicit
// concatenation is inserted after, and binary operators require before.
func leftOperandEnd(k tokenKind) bool {
	switch k {
	case tokLiteral, tokRParen, tokStar, tokEmpty, tokNone:
		return true
	default:
		return false
	}
}

// rightOperandStart reports whether a token of this kind can be the
// first token of a fresh operand — the right context implicit
// concatenation is inserted before, and binary operators require after.
func rightOperandStart(k tokenKind) bool {
	switch k {
	case tokLiteral, tokLParen, tokEmpty, tokNone:
		return true
	default:
		return false
	}
}

// insertImplicitConcat walks tokens and inserts an explicit tokConcat
// between every adjacent pair (x, y) where x ends a completed operand
// and y starts a fresh one, per the surface grammar's implicit
// concatenation rule.
func insertImplicitConcat(tokens []token) []token {
	if len(tokens) == 0 {
		return tokens
	}
	out := make([]token, 0, len(tokens)*2)
	out = append(out, tokens[0])
	for i := 1; i < len(tokens); i++ {
		if leftOperandEnd(tokens[i-1].kind) && rightOperandStart(tokens[i].kind) {
			out = append(out, token{kind: tokConcat})
		}
		out = append(out, tokens[i])
	}
	return out
}

func isBinaryOp(k tokenKind) bool {
	return k == tokUnion || k == tokConcat
}

// validateAdjacency rejects a binary operator immediately followed by
// another operator (excluding `*` and parenthesis context) and rejects
// a binary operator or `*` with no valid operand on the side it needs.
func validateAdjacency(tokens []token) error {
	for i, t := range tokens {
		switch {
		case isBinaryOp(t.kind):
			if i == 0 || !leftOperandEnd(tokens[i-1].kind) {
				return fsaerr.New(fsaerr.ErrRegexSurface,
					"binary operator at position %s has no left operand",
					"", []string{itoaRegex(i)})
			}
			if i == len(tokens)-1 || !rightOperandStart(tokens[i+1].kind) {
				return fsaerr.New(fsaerr.ErrRegexSurface,
					"binary operator at position %s is followed by another operator",
					"", []string{itoaRegex(i)})
			}
		case t.kind == tokStar:
			if i == 0 || !leftOperandEnd(tokens[i-1].kind) {
				return fsaerr.New(fsaerr.ErrRegexSurface,
					"* at position %s has no operand to repeat",
					"", []string{itoaRegex(i)})
			}
		}
	}
	return nil
}

func itoaRegex(n int) string {
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

func precedence(k tokenKind) int {
	switch k {
	case tokUnion:
		return 1
	case tokConcat:
		return 2
	default:
		return 0
	}
}

// shuntingYard converts tokens (with implicit concatenation already
// inserted) to postfix order via Dijkstra's algorithm, with `*` handled
// as a postfix unary operator emitted directly into the output rather
// than pushed onto the operator stack.
func shuntingYard(tokens []token) ([]token, error) {
	var output []token
	var ops []token

	popToOutput := func() {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		output = append(output, top)
	}

	for _, t := range tokens {
		switch t.kind {
		case tokLiteral, tokEmpty, tokNone:
			output = append(output, t)
		case tokLParen:
			ops = append(ops, t)
		case tokRParen:
			matched := false
			for len(ops) > 0 {
				if ops[len(ops)-1].kind == tokLParen {
					ops = ops[:len(ops)-1]
					matched = true
					break
				}
				popToOutput()
			}
			if !matched {
				return nil, fsaerr.New(fsaerr.ErrRegexSurface,
					"regex syntax error: %s", "",
					[]string{"unmatched closing parenthesis"})
			}
		case tokStar:
			output = append(output, t)
		case tokUnion, tokConcat:
			for len(ops) > 0 && ops[len(ops)-1].kind != tokLParen && precedence(ops[len(ops)-1].kind) >= precedence(t.kind) {
				popToOutput()
			}
			ops = append(ops, t)
		}
	}
	for len(ops) > 0 {
		if ops[len(ops)-1].kind == tokLParen {
			return nil, fsaerr.New(fsaerr.ErrRegexSurface,
				"regex syntax error: %s", "",
				[]string{"unmatched opening parenthesis"})
		}
		popToOutput()
	}
	return output, nil
}

// evalPostfix evaluates a postfix token stream into an NFA, maintaining
// a stack of NFA fragments as the source library's postfix evaluator
// does. Every fragment is built total over alphaSet from the start,
// matching `toc/fsa/fsa.py`'s `fit_empty`/`fit_symbol`, which build
// their transition tables over the entire alphabet rather than just the
// symbols a fragment happens to mention.
func evalPostfix(postfix []token, alphaSet *stateset.Set[Symbol]) (*NFA, error) {
	var stack []*NFA
	pop := func() *NFA {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return n
	}

	for _, t := range postfix {
		switch t.kind {
		case tokLiteral:
			stack = append(stack, literalNFA(t.sym, alphaSet))
		case tokEmpty:
			stack = append(stack, emptyStringNFA(alphaSet))
		case tokNone:
			stack = append(stack, emptyLanguageNFA(alphaSet))
		case tokStar:
			a := pop()
			n, err := a.Star()
			if err != nil {
				return nil, err
			}
			stack = append(stack, n)
		case tokConcat:
			b, a := pop(), pop()
			n, err := a.Concat(b)
			if err != nil {
				return nil, err
			}
			stack = append(stack, n)
		case tokUnion:
			b, a := pop(), pop()
			n, err := a.Union(b)
			if err != nil {
				return nil, err
			}
			stack = append(stack, n)
		}
	}

	if len(stack) != 1 {
		return nil, fsaerr.New(fsaerr.ErrRegexSurface,
			"regex syntax error: %s", "",
			[]string{"did not reduce to a single fragment"})
	}
	return stack[0], nil
}

// literalNFA builds the two-state NFA accepting exactly sym, total over
// alphaSet: every other symbol of alphaSet gets an explicit empty-move
// from both states, so the fragment's inferred alphabet is alphaSet
// rather than just {sym}.
func literalNFA(sym Symbol, alphaSet *stateset.Set[Symbol]) *NFA {
	tf := map[StateSymbolPair][]State{}
	for _, a := range alphaSet.Values() {
		if a == sym {
			tf[StateSymbolPair{State: "s0", Symbol: a}] = []State{"s1"}
		} else {
			tf[StateSymbolPair{State: "s0", Symbol: a}] = nil
		}
		tf[StateSymbolPair{State: "s1", Symbol: a}] = nil
	}
	n, err := NewNFA(tf, "s0", []State{"s1"})
	if err != nil {
		panic("fsa: literalNFA built an invalid NFA: " + err.Error())
	}
	return n
}

// emptyStringNFA builds the single-state NFA recognizing just €, total
// over alphaSet.
func emptyStringNFA(alphaSet *stateset.Set[Symbol]) *NFA {
	tf := map[StateSymbolPair][]State{
		{State: "s0", Symbol: epsilon}: nil,
	}
	for _, a := range alphaSet.Values() {
		tf[StateSymbolPair{State: "s0", Symbol: a}] = nil
	}
	n, err := NewNFA(tf, "s0", []State{"s0"})
	if err != nil {
		panic("fsa: emptyStringNFA built an invalid NFA: " + err.Error())
	}
	return n
}

// emptyLanguageNFA builds the two-state NFA recognizing Ø, total over
// alphaSet: no accept state is reachable, since there is no accept
// state at all.
func emptyLanguageNFA(alphaSet *stateset.Set[Symbol]) *NFA {
	tf := map[StateSymbolPair][]State{
		{State: "s0", Symbol: epsilon}: nil,
		{State: "s1", Symbol: epsilon}: nil,
	}
	for _, a := range alphaSet.Values() {
		tf[StateSymbolPair{State: "s0", Symbol: a}] = nil
		tf[StateSymbolPair{State: "s1", Symbol: a}] = nil
	}
	n, err := NewNFA(tf, "s0", nil)
	if err != nil {
		panic("fsa: emptyLanguageNFA built an invalid NFA: " + err.Error())
	}
	return n
}
