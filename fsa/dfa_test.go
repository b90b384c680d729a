package fsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evenZerosDFA accepts binary strings with an even number of 0s.
func evenZerosDFA(t *testing.T) *DFA {
	t.Helper()
	tf := map[StateSymbolPair]State{
		{State: "even", Symbol: "0"}: "odd",
		{State: "even", Symbol: "1"}: "even",
		{State: "odd", Symbol: "0"}:  "even",
		{State: "odd", Symbol: "1"}:  "odd",
	}
	d, err := NewDFA(tf, "even", []State{"even"})
	require.NoError(t, err)
	return d
}

func TestDFA_Accepts(t *testing.T) {
	d := evenZerosDFA(t)
	for _, c := range []struct {
		in   string
		want bool
	}{
		{"", true},
		{"0", false},
		{"00", true},
		{"010", true},
		{"0011", true},
		{"1111", true},
	} {
		got, err := d.Accepts(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "Accepts(%q)", c.in)
	}
}

func TestNewDFA_RejectsMissingCase(t *testing.T) {
	tf := map[StateSymbolPair]State{
		{State: "q0", Symbol: "0"}: "q0",
		{State: "q1", Symbol: "1"}: "q1",
		// (q0, "1") and (q1, "0") are missing now that "0" and "1" are
		// each in the inferred alphabet.
	}
	_, err := NewDFA(tf, "q0", nil)
	require.Error(t, err)
}

func TestDFA_NonDeterminize_AgreesOnAcceptance(t *testing.T) {
	d := evenZerosDFA(t)
	n := d.NonDeterminize()

	for _, w := range []string{"", "0", "00", "010", "0011", "1111"} {
		want, err := d.Accepts(w)
		require.NoError(t, err)
		got, err := n.Accepts(w)
		require.NoError(t, err)
		assert.Equal(t, want, got, "Accepts(%q)", w)
	}
}

func TestDFA_Union_SameAlphabet(t *testing.T) {
	evenZeros := evenZerosDFA(t)

	startsWithOne, err := NewDFA(map[StateSymbolPair]State{
		{State: "s0", Symbol: "0"}: "dead",
		{State: "s0", Symbol: "1"}: "yes",
		{State: "yes", Symbol: "0"}: "yes",
		{State: "yes", Symbol: "1"}: "yes",
		{State: "dead", Symbol: "0"}: "dead",
		{State: "dead", Symbol: "1"}: "dead",
	}, "s0", []State{"yes"})
	require.NoError(t, err)

	u, err := evenZeros.Union(startsWithOne)
	require.NoError(t, err)

	for _, c := range []struct {
		in   string
		want bool
	}{
		{"", true},   // even zeros (0 is even)
		{"1", true},  // starts with 1
		{"0", false}, // odd zeros, doesn't start with 1
		{"00", true}, // even zeros
		{"10", true}, // starts with 1
	} {
		got, err := u.Accepts(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "Accepts(%q)", c.in)
	}
}

func TestDFA_Union_DifferentAlphabets(t *testing.T) {
	onAB, err := NewDFA(map[StateSymbolPair]State{
		{State: "p", Symbol: "a"}: "p",
		{State: "p", Symbol: "b"}: "p",
	}, "p", []State{"p"})
	require.NoError(t, err)

	onC, err := NewDFA(map[StateSymbolPair]State{
		{State: "q", Symbol: "c"}: "q",
	}, "q", []State{"q"})
	require.NoError(t, err)

	u, err := onAB.Union(onC)
	require.NoError(t, err)

	for _, c := range []struct {
		in   string
		want bool
	}{
		{"aab", true},
		{"ccc", true},
		{"abc", false},
	} {
		got, err := u.Accepts(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "Accepts(%q)", c.in)
	}
}

func TestDFA_Concat(t *testing.T) {
	a, err := NewDFA(map[StateSymbolPair]State{
		{State: "a0", Symbol: "a"}: "a1",
		{State: "a1", Symbol: "a"}: "dead",
		{State: "dead", Symbol: "a"}: "dead",
	}, "a0", []State{"a1"})
	require.NoError(t, err)

	b, err := NewDFA(map[StateSymbolPair]State{
		{State: "b0", Symbol: "a"}: "b1",
		{State: "b1", Symbol: "a"}: "dead2",
		{State: "dead2", Symbol: "a"}: "dead2",
	}, "b0", []State{"b1"})
	require.NoError(t, err)

	ab, err := a.Concat(b)
	require.NoError(t, err)

	got, err := ab.Accepts("aa")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = ab.Accepts("a")
	require.NoError(t, err)
	assert.False(t, got)

	got, err = ab.Accepts("aaa")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestDFA_CfGrammarize_AgreesOnMembership(t *testing.T) {
	d := evenZerosDFA(t)
	g, err := d.CfGrammarize()
	require.NoError(t, err)

	// "00" is accepted: Q_even -> 0 Q_odd -> 0 Q_even -> €.
	derivation := [][]string{
		{"Q_even"},
		{"0", "Q_odd"},
		{"0", "0", "Q_even"},
		{"0", "0"},
	}
	assert.True(t, g.IsValidDerivation(derivation))
}

func TestDFA_Encode_RoundTrips(t *testing.T) {
	d := evenZerosDFA(t)
	re, err := d.Encode()
	require.NoError(t, err)
	require.NotEmpty(t, re)

	n, err := Fit(re, []Symbol{"0", "1"})
	require.NoError(t, err)

	for _, w := range []string{"", "0", "00", "010", "0011", "1111", "0"} {
		want, err := d.Accepts(w)
		require.NoError(t, err)
		got, err := n.Accepts(w)
		require.NoError(t, err)
		assert.Equal(t, want, got, "Accepts(%q)", w)
	}
}
