package fsa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knsh14/toc/fsaerr"
)

// endsInOneNFA accepts exactly the binary strings ending in "1", the
// textbook example also used for the DFA below so the two can be
// cross-checked against each other after Determinize.
func endsInOneNFA(t *testing.T) *NFA {
	t.Helper()
	tf := map[StateSymbolPair][]State{
		{State: "q0", Symbol: "0"}: {"q0"},
		{State: "q0", Symbol: "1"}: {"q0", "q1"},
		{State: "q1", Symbol: "0"}: nil,
		{State: "q1", Symbol: "1"}: nil,
	}
	n, err := NewNFA(tf, "q0", []State{"q1"})
	require.NoError(t, err)
	return n
}

func TestNewNFA_RejectsBadStart(t *testing.T) {
	tf := map[StateSymbolPair][]State{
		{State: "q0", Symbol: "a"}: {"q0"},
	}
	_, err := NewNFA(tf, "qX", []State{"q0"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fsaerr.ErrStartNotInStates))
}

func TestNewNFA_RejectsAcceptNotSubset(t *testing.T) {
	tf := map[StateSymbolPair][]State{
		{State: "q0", Symbol: "a"}: {"q0"},
	}
	_, err := NewNFA(tf, "q0", []State{"qX"})
	require.Error(t, err)
}

func TestNewNFA_RejectsMissingCase(t *testing.T) {
	tf := map[StateSymbolPair][]State{
		{State: "q0", Symbol: "a"}: {"q0"},
		{State: "q0", Symbol: "b"}: {"q0"},
		// q1 has an entry for "a" only, so (q1, b) is missing.
		{State: "q1", Symbol: "a"}: nil,
	}
	_, err := NewNFA(tf, "q0", []State{"q1"})
	require.Error(t, err)
}

func TestNFA_Accepts(t *testing.T) {
	n := endsInOneNFA(t)

	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"1", true},
		{"0", false},
		{"0101", true},
		{"0110", false},
		{"111", true},
	}
	for _, c := range cases {
		got, err := n.Accepts(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "Accepts(%q)", c.in)
	}
}

func TestNFA_Accepts_RejectsOutOfAlphabet(t *testing.T) {
	n := endsInOneNFA(t)
	_, err := n.Accepts("012")
	require.Error(t, err)
}

func TestNFA_Union(t *testing.T) {
	onlyZeros, err := NewNFA(map[StateSymbolPair][]State{
		{State: "a", Symbol: "0"}: {"a"},
		{State: "a", Symbol: "1"}: nil,
	}, "a", []State{"a"})
	require.NoError(t, err)

	onlyOnes, err := NewNFA(map[StateSymbolPair][]State{
		{State: "b", Symbol: "1"}: {"b"},
		{State: "b", Symbol: "0"}: nil,
	}, "b", []State{"b"})
	require.NoError(t, err)

	u, err := onlyZeros.Union(onlyOnes)
	require.NoError(t, err)

	for _, c := range []struct {
		in   string
		want bool
	}{
		{"", true},
		{"000", true},
		{"111", true},
		{"01", false},
		{"10", false},
	} {
		got, err := u.Accepts(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "Accepts(%q)", c.in)
	}
}

func TestNFA_Union_DifferentAlphabets(t *testing.T) {
	abOnly, err := NewNFA(map[StateSymbolPair][]State{
		{State: "a", Symbol: "a"}: {"a"},
	}, "a", []State{"a"})
	require.NoError(t, err)

	cOnly, err := NewNFA(map[StateSymbolPair][]State{
		{State: "c", Symbol: "c"}: {"c"},
	}, "c", []State{"c"})
	require.NoError(t, err)

	u, err := abOnly.Union(cOnly)
	require.NoError(t, err)

	got, err := u.Accepts("aaa")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = u.Accepts("ccc")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestNFA_Concat(t *testing.T) {
	a, err := NewNFA(map[StateSymbolPair][]State{
		{State: "a0", Symbol: "a"}: {"a1"},
		{State: "a1", Symbol: "a"}: nil,
	}, "a0", []State{"a1"})
	require.NoError(t, err)

	b, err := NewNFA(map[StateSymbolPair][]State{
		{State: "b0", Symbol: "b"}: {"b1"},
		{State: "b1", Symbol: "b"}: nil,
	}, "b0", []State{"b1"})
	require.NoError(t, err)

	ab, err := a.Concat(b)
	require.NoError(t, err)

	got, err := ab.Accepts("ab")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = ab.Accepts("ba")
	require.NoError(t, err)
	assert.False(t, got)

	got, err = ab.Accepts("a")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestNFA_Star(t *testing.T) {
	ab, err := NewNFA(map[StateSymbolPair][]State{
		{State: "s0", Symbol: "a"}: {"s1"},
		{State: "s1", Symbol: "a"}: nil,
	}, "s0", []State{"s1"})
	require.NoError(t, err)

	star, err := ab.Star()
	require.NoError(t, err)

	for _, c := range []struct {
		in   string
		want bool
	}{
		{"", true},
		{"a", true},
		{"aa", true},
		{"aaa", true},
	} {
		got, err := star.Accepts(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "Accepts(%q)", c.in)
	}
}

func TestNFA_Determinize_AgreesOnAcceptance(t *testing.T) {
	n := endsInOneNFA(t)
	d, err := n.Determinize()
	require.NoError(t, err)

	for _, w := range []string{"", "0", "1", "01", "10", "0101", "1111", "0000"} {
		wantAccept, err := n.Accepts(w)
		require.NoError(t, err)
		gotAccept, err := d.Accepts(w)
		require.NoError(t, err)
		assert.Equal(t, wantAccept, gotAccept, "Accepts(%q) should agree between NFA and its determinization", w)
	}
}
