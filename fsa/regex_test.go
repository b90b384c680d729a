package fsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit_EndsInOne(t *testing.T) {
	n, err := Fit("(0|1)*1", []Symbol{"0", "1"})
	require.NoError(t, err)

	for _, c := range []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"01", true},
		{"001101", true},
		{"", false},
		{"0", false},
		{"10", false},
	} {
		got, err := n.Accepts(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "Accepts(%q)", c.in)
	}
}

func TestFit_ImplicitConcat(t *testing.T) {
	n, err := Fit("ab*c", []Symbol{"a", "b", "c"})
	require.NoError(t, err)

	for _, c := range []struct {
		in   string
		want bool
	}{
		{"ac", true},
		{"abc", true},
		{"abbbbc", true},
		{"a", false},
		{"bc", false},
	} {
		got, err := n.Accepts(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "Accepts(%q)", c.in)
	}
}

func TestFit_EmptyString(t *testing.T) {
	n, err := Fit("€", []Symbol{"a"})
	require.NoError(t, err)

	got, err := n.Accepts("")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = n.Accepts("a")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestFit_EmptyLanguage(t *testing.T) {
	n, err := Fit("Ø", []Symbol{"a"})
	require.NoError(t, err)

	got, err := n.Accepts("")
	require.NoError(t, err)
	assert.False(t, got)

	got, err = n.Accepts("a")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestFit_DefaultAlphabet(t *testing.T) {
	n, err := Fit("x|y", nil)
	require.NoError(t, err)

	got, err := n.Accepts("x")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestFit_RejectsReservedAlphabetSymbol(t *testing.T) {
	_, err := Fit("a", []Symbol{"a", "("})
	require.Error(t, err)
}

func TestFit_RejectsOutOfAlphabetInput(t *testing.T) {
	_, err := Fit("a+b", []Symbol{"a", "b"})
	require.Error(t, err)
}

func TestFit_RejectsDoubleBinaryOperator(t *testing.T) {
	_, err := Fit("a||b", []Symbol{"a", "b"})
	require.Error(t, err)
}

func TestFit_RejectsMismatchedParens(t *testing.T) {
	_, err := Fit("(a|b", []Symbol{"a", "b"})
	require.Error(t, err)

	_, err = Fit("a|b)", []Symbol{"a", "b"})
	require.Error(t, err)
}
