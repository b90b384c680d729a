package fsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runLengthToggleFST emits "x" on every "a", flipping a two-state
// parity, and "y" on every "b", leaving the parity unchanged: it doubles
// as a minimal but non-trivial transducer for the validation tests
// below.
func runLengthToggleFST(t *testing.T) *FST {
	t.Helper()
	tf := map[StateSymbolPair]FSTTransition{
		{State: "even", Symbol: "a"}: {Next: "odd", Output: "x"},
		{State: "even", Symbol: "b"}: {Next: "even", Output: "y"},
		{State: "odd", Symbol: "a"}:  {Next: "even", Output: "x"},
		{State: "odd", Symbol: "b"}:  {Next: "odd", Output: "y"},
	}
	f, err := NewFST(tf, "even")
	require.NoError(t, err)
	return f
}

func TestFST_Process(t *testing.T) {
	f := runLengthToggleFST(t)

	out, err := f.Process("aab")
	require.NoError(t, err)
	assert.Equal(t, "xxy", out)

	out, err = f.Process("")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestFST_Process_RejectsOutOfAlphabet(t *testing.T) {
	f := runLengthToggleFST(t)
	_, err := f.Process("ac")
	require.Error(t, err)
}

func TestNewFST_RejectsMissingCase(t *testing.T) {
	tf := map[StateSymbolPair]FSTTransition{
		{State: "q0", Symbol: "a"}: {Next: "q0", Output: "x"},
		{State: "q1", Symbol: "b"}: {Next: "q1", Output: "y"},
		// (q0, "b") and (q1, "a") are both missing now that "b" and "a"
		// are each in the inferred alphabet.
	}
	_, err := NewFST(tf, "q0")
	require.Error(t, err)
}

func TestNewFST_RejectsRangeViolation(t *testing.T) {
	tf := map[StateSymbolPair]FSTTransition{
		{State: "q0", Symbol: "a"}: {Next: "ghost", Output: "x"},
	}
	_, err := NewFST(tf, "q0")
	require.Error(t, err)
}
