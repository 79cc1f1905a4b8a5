// Package attnmt implements neural machine translation
// with a bidirectional recurrent encoder and a decoder
// that softly attends to the encoded source sentence.
//
// Models can be trained on parallel corpora, used to
// translate with beam search or sampling, to score
// sentence pairs, and to extract word alignments.
package attnmt

import "github.com/unixpickle/autofunc"

// A Recurrent is a differentiable state machine whose
// entire state is stored in one vector.
type Recurrent interface {
	// StateSize is the size of state vectors.
	StateSize() int

	// Start returns the state before any input.
	Start() autofunc.Result

	// Step applies an input vector to a state and returns
	// the resulting state.
	Step(state, in autofunc.Result) autofunc.Result

	// Output extracts the externally visible part of a
	// state.
	Output(state autofunc.Result) autofunc.Result
}
