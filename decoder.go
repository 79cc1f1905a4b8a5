package attnmt

import (
	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/num-analysis/linalg"
	"github.com/unixpickle/weakai/neuralnet"
)

// A decoder pair is a single vector holding the decoder's
// full recurrent state followed by the attention context
// computed from that state.
//
// The first pair has the decoder's start state and, in
// place of a context, the projected reverse encoding, so
// that every step is "feed the previous context".

// initialPair returns the pair that precedes the first
// decoder step.
func (m *Model) initialPair(a *annotations) autofunc.Result {
	var tanh neuralnet.HyperbolicTangent
	return autofunc.Concat(m.Decoder.Start(), tanh.Apply(m.Initializer.Apply(a.ReverseFirst)))
}

// advance computes the next decoder pair.
// If weights is non-nil, it is set to the alignment
// distribution of the new step.
func (m *Model) advance(prev autofunc.Result, a *annotations, weights *linalg.Vector) autofunc.Result {
	stateSize := m.Decoder.StateSize()
	prevState := autofunc.Slice(prev, 0, stateSize)
	prevContext := autofunc.Slice(prev, stateSize, len(prev.Output()))
	next := m.Decoder.Step(prevState, prevContext)
	return autofunc.Pool(next, func(next autofunc.Result) autofunc.Result {
		context := m.attend(m.Decoder.Output(next), a, weights)
		return autofunc.Concat(next, context)
	})
}

// logits applies the output projection to a pair given the
// previous target word.
func (m *Model) logits(prev int, pair autofunc.Result) autofunc.Result {
	stateSize := m.Decoder.StateSize()
	state := m.Decoder.Output(autofunc.Slice(pair, 0, stateSize))
	context := autofunc.Slice(pair, stateSize, len(pair.Output()))
	return m.Final.Apply(autofunc.Concat(m.TargetEmbedding.Lookup(prev), state, context))
}
