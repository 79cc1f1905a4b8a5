package attnmt

import (
	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/num-analysis/linalg"
)

// An OutputState is the decoder state and attention
// context for one decoding step.
type OutputState struct {
	pair      linalg.Vector
	alignment linalg.Vector
	model     *Model
}

// State returns the decoder's output vector.
func (o *OutputState) State() linalg.Vector {
	full := &autofunc.Variable{Vector: o.pair[:o.model.Decoder.StateSize()]}
	return o.model.Decoder.Output(full).Output()
}

// Context returns the attention context vector.
func (o *OutputState) Context() linalg.Vector {
	return o.pair[o.model.Decoder.StateSize():]
}

// Alignment returns the normalized attention weights over
// the source positions.
func (o *OutputState) Alignment() linalg.Vector {
	return o.alignment
}

// A Session decodes a single source sentence.
//
// The source is encoded once, when the Session is created.
// OutputStates are immutable, so many hypotheses may share
// and extend the same OutputState.
type Session struct {
	Model  *Model
	Source []int

	annotations *annotations
}

// NewSession encodes a source sentence.
func (m *Model) NewSession(source []int) *Session {
	return &Session{
		Model:       m,
		Source:      source,
		annotations: m.annotate(source),
	}
}

// Start returns the OutputState of the first decoding
// step.
func (s *Session) Start() *OutputState {
	return s.step(s.Model.initialPair(s.annotations))
}

// Next returns the OutputState following o.
func (s *Session) Next(o *OutputState) *OutputState {
	return s.step(&autofunc.Variable{Vector: o.pair})
}

// Replay returns the OutputState after n steps following
// the first one, recomputing every step.
func (s *Session) Replay(n int) *OutputState {
	o := s.Start()
	for i := 0; i < n; i++ {
		o = s.Next(o)
	}
	return o
}

// Logits returns the unnormalized scores of every target
// word following the word prev at step o.
func (s *Session) Logits(prev int, o *OutputState) linalg.Vector {
	return s.Model.logits(prev, &autofunc.Variable{Vector: o.pair}).Output()
}

// Distribution returns the probability of every target
// word following the word prev at step o.
func (s *Session) Distribution(prev int, o *OutputState) linalg.Vector {
	return Softmax(s.Logits(prev, o))
}

func (s *Session) step(prev autofunc.Result) *OutputState {
	res := &OutputState{model: s.Model}
	res.pair = s.Model.advance(prev, s.annotations, &res.alignment).Output()
	return res
}
