package lm

import (
	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/num-analysis/linalg"
	"github.com/unixpickle/weakai/rnn"
)

// A Runner evaluates an rnn.Block one time step at a time.
type Runner struct {
	Block rnn.Block

	curState rnn.State
}

// Reset resets the current state, starting a new
// input sequence.
func (r *Runner) Reset() {
	r.curState = nil
}

// StepTime gives an input vector to the RNN in the
// current state and returns the RNN's output.
// This updates the Runner's internal state, meaning
// the next StepTime works off of the state caused by
// this StepTime.
func (r *Runner) StepTime(input linalg.Vector) linalg.Vector {
	if r.curState == nil {
		r.curState = r.Block.StartState()
	}
	out := r.Block.ApplyBlock([]rnn.State{r.curState},
		[]autofunc.Result{&autofunc.Variable{Vector: input}})
	r.curState = out.States()[0]
	return out.Outputs()[0]
}
