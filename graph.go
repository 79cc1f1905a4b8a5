package attnmt

import (
	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/num-analysis/linalg"
	"github.com/unixpickle/weakai/neuralnet"
)

// chain evaluates a recurrence for n steps and passes the
// resulting states to k.
//
// Every state is pooled, so back-propagating through the
// result visits each step once even though later steps
// (and k) may use a state many times.
// The states given to k are only valid inside k.
func chain(start autofunc.Result, n int, step func(t int, prev autofunc.Result) autofunc.Result,
	k func(states []autofunc.Result) autofunc.Result) autofunc.Result {
	states := make([]autofunc.Result, 0, n)
	var loop func(t int, prev autofunc.Result) autofunc.Result
	loop = func(t int, prev autofunc.Result) autofunc.Result {
		if t == n {
			return k(states)
		}
		return autofunc.Pool(step(t, prev), func(s autofunc.Result) autofunc.Result {
			states = append(states, s)
			return loop(t+1, s)
		})
	}
	return autofunc.Pool(start, func(start autofunc.Result) autofunc.Result {
		return loop(0, start)
	})
}

// sumAll adds up one-dimensional results.
// The sum of no results is a constant zero.
func sumAll(rs []autofunc.Result) autofunc.Result {
	if len(rs) == 0 {
		return &autofunc.Variable{Vector: linalg.Vector{0}}
	}
	sum := rs[0]
	for _, r := range rs[1:] {
		sum = autofunc.Add(sum, r)
	}
	return sum
}

// logSoftmax computes the log of the softmax of a vector
// without overflowing on large entries.
func logSoftmax(in autofunc.Result) autofunc.Result {
	var layer neuralnet.LogSoftmaxLayer
	return layer.Apply(in)
}

// softmax is the exponential of logSoftmax.
func softmax(in autofunc.Result) autofunc.Result {
	return autofunc.Exp{}.Apply(logSoftmax(in))
}

// Softmax normalizes a vector of unnormalized log
// probabilities.
// Entries of negative infinity get probability zero.
func Softmax(logits linalg.Vector) linalg.Vector {
	return softmax(&autofunc.Variable{Vector: logits}).Output()
}

// NegLogLikelihood returns -log(softmax(logits)[idx]) as a
// one-dimensional result.
func NegLogLikelihood(logits autofunc.Result, idx int) autofunc.Result {
	if idx < 0 || idx >= len(logits.Output()) {
		panic("likelihood index out of range")
	}
	return autofunc.Scale(autofunc.Slice(logSoftmax(logits), idx, idx+1), -1)
}
