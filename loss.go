package attnmt

import (
	"errors"
	"fmt"
	"math"

	"github.com/unixpickle/autofunc"
)

// ErrNonFinite is returned when a loss is NaN or infinite.
var ErrNonFinite = errors.New("non-finite loss")

// Loss builds the negative log-likelihood of a target
// sentence given a source sentence, feeding the reference
// words to the decoder.
//
// The target should start with <s>; every following word
// contributes one term.
// The result is a one-dimensional autofunc.Result that can
// be back-propagated to the model's parameters.
func (m *Model) Loss(source, target []int) autofunc.Result {
	if len(target) == 0 {
		panic("cannot compute the loss of an empty target")
	}
	return m.encode(source, func(a *annotations) autofunc.Result {
		step := func(t int, prev autofunc.Result) autofunc.Result {
			return m.advance(prev, a, nil)
		}
		return chain(m.initialPair(a), len(target), step, func(pairs []autofunc.Result) autofunc.Result {
			terms := make([]autofunc.Result, 0, len(target)-1)
			for t := 1; t < len(target); t++ {
				logits := m.logits(target[t-1], pairs[t])
				terms = append(terms, NegLogLikelihood(logits, target[t]))
			}
			return sumAll(terms)
		})
	})
}

// A Score summarizes the likelihood of a sentence pair.
type Score struct {
	// Loss is the negative log-likelihood of the target.
	Loss float64

	// Words is the number of predicted target words,
	// including </s> but not <s>.
	Words int

	// Perplexity is exp(Loss/Words).
	Perplexity float64
}

// Score computes the loss and perplexity of a target
// sentence wrapped in <s> and </s>.
func (m *Model) Score(source, target []int) (Score, error) {
	if len(target) < 2 {
		return Score{}, fmt.Errorf("target has %d words, need at least 2", len(target))
	}
	loss := m.Loss(source, target).Output()[0]
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return Score{}, ErrNonFinite
	}
	words := len(target) - 1
	return Score{
		Loss:       loss,
		Words:      words,
		Perplexity: math.Exp(loss / float64(words)),
	}, nil
}
