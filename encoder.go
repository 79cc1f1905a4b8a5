package attnmt

import (
	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/num-analysis/linalg"
)

// annotations holds the encoded form of a source sentence.
type annotations struct {
	// Vectors has one [forward, reverse] vector per source
	// position.
	Vectors []autofunc.Result

	// ReverseFirst is the reverse encoder's output at the
	// first source position, i.e. after it read the whole
	// sentence.
	ReverseFirst autofunc.Result
}

// encode runs both encoders over a source sentence and
// passes the annotations to k.
// The annotations are only valid inside k.
func (m *Model) encode(source []int, k func(a *annotations) autofunc.Result) autofunc.Result {
	n := len(source)
	if n == 0 {
		panic("cannot encode an empty source sentence")
	}
	embeddings := make([]autofunc.Result, n)
	for i, id := range source {
		embeddings[i] = m.SourceEmbedding.Lookup(id)
	}
	forwardStep := func(t int, prev autofunc.Result) autofunc.Result {
		return m.Forward.Step(prev, embeddings[t])
	}
	reverseStep := func(t int, prev autofunc.Result) autofunc.Result {
		return m.Reverse.Step(prev, embeddings[n-1-t])
	}
	return chain(m.Forward.Start(), n, forwardStep, func(fwd []autofunc.Result) autofunc.Result {
		return chain(m.Reverse.Start(), n, reverseStep, func(rev []autofunc.Result) autofunc.Result {
			if len(fwd) != n || len(rev) != n {
				panic("encoder produced the wrong number of states")
			}
			a := &annotations{
				Vectors:      make([]autofunc.Result, n),
				ReverseFirst: m.Reverse.Output(rev[n-1]),
			}
			for t := range a.Vectors {
				a.Vectors[t] = autofunc.Concat(m.Forward.Output(fwd[t]),
					m.Reverse.Output(rev[n-1-t]))
			}
			return k(a)
		})
	})
}

// annotate encodes a source sentence for inference.
// The resulting annotations are constants which outlive
// the encoding graph.
func (m *Model) annotate(source []int) *annotations {
	var res annotations
	m.encode(source, func(a *annotations) autofunc.Result {
		res.ReverseFirst = constResult(a.ReverseFirst)
		for _, v := range a.Vectors {
			res.Vectors = append(res.Vectors, constResult(v))
		}
		return a.ReverseFirst
	})
	return &res
}

// Annotate returns the annotation vector of every source
// position.
func (m *Model) Annotate(source []int) []linalg.Vector {
	a := m.annotate(source)
	res := make([]linalg.Vector, len(a.Vectors))
	for i, v := range a.Vectors {
		res[i] = v.Output()
	}
	return res
}

func constResult(r autofunc.Result) autofunc.Result {
	return &autofunc.Variable{Vector: append(linalg.Vector{}, r.Output()...)}
}
