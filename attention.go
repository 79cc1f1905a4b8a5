package attnmt

import (
	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/num-analysis/linalg"
)

// attend scores every annotation against a decoder output
// and returns the weighted sum of the annotations.
//
// If weights is non-nil, it is set to the normalized
// alignment distribution.
//
// The query may be used many times, so it should be cheap
// to back-propagate through (e.g. pooled).
func (m *Model) attend(query autofunc.Result, a *annotations, weights *linalg.Vector) autofunc.Result {
	energies := make([]autofunc.Result, len(a.Vectors))
	for j, h := range a.Vectors {
		energies[j] = m.Aligner.Apply(autofunc.Concat(query, h))
	}
	alignment := softmax(autofunc.Concat(energies...))
	if weights != nil {
		*weights = append(linalg.Vector{}, alignment.Output()...)
	}
	return autofunc.Pool(alignment, func(alignment autofunc.Result) autofunc.Result {
		var context autofunc.Result
		for j, h := range a.Vectors {
			term := autofunc.ScaleFirst(h, autofunc.Slice(alignment, j, j+1))
			if context == nil {
				context = term
			} else {
				context = autofunc.Add(context, term)
			}
		}
		return context
	})
}

// Attend computes the context vector and the alignment
// distribution of a decoder output over a sequence of
// annotation vectors.
func (m *Model) Attend(query linalg.Vector, annotationVecs []linalg.Vector) (context,
	alignment linalg.Vector) {
	if len(annotationVecs) == 0 {
		panic("cannot attend to zero annotations")
	}
	a := &annotations{}
	for _, v := range annotationVecs {
		a.Vectors = append(a.Vectors, &autofunc.Variable{Vector: v})
	}
	q := &autofunc.Variable{Vector: query}
	context = m.attend(q, a, &alignment).Output()
	return
}
