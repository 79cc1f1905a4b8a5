package attnmt

import (
	"math/rand"

	"github.com/unixpickle/num-analysis/linalg"
)

// SampleTranslation draws a random translation from the
// model's distribution, one word at a time.
//
// Sampling stops after </s> or after maxLength words.
// The result is deterministic for a given rng state.
func (m *Model) SampleTranslation(source []int, maxLength int, rng *rand.Rand) []int {
	session := m.NewSession(source)
	state := session.Next(session.Start())
	var res []int
	prev := BOSID
	for prev != EOSID && len(res) < maxLength {
		if len(res) > 0 {
			state = session.Next(state)
		}
		word := SampleIndex(session.Distribution(prev, state), rng.Float64())
		res = append(res, word)
		prev = word
	}
	return res
}

// SampleIndex finds the index at which subtracting the
// probabilities from r makes it negative.
// Rounding error may leave r non-negative after the whole
// distribution, in which case the last index is used.
func SampleIndex(dist linalg.Vector, r float64) int {
	for i, p := range dist {
		r -= p
		if r < 0 {
			return i
		}
	}
	return len(dist) - 1
}
