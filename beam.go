package attnmt

import "math"

// A Hypothesis is a complete translation found by beam
// search.
type Hypothesis struct {
	// Score is the log probability of Words.
	Score float64

	// Words is the translation without a leading <s>.
	// It ends with </s> unless the length limit was hit.
	Words []int
}

type partialHypothesis struct {
	words []int
	state *OutputState
}

// TranslateKBest runs a beam search and returns up to k of
// the best completed translations, best first.
//
// A translation is completed when it emits </s> or reaches
// maxLength words.
// At most beamSize translations are completed, so k is
// effectively capped at beamSize.
// If k is not positive, every completed translation is
// returned.
func (m *Model) TranslateKBest(source []int, k, beamSize, maxLength int) []Hypothesis {
	session := m.NewSession(source)
	completed := NewKBestList[[]int](beamSize)
	top := NewKBestList[*partialHypothesis](beamSize)
	top.Add(0, &partialHypothesis{state: session.Next(session.Start())})

	for round := 0; round < maxLength && top.Len() > 0; round++ {
		next := NewKBestList[*partialHypothesis](beamSize)
		for _, entry := range top.Items() {
			hyp := entry.Item
			prev := BOSID
			if len(hyp.words) > 0 {
				prev = hyp.words[len(hyp.words)-1]
			}
			candidates := NewKBestList[int](beamSize)
			for word, prob := range session.Distribution(prev, hyp.state) {
				candidates.Add(prob, word)
			}
			var successor *OutputState
			for _, candidate := range candidates.Items() {
				words := make([]int, len(hyp.words), len(hyp.words)+1)
				copy(words, hyp.words)
				words = append(words, candidate.Item)
				score := entry.Score + math.Log(candidate.Score)
				if candidate.Item == EOSID || len(words) == maxLength {
					completed.Add(score, words)
					continue
				}
				if successor == nil {
					successor = session.Next(hyp.state)
				}
				next.Add(score, &partialHypothesis{words: words, state: successor})
			}
		}
		top = next
	}

	items := completed.Items()
	if k > 0 && k < len(items) {
		items = items[:k]
	}
	res := make([]Hypothesis, len(items))
	for i, item := range items {
		res[i] = Hypothesis{Score: item.Score, Words: item.Item}
	}
	return res
}

// Translate returns the best translation found by a beam
// search, or nil if maxLength is zero.
func (m *Model) Translate(source []int, beamSize, maxLength int) []int {
	hyps := m.TranslateKBest(source, 1, beamSize, maxLength)
	if len(hyps) == 0 {
		return nil
	}
	return hyps[0].Words
}
