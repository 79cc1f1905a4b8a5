package attnmt

import (
	"math"
	"testing"
)

func TestSessionReplay(t *testing.T) {
	m := testModel(t)
	session := m.NewSession(testSource(m))
	state := session.Start()
	for i := 0; i < 4; i++ {
		replayed := session.Replay(i)
		if !statesEqual(state.pair, replayed.pair) {
			t.Errorf("step %d: cached state differs from replay", i)
		}
		if !statesEqual(state.Alignment(), replayed.Alignment()) {
			t.Errorf("step %d: cached alignment differs from replay", i)
		}
		if len(state.State()) != m.OutputStateDim {
			t.Errorf("step %d: state has size %d", i, len(state.State()))
		}
		if len(state.Context()) != 2*m.HalfAnnotationDim {
			t.Errorf("step %d: context has size %d", i, len(state.Context()))
		}
		requireDistribution(t, "distribution", session.Distribution(BOSID, state),
			m.TargetVocab.Len())
		state = session.Next(state)
	}
}

func TestTranslateKBest(t *testing.T) {
	m := testModel(t)
	source := testSource(m)
	for _, beam := range []int{1, 2, 4} {
		for _, maxLength := range []int{1, 3, 6} {
			hyps := m.TranslateKBest(source, 0, beam, maxLength)
			if len(hyps) == 0 || len(hyps) > beam {
				t.Errorf("beam %d: got %d hypotheses", beam, len(hyps))
			}
			for i, hyp := range hyps {
				n := len(hyp.Words)
				if n == 0 || n > maxLength {
					t.Errorf("beam %d: hypothesis %d has length %d", beam, i, n)
				} else if hyp.Words[n-1] != EOSID && n != maxLength {
					t.Errorf("beam %d: hypothesis %d is incomplete: %v", beam, i, hyp.Words)
				}
				if i > 0 && hyp.Score > hyps[i-1].Score {
					t.Errorf("beam %d: hypotheses are not sorted", beam)
				}
				if hyp.Score > 0 {
					t.Errorf("beam %d: log probability %f is positive", beam, hyp.Score)
				}
			}
		}
	}

	if len(m.TranslateKBest(source, 2, 4, 6)) > 2 {
		t.Error("k was not respected")
	}
	if m.Translate(source, 3, 0) != nil {
		t.Error("zero-length translation should be nil")
	}
}

func TestTranslateBeamOneIsGreedy(t *testing.T) {
	m := testModel(t)
	source := testSource(m)
	const maxLength = 7

	session := m.NewSession(source)
	state := session.Next(session.Start())
	var expected []int
	var expectedScore float64
	prev := BOSID
	for len(expected) < maxLength {
		if len(expected) > 0 {
			state = session.Next(state)
		}
		dist := session.Distribution(prev, state)
		best := 0
		for i, p := range dist {
			if p > dist[best] {
				best = i
			}
		}
		expected = append(expected, best)
		expectedScore += math.Log(dist[best])
		prev = best
		if best == EOSID {
			break
		}
	}

	hyps := m.TranslateKBest(source, 1, 1, maxLength)
	if len(hyps) != 1 {
		t.Fatalf("expected one hypothesis but got %d", len(hyps))
	}
	actual := hyps[0].Words
	if len(actual) != len(expected) {
		t.Fatalf("expected %v but got %v", expected, actual)
	}
	for i, x := range expected {
		if actual[i] != x {
			t.Fatalf("expected %v but got %v", expected, actual)
		}
	}
	if math.Abs(hyps[0].Score-expectedScore) > 1e-8 {
		t.Errorf("score should be %f but got %f", expectedScore, hyps[0].Score)
	}
}
