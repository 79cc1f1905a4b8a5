package attnmt

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/autofunc/functest"
	"github.com/unixpickle/num-analysis/linalg"
)

func TestScore(t *testing.T) {
	m := testModel(t)
	source, target := testSource(m), testTarget(m)
	score, err := m.Score(source, target)
	if err != nil {
		t.Fatal(err)
	}
	if score.Loss < 0 {
		t.Errorf("loss should be non-negative but got %f", score.Loss)
	}
	if score.Words != len(target)-1 {
		t.Errorf("expected %d words but got %d", len(target)-1, score.Words)
	}
	expected := math.Exp(score.Loss / float64(len(target)-1))
	if math.Abs(score.Perplexity-expected) > 1e-8 {
		t.Errorf("perplexity should be %f but got %f", expected, score.Perplexity)
	}

	if _, err := m.Score(source, target[:1]); err == nil {
		t.Error("expected error for a one-word target")
	}
}

func TestScoreNonFinite(t *testing.T) {
	m := testModel(t)
	m.Final.Output.Biases.Var.Vector[0] = math.NaN()
	_, err := m.Score(testSource(m), testTarget(m))
	if !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite but got %v", err)
	}
}

func TestLossMatchesSession(t *testing.T) {
	m := testModel(t)
	source, target := testSource(m), testTarget(m)
	session := m.NewSession(source)
	state := session.Start()
	var expected float64
	for i := 1; i < len(target); i++ {
		state = session.Next(state)
		dist := session.Distribution(target[i-1], state)
		expected -= math.Log(dist[target[i]])
	}
	actual := m.Loss(source, target).Output()[0]
	if math.Abs(actual-expected) > 1e-8 {
		t.Errorf("loss should be %f but got %f", expected, actual)
	}
}

func TestNegLogLikelihood(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for idx := 0; idx < 4; idx++ {
		inVar := &autofunc.Variable{Vector: randomVector(rng, 4)}
		checker := &functest.FuncChecker{
			F:     &nllFunc{Index: idx},
			Vars:  []*autofunc.Variable{inVar},
			Input: inVar,
		}
		checker.FullCheck(t)
	}

	huge := &autofunc.Variable{Vector: linalg.Vector{1000, -1000, 0}}
	out := NegLogLikelihood(huge, 0).Output()[0]
	if math.IsNaN(out) || math.Abs(out) > 1e-8 {
		t.Errorf("unexpected loss for dominant logit: %f", out)
	}
}

func TestSoftmax(t *testing.T) {
	dist := Softmax(linalg.Vector{1000, 1000, math.Inf(-1)})
	expected := []float64{0.5, 0.5, 0}
	for i, x := range expected {
		if math.Abs(dist[i]-x) > 1e-8 {
			t.Errorf("entry %d should be %f but got %f", i, x, dist[i])
		}
	}
}

func TestLossGradient(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
	}
	src := NewVocab()
	src.Encode([]string{"a", "b"}, false)
	tgt := NewVocab()
	tgt.Encode([]string{"x", "y"}, false)
	h := Hyperparameters{
		LayerCount:         2,
		EmbeddingDim:       2,
		HalfAnnotationDim:  2,
		OutputStateDim:     2,
		AlignmentHiddenDim: 2,
		FinalHiddenDim:     3,
	}
	m, err := NewModel(h, src, tgt, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	f := &lossFunc{
		Model:  m,
		Source: src.Encode([]string{"a", "b", "a"}, true),
		Target: tgt.Encode([]string{"y", "x"}, true),
	}
	inVar := &autofunc.Variable{Vector: linalg.Vector{0}}
	checker := &functest.FuncChecker{
		F:     f,
		Vars:  m.Parameters(),
		Input: inVar,
	}
	functest.Check(t, checker)
}

func TestLSTMGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	f := &lstmFunc{LSTM: NewLSTM(rng, 3, 2, 2)}
	inVar := &autofunc.Variable{Vector: randomVector(rng, 12)}
	checker := &functest.FuncChecker{
		F:     f,
		Vars:  append([]*autofunc.Variable{inVar}, f.LSTM.Parameters()...),
		Input: inVar,
	}
	checker.FullCheck(t)
}

type nllFunc struct {
	Index int
}

func (n *nllFunc) Apply(in autofunc.Result) autofunc.Result {
	return NegLogLikelihood(in, n.Index)
}

// lossFunc ignores its input and computes a sentence loss.
type lossFunc struct {
	Model  *Model
	Source []int
	Target []int
}

func (l *lossFunc) Apply(in autofunc.Result) autofunc.Result {
	return l.Model.Loss(l.Source, l.Target)
}

// lstmFunc feeds consecutive chunks of its input to an
// LSTM and concatenates the outputs.
type lstmFunc struct {
	LSTM *LSTM
}

func (l *lstmFunc) Apply(in autofunc.Result) autofunc.Result {
	n := len(in.Output()) / l.LSTM.InputSize
	return autofunc.Pool(in, func(in autofunc.Result) autofunc.Result {
		step := func(t int, prev autofunc.Result) autofunc.Result {
			x := autofunc.Slice(in, t*l.LSTM.InputSize, (t+1)*l.LSTM.InputSize)
			return l.LSTM.Step(prev, x)
		}
		return chain(l.LSTM.Start(), n, step, func(states []autofunc.Result) autofunc.Result {
			var outs []autofunc.Result
			for _, s := range states {
				outs = append(outs, l.LSTM.Output(s))
			}
			return autofunc.Concat(outs...)
		})
	})
}
