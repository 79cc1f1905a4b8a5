package attnmt

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const trainerTestCorpus = `le chat ||| the cat
le chien ||| the dog
un chat noir ||| a black cat
un chien ||| a dog`

func trainerTestModel(t *testing.T) (*Model, *Bitext) {
	bitext, err := ReadBitext(strings.NewReader(trainerTestCorpus), nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	m, err := NewModel(testHyperparameters(), bitext.SourceVocab, bitext.TargetVocab,
		rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return m, bitext
}

func corpusLoss(m *Model, pairs []SentencePair) float64 {
	var res float64
	for _, p := range pairs {
		res += m.Loss(p.Source, p.Target).Output()[0]
	}
	return res
}

func TestTrainerReducesLoss(t *testing.T) {
	for _, optimizer := range []string{OptimizerSGD, OptimizerAdam} {
		t.Run(optimizer, func(t *testing.T) {
			m, bitext := trainerTestModel(t)
			before := corpusLoss(m, bitext.Pairs)

			var epochs []int
			trainer := &Trainer{
				Model:     m,
				StepSize:  0.05,
				Decay:     0.9,
				Epochs:    10,
				Optimizer: optimizer,
				Rand:      rand.New(rand.NewSource(2)),
				Logger:    zaptest.NewLogger(t),
				EpochDone: func(epoch int, loss float64) error {
					require.True(t, loss > 0)
					epochs = append(epochs, epoch)
					return nil
				},
			}
			if optimizer == OptimizerAdam {
				trainer.StepSize = 0.01
			}
			require.NoError(t, trainer.Train(context.Background(), bitext.Pairs))
			require.Len(t, epochs, 10)

			after := corpusLoss(m, bitext.Pairs)
			require.Less(t, after, before)
		})
	}
}

func TestTrainerInterrupt(t *testing.T) {
	m, bitext := trainerTestModel(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	before := corpusLoss(m, bitext.Pairs)
	trainer := &Trainer{Model: m, StepSize: 0.1, Logger: zaptest.NewLogger(t)}
	err := trainer.Train(ctx, bitext.Pairs)
	require.True(t, errors.Is(err, ErrInterrupted))
	require.Equal(t, before, corpusLoss(m, bitext.Pairs))
}

func TestTrainerErrors(t *testing.T) {
	m, bitext := trainerTestModel(t)
	trainer := &Trainer{Model: m, StepSize: 0.1, Epochs: 1, Optimizer: "rmsprop"}
	require.Error(t, trainer.Train(context.Background(), bitext.Pairs))

	trainer.Optimizer = OptimizerSGD
	require.Error(t, trainer.Train(context.Background(), nil))
}

func TestTrainerEpochDoneError(t *testing.T) {
	m, bitext := trainerTestModel(t)
	saveErr := errors.New("disk full")
	var calls int
	trainer := &Trainer{
		Model:    m,
		StepSize: 0.05,
		Epochs:   5,
		Logger:   zaptest.NewLogger(t),
		EpochDone: func(epoch int, loss float64) error {
			calls++
			return saveErr
		},
	}
	err := trainer.Train(context.Background(), bitext.Pairs)
	require.True(t, errors.Is(err, saveErr))
	require.Equal(t, 1, calls)
}

func TestTrainerNonFinite(t *testing.T) {
	m, bitext := trainerTestModel(t)
	m.Final.Output.Biases.Var.Vector[0] = math.NaN()

	params := m.Parameters()
	before := make([][]uint64, len(params))
	for i, p := range params {
		for _, x := range p.Vector {
			before[i] = append(before[i], math.Float64bits(x))
		}
	}

	trainer := &Trainer{Model: m, StepSize: 0.1, Epochs: 1, Logger: zaptest.NewLogger(t)}
	err := trainer.Train(context.Background(), bitext.Pairs)
	require.True(t, errors.Is(err, ErrNonFinite))

	for i, p := range params {
		for j, x := range p.Vector {
			require.Equal(t, before[i][j], math.Float64bits(x), "parameter %d entry %d", i, j)
		}
	}
}
