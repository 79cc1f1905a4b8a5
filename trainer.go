package attnmt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/num-analysis/linalg"
	"github.com/unixpickle/sgd"
	"go.uber.org/zap"
)

// ErrInterrupted is returned when training stops because
// its context was canceled.
var ErrInterrupted = errors.New("training interrupted")

// Optimizer names accepted by Trainer.
const (
	OptimizerSGD  = "sgd"
	OptimizerAdam = "adam"
)

// A Trainer fits a Model to a parallel corpus, taking one
// gradient step per sentence pair.
type Trainer struct {
	Model *Model

	// StepSize is the initial learning rate.
	StepSize float64

	// Decay multiplies the learning rate after every epoch.
	// Zero means no decay.
	Decay float64

	// Epochs is the number of passes over the corpus.
	// Zero means train until the context is canceled.
	Epochs int

	// Optimizer is OptimizerSGD (default) or OptimizerAdam.
	Optimizer string

	// Rand shuffles the corpus before every epoch.
	Rand *rand.Rand

	// Logger receives per-epoch statistics. It may be nil.
	Logger *zap.Logger

	// EpochDone, if non-nil, is called after every
	// completed epoch with its total loss.
	// An error from EpochDone stops training.
	EpochDone func(epoch int, loss float64) error
}

// Train runs the training loop on the pairs.
//
// The context is checked between sentences.
// When it is canceled, Train returns an error wrapping
// ErrInterrupted, and the model holds the parameters from
// the last completed step.
// A NaN or infinite sentence loss aborts training with
// ErrNonFinite before the bad gradient is applied.
func (t *Trainer) Train(ctx context.Context, pairs []SentencePair) error {
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := t.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	samples := make(sgd.SliceSampleSet, len(pairs))
	for i, p := range pairs {
		samples[i] = p
	}

	base := &sentenceGradienter{Model: t.Model, Params: t.Model.Parameters()}
	var gradienter sgd.Gradienter = base
	switch t.Optimizer {
	case "", OptimizerSGD:
	case OptimizerAdam:
		gradienter = &sgd.Adam{
			Gradienter: base,
			DecayRate1: 0.9,
			DecayRate2: 0.999,
			Damping:    1e-8,
		}
	default:
		return fmt.Errorf("unknown optimizer: %s", t.Optimizer)
	}

	if len(pairs) == 0 {
		return errors.New("no training pairs")
	}

	stepSize := t.StepSize
	for epoch := 0; t.Epochs == 0 || epoch < t.Epochs; epoch++ {
		shuffleSamples(rng, samples)
		var total float64
		var words int
		for i := 0; i < samples.Len(); i++ {
			if err := ctx.Err(); err != nil {
				logger.Info("Stopping training",
					zap.Int("epoch", epoch),
					zap.Int("sentence", i))
				return fmt.Errorf("%w: %v", ErrInterrupted, err)
			}
			grad := gradienter.Gradient(samples.Subset(i, i+1))
			if math.IsNaN(base.LastLoss) || math.IsInf(base.LastLoss, 0) {
				return fmt.Errorf("epoch %d, sentence %d: %w", epoch, i, ErrNonFinite)
			}
			grad.AddToVars(-stepSize)
			total += base.LastLoss
			words += len(samples[i].(SentencePair).Target) - 1
		}
		fields := []zap.Field{
			zap.Int("epoch", epoch),
			zap.Float64("loss", total),
			zap.Float64("step_size", stepSize),
		}
		if words > 0 {
			fields = append(fields, zap.Float64("perplexity", math.Exp(total/float64(words))))
		}
		logger.Info("Finished epoch", fields...)
		if t.EpochDone != nil {
			if err := t.EpochDone(epoch, total); err != nil {
				return fmt.Errorf("epoch %d: %w", epoch, err)
			}
		}
		if t.Decay > 0 {
			stepSize *= t.Decay
		}
	}
	return nil
}

// sentenceGradienter computes the gradient of the summed
// sentence losses in a batch of SentencePairs.
type sentenceGradienter struct {
	Model  *Model
	Params []*autofunc.Variable

	// LastLoss is the total loss of the last batch.
	LastLoss float64
}

func (s *sentenceGradienter) Gradient(set sgd.SampleSet) autofunc.Gradient {
	grad := autofunc.NewGradient(s.Params)
	s.LastLoss = 0
	for i := 0; i < set.Len(); i++ {
		pair := set.GetSample(i).(SentencePair)
		loss := s.Model.Loss(pair.Source, pair.Target)
		s.LastLoss += loss.Output()[0]
		loss.PropagateGradient(linalg.Vector{1}, grad)
	}
	return grad
}

func shuffleSamples(rng *rand.Rand, s sgd.SampleSet) {
	for i := s.Len() - 1; i > 0; i-- {
		s.Swap(i, rng.Intn(i+1))
	}
}
