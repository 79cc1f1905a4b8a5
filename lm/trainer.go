package lm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/unixpickle/attnmt"
	"github.com/unixpickle/autofunc"
	"go.uber.org/zap"
)

// A Trainer fits a Model to sentences with plain SGD.
type Trainer struct {
	Model    *Model
	StepSize float64
	Epochs   int
	Rand     *rand.Rand
	Logger   *zap.Logger

	// SampleLength, if non-zero, makes the trainer log a
	// sampled sentence of at most this many characters
	// after every epoch.
	SampleLength int
}

// Train runs the training loop, checking ctx between
// sentences.
func (t *Trainer) Train(ctx context.Context, sentences [][]int) error {
	if len(sentences) == 0 {
		return errors.New("no training sentences")
	}
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := t.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	params := t.Model.Parameters()
	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	for epoch := 0; t.Epochs == 0 || epoch < t.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		var total float64
		var chars int
		for _, idx := range order {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %v", attnmt.ErrInterrupted, err)
			}
			grad := autofunc.NewGradient(params)
			loss := t.Model.Loss(sentences[idx], grad)
			if math.IsNaN(loss) || math.IsInf(loss, 0) {
				return fmt.Errorf("epoch %d: %w", epoch, attnmt.ErrNonFinite)
			}
			grad.AddToVars(-t.StepSize)
			total += loss
			chars += len(sentences[idx]) - 1
		}
		fields := []zap.Field{
			zap.Int("epoch", epoch),
			zap.Float64("loss", total),
			zap.Float64("perplexity", math.Exp(total/float64(chars))),
		}
		if t.SampleLength > 0 {
			fields = append(fields, zap.String("sample", t.Model.SampleString(t.SampleLength, rng)))
		}
		logger.Info("Finished LM epoch", fields...)
	}
	return nil
}
