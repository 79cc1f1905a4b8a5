package cmd

import (
	"errors"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unixpickle/attnmt"
	"github.com/unixpickle/essentials"
	"go.uber.org/zap"
)

var trainCmd = &cobra.Command{
	Use:   "train CORPUS",
	Short: "Train a translation model on a parallel corpus",
	Long: `Train a model on a corpus with one "source ||| target" pair per line.

The model is saved after every epoch and when training is interrupted.
Malformed corpus lines are skipped with a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	defaults := attnmt.DefaultHyperparameters()
	flags := trainCmd.Flags()
	flags.String("output", "model.bin", "path for the trained model")
	flags.Int("epochs", 0, "number of passes over the corpus (0 trains until interrupted)")
	flags.Float64("learning-rate", 0.1, "initial learning rate")
	flags.Float64("decay", 0, "learning rate multiplier applied after every epoch (0 disables)")
	flags.String("optimizer", attnmt.OptimizerSGD, "update rule (sgd, adam)")
	flags.Int64("seed", 1, "random seed for initialization and shuffling")
	flags.Int("layers", defaults.LayerCount, "LSTM layers")
	flags.Int("embedding-dim", defaults.EmbeddingDim, "word embedding size")
	flags.Int("half-annotation-dim", defaults.HalfAnnotationDim, "size of each encoder direction")
	flags.Int("output-state-dim", defaults.OutputStateDim, "decoder state size")
	flags.Int("alignment-hidden-dim", defaults.AlignmentHiddenDim, "attention hidden layer size")
	flags.Int("final-hidden-dim", defaults.FinalHiddenDim, "output projection hidden layer size")

	for _, name := range []string{"output", "epochs", "learning-rate", "decay", "optimizer",
		"seed", "layers", "embedding-dim", "half-annotation-dim", "output-state-dim",
		"alignment-hidden-dim", "final-hidden-dim"} {
		mustBindPFlag("train."+name, flags.Lookup(name))
	}
}

func runTrain(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer func() {
		_ = logger.Sync()
	}()
	ctx, cancel := interruptContext(logger)
	defer cancel()

	f, err := os.Open(args[0])
	if err != nil {
		logger.Error("Failed to open corpus", zap.Error(err))
		return err
	}
	bitext, err := attnmt.ReadBitext(f, nil, nil, logger)
	f.Close()
	if err != nil {
		logger.Error("Failed to read corpus", zap.Error(err))
		return err
	}
	logger.Info("Loaded corpus",
		zap.Int("pairs", bitext.Len()),
		zap.Int("source_vocab", bitext.SourceVocab.Len()),
		zap.Int("target_vocab", bitext.TargetVocab.Len()))

	hp := attnmt.Hyperparameters{
		LayerCount:         viper.GetInt("train.layers"),
		EmbeddingDim:       viper.GetInt("train.embedding-dim"),
		HalfAnnotationDim:  viper.GetInt("train.half-annotation-dim"),
		OutputStateDim:     viper.GetInt("train.output-state-dim"),
		AlignmentHiddenDim: viper.GetInt("train.alignment-hidden-dim"),
		FinalHiddenDim:     viper.GetInt("train.final-hidden-dim"),
	}
	rng := rand.New(rand.NewSource(viper.GetInt64("train.seed")))
	model, err := attnmt.NewModel(hp, bitext.SourceVocab, bitext.TargetVocab, rng)
	if err != nil {
		logger.Error("Failed to create model", zap.Error(err))
		return err
	}

	output := viper.GetString("train.output")
	save := func() error {
		if err := attnmt.SaveModelFile(output, model); err != nil {
			logger.Error("Failed to save model", zap.Error(err))
			return err
		}
		logger.Info("Saved model", zap.String("path", output))
		return nil
	}

	trainer := &attnmt.Trainer{
		Model:     model,
		StepSize:  viper.GetFloat64("train.learning-rate"),
		Decay:     viper.GetFloat64("train.decay"),
		Epochs:    viper.GetInt("train.epochs"),
		Optimizer: viper.GetString("train.optimizer"),
		Rand:      rng,
		Logger:    logger,
		EpochDone: func(epoch int, loss float64) error {
			return save()
		},
	}
	err = trainer.Train(ctx, bitext.Pairs)
	if errors.Is(err, attnmt.ErrInterrupted) {
		return save()
	} else if err != nil {
		logger.Error("Training failed", zap.Error(err))
		return essentials.AddCtx("train", err)
	}
	return nil
}
