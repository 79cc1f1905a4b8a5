package cmd

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unixpickle/attnmt"
	"github.com/unixpickle/attnmt/lm"
	"github.com/unixpickle/serializer"
	"go.uber.org/zap"
)

var lmCmd = &cobra.Command{
	Use:   "lm CORPUS",
	Short: "Train a character language model and print samples",
	Long: `Train a character-level LSTM language model on a corpus with one
sentence per line, save it, and print sampled sentences.`,
	Args: cobra.ExactArgs(1),
	RunE: runLM,
}

func init() {
	rootCmd.AddCommand(lmCmd)

	flags := lmCmd.Flags()
	flags.String("output", "lm.bin", "path for the trained model")
	flags.Int("epochs", 10, "number of passes over the corpus (0 trains until interrupted)")
	flags.Float64("learning-rate", 0.05, "learning rate")
	flags.Int("embedding-dim", 32, "character embedding size")
	flags.Int("hidden-dim", 128, "LSTM hidden size")
	flags.Int("layers", 2, "LSTM layers")
	flags.Int("samples", 5, "number of sentences to sample after training")
	flags.Int("sample-length", 200, "maximum sampled sentence length")
	flags.Int64("seed", 1, "random seed")
	for _, name := range []string{"output", "epochs", "learning-rate", "embedding-dim",
		"hidden-dim", "layers", "samples", "sample-length", "seed"} {
		mustBindPFlag("lm."+name, flags.Lookup(name))
	}
}

func runLM(cmd *cobra.Command, args []string) error {
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
	vocab := attnmt.NewVocab()
	sentences, err := lm.ReadSentences(f, vocab)
	f.Close()
	if err != nil {
		logger.Error("Failed to read corpus", zap.Error(err))
		return err
	}
	logger.Info("Loaded corpus",
		zap.Int("sentences", len(sentences)),
		zap.Int("vocab", vocab.Len()))

	rng := rand.New(rand.NewSource(viper.GetInt64("lm.seed")))
	model := lm.NewModel(vocab, viper.GetInt("lm.embedding-dim"),
		viper.GetInt("lm.hidden-dim"), viper.GetInt("lm.layers"), rng)
	sampleLength := viper.GetInt("lm.sample-length")
	trainer := &lm.Trainer{
		Model:        model,
		StepSize:     viper.GetFloat64("lm.learning-rate"),
		Epochs:       viper.GetInt("lm.epochs"),
		Rand:         rng,
		Logger:       logger,
		SampleLength: sampleLength,
	}
	if err := trainer.Train(ctx, sentences); err != nil &&
		!errors.Is(err, attnmt.ErrInterrupted) {
		logger.Error("Training failed", zap.Error(err))
		return err
	}

	data, err := serializer.SerializeWithType(model)
	if err != nil {
		logger.Error("Failed to serialize model", zap.Error(err))
		return err
	}
	output := viper.GetString("lm.output")
	if err := os.WriteFile(output, data, 0644); err != nil {
		logger.Error("Failed to save model", zap.Error(err))
		return err
	}
	logger.Info("Saved model", zap.String("path", output))

	for i := 0; i < viper.GetInt("lm.samples"); i++ {
		fmt.Fprintln(cmd.OutOrStdout(), model.SampleString(sampleLength, rng))
	}
	return nil
}
