package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unixpickle/attnmt"
	"go.uber.org/zap"
)

var scoreCmd = &cobra.Command{
	Use:   "score MODEL",
	Short: "Score sentence pairs read from stdin",
	Long: `Compute the loss of every "source ||| reference" line on stdin and
print "id loss perplexity". Malformed lines are skipped with a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().Bool("reverse", false, "swap the source and reference columns")
	mustBindPFlag("score.reverse", scoreCmd.Flags().Lookup("reverse"))
}

func runScore(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer func() {
		_ = logger.Sync()
	}()
	ctx, cancel := interruptContext(logger)
	defer cancel()

	model, err := attnmt.LoadModelFile(args[0])
	if err != nil {
		logger.Error("Failed to load model", zap.Error(err))
		return err
	}
	reverse := viper.GetBool("score.reverse")
	out := cmd.OutOrStdout()

	var totalLoss float64
	var totalWords int
	err = forEachLine(os.Stdin, func(id int, line string) error {
		if ctx.Err() != nil {
			return attnmt.ErrInterrupted
		}
		source, reference, err := attnmt.ParsePair(line)
		if err != nil {
			logger.Warn("Skipping input line", zap.Int("id", id), zap.Error(err))
			return nil
		}
		if reverse {
			source, reference = reference, source
		}
		score, err := model.Score(model.SourceVocab.Encode(source, true),
			model.TargetVocab.Encode(reference, true))
		if err != nil {
			logger.Error("Failed to score line", zap.Int("id", id), zap.Error(err))
			return err
		}
		totalLoss += score.Loss
		totalWords += score.Words
		fmt.Fprintf(out, "%d %f %f\n", id, score.Loss, score.Perplexity)
		return nil
	})
	if err != nil {
		return err
	}
	if totalWords > 0 {
		logger.Info("Scored corpus",
			zap.Float64("loss", totalLoss),
			zap.Int("words", totalWords),
			zap.Float64("perplexity", math.Exp(totalLoss/float64(totalWords))))
	}
	return nil
}
