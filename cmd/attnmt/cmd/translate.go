package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unixpickle/attnmt"
	"go.uber.org/zap"
)

var translateCmd = &cobra.Command{
	Use:   "translate MODEL",
	Short: "Translate sentences read from stdin",
	Long: `Translate one sentence per stdin line. Lines may also have the
form "source ||| reference", in which case the reference is ignored.

Every k-best entry is printed as "id ||| translation ||| score".`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	flags := translateCmd.Flags()
	flags.Int("beam", 5, "beam width")
	flags.Int("max-length", 100, "maximum translation length")
	flags.Int("kbest", 1, "number of translations to print per sentence")
	flags.Bool("sample", false, "sample translations instead of searching")
	flags.Int64("seed", 1, "random seed for sampling")
	for _, name := range []string{"beam", "max-length", "kbest", "sample", "seed"} {
		mustBindPFlag("translate."+name, flags.Lookup(name))
	}
}

func runTranslate(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer func() {
		_ = logger.Sync()
	}()
	ctx, cancel := interruptContext(logger)
	defer cancel()

	beam := viper.GetInt("translate.beam")
	maxLength := viper.GetInt("translate.max-length")
	kbest := viper.GetInt("translate.kbest")
	sample := viper.GetBool("translate.sample")
	if err := checkTranslateOptions(beam, maxLength); err != nil {
		logger.Error("Invalid options", zap.Error(err))
		return err
	}

	model, err := attnmt.LoadModelFile(args[0])
	if err != nil {
		logger.Error("Failed to load model", zap.Error(err))
		return err
	}

	rng := rand.New(rand.NewSource(viper.GetInt64("translate.seed")))
	out := cmd.OutOrStdout()

	return forEachLine(os.Stdin, func(id int, line string) error {
		if ctx.Err() != nil {
			return attnmt.ErrInterrupted
		}
		sourceText := attnmt.SplitFields(line)[0]
		source := model.SourceVocab.Encode(attnmt.Tokenize(sourceText), true)
		if sample {
			for i := 0; i < kbest; i++ {
				words := model.SampleTranslation(source, maxLength, rng)
				fmt.Fprintf(out, "%d ||| %s\n", id, decodeWords(model, words))
			}
			return nil
		}
		for _, hyp := range model.TranslateKBest(source, kbest, beam, maxLength) {
			fmt.Fprintf(out, "%d ||| %s ||| %f\n", id, decodeWords(model, hyp.Words), hyp.Score)
		}
		return nil
	})
}

func checkTranslateOptions(beam, maxLength int) error {
	if beam < 1 {
		return fmt.Errorf("beam width must be at least 1, got %d", beam)
	}
	if maxLength < 0 {
		return fmt.Errorf("max length must not be negative, got %d", maxLength)
	}
	return nil
}

func decodeWords(model *attnmt.Model, words []int) string {
	return strings.Join(model.TargetVocab.Decode(words), " ")
}
