package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/unixpickle/attnmt"
	"go.uber.org/zap"
)

var alignCmd = &cobra.Command{
	Use:   "align MODEL",
	Short: "Print attention alignments for sentence pairs on stdin",
	Long: `Force-decode every "source ||| target" line on stdin and print one
row of source weights per target position, followed by a blank line.
Target positions include <s> and </s>; source columns do too.`,
	Args: cobra.ExactArgs(1),
	RunE: runAlign,
}

func init() {
	rootCmd.AddCommand(alignCmd)
}

func runAlign(cmd *cobra.Command, args []string) error {
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
	out := cmd.OutOrStdout()
	return forEachLine(os.Stdin, func(id int, line string) error {
		if ctx.Err() != nil {
			return attnmt.ErrInterrupted
		}
		source, target, err := attnmt.ParsePair(line)
		if err != nil {
			logger.Warn("Skipping input line", zap.Int("id", id), zap.Error(err))
			return nil
		}
		alignment := model.Align(model.SourceVocab.Encode(source, true),
			model.TargetVocab.Encode(target, true))
		for _, row := range alignment {
			cells := make([]string, len(row))
			for i, x := range row {
				cells[i] = fmt.Sprintf("%.4f", x)
			}
			fmt.Fprintln(out, strings.Join(cells, " "))
		}
		fmt.Fprintln(out)
		return nil
	})
}
