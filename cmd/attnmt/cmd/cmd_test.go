package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckTranslateOptions(t *testing.T) {
	require.NoError(t, checkTranslateOptions(1, 0))
	require.NoError(t, checkTranslateOptions(5, 100))
	require.Error(t, checkTranslateOptions(0, 100))
	require.Error(t, checkTranslateOptions(-3, 100))
	require.Error(t, checkTranslateOptions(5, -1))
}

func TestTranslateRejectsZeroBeam(t *testing.T) {
	rootCmd.SetArgs([]string{"--log-style", "noop", "translate", "--beam", "0",
		filepath.Join(t.TempDir(), "model.bin")})
	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "beam width")
}

func TestTrainStopsWhenSaveFails(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(corpus, []byte("a b ||| x y\nb a ||| y x\n"), 0o644))
	output := filepath.Join(dir, "missing", "model.bin")

	rootCmd.SetArgs([]string{"--log-style", "noop", "train", corpus,
		"--output", output,
		"--epochs", "3",
		"--layers", "1",
		"--embedding-dim", "2",
		"--half-annotation-dim", "2",
		"--output-state-dim", "2",
		"--alignment-hidden-dim", "2",
		"--final-hidden-dim", "2",
	})
	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "epoch 0")
	_, statErr := os.Stat(output)
	require.True(t, os.IsNotExist(statErr))
}
