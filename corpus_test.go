package attnmt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParsePair(t *testing.T) {
	src, tgt, err := ParsePair("  le chat ||| the cat ")
	require.NoError(t, err)
	require.Equal(t, []string{"le", "chat"}, src)
	require.Equal(t, []string{"the", "cat"}, tgt)

	_, _, err = ParsePair("no separator here")
	require.True(t, errors.Is(err, ErrMalformedLine))

	_, _, err = ParsePair("le chat |||   ")
	require.True(t, errors.Is(err, ErrMalformedLine))

	src, tgt, err = ParsePair("a ||| b ||| extra")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, src)
	require.Equal(t, []string{"b"}, tgt)
}

func TestReadBitext(t *testing.T) {
	corpus := strings.Join([]string{
		"le chat ||| the cat",
		"",
		"broken line",
		"le chien ||| the dog",
	}, "\n")
	bitext, err := ReadBitext(strings.NewReader(corpus), nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, 2, bitext.Len())

	first := bitext.Pairs[0]
	require.Equal(t, BOSID, first.Source[0])
	require.Equal(t, EOSID, first.Source[len(first.Source)-1])
	require.Equal(t, []string{"the", "cat"}, bitext.TargetVocab.Decode(first.Target))

	// "le" is shared, so the source vocab has 3 new words.
	require.Equal(t, 6, bitext.SourceVocab.Len())
	require.Equal(t, bitext.Pairs[0].Source[1], bitext.Pairs[1].Source[1])
}

func TestReadBitextFrozen(t *testing.T) {
	src := NewVocab()
	src.Encode([]string{"le"}, false)
	src.Freeze()
	bitext, err := ReadBitext(strings.NewReader("le oiseau ||| the bird"), src, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []int{BOSID, 3, UnknownID, EOSID}, bitext.Pairs[0].Source)
	require.Equal(t, 4, src.Len())
}
