package attnmt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// PairSeparator separates the two sides of a sentence pair
// on one line.
const PairSeparator = "|||"

// ErrMalformedLine is returned for lines that are not a
// valid sentence pair.
var ErrMalformedLine = errors.New("malformed sentence pair")

// A SentencePair is a source sentence and its translation,
// both wrapped in BOS and EOS.
type SentencePair struct {
	Source []int
	Target []int
}

// A Bitext is a parallel corpus with the vocabularies used
// to encode it.
type Bitext struct {
	Pairs       []SentencePair
	SourceVocab *Vocab
	TargetVocab *Vocab
}

// Len returns the number of sentence pairs.
func (b *Bitext) Len() int {
	return len(b.Pairs)
}

// Tokenize splits a sentence on whitespace.
func Tokenize(s string) []string {
	return strings.Fields(s)
}

// SplitFields splits a line on the pair separator and
// trims every field.
func SplitFields(line string) []string {
	parts := strings.Split(line, PairSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// ParsePair splits a "source ||| target" line into the
// tokens of each side.
//
// Lines without a separator or with an empty side yield
// ErrMalformedLine. Fields after the second are ignored.
func ParsePair(line string) (source, target []string, err error) {
	parts := SplitFields(line)
	if len(parts) < 2 {
		return nil, nil, fmt.Errorf("%w: missing %q", ErrMalformedLine, PairSeparator)
	}
	source, target = Tokenize(parts[0]), Tokenize(parts[1])
	if len(source) == 0 || len(target) == 0 {
		return nil, nil, fmt.Errorf("%w: empty field", ErrMalformedLine)
	}
	return source, target, nil
}

// ReadBitext reads "source ||| target" lines.
//
// Tokens are added to the vocabularies unless they are
// frozen. Malformed lines are skipped and logged.
// If either vocabulary is nil, a new one is created.
func ReadBitext(r io.Reader, sourceVocab, targetVocab *Vocab,
	logger *zap.Logger) (*Bitext, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sourceVocab == nil {
		sourceVocab = NewVocab()
	}
	if targetVocab == nil {
		targetVocab = NewVocab()
	}
	res := &Bitext{SourceVocab: sourceVocab, TargetVocab: targetVocab}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<24)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		src, tgt, err := ParsePair(line)
		if err != nil {
			logger.Warn("Skipping corpus line",
				zap.Int("line", lineNum),
				zap.Error(err))
			continue
		}
		res.Pairs = append(res.Pairs, SentencePair{
			Source: sourceVocab.Encode(src, true),
			Target: targetVocab.Encode(tgt, true),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
