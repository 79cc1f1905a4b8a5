// Package lm implements a character-level LSTM language
// model.
package lm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"

	"github.com/unixpickle/attnmt"
	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/autofunc/seqfunc"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/num-analysis/linalg"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/sgd"
	"github.com/unixpickle/weakai/neuralnet"
	"github.com/unixpickle/weakai/rnn"
)

func init() {
	var m Model
	serializer.RegisterTypedDeserializer(m.SerializerType(), DeserializeModel)
}

// SplitChars splits a string into its UTF-8 characters.
func SplitChars(s string) []string {
	var res []string
	for _, r := range s {
		res = append(res, string(r))
	}
	return res
}

// ReadSentences reads one sentence per non-empty line and
// encodes its characters, wrapped in <s> and </s>.
func ReadSentences(r io.Reader, vocab *attnmt.Vocab) ([][]int, error) {
	var res [][]int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<24)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		res = append(res, vocab.Encode(SplitChars(line), true))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// A Model predicts the next character of a sentence from
// the characters before it.
//
// Block maps one-hot character vectors to unnormalized
// next-character scores.
type Model struct {
	Vocab *attnmt.Vocab
	Block rnn.StackedBlock
}

// NewModel creates a model whose parameters are drawn
// from rng.
// The vocabulary is frozen.
func NewModel(vocab *attnmt.Vocab, embeddingDim, hiddenDim, layers int, rng *rand.Rand) *Model {
	if layers < 1 {
		panic("need at least one layer")
	}
	vocab.Freeze()
	embed := neuralnet.Network{attnmt.NewDenseLayer(rng, vocab.Len(), embeddingDim)}
	block := rnn.StackedBlock{rnn.NewNetworkBlock(embed, 0)}
	for i := 0; i < layers; i++ {
		in := hiddenDim
		if i == 0 {
			in = embeddingDim
		}
		block = append(block, newLSTM(rng, in, hiddenDim))
	}
	out := neuralnet.Network{attnmt.NewDenseLayer(rng, hiddenDim, vocab.Len())}
	block = append(block, rnn.NewNetworkBlock(out, 0))
	return &Model{Vocab: vocab, Block: block}
}

// newLSTM creates an rnn.LSTM and redraws its gate
// weights and peepholes from rng.
// Biases keep their defaults.
func newLSTM(rng *rand.Rand, in, hidden int) *rnn.LSTM {
	res := rnn.NewLSTM(in, hidden)
	params := res.Parameters()
	scale := math.Sqrt(3 / float64(in+hidden))
	for _, weights := range []*autofunc.Variable{params[0], params[2], params[4], params[6]} {
		for i := range weights.Vector {
			weights.Vector[i] = (rng.Float64()*2 - 1) * scale
		}
	}
	for _, peephole := range params[9:] {
		for i := range peephole.Vector {
			peephole.Vector[i] = rng.NormFloat64()
		}
	}
	return res
}

// DeserializeModel deserializes a Model.
func DeserializeModel(d []byte) (*Model, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize LM", err)
	}
	if len(slice) < 2 {
		return nil, errors.New("invalid LM slice")
	}
	vocab, ok := slice[0].(*attnmt.Vocab)
	if !ok {
		return nil, errors.New("invalid LM slice")
	}
	res := &Model{Vocab: vocab}
	for _, x := range slice[1:] {
		b, ok := x.(rnn.Block)
		if !ok {
			return nil, errors.New("invalid LM slice")
		}
		res.Block = append(res.Block, b)
	}
	return res, nil
}

// Parameters returns the parameters of every block.
func (m *Model) Parameters() []*autofunc.Variable {
	var res []*autofunc.Variable
	for _, b := range m.Block {
		if l, ok := b.(sgd.Learner); ok {
			res = append(res, l.Parameters()...)
		}
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a Model with the serializer package.
func (m *Model) SerializerType() string {
	return "github.com/unixpickle/attnmt/lm.Model"
}

// Serialize serializes the vocabulary and the blocks.
func (m *Model) Serialize() ([]byte, error) {
	slice := []serializer.Serializer{m.Vocab}
	for _, b := range m.Block {
		s, ok := b.(serializer.Serializer)
		if !ok {
			return nil, fmt.Errorf("block is not a Serializer: %T", b)
		}
		slice = append(slice, s)
	}
	return serializer.SerializeSlice(slice)
}

// Loss computes the negative log-likelihood of a sentence
// wrapped in <s> and </s>, adding its gradient to g if g
// is non-nil.
func (m *Model) Loss(sentence []int, g autofunc.Gradient) float64 {
	if len(sentence) < 2 {
		panic("sentence needs at least two tokens")
	}
	inputs := make([]linalg.Vector, len(sentence)-1)
	for i, id := range sentence[:len(sentence)-1] {
		inputs[i] = m.oneHot(id)
	}
	sf := &rnn.BlockSeqFunc{B: m.Block}
	out := sf.ApplySeqs(seqfunc.ConstResult([][]linalg.Vector{inputs}))
	var loss float64
	upstream := make([]linalg.Vector, len(inputs))
	for t, logits := range out.OutputSeqs()[0] {
		v := &autofunc.Variable{Vector: logits}
		nll := attnmt.NegLogLikelihood(v, sentence[t+1])
		loss += nll.Output()[0]
		if g != nil {
			vg := autofunc.NewGradient([]*autofunc.Variable{v})
			nll.PropagateGradient(linalg.Vector{1}, vg)
			upstream[t] = vg[v]
		}
	}
	if g != nil {
		out.PropagateGradient([][]linalg.Vector{upstream}, g)
	}
	return loss
}

// Sample generates a sentence, one character at a time.
// Sampling stops after </s> or maxLength characters; the
// result excludes the sentinels.
// The model never emits <s>; the other characters keep
// their relative probabilities.
func (m *Model) Sample(maxLength int, rng *rand.Rand) []int {
	runner := &Runner{Block: m.Block}
	var res []int
	prev := attnmt.BOSID
	for len(res) < maxLength {
		logits := runner.StepTime(m.oneHot(prev)).Copy()
		logits[attnmt.BOSID] = math.Inf(-1)
		word := attnmt.SampleIndex(attnmt.Softmax(logits), rng.Float64())
		if word == attnmt.EOSID {
			break
		}
		res = append(res, word)
		prev = word
	}
	return res
}

// SampleString generates a sentence and decodes it.
func (m *Model) SampleString(maxLength int, rng *rand.Rand) string {
	return strings.Join(m.Vocab.Decode(m.Sample(maxLength, rng)), "")
}

func (m *Model) oneHot(id int) linalg.Vector {
	res := make(linalg.Vector, m.Vocab.Len())
	res[id] = 1
	return res
}
