package attnmt

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/sgd"
	"github.com/unixpickle/weakai/neuralnet"
)

func init() {
	var m Model
	serializer.RegisterTypedDeserializer(m.SerializerType(), DeserializeModel)
}

// Hyperparameters describe the architecture of a Model.
type Hyperparameters struct {
	// LayerCount is the number of layers in every LSTM.
	LayerCount int

	// EmbeddingDim is the size of both source and target
	// word embeddings.
	EmbeddingDim int

	// HalfAnnotationDim is the size of the forward and the
	// reverse encoder states. Annotations are twice as big.
	HalfAnnotationDim int

	// OutputStateDim is the size of the decoder state.
	OutputStateDim int

	// AlignmentHiddenDim is the hidden size of the aligner.
	AlignmentHiddenDim int

	// FinalHiddenDim is the hidden size of the output
	// projection.
	FinalHiddenDim int
}

// DefaultHyperparameters returns the default architecture.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		LayerCount:         2,
		EmbeddingDim:       101,
		HalfAnnotationDim:  501,
		OutputStateDim:     103,
		AlignmentHiddenDim: 97,
		FinalHiddenDim:     107,
	}
}

// Validate checks that every dimension is positive.
func (h Hyperparameters) Validate() error {
	for _, x := range h.ints() {
		if x <= 0 {
			return fmt.Errorf("invalid hyperparameters: %+v", h)
		}
	}
	return nil
}

func (h Hyperparameters) ints() []int {
	return []int{h.LayerCount, h.EmbeddingDim, h.HalfAnnotationDim, h.OutputStateDim,
		h.AlignmentHiddenDim, h.FinalHiddenDim}
}

// A Model is an attentional encoder-decoder translation
// model together with its vocabularies.
//
// A Model may be shared for inference, but it must not be
// used while a Trainer is updating it.
type Model struct {
	Hyperparameters

	SourceVocab *Vocab
	TargetVocab *Vocab

	SourceEmbedding *Embedding
	TargetEmbedding *Embedding

	// Forward and Reverse encode the source sentence in
	// each direction.
	Forward Recurrent
	Reverse Recurrent

	// Decoder is fed the attention context of the previous
	// step.
	Decoder Recurrent

	// Aligner scores a [decoder state, annotation] pair.
	Aligner *MLP

	// Initializer maps the reverse encoder's output at the
	// first source position to the decoder's first input.
	// A tanh is applied to its output.
	Initializer *neuralnet.DenseLayer

	// Final maps [previous word embedding, decoder state,
	// context] to unnormalized target word scores.
	Final *MLP
}

// NewModel creates a randomly initialized model.
// Both vocabularies are frozen, since their sizes determine
// the model's shape.
func NewModel(h Hyperparameters, sourceVocab, targetVocab *Vocab, rng *rand.Rand) (*Model, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	sourceVocab.Freeze()
	targetVocab.Freeze()
	annotationDim := 2 * h.HalfAnnotationDim
	return &Model{
		Hyperparameters: h,

		SourceVocab: sourceVocab,
		TargetVocab: targetVocab,

		SourceEmbedding: NewEmbedding(rng, sourceVocab.Len(), h.EmbeddingDim, 0.1),
		TargetEmbedding: NewEmbedding(rng, targetVocab.Len(), h.EmbeddingDim, 0.1),

		Forward: NewLSTM(rng, h.EmbeddingDim, h.HalfAnnotationDim, h.LayerCount),
		Reverse: NewLSTM(rng, h.EmbeddingDim, h.HalfAnnotationDim, h.LayerCount),
		Decoder: NewLSTM(rng, annotationDim, h.OutputStateDim, h.LayerCount),

		Aligner:     NewMLP(rng, h.OutputStateDim+annotationDim, h.AlignmentHiddenDim, 1),
		Initializer: NewDenseLayer(rng, h.HalfAnnotationDim, annotationDim),
		Final: NewMLP(rng, h.EmbeddingDim+h.OutputStateDim+annotationDim, h.FinalHiddenDim,
			targetVocab.Len()),
	}, nil
}

// DeserializeModel deserializes a Model.
func DeserializeModel(d []byte) (*Model, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Model", err)
	}
	var h Hyperparameters
	numInts := len(h.ints())
	if len(slice) != numInts+10 {
		return nil, errors.New("invalid Model slice")
	}
	ints := make([]int, numInts)
	for i := range ints {
		x, ok := slice[i].(serializer.Int)
		if !ok {
			return nil, errors.New("invalid Model slice")
		}
		ints[i] = int(x)
	}
	h = Hyperparameters{
		LayerCount:         ints[0],
		EmbeddingDim:       ints[1],
		HalfAnnotationDim:  ints[2],
		OutputStateDim:     ints[3],
		AlignmentHiddenDim: ints[4],
		FinalHiddenDim:     ints[5],
	}
	rest := slice[numInts:]
	res := &Model{Hyperparameters: h}
	var ok [10]bool
	res.SourceVocab, ok[0] = rest[0].(*Vocab)
	res.TargetVocab, ok[1] = rest[1].(*Vocab)
	res.SourceEmbedding, ok[2] = rest[2].(*Embedding)
	res.TargetEmbedding, ok[3] = rest[3].(*Embedding)
	res.Forward, ok[4] = rest[4].(Recurrent)
	res.Reverse, ok[5] = rest[5].(Recurrent)
	res.Decoder, ok[6] = rest[6].(Recurrent)
	res.Aligner, ok[7] = rest[7].(*MLP)
	res.Initializer, ok[8] = rest[8].(*neuralnet.DenseLayer)
	res.Final, ok[9] = rest[9].(*MLP)
	for _, x := range ok {
		if !x {
			return nil, errors.New("invalid Model slice")
		}
	}
	if res.SourceEmbedding.Rows != res.SourceVocab.Len() ||
		res.TargetEmbedding.Rows != res.TargetVocab.Len() ||
		res.Final.OutputSize() != res.TargetVocab.Len() {
		return nil, errors.New("model does not match its vocabularies")
	}
	return res, nil
}

// Parameters returns every learned parameter.
func (m *Model) Parameters() []*autofunc.Variable {
	var res []*autofunc.Variable
	for _, x := range []interface{}{m.SourceEmbedding, m.TargetEmbedding, m.Forward,
		m.Reverse, m.Decoder, m.Aligner, m.Initializer, m.Final} {
		if l, ok := x.(sgd.Learner); ok {
			res = append(res, l.Parameters()...)
		}
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a Model with the serializer package.
func (m *Model) SerializerType() string {
	return "github.com/unixpickle/attnmt.Model"
}

// Serialize serializes the hyperparameters, vocabularies
// and parameters.
// The recurrent components must be serializer.Serializers.
func (m *Model) Serialize() ([]byte, error) {
	var slice []serializer.Serializer
	for _, x := range m.Hyperparameters.ints() {
		slice = append(slice, serializer.Int(x))
	}
	for _, x := range []interface{}{m.SourceVocab, m.TargetVocab, m.SourceEmbedding,
		m.TargetEmbedding, m.Forward, m.Reverse, m.Decoder, m.Aligner, m.Initializer,
		m.Final} {
		s, ok := x.(serializer.Serializer)
		if !ok {
			return nil, fmt.Errorf("model component is not a Serializer: %T", x)
		}
		slice = append(slice, s)
	}
	return serializer.SerializeSlice(slice)
}
