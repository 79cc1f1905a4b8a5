package attnmt

import (
	"errors"
	"math"
	"math/rand"

	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/num-analysis/linalg"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/weakai/neuralnet"
)

func init() {
	var m MLP
	serializer.RegisterTypedDeserializer(m.SerializerType(), DeserializeMLP)
}

// An MLP is a two-layer perceptron with a hyperbolic
// tangent hidden layer and a linear output layer.
//
// The attention scorer ("aligner") and the output
// projection ("final") are both MLPs.
type MLP struct {
	Hidden *neuralnet.DenseLayer
	Output *neuralnet.DenseLayer
}

// NewMLP creates a randomly initialized MLP.
func NewMLP(rng *rand.Rand, in, hidden, out int) *MLP {
	return &MLP{
		Hidden: NewDenseLayer(rng, in, hidden),
		Output: NewDenseLayer(rng, hidden, out),
	}
}

// DeserializeMLP deserializes an MLP.
func DeserializeMLP(d []byte) (*MLP, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, err
	}
	if len(slice) != 2 {
		return nil, errors.New("invalid MLP slice")
	}
	hidden, ok1 := slice[0].(*neuralnet.DenseLayer)
	output, ok2 := slice[1].(*neuralnet.DenseLayer)
	if !ok1 || !ok2 {
		return nil, errors.New("invalid MLP slice")
	}
	return &MLP{Hidden: hidden, Output: output}, nil
}

// InputSize returns the expected input vector size.
func (m *MLP) InputSize() int {
	return m.Hidden.InputCount
}

// OutputSize returns the output vector size.
func (m *MLP) OutputSize() int {
	return m.Output.OutputCount
}

// Apply applies the network to an input.
func (m *MLP) Apply(in autofunc.Result) autofunc.Result {
	if len(in.Output()) != m.InputSize() {
		panic("MLP input has the wrong size")
	}
	var tanh neuralnet.HyperbolicTangent
	return m.Output.Apply(tanh.Apply(m.Hidden.Apply(in)))
}

// Parameters returns the weights and biases of both layers.
func (m *MLP) Parameters() []*autofunc.Variable {
	return append(m.Hidden.Parameters(), m.Output.Parameters()...)
}

// SerializerType returns the unique ID used to serialize
// an MLP with the serializer package.
func (m *MLP) SerializerType() string {
	return "github.com/unixpickle/attnmt.MLP"
}

// Serialize serializes both layers.
func (m *MLP) Serialize() ([]byte, error) {
	return serializer.SerializeSlice([]serializer.Serializer{m.Hidden, m.Output})
}

// NewDenseLayer creates a dense layer whose weights are
// drawn from rng, scaled by the fan-in, with zero biases.
func NewDenseLayer(rng *rand.Rand, in, out int) *neuralnet.DenseLayer {
	weights := make(linalg.Vector, in*out)
	scale := 1 / math.Sqrt(float64(in))
	for i := range weights {
		weights[i] = (rng.Float64()*2 - 1) * scale
	}
	return &neuralnet.DenseLayer{
		InputCount:  in,
		OutputCount: out,
		Weights: &autofunc.LinTran{
			Rows: out,
			Cols: in,
			Data: &autofunc.Variable{Vector: weights},
		},
		Biases: &autofunc.LinAdd{
			Var: &autofunc.Variable{Vector: make(linalg.Vector, out)},
		},
	}
}
