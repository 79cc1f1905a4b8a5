package attnmt

import (
	"errors"
	"math/rand"

	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/num-analysis/linalg"
	"github.com/unixpickle/serializer"
	"github.com/unixpickle/weakai/neuralnet"
)

func init() {
	var l LSTM
	serializer.RegisterTypedDeserializer(l.SerializerType(), DeserializeLSTM)
}

// An LSTM is a stack of long short-term memory layers.
//
// The state of the whole stack is a single vector holding,
// for every layer in order, the hidden vector followed by
// the cell vector.
// The output of a state is the top layer's hidden vector.
type LSTM struct {
	InputSize  int
	HiddenSize int

	// Layers maps [input, hidden] to the concatenated
	// input, forget, output and candidate gates.
	Layers []*neuralnet.DenseLayer
}

// NewLSTM creates a randomly initialized LSTM.
// Forget gate biases start at one.
func NewLSTM(rng *rand.Rand, inputSize, hiddenSize, layers int) *LSTM {
	res := &LSTM{InputSize: inputSize, HiddenSize: hiddenSize}
	for i := 0; i < layers; i++ {
		in := hiddenSize
		if i == 0 {
			in = inputSize
		}
		layer := NewDenseLayer(rng, in+hiddenSize, 4*hiddenSize)
		biases := layer.Parameters()[1].Vector
		for j := hiddenSize; j < 2*hiddenSize; j++ {
			biases[j] = 1
		}
		res.Layers = append(res.Layers, layer)
	}
	return res
}

// DeserializeLSTM deserializes an LSTM.
func DeserializeLSTM(d []byte) (*LSTM, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, err
	}
	if len(slice) < 3 {
		return nil, errors.New("invalid LSTM slice")
	}
	inSize, ok1 := slice[0].(serializer.Int)
	hiddenSize, ok2 := slice[1].(serializer.Int)
	if !ok1 || !ok2 {
		return nil, errors.New("invalid LSTM slice")
	}
	res := &LSTM{InputSize: int(inSize), HiddenSize: int(hiddenSize)}
	for _, x := range slice[2:] {
		layer, ok := x.(*neuralnet.DenseLayer)
		if !ok {
			return nil, errors.New("invalid LSTM slice")
		}
		res.Layers = append(res.Layers, layer)
	}
	return res, nil
}

// StateSize returns the size of a state vector.
func (l *LSTM) StateSize() int {
	return 2 * l.HiddenSize * len(l.Layers)
}

// Start returns the all-zero start state.
func (l *LSTM) Start() autofunc.Result {
	return &autofunc.Variable{Vector: make(linalg.Vector, l.StateSize())}
}

// Output extracts the top layer's hidden vector from a
// state.
func (l *LSTM) Output(state autofunc.Result) autofunc.Result {
	offset := l.StateSize() - 2*l.HiddenSize
	return autofunc.Slice(state, offset, offset+l.HiddenSize)
}

// Step feeds one input to the stack and returns the next
// state.
func (l *LSTM) Step(state, in autofunc.Result) autofunc.Result {
	if len(state.Output()) != l.StateSize() {
		panic("invalid LSTM state size")
	}
	if len(in.Output()) != l.InputSize {
		panic("invalid LSTM input size")
	}
	return autofunc.Pool(state, func(state autofunc.Result) autofunc.Result {
		var layerStates []autofunc.Result
		var loop func(layer int, x autofunc.Result) autofunc.Result
		loop = func(layer int, x autofunc.Result) autofunc.Result {
			if layer == len(l.Layers) {
				return autofunc.Concat(layerStates...)
			}
			offset := layer * 2 * l.HiddenSize
			h := autofunc.Slice(state, offset, offset+l.HiddenSize)
			c := autofunc.Slice(state, offset+l.HiddenSize, offset+2*l.HiddenSize)
			next := l.stepLayer(layer, x, h, c)
			return autofunc.Pool(next, func(next autofunc.Result) autofunc.Result {
				layerStates = append(layerStates, next)
				return loop(layer+1, autofunc.Slice(next, 0, l.HiddenSize))
			})
		}
		return loop(0, in)
	})
}

// Parameters returns the parameters of every layer.
func (l *LSTM) Parameters() []*autofunc.Variable {
	var res []*autofunc.Variable
	for _, layer := range l.Layers {
		res = append(res, layer.Parameters()...)
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// an LSTM with the serializer package.
func (l *LSTM) SerializerType() string {
	return "github.com/unixpickle/attnmt.LSTM"
}

// Serialize serializes the sizes and layers.
func (l *LSTM) Serialize() ([]byte, error) {
	slice := []serializer.Serializer{
		serializer.Int(l.InputSize),
		serializer.Int(l.HiddenSize),
	}
	for _, layer := range l.Layers {
		slice = append(slice, layer)
	}
	return serializer.SerializeSlice(slice)
}

// stepLayer returns [h', c'] for one layer.
func (l *LSTM) stepLayer(layer int, x, h, c autofunc.Result) autofunc.Result {
	size := l.HiddenSize
	gates := l.Layers[layer].Apply(autofunc.Concat(x, h))
	return autofunc.Pool(gates, func(gates autofunc.Result) autofunc.Result {
		var sigmoid neuralnet.Sigmoid
		var tanh neuralnet.HyperbolicTangent
		inGate := sigmoid.Apply(autofunc.Slice(gates, 0, size))
		forget := sigmoid.Apply(autofunc.Slice(gates, size, 2*size))
		outGate := sigmoid.Apply(autofunc.Slice(gates, 2*size, 3*size))
		candidate := tanh.Apply(autofunc.Slice(gates, 3*size, 4*size))
		cell := autofunc.Add(autofunc.Mul(forget, c), autofunc.Mul(inGate, candidate))
		return autofunc.Pool(cell, func(cell autofunc.Result) autofunc.Result {
			hidden := autofunc.Mul(outGate, tanh.Apply(cell))
			return autofunc.Concat(hidden, cell)
		})
	})
}
