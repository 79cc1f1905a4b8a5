package attnmt

import (
	"errors"
	"math/rand"

	"github.com/unixpickle/autofunc"
	"github.com/unixpickle/num-analysis/linalg"
	"github.com/unixpickle/serializer"
)

func init() {
	var e Embedding
	serializer.RegisterTypedDeserializer(e.SerializerType(), DeserializeEmbedding)
}

// An Embedding is a lookup table of learned vectors, one
// row per token id.
type Embedding struct {
	Rows int
	Dim  int

	// Table stores the rows back to back.
	Table *autofunc.Variable
}

// NewEmbedding creates an embedding table with entries
// drawn uniformly from [-scale, scale].
func NewEmbedding(rng *rand.Rand, rows, dim int, scale float64) *Embedding {
	table := make(linalg.Vector, rows*dim)
	for i := range table {
		table[i] = (rng.Float64()*2 - 1) * scale
	}
	return &Embedding{
		Rows:  rows,
		Dim:   dim,
		Table: &autofunc.Variable{Vector: table},
	}
}

// DeserializeEmbedding deserializes an Embedding.
func DeserializeEmbedding(d []byte) (*Embedding, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, err
	}
	if len(slice) != 3 {
		return nil, errors.New("invalid Embedding slice")
	}
	rows, ok1 := slice[0].(serializer.Int)
	dim, ok2 := slice[1].(serializer.Int)
	vec, ok3 := slice[2].(serializer.Float64Slice)
	if !ok1 || !ok2 || !ok3 {
		return nil, errors.New("invalid Embedding slice")
	}
	if len(vec) != int(rows)*int(dim) {
		return nil, errors.New("embedding table size mismatch")
	}
	return &Embedding{
		Rows:  int(rows),
		Dim:   int(dim),
		Table: &autofunc.Variable{Vector: linalg.Vector(vec)},
	}, nil
}

// Lookup returns the row for an id.
// Ids outside the table panic.
func (e *Embedding) Lookup(id int) autofunc.Result {
	if id < 0 || id >= e.Rows {
		panic("embedding id out of range")
	}
	return autofunc.Slice(e.Table, id*e.Dim, (id+1)*e.Dim)
}

// Parameters returns the table variable.
func (e *Embedding) Parameters() []*autofunc.Variable {
	return []*autofunc.Variable{e.Table}
}

// SerializerType returns the unique ID used to serialize
// an Embedding with the serializer package.
func (e *Embedding) SerializerType() string {
	return "github.com/unixpickle/attnmt.Embedding"
}

// Serialize serializes the table.
func (e *Embedding) Serialize() ([]byte, error) {
	return serializer.SerializeSlice([]serializer.Serializer{
		serializer.Int(e.Rows),
		serializer.Int(e.Dim),
		serializer.Float64Slice(e.Table.Vector),
	})
}
