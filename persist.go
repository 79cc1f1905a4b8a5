package attnmt

import (
	"errors"
	"io"
	"os"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// SaveModel writes a model, including its vocabularies and
// hyperparameters, to w.
func SaveModel(w io.Writer, m *Model) error {
	data, err := serializer.SerializeWithType(m)
	if err != nil {
		return essentials.AddCtx("save model", err)
	}
	if _, err := w.Write(data); err != nil {
		return essentials.AddCtx("save model", err)
	}
	return nil
}

// LoadModel reads a model written by SaveModel.
// The vocabularies of the result are frozen.
func LoadModel(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, essentials.AddCtx("load model", err)
	}
	obj, err := serializer.DeserializeWithType(data)
	if err != nil {
		return nil, essentials.AddCtx("load model", err)
	}
	m, ok := obj.(*Model)
	if !ok {
		return nil, essentials.AddCtx("load model", errors.New("not a model"))
	}
	m.SourceVocab.Freeze()
	m.TargetVocab.Freeze()
	return m, nil
}

// SaveModelFile saves a model to a file.
func SaveModelFile(path string, m *Model) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return essentials.AddCtx("save model", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = essentials.AddCtx("save model", closeErr)
		}
	}()
	return SaveModel(f, m)
}

// LoadModelFile loads a model from a file.
func LoadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, essentials.AddCtx("load model", err)
	}
	defer f.Close()
	return LoadModel(f)
}
