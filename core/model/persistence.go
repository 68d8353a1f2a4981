package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/jaydenwhyte/aerosolve/core/function"
	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// SaveModel writes a model snapshot to the given path, overwriting any
// previous snapshot. Used for per-iteration checkpoints: a run can be
// resumed by pointing init_model at the last written file.
func SaveModel(m *AdditiveModel, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return aerrors.Wrap(err, "failed to create file")
	}
	defer func() { _ = f.Close() }()
	return SaveModelToWriter(m, f)
}

// SaveModelToWriter gob-encodes a model snapshot to w.
func SaveModelToWriter(m *AdditiveModel, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return aerrors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModel reads a model snapshot from the given path.
func LoadModel(path string) (*AdditiveModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, aerrors.Wrap(err, "failed to open file")
	}
	defer func() { _ = f.Close() }()
	return LoadModelFromReader(f)
}

// LoadModelFromReader gob-decodes a model snapshot from r.
func LoadModelFromReader(r io.Reader) (*AdditiveModel, error) {
	m := NewAdditiveModel()
	if err := gob.NewDecoder(r).Decode(m); err != nil {
		return nil, aerrors.Wrap(err, "failed to decode model")
	}
	if m.Families == nil {
		m.Families = make(map[string]map[string]function.Function)
	}
	return m, nil
}
