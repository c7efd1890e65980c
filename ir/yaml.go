package ir

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/mojom/errors"
)

// Marshal renders m as YAML.
func Marshal(m *Module) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, errors.Wrap(errors.PhaseTranslate, errors.KindInvalidData, err, "marshal IR")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.PhaseTranslate, errors.KindInvalidData, err, "marshal IR")
	}
	return buf.Bytes(), nil
}

// Load reads a module record written by Marshal. Unknown keys are rejected.
func Load(data []byte) (*Module, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Module
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(errors.PhaseTranslate, errors.KindInvalidData, err, "load IR")
	}
	return &m, nil
}
