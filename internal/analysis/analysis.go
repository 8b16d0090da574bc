// Package analysis loads analysis description files into a core.Registry.
//
// A file lists run options, systematics, samples and fit configs. Sample
// operations are applied in document order, so the last of two conflicting
// normalization calls wins exactly as it would in a script.
package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hfconf/hfconf/core"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned for structural problems of an analysis file,
// such as references to undeclared samples or systematics.
var ErrInvalidDocument = errors.New("invalid analysis document")

// LoadFile reads and builds the analysis at path.
func LoadFile(path string) (*core.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis file: %w", err)
	}
	reg, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Load decodes and builds an analysis held in memory.
func Load(data []byte) (*core.Registry, error) {
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

// Decode parses an analysis document without building it.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return &doc, nil
}
