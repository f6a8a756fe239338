package datasource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// FileSource serves a saved /graph_data document, and optionally a saved
// hold-rows array, from disk. Each file holds a single complaint, so the
// acknowledgement number is not used to select data. It is read-only.
type FileSource struct {
	graphPath string
	holdsPath string
}

// NewFileSource returns a source reading graphPath and, when set, holdsPath.
func NewFileSource(graphPath, holdsPath string) *FileSource {
	return &FileSource{graphPath: graphPath, holdsPath: holdsPath}
}

func (s *FileSource) Close() error { return nil }

// Paths returns the files backing the source, for change watching.
func (s *FileSource) Paths() []string {
	if s.holdsPath == "" {
		return []string{s.graphPath}
	}
	return []string{s.graphPath, s.holdsPath}
}

// Graph implements Source.
func (s *FileSource) Graph(ctx context.Context, _ string) (*trail.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.graphPath)
	if err != nil {
		return nil, fmt.Errorf("reading graph file: %w", err)
	}
	doc, err := trail.DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	return checkDocument(doc)
}

// Holds implements Source. A missing holds file means no holds.
func (s *FileSource) Holds(ctx context.Context, _ string) ([]model.HoldRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.holdsPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.holdsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading holds file: %w", err)
	}
	var rows []model.HoldRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding holds file: %w", err)
	}
	return rows, nil
}

// SaveKYC implements Source; saved documents cannot be edited.
func (s *FileSource) SaveKYC(context.Context, model.KYCUpdate) error {
	return ErrReadOnly
}
