package file

import (
	"context"
	"fmt"
	"os"

	"github.com/dewakar-s/procflow/internal/compiler"
	"github.com/dewakar-s/procflow/pkg/domain"
)

// ActionSource implements ports.ActionSource over a YAML or JSON actions file.
// The file is read once, at construction.
type ActionSource struct {
	path string
	sets map[string][]domain.ActionDescriptor
}

// NewActionSource reads and validates the actions file at path.
// A missing file yields an empty source.
func NewActionSource(path string) (*ActionSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ActionSource{path: path, sets: map[string][]domain.ActionDescriptor{}}, nil
		}
		return nil, fmt.Errorf("failed to read actions file: %w", err)
	}

	sets, err := compiler.NewParser().ParseActionSets(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &ActionSource{path: path, sets: sets}, nil
}

// ListActions returns the descriptors of one action set.
func (s *ActionSource) ListActions(ctx context.Context, actionSetID string) ([]domain.ActionDescriptor, error) {
	return append([]domain.ActionDescriptor{}, s.sets[actionSetID]...), nil
}

// Sets returns the IDs of every action set in the file.
func (s *ActionSource) Sets() []string {
	ids := make([]string, 0, len(s.sets))
	for id := range s.sets {
		ids = append(ids, id)
	}
	return ids
}

// LoadProcedure reads a procedure document (YAML or JSON) from path.
func LoadProcedure(path string) (domain.Procedure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Procedure{}, fmt.Errorf("failed to read procedure: %w", err)
	}
	proc, err := compiler.NewParser().ParseProcedure(data)
	if err != nil {
		return domain.Procedure{}, fmt.Errorf("%s: %w", path, err)
	}
	return proc, nil
}
