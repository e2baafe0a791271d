// Package loam serves action sets from a Loam document repository.
//
// Each action set is a folder and each action a document inside it, either
// Markdown with YAML frontmatter or plain JSON/YAML:
//
//	shop/fetch_orders.md
//	shop/cancel_order.md
//
// The frontmatter uses the same keys as an actions file (httpMethod, url,
// headers, parameters). The name defaults to the file name and the description
// to the Markdown body.
package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/dewakar-s/procflow/pkg/domain"
)

// Source adapts a Loam repository to ports.ActionSource.
type Source struct {
	Repo *loam.TypedRepository[domain.ActionDescriptor]
}

// New creates a Source over an already initialized repository.
func New(repo *loam.TypedRepository[domain.ActionDescriptor]) *Source {
	return &Source{Repo: repo}
}

// Open initializes a read-only Loam repository rooted at dir.
// Strict mode keeps numbers as json.Number across the Markdown and JSON readers.
func Open(dir string) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[domain.ActionDescriptor](repo)), nil
}

// ListActions returns the documents directly inside the actionSetID folder, sorted by name.
func (s *Source) ListActions(ctx context.Context, actionSetID string) ([]domain.ActionDescriptor, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	set := strings.Trim(filepath.ToSlash(actionSetID), "/")
	if set == "" {
		set = "."
	}
	out := []domain.ActionDescriptor{}
	seen := make(map[string]string)

	for _, doc := range docs {
		id := trimExtension(doc.ID)
		if path.Dir(id) != set {
			continue
		}

		desc := doc.Data
		if desc.Name == "" {
			desc.Name = path.Base(id)
		}
		if desc.ID == "" {
			desc.ID = id
		}
		if desc.Description == "" {
			desc.Description = strings.TrimSpace(doc.Content)
		}

		if existing, ok := seen[desc.Name]; ok {
			return nil, fmt.Errorf("collision detected: action '%s' is defined in both '%s' and '%s'", desc.Name, existing, doc.ID)
		}
		seen[desc.Name] = doc.ID
		out = append(out, desc)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func trimExtension(id string) string {
	id = filepath.ToSlash(id)
	if ext := path.Ext(id); ext != "" {
		return strings.TrimSuffix(id, ext)
	}
	return id
}
