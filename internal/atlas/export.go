// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package atlas

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

const exportLimit = 100000

// ExportYAML writes the atlas to atlasDir/export.yaml. It supports the
// same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	homologs, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(homologs)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(filepath.Join(s.atlasDir, "export.yaml"), data, 0o644)
}

// ExportJSON writes the atlas to atlasDir/export.json. It supports the
// same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	homologs, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(homologs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(filepath.Join(s.atlasDir, "export.json"), data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]types.Homolog, error) {
	opts.MaxResults = exportLimit
	homologs, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return homologs, nil
}
