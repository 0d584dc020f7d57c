// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fold

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// Model sources recorded in metadata sidecars.
const (
	SourceESMFold = "esmfold"
	SourceArchive = "alphafold-archive"
)

// ModelMeta describes how a PDB model was obtained. It is written as a
// YAML sidecar next to the model file.
type ModelMeta struct {
	ID             string `yaml:"id"`
	Source         string `yaml:"source"`
	SequenceLength int    `yaml:"sequence_length,omitempty"`
	URL            string `yaml:"url,omitempty"`
	AcquiredAt     string `yaml:"acquired_at"`
}

// writeMeta writes the metadata sidecar for a model into modelsDir.
func writeMeta(modelsDir string, meta ModelMeta) error {
	meta.AcquiredAt = time.Now().UTC().Format(time.RFC3339)

	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling model metadata: %w", err)
	}
	path := filepath.Join(modelsDir, meta.ID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model metadata %s: %w", path, err)
	}
	return nil
}

// ReadMeta loads the metadata sidecar for a model ID from modelsDir.
func ReadMeta(modelsDir, id string) (ModelMeta, error) {
	path := filepath.Join(modelsDir, id+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelMeta{}, fmt.Errorf("reading model metadata %s: %w", path, err)
	}
	var meta ModelMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return ModelMeta{}, fmt.Errorf("parsing model metadata %s: %w", path, err)
	}
	return meta, nil
}
