// Package importfile reads import batches prepared offline, as JSON or YAML.
package importfile

import (
	"bytes"
	"elo-ladder/internal/domain"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a batch, picking the decoder from the file extension.
func Load(path string) (*domain.ImportBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return DecodeJSON(data)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported batch file extension %q", ext)
	}
}

func DecodeJSON(data []byte) (*domain.ImportBatch, error) {
	var batch domain.ImportBatch
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode json batch: %w", err)
	}
	return validate(&batch)
}

func DecodeYAML(data []byte) (*domain.ImportBatch, error) {
	var batch domain.ImportBatch
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode yaml batch: %w", err)
	}
	return validate(&batch)
}

func validate(batch *domain.ImportBatch) (*domain.ImportBatch, error) {
	if strings.TrimSpace(batch.SourceID) == "" {
		return nil, fmt.Errorf("batch has no sourceId")
	}
	if batch.Identities == nil {
		batch.Identities = map[string]string{}
	}
	return batch, nil
}
