package wire

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mirror/internal/reconcile"
)

// BatchFile is a batch of change messages as carried on disk or over a
// transport: an optional reset flag plus the ordered message list.
type BatchFile struct {
	Reset    bool         `json:"reset,omitempty" yaml:"reset,omitempty"`
	Messages []RawMessage `json:"messages" yaml:"messages"`
}

// Format identifies a batch file encoding.
type Format int

const (
	// FormatJSON is a JSON-encoded batch file.
	FormatJSON Format = iota
	// FormatYAML is a YAML-encoded batch file.
	FormatYAML
)

// FormatForPath picks the encoding from a file extension.
// .yaml and .yml select YAML; everything else is treated as JSON.
func FormatForPath(path string) Format {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadBatchFile reads, schema-validates, and parses a batch file.
func LoadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	return ParseBatch(data, FormatForPath(path))
}

// ParseBatch schema-validates and parses batch file contents.
func ParseBatch(data []byte, format Format) (*BatchFile, error) {
	if err := ValidateBatch(data, format); err != nil {
		return nil, err
	}

	var batch BatchFile
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("parse batch: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("parse batch: %w", err)
		}
	}
	return &batch, nil
}

// Decode converts every message of the batch, in delivery order.
func (b *BatchFile) Decode() ([]reconcile.Message, error) {
	msgs := make([]reconcile.Message, 0, len(b.Messages))
	for i, raw := range b.Messages {
		m, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
