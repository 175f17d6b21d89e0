package records

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dctmd-mcp-server/internal/domain"
)

// LoadDocument reads a patient data document from a YAML or JSON file.
// "-" reads from standard input.
func LoadDocument(path string) (domain.Value, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.Value{}, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return ParseDocument(raw)
}

// ParseDocument decodes YAML or JSON (a YAML subset) into a document.
// The top level must be a mapping; an empty input is an empty document.
func ParseDocument(raw []byte) (domain.Value, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.Map(nil), nil
	}

	var doc domain.Value
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return domain.Value{}, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Kind() != domain.KindMap {
		return domain.Value{}, fmt.Errorf("%w: top level must be a mapping, got %s", domain.ErrInvalidDocument, doc.Kind())
	}
	return doc, nil
}
