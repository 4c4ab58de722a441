package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/forcelayout/pkg/nodegraph"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension.
// Anything other than .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts an editor graph to JSON bytes.
// The output is deterministic for a given graph and is used for cache keys.
func MarshalGraph(g *nodegraph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes an editor graph to path, encoded by its extension.
func WriteGraphFile(g *nodegraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f, FormatFromPath(path))
}

// WriteGraph encodes an editor graph to w.
func WriteGraph(g *nodegraph.Graph, w io.Writer, format Format) error {
	return encode(w, FromNodeGraph(g), format)
}

// ReadGraphFile reads and decodes the editor graph stored at path.
func ReadGraphFile(path string) (*nodegraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f, FormatFromPath(path))
}

// ReadGraph decodes an editor graph from r.
func ReadGraph(r io.Reader, format Format) (*nodegraph.Graph, error) {
	var data Graph
	if err := decode(r, &data, format); err != nil {
		return nil, err
	}
	return ToNodeGraph(data)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
}

func decode(r io.Reader, v any, format Format) error {
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
	}
	return nil
}
