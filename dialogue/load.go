package dialogue

import (
	"bytes"
	"fmt"

	"github.com/sat8bit/sembang/configs"
	"gopkg.in/yaml.v3"
)

type script struct {
	Root  NodeID  `yaml:"root"`
	Nodes []*Node `yaml:"nodes"`
}

// LoadGraph decodes a YAML conversation script and builds a validated graph.
// Unknown keys are rejected so that typos in the script fail early.
func LoadGraph(data []byte) (*Graph, error) {
	var s script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dialogue script: %w", err)
	}
	return NewGraph(s.Root, s.Nodes)
}

// DefaultGraph builds the embedded Daily Talk script.
func DefaultGraph() (*Graph, error) {
	g, err := LoadGraph(configs.Dialogue)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded dialogue script: %w", err)
	}
	return g, nil
}
