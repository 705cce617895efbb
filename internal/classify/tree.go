package classify

import (
	"encoding/json"
	"fmt"
	"os"
)

// treeNode is one node of an exported decision tree. Feature == -1
// marks a leaf; Value is the leaf's probability of the malicious class.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// TreeModel evaluates a binary decision tree exported from training as
// a flat node array rooted at index 0.
type TreeModel struct {
	id          string
	NumFeatures int        `json:"num_features"`
	Nodes       []treeNode `json:"nodes"`
}

// LoadTree reads a decision tree artifact.
func LoadTree(id, path string) (*TreeModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact for %s: %w", id, err)
	}
	var m TreeModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model artifact for %s: %w", id, err)
	}
	if len(m.Nodes) == 0 {
		return nil, fmt.Errorf("model artifact for %s has no nodes", id)
	}
	m.id = id
	return &m, nil
}

// ID returns the configured model identifier.
func (m *TreeModel) ID() string { return m.id }

// PredictProba walks the tree and returns the reached leaf's
// probability of the malicious class.
func (m *TreeModel) PredictProba(x []float64) (float64, error) {
	if len(x) != m.NumFeatures {
		return 0, fmt.Errorf("schema mismatch: model %s expects %d features, got %d", m.id, m.NumFeatures, len(x))
	}
	// A well-formed tree visits each node at most once, so a walk longer
	// than the node count means the artifact's links form a cycle.
	idx := 0
	for steps := 0; steps < len(m.Nodes); steps++ {
		if idx < 0 || idx >= len(m.Nodes) {
			return 0, fmt.Errorf("model %s: node index %d out of range", m.id, idx)
		}
		node := m.Nodes[idx]
		if node.Feature < 0 {
			return node.Value, nil
		}
		if node.Feature >= len(x) {
			return 0, fmt.Errorf("model %s: node references feature %d beyond vector", m.id, node.Feature)
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return 0, fmt.Errorf("model %s: tree walk exceeded %d nodes without reaching a leaf", m.id, len(m.Nodes))
}
