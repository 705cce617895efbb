package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// LogisticModel evaluates a binary logistic regression exported from
// training as coefficients and an intercept.
type LogisticModel struct {
	id           string
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// LoadLogistic reads a logistic regression artifact.
func LoadLogistic(id, path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact for %s: %w", id, err)
	}
	var m LogisticModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model artifact for %s: %w", id, err)
	}
	if len(m.Coefficients) == 0 {
		return nil, fmt.Errorf("model artifact for %s has no coefficients", id)
	}
	m.id = id
	return &m, nil
}

// ID returns the configured model identifier.
func (m *LogisticModel) ID() string { return m.id }

// PredictProba returns the probability of the malicious class.
func (m *LogisticModel) PredictProba(x []float64) (float64, error) {
	if len(x) != len(m.Coefficients) {
		return 0, fmt.Errorf("schema mismatch: model %s expects %d features, got %d", m.id, len(m.Coefficients), len(x))
	}
	z := m.Intercept
	for i, v := range x {
		z += m.Coefficients[i] * v
	}
	return 1.0 / (1.0 + math.Exp(-z)), nil
}
