package classify

import (
	"encoding/json"
	"fmt"
	"os"
)

// MinMaxScaler rescales a raw feature vector with the parameters fitted
// at training time: x' = x*scale + offset per feature.
type MinMaxScaler struct {
	Scale  []float64 `json:"scale"`
	Offset []float64 `json:"min"`
}

// LoadScaler reads scaler parameters from a JSON artifact.
func LoadScaler(path string) (*MinMaxScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scaler artifact: %w", err)
	}
	var s MinMaxScaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scaler artifact: %w", err)
	}
	if len(s.Scale) != len(s.Offset) {
		return nil, fmt.Errorf("scaler artifact inconsistent: %d scale vs %d min entries", len(s.Scale), len(s.Offset))
	}
	return &s, nil
}

// Transform returns the scaled copy of x.
func (s *MinMaxScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Scale) {
		return nil, fmt.Errorf("schema mismatch: scaler expects %d features, got %d", len(s.Scale), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v*s.Scale[i] + s.Offset[i]
	}
	return out, nil
}
