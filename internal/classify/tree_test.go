package classify

import (
	"strings"
	"testing"
)

func TestTreePredictWalksToLeaf(t *testing.T) {
	m := &TreeModel{
		id:          "DT",
		NumFeatures: 2,
		Nodes: []treeNode{
			{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
			{Feature: 1, Threshold: 0.5, Left: 3, Right: 4},
			{Feature: -1, Value: 0.9},
			{Feature: -1, Value: 0.1},
			{Feature: -1, Value: 0.6},
		},
	}

	cases := []struct {
		x    []float64
		want float64
	}{
		{[]float64{1.0, 0.0}, 0.9},
		{[]float64{0.0, 0.0}, 0.1},
		{[]float64{0.0, 1.0}, 0.6},
	}
	for _, tc := range cases {
		p, err := m.PredictProba(tc.x)
		if err != nil {
			t.Fatalf("PredictProba(%v): %v", tc.x, err)
		}
		if p != tc.want {
			t.Errorf("PredictProba(%v) = %v, want %v", tc.x, p, tc.want)
		}
	}
}

func TestTreePredictRejectsCyclicArtifact(t *testing.T) {
	// Two inner nodes pointing at each other never reach a leaf.
	m := &TreeModel{
		id:          "DT",
		NumFeatures: 1,
		Nodes: []treeNode{
			{Feature: 0, Threshold: 0.5, Left: 1, Right: 1},
			{Feature: 0, Threshold: 0.5, Left: 0, Right: 0},
		},
	}

	_, err := m.PredictProba([]float64{1.0})
	if err == nil {
		t.Fatal("expected error for cyclic tree artifact")
	}
	if !strings.Contains(err.Error(), "without reaching a leaf") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTreePredictRejectsDanglingIndex(t *testing.T) {
	m := &TreeModel{
		id:          "DT",
		NumFeatures: 1,
		Nodes: []treeNode{
			{Feature: 0, Threshold: 0.5, Left: 7, Right: 7},
		},
	}

	if _, err := m.PredictProba([]float64{1.0}); err == nil {
		t.Fatal("expected error for out-of-range node index")
	}
}
