package ml

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func stumpTree(t *testing.T) *DecisionTree {
	t.Helper()
	model, err := NewDecisionTree(2, []int{0, 1}, []TreeNode{
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, ClassCounts: []float64{8, 2}},
		{IsLeaf: true, ClassCounts: []float64{1, 3}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return model
}

func TestDecisionTreePredict(t *testing.T) {
	model := stumpTree(t)

	label, err := model.Predict([]float64{0.1, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}

	label, err = model.Predict([]float64{0.9, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
}

func TestDecisionTreeProbabilities(t *testing.T) {
	model := stumpTree(t)

	probs, err := model.Probabilities([]float64{0.9, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(probs) != 2 {
		t.Fatalf("expected 2 probabilities, got %d", len(probs))
	}
	if math.Abs(probs[0]-0.25) > 1e-9 || math.Abs(probs[1]-0.75) > 1e-9 {
		t.Fatalf("unexpected probabilities: %v", probs)
	}
}

func TestDecisionTreeRejectsWrongLength(t *testing.T) {
	model := stumpTree(t)
	if _, err := model.Predict([]float64{0.1}); err == nil {
		t.Fatal("expected feature count error")
	}
}

func TestDecisionTreeRejectsBackwardChild(t *testing.T) {
	_, err := NewDecisionTree(1, []int{0, 1}, []TreeNode{
		{FeatureIdx: 0, Threshold: 0, LeftChild: 0, RightChild: 1},
		{IsLeaf: true, ClassCounts: []float64{1, 1}},
	})
	if err == nil {
		t.Fatal("expected cycle to be rejected")
	}
}

func TestDecisionTreeRejectsEmptyLeaf(t *testing.T) {
	_, err := NewDecisionTree(1, []int{0, 1}, []TreeNode{
		{IsLeaf: true, ClassCounts: []float64{0, 0}},
	})
	if err == nil {
		t.Fatal("expected empty leaf to be rejected")
	}
}

func TestDecisionTreeLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	artifact := `{"n_features":2,"classes":[0,1],"nodes":[
		{"feature_idx":0,"threshold":0.5,"left_child":1,"right_child":2,"is_leaf":false},
		{"is_leaf":true,"class_counts":[8,2]},
		{"is_leaf":true,"class_counts":[1,3]}]}`
	if err := os.WriteFile(path, []byte(artifact), 0o600); err != nil {
		t.Fatal(err)
	}

	loaded := &DecisionTree{}
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.NumFeatures() != 2 {
		t.Fatalf("expected 2 features, got %d", loaded.NumFeatures())
	}
	label, err := loaded.Predict([]float64{0.9, 0})
	if err != nil || label != 1 {
		t.Fatalf("expected label 1, got %d (%v)", label, err)
	}
}

func TestDecisionTreeLoadRejectsInvalidArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	artifact := `{"n_features":1,"classes":[0,1],"nodes":[{"is_leaf":true,"class_counts":[0,0]}]}`
	if err := os.WriteFile(path, []byte(artifact), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := (&DecisionTree{}).Load(path); err == nil {
		t.Fatal("expected empty leaf to be rejected")
	}
}
