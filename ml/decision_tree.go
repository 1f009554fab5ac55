package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DecisionTree is a fitted tree stored as a flat node array. Node 0 is the
// root and children always sit after their parent.
type DecisionTree struct {
	nFeatures int
	classes   []int
	nodes     []TreeNode
}

type TreeNode struct {
	FeatureIdx  int       `json:"feature_idx"`
	Threshold   float64   `json:"threshold"`
	LeftChild   int       `json:"left_child"`
	RightChild  int       `json:"right_child"`
	ClassCounts []float64 `json:"class_counts,omitempty"`
	IsLeaf      bool      `json:"is_leaf"`
}

type treeArtifact struct {
	NFeatures int        `json:"n_features"`
	Classes   []int      `json:"classes"`
	Nodes     []TreeNode `json:"nodes"`
}

func NewDecisionTree(nFeatures int, classes []int, nodes []TreeNode) (*DecisionTree, error) {
	dt := &DecisionTree{
		nFeatures: nFeatures,
		classes:   append([]int(nil), classes...),
		nodes:     append([]TreeNode(nil), nodes...),
	}
	if err := dt.validate(); err != nil {
		return nil, err
	}
	return dt, nil
}

func (dt *DecisionTree) Predict(features []float64) (int, error) {
	leaf, err := dt.leaf(features)
	if err != nil {
		return 0, err
	}
	return dt.classes[argmax(leaf.ClassCounts)], nil
}

func (dt *DecisionTree) Probabilities(features []float64) ([]float64, error) {
	leaf, err := dt.leaf(features)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, c := range leaf.ClassCounts {
		total += c
	}
	probs := make([]float64, len(leaf.ClassCounts))
	for i, c := range leaf.ClassCounts {
		probs[i] = c / total
	}
	return probs, nil
}

func (dt *DecisionTree) NumFeatures() int { return dt.nFeatures }

func (dt *DecisionTree) Classes() []int { return append([]int(nil), dt.classes...) }

func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var artifact treeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return fmt.Errorf("decode decision tree: %w", err)
	}
	loaded := DecisionTree{nFeatures: artifact.NFeatures, classes: artifact.Classes, nodes: artifact.Nodes}
	if err := loaded.validate(); err != nil {
		return err
	}
	*dt = loaded
	return nil
}

func (dt *DecisionTree) leaf(features []float64) (TreeNode, error) {
	if len(dt.nodes) == 0 {
		return TreeNode{}, ErrNotTrained
	}
	if err := checkInput(features, dt.nFeatures); err != nil {
		return TreeNode{}, err
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx <= 0 || idx >= len(dt.nodes) {
			return TreeNode{}, errors.New("invalid tree state")
		}
	}
}

// validate rejects trees that could index out of range or loop forever.
func (dt *DecisionTree) validate() error {
	if dt.nFeatures <= 0 {
		return errors.New("decision tree: n_features must be positive")
	}
	if len(dt.classes) < 2 {
		return errors.New("decision tree: at least two classes required")
	}
	if len(dt.nodes) == 0 {
		return ErrNotTrained
	}
	for i, node := range dt.nodes {
		if node.IsLeaf {
			if len(node.ClassCounts) != len(dt.classes) {
				return fmt.Errorf("decision tree: leaf %d has %d class counts, want %d", i, len(node.ClassCounts), len(dt.classes))
			}
			total := 0.0
			for _, c := range node.ClassCounts {
				if c < 0 {
					return fmt.Errorf("decision tree: leaf %d has a negative count", i)
				}
				total += c
			}
			if total <= 0 {
				return fmt.Errorf("decision tree: leaf %d is empty", i)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= dt.nFeatures {
			return fmt.Errorf("decision tree: node %d splits on feature %d out of range", i, node.FeatureIdx)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(dt.nodes) {
				return fmt.Errorf("decision tree: node %d has invalid child %d", i, child)
			}
		}
	}
	return nil
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
