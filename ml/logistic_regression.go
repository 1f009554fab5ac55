package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/samber/lo"
)

// LogisticRegression is a fitted binary logistic model, optionally preceded
// by a standard scaler. Classes[1] is the positive class.
type LogisticRegression struct {
	classes   []int
	coef      []float64
	intercept float64
	mean      []float64
	scale     []float64
}

type logisticArtifact struct {
	NFeatures int       `json:"n_features"`
	Classes   []int     `json:"classes"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Scaler    *struct {
		Mean  []float64 `json:"mean"`
		Scale []float64 `json:"scale"`
	} `json:"scaler,omitempty"`
}

func NewLogisticRegression(classes []int, coef []float64, intercept float64) (*LogisticRegression, error) {
	lr := &LogisticRegression{
		classes:   append([]int(nil), classes...),
		coef:      append([]float64(nil), coef...),
		intercept: intercept,
	}
	if err := lr.validate(); err != nil {
		return nil, err
	}
	return lr, nil
}

func (lr *LogisticRegression) Predict(features []float64) (int, error) {
	p, err := lr.positive(features)
	if err != nil {
		return 0, err
	}
	if p > 0.5 {
		return lr.classes[1], nil
	}
	return lr.classes[0], nil
}

func (lr *LogisticRegression) Probabilities(features []float64) ([]float64, error) {
	p, err := lr.positive(features)
	if err != nil {
		return nil, err
	}
	return []float64{1 - p, p}, nil
}

func (lr *LogisticRegression) NumFeatures() int { return len(lr.coef) }

func (lr *LogisticRegression) Classes() []int { return append([]int(nil), lr.classes...) }

func (lr *LogisticRegression) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var artifact logisticArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return fmt.Errorf("decode logistic regression: %w", err)
	}
	if artifact.NFeatures != 0 && artifact.NFeatures != len(artifact.Coef) {
		return fmt.Errorf("logistic regression: n_features %d but %d coefficients", artifact.NFeatures, len(artifact.Coef))
	}
	loaded := LogisticRegression{classes: artifact.Classes, coef: artifact.Coef, intercept: artifact.Intercept}
	if artifact.Scaler != nil {
		loaded.mean = artifact.Scaler.Mean
		loaded.scale = artifact.Scaler.Scale
	}
	if err := loaded.validate(); err != nil {
		return err
	}
	*lr = loaded
	return nil
}

func (lr *LogisticRegression) positive(features []float64) (float64, error) {
	if len(lr.coef) == 0 {
		return 0, ErrNotTrained
	}
	if err := checkInput(features, len(lr.coef)); err != nil {
		return 0, err
	}
	z := lr.intercept
	for i, x := range features {
		if lr.scale != nil {
			x = (x - lr.mean[i]) / lr.scale[i]
		}
		z += lr.coef[i] * x
	}
	return sigmoid(z), nil
}

func (lr *LogisticRegression) validate() error {
	if len(lr.classes) != 2 {
		return errors.New("logistic regression: exactly two classes required")
	}
	if len(lr.coef) == 0 {
		return ErrNotTrained
	}
	if lr.mean == nil && lr.scale == nil {
		return nil
	}
	if len(lr.mean) != len(lr.coef) || len(lr.scale) != len(lr.coef) {
		return fmt.Errorf("logistic regression: scaler has %d means and %d scales for %d features", len(lr.mean), len(lr.scale), len(lr.coef))
	}
	if lo.SomeBy(lr.scale, func(s float64) bool { return s == 0 }) {
		return errors.New("logistic regression: scaler contains a zero scale")
	}
	return nil
}

// sigmoid is evaluated on the side that cannot overflow exp.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
