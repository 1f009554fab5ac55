package ml

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLogisticRegressionPredict(t *testing.T) {
	model, err := NewLogisticRegression([]int{0, 1}, []float64{2, -1}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	label, err := model.Predict([]float64{3, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}

	label, err = model.Predict([]float64{-3, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
}

func TestLogisticRegressionProbabilitiesSumToOne(t *testing.T) {
	model, err := NewLogisticRegression([]int{0, 1}, []float64{1000}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, x := range []float64{-10, -0.001, 0, 0.001, 10} {
		probs, err := model.Probabilities([]float64{x})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.IsNaN(probs[0]) || math.IsNaN(probs[1]) {
			t.Fatalf("NaN probability for x=%v: %v", x, probs)
		}
		if math.Abs(probs[0]+probs[1]-1) > 1e-9 {
			t.Fatalf("probabilities do not sum to 1 for x=%v: %v", x, probs)
		}
	}
}

func writeArtifact(t *testing.T, artifact string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(artifact), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLogisticRegressionScaler(t *testing.T) {
	model := &LogisticRegression{}
	path := writeArtifact(t, `{"n_features":1,"classes":[0,1],"coef":[1],"intercept":0,
		"scaler":{"mean":[10],"scale":[2]}}`)
	if err := model.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	probs, err := model.Probabilities([]float64{10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(probs[1]-0.5) > 1e-9 {
		t.Fatalf("expected centered input to score 0.5, got %v", probs[1])
	}

	zero := writeArtifact(t, `{"n_features":1,"classes":[0,1],"coef":[1],"intercept":0,
		"scaler":{"mean":[0],"scale":[0]}}`)
	if err := (&LogisticRegression{}).Load(zero); err == nil {
		t.Fatal("expected zero scale to be rejected")
	}
}

func TestLogisticRegressionLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	artifact := `{"n_features":2,"classes":[0,1],"coef":[0.5,0.5],"intercept":-1,
		"scaler":{"mean":[0,0],"scale":[1,1]}}`
	if err := os.WriteFile(path, []byte(artifact), 0o600); err != nil {
		t.Fatal(err)
	}

	model := &LogisticRegression{}
	if err := model.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if model.NumFeatures() != 2 {
		t.Fatalf("expected 2 features, got %d", model.NumFeatures())
	}
	if got := model.Classes(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("unexpected classes: %v", got)
	}
}

func TestLogisticRegressionLoadDimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	artifact := `{"n_features":3,"classes":[0,1],"coef":[0.5,0.5],"intercept":0}`
	if err := os.WriteFile(path, []byte(artifact), 0o600); err != nil {
		t.Fatal(err)
	}
	model := &LogisticRegression{}
	if err := model.Load(path); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}
