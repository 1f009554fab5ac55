//go:generate go run go.uber.org/mock/mockgen -source=model.go -destination=../mocks/mock_classifier.go -package=mocks
package ml

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedModel = errors.New("unsupported model type")
	ErrNotTrained       = errors.New("model not trained")
	ErrFeatureCount     = errors.New("feature count mismatch")
)

// Classifier is a loaded, read-only binary classifier. Implementations must
// be safe for concurrent use once loaded.
type Classifier interface {
	// Predict returns the class the model assigns to features.
	Predict(features []float64) (int, error)
	// Probabilities returns one posterior per class, ordered as Classes.
	Probabilities(features []float64) ([]float64, error)
	NumFeatures() int
	Classes() []int
}

func checkInput(features []float64, want int) error {
	if len(features) != want {
		return fmt.Errorf("%w: expected %d, got %d", ErrFeatureCount, want, len(features))
	}
	return nil
}
