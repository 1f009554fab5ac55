package gateway

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"oncopredict/ml"
)

// LoadFunc loads a classifier artifact. ml.LoadModel satisfies it.
type LoadFunc func(modelType, path string) (ml.Classifier, error)

// AcquireClassifier loads the model once. Any failure, including a model
// built for a different feature count, is logged and yields nil so the
// process can keep running degraded.
func AcquireClassifier(load LoadFunc, modelType, path string, logger *zap.Logger) ml.Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	classifier, err := load(modelType, path)
	if err == nil && classifier != nil && classifier.NumFeatures() != FeatureCount {
		err = fmt.Errorf("%w: model expects %d features, service accepts %d", ml.ErrFeatureCount, classifier.NumFeatures(), FeatureCount)
	}
	if err == nil && classifier == nil {
		err = errors.New("loader returned no model")
	}
	if err != nil {
		logger.Error("failed to load model; serving degraded",
			zap.String("type", modelType), zap.String("path", path), zap.Error(err))
		return nil
	}
	logger.Info("model loaded",
		zap.String("type", modelType), zap.String("path", path), zap.Ints("classes", classifier.Classes()))
	return classifier
}
