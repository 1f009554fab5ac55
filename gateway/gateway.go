// Package gateway validates prediction requests and runs them through the
// classifier loaded at startup.
package gateway

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"oncopredict/ml"
)

const (
	LabelBenign    = "Benign"
	LabelMalignant = "Malignant"
)

// Status is the process-wide readiness fixed at construction.
type Status int

const (
	StatusReady Status = iota
	StatusDegraded
)

func (s Status) String() string {
	if s == StatusReady {
		return "ready"
	}
	return "degraded"
}

// Prediction is the result of a successful Classify call.
type Prediction struct {
	Class         int
	Label         string
	Probabilities []float64
}

type Options struct {
	Logger *zap.Logger
	// CacheSize bounds the memo of recent predictions. Zero disables it.
	CacheSize int
}

// Gateway holds one immutable classifier handle. A nil handle leaves the
// gateway degraded for its whole lifetime.
type Gateway struct {
	classifier ml.Classifier
	status     Status
	logger     *zap.Logger
	cache      *lru.Cache[string, Prediction]
}

func New(classifier ml.Classifier, opts Options) (*Gateway, error) {
	g := &Gateway{
		classifier: classifier,
		status:     StatusReady,
		logger:     opts.Logger,
	}
	if classifier == nil {
		g.status = StatusDegraded
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, Prediction](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create prediction cache: %w", err)
		}
		g.cache = cache
	}
	return g, nil
}

func (g *Gateway) Health() Status { return g.status }

func (g *Gateway) Ready() bool { return g.status == StatusReady }

// Classify validates body and, when valid, returns the classifier's verdict.
// Availability is checked before the body is looked at, so a degraded gateway
// answers KindServiceUnavailable even for malformed input.
func (g *Gateway) Classify(body []byte) (*Prediction, error) {
	if !g.Ready() {
		return nil, &Error{Kind: KindServiceUnavailable, Detail: "model not loaded"}
	}

	g.logger.Info("prediction input received", zap.ByteString("input", body))

	features, err := decodeFeatures(body)
	if err != nil {
		g.logger.Warn("prediction input rejected", zap.Error(err))
		return nil, err
	}

	key := cacheKey(features)
	if g.cache != nil {
		if cached, ok := g.cache.Get(key); ok {
			g.logger.Info("prediction served", zap.String("label", cached.Label), zap.Bool("cached", true))
			return clonePrediction(cached), nil
		}
	}

	prediction, err := g.infer(features)
	if err != nil {
		g.logger.Error("inference failed", zap.Error(err))
		return nil, err
	}
	if g.cache != nil {
		g.cache.Add(key, *clonePrediction(*prediction))
	}

	g.logger.Info("prediction served", zap.String("label", prediction.Label), zap.Int("class", prediction.Class))
	return prediction, nil
}

// LabelFor maps the binary model output to its diagnosis label.
func LabelFor(class int) string {
	if class == 1 {
		return LabelBenign
	}
	return LabelMalignant
}

func (g *Gateway) infer(features []float64) (prediction *Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			prediction = nil
			err = &Error{Kind: KindInference, Detail: fmt.Sprintf("classifier panic: %v", r)}
		}
	}()

	class, err := g.classifier.Predict(features)
	if err != nil {
		return nil, &Error{Kind: KindInference, Detail: err.Error(), Err: err}
	}
	probs, err := g.classifier.Probabilities(features)
	if err != nil {
		return nil, &Error{Kind: KindInference, Detail: err.Error(), Err: err}
	}
	for _, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, &Error{Kind: KindInference, Detail: fmt.Sprintf("classifier returned non-finite probability %v", p)}
		}
	}

	return &Prediction{Class: class, Label: LabelFor(class), Probabilities: probs}, nil
}

func cacheKey(features []float64) string {
	var sb strings.Builder
	sb.Grow(len(features) * 8)
	var buf [8]byte
	for _, f := range features {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		sb.Write(buf[:])
	}
	return sb.String()
}

func clonePrediction(p Prediction) *Prediction {
	p.Probabilities = append([]float64(nil), p.Probabilities...)
	return &p
}
