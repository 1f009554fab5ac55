package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"oncopredict/gateway"
	"oncopredict/monitoring"
)

// rejectBodyTooLarge 请求体超过大小限制时的拒绝类型
const rejectBodyTooLarge = "body_too_large"

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type predictResponse struct {
	Prediction    int       `json:"prediccion"`
	Label         string    `json:"etiqueta"`
	Probabilities []float64 `json:"probabilidad_clases"`
}

type errorResponse struct {
	Error          string `json:"error"`
	ExpectedFormat string `json:"expected_format,omitempty"`
	Expected       *int   `json:"expected,omitempty"`
	Received       *int   `json:"received,omitempty"`
	Details        string `json:"details,omitempty"`
}

// Handlers 预测服务的HTTP处理器
type Handlers struct {
	gateway *gateway.Gateway
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

func NewHandlers(gw *gateway.Gateway, logger *zap.Logger, metrics *monitoring.Metrics) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Handlers{gateway: gw, logger: logger, metrics: metrics}
}

// RegisterHandlers 注册所有路由
func RegisterHandlers(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /{$}", h.instrument("GET /", h.handleStatus))
	mux.HandleFunc("POST /predict", h.instrument("POST /predict", h.handlePredict))
}

func (h *Handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	msgs := messagesFor(r)
	if h.gateway.Health() == gateway.StatusReady {
		writeJSON(w, http.StatusOK, statusResponse{Status: "OK", Message: msgs.StatusOK})
		return
	}
	writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "Error", Message: msgs.StatusDown})
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, readErr := io.ReadAll(r.Body)
	if readErr != nil && h.gateway.Ready() {
		kind := h.rejectBody(w, r, readErr)
		h.metrics.ObserveRejection(kind, time.Since(start))
		return
	}

	prediction, err := h.gateway.Classify(body)
	if err != nil {
		h.metrics.ObserveRejection(gateway.KindOf(err).String(), time.Since(start))
		h.writeError(w, r, err)
		return
	}

	h.metrics.ObservePrediction(prediction.Label, time.Since(start))
	writeJSON(w, http.StatusOK, predictResponse{
		Prediction:    prediction.Class,
		Label:         prediction.Label,
		Probabilities: prediction.Probabilities,
	})
}

// rejectBody 处理无法读取的请求体，返回用于指标的拒绝类型
func (h *Handlers) rejectBody(w http.ResponseWriter, r *http.Request, err error) string {
	msgs := messagesFor(r)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: msgs.TooLarge})
		return rejectBodyTooLarge
	}
	h.logger.Warn("failed to read request body", zap.Error(err))
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgs.Malformed, ExpectedFormat: msgs.ExpectedFormat})
	return gateway.KindMalformedInput.String()
}

// writeError 将网关错误映射为状态码和JSON错误体
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	msgs := messagesFor(r)
	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) {
		h.logger.Error("unexpected prediction error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgs.Internal, Details: err.Error()})
		return
	}

	switch gwErr.Kind {
	case gateway.KindServiceUnavailable:
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: msgs.Unavailable})
	case gateway.KindMalformedInput:
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:          msgs.Malformed,
			ExpectedFormat: msgs.ExpectedFormat,
			Details:        gwErr.Detail,
		})
	case gateway.KindSchemaViolation:
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:          msgs.Schema,
			ExpectedFormat: msgs.ExpectedFormat,
			Details:        gwErr.Detail,
		})
	case gateway.KindShapeMismatch:
		expected, received := gwErr.Expected, gwErr.Received
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:    msgs.Shape,
			Expected: &expected,
			Received: &received,
		})
	default:
		details := gwErr.Detail
		if details == "" {
			details = gwErr.Error()
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgs.Internal, Details: details})
	}
}

// instrument 记录每个路由的请求计数
func (h *Handlers) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(wrapped, r)
		h.metrics.ObserveRequest(route, wrapped.statusCode)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
