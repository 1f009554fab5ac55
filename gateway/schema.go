package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/xeipuuv/gojsonschema"
)

// FeatureCount is the exact length a feature vector must have.
const FeatureCount = 30

const requestSchemaJSON = `{
	"type": "object",
	"required": ["features"],
	"properties": {
		"features": {
			"type": "array",
			"items": {"type": "number"}
		}
	}
}`

var requestSchema = mustCompileSchema(requestSchemaJSON)

func mustCompileSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("gateway: invalid request schema: %v", err))
	}
	return schema
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

// decodeFeatures runs the fail-fast validation pipeline over a raw request
// body: syntax, then schema, then length.
func decodeFeatures(body []byte) ([]float64, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &Error{Kind: KindMalformedInput, Detail: "empty request body"}
	}
	if !json.Valid(body) {
		return nil, &Error{Kind: KindMalformedInput, Detail: "request body is not valid JSON"}
	}

	result, err := requestSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, &Error{Kind: KindMalformedInput, Err: err}
	}
	if !result.Valid() {
		details := lo.Map(result.Errors(), func(desc gojsonschema.ResultError, _ int) string {
			return fmt.Sprintf("%s: %s", desc.Field(), desc.Description())
		})
		return nil, &Error{Kind: KindSchemaViolation, Detail: strings.Join(details, "; ")}
	}

	var req predictRequest
	if err := json.Unmarshal(body, &req); err != nil {
		// Numbers beyond float64 range pass the schema but not the decoder.
		return nil, &Error{Kind: KindSchemaViolation, Err: err}
	}
	if len(req.Features) != FeatureCount {
		return nil, &Error{Kind: KindShapeMismatch, Expected: FeatureCount, Received: len(req.Features)}
	}
	return req.Features, nil
}
