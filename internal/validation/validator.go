// internal/validation/validator.go
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ParamType represents the type of a query parameter
type ParamType string

const (
	ParamTypeString ParamType = "string"
	ParamTypeInt    ParamType = "int"
	ParamTypeFloat  ParamType = "float"
)

// Range defines min and max values for numeric parameters
type Range struct {
	Min float64
	Max float64
}

// QueryRules defines validation rules for query parameters
type QueryRules struct {
	Required []string
	Types    map[string]ParamType
	Patterns map[string]string
	Ranges   map[string]Range
}

// Rules defines all validation rules for a request
type Rules struct {
	ContentTypes []string
	MaxBodySize  int64
	Query        QueryRules
	JSONSchema   *gojsonschema.Schema
}

// RequestValidator handles request validation
type RequestValidator struct {
	mu           sync.Mutex
	patternCache map[string]*regexp.Regexp
}

// NewRequestValidator creates a new request validator
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		patternCache: make(map[string]*regexp.Regexp),
	}
}

// ValidateContentType validates the request content type
func (v *RequestValidator) ValidateContentType(r *http.Request, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return fmt.Errorf("content-type header is required")
	}

	// Handle content type with charset or other parameters
	contentType = strings.TrimSpace(strings.Split(contentType, ";")[0])

	for _, ct := range allowed {
		if strings.EqualFold(contentType, ct) {
			return nil
		}
	}

	return fmt.Errorf("invalid content-type: %s, allowed: %v", contentType, allowed)
}

// ValidateQueryParams validates query parameters against rules. Repeated
// parameters are checked value by value.
func (v *RequestValidator) ValidateQueryParams(r *http.Request, rules QueryRules) error {
	params := r.URL.Query()

	for _, required := range rules.Required {
		if params.Get(required) == "" {
			return fmt.Errorf("missing required parameter: %s", required)
		}
	}

	for param, paramType := range rules.Types {
		for _, value := range params[param] {
			if value == "" {
				continue
			}
			switch paramType {
			case ParamTypeInt:
				if _, err := strconv.Atoi(value); err != nil {
					return fmt.Errorf("parameter %s must be an integer", param)
				}
			case ParamTypeFloat:
				if _, err := strconv.ParseFloat(value, 64); err != nil {
					return fmt.Errorf("parameter %s must be a number", param)
				}
			}
		}
	}

	for param, pattern := range rules.Patterns {
		re, err := v.getPattern(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern for parameter %s: %w", param, err)
		}
		for _, value := range params[param] {
			if value != "" && !re.MatchString(value) {
				return fmt.Errorf("parameter %s does not match pattern", param)
			}
		}
	}

	for param, rng := range rules.Ranges {
		for _, value := range params[param] {
			if value == "" {
				continue
			}
			num, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("parameter %s must be numeric for range validation", param)
			}
			if num < rng.Min || num > rng.Max {
				return fmt.Errorf("parameter %s must be between %s and %s", param,
					strconv.FormatFloat(rng.Min, 'f', -1, 64), strconv.FormatFloat(rng.Max, 'f', -1, 64))
			}
		}
	}

	return nil
}

// ValidateJSONSchema validates the request body against a compiled schema.
// The body is restored for downstream handlers.
func (v *RequestValidator) ValidateJSONSchema(r *http.Request, schema *gojsonschema.Schema) error {
	if schema == nil {
		return nil
	}

	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	return ValidateDocument(schema, bodyBytes)
}

// ValidateDocument checks raw JSON against schema.
func ValidateDocument(schema *gojsonschema.Schema, doc []byte) error {
	if len(bytes.TrimSpace(doc)) == 0 {
		return fmt.Errorf("request body is empty")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return fmt.Errorf("validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ValidateContentLength validates that the request body doesn't exceed max size
func (v *RequestValidator) ValidateContentLength(r *http.Request, maxSize int64) error {
	if maxSize <= 0 {
		return nil
	}

	if r.ContentLength > maxSize {
		return fmt.Errorf("request body too large: %d bytes (max: %d)", r.ContentLength, maxSize)
	}

	return nil
}

// Validate performs all configured validations
func (v *RequestValidator) Validate(r *http.Request, rules *Rules) error {
	if rules == nil {
		return nil
	}

	if err := v.ValidateContentType(r, rules.ContentTypes); err != nil {
		return err
	}
	if err := v.ValidateContentLength(r, rules.MaxBodySize); err != nil {
		return err
	}
	if err := v.ValidateQueryParams(r, rules.Query); err != nil {
		return err
	}
	if rules.JSONSchema != nil && r.Method != http.MethodGet {
		if err := v.ValidateJSONSchema(r, rules.JSONSchema); err != nil {
			return err
		}
	}

	return nil
}

func (v *RequestValidator) getPattern(pattern string) (*regexp.Regexp, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if re, ok := v.patternCache[pattern]; ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	v.patternCache[pattern] = re
	return re, nil
}

// Middleware rejects invalid requests with a 400 JSON error.
func Middleware(validator *RequestValidator, rules *Rules) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := validator.Validate(r, rules); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
