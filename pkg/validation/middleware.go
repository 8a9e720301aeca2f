package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// Middleware decodes and validates HTTP request bodies
type Middleware struct {
	config *ValidationConfig
}

// NewMiddleware creates a new validation middleware
func NewMiddleware(config *ValidationConfig) *Middleware {
	if config == nil {
		config = DefaultValidationConfig()
	}

	return &Middleware{
		config: config,
	}
}

// DecodeJSON reads the request body into v and validates it. Malformed JSON
// and rule violations are both returned as ValidationErrors.
func (m *Middleware) DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return ValidationErrors{{
			Field:   "request_body",
			Value:   nil,
			Message: fmt.Sprintf("invalid JSON: %v", err),
		}}
	}

	return ValidateWithConfig(v, m.config)
}

// RequireJSON rejects requests with a body whose content type is not JSON
func (m *Middleware) RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != 0 && !isJSONContentType(r.Header.Get("Content-Type")) {
			WriteErrorResponse(w, http.StatusUnsupportedMediaType, ValidationErrors{{
				Field:   "Content-Type",
				Value:   r.Header.Get("Content-Type"),
				Message: "must be application/json",
			}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteErrorResponse writes validation errors as JSON response
func WriteErrorResponse(w http.ResponseWriter, statusCode int, errs ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorData, err := MarshalValidationErrors(errs)
	if err != nil {
		// Fallback error response
		w.Write([]byte(`{"error":"validation failed","message":"internal validation error"}`))
		return
	}

	w.Write(errorData)
}

func isJSONContentType(ct string) bool {
	return len(ct) >= 16 && ct[:16] == "application/json"
}
