package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
)

// Enhanced validator instance with custom validations
var (
	// Validate is the main validator instance
	Validate *validator.Validate

	identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

func init() {
	Validate = validator.New()

	// Register custom validation functions
	Validate.RegisterValidation("node_id", validateIdentifier)
	Validate.RegisterValidation("edge_id", validateIdentifier)
	Validate.RegisterValidation("node_category", validateNodeCategory)
	Validate.RegisterValidation("flow_type", validateFlowType)
	Validate.RegisterValidation("volume", validateVolume)
	Validate.RegisterValidation("node_label", validateNodeLabel)

	// Register tag name function to use JSON tags for field names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateWithPlayground validates using go-playground/validator
func ValidateWithPlayground(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("validation: %w", err)
		}
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors converts validator errors to our custom format
func formatValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errs = append(errs, ValidationError{
				Field:   fieldError.Field(),
				Value:   fieldError.Value(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return errs
}

// getErrorMessage returns a human-readable error message
func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("minimum value/length is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum value/length is %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "node_id":
		return "must be a valid node identifier (alphanumeric, underscore, hyphen)"
	case "edge_id":
		return "must be a valid connection identifier (alphanumeric, underscore, hyphen)"
	case "node_category":
		return "must be one of: source, intermediate, sink"
	case "flow_type":
		return "must be one of: batch, stream"
	case "volume":
		return "must be one of: tiny, small, medium, large, x-large"
	case "node_label":
		return fmt.Sprintf("must be at most %d characters", diagram.MaxLabelLength)
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}

// Custom validation functions for diagram rules

// validateIdentifier validates node and connection identifiers
func validateIdentifier(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return identifierPattern.MatchString(id) && len(id) <= 100
}

func validateNodeCategory(fl validator.FieldLevel) bool {
	return diagram.Category(fl.Field().String()).Valid()
}

// validateFlowType accepts the empty string; pair with required to demand a value.
func validateFlowType(fl validator.FieldLevel) bool {
	return diagram.FlowType(fl.Field().String()).Valid()
}

func validateVolume(fl validator.FieldLevel) bool {
	return diagram.Volume(fl.Field().String()).Valid()
}

// validateNodeLabel counts runes, not bytes.
func validateNodeLabel(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) <= diagram.MaxLabelLength
}

// ValidationConfig holds validation configuration
type ValidationConfig struct {
	MaxErrors int `json:"max_errors"`
}

// DefaultValidationConfig returns default validation configuration
func DefaultValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		MaxErrors: 10,
	}
}

// ValidateWithConfig validates with specific configuration
func ValidateWithConfig(s interface{}, config *ValidationConfig) error {
	if config == nil {
		config = DefaultValidationConfig()
	}

	err := ValidateStruct(s)
	if err != nil {
		if validationErrors, ok := err.(ValidationErrors); ok {
			if config.MaxErrors > 0 && len(validationErrors) > config.MaxErrors {
				return ValidationErrors(validationErrors[:config.MaxErrors])
			}
		}
		return err
	}

	return nil
}

// ErrorResponse is the wire form of a validation failure
type ErrorResponse struct {
	Errors []ValidationError `json:"errors"`
	Count  int               `json:"count"`
}

// MarshalValidationErrors marshals validation errors to JSON
func MarshalValidationErrors(errs ValidationErrors) ([]byte, error) {
	return json.Marshal(ErrorResponse{
		Errors: errs,
		Count:  len(errs),
	})
}

// UnmarshalValidationErrors unmarshals validation errors from JSON
func UnmarshalValidationErrors(data []byte) (ValidationErrors, error) {
	var response ErrorResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	}

	return ValidationErrors(response.Errors), nil
}
