package utils

import (
	"encoding/json"
	"fmt"
)

// Payload limits (in bytes)
const (
	MaxParamsSize  = 1 * 1024 * 1024 // 1MB - maximum tool params payload
	MaxCommandSize = 64 * 1024       // 64KB - single command size limit
	MaxParamsDepth = 20              // maximum params nesting depth
)

// ParamsValidator bounds the size and shape of tool parameters
// before they reach a provider.
type ParamsValidator struct {
	maxSize int
}

// NewParamsValidator creates a validator with the specified max size
func NewParamsValidator(maxSize int) *ParamsValidator {
	return &ParamsValidator{maxSize: maxSize}
}

// DefaultParamsValidator returns a validator with the default 1MB limit
func DefaultParamsValidator() *ParamsValidator {
	return NewParamsValidator(MaxParamsSize)
}

// Validate checks the serialized size and nesting depth of a params map
func (v *ParamsValidator) Validate(params map[string]interface{}) error {
	if len(params) == 0 {
		return nil
	}

	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	if len(data) > v.maxSize {
		return fmt.Errorf("params size %d bytes exceeds maximum %d bytes", len(data), v.maxSize)
	}

	// Bound nesting depth (prevent abuse from deeply nested structures)
	return checkDepth(params, 0, MaxParamsDepth)
}

// ValidateCommand bounds the length of a single shell command
func ValidateCommand(command string) error {
	if len(command) > MaxCommandSize {
		return fmt.Errorf("command size %d bytes exceeds maximum %d bytes", len(command), MaxCommandSize)
	}
	return nil
}

func checkDepth(data interface{}, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("params nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}

	return nil
}
