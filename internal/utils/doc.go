// Package utils provides input validation for tool requests.
//
// Validation:
//   - Params size and nesting depth bounds
//   - Shell command length bounds
//
// Features:
//   - Consistent error messages
//   - Configurable limits
//
// Example Usage:
//
//	validator := utils.DefaultParamsValidator()
//	err := validator.Validate(params)
package utils
