package errors

import "net/http"

var ErrValidation = &Exception{
	Message:    "validation failed",
	StatusCode: http.StatusBadRequest,
}

// Validation builds a 400 exception for a single invalid field.
func Validation(field, message string) *Exception {
	return ErrValidation.WithFields(map[string]string{field: message})
}
