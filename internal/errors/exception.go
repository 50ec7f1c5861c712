package errors

import "errors"

// Exception is an expected failure that is safe to show to API clients.
type Exception struct {
	Message    string
	StatusCode int
	Fields     map[string]string
}

func (e *Exception) Error() string {
	return e.Message
}

// Is matches exceptions by status and message so that a field-annotated copy
// still matches its sentinel.
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Message == t.Message
}

// WithFields returns a copy of e carrying per-field messages.
func (e *Exception) WithFields(fields map[string]string) *Exception {
	return &Exception{
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Fields:     fields,
	}
}

// AsException unwraps err to an Exception, or reports false for unexpected
// failures whose cause must not reach the client.
func AsException(err error) (*Exception, bool) {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
