package errors

import "net/http"

var ErrUnauthenticated = &Exception{
	Message:    "unauthorized",
	StatusCode: http.StatusUnauthorized,
}

var ErrInvalidCredentials = &Exception{
	Message:    "invalid credentials",
	StatusCode: http.StatusUnauthorized,
}
