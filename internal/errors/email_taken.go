package errors

import "net/http"

var ErrEmailTaken = &Exception{
	Message:    "email already in use",
	StatusCode: http.StatusConflict,
}
