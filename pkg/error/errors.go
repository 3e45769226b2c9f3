package error

import "net/http"

// GenericError is the contract the recovery middleware uses to map panics
// to HTTP responses.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}

type NotFoundError string

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

type UnauthorizedError string

func (err UnauthorizedError) Error() string {
	return string(err)
}

func (err UnauthorizedError) ErrCode() string {
	return "UNAUTHORIZED_ERROR"
}

func (err UnauthorizedError) StatusCode() int {
	return http.StatusUnauthorized
}
