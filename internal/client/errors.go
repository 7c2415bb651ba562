package client

import (
	"errors"
	"net/http"
)

const (
	msgUnexpected  = "Ocorreu um erro inesperado. Tente novamente."
	msgNetwork     = "Não foi possível contactar o servidor"
	msgBadResponse = "Resposta inválida do servidor"
	msgNotFound    = "Registo não encontrado"
)

// FieldError is a per-field validation message returned by the API.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is every failure surfaced by the client. Status is 0 for
// network failures.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Cause }

// IsNotFound reports whether err is an HTTP 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Message extracts a human-readable message from any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgUnexpected
}

func networkError(err error) *APIError {
	return &APIError{Message: msgNetwork, Cause: err}
}

// apiErrorFrom prefers the body's message; falls back to a generic one.
func apiErrorFrom(status int, env envelope, decodeErr error) *APIError {
	e := &APIError{Status: status, Cause: decodeErr}
	if decodeErr == nil {
		e.Message = env.Message
		e.Fields = env.Errors
	}
	if e.Message == "" {
		if status == http.StatusNotFound {
			e.Message = msgNotFound
		} else {
			e.Message = msgUnexpected
		}
	}
	return e
}
