package errors

import "errors"

// Domain-level failures shared by repositories, services and handlers.
// Handlers translate them to HTTP status codes with errors.Is.
var (
	// ErrNotFound the requested record does not exist.
	ErrNotFound = errors.New("registo não encontrado")

	// ErrConflict a unique business key (code, email, designation) is already taken.
	ErrConflict = errors.New("já existe um registo com estes dados")

	// ErrInvalidReference a codigo_* field points at a record that does not exist.
	ErrInvalidReference = errors.New("referência inválida")

	// ErrValidation the payload failed field validation.
	ErrValidation = errors.New("dados inválidos")

	// ErrUnauthorized credentials or token rejected.
	ErrUnauthorized = errors.New("credenciais inválidas")
)
