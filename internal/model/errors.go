package model

import (
	"errors"
	"net/http"
)

// HTTPError : ошибки, которые хендлер может отдать пользователю как есть
type HTTPError interface {
	error
	StatusCode() int
}

type (
	ValidationError struct{ Message string }
	ForbiddenError  struct{ Message string }
	NotFoundError   struct{ Message string }
	ConflictError   struct{ Message string }
)

func (e *ValidationError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string  { return e.Message }
func (e *NotFoundError) Error() string   { return e.Message }
func (e *ConflictError) Error() string   { return e.Message }

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (e *ForbiddenError) StatusCode() int  { return http.StatusForbidden }
func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ConflictError) StatusCode() int   { return http.StatusConflict }

// ErrStale : ответ пришёл после того, как пользователь ушёл из папки
var ErrStale = errors.New("результат устарел")

// GenericErrorMessage : запасное сообщение для нераспознанных ошибок
const GenericErrorMessage = "Ocorreu um erro inesperado. Tente novamente."
