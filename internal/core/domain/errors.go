package domain

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrConnection - сеть недоступна или backend не ответил.
	ErrConnection = errors.New("connection error")
	// ErrSessionExpired - backend ответил 401, сессия сброшена.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotAuthenticated - операция требует входа, а сессии нет.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrLandlordOnly - операция доступна только арендодателю.
	ErrLandlordOnly = errors.New("only landlords can manage rooms")
	// ErrLoginRequired - регистрация прошла, но автоматический вход не удался.
	ErrLoginRequired = errors.New("registered, please log in")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
)

// ValidationError - ошибки полей формы, локальные или пришедшие от backend.
type ValidationError struct {
	Fields  map[string]string
	Message string
}

// NewValidationError собирает ошибку из ошибок полей и сводного сообщения.
func NewValidationError(fields map[string]string) *ValidationError {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fields[k]))
	}

	return &ValidationError{Fields: fields, Message: strings.Join(parts, ", ")}
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "validation failed"
	}
	return "validation failed: " + e.Message
}

// APIError - неуспешный ответ backend с полем detail.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}

// Unwrap позволяет сравнивать APIError с sentinel-ошибками через errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}
