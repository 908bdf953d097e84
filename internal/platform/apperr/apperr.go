// Copyright (c) 2026 Atelier. All rights reserved.
// Author: lucas.m.rezende@gmail.com

/*
Package apperr defines the centralized error handling framework for Atelier.

It provides a rich error type that bridges the gap between low-level Catalog/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: One constructor per failure class of the catalog pipeline
    (validation, path escape, locale inconsistency, image processing, catalog I/O).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
)

// AppError is the canonical error type for the Atelier API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., absolute filesystem paths).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "IDENTIFIER_CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Project") // Returns "Project not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// PathEscape creates a 400 [AppError] for a path that resolves outside the sandbox root.
//
// The offending path is kept in the cause chain for logging; the client only
// learns that the reference was rejected, never the resolved absolute path.
func PathEscape(cause error) *AppError {
	return &AppError{
		Code:       "PATH_ESCAPE",
		Message:    "Path reference escapes the configured root",
		HTTPStatus: http.StatusBadRequest,
		Cause:      cause,
	}
}

// ImageProcessingFailed creates a 400 [AppError] for an undecodable or unsupported
// image upload. Bad input files are a client problem, never a server crash.
func ImageProcessingFailed(cause error) *AppError {
	return &AppError{
		Code:       "IMAGE_PROCESSING_FAILED",
		Message:    "Uploaded image could not be processed",
		HTTPStatus: http.StatusBadRequest,
		Cause:      cause,
	}
}

// IdentifierConflict creates a 409 [AppError] for a duplicate record identifier.
func IdentifierConflict(identifier string) *AppError {
	return &AppError{
		Code:       "IDENTIFIER_CONFLICT",
		Message:    "A record with identifier " + identifier + " already exists",
		HTTPStatus: http.StatusConflict,
	}
}

// LocaleInconsistency creates a 409 [AppError] signaling that the per-locale
// catalog files have structurally diverged (usually from hand-editing) and
// must be repaired manually. The system never auto-heals this state.
func LocaleInconsistency(msg string) *AppError {
	return &AppError{
		Code:       "LOCALE_INCONSISTENCY",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       "UNPROCESSABLE",
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Server Errors (5xx)

// CatalogReadError creates a 500 [AppError] for a missing or unparsable catalog file.
func CatalogReadError(cause error) *AppError {
	return &AppError{
		Code:       "CATALOG_READ_ERROR",
		Message:    "Catalog could not be read",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// CatalogWriteError creates a 500 [AppError] for a failed catalog persist.
func CatalogWriteError(cause error) *AppError {
	return &AppError{
		Code:       "CATALOG_WRITE_ERROR",
		Message:    "Catalog could not be written",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for an unconfigured or down collaborator.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
