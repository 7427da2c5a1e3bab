// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

// Package validation provides struct validation using
// go-playground/validator v10. A thread-safe singleton validator is
// shared by the HTTP handlers and the WebSocket event router, with
// custom rules for session identifiers and viewpoint identifiers.
//
// Example:
//
//	type createTagRequest struct {
//	    Name      string `validate:"required,max=64"`
//	    SessionID string `validate:"required,session_id"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    rw.ValidationError("invalid request", err.Fields())
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// maxIdentifierLength bounds session and viewpoint identifiers. The
// identifiers are opaque but travel in log fields and storage keys, so
// unbounded input is rejected at the boundary.
const maxIdentifierLength = 256

// ValidationError describes a single field failure.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"rule"`
	Message string `json:"message"`
}

// Error returns the human-readable message.
func (e ValidationError) Error() string {
	return e.Message
}

// RequestValidationError is a collection of field failures.
type RequestValidationError struct {
	fields []ValidationError
}

// Fields returns the individual field failures.
func (ve *RequestValidationError) Fields() []ValidationError {
	return ve.fields
}

// Error implements the error interface with a combined message.
func (ve *RequestValidationError) Error() string {
	if len(ve.fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(ve.fields))
	for _, f := range ve.fields {
		messages = append(messages, f.Message)
	}
	return strings.Join(messages, "; ")
}

// getValidator returns the singleton validator, initializing it with
// custom rules on first use.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// session_id: opaque, non-blank, bounded, no control characters.
		_ = validate.RegisterValidation("session_id", func(fl validator.FieldLevel) bool {
			return validIdentifier(fl.Field().String())
		})

		// viewpoint_id: same shape constraints as session_id; the
		// composite lat-lng-dir format itself is client-derived and
		// treated as opaque here.
		_ = validate.RegisterValidation("viewpoint_id", func(fl validator.FieldLevel) bool {
			return validIdentifier(fl.Field().String())
		})
	})
	return validate
}

// validIdentifier reports whether s is usable as an opaque identifier.
func validIdentifier(s string) bool {
	if strings.TrimSpace(s) == "" || len(s) > maxIdentifierLength {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// ValidateStruct validates a struct using its `validate` tags.
// Returns nil on success, or a *RequestValidationError describing every
// failed field.
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: the caller passed a non-struct.
		return &RequestValidationError{fields: []ValidationError{{
			Field:   "",
			Tag:     "struct",
			Message: err.Error(),
		}}}
	}

	fields := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: translateError(fe),
		})
	}
	return &RequestValidationError{fields: fields}
}

// translateError renders a field error as a stable, human-readable
// message without leaking the offending value.
func translateError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "session_id":
		return fmt.Sprintf("%s is not a valid session identifier", fe.Field())
	case "viewpoint_id":
		return fmt.Sprintf("%s is not a valid viewpoint identifier", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
