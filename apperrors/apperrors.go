// Package apperrors defines the error taxonomy shared by the order and payment
// services. Controllers translate these into HTTP responses; services never
// return raw persistence errors to their callers.
package apperrors

import (
	"fmt"
	"strings"
)

// FieldError names a single violated field and the rule it broke.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed, missing or contradictory input. All
// violated fields are collected before the error is returned, so the caller
// sees every problem at once.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(parts, "; ")
}

// NewValidation builds a single-field validation error.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Collector accumulates field violations and yields one ValidationError.
type Collector struct {
	fields []FieldError
}

// Add records a violation for field.
func (c *Collector) Add(field, message string) {
	c.fields = append(c.fields, FieldError{Field: field, Message: message})
}

// Err returns the collected ValidationError, or nil if nothing was added.
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}

// NotFoundError reports that a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Resource, e.ID)
}

// NewNotFound builds a NotFoundError for the given resource and id.
func NewNotFound(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ForbiddenError reports that the requester is neither the resource owner nor
// an elevated role.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// NewForbidden builds a ForbiddenError.
func NewForbidden(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// ConflictError reports a transition attempted from an illegal source state,
// including the case where a concurrent writer got there first.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflict builds a ConflictError.
func NewConflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// DependencyError reports a gateway, cache or notification failure that was
// not caused by caller input.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// NewDependency wraps err as a DependencyError for operation op.
func NewDependency(op string, err error) *DependencyError {
	return &DependencyError{Op: op, Err: err}
}
