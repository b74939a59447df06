package errors

import (
	"fmt"
	"strings"
)

// ErrMissingConfig is returned when a required configuration value is absent
type ErrMissingConfig struct {
	Key string
}

func (e *ErrMissingConfig) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Key)
}

// ErrNotFound is returned when a remote resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrNoUsableColumn is returned when schema probing finds no acceptable
// vendor column on a table
type ErrNoUsableColumn struct {
	Table string
	Tried []string
}

func (e *ErrNoUsableColumn) Error() string {
	return fmt.Sprintf("no usable vendor column on %s (tried: %s)", e.Table, strings.Join(e.Tried, ", "))
}

// UserError is a single field-level error reported by the Shopify Admin API
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// ErrUserErrors aggregates the userErrors array of a GraphQL mutation.
// These are semantic rejections and are never retried.
type ErrUserErrors struct {
	Operation string
	Errors    []UserError
}

func (e *ErrUserErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ue := range e.Errors {
		if len(ue.Field) > 0 {
			msgs[i] = fmt.Sprintf("%s: %s", strings.Join(ue.Field, "."), ue.Message)
		} else {
			msgs[i] = ue.Message
		}
	}
	return fmt.Sprintf("%s userErrors: %s", e.Operation, strings.Join(msgs, "; "))
}
