package models

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Reason classifies why a field was rejected.
type Reason string

const (
	ReasonMissing   Reason = "missing"
	ReasonWrongType Reason = "wrong type"
	ReasonEmpty     Reason = "empty string"
	ReasonInvalid   Reason = "invalid"
)

// FieldError describes a single rejected field. Path is dotted, with list
// indexes as their own segment (e.g. "parameters.0.name").
type FieldError struct {
	Path    string
	Reason  Reason
	Message string
}

func (e FieldError) String() string {
	if e.Message == "" || e.Message == string(e.Reason) {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Path, e.Reason, e.Message)
}

// ValidationError collects every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Summary renders the error as a human-readable multi-line report, one line
// per offending field.
func (e *ValidationError) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Validation Error: %d field(s) failed validation", len(e.Fields))
	for _, f := range e.Fields {
		b.WriteString("\n  ")
		b.WriteString(f.String())
	}
	return b.String()
}

// Paths returns the path of every field error in order.
func (e *ValidationError) Paths() []string {
	paths := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		paths = append(paths, f.Path)
	}
	return paths
}

// Add appends a field error.
func (e *ValidationError) Add(path string, reason Reason, message string) {
	e.Fields = append(e.Fields, FieldError{Path: path, Reason: reason, Message: message})
}

// ErrorOrNil returns e when it holds at least one field error and nil
// otherwise.
func (e *ValidationError) ErrorOrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidationErrorFrom converts the result of an ozzo-validation call into a
// *ValidationError. Errors that did not come from validation rules are
// returned unchanged.
func ValidationErrorFrom(err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	fields := FieldErrorsFrom(err)
	if len(fields) == 0 {
		return err
	}
	return &ValidationError{Fields: fields}
}

// FieldErrorsFrom flattens nested ozzo-validation errors into dotted field
// paths. Keys are sorted so the output is stable.
func FieldErrorsFrom(err error) []FieldError {
	var out []FieldError
	flattenValidation("", err, &out)
	return out
}

func flattenValidation(prefix string, err error, out *[]FieldError) {
	if err == nil {
		return
	}

	var errs validation.Errors
	if errors.As(err, &errs) {
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
		for _, k := range keys {
			flattenValidation(joinPath(prefix, k), errs[k], out)
		}
		return
	}

	reason := ReasonInvalid
	var obj validation.Error
	if errors.As(err, &obj) && obj.Code() == validation.ErrRequired.Code() {
		reason = ReasonMissing
	}
	*out = append(*out, FieldError{Path: prefix, Reason: reason, Message: err.Error()})
}

// lessKey orders list indexes numerically and everything else lexically.
func lessKey(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	return a < b
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
