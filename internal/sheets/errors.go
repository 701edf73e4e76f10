package sheets

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySheet is returned when a worksheet has no header row.
var ErrEmptySheet = errors.New("worksheet is empty")

// ConfigurationError reports a request that references something the sheet
// or the engine does not know: an unknown operator, or a column missing from
// the header row.
type ConfigurationError struct {
	Kind      string // "column", "operator", "sort direction", ...
	Name      string
	Available []string
}

func (e *ConfigurationError) Error() string {
	if e.Kind == "column" {
		available := "none"
		if len(e.Available) > 0 {
			available = strings.Join(e.Available, ", ")
		}
		return fmt.Sprintf("column '%s' not found. Available columns: %s", e.Name, available)
	}
	if e.Kind == "operand" {
		return fmt.Sprintf("operator '%s' takes a single value, not a list", e.Name)
	}
	if e.Kind == "range" {
		return fmt.Sprintf("invalid range '%s'", e.Name)
	}
	if len(e.Available) > 0 {
		return fmt.Sprintf("unknown %s '%s' (supported: %s)", e.Kind, e.Name, strings.Join(e.Available, ", "))
	}
	return fmt.Sprintf("unknown %s '%s'", e.Kind, e.Name)
}

// NotFoundError reports that no row carries the requested ID.
type NotFoundError struct {
	Column string
	Value  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no row with %s = '%s'", e.Column, e.Value)
}

// IsConfigurationError reports whether err is or wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
