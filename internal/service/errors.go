package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBatchTooLarge is returned when a plan request exceeds the configured row limit.
	ErrBatchTooLarge = errors.New("plan batch too large")
	// ErrNoSnapshotSource is returned by PlanFromRepository when no repository is wired.
	ErrNoSnapshotSource = errors.New("no snapshot source configured")
)

// RowError is a rejected plan row.
type RowError struct {
	Index int    `json:"index"`
	SKU   string `json:"sku"`
	Err   error  `json:"-"`
}

func (e RowError) Error() string {
	if e.SKU == "" {
		return fmt.Sprintf("row %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("row %d (%s): %v", e.Index, e.SKU, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// PlanValidationError collects every rejected row of a plan request.
type PlanValidationError struct {
	Rows []RowError
}

func (e *PlanValidationError) Error() string {
	parts := make([]string, 0, len(e.Rows))
	for _, r := range e.Rows {
		parts = append(parts, r.Error())
	}
	return fmt.Sprintf("%d invalid plan rows: %s", len(e.Rows), strings.Join(parts, "; "))
}

func (e *PlanValidationError) Unwrap() []error {
	errs := make([]error, len(e.Rows))
	for i, r := range e.Rows {
		errs[i] = r
	}
	return errs
}
