package leave

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidRange         = errors.New("end date cannot be before start date")
	ErrZeroDuration         = errors.New("zero working days range")
	ErrDocumentRequired     = errors.New("document required")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInvalidState         = errors.New("only pending requests can be approved or rejected")
	ErrCommentRequired      = errors.New("comment required")
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrEntitlementNotFound  = errors.New("entitlement not found")
	ErrUnsupportedDocument  = errors.New("document must be a PDF, JPG or PNG file")
	ErrDocumentTooLarge     = errors.New("document exceeds the upload size limit")
)

// DocumentRequiredError is returned when a request that needs a supporting
// document arrives without one. It matches ErrDocumentRequired.
type DocumentRequiredError struct {
	Category    Category
	WorkingDays int
}

func (e *DocumentRequiredError) Error() string {
	return fmt.Sprintf("document required for %s (%d working days)", e.Category, e.WorkingDays)
}

func (e *DocumentRequiredError) Unwrap() error {
	return ErrDocumentRequired
}

// InsufficientBalanceError carries the unfloored remaining balance of the
// requested category. It matches ErrInsufficientBalance.
type InsufficientBalanceError struct {
	Category  Category
	Remaining int
}

func (e *InsufficientBalanceError) Error() string {
	if e.Remaining <= 0 {
		return fmt.Sprintf("no balance left for %s leave", e.Category)
	}
	return fmt.Sprintf("only %d day(s) remaining for %s", e.Remaining, e.Category)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
