package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrValidation is returned when request input is malformed or insufficient.
	ErrValidation = errors.New("invalid set job request")

	// ErrDuplicateSet is returned when another job already has the same component multiset.
	ErrDuplicateSet = errors.New("set with identical components already exists")

	// ErrJobNotFound is returned when a set job cannot be found by ID.
	ErrJobNotFound = errors.New("set job not found")

	// ErrJobNotEditable is returned when an edit targets a job that already left the open state.
	ErrJobNotEditable = errors.New("set job can no longer be edited")

	// ErrJobNotEligible is returned when a guarded status transition finds the job in another state.
	ErrJobNotEligible = errors.New("set job is not in the expected state")

	// ErrMissingComponent is returned when a referenced variant has no component record.
	ErrMissingComponent = errors.New("component variant not found")

	// ErrInsufficientComponents is returned when a job has fewer than two stored components.
	ErrInsufficientComponents = errors.New("set job has fewer than two components")

	// ErrMissingBarcode is returned when the barcode pool has no unused barcode left.
	ErrMissingBarcode = errors.New("no unused barcode available")

	// ErrMissingPrice marks a component without a usable minimum gross price.
	ErrMissingPrice = errors.New("component has no usable minimum gross price")

	// ErrUnexpected wraps any other failure while aggregating a single job.
	ErrUnexpected = errors.New("unexpected aggregation failure")

	// ErrRunInProgress is returned when another run of the same kind holds the run lock.
	ErrRunInProgress = errors.New("a run of this kind is already in progress")

	// ErrPublishFailed is returned when a run trigger cannot be handed to the broker.
	ErrPublishFailed = errors.New("failed to queue run request")

	// ErrImportFileMissing is returned when there is no import file to process.
	ErrImportFileMissing = errors.New("import file not found")

	// ErrInvalidImportFile is returned when the import file cannot be parsed or lacks a column.
	ErrInvalidImportFile = errors.New("invalid import file")
)

// DuplicateError carries the job whose component multiset matched a candidate.
type DuplicateError struct {
	JobID        int64
	NewVariantID *int64
	Signature    string
}

func (e *DuplicateError) Error() string {
	msg := fmt.Sprintf("set already exists as job %d (variant ids: %s)",
		e.JobID, strings.ReplaceAll(e.Signature, ",", ", "))
	if e.NewVariantID != nil {
		msg += "; set variant id: " + strconv.FormatInt(*e.NewVariantID, 10)
	}
	return msg
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateSet
}

// ErrorKind names the failure class of a batch error for reports and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrDuplicateSet):
		return "DuplicateError"
	case errors.Is(err, ErrMissingComponent):
		return "MissingComponentError"
	case errors.Is(err, ErrInsufficientComponents):
		return "InsufficientComponentsError"
	case errors.Is(err, ErrMissingBarcode):
		return "MissingBarcodeError"
	case errors.Is(err, ErrMissingPrice):
		return "MissingPriceError"
	case errors.Is(err, ErrJobNotEligible):
		return "NotEligibleError"
	}
	return "UnexpectedError"
}
