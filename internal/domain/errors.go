package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateName     = errors.New("name already exists")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtraction        = errors.New("text extraction failed")
	ErrExternalService   = errors.New("external service failed")
)

// ValidationError indicates a document was rejected before save because
// required sections are blank or a section id is not part of the type's
// schema. MissingFieldIDs lists the offending section ids in schema order.
type ValidationError struct {
	Message         string
	MissingFieldIDs []string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("required sections missing: %s", strings.Join(e.MissingFieldIDs, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DuplicateNameError indicates a knowledge file name collision at ingestion.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a file named %q already exists", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// UnsupportedFormatError indicates no extractor handles the uploaded file type.
type UnsupportedFormatError struct {
	Name string
	MIME string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q for %q", e.MIME, e.Name)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// ExtractionError indicates the text-extraction collaborator failed for one
// file. Extraction failures are per-file and never abort the rest of a batch.
type ExtractionError struct {
	Name string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not extract text from %q: %v", e.Name, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// NotFoundError indicates an operation referenced a deleted or nonexistent
// resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ExternalServiceError indicates an AI or extraction call failed. Always
// recoverable by retrying the user action; stored document state is never
// touched on this path.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func (e *ExternalServiceError) Is(target error) bool { return target == ErrExternalService }
