package service

import "fmt"

// ValidationError indicates the caller supplied invalid input. Nothing was started or written.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// StoreError reports a failed lead lookup or write for a single candidate.
type StoreError struct {
	SourceID string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store lead %q: %v", e.SourceID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
