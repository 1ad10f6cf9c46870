package metadata

import (
	"fmt"
	"math/big"
	"strings"
)

// ResolutionError is returned when the contract rejects the content locator
// read for ID. Its message is the contract's message, unchanged.
type ResolutionError struct {
	ID  *big.Int
	Err error
}

func (e *ResolutionError) Error() string { return e.Err.Error() }

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError is returned when a metadata document cannot be retrieved from
// URL. StatusCode is set for non-2xx answers; Err for transport failures and
// unparsable bodies.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ItemError is one failed position of a batch.
type ItemError struct {
	Index int
	ID    *big.Int
	Err   error
}

// BatchError collects the failures of a ContinueOnError batch.
type BatchError struct {
	Items []ItemError
}

func (e *BatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of the batch items failed", len(e.Items))
	for _, it := range e.Items {
		fmt.Fprintf(&b, "; [%d] id %s: %v", it.Index, it.ID, it.Err)
	}
	return b.String()
}

// Unwrap exposes the item errors to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Items))
	for i, it := range e.Items {
		errs[i] = it.Err
	}
	return errs
}
