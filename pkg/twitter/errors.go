package twitter

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyResult is returned when a search collected zero tweets across all
// pages.
var ErrEmptyResult = errors.New("no tweets found in the response")

// FetchError carries the upstream status and body of a failed initial
// search request. Continuation failures never surface as FetchError; they
// end pagination with whatever was collected.
type FetchError struct {
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.Status, e.Body)
}
