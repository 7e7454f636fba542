package download

import "fmt"

// ExhaustedRetriesError is the terminal per-URL outcome after every attempt
// failed. It wraps the most recent underlying cause.
type ExhaustedRetriesError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("download of %s failed after %d attempts: %v", e.URL, e.Attempts, e.Last)
}

func (e *ExhaustedRetriesError) Unwrap() error {
	return e.Last
}
