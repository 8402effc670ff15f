package gateway

import (
	"errors"
	"fmt"
)

// RemoteError is a non-2xx response from the canonical store. Status codes
// in the 4xx range mean the store rejected the write outright; retrying the
// same payload will fail again, so the flush loop drops those instead of
// blocking the queue.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("store returned %d: %s", e.Status, e.Body)
}

// Permanent reports whether the write should not be retried.
func (e *RemoteError) Permanent() bool {
	return e.Status >= 400 && e.Status < 500
}

// IsPermanent classifies err: true only for a 4xx RemoteError. Network
// failures and 5xx responses are transient and eligible for retry.
func IsPermanent(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Permanent()
}
