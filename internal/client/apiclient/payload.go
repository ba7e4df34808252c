package apiclient

import "fmt"

// payloadError is a 2xx body that decoded but lacks a required field.
type payloadError struct {
	op     string
	detail string
}

func (e *payloadError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrBadPayload, e.op, e.detail)
}

func (e *payloadError) Unwrap() error { return ErrBadPayload }
