package api

import (
	"errors"
	"fmt"
)

// Generic messages shown when the backend gave nothing better.
const (
	msgTransport  = "서버에 연결할 수 없습니다."
	msgBadPayload = "서버 응답을 해석할 수 없습니다."
)

// TransportError means no response reached the client: dial or DNS failure,
// a dropped connection, or a cancelled context.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// RejectionError means the backend answered with a non-success status.
// Message holds the server's "error" field verbatim when one was sent and the
// operation's fallback text otherwise.
type RejectionError struct {
	Op      string
	Status  int
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: rejected with status %d: %s", e.Op, e.Status, e.Message)
}

// ValidationError is a precondition failure detected before any request was
// sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRejection reports whether err is (or wraps) a RejectionError.
func IsRejection(err error) bool {
	var re *RejectionError
	return errors.As(err, &re)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Message returns the text a user should see for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		re *RejectionError
		te *TransportError
		ve *ValidationError
	)
	switch {
	case errors.As(err, &re):
		return re.Message
	case errors.As(err, &te):
		return msgTransport
	case errors.As(err, &ve):
		return ve.Message
	}
	return err.Error()
}
