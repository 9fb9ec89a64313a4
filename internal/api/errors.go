package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// Kind partitions transport failures into the two classes the upgrade
// workflow cares about: errors worth retrying and errors that are not.
type Kind int

const (
	// KindTransient marks connectivity failures and request timeouts.
	// Callers may retry these.
	KindTransient Kind = iota + 1

	// KindFatal marks everything else: TLS/certificate failures, malformed
	// response bodies, and API-level rejections. Retrying cannot help.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the transport layer.
type Error struct {
	Kind   Kind
	Op     string
	Status int // HTTP status, when the server answered
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable transport error.
func Transient(op string, err error) *Error {
	return &Error{Kind: KindTransient, Op: op, Err: err}
}

// Fatal wraps err as a non-retryable error.
func Fatal(op string, err error) *Error {
	return &Error{Kind: KindFatal, Op: op, Err: err}
}

// IsTransient reports whether err is a retryable transport failure.
func IsTransient(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindTransient
	}
	return false
}

// classify maps an error returned while sending a request into the
// transient/fatal taxonomy. Certificate problems must never be retried;
// connectivity problems and timeouts always may be.
func classify(op string, err error) *Error {
	if isCertError(err) {
		return Fatal(op, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Transient(op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient(op, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Transient(op, err)
	}

	// Anything the net stack can produce while dialing or reading counts
	// as connectivity loss unless proven otherwise above.
	return Transient(op, err)
}

func isCertError(err error) bool {
	var (
		verifyErr   *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
		unknownCA   x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidErr  x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &unknownCA) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}
