package api

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"deadline exceeded", context.DeadlineExceeded, KindTransient},
		{"net timeout", timeoutErr{}, KindTransient},
		{"wrapped net op error", fmt.Errorf("send: %w", &net.OpError{Op: "dial", Err: errors.New("connection refused")}), KindTransient},
		{"plain connectivity error", errors.New("connection reset by peer"), KindTransient},
		{"unknown authority", x509.UnknownAuthorityError{}, KindFatal},
		{"hostname mismatch", x509.HostnameError{Host: "api.example"}, KindFatal},
		{"wrapped cert invalid", fmt.Errorf("send: %w", x509.CertificateInvalidError{Reason: x509.Expired}), KindFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("GET /x", tt.err)
			if got.Kind != tt.want {
				t.Errorf("classify(%v) kind = %v, want %v", tt.err, got.Kind, tt.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	transient := Transient("GET /x", errors.New("down"))
	fatal := Fatal("GET /x", errors.New("bad body"))

	if !IsTransient(transient) {
		t.Error("Transient error not reported as transient")
	}
	if IsTransient(fatal) {
		t.Error("Fatal error reported as transient")
	}
	if IsTransient(errors.New("naked")) {
		t.Error("naked error reported as transient")
	}

	wrapped := fmt.Errorf("phase failed: %w", transient)
	if !IsTransient(wrapped) {
		t.Error("wrapped transient error not reported as transient")
	}
}

func TestErrorString(t *testing.T) {
	e := &Error{Kind: KindFatal, Op: "GET /user/nodes", Status: 401, Err: errors.New("unauthorized")}
	msg := e.Error()
	for _, want := range []string{"GET /user/nodes", "fatal", "401"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
