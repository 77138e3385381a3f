package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
)

func TestIsNetworkFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), true},
		{"os deadline", os.ErrDeadlineExceeded, true},
		{"eof", io.EOF, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"closed", net.ErrClosed, true},
		{"dns not found", &net.DNSError{Err: "no such host", Name: "db.invalid", IsNotFound: true}, true},
		{"op error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("boom")}, true},
		{"refused errno", fmt.Errorf("connect: %w", syscall.ECONNREFUSED), true},
		{"reset errno", syscall.ECONNRESET, true},
		{"unreachable errno", syscall.EHOSTUNREACH, true},
		{"message only", errors.New("read tcp 10.0.0.1:5432: connection reset by peer"), true},
		{"i/o timeout message", errors.New("I/O TIMEOUT"), true},
		{"programming error", errors.New("invalid option"), false},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNetworkFailure(tt.err); got != tt.want {
				t.Errorf("IsNetworkFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestKind_IsConnectionFailure(t *testing.T) {
	k := mockKind(nil)

	if !k.IsConnectionFailure(errMockRefused) {
		t.Error("kind classifier should be consulted")
	}
	if !k.IsConnectionFailure(syscall.ECONNREFUSED) {
		t.Error("network failures should be recognised for every kind")
	}
	if k.IsConnectionFailure(errors.New("bad option")) {
		t.Error("unrelated errors should not be failures")
	}
	if k.IsConnectionFailure(nil) {
		t.Error("nil is not a failure")
	}

	bare := &Kind{Name: "bare"}
	if !bare.IsConnectionFailure(io.EOF) {
		t.Error("kind without classifier should fall back to network failures")
	}
}
