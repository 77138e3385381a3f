package provider

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vvka-141/cxn/pkg/cxn"
)

// NATS returns the NATS server kind, probed by connecting and closing.
func NATS() *Kind {
	return &Kind{
		Name:        "nats",
		Description: "NATS server (INFO/CONNECT handshake)",
		Requirement: "github.com/nats-io/nats.go>=1.30.0,<2",
		Schemes:     []string{"nats", "tls", "ws", "wss"},
		DefaultPort: nats.DefaultPort,
		Connect:     connectNATS,
		Classifier:  cxn.FailureClassifierFunc(isNATSFailure),
	}
}

// natsDialer adapts a context to nats.CustomDialer.
type natsDialer struct {
	ctx context.Context
}

func (d natsDialer) Dial(network, address string) (net.Conn, error) {
	var dialer net.Dialer
	return dialer.DialContext(d.ctx, network, address)
}

func connectNATS(ctx context.Context, t *cxn.Target) error {
	timeout := nats.GetDefaultOptions().Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	nc, err := nats.Connect(t.Raw,
		nats.Name("cxn"),
		nats.Timeout(timeout),
		nats.NoReconnect(),
		nats.SetCustomDialer(natsDialer{ctx: ctx}),
	)
	if err != nil {
		return err
	}
	nc.Close()
	return nil
}

// isNATSFailure treats unreachable servers, rejected credentials and
// handshake timeouts as failures.
func isNATSFailure(err error) bool {
	for _, target := range []error{
		nats.ErrNoServers,
		nats.ErrAuthorization,
		nats.ErrAuthExpired,
		nats.ErrTimeout,
		nats.ErrConnectionClosed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
