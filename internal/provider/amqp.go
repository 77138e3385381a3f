package provider

import (
	"context"
	"errors"
	"net"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vvka-141/cxn/pkg/cxn"
)

// AMQP returns the AMQP 0-9-1 broker kind (RabbitMQ), probed by opening
// and closing a connection.
func AMQP() *Kind {
	return &Kind{
		Name:        "amqp",
		Aliases:     []string{"rabbitmq", "kombu"},
		Description: "AMQP 0-9-1 broker such as RabbitMQ (connection handshake)",
		Requirement: "github.com/rabbitmq/amqp091-go>=1.8.0,<2",
		Schemes:     []string{"amqp", "amqps"},
		DefaultPort: 5672,
		Connect:     connectAMQP,
		Classifier:  cxn.FailureClassifierFunc(isAMQPFailure),
	}
}

func connectAMQP(ctx context.Context, t *cxn.Target) error {
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName("cxn")

	conn, err := amqp.DialConfig(t.Raw, amqp.Config{
		Dial:       contextDialer(ctx),
		Properties: props,
	})
	if err != nil {
		return err
	}
	return conn.Close()
}

// contextDialer dials within ctx and bounds the handshake by ctx's deadline.
func contextDialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok {
			if err := conn.SetDeadline(deadline); err != nil {
				conn.Close()
				return nil, err
			}
		}
		return conn, nil
	}
}

// isAMQPFailure treats broker-reported errors (access refused, vhost not
// found, handshake aborted) as failures.
func isAMQPFailure(err error) bool {
	var amqpErr *amqp.Error
	return errors.As(err, &amqpErr)
}
