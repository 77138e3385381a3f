package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/vvka-141/cxn/pkg/cxn"
)

// errNotServing reports a health endpoint that answered with a status
// other than SERVING.
var errNotServing = errors.New("service is not serving")

// GRPC returns the gRPC kind, probed through the standard health service.
//
// The URL path names the service to check: grpc://host:50051/my.pkg.Service.
// An empty path checks overall server health. grpcs accepts the ca_file and
// insecure parameters.
func GRPC() *Kind {
	return &Kind{
		Name:        "grpc",
		Description: "gRPC server (grpc.health.v1 Check)",
		Requirement: "google.golang.org/grpc>=1.60.0,<2",
		Schemes:     []string{"grpc", "grpcs"},
		DefaultPort: 80,
		Connect:     connectGRPC,
		Classifier:  cxn.FailureClassifierFunc(isGRPCFailure),
	}
}

func connectGRPC(ctx context.Context, t *cxn.Target) error {
	creds := insecure.NewCredentials()
	defaultPort := 80
	if t.Scheme == "grpcs" {
		values, err := targetQuery(t)
		if err != nil {
			return err
		}
		tc, err := clientTLSConfig(t, values)
		if err != nil {
			return fmt.Errorf("TLS config: %w", err)
		}
		creds = credentials.NewTLS(tc)
		defaultPort = 443
	}

	conn, err := grpc.NewClient(t.Address(defaultPort),
		grpc.WithTransportCredentials(creds),
		grpc.WithUserAgent("cxn"),
	)
	if err != nil {
		return err
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{
		Service: healthService(t.Rest),
	})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", errNotServing, resp.GetStatus())
	}
	return nil
}

// healthService extracts the service name from the URL path.
func healthService(rest string) string {
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	return strings.Trim(rest, "/")
}

// isGRPCFailure treats transport, auth and missing-service statuses as
// failures. Other status codes indicate a misbehaving server.
func isGRPCFailure(err error) bool {
	if errors.Is(err, errNotServing) {
		return true
	}
	s, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch s.Code() {
	case codes.Unavailable,
		codes.DeadlineExceeded,
		codes.Unauthenticated,
		codes.PermissionDenied,
		codes.Unimplemented,
		codes.NotFound:
		return true
	}
	return false
}
