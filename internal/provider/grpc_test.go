package provider

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/vvka-141/cxn/internal/testinfra"
)

// startHealthServer runs a gRPC health service on a loopback port.
func startHealthServer(t *testing.T, opts ...grpc.ServerOption) (*health.Server, string) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go srv.Serve(l) //nolint:errcheck
	t.Cleanup(srv.Stop)

	return hs, strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func TestGRPC_Probe(t *testing.T) {
	hs, port := startHealthServer(t)
	hs.SetServingStatus("orders.v1.Orders", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("billing.v1.Billing", healthpb.HealthCheckResponse_NOT_SERVING)

	base := "grpc://127.0.0.1:" + port

	assert.True(t, probe(t, GRPC(), base))
	assert.True(t, probe(t, GRPC(), base+"/orders.v1.Orders"))
	assert.False(t, probe(t, GRPC(), base+"/billing.v1.Billing"))
	assert.False(t, probe(t, GRPC(), base+"/unknown.v1.Service"))
}

func TestGRPC_TLSWithCustomCA(t *testing.T) {
	bundle, err := testinfra.GenerateCertBundle([]string{"127.0.0.1"})
	require.NoError(t, err)
	paths, err := bundle.WriteToDir(t.TempDir())
	require.NoError(t, err)
	serverTLS, err := bundle.ServerTLSConfig()
	require.NoError(t, err)

	_, port := startHealthServer(t, grpc.Creds(credentials.NewTLS(serverTLS)))
	base := "grpcs://127.0.0.1:" + port

	assert.True(t, probe(t, GRPC(), base+"?ca_file="+paths.CACert))
	assert.True(t, probe(t, GRPC(), base+"?insecure=true"))
	assert.False(t, probe(t, GRPC(), base), "untrusted certificate")
}

func TestHealthService(t *testing.T) {
	assert.Equal(t, "", healthService(""))
	assert.Equal(t, "", healthService("/"))
	assert.Equal(t, "orders.v1.Orders", healthService("/orders.v1.Orders"))
	assert.Equal(t, "orders.v1.Orders", healthService("/orders.v1.Orders/?ca_file=x#frag"))
}

func TestIsGRPCFailure(t *testing.T) {
	for _, c := range []codes.Code{codes.Unavailable, codes.DeadlineExceeded, codes.Unauthenticated, codes.PermissionDenied, codes.Unimplemented, codes.NotFound} {
		assert.True(t, isGRPCFailure(status.Error(c, "x")), c.String())
	}
	for _, c := range []codes.Code{codes.Internal, codes.InvalidArgument, codes.Unknown} {
		assert.False(t, isGRPCFailure(status.Error(c, "x")), c.String())
	}
	assert.True(t, isGRPCFailure(errNotServing))
}
