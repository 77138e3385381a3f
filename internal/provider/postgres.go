package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/cxn/pkg/cxn"
)

// Postgres returns the PostgreSQL kind, probed with pgx.
//
// Cloud IAM authentication is selected with the auth query parameter; see
// postgres_auth.go.
func Postgres() *Kind {
	return &Kind{
		Name:        "postgres",
		Aliases:     []string{"postgresql", "pgx", "psycopg"},
		Description: "PostgreSQL server (pgx handshake, optional cloud IAM auth)",
		Requirement: "github.com/jackc/pgx/v5>=5.0.0,<6",
		Schemes:     []string{"postgres", "postgresql"},
		DefaultPort: 5432,
		Connect:     connectPostgres,
		Classifier:  cxn.FailureClassifierFunc(isPostgresFailure),
	}
}

func connectPostgres(ctx context.Context, t *cxn.Target) error {
	connString, auth, err := extractAuthParams(t.Raw)
	if err != nil {
		return err
	}

	config, err := pgx.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	cleanup, err := auth.apply(ctx, config)
	if err != nil {
		return err
	}
	defer cleanup()

	conn, err := pgx.ConnectConfig(ctx, config)
	if err != nil {
		return err
	}
	return conn.Close(ctx)
}

// isPostgresFailure treats server-reported errors (authentication, missing
// database, too many connections, shutdown) and connect errors as failures.
func isPostgresFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	return errors.Is(err, errTokenAcquisition)
}

// extractAuthParams strips the cxn-specific auth parameters from a
// PostgreSQL URL so that pgx does not forward them as runtime parameters.
func extractAuthParams(raw string) (string, *pgAuth, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}

	q := u.Query()
	auth := &pgAuth{
		method:   authMethod(q.Get(paramAuth)),
		region:   q.Get(paramAWSRegion),
		instance: q.Get(paramInstance),
	}
	if !auth.method.valid() {
		return "", nil, fmt.Errorf("unsupported auth method %q (expected %s, %s or %s)", auth.method, authAWSIAM, authAzure, authGoogleIAM)
	}

	for _, p := range []string{paramAuth, paramAWSRegion, paramInstance} {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String(), auth, nil
}
