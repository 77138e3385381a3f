//go:build conntest

package conntest

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_Reachable(t *testing.T) {
	assert.True(t, probePostgres(t, stdContainer.ConnString))
}

func TestPostgres_WrongPasswordIsFailure(t *testing.T) {
	u, err := url.Parse(stdContainer.ConnString)
	require.NoError(t, err)
	u.User = url.UserPassword(u.User.Username(), "definitely-wrong-password")

	assert.False(t, probePostgres(t, u.String()))
}

func TestPostgres_MissingDatabaseIsFailure(t *testing.T) {
	u, err := url.Parse(stdContainer.ConnString)
	require.NoError(t, err)
	u.Path = "/does_not_exist"

	assert.False(t, probePostgres(t, u.String()))
}

func TestPostgres_VerifiedTLS(t *testing.T) {
	assert.True(t, probePostgres(t, tlsContainer.ConnString))
}

func TestPostgres_TLSRequiredAgainstPlainServer(t *testing.T) {
	connString := strings.Replace(stdContainer.ConnString, "sslmode=disable", "sslmode=require", 1)
	assert.False(t, probePostgres(t, connString))
}
