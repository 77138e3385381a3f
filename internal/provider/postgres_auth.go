package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/jackc/pgx/v5"
)

// Query parameters understood by the postgres kind.
const (
	paramAuth      = "auth"
	paramAWSRegion = "aws_region"
	paramInstance  = "instance"
)

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

type authMethod string

const (
	authStandard  authMethod = ""
	authAWSIAM    authMethod = "aws-iam"
	authAzure     authMethod = "azure"
	authGoogleIAM authMethod = "google-iam"
)

func (m authMethod) valid() bool {
	switch m {
	case authStandard, authAWSIAM, authAzure, authGoogleIAM:
		return true
	}
	return false
}

// errTokenAcquisition marks failures to obtain a cloud credential. The
// target counts as unreachable: credentials often become available only
// once the surrounding environment has finished starting.
var errTokenAcquisition = errors.New("token acquisition failed")

// TokenProvider abstracts cloud token acquisition for database authentication.
// The token is used as the password.
type TokenProvider interface {
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for logs. Must not include secrets.
	String() string
}

type pgAuth struct {
	method   authMethod
	region   string
	instance string
}

// apply mutates config for the selected auth method and returns a cleanup
// func to run once the probe connection is closed.
func (a *pgAuth) apply(ctx context.Context, cfg *pgx.ConnConfig) (func(), error) {
	noop := func() {}

	switch a.method {
	case authAWSIAM:
		region := a.region
		if region == "" {
			region = os.Getenv("AWS_REGION")
		}
		endpoint := net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port))
		provider, err := NewAWSIAMTokenProvider(endpoint, region, cfg.User)
		if err != nil {
			return noop, err
		}
		return noop, usePasswordToken(ctx, cfg, provider)

	case authAzure:
		provider, err := NewAzureDefaultCredentialProvider()
		if err != nil {
			return noop, fmt.Errorf("%w: %w", errTokenAcquisition, err)
		}
		return noop, usePasswordToken(ctx, cfg, provider)

	case authGoogleIAM:
		if a.instance == "" {
			return noop, fmt.Errorf("google-iam auth requires the %s parameter (project:region:instance)", paramInstance)
		}
		dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
		if err != nil {
			return noop, fmt.Errorf("%w: failed to create Cloud SQL dialer: %w", errTokenAcquisition, err)
		}
		instance := a.instance
		cfg.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(ctx, instance)
		}
		// The connector terminates TLS itself.
		cfg.TLSConfig = nil
		cfg.Fallbacks = nil
		return func() { dialer.Close() }, nil
	}

	return noop, nil
}

func usePasswordToken(ctx context.Context, cfg *pgx.ConnConfig, provider TokenProvider) error {
	token, _, err := provider.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errTokenAcquisition, provider, err)
	}
	cfg.Password = token
	return nil
}

// AWSIAMTokenProvider acquires IAM authentication tokens for RDS using the
// default AWS credential chain.
type AWSIAMTokenProvider struct {
	endpoint string // host:port
	region   string
	username string
}

// NewAWSIAMTokenProvider creates a token provider for AWS RDS IAM authentication.
// endpoint is the RDS endpoint in host:port format.
func NewAWSIAMTokenProvider(endpoint, region, username string) (*AWSIAMTokenProvider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("AWS IAM auth requires endpoint (host:port)")
	}
	if region == "" {
		return nil, fmt.Errorf("AWS IAM auth requires region (use the %s parameter or $AWS_REGION)", paramAWSRegion)
	}
	if username == "" {
		return nil, fmt.Errorf("AWS IAM auth requires database username")
	}

	return &AWSIAMTokenProvider{
		endpoint: endpoint,
		region:   region,
		username: username,
	}, nil
}

// GetToken builds an RDS auth token. Tokens are valid for 15 minutes.
func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(p.region))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, cfg.Credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build RDS auth token: %w", err)
	}

	return token, time.Now().Add(15 * time.Minute), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWSIAMTokenProvider(endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.username)
}

// AzureDefaultCredentialProvider uses Azure's DefaultAzureCredential chain
// (environment, workload identity, managed identity, Azure CLI).
type AzureDefaultCredentialProvider struct {
	credential azcore.TokenCredential
}

// NewAzureDefaultCredentialProvider creates a provider using the default credential chain.
func NewAzureDefaultCredentialProvider() (*AzureDefaultCredentialProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return &AzureDefaultCredentialProvider{credential: cred}, nil
}

func (p *AzureDefaultCredentialProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzurePostgreSQLScope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *AzureDefaultCredentialProvider) String() string {
	return "AzureDefaultCredential"
}
