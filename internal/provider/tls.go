package provider

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/vvka-141/cxn/pkg/cxn"
)

// TLS query parameters shared by the kafka and grpc kinds.
const (
	paramTLS      = "tls"
	paramCAFile   = "ca_file"
	paramInsecure = "insecure"
)

// targetQuery parses the query component of the target's remainder.
func targetQuery(t *cxn.Target) (url.Values, error) {
	rest := t.Rest
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}
	_, query, ok := strings.Cut(rest, "?")
	if !ok {
		return url.Values{}, nil
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("invalid URL query: %w", err)
	}
	return values, nil
}

func boolParam(values url.Values, name string) (bool, error) {
	raw := values.Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter %q: %w", name, raw, err)
	}
	return v, nil
}

// clientTLSConfig builds client TLS settings for t. ca_file adds a PEM
// root bundle; insecure=true skips verification.
func clientTLSConfig(t *cxn.Target, values url.Values) (*tls.Config, error) {
	tc := &tls.Config{
		ServerName: strings.Trim(t.Host, "[]"),
		MinVersion: tls.VersionTLS12,
	}

	skip, err := boolParam(values, paramInsecure)
	if err != nil {
		return nil, err
	}
	tc.InsecureSkipVerify = skip

	if caFile := values.Get(paramCAFile); caFile != "" {
		caCert, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("parse CA certificate %s", caFile)
		}
		tc.RootCAs = pool
	}

	return tc, nil
}

// isTLSHandshakeFailure reports whether err is a failed TLS handshake: an
// untrusted or mismatched server certificate, an alert from the peer, or a
// peer that does not speak TLS.
func isTLSHandshakeFailure(err error) bool {
	var verifyErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	var recordErr tls.RecordHeaderError
	var alertErr tls.AlertError
	return errors.As(err, &verifyErr) ||
		errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &alertErr)
}
