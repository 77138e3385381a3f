package target

import (
	"errors"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/vvka-141/cxn/pkg/cxn"
)

// urlPattern captures scheme, authority and the remainder. The "://"
// separator is mandatory.
var urlPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.\-]*)://([^/?#]*)(.*)$`)

var portPattern = regexp.MustCompile(`^-?[0-9]+$`)

// Parse validates raw against the allowed schemes and returns its Target.
// Scheme comparison is case-sensitive on the token as written.
func Parse(raw string, allowedSchemes []string) (*cxn.Target, error) {
	t, port, err := split(raw)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(allowedSchemes, t.Scheme) {
		allowed := slices.Clone(allowedSchemes)
		slices.Sort(allowed)
		return nil, &cxn.SchemeError{Scheme: t.Scheme, Allowed: allowed}
	}

	if port != "" {
		n, err := strconv.ParseInt(port, 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, &cxn.PortError{Port: port}
			}
			return nil, &cxn.FormatError{URL: raw}
		}
		if n < cxn.MinPort || n > cxn.MaxPort {
			return nil, &cxn.PortError{Port: port}
		}
		t.Port = int(n)
		t.HasPort = true
	}

	return t, nil
}

// split performs the structural check and returns the target without its
// port applied, plus the raw port token (empty when absent).
func split(raw string) (*cxn.Target, string, error) {
	if strings.ContainsFunc(raw, isSpaceOrControl) {
		return nil, "", &cxn.FormatError{URL: raw}
	}

	m := urlPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, "", &cxn.FormatError{URL: raw}
	}

	t := &cxn.Target{Raw: raw, Scheme: m[1], Rest: m[3]}
	authority := m[2]

	if at := strings.LastIndex(authority, "@"); at != -1 {
		t.User = authority[:at]
		authority = authority[at+1:]
	}

	host, port, err := splitHostPort(authority)
	if err != nil {
		return nil, "", &cxn.FormatError{URL: raw}
	}
	t.Host = host

	if port != "" && !portPattern.MatchString(port) {
		return nil, "", &cxn.FormatError{URL: raw}
	}
	return t, port, nil
}

// splitHostPort is lenient about a missing port and keeps IPv6 brackets.
func splitHostPort(hostport string) (host, port string, err error) {
	if strings.HasPrefix(hostport, "[") {
		end := strings.Index(hostport, "]")
		if end == -1 {
			return "", "", errors.New("unterminated IPv6 literal")
		}
		host, rest := hostport[:end+1], hostport[end+1:]
		switch {
		case rest == "":
			return host, "", nil
		case strings.HasPrefix(rest, ":"):
			return host, rest[1:], nil
		default:
			return "", "", errors.New("garbage after IPv6 literal")
		}
	}

	colon := strings.LastIndex(hostport, ":")
	if colon == -1 {
		return hostport, "", nil
	}
	if strings.Contains(hostport[:colon], ":") {
		return "", "", errors.New("too many colons in address")
	}
	return hostport[:colon], hostport[colon+1:], nil
}

func isSpaceOrControl(r rune) bool {
	return r <= ' ' || r == 0x7f
}
