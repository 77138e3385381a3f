package cxn

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

const redactedSecret = "xxxxx"

// secretParams are query keys whose values never appear in redacted output.
var secretParams = map[string]bool{
	"password":      true,
	"pass":          true,
	"pwd":           true,
	"sslpassword":   true,
	"secret":        true,
	"token":         true,
	"access_token":  true,
	"client_secret": true,
}

// Target is the parsed, validated form of a resource URL.
// It is produced once per provider and never mutated afterwards.
type Target struct {
	// Raw is the URL exactly as supplied by the caller.
	Raw string

	// Scheme is the literal scheme token, case preserved.
	Scheme string

	// User is the userinfo part without the trailing '@' (may be empty).
	User string

	// Host is the host name or address; IPv6 literals keep their brackets.
	Host string

	// Port is only meaningful when HasPort is true.
	Port    int
	HasPort bool

	// Rest is everything after the authority: path, query and fragment.
	Rest string
}

// Address returns host:port, falling back to defaultPort when the URL
// carried no port.
func (t *Target) Address(defaultPort int) string {
	port := defaultPort
	if t.HasPort {
		port = t.Port
	}
	return net.JoinHostPort(trimBrackets(t.Host), strconv.Itoa(port))
}

// Redacted returns the URL with any password replaced, for logs and labels.
// Both the userinfo password and secret query parameters are masked.
func (t *Target) Redacted() string {
	out := t.Scheme + "://"
	if t.User != "" {
		user := t.User
		if name, _, ok := strings.Cut(user, ":"); ok {
			user = name + ":" + redactedSecret
		}
		out += user + "@"
	}
	out += t.Host
	if t.HasPort {
		out += ":" + strconv.Itoa(t.Port)
	}
	return out + redactRest(t.Rest)
}

// redactRest masks secret query values in rest, keeping the path, the
// order of parameters and the fragment as written.
func redactRest(rest string) string {
	rest, fragment, hasFragment := strings.Cut(rest, "#")
	path, query, hasQuery := strings.Cut(rest, "?")
	if !hasQuery {
		return restoreFragment(rest, fragment, hasFragment)
	}

	pairs := strings.Split(query, "&")
	for i, pair := range pairs {
		key, _, hasValue := strings.Cut(pair, "=")
		if !hasValue {
			continue
		}
		name, err := url.QueryUnescape(key)
		if err != nil {
			name = key
		}
		if secretParams[strings.ToLower(name)] {
			pairs[i] = key + "=" + redactedSecret
		}
	}
	return restoreFragment(path+"?"+strings.Join(pairs, "&"), fragment, hasFragment)
}

func restoreFragment(s, fragment string, hasFragment bool) string {
	if hasFragment {
		return s + "#" + fragment
	}
	return s
}

func trimBrackets(host string) string {
	if len(host) >= 2 && host[0] == '[' && host[len(host)-1] == ']' {
		return host[1 : len(host)-1]
	}
	return host
}
