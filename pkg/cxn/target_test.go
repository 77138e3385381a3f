package cxn

import "testing"

func TestTarget_Address(t *testing.T) {
	tests := []struct {
		name        string
		target      Target
		defaultPort int
		want        string
	}{
		{"explicit port", Target{Host: "localhost", Port: 6380, HasPort: true}, 6379, "localhost:6380"},
		{"default port", Target{Host: "db.internal"}, 5432, "db.internal:5432"},
		{"port zero is explicit", Target{Host: "h", Port: 0, HasPort: true}, 80, "h:0"},
		{"ipv6 literal", Target{Host: "[::1]", Port: 4222, HasPort: true}, 4222, "[::1]:4222"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.target.Address(tt.defaultPort); got != tt.want {
				t.Errorf("Address(%d) = %q, want %q", tt.defaultPort, got, tt.want)
			}
		})
	}
}

func TestTarget_Redacted(t *testing.T) {
	target := Target{
		Scheme:  "postgresql",
		User:    "app:s3cret",
		Host:    "db",
		Port:    5432,
		HasPort: true,
		Rest:    "/orders",
	}

	want := "postgresql://app:xxxxx@db:5432/orders"
	if got := target.Redacted(); got != want {
		t.Errorf("Redacted() = %q, want %q", got, want)
	}

	noPassword := Target{Scheme: "redis", User: "default", Host: "cache"}
	if got := noPassword.Redacted(); got != "redis://default@cache" {
		t.Errorf("Redacted() = %q", got)
	}
}

func TestTarget_RedactedQuerySecrets(t *testing.T) {
	tests := []struct {
		rest string
		want string
	}{
		{"/db?password=secret", "/db?password=xxxxx"},
		{"/db?sslmode=require&sslpassword=k3y&user=app", "/db?sslmode=require&sslpassword=xxxxx&user=app"},
		{"?Password=secret#frag", "?Password=xxxxx#frag"},
		{"/db?pass%77ord=secret", "/db?pass%77ord=xxxxx"},
		{"/?token=abc&tls=true", "/?token=xxxxx&tls=true"},
		{"/db?password", "/db?password"},
		{"/db#password=kept", "/db#password=kept"},
		{"", ""},
	}

	for _, tt := range tests {
		target := Target{Scheme: "postgres", Host: "db", Rest: tt.rest}
		want := "postgres://db" + tt.want
		if got := target.Redacted(); got != want {
			t.Errorf("Redacted() with rest %q = %q, want %q", tt.rest, got, want)
		}
	}
}
