package security

import (
	"strings"
	"testing"
)

func TestValidateOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		host    string
		allowed []string
		wantErr string
	}{
		// Accepted
		{name: "no origin header", origin: "", host: "docs.example.com"},
		{name: "same host", origin: "https://docs.example.com", host: "docs.example.com"},
		{name: "same host with port", origin: "http://localhost:8080", host: "localhost:8080"},
		{name: "host case differs", origin: "https://Docs.Example.com", host: "docs.example.com"},
		{name: "allowed origin", origin: "http://editor.example.com", host: "docs.example.com", allowed: []string{"http://editor.example.com"}},
		{name: "wildcard", origin: "http://anything.example", host: "docs.example.com", allowed: []string{"*"}},
		{name: "loopback aliases", origin: "http://127.0.0.1:8080", host: "localhost:8080"},
		{name: "ipv6 loopback", origin: "http://[::1]:8080", host: "localhost:8080"},
		// Rejected
		{name: "other host", origin: "https://evil.example", host: "docs.example.com", wantErr: "cross-origin request from https://evil.example is not allowed"},
		{name: "not in allow list", origin: "https://evil.example", host: "docs.example.com", allowed: []string{"https://good.example"}, wantErr: "is not allowed"},
		{name: "remote page to local server", origin: "https://evil.example", host: "localhost:8080", wantErr: "is not allowed"},
		{name: "file scheme", origin: "file://", host: "localhost:8080", wantErr: "origin scheme must be http or https"},
		{name: "null origin", origin: "null", host: "localhost:8080", wantErr: "origin scheme must be http or https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrigin(tt.origin, tt.host, tt.allowed)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateOrigin() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("ValidateOrigin() expected error containing %q", tt.wantErr)
				} else if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ValidateOrigin() error = %q, want to contain %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestIsLoopbackHost(t *testing.T) {
	tests := map[string]bool{
		"localhost":   true,
		"LOCALHOST":   true,
		"127.0.0.1":   true,
		"127.1.2.3":   true,
		"::1":         true,
		"[::1]":       true,
		"10.0.0.1":    false,
		"example.com": false,
		"":            false,
	}
	for host, want := range tests {
		if got := IsLoopbackHost(host); got != want {
			t.Errorf("IsLoopbackHost(%q) = %v, want %v", host, got, want)
		}
	}
}
