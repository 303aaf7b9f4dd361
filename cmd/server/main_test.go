package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryCommand(t *testing.T) {
	tests := []struct {
		name       string
		listenAddr string
		auth       bool
		want       string
	}{
		{name: "default", listenAddr: ":8080", want: "curl http://localhost:8080/v1/organisations?limit=10"},
		{name: "unset address", listenAddr: "  ", want: "curl http://localhost:8080/v1/organisations?limit=10"},
		{name: "explicit host", listenAddr: "10.0.0.5:9000", want: "curl http://10.0.0.5:9000/v1/organisations?limit=10"},
		{name: "ipv4 wildcard", listenAddr: "0.0.0.0:8080", want: "curl http://localhost:8080/v1/organisations?limit=10"},
		{name: "ipv6 wildcard", listenAddr: "[::]:7070", want: "curl http://localhost:7070/v1/organisations?limit=10"},
		{name: "ipv6 loopback", listenAddr: "[::1]:8080", want: "curl http://[::1]:8080/v1/organisations?limit=10"},
		{name: "unparseable kept", listenAddr: "schoolhost", want: "curl http://schoolhost/v1/organisations?limit=10"},
		{
			name:       "with auth",
			listenAddr: ":8080",
			auth:       true,
			want:       `curl -H "Authorization: Bearer $SS12000_TOKEN" http://localhost:8080/v1/organisations?limit=10`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tryCommand(tt.listenAddr, tt.auth))
		})
	}
}
