package commands

import (
	"net"
	"testing"
)

func TestMCPListenURL(t *testing.T) {
	tests := map[string]struct {
		opts mcpOptions
		addr net.Addr
		want string
	}{
		"loopback": {
			opts: mcpOptions{Host: "127.0.0.1", Path: "/mcp"},
			addr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080},
			want: "http://127.0.0.1:8080/mcp",
		},
		"wildcard": {
			opts: mcpOptions{Host: "0.0.0.0", Path: "mcp"},
			addr: &net.TCPAddr{IP: net.IPv4zero, Port: 4242},
			want: "http://127.0.0.1:4242/mcp",
		},
		"ipv6 tls": {
			opts: mcpOptions{Host: "::1", Path: "/mcp", TLSCert: "c.pem", TLSKey: "k.pem"},
			addr: &net.TCPAddr{IP: net.IPv6loopback, Port: 443},
			want: "https://[::1]:443/mcp",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tc.opts.listenURL(tc.addr); got != tc.want {
				t.Errorf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMCPListenAddr(t *testing.T) {
	o := mcpOptions{Port: 70000}
	if _, err := o.listenAddr(); err == nil {
		t.Fatal("want error for out of range port")
	}
	o = mcpOptions{Port: 0}
	got, err := o.listenAddr()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "127.0.0.1:0" {
		t.Errorf("want 127.0.0.1:0, got %q", got)
	}
}
