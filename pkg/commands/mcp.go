package commands

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/notiq/pkg/runner/mcp"
)

// mcpOptions holds the mcp command flags.
type mcpOptions struct {
	Transport string
	Host      string
	Port      int
	Path      string
	TLSCert   string
	TLSKey    string
	Follow    bool
	Refresh   bool
}

func (o *mcpOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Transport, "transport", string(mcp.TransportHTTP), "transport to use: http or stdio")
	cmd.Flags().StringVar(&o.Host, "http-host", "127.0.0.1", "host/interface for HTTP transport")
	cmd.Flags().IntVar(&o.Port, "http-port", 8080, "port for HTTP transport (use 0 for random)")
	cmd.Flags().StringVar(&o.Path, "http-path", "/mcp", "HTTP endpoint path")
	cmd.Flags().StringVar(&o.TLSCert, "http-tls-cert", "", "TLS certificate file for HTTPS")
	cmd.Flags().StringVar(&o.TLSKey, "http-tls-key", "", "TLS private key file for HTTPS")
	cmd.Flags().BoolVar(&o.Follow, "follow", true, "reload when another process changes the store")
	cmd.Flags().BoolVar(&o.Refresh, "refresh", true, "refresh study places on places.refresh when places.fetch_url is set")
}

func (o *mcpOptions) endpoint() string {
	path := strings.TrimSpace(o.Path)
	if path == "" {
		return "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func (o *mcpOptions) listenAddr() (string, error) {
	if o.Port < 0 || o.Port > 65535 {
		return "", fmt.Errorf("invalid http-port %d", o.Port)
	}
	host := strings.TrimSpace(o.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(o.Port)), nil
}

// listenURL is the address clients should use for a server bound to a. A
// wildcard bind is shown as loopback.
func (o *mcpOptions) listenURL(a net.Addr) string {
	scheme := "http"
	if o.TLSCert != "" && o.TLSKey != "" {
		scheme = "https"
	}
	tcp, ok := a.(*net.TCPAddr)
	if !ok {
		return fmt.Sprintf("%s://%s%s", scheme, a.String(), o.endpoint())
	}
	host := strings.TrimSpace(o.Host)
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
		if tcp.IP != nil && !tcp.IP.IsUnspecified() {
			host = tcp.IP.String()
		}
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(host, strconv.Itoa(tcp.Port)), o.endpoint())
}

func addMCP(topLevel *cobra.Command) {
	mo := &mcpOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes tasks, events, study places and the
agenda views through the Model Context Protocol. The HTTP transport also serves
prometheus metrics at /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}

			runner := mcp.Runner{
				App:              svc,
				Searcher:         searcher(),
				Follow:           mo.Follow && !so.Ephemeral,
				Name:             "notiq",
				Version:          version,
				HTTPEndpointPath: mo.endpoint(),
				HTTPServerCert:   strings.TrimSpace(mo.TLSCert),
				HTTPServerKey:    strings.TrimSpace(mo.TLSKey),
			}
			if mo.Refresh {
				runner.Fetcher = fetcher()
				runner.Refresh = loadedConfig().Places.Refresh
			}

			switch mcp.Transport(strings.ToLower(strings.TrimSpace(mo.Transport))) {
			case "", mcp.TransportHTTP:
				addr, err := mo.listenAddr()
				if err != nil {
					return err
				}
				runner.Transport = mcp.TransportHTTP
				runner.HTTPListenAddr = addr
				runner.OnHTTPListening = func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP HTTP server listening on %s\n", mo.listenURL(a))
				}
			case mcp.TransportStdio:
				runner.Transport = mcp.TransportStdio
			default:
				return fmt.Errorf("unsupported transport %q (expected http or stdio)", mo.Transport)
			}

			return runner.Do(cmd.Context())
		},
	}

	mo.addFlags(cmd)
	topLevel.AddCommand(cmd)
}
