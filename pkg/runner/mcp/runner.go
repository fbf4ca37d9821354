package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/log"
	"tableflip.dev/notiq/pkg/metrics"
	"tableflip.dev/notiq/pkg/places"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"
)

// Runner coordinates MCP server startup.
type Runner struct {
	App      *app.Service
	Searcher places.Searcher
	// Fetcher and Refresh, a cron schedule, enable the periodic study place
	// refresh. Either left empty disables it.
	Fetcher places.Fetcher
	Refresh string
	// Follow reloads the store when another process changes it.
	Follow bool

	Name    string
	Version string

	Transport        Transport
	HTTPListenAddr   string
	HTTPEndpointPath string
	OnHTTPListening  func(net.Addr)
	HTTPServerCert   string
	HTTPServerKey    string
}

// Run starts the Model Context Protocol server using stdio transport.
func Run(ctx context.Context, a *app.Service) error {
	r := Runner{
		App:       a,
		Name:      "notiq",
		Version:   "dev",
		Transport: TransportStdio,
	}
	return r.Do(ctx)
}

// Do executes the runner. It returns when the transport stops; the store
// follower and refresh job stop with it.
func (r Runner) Do(ctx context.Context) error {
	if r.App == nil {
		return errors.New("mcp runner requires a store")
	}
	name := r.Name
	if name == "" {
		name = "notiq"
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}

	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, true),
		server.WithToolCapabilities(false),
		server.WithInstructions("Manage study tasks, calendar events, and saved study places via MCP."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)

	svc := NewService(r.App)
	svc.Searcher = r.Searcher
	registerResources(srv, svc)
	registerTools(srv, svc)
	defer announceChanges(r.App, srv)()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		switch t := r.Transport; t {
		case "", TransportHTTP:
			return r.serveHTTP(gctx, srv)
		case TransportStdio:
			return server.ServeStdio(srv)
		default:
			return fmt.Errorf("unknown MCP transport %q", t)
		}
	})

	if r.Follow {
		g.Go(func() error {
			err := r.App.Follow(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if r.Fetcher != nil && r.Refresh != "" {
		if err := r.scheduleRefresh(gctx, g); err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
	}

	return g.Wait()
}

type notifier interface {
	SendNotificationToAllClients(method string, params map[string]any)
}

// announceChanges tells connected clients to re-list resources whenever the
// store swaps in a new snapshot. The returned func stops it.
func announceChanges(a *app.Service, n notifier) func() {
	return a.Subscribe(func(app.Snapshot) {
		n.SendNotificationToAllClients("notifications/resources/list_changed", nil)
	})
}

// scheduleRefresh loads study places once now and then on every Refresh tick.
func (r Runner) scheduleRefresh(ctx context.Context, g *errgroup.Group) error {
	loader := &places.Loader{Fetcher: r.Fetcher, Sink: r.App}
	report := func(o places.Outcome) {
		l := log.L().WithFields("seq", o.Seq, "count", o.Count, "applied", o.Applied)
		if o.Err != nil {
			l.WithError(o.Err).Warn("study place refresh failed")
			return
		}
		l.Info("study places refreshed")
	}

	c := cron.New()
	if _, err := c.AddFunc(r.Refresh, func() { report(loader.Load(ctx)) }); err != nil {
		return fmt.Errorf("places refresh %q: %w", r.Refresh, err)
	}
	c.Start()
	first := loader.Go(ctx)

	g.Go(func() error {
		select {
		case o := <-first:
			report(o)
		case <-ctx.Done():
		}
		<-ctx.Done()
		<-c.Stop().Done()
		loader.Wait()
		return nil
	})
	return nil
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	if (r.HTTPServerCert != "" && r.HTTPServerKey == "") || (r.HTTPServerCert == "" && r.HTTPServerKey != "") {
		return errors.New("both http tls cert and key must be provided")
	}

	handler := server.NewStreamableHTTPServer(srv)

	path := r.HTTPEndpointPath
	if path == "" {
		path = "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	listenAddr := r.HTTPListenAddr
	if listenAddr == "" {
		listenAddr = "127.0.0.1:8080"
	}

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	mux.Handle("/metrics", metrics.Handler())

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if r.HTTPServerCert != "" && r.HTTPServerKey != "" {
		err = httpSrv.ServeTLS(ln, r.HTTPServerCert, r.HTTPServerKey)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
