// Package testserver runs a complete folio HTTP server over a temporary
// database for end-to-end tests.
package testserver

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/folio/internal/app"
	"github.com/rpggio/folio/internal/config"
	"github.com/rpggio/folio/internal/mcp"
	"github.com/rpggio/folio/internal/transport"
)

type TestServer struct {
	Server *httptest.Server
	App    *app.App
}

// New opens an App over a fresh database and serves it. configure may
// adjust the config before the App is opened.
func New(t *testing.T, configure func(*config.Config)) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.DB.Path = filepath.Join(t.TempDir(), "folio.db")
	if configure != nil {
		configure(&cfg)
	}

	a, err := app.Open(context.Background(), cfg, nil)
	require.NoError(t, err)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Activities: a.Activities,
			Discovery:  a.Discovery,
			Importer:   a.Importer,
		},
		BaseURL: cfg.Server.BaseURL,
		Logger:  a.Logger,
	})

	router := transport.NewServer(transport.Services{
		Activities: a.Activities,
		Discovery:  a.Discovery,
		Importer:   a.Importer,
		Health:     a.Health,
	}, transport.Options{
		BaseURL: cfg.Server.BaseURL,
		MCP:     mcp.NewHTTPHandler(mcpServer),
		Metrics: promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
		Logger:  a.Logger,
	})
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		_ = a.Close()
	})

	return &TestServer{Server: server, App: a}
}

// URL returns the absolute URL of path on the server.
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

// MCPSession connects an MCP client over streamable HTTP.
func (ts *TestServer) MCPSession(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint: ts.URL("/mcp"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}
