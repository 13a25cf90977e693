package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/domain/discovery"
	"github.com/rpggio/folio/internal/domain/reconcile"
)

// ActivityService defines activity log operations needed by MCP.
type ActivityService interface {
	Record(ctx context.Context, req activity.RecordRequest) (*activity.Activity, error)
	GetRecentActivities(ctx context.Context, limit int) ([]activity.Activity, error)
	GetActivitiesSince(ctx context.Context, t string) ([]activity.Activity, error)
	GetActivitiesForObject(ctx context.Context, objectID string) ([]activity.Activity, error)
	GetArchivedActivitiesForObject(ctx context.Context, objectID string) ([]activity.Activity, error)
	GetAllActivitiesForObject(ctx context.Context, objectID string) ([]activity.Activity, error)
	GetStats(ctx context.Context) (*activity.Stats, error)
	GetArchiveStats(ctx context.Context) (*activity.ArchiveStats, error)
	ExportAll(ctx context.Context) ([]activity.Activity, error)
}

// DiscoveryService defines Change Discovery rendering needed by MCP.
type DiscoveryService interface {
	Collection(ctx context.Context, baseURL string) (*discovery.Collection, error)
	Page(ctx context.Context, baseURL string, n int) (*discovery.Page, error)
}

// ImportService defines sync import needed by MCP.
type ImportService interface {
	Import(ctx context.Context, activities []activity.Activity) (reconcile.Result, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Activities ActivityService
	Discovery  DiscoveryService
	Importer   ImportService
}

// Config contains server configuration.
type Config struct {
	Services Services
	// BaseURL prefixes Change Discovery ids.
	BaseURL string
	Version string
	Logger  *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "0.1.0"
	}
	logger := cfg.Logger.With(slog.String("component", "mcp"))

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "folio",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Services, cfg.BaseURL, logger)

	return server
}
