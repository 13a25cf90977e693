package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/domain/discovery"
	"github.com/rpggio/folio/internal/domain/reconcile"
)

type recordActivityInput struct {
	Type       string `json:"type" jsonschema:"activity type: Create, Update, Delete, Move, Add or Remove"`
	ObjectID   string `json:"object_id" jsonschema:"id of the changed resource"`
	ObjectType string `json:"object_type" jsonschema:"type of the changed resource, e.g. Manifest or Collection"`
	OriginID   string `json:"origin_id,omitempty" jsonschema:"source container id, required for Move and Remove"`
	OriginType string `json:"origin_type,omitempty" jsonschema:"source container type"`
	TargetID   string `json:"target_id,omitempty" jsonschema:"destination container id, required for Move and Add"`
	TargetType string `json:"target_type,omitempty" jsonschema:"destination container type"`
	Summary    string `json:"summary,omitempty" jsonschema:"short human-readable description"`
}

type activityOutput struct {
	Activity activity.Activity `json:"activity"`
}

type listRecentInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of activities, newest first (default 50)"`
}

type listSinceInput struct {
	Since string `json:"since" jsonschema:"RFC 3339 timestamp; only activities that ended strictly after it are returned"`
}

type objectHistoryInput struct {
	ObjectID string `json:"object_id" jsonschema:"resource id"`
	Scope    string `json:"scope,omitempty" jsonschema:"live, archive or all (default all)"`
}

type activitiesOutput struct {
	Activities []activity.Activity `json:"activities"`
}

type statsInput struct{}

type statsOutput struct {
	Live    activity.Stats        `json:"live"`
	Archive activity.ArchiveStats `json:"archive"`
}

type changeDiscoveryInput struct {
	Page *int `json:"page,omitempty" jsonschema:"page index starting at 0; omit for the collection document"`
}

type changeDiscoveryOutput struct {
	Collection *discovery.Collection `json:"collection,omitempty"`
	Page       *discovery.Page       `json:"page,omitempty"`
}

type exportInput struct{}

type importInput struct {
	Activities []activity.Activity `json:"activities" jsonschema:"activities exported from another device"`
}

func registerTools(server *sdkmcp.Server, services Services, baseURL string, logger *slog.Logger) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "record_activity",
		Description: "Record one change to an archive resource in the activity log",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in recordActivityInput) (*sdkmcp.CallToolResult, activityOutput, error) {
		a, err := services.Activities.Record(ctx, activity.RecordRequest{
			Type:       activity.Type(in.Type),
			ObjectID:   in.ObjectID,
			ObjectType: in.ObjectType,
			OriginID:   in.OriginID,
			OriginType: in.OriginType,
			TargetID:   in.TargetID,
			TargetType: in.TargetType,
			Summary:    in.Summary,
		})
		if err != nil {
			return nil, activityOutput{}, mapError(err)
		}
		logger.Debug("activity recorded",
			slog.String("id", a.ID),
			slog.String("type", string(a.Type)),
			slog.String("session_id", getSessionID(ctx)),
		)
		return nil, activityOutput{Activity: *a}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_recent_activity",
		Description: "List the most recent activities in the live log, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in listRecentInput) (*sdkmcp.CallToolResult, activitiesOutput, error) {
		if in.Limit < 0 {
			return nil, activitiesOutput{}, mapError(fmt.Errorf("%w: limit must not be negative", activity.ErrInvalidInput))
		}
		list, err := services.Activities.GetRecentActivities(ctx, in.Limit)
		if err != nil {
			return nil, activitiesOutput{}, mapError(err)
		}
		return nil, activitiesOutput{Activities: list}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_activity_since",
		Description: "List live activities that ended after a timestamp, oldest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in listSinceInput) (*sdkmcp.CallToolResult, activitiesOutput, error) {
		if _, err := time.Parse(time.RFC3339Nano, in.Since); err != nil {
			return nil, activitiesOutput{}, mapError(fmt.Errorf("%w: since must be an RFC 3339 timestamp", activity.ErrInvalidInput))
		}
		list, err := services.Activities.GetActivitiesSince(ctx, in.Since)
		if err != nil {
			return nil, activitiesOutput{}, mapError(err)
		}
		return nil, activitiesOutput{Activities: list}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_object_history",
		Description: "Get the change history of one resource, oldest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in objectHistoryInput) (*sdkmcp.CallToolResult, activitiesOutput, error) {
		var (
			list []activity.Activity
			err  error
		)
		switch in.Scope {
		case "", "all":
			list, err = services.Activities.GetAllActivitiesForObject(ctx, in.ObjectID)
		case "live":
			list, err = services.Activities.GetActivitiesForObject(ctx, in.ObjectID)
		case "archive":
			list, err = services.Activities.GetArchivedActivitiesForObject(ctx, in.ObjectID)
		default:
			err = fmt.Errorf("%w: unknown scope %q", activity.ErrInvalidInput, in.Scope)
		}
		if err != nil {
			return nil, activitiesOutput{}, mapError(err)
		}
		return nil, activitiesOutput{Activities: list}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_activity_stats",
		Description: "Summarize the live log and its archive",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ statsInput) (*sdkmcp.CallToolResult, statsOutput, error) {
		live, err := services.Activities.GetStats(ctx)
		if err != nil {
			return nil, statsOutput{}, mapError(err)
		}
		archive, err := services.Activities.GetArchiveStats(ctx)
		if err != nil {
			return nil, statsOutput{}, mapError(err)
		}
		return nil, statsOutput{Live: *live, Archive: *archive}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_change_discovery",
		Description: "Render the IIIF Change Discovery collection, or one of its pages",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in changeDiscoveryInput) (*sdkmcp.CallToolResult, changeDiscoveryOutput, error) {
		if in.Page == nil {
			c, err := services.Discovery.Collection(ctx, baseURL)
			if err != nil {
				return nil, changeDiscoveryOutput{}, mapError(err)
			}
			return nil, changeDiscoveryOutput{Collection: c}, nil
		}
		page, err := services.Discovery.Page(ctx, baseURL, *in.Page)
		if err != nil {
			return nil, changeDiscoveryOutput{}, mapError(err)
		}
		return nil, changeDiscoveryOutput{Page: page}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_activities",
		Description: "Export every live and archived activity for syncing to another device",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ exportInput) (*sdkmcp.CallToolResult, activitiesOutput, error) {
		list, err := services.Activities.ExportAll(ctx)
		if err != nil {
			return nil, activitiesOutput{}, mapError(err)
		}
		return nil, activitiesOutput{Activities: list}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "import_activities",
		Description: "Merge activities exported from another device; known ids are skipped",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in importInput) (*sdkmcp.CallToolResult, reconcile.Result, error) {
		result, err := services.Importer.Import(ctx, in.Activities)
		if err != nil {
			return nil, reconcile.Result{}, mapError(err)
		}
		return nil, result, nil
	})
}
