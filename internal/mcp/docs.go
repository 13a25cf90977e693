package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `folio keeps an append-only activity log of changes to archive resources
(Manifests, Collections, Canvases) and publishes it as a IIIF Change Discovery feed.

Core concepts:
- Activity: one immutable change (Create, Update, Delete, Move, Add, Remove) to one object.
- Live log: the recent, size-bounded log. When it grows past max_entries the oldest
  entries move to the archive until retention_count remain.
- Archive: rotated-out activities. Object history and exports include it.
- Actor: the installation that recorded an activity; stable across restarts.

Typical use:
1) record_activity after changing a resource. Move needs origin and target, Add a target,
   Remove an origin.
2) list_recent_activity or list_activity_since to see what changed.
3) get_object_history for one resource across live log and archive.
4) export_change_discovery to read the feed; omit page for the collection.
5) export_activities on one device and import_activities on another to sync.
   Import is idempotent: ids already present are skipped.

Docs:
- folio://docs/activity-log
- folio://docs/change-discovery
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "folio://docs/activity-log",
		Name:        "docs_activity_log",
		Title:       "Activity log",
		Description: "Activity shape, types, retention and sync rules.",
		Content: `# Activity log

## Activity shape

Every activity is an Activity Streams document:

- ` + "`id`" + `: ` + "`urn:uuid:`" + ` id, unique across devices.
- ` + "`type`" + `: Create | Update | Delete | Move | Add | Remove.
- ` + "`endTime`" + `: UTC timestamp with milliseconds.
- ` + "`object`" + `: ` + "`{id, type}`" + ` plus ` + "`modified`" + ` on Create/Update or ` + "`deleted`" + ` on Delete.
- ` + "`actor`" + `: the recording installation.
- ` + "`origin`" + ` / ` + "`target`" + `: source and destination containers.

| Type | origin | target |
|---|---|---|
| Move | required | required |
| Add | | required |
| Remove | required | |

## Ordering

Activities sort by ` + "`endTime`" + `, then by insertion order. ` + "`list_activity_since`" + ` is strict:
an activity whose endTime equals the given timestamp is not returned.

## Retention

The live log holds at most ` + "`max_entries`" + ` activities. Exceeding it moves the oldest
entries to the archive, leaving ` + "`retention_count`" + `. Rotation runs in the background
and never fails a write. Nothing is deleted: history and exports read both stores.

## Sync

` + "`export_activities`" + ` returns every activity, oldest first. ` + "`import_activities`" + `
validates the whole set first, then writes only unknown ids. Importing the same set
twice reports all entries as skipped the second time.
`,
	},
	{
		URI:         "folio://docs/change-discovery",
		Name:        "docs_change_discovery",
		Title:       "Change Discovery feed",
		Description: "How the IIIF Change Discovery collection and pages are laid out.",
		Content: `# Change Discovery feed

The feed follows IIIF Change Discovery 1.0.

- The collection (` + "`{base}/activity/collection`" + `) reports ` + "`totalItems`" + ` and links
  ` + "`first`" + ` and ` + "`last`" + ` pages. An empty log has neither link.
- Page n (` + "`{base}/activity/collection/page/{n}`" + `) holds items
  ` + "`n*pageSize`" + ` up to ` + "`(n+1)*pageSize-1`" + `, oldest first, with ` + "`startIndex`" + `,
  ` + "`partOf`" + `, and ` + "`prev`" + `/` + "`next`" + ` links where neighbours exist.
- Pages past the end are valid and carry an empty ` + "`orderedItems`" + ` list.
- The feed covers the live log and the archive unless the server runs with
  ` + "`discovery.scope: live`" + `.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
