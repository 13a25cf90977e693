package discovery

import (
	"fmt"

	"github.com/rpggio/folio/internal/domain/activity"
)

// DefaultPageSize is the number of activities per OrderedCollectionPage.
const DefaultPageSize = 100

const (
	TypeOrderedCollection     = "OrderedCollection"
	TypeOrderedCollectionPage = "OrderedCollectionPage"
)

// Context is the JSON-LD context of collection and page documents.
var Context = []string{
	"http://iiif.io/api/discovery/1/context.json",
	"https://www.w3.org/ns/activitystreams",
}

// Scope selects which stores the feed covers.
type Scope string

const (
	// ScopeFull publishes the live log and the archive.
	ScopeFull Scope = "full"
	// ScopeLive publishes only the live log.
	ScopeLive Scope = "live"
)

// ParseScope accepts "full", "live", or empty for the default.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeFull:
		return ScopeFull, nil
	case ScopeLive:
		return ScopeLive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}

// Ref links to another document in the feed.
type Ref struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Collection is the OrderedCollection entry point of the feed.
type Collection struct {
	Context    []string `json:"@context"`
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	TotalItems int      `json:"totalItems"`
	First      *Ref     `json:"first,omitempty"`
	Last       *Ref     `json:"last,omitempty"`
}

// Page is one OrderedCollectionPage of activities, oldest first.
type Page struct {
	Context      []string            `json:"@context"`
	ID           string              `json:"id"`
	Type         string              `json:"type"`
	StartIndex   int                 `json:"startIndex"`
	PartOf       Ref                 `json:"partOf"`
	Prev         *Ref                `json:"prev,omitempty"`
	Next         *Ref                `json:"next,omitempty"`
	OrderedItems []activity.Activity `json:"orderedItems"`
}
