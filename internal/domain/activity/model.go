package activity

import "time"

// ContextURI is the JSON-LD context carried by every activity.
const ContextURI = "https://www.w3.org/ns/activitystreams"

// TimeLayout is the ISO-8601 layout used for endTime, modified and deleted.
// Fixed width keeps lexicographic order equal to chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Type represents the type of change an activity records.
type Type string

const (
	TypeCreate Type = "Create"
	TypeUpdate Type = "Update"
	TypeDelete Type = "Delete"
	TypeMove   Type = "Move"
	TypeAdd    Type = "Add"
	TypeRemove Type = "Remove"
)

// Types lists every activity type in a stable order.
var Types = []Type{TypeCreate, TypeUpdate, TypeDelete, TypeMove, TypeAdd, TypeRemove}

// Valid reports whether t is one of the known activity types.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// ActorType identifies what kind of agent recorded an activity.
type ActorType string

const (
	ActorPerson      ActorType = "Person"
	ActorApplication ActorType = "Application"
	ActorService     ActorType = "Service"
)

// Actor identifies the device or application that recorded activities.
type Actor struct {
	ID   string    `json:"id"`
	Type ActorType `json:"type"`
	Name string    `json:"name,omitempty"`
}

// Ref points at a resource by id and type.
type Ref struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// ObjectRef is the resource an activity describes.
type ObjectRef struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Modified string `json:"modified,omitempty"`
	Deleted  string `json:"deleted,omitempty"`
}

// Activity is one immutable recorded change to one resource.
type Activity struct {
	Context string    `json:"@context"`
	ID      string    `json:"id"`
	Type    Type      `json:"type"`
	EndTime string    `json:"endTime"`
	Object  ObjectRef `json:"object"`
	Actor   *Actor    `json:"actor,omitempty"`
	Summary string    `json:"summary,omitempty"`
	Origin  *Ref      `json:"origin,omitempty"`
	Target  *Ref      `json:"target,omitempty"`

	// Seq is the storage insertion order, used only to break endTime ties.
	Seq int64 `json:"-"`
}

// Stats summarizes the live activity log.
type Stats struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"by_type"`
	Oldest string         `json:"oldest,omitempty"`
	Newest string         `json:"newest,omitempty"`
}

// ArchiveStats summarizes the split between the live log and its archive.
type ArchiveStats struct {
	MainCount      int    `json:"main_count"`
	ArchiveCount   int    `json:"archive_count"`
	TotalCount     int    `json:"total_count"`
	MaxEntries     int    `json:"max_entries,omitempty"`
	RetentionCount int    `json:"retention_count,omitempty"`
	OldestArchived string `json:"oldest_archived,omitempty"`
	NewestArchived string `json:"newest_archived,omitempty"`
}

// StoreSplit is one consistent reading of both stores' sizes.
type StoreSplit struct {
	Live           int
	Archived       int
	OldestArchived string
	NewestArchived string
}

// FormatTime renders t in the activity timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
