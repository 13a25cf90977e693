package activity

import (
	"context"
	"fmt"
)

// RecordRequest describes an activity to record through Record.
type RecordRequest struct {
	Type       Type   `json:"type"`
	ObjectID   string `json:"object_id"`
	ObjectType string `json:"object_type"`
	OriginID   string `json:"origin_id,omitempty"`
	OriginType string `json:"origin_type,omitempty"`
	TargetID   string `json:"target_id,omitempty"`
	TargetType string `json:"target_type,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// Validate checks that the request names a known type, an object, and the
// origin and target that type requires.
func (r RecordRequest) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidInput, r.Type)
	}
	if r.ObjectID == "" || r.ObjectType == "" {
		return fmt.Errorf("%w: object id and type are required", ErrInvalidInput)
	}
	switch r.Type {
	case TypeMove:
		if r.OriginID == "" || r.TargetID == "" {
			return fmt.Errorf("%w: Move requires origin and target", ErrInvalidInput)
		}
	case TypeAdd:
		if r.TargetID == "" {
			return fmt.Errorf("%w: Add requires a target", ErrInvalidInput)
		}
	case TypeRemove:
		if r.OriginID == "" {
			return fmt.Errorf("%w: Remove requires an origin", ErrInvalidInput)
		}
	}
	return nil
}

// Record validates req and dispatches to the factory for its type.
func (s *Service) Record(ctx context.Context, req RecordRequest) (*Activity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	switch req.Type {
	case TypeCreate:
		return s.RecordCreate(ctx, req.ObjectID, req.ObjectType, req.Summary)
	case TypeUpdate:
		return s.RecordUpdate(ctx, req.ObjectID, req.ObjectType, req.Summary)
	case TypeDelete:
		return s.RecordDelete(ctx, req.ObjectID, req.ObjectType, req.Summary)
	case TypeMove:
		return s.RecordMove(ctx, req.ObjectID, req.ObjectType, req.OriginID, req.OriginType, req.TargetID, req.TargetType, req.Summary)
	case TypeAdd:
		return s.RecordAdd(ctx, req.ObjectID, req.ObjectType, req.TargetID, req.TargetType, req.Summary)
	default:
		return s.RecordRemove(ctx, req.ObjectID, req.ObjectType, req.OriginID, req.OriginType, req.Summary)
	}
}
