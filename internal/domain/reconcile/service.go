package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/metrics"
)

// Result counts what an import did.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Service merges activity sets exported by other devices into the local log.
// Import is a union keyed by activity id: the first stored copy wins and is
// never overwritten, so importing the same set twice changes nothing.
type Service struct {
	store   Store
	trigger activity.RetentionTrigger
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService creates an import service. trigger and m may be nil.
func NewService(store Store, trigger activity.RetentionTrigger, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		trigger: trigger,
		logger:  logger.With(slog.String("component", "reconcile")),
		metrics: m,
	}
}

// Import stores every activity whose id is unknown to both the live log and
// the archive. All entries are validated before anything is written.
func (s *Service) Import(ctx context.Context, activities []activity.Activity) (Result, error) {
	ctx, span := otel.Tracer("folio").Start(ctx, "reconcile.Import")
	defer span.End()
	span.SetAttributes(attribute.Int("input_count", len(activities)))

	for i := range activities {
		if err := Validate(&activities[i]); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Result{}, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	var result Result
	for i := range activities {
		imported, err := s.importOne(ctx, activities[i])
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.metrics.ObserveImport(result.Imported, result.Skipped)
			return result, fmt.Errorf("importing %s: %w", activities[i].ID, err)
		}
		if imported {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	span.SetAttributes(
		attribute.Int("imported", result.Imported),
		attribute.Int("skipped", result.Skipped),
	)
	s.metrics.ObserveImport(result.Imported, result.Skipped)

	if result.Imported > 0 && s.trigger != nil {
		s.trigger.Trigger()
	}

	s.logger.Info("imported activities",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *Service) importOne(ctx context.Context, a activity.Activity) (bool, error) {
	// Seq is local to this store.
	a.Seq = 0
	return s.store.ImportIfUnknown(ctx, &a)
}

// Validate checks the fields an imported activity must carry.
func Validate(a *activity.Activity) error {
	switch {
	case a.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidActivity)
	case a.Type == "":
		return fmt.Errorf("%w: %s: missing type", ErrInvalidActivity, a.ID)
	case a.EndTime == "":
		return fmt.Errorf("%w: %s: missing endTime", ErrInvalidActivity, a.ID)
	case a.Object.ID == "":
		return fmt.Errorf("%w: %s: missing object id", ErrInvalidActivity, a.ID)
	}
	if _, err := time.Parse(time.RFC3339Nano, a.EndTime); err != nil {
		return fmt.Errorf("%w: %s: endTime %q is not RFC 3339", ErrInvalidActivity, a.ID, a.EndTime)
	}
	return nil
}
