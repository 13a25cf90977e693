package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rpggio/folio/internal/metrics"
)

// Result describes one retention check.
type Result struct {
	Count   int  `json:"count"`
	Moved   int  `json:"moved"`
	Rotated bool `json:"rotated"`
}

// Service evaluates the policy against the live log and rotates when needed.
type Service struct {
	counter Counter
	rotator Rotator
	policy  Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService creates a retention service. The policy is assumed validated.
func NewService(counter Counter, rotator Rotator, policy Policy, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		counter: counter,
		rotator: rotator,
		policy:  policy,
		logger:  logger.With(slog.String("component", "retention")),
		metrics: m,
	}
}

// Policy returns the thresholds the service enforces.
func (s *Service) Policy() Policy {
	return s.policy
}

// Check rotates the live log down to RetentionCount entries once it holds
// more than MaxEntries. Every call recomputes from the current count, so
// redundant checks are harmless.
func (s *Service) Check(ctx context.Context) (Result, error) {
	ctx, span := otel.Tracer("folio").Start(ctx, "retention.Check", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.ObserveRetentionDuration(time.Since(start))
	}()

	count, err := s.counter.Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("counting activities: %w", err)
	}
	span.SetAttributes(attribute.Int("count", count))
	s.metrics.SetStoreSize("live", count)

	if !s.policy.Exceeded(count) {
		return Result{Count: count}, nil
	}

	moved, err := s.rotator.Rotate(ctx, s.policy.RetentionCount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{Count: count}, fmt.Errorf("rotating activities: %w", err)
	}
	span.SetAttributes(attribute.Int("moved", moved))
	s.metrics.ObserveRotation(moved)
	s.metrics.SetStoreSize("live", count-moved)

	s.logger.Info("rotated activity log",
		slog.Int("count", count),
		slog.Int("moved", moved),
		slog.Int("kept", count-moved),
	)
	return Result{Count: count, Moved: moved, Rotated: true}, nil
}
