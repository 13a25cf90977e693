package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rpggio/folio/internal/domain/activity"
)

// Service renders the activity log as a Change Discovery feed: one
// OrderedCollection linking to fixed-size OrderedCollectionPages.
type Service struct {
	live    Source
	history Source

	pageSize int
	scope    Scope
	cache    PageCache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewService creates a feed over the live log or, for ScopeFull, over
// history, which must read the live log and the archive as one snapshot.
// history may be nil when only ScopeLive is used.
func NewService(live, history Source, opts ...Option) *Service {
	s := &Service{
		live:     live,
		history:  history,
		pageSize: DefaultPageSize,
		scope:    ScopeFull,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.scope = ScopeLive
	}
	s.logger = s.logger.With(slog.String("component", "discovery"))
	return s
}

// PageSize returns the number of items per page.
func (s *Service) PageSize() int {
	return s.pageSize
}

// Scope returns the stores the feed covers.
func (s *Service) Scope() Scope {
	return s.scope
}

// CollectionURL returns the collection id for baseURL.
func CollectionURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/activity/collection"
}

// PageURL returns the id of page n for baseURL.
func PageURL(baseURL string, n int) string {
	return fmt.Sprintf("%s/page/%d", CollectionURL(baseURL), n)
}

// Collection builds the OrderedCollection document. An empty log has no
// first or last link.
func (s *Service) Collection(ctx context.Context, baseURL string) (*Collection, error) {
	total, err := s.count(ctx)
	if err != nil {
		return nil, err
	}

	c := &Collection{
		Context:    Context,
		ID:         CollectionURL(baseURL),
		Type:       TypeOrderedCollection,
		TotalItems: total,
	}
	if total > 0 {
		c.First = &Ref{ID: PageURL(baseURL, 0), Type: TypeOrderedCollectionPage}
		c.Last = &Ref{ID: PageURL(baseURL, (total-1)/s.pageSize), Type: TypeOrderedCollectionPage}
	}
	return c, nil
}

// Page builds page n. Pages past the end carry no items.
func (s *Service) Page(ctx context.Context, baseURL string, n int) (*Page, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPage, n)
	}

	ctx, span := otel.Tracer("folio").Start(ctx, "discovery.Page")
	defer span.End()
	span.SetAttributes(attribute.Int("page", n), attribute.String("scope", string(s.scope)))

	var key string
	if s.cache != nil {
		k, err := s.cacheKey(ctx, baseURL, n)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		key = k
		if page, ok := s.cached(ctx, key); ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return page, nil
		}
	}

	items, err := s.items(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	page := s.render(baseURL, n, items)
	span.SetAttributes(attribute.Int("items", len(page.OrderedItems)))

	if s.cache != nil {
		s.store(ctx, key, page)
	}
	return page, nil
}

func (s *Service) render(baseURL string, n int, items []activity.Activity) *Page {
	total := len(items)
	start := n * s.pageSize

	page := &Page{
		Context:      Context,
		ID:           PageURL(baseURL, n),
		Type:         TypeOrderedCollectionPage,
		StartIndex:   start,
		PartOf:       Ref{ID: CollectionURL(baseURL), Type: TypeOrderedCollection},
		OrderedItems: []activity.Activity{},
	}
	if n > 0 {
		page.Prev = &Ref{ID: PageURL(baseURL, n-1), Type: TypeOrderedCollectionPage}
	}
	if start+s.pageSize < total {
		page.Next = &Ref{ID: PageURL(baseURL, n+1), Type: TypeOrderedCollectionPage}
	}
	if start < total {
		end := min(start+s.pageSize, total)
		page.OrderedItems = append(page.OrderedItems, items[start:end]...)
	}
	return page
}

// source returns the store the feed covers.
func (s *Service) source() Source {
	if s.scope == ScopeLive {
		return s.live
	}
	return s.history
}

func (s *Service) count(ctx context.Context) (int, error) {
	n, err := s.source().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting activities: %w", err)
	}
	return n, nil
}

func (s *Service) items(ctx context.Context) ([]activity.Activity, error) {
	items, err := s.source().AllByTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}
	return items, nil
}

// cacheKey identifies a page by the state of the log it was rendered from.
// Appends, imports and clears change the count or the newest id; rotation
// changes neither in ScopeFull and changes the count in ScopeLive.
func (s *Service) cacheKey(ctx context.Context, baseURL string, n int) (string, error) {
	total, err := s.count(ctx)
	if err != nil {
		return "", err
	}
	newest, err := s.newestID(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("folio:discovery:%s:%d:%d:%s:%s:%d",
		s.scope, s.pageSize, total, newest, CollectionURL(baseURL), n), nil
}

func (s *Service) newestID(ctx context.Context) (string, error) {
	newest, err := s.source().Newest(ctx)
	if err != nil {
		return "", fmt.Errorf("reading newest activity: %w", err)
	}
	if newest == nil {
		return "", nil
	}
	return newest.ID, nil
}

func (s *Service) cached(ctx context.Context, key string) (*Page, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("page cache read failed", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		s.logger.Warn("page cache entry unreadable", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return &page, true
}

func (s *Service) store(ctx context.Context, key string, page *Page) {
	data, err := json.Marshal(page)
	if err != nil {
		s.logger.Warn("page cache encode failed", slog.Any("error", err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("page cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}
