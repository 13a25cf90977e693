package discovery_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/domain/discovery"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://archive.example.org"

// memSource is a time-ordered in-memory Source.
type memSource struct {
	items    []activity.Activity
	allCalls atomic.Int32
}

func (m *memSource) Count(ctx context.Context) (int, error) {
	return len(m.items), nil
}

func (m *memSource) AllByTime(ctx context.Context) ([]activity.Activity, error) {
	m.allCalls.Add(1)
	return append([]activity.Activity{}, m.items...), nil
}

func (m *memSource) Newest(ctx context.Context) (*activity.Activity, error) {
	if len(m.items) == 0 {
		return nil, nil
	}
	a := m.items[len(m.items)-1]
	return &a, nil
}

func generate(n int, from int) []activity.Activity {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]activity.Activity, n)
	for i := range out {
		k := from + i
		out[i] = activity.Activity{
			Context: activity.ContextURI,
			ID:      fmt.Sprintf("urn:uuid:%04d", k),
			Type:    activity.TypeUpdate,
			EndTime: activity.FormatTime(base.Add(time.Duration(k) * time.Second)),
			Object:  activity.ObjectRef{ID: fmt.Sprintf("m%d", k), Type: "Manifest"},
			Seq:     int64(k + 1),
		}
	}
	return out
}

func itemIDs(p *discovery.Page) []string {
	out := make([]string, len(p.OrderedItems))
	for i, a := range p.OrderedItems {
		out[i] = a.ID
	}
	return out
}

func TestCollection_EmptyLog(t *testing.T) {
	svc := discovery.NewService(&memSource{}, &memSource{})

	c, err := svc.Collection(context.Background(), baseURL)
	require.NoError(t, err)
	require.Equal(t, 0, c.TotalItems)
	require.Nil(t, c.First)
	require.Nil(t, c.Last)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	require.NotContains(t, string(data), "first")
	require.NotContains(t, string(data), "last")
}

func TestPage_EmptyLogHasEmptyItems(t *testing.T) {
	svc := discovery.NewService(&memSource{}, &memSource{})

	p, err := svc.Page(context.Background(), baseURL, 0)
	require.NoError(t, err)
	require.NotNil(t, p.OrderedItems)
	require.Empty(t, p.OrderedItems)
	require.Nil(t, p.Prev)
	require.Nil(t, p.Next)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.Contains(t, string(data), `"orderedItems":[]`)
}

func TestPaging_250Items(t *testing.T) {
	ctx := context.Background()
	svc := discovery.NewService(&memSource{items: generate(250, 0)}, nil, discovery.WithScope(discovery.ScopeLive))

	c, err := svc.Collection(ctx, baseURL)
	require.NoError(t, err)
	require.Equal(t, 250, c.TotalItems)
	require.Equal(t, baseURL+"/activity/collection/page/0", c.First.ID)
	require.Equal(t, baseURL+"/activity/collection/page/2", c.Last.ID)
	require.Equal(t, discovery.TypeOrderedCollectionPage, c.Last.Type)

	p0, err := svc.Page(ctx, baseURL, 0)
	require.NoError(t, err)
	require.Len(t, p0.OrderedItems, 100)
	require.Equal(t, "urn:uuid:0000", p0.OrderedItems[0].ID)
	require.Equal(t, "urn:uuid:0099", p0.OrderedItems[99].ID)
	require.Nil(t, p0.Prev)
	require.Equal(t, baseURL+"/activity/collection/page/1", p0.Next.ID)
	require.Equal(t, 0, p0.StartIndex)
	require.Equal(t, baseURL+"/activity/collection", p0.PartOf.ID)

	p2, err := svc.Page(ctx, baseURL, 2)
	require.NoError(t, err)
	require.Len(t, p2.OrderedItems, 50)
	require.Equal(t, "urn:uuid:0200", p2.OrderedItems[0].ID)
	require.Equal(t, "urn:uuid:0249", p2.OrderedItems[49].ID)
	require.Equal(t, baseURL+"/activity/collection/page/1", p2.Prev.ID)
	require.Nil(t, p2.Next)
	require.Equal(t, 200, p2.StartIndex)
}

func TestPaging_ExactMultipleHasNoExtraPage(t *testing.T) {
	ctx := context.Background()
	svc := discovery.NewService(&memSource{items: generate(200, 0)}, nil)

	c, err := svc.Collection(ctx, baseURL)
	require.NoError(t, err)
	require.Equal(t, baseURL+"/activity/collection/page/1", c.Last.ID)

	p1, err := svc.Page(ctx, baseURL, 1)
	require.NoError(t, err)
	require.Len(t, p1.OrderedItems, 100)
	require.Nil(t, p1.Next)
}

func TestPage_PastEnd(t *testing.T) {
	svc := discovery.NewService(&memSource{items: generate(5, 0)}, nil)

	p, err := svc.Page(context.Background(), baseURL, 3)
	require.NoError(t, err)
	require.Empty(t, p.OrderedItems)
	require.Nil(t, p.Next)
	require.Equal(t, baseURL+"/activity/collection/page/2", p.Prev.ID)
}

func TestPage_NegativeIndex(t *testing.T) {
	svc := discovery.NewService(&memSource{}, nil)

	_, err := svc.Page(context.Background(), baseURL, -1)
	require.ErrorIs(t, err, discovery.ErrInvalidPage)
}

func TestScope_FullReadsHistory(t *testing.T) {
	ctx := context.Background()
	all := generate(12, 0)
	live := &memSource{items: all[7:]}
	history := &memSource{items: all}

	full := discovery.NewService(live, history, discovery.WithPageSize(5))
	c, err := full.Collection(ctx, baseURL)
	require.NoError(t, err)
	require.Equal(t, 12, c.TotalItems)

	p1, err := full.Page(ctx, baseURL, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"urn:uuid:0005", "urn:uuid:0006", "urn:uuid:0007", "urn:uuid:0008", "urn:uuid:0009"}, itemIDs(p1))
	require.Zero(t, live.allCalls.Load())

	liveOnly := discovery.NewService(live, history, discovery.WithPageSize(5), discovery.WithScope(discovery.ScopeLive))
	c, err = liveOnly.Collection(ctx, baseURL)
	require.NoError(t, err)
	require.Equal(t, 5, c.TotalItems)
}

func TestBaseURLTrailingSlash(t *testing.T) {
	svc := discovery.NewService(&memSource{items: generate(1, 0)}, nil)

	c, err := svc.Collection(context.Background(), baseURL+"/")
	require.NoError(t, err)
	require.Equal(t, baseURL+"/activity/collection", c.ID)
}

func TestParseScope(t *testing.T) {
	scope, err := discovery.ParseScope("")
	require.NoError(t, err)
	require.Equal(t, discovery.ScopeFull, scope)

	scope, err = discovery.ParseScope("live")
	require.NoError(t, err)
	require.Equal(t, discovery.ScopeLive, scope)

	_, err = discovery.ParseScope("partial")
	require.ErrorIs(t, err, discovery.ErrInvalidScope)
}

// mapCache is an in-memory PageCache.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func TestPage_CacheServesUnchangedLog(t *testing.T) {
	ctx := context.Background()
	live := &memSource{items: generate(3, 0)}
	cache := &mapCache{data: map[string][]byte{}}
	svc := discovery.NewService(live, nil, discovery.WithCache(cache, time.Minute))

	first, err := svc.Page(ctx, baseURL, 0)
	require.NoError(t, err)
	second, err := svc.Page(ctx, baseURL, 0)
	require.NoError(t, err)
	require.Equal(t, itemIDs(first), itemIDs(second))
	require.Equal(t, int32(1), live.allCalls.Load())
	require.Len(t, cache.data, 1)

	// A new activity changes the key.
	live.items = append(live.items, generate(1, 3)...)
	third, err := svc.Page(ctx, baseURL, 0)
	require.NoError(t, err)
	require.Len(t, third.OrderedItems, 4)
	require.Equal(t, int32(2), live.allCalls.Load())
}
