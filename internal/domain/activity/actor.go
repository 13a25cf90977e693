package activity

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rpggio/folio/internal/repository"
)

// ActorMetadataKey is the metadata key the installation actor is stored under.
const ActorMetadataKey = "actor"

const (
	deviceSuffixLen      = 9
	deviceSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewDeviceActor generates a fresh installation identity of the form
// device-{epoch-millis}-{9 random chars}.
func NewDeviceActor(now time.Time, name string) (*Actor, error) {
	suffix, err := randomSuffix(deviceSuffixLen)
	if err != nil {
		return nil, fmt.Errorf("generate device id: %w", err)
	}
	return &Actor{
		ID:   fmt.Sprintf("device-%d-%s", now.UnixMilli(), suffix),
		Type: ActorApplication,
		Name: name,
	}, nil
}

// ResolveActor loads the installation actor, generating and persisting one on
// first use. A non-empty name replaces the stored display name; the id never
// changes once written.
func ResolveActor(ctx context.Context, meta MetadataStore, name string, now time.Time) (*Actor, error) {
	raw, err := meta.GetMeta(ctx, ActorMetadataKey)
	switch {
	case err == nil:
		var actor Actor
		if err := json.Unmarshal([]byte(raw), &actor); err != nil {
			return nil, fmt.Errorf("decode stored actor: %w", err)
		}
		if name == "" || name == actor.Name {
			return &actor, nil
		}
		actor.Name = name
		if err := storeActor(ctx, meta, &actor); err != nil {
			return nil, err
		}
		return &actor, nil
	case errors.Is(err, repository.ErrNotFound):
		actor, err := NewDeviceActor(now, name)
		if err != nil {
			return nil, err
		}
		if err := storeActor(ctx, meta, actor); err != nil {
			return nil, err
		}
		return actor, nil
	default:
		return nil, fmt.Errorf("load actor: %w", err)
	}
}

func storeActor(ctx context.Context, meta MetadataStore, actor *Actor) error {
	data, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("encode actor: %w", err)
	}
	if err := meta.PutMeta(ctx, ActorMetadataKey, string(data)); err != nil {
		return fmt.Errorf("store actor: %w", err)
	}
	return nil
}

func randomSuffix(n int) (string, error) {
	max := big.NewInt(int64(len(deviceSuffixAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = deviceSuffixAlphabet[idx.Int64()]
	}
	return string(buf), nil
}

func cloneActor(actor *Actor) *Actor {
	if actor == nil {
		return nil
	}
	cp := *actor
	return &cp
}
