package learner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/lessonflow/internal/config"
	"github.com/abhisek/lessonflow/internal/logger"
	"github.com/abhisek/lessonflow/internal/store"
)

// GuestIDKey is the device-local key holding the guest pseudo-identity.
const GuestIDKey = "guestId"

// Mode is how the learner is identified.
type Mode int

const (
	Guest Mode = iota
	Account
)

func (m Mode) String() string {
	if m == Account {
		return "account"
	}
	return "guest"
}

// Identity names the learner whose progress is being tracked.
type Identity struct {
	ID   string
	Mode Mode
}

func (id Identity) IsGuest() bool { return id.Mode == Guest }

// AccountIdentity returns an authenticated identity.
func AccountIdentity(id string) Identity {
	return Identity{ID: id, Mode: Account}
}

// GuestIdentity returns this device's guest identity, creating and
// storing a new one on first use.
func GuestIdentity(kv store.LocalKV) (Identity, error) {
	raw, err := kv.Get(GuestIDKey)
	switch {
	case err == nil && strings.TrimSpace(string(raw)) != "":
		return Identity{ID: strings.TrimSpace(string(raw)), Mode: Guest}, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return Identity{}, fmt.Errorf("read guest id: %w", err)
	}

	id := uuid.NewString()
	if err := kv.Set(GuestIDKey, []byte(id)); err != nil {
		return Identity{}, fmt.Errorf("save guest id: %w", err)
	}
	return Identity{ID: id, Mode: Guest}, nil
}

// ResolveIdentity picks the account identity from cfg, or falls back to
// the device guest identity.
func ResolveIdentity(cfg config.Config, kv store.LocalKV) (Identity, error) {
	if !cfg.IsGuest() {
		return AccountIdentity(cfg.LearnerID), nil
	}
	return GuestIdentity(kv)
}

// OpenStore selects the store for the identity once per session: guests
// get the device-local store, accounts the configured durable backend.
func OpenStore(ctx context.Context, cfg config.Config, id Identity, kv store.LocalKV, log *logger.Logger) (*store.DocumentStore, error) {
	if id.IsGuest() {
		return store.NewEphemeral(kv, id.ID), nil
	}
	return store.OpenDurable(ctx, cfg, log)
}
