package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/lessonflow/internal/progress"
)

// GuestProgressKey is the single namespaced entry holding guest progress.
const GuestProgressKey = "guestProgress"

// guestEnvelope is the stored shape of the guest entry: the progress
// document stamped with the guest id that owns it.
type guestEnvelope struct {
	LearnerID string `json:"learnerId"`
	*progress.LearnerProgress
}

// ephemeralBackend stores exactly one guest document in device-local KV.
type ephemeralBackend struct {
	kv      LocalKV
	guestID string
}

// NewEphemeral returns the guest-mode store. It persists only on this
// device and serves only guestID: a stored entry stamped with another id
// reads as empty.
func NewEphemeral(kv LocalKV, guestID string) *DocumentStore {
	return &DocumentStore{
		backend: &ephemeralBackend{kv: kv, guestID: guestID},
		kind:    "ephemeral",
	}
}

func (b *ephemeralBackend) Fetch(_ context.Context, learnerID string) ([]byte, error) {
	if learnerID != b.guestID {
		return nil, ErrNotFound
	}
	raw, err := b.kv.Get(GuestProgressKey)
	if err != nil {
		return nil, err
	}

	var env struct {
		LearnerID string `json:"learnerId"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode guest entry: %w", err)
	}
	if env.LearnerID != learnerID {
		return nil, ErrNotFound
	}
	// The envelope's extra learnerId field is ignored when the document
	// is decoded.
	return raw, nil
}

func (b *ephemeralBackend) Put(_ context.Context, learnerID string, doc []byte) error {
	if learnerID != b.guestID {
		return fmt.Errorf("guest store serves %q only", b.guestID)
	}
	lp := progress.New()
	if err := json.Unmarshal(doc, lp); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	raw, err := json.Marshal(guestEnvelope{LearnerID: learnerID, LearnerProgress: lp})
	if err != nil {
		return fmt.Errorf("encode guest entry: %w", err)
	}
	return b.kv.Set(GuestProgressKey, raw)
}

func (b *ephemeralBackend) Delete(_ context.Context, _ string) error {
	err := b.kv.Remove(GuestProgressKey)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
