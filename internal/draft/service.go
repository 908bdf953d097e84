package draft

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lucasmr/atelier/internal/platform/validate"
)

// Service applies the thin business rules around draft autosave.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a new [Service] with its store dependency.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// maxDraftBytes caps one draft body. Drafts may embed images as data URLs,
// so the cap is generous but still bounded.
const maxDraftBytes = 8 << 20

// Save stores or overwrites the draft under the given key.
func (service *Service) Save(ctx context.Context, key string, body json.RawMessage) (*Draft, error) {
	v := &validate.Validator{}
	v.Required("key", key).Slug("key", key)
	v.Custom("body", len(body) == 0, "This field is required")
	v.Custom("body", len(body) > maxDraftBytes, "Draft body is too large")
	v.Custom("body", len(body) > 0 && !json.Valid(body), "Must be valid JSON")
	if err := v.Err(); err != nil {
		return nil, err
	}

	d := &Draft{Key: key, Body: body, UpdatedAt: time.Now().UTC()}
	if err := service.store.Put(ctx, d); err != nil {
		return nil, err
	}

	service.logger.Debug("draft_saved", slog.String("key", key), slog.Int("bytes", len(body)))
	return d, nil
}

// Load returns the draft stored under the key.
func (service *Service) Load(ctx context.Context, key string) (*Draft, error) {
	return service.store.Get(ctx, key)
}

// Discard removes the draft. Discarding an absent draft succeeds.
func (service *Service) Discard(ctx context.Context, key string) error {
	return service.store.Delete(ctx, key)
}
