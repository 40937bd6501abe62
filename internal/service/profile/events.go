package profile

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/profile-directory/internal/platform/logging"
)

// Event types emitted after successful mutations.
const (
	EventCreated = "profile.created"
	EventUpdated = "profile.updated"
	EventDeleted = "profile.deleted"
)

// Event describes a profile lifecycle change.
type Event struct {
	Type        string    `json:"type"`
	ProfileKey  string    `json:"profileKey"`
	PreviousKey string    `json:"previousKey,omitempty"`
	Username    string    `json:"username,omitempty"`
	IsVerified  bool      `json:"isVerified"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// DefaultPublishTimeout bounds how long a mutation waits on its event.
const DefaultPublishTimeout = 2 * time.Second

// Publisher delivers encoded events keyed by profile key.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// PublishingService decorates a Service and publishes an Event after every
// successful mutation. Publish failures are logged; the mutation stands.
// Publishing runs on a context detached from the request's cancellation and
// bounded by the publish timeout, so a slow broker delays a response by at
// most that long.
type PublishingService struct {
	next    Service
	pub     Publisher
	timeout time.Duration
}

// PublishingOption configures a PublishingService.
type PublishingOption func(*PublishingService)

// WithPublishTimeout overrides DefaultPublishTimeout. Non-positive values are
// ignored.
func WithPublishTimeout(d time.Duration) PublishingOption {
	return func(s *PublishingService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewPublishingService wraps next so that mutations are announced on pub.
func NewPublishingService(next Service, pub Publisher, opts ...PublishingOption) *PublishingService {
	s := &PublishingService{next: next, pub: pub, timeout: DefaultPublishTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PublishingService) Create(ctx context.Context, params CreateParams) (*Profile, error) {
	p, err := s.next.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, Event{
		Type:       EventCreated,
		ProfileKey: p.Key,
		Username:   p.Username,
		IsVerified: p.IsVerified,
	})
	return p, nil
}

func (s *PublishingService) List(ctx context.Context) ([]*Profile, error) {
	return s.next.List(ctx)
}

func (s *PublishingService) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	return s.next.GetByUsername(ctx, username)
}

func (s *PublishingService) GetByKey(ctx context.Context, key string) (*Profile, error) {
	return s.next.GetByKey(ctx, key)
}

func (s *PublishingService) Update(ctx context.Context, key string, params UpdateParams) (*Profile, error) {
	p, err := s.next.Update(ctx, key, params)
	if err != nil {
		return nil, err
	}
	ev := Event{
		Type:       EventUpdated,
		ProfileKey: p.Key,
		Username:   p.Username,
		IsVerified: p.IsVerified,
	}
	if p.Key != key {
		ev.PreviousKey = key
	}
	s.publish(ctx, ev)
	return p, nil
}

func (s *PublishingService) Delete(ctx context.Context, key string) error {
	if err := s.next.Delete(ctx, key); err != nil {
		return err
	}
	s.publish(ctx, Event{Type: EventDeleted, ProfileKey: key})
	return nil
}

func (s *PublishingService) publish(ctx context.Context, ev Event) {
	ev.OccurredAt = time.Now().UTC()
	value, err := json.Marshal(ev)
	if err != nil {
		applog.LogError(ctx, "profile event encode failed", err, zap.String("type", ev.Type))
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.pub.Publish(pubCtx, ev.ProfileKey, value); err != nil {
		applog.LogError(ctx, "profile event publish failed", err,
			zap.String("type", ev.Type),
			zap.String("profileKey", ev.ProfileKey),
		)
	}
}

// Compile-time interface check
var _ Service = (*PublishingService)(nil)
