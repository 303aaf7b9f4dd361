// Package subscription manages the create, update and delete lifecycle of
// subscriptions and sweeps the expired ones.
package subscription

import (
	"context"
	"log/slog"

	"ss12000-mock/internal/domain"
)

// Validator checks request bodies.
type Validator interface {
	Validate(i interface{}) error
}

// Service provides subscription mutations. Reads go through the generic
// resource endpoint.
type Service struct {
	store    domain.Store[domain.Subscription]
	validate Validator
	logger   *slog.Logger
}

// NewService creates a new subscription service.
func NewService(store domain.Store[domain.Subscription], validate Validator, logger *slog.Logger) *Service {
	return &Service{store: store, validate: validate, logger: logger.With("component", "subscription")}
}

// Create validates req and stores a new subscription.
func (s *Service) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (*domain.Subscription, error) {
	if err := s.validate.Validate(&req); err != nil {
		return nil, err
	}
	sub := &domain.Subscription{
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		UserID:       req.UserID,
	}
	if req.Expires != nil {
		exp := req.Expires.UTC()
		sub.Expires = &exp
	}
	created, err := s.store.Insert(ctx, sub)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "subscription created", "id", created.ID, "resource_type", created.ResourceType)
	return created, nil
}

// Update applies the non-nil fields of req and refreshes the modified time.
func (s *Service) Update(ctx context.Context, id string, req domain.UpdateSubscriptionRequest) (*domain.Subscription, error) {
	if err := domain.RequireUUID(id); err != nil {
		return nil, err
	}
	if err := s.validate.Validate(&req); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, req.Patch())
}

// Delete removes the subscription. A missing id is a NotFoundError.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := domain.RequireUUID(id); err != nil {
		return err
	}
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound("subscription %q not found", id)
	}
	s.logger.InfoContext(ctx, "subscription deleted", "id", id)
	return nil
}
