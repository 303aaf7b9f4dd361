package domain

import "time"

// Subscription registers a client's interest in changes to a resource.
// It is the only record with a full create, update and delete lifecycle
// through the API.
type Subscription struct {
	Meta         `yaml:",inline"`
	ResourceType string     `json:"resource_type" yaml:"resource_type"`
	ResourceID   string     `json:"resource_id" yaml:"resource_id"`
	UserID       string     `json:"user_id" yaml:"user_id"`
	Expires      *time.Time `json:"expires,omitempty" yaml:"expires"`
}

// SubscriptionTable is the column table for subscriptions.
var SubscriptionTable = NewTable("subscriptions",
	func(s *Subscription) *Meta { return &s.Meta },
	StringCol("resource_type", func(s *Subscription) *string { return &s.ResourceType }),
	StringCol("resource_id", func(s *Subscription) *string { return &s.ResourceID }),
	StringCol("user_id", func(s *Subscription) *string { return &s.UserID }),
	OptTimeCol("expires", func(s *Subscription) **time.Time { return &s.Expires }),
)

// CreateSubscriptionRequest holds parameters for creating a subscription.
type CreateSubscriptionRequest struct {
	ResourceType string     `json:"resource_type" validate:"required,resource_type"`
	ResourceID   string     `json:"resource_id" validate:"required,max=255"`
	UserID       string     `json:"user_id" validate:"required,max=255"`
	Expires      *time.Time `json:"expires,omitempty"`
}

// UpdateSubscriptionRequest is a partial patch; nil fields are left as is.
type UpdateSubscriptionRequest struct {
	ResourceType *string    `json:"resource_type,omitempty" validate:"omitempty,resource_type"`
	ResourceID   *string    `json:"resource_id,omitempty" validate:"omitempty,min=1,max=255"`
	UserID       *string    `json:"user_id,omitempty" validate:"omitempty,min=1,max=255"`
	Expires      *time.Time `json:"expires,omitempty"`
}

// Patch converts the request into column updates.
func (r *UpdateSubscriptionRequest) Patch() Patch {
	p := Patch{}
	if r.ResourceType != nil {
		p["resource_type"] = *r.ResourceType
	}
	if r.ResourceID != nil {
		p["resource_id"] = *r.ResourceID
	}
	if r.UserID != nil {
		p["user_id"] = *r.UserID
	}
	if r.Expires != nil {
		p["expires"] = r.Expires.UTC()
	}
	return p
}
