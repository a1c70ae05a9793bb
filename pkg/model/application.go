package model

import "time"

const (
	ApplicationStatusApplied  = "applied"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusDeclined = "declined"
)

// RequestApplication is a provider's explicit bid on a request.
// Contact fields are copies taken at apply/decide time when the
// respective side opted in; they are never backfilled from profiles
// afterwards.
type RequestApplication struct {
	ID                string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RequestID         string `json:"request_id" bson:"request_id" validate:"required,mongodb"`
	ProviderProfileID string `json:"provider_profile_id" bson:"provider_profile_id" validate:"required,mongodb"`
	ProviderUserID    string `json:"provider_user_id" bson:"provider_user_id" validate:"required"`
	CoverNote         string `json:"cover_note,omitempty" bson:"cover_note,omitempty" validate:"omitempty,max=2000"`
	InitialMessage    string `json:"initial_message,omitempty" bson:"initial_message,omitempty" validate:"omitempty,max=2000"`
	Status            string `json:"status" bson:"status" validate:"required,oneof=applied accepted declined"`

	SharedPhone string `json:"shared_phone,omitempty" bson:"shared_phone,omitempty"`
	SharedEmail string `json:"shared_email,omitempty" bson:"shared_email,omitempty"`

	ExchangeSharedPhone string `json:"exchange_shared_phone,omitempty" bson:"exchange_shared_phone,omitempty"`
	ExchangeSharedEmail string `json:"exchange_shared_email,omitempty" bson:"exchange_shared_email,omitempty"`

	CreatedAt       time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	DecisionAt      *time.Time `json:"decision_at,omitempty" bson:"decision_at,omitempty"`
	DecisionMessage string     `json:"decision_message,omitempty" bson:"decision_message,omitempty" validate:"omitempty,max=2000"`
}
