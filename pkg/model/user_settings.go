package model

import "time"

const (
	RoleProvider = "provider"
	RoleExchange = "exchange"
)

// UserSettings stores the user's currently active role and profile.
// Upserted, one document per user.
type UserSettings struct {
	ID                      string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID                  string `json:"user_id" bson:"user_id" validate:"required"`
	ActiveRole              string `json:"active_role" bson:"active_role" validate:"required,oneof=provider exchange"`
	ActiveProviderProfileID string `json:"active_provider_profile_id,omitempty" bson:"active_provider_profile_id,omitempty" validate:"omitempty,mongodb"`
	ActiveExchangeProfileID string `json:"active_exchange_profile_id,omitempty" bson:"active_exchange_profile_id,omitempty" validate:"omitempty,mongodb"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}
