package model

import "time"

const (
	RequestStatusOpen      = "open"
	RequestStatusFulfilled = "fulfilled"
	RequestStatusCancelled = "cancelled"
)

const (
	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusDeclined = "declined"
)

// SubstitutionRequest is a facility's time-bounded ask for temporary
// coverage. Dates are "YYYY-MM-DD", times "HH:MM" (24h, zero-padded).
type SubstitutionRequest struct {
	ID                string   `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ExchangeProfileID string   `json:"exchange_profile_id" bson:"exchange_profile_id" validate:"required,mongodb"`
	UserID            string   `json:"user_id" bson:"user_id" validate:"required"`
	AgeGroups         []string `json:"age_groups" bson:"age_groups" validate:"required,min=1,dive,min=1,max=20"`
	StartDate         string   `json:"start_date" bson:"start_date" validate:"required,isodate"`
	EndDate           string   `json:"end_date" bson:"end_date" validate:"required,isodate"`
	TimeFrom          string   `json:"time_from" bson:"time_from" validate:"required,hhmm"`
	TimeTo            string   `json:"time_to" bson:"time_to" validate:"required,hhmm"`
	Notes             string   `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	Status            string   `json:"status" bson:"status" validate:"required,oneof=open fulfilled cancelled"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// RequestMatch links one request to one eligible provider. Matches are
// computed exactly once when the request is created and never
// recomputed. Status here is the provider-side acknowledgement and is
// independent of any application on the same request.
type RequestMatch struct {
	ID                string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RequestID         string `json:"request_id" bson:"request_id" validate:"required,mongodb"`
	ProviderProfileID string `json:"provider_profile_id" bson:"provider_profile_id" validate:"required,mongodb"`
	ProviderUserID    string `json:"provider_user_id" bson:"provider_user_id" validate:"required"`
	Status            string `json:"status" bson:"status" validate:"required,oneof=pending accepted declined"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
