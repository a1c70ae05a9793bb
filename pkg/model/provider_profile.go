package model

import "time"

// ProviderProfile is a caregiver's availability offer. Each user owns
// at most one provider profile; the one-per-user rule is enforced at
// creation time by the profile service.
type ProviderProfile struct {
	ID            string   `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID        string   `json:"user_id" bson:"user_id" validate:"required"`
	DisplayName   string   `json:"display_name,omitempty" bson:"display_name,omitempty" validate:"omitempty,max=100"`
	Address       string   `json:"address" bson:"address" validate:"required,min=2,max=200"`
	City          string   `json:"city" bson:"city" validate:"required,min=1,max=100"`
	PostalCode    string   `json:"postal_code" bson:"postal_code" validate:"required,min=3,max=12"`
	Latitude      *float64 `json:"latitude,omitempty" bson:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude,omitempty" bson:"longitude,omitempty" validate:"omitempty,longitude"`
	Phone         string   `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,max=20"`
	Email         string   `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Capacity      int      `json:"capacity" bson:"capacity" validate:"min=0,max=50"`
	AgeGroups     []string `json:"age_groups" bson:"age_groups" validate:"required,min=1,dive,min=1,max=20"`
	MaxCommuteKm  float64  `json:"max_commute_km" bson:"max_commute_km" validate:"min=0,max=500"`
	AvailableDays []string `json:"available_days" bson:"available_days" validate:"omitempty,weekdays"`
	TimeFrom      string   `json:"available_time_from" bson:"available_time_from" validate:"required,hhmm"`
	TimeTo        string   `json:"available_time_to" bson:"available_time_to" validate:"required,hhmm"`
	Bio           string   `json:"bio,omitempty" bson:"bio,omitempty" validate:"omitempty,max=2000"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// HasCoordinates reports whether the profile carries a resolved
// geographic position.
func (p *ProviderProfile) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
