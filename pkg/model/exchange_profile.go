package model

import "time"

// OpeningWindow is a per-weekday override of the facility's default
// opening hours.
type OpeningWindow struct {
	Day  string `json:"day" bson:"day" validate:"required,weekday"`
	From string `json:"from" bson:"from" validate:"required,hhmm"`
	To   string `json:"to" bson:"to" validate:"required,hhmm"`
}

// ExchangeProfile is a childcare facility that can post substitution
// requests. One per user, like ProviderProfile.
type ExchangeProfile struct {
	ID                string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID            string          `json:"user_id" bson:"user_id" validate:"required"`
	FacilityName      string          `json:"facility_name" bson:"facility_name" validate:"required,min=2,max=150"`
	Address           string          `json:"address" bson:"address" validate:"required,min=2,max=200"`
	City              string          `json:"city" bson:"city" validate:"required,min=1,max=100"`
	PostalCode        string          `json:"postal_code,omitempty" bson:"postal_code,omitempty" validate:"omitempty,min=3,max=12"`
	ContactPersonName string          `json:"contact_person_name,omitempty" bson:"contact_person_name,omitempty" validate:"omitempty,max=100"`
	Phone             string          `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,max=20"`
	Email             string          `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	AgeGroups         []string        `json:"age_groups,omitempty" bson:"age_groups,omitempty" validate:"omitempty,dive,min=1,max=20"`
	OpeningDays       []string        `json:"opening_days,omitempty" bson:"opening_days,omitempty" validate:"omitempty,weekdays"`
	OpeningTimeFrom   string          `json:"opening_time_from,omitempty" bson:"opening_time_from,omitempty" validate:"omitempty,hhmm"`
	OpeningTimeTo     string          `json:"opening_time_to,omitempty" bson:"opening_time_to,omitempty" validate:"omitempty,hhmm"`
	OpeningHours      []OpeningWindow `json:"opening_hours,omitempty" bson:"opening_hours,omitempty" validate:"omitempty,dive"`
	Latitude          *float64        `json:"latitude,omitempty" bson:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude         *float64        `json:"longitude,omitempty" bson:"longitude,omitempty" validate:"omitempty,longitude"`
	Bio               string          `json:"bio,omitempty" bson:"bio,omitempty" validate:"omitempty,max=2000"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (p *ExchangeProfile) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
