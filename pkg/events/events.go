package events

import (
	"context"

	"kitapool/pkg/model"
)

// Topics carrying marketplace domain events. Downstream consumers
// (notification delivery, analytics) subscribe to these; this service
// only produces.
const (
	TopicMatching     = "kitapool.matching.v1"
	TopicApplications = "kitapool.applications.v1"

	TopicMatchingDLQ     = "kitapool.matching.v1.dlq"
	TopicApplicationsDLQ = "kitapool.applications.v1.dlq"
)

const (
	TypeRequestCreated       = "request.created"
	TypeProviderMatched      = "provider.matched"
	TypeApplicationSubmitted = "application.submitted"
	TypeApplicationDecided   = "application.decided"
)

type RequestCreatedEvent struct {
	RequestID         string   `json:"request_id"`
	ExchangeProfileID string   `json:"exchange_profile_id"`
	City              string   `json:"city"`
	AgeGroups         []string `json:"age_groups"`
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	MatchCount        int      `json:"match_count"`
}

type ProviderMatchedEvent struct {
	MatchID        string `json:"match_id"`
	ProviderUserID string `json:"provider_user_id"`
	// MatchToken is an opaque sealed reference to (request, provider
	// profile); consumers use it to build deep links.
	MatchToken string `json:"match_token"`
}

type ApplicationEvent struct {
	ApplicationID  string `json:"application_id"`
	RequestID      string `json:"request_id"`
	ProviderUserID string `json:"provider_user_id"`
	Status         string `json:"status"`
}

// Publisher emits marketplace domain events. Implementations are best
// effort: callers log failures and carry on, publishing never blocks a
// mutation from committing.
type Publisher interface {
	RequestCreated(ctx context.Context, req *model.SubstitutionRequest, city string, matchCount int) error
	ProviderMatched(ctx context.Context, match *model.RequestMatch) error
	ApplicationSubmitted(ctx context.Context, app *model.RequestApplication) error
	ApplicationDecided(ctx context.Context, app *model.RequestApplication) error
	Close() error
}

// Noop drops every event. Used when event publishing is disabled.
type Noop struct{}

func (Noop) RequestCreated(context.Context, *model.SubstitutionRequest, string, int) error {
	return nil
}
func (Noop) ProviderMatched(context.Context, *model.RequestMatch) error        { return nil }
func (Noop) ApplicationSubmitted(context.Context, *model.RequestApplication) error { return nil }
func (Noop) ApplicationDecided(context.Context, *model.RequestApplication) error   { return nil }
func (Noop) Close() error                                                          { return nil }
