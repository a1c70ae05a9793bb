package events

import (
	"context"

	"kitapool/pkg/kafka"
	kafka_config "kitapool/pkg/kafka/config"
	kafka_middleware "kitapool/pkg/kafka/middleware"
	"kitapool/pkg/logger"
	"kitapool/pkg/model"
	"kitapool/pkg/sealer"
)

const sourceService = "kitapool-marketplace"

// KafkaPublisher publishes domain events to the matching and
// application topics. Match events carry a sealed token instead of raw
// document IDs.
type KafkaPublisher struct {
	matching     *kafka.Producer
	applications *kafka.Producer
	sealer       *sealer.Sealer
	log          *logger.Logger
}

func NewKafkaPublisher(cfg *kafka_config.Config, seal *sealer.Sealer, log *logger.Logger) (*KafkaPublisher, error) {
	matching, err := kafka.NewProducer(cfg, TopicMatching, TopicMatchingDLQ)
	if err != nil {
		return nil, err
	}
	applications, err := kafka.NewProducer(cfg, TopicApplications, TopicApplicationsDLQ)
	if err != nil {
		matching.Close()
		return nil, err
	}

	logging := kafka_middleware.LoggingProducerMiddleware(log)
	matching.Use(logging)
	applications.Use(logging)

	return &KafkaPublisher{
		matching:     matching,
		applications: applications,
		sealer:       seal,
		log:          log,
	}, nil
}

func (p *KafkaPublisher) RequestCreated(ctx context.Context, req *model.SubstitutionRequest, city string, matchCount int) error {
	msg := kafka.NewMessage().
		WithKey(req.ID).
		WithEventType(TypeRequestCreated).
		WithSource(sourceService).
		WithValue(RequestCreatedEvent{
			RequestID:         req.ID,
			ExchangeProfileID: req.ExchangeProfileID,
			City:              city,
			AgeGroups:         req.AgeGroups,
			StartDate:         req.StartDate,
			EndDate:           req.EndDate,
			MatchCount:        matchCount,
		}).
		Build()
	return p.matching.Publish(ctx, msg)
}

func (p *KafkaPublisher) ProviderMatched(ctx context.Context, match *model.RequestMatch) error {
	token, err := p.sealer.SealMatchToken(match.RequestID, match.ProviderProfileID)
	if err != nil {
		return err
	}

	msg := kafka.NewMessage().
		WithKey(match.ProviderUserID).
		WithEventType(TypeProviderMatched).
		WithSource(sourceService).
		WithValue(ProviderMatchedEvent{
			MatchID:        match.ID,
			ProviderUserID: match.ProviderUserID,
			MatchToken:     token,
		}).
		Build()
	return p.matching.Publish(ctx, msg)
}

func (p *KafkaPublisher) ApplicationSubmitted(ctx context.Context, app *model.RequestApplication) error {
	return p.publishApplication(ctx, TypeApplicationSubmitted, app)
}

func (p *KafkaPublisher) ApplicationDecided(ctx context.Context, app *model.RequestApplication) error {
	return p.publishApplication(ctx, TypeApplicationDecided, app)
}

func (p *KafkaPublisher) publishApplication(ctx context.Context, eventType string, app *model.RequestApplication) error {
	msg := kafka.NewMessage().
		WithKey(app.RequestID).
		WithEventType(eventType).
		WithSource(sourceService).
		WithValue(ApplicationEvent{
			ApplicationID:  app.ID,
			RequestID:      app.RequestID,
			ProviderUserID: app.ProviderUserID,
			Status:         app.Status,
		}).
		Build()
	return p.applications.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	if err := p.matching.Close(); err != nil {
		return err
	}
	return p.applications.Close()
}
