package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	requesterrors "kitapool/internal/requests/errors"
	"kitapool/pkg/config"
	"kitapool/pkg/model"
)

const MatchCollection = "request_matches"

type RequestMatchRepository interface {
	CreateMany(ctx context.Context, matches []*model.RequestMatch) error
	FindByID(ctx context.Context, id string) (*model.RequestMatch, error)
	FindByRequestID(ctx context.Context, requestID string) ([]*model.RequestMatch, error)
	FindByProviderUserID(ctx context.Context, providerUserID string) ([]*model.RequestMatch, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type mongoMatchRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMatchRepository(cfg *config.Config) RequestMatchRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMatchRepository{
		cfg:        cfg,
		collection: db.Collection(MatchCollection),
	}
}

func (r *mongoMatchRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

// CreateMany inserts the match fan-out for a new request. Called
// inside the request-creation transaction.
func (r *mongoMatchRepository) CreateMany(ctx context.Context, matches []*model.RequestMatch) error {
	if len(matches) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(matches))
	for _, m := range matches {
		m.CreatedAt = now
		docs = append(docs, m)
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to create request matches: %w", err)
	}

	for i, insertedID := range result.InsertedIDs {
		if oid, ok := insertedID.(primitive.ObjectID); ok {
			matches[i].ID = oid.Hex()
		}
	}
	return nil
}

func (r *mongoMatchRepository) FindByID(ctx context.Context, id string) (*model.RequestMatch, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", requesterrors.ErrInvalidID, id)
	}

	var match model.RequestMatch
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&match)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", requesterrors.ErrMatchNotFound, id)
		}
		return nil, fmt.Errorf("failed to find request match: %w", err)
	}
	return &match, nil
}

func (r *mongoMatchRepository) FindByRequestID(ctx context.Context, requestID string) ([]*model.RequestMatch, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"request_id": requestID})
	if err != nil {
		return nil, fmt.Errorf("failed to find matches by request: %w", err)
	}
	defer cursor.Close(ctx)

	var matches []*model.RequestMatch
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode matches: %w", err)
	}
	return matches, nil
}

func (r *mongoMatchRepository) FindByProviderUserID(ctx context.Context, providerUserID string) ([]*model.RequestMatch, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"provider_user_id": providerUserID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find matches by provider user: %w", err)
	}
	defer cursor.Close(ctx)

	var matches []*model.RequestMatch
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode matches: %w", err)
	}
	return matches, nil
}

func (r *mongoMatchRepository) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", requesterrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", requesterrors.ErrMatchNotFound, id)
	}
	return nil
}
