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

	profileerrors "kitapool/internal/profiles/errors"
	"kitapool/pkg/config"
	"kitapool/pkg/model"
)

const ProviderProfileCollection = "provider_profiles"

type ProviderProfileRepository interface {
	Create(ctx context.Context, profile *model.ProviderProfile) error
	FindByID(ctx context.Context, id string) (*model.ProviderProfile, error)
	FindByUserID(ctx context.Context, userID string) (*model.ProviderProfile, error)
	FindByCity(ctx context.Context, city string) ([]*model.ProviderProfile, error)
	Update(ctx context.Context, id string, profile *model.ProviderProfile) error
}

type mongoProviderProfileRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoProviderProfileRepository(cfg *config.Config) ProviderProfileRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProviderProfileRepository{
		cfg:        cfg,
		collection: db.Collection(ProviderProfileCollection),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext must not be wrapped or transaction semantics break.
func (r *mongoProviderProfileRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoProviderProfileRepository) Create(ctx context.Context, profile *model.ProviderProfile) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	profile.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to create provider profile: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		profile.ID = oid.Hex()
	}
	return nil
}

func (r *mongoProviderProfileRepository) FindByID(ctx context.Context, id string) (*model.ProviderProfile, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", profileerrors.ErrInvalidID, id)
	}

	var profile model.ProviderProfile
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", profileerrors.ErrProviderProfileNotFound, id)
		}
		return nil, fmt.Errorf("failed to find provider profile: %w", err)
	}
	return &profile, nil
}

func (r *mongoProviderProfileRepository) FindByUserID(ctx context.Context, userID string) (*model.ProviderProfile, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var profile model.ProviderProfile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", profileerrors.ErrProviderProfileNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find provider profile by user: %w", err)
	}
	return &profile, nil
}

// FindByCity is the candidate pool lookup for the matching engine. The
// city value is compared literally; matching semantics depend on it.
func (r *mongoProviderProfileRepository) FindByCity(ctx context.Context, city string) ([]*model.ProviderProfile, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"city": city}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find provider profiles by city: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*model.ProviderProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode provider profiles: %w", err)
	}
	return profiles, nil
}

func (r *mongoProviderProfileRepository) Update(ctx context.Context, id string, profile *model.ProviderProfile) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", profileerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"display_name":        profile.DisplayName,
			"address":             profile.Address,
			"city":                profile.City,
			"postal_code":         profile.PostalCode,
			"latitude":            profile.Latitude,
			"longitude":           profile.Longitude,
			"phone":               profile.Phone,
			"email":               profile.Email,
			"capacity":            profile.Capacity,
			"age_groups":          profile.AgeGroups,
			"max_commute_km":      profile.MaxCommuteKm,
			"available_days":      profile.AvailableDays,
			"available_time_from": profile.TimeFrom,
			"available_time_to":   profile.TimeTo,
			"bio":                 profile.Bio,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update provider profile: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", profileerrors.ErrProviderProfileNotFound, id)
	}
	return nil
}
