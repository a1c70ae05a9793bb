package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	profileerrors "kitapool/internal/profiles/errors"
	"kitapool/pkg/config"
	"kitapool/pkg/model"
)

const ExchangeProfileCollection = "exchange_profiles"

type ExchangeProfileRepository interface {
	Create(ctx context.Context, profile *model.ExchangeProfile) error
	FindByID(ctx context.Context, id string) (*model.ExchangeProfile, error)
	FindByUserID(ctx context.Context, userID string) (*model.ExchangeProfile, error)
	Update(ctx context.Context, id string, profile *model.ExchangeProfile) error
}

type mongoExchangeProfileRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoExchangeProfileRepository(cfg *config.Config) ExchangeProfileRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoExchangeProfileRepository{
		cfg:        cfg,
		collection: db.Collection(ExchangeProfileCollection),
	}
}

func (r *mongoExchangeProfileRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoExchangeProfileRepository) Create(ctx context.Context, profile *model.ExchangeProfile) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	profile.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to create exchange profile: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		profile.ID = oid.Hex()
	}
	return nil
}

func (r *mongoExchangeProfileRepository) FindByID(ctx context.Context, id string) (*model.ExchangeProfile, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", profileerrors.ErrInvalidID, id)
	}

	var profile model.ExchangeProfile
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", profileerrors.ErrExchangeProfileNotFound, id)
		}
		return nil, fmt.Errorf("failed to find exchange profile: %w", err)
	}
	return &profile, nil
}

func (r *mongoExchangeProfileRepository) FindByUserID(ctx context.Context, userID string) (*model.ExchangeProfile, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var profile model.ExchangeProfile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", profileerrors.ErrExchangeProfileNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find exchange profile by user: %w", err)
	}
	return &profile, nil
}

func (r *mongoExchangeProfileRepository) Update(ctx context.Context, id string, profile *model.ExchangeProfile) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", profileerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"facility_name":       profile.FacilityName,
			"address":             profile.Address,
			"city":                profile.City,
			"postal_code":         profile.PostalCode,
			"contact_person_name": profile.ContactPersonName,
			"phone":               profile.Phone,
			"email":               profile.Email,
			"age_groups":          profile.AgeGroups,
			"opening_days":        profile.OpeningDays,
			"opening_time_from":   profile.OpeningTimeFrom,
			"opening_time_to":     profile.OpeningTimeTo,
			"opening_hours":       profile.OpeningHours,
			"latitude":            profile.Latitude,
			"longitude":           profile.Longitude,
			"bio":                 profile.Bio,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update exchange profile: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", profileerrors.ErrExchangeProfileNotFound, id)
	}
	return nil
}
