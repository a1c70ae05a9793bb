package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	profileerrors "kitapool/internal/profiles/errors"
	"kitapool/pkg/config"
	"kitapool/pkg/model"
)

const UserSettingsCollection = "user_settings"

type UserSettingsRepository interface {
	Upsert(ctx context.Context, settings *model.UserSettings) error
	FindByUserID(ctx context.Context, userID string) (*model.UserSettings, error)
}

type mongoUserSettingsRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUserSettingsRepository(cfg *config.Config) UserSettingsRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserSettingsRepository{
		cfg:        cfg,
		collection: db.Collection(UserSettingsCollection),
	}
}

func (r *mongoUserSettingsRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

// Upsert keeps one settings document per user, guarded by the unique
// index on user_id.
func (r *mongoUserSettingsRepository) Upsert(ctx context.Context, settings *model.UserSettings) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"active_role":                settings.ActiveRole,
			"active_provider_profile_id": settings.ActiveProviderProfileID,
			"active_exchange_profile_id": settings.ActiveExchangeProfileID,
			"updated_at":                 now,
		},
		"$setOnInsert": bson.M{
			"user_id":    settings.UserID,
			"created_at": now,
		},
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": settings.UserID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user settings: %w", err)
	}
	return nil
}

func (r *mongoUserSettingsRepository) FindByUserID(ctx context.Context, userID string) (*model.UserSettings, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var settings model.UserSettings
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", profileerrors.ErrSettingsNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find user settings: %w", err)
	}
	return &settings, nil
}
