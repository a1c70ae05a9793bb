package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kitapool/internal/migrations/mongo/validators"
)

var (
	ProviderProfileIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("by_user"),
		},
		{
			Keys:    bson.D{{Key: "city", Value: 1}},
			Options: options.Index().SetName("by_city"),
		},
	}

	ExchangeProfileIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("by_user"),
		},
	}

	SubstitutionRequestIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("by_user"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_status"),
		},
	}

	RequestMatchIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "provider_user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_provider_user"),
		},
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetName("by_request"),
		},
	}

	RequestApplicationIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_request"),
		},
		{
			Keys:    bson.D{{Key: "provider_user_id", Value: 1}, {Key: "request_id", Value: 1}},
			Options: options.Index().SetName("by_provider_user"),
		},
	}

	UserSettingsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("by_user"),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("Running marketplace migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"provider_profiles": {
			Indexes:   ProviderProfileIndexes,
			Validator: validators.ProviderProfileValidator,
		},
		"exchange_profiles": {
			Indexes:   ExchangeProfileIndexes,
			Validator: validators.ExchangeProfileValidator,
		},
		"substitution_requests": {
			Indexes:   SubstitutionRequestIndexes,
			Validator: validators.SubstitutionRequestValidator,
		},
		"request_matches": {
			Indexes:   RequestMatchIndexes,
			Validator: validators.RequestMatchValidator,
		},
		"request_applications": {
			Indexes:   RequestApplicationIndexes,
			Validator: validators.RequestApplicationValidator,
		},
		"user_settings": {
			Indexes:   UserSettingsIndexes,
			Validator: validators.UserSettingsValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	fmt.Printf("Collection %s already exists, updating validator\n", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		fmt.Printf("Warning: failed updating validator for %s: %v\n", name, err)
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	fmt.Printf("Ensured indexes for %s\n", name)
	return nil
}
