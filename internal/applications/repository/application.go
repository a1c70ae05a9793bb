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

	applicationerrors "kitapool/internal/applications/errors"
	"kitapool/pkg/config"
	mongotx "kitapool/pkg/db/mongo"
	"kitapool/pkg/model"
)

const ApplicationCollection = "request_applications"

// Decision carries the fields written when a facility decides on an
// application.
type Decision struct {
	Status              string
	DecisionAt          time.Time
	DecisionMessage     string
	ExchangeSharedPhone string
	ExchangeSharedEmail string
}

type RequestApplicationRepository interface {
	Create(ctx context.Context, app *model.RequestApplication) error
	FindByID(ctx context.Context, id string) (*model.RequestApplication, error)
	FindByRequestID(ctx context.Context, requestID string) ([]*model.RequestApplication, error)
	FindByRequestIDs(ctx context.Context, requestIDs []string) ([]*model.RequestApplication, error)
	FindByProviderAndRequest(ctx context.Context, providerUserID, requestID string) (*model.RequestApplication, error)
	ApplyDecision(ctx context.Context, id string, decision Decision) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoApplicationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoApplicationRepository(cfg *config.Config) RequestApplicationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoApplicationRepository{
		cfg:        cfg,
		collection: db.Collection(ApplicationCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoApplicationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoApplicationRepository) Create(ctx context.Context, app *model.RequestApplication) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	app.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, app)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		app.ID = oid.Hex()
	}
	return nil
}

func (r *mongoApplicationRepository) FindByID(ctx context.Context, id string) (*model.RequestApplication, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", applicationerrors.ErrInvalidID, id)
	}

	var app model.RequestApplication
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&app)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", applicationerrors.ErrApplicationNotFound, id)
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &app, nil
}

func (r *mongoApplicationRepository) FindByRequestID(ctx context.Context, requestID string) ([]*model.RequestApplication, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"request_id": requestID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find applications by request: %w", err)
	}
	defer cursor.Close(ctx)

	var apps []*model.RequestApplication
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}
	return apps, nil
}

func (r *mongoApplicationRepository) FindByRequestIDs(ctx context.Context, requestIDs []string) ([]*model.RequestApplication, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"request_id": bson.M{"$in": requestIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find applications by requests: %w", err)
	}
	defer cursor.Close(ctx)

	var apps []*model.RequestApplication
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}
	return apps, nil
}

// FindByProviderAndRequest returns the provider's most recent
// application on the request; there may be several because apply has
// no uniqueness guard.
func (r *mongoApplicationRepository) FindByProviderAndRequest(ctx context.Context, providerUserID, requestID string) (*model.RequestApplication, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var app model.RequestApplication
	err := r.collection.FindOne(ctx, bson.M{
		"provider_user_id": providerUserID,
		"request_id":       requestID,
	}, opts).Decode(&app)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: provider %s on request %s", applicationerrors.ErrApplicationNotFound, providerUserID, requestID)
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &app, nil
}

func (r *mongoApplicationRepository) ApplyDecision(ctx context.Context, id string, decision Decision) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", applicationerrors.ErrInvalidID, id)
	}

	set := bson.M{
		"status":      decision.Status,
		"decision_at": decision.DecisionAt,
	}
	if decision.DecisionMessage != "" {
		set["decision_message"] = decision.DecisionMessage
	}
	if decision.ExchangeSharedPhone != "" {
		set["exchange_shared_phone"] = decision.ExchangeSharedPhone
	}
	if decision.ExchangeSharedEmail != "" {
		set["exchange_shared_email"] = decision.ExchangeSharedEmail
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to apply decision: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", applicationerrors.ErrApplicationNotFound, id)
	}
	return nil
}

func (r *mongoApplicationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
