package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
	tripserrors "voyago/internal/trips/errors"
	"voyago/pkg/config"
	mongotx "voyago/pkg/db/mongo"
	"voyago/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Trips"
)

type mongoTripRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type TripRepository interface {
	Create(ctx context.Context, trip *model.Trip) error
	FindByID(ctx context.Context, id string) (*model.Trip, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, error)
	Update(ctx context.Context, id string, update *model.TripUpdate) (*model.Trip, error)
	Publish(ctx context.Context, id string) (*model.Trip, error)
	Reserve(ctx context.Context, id string, numSeats int) (bool, error)
	Release(ctx context.Context, id string, numSeats int) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoTripRepository(cfg *config.Config) TripRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTripRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoTripRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTripRepository) Create(ctx context.Context, trip *model.Trip) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	trip.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if trip.Status == "" {
		trip.Status = model.TripStatusDraft
	}
	trip.AvailableSeats = trip.MaxCapacity

	result, err := r.collection.InsertOne(ctx, trip)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		trip.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTripRepository) FindByID(ctx context.Context, id string) (*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}

	var trip model.Trip
	err = r.collection.FindOne(ctx, filter).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tripserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find trip: %w", err)
	}

	return &trip, nil
}

func (r *mongoTripRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find trips: %w", err)
	}
	defer cursor.Close(ctx)

	var trips []*model.Trip
	if err = cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}

	return trips, nil
}

func (r *mongoTripRepository) Update(ctx context.Context, id string, update *model.TripUpdate) (*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, id)
	}

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if update.Title != "" {
		set["title"] = update.Title
	}
	if update.StartDate != nil {
		set["start_date"] = *update.StartDate
	}
	if update.PricePerSeat != nil {
		set["price_per_seat"] = *update.PricePerSeat
	}
	if update.CancellationFeePercent != nil {
		set["cancellation_fee_percent"] = *update.CancellationFeePercent
	}
	if update.RefundableUntilDaysBefore != nil {
		set["refundable_until_days_before"] = *update.RefundableUntilDaysBefore
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var trip model.Trip
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tripserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}

	return &trip, nil
}

func (r *mongoTripRepository) Publish(ctx context.Context, id string) (*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"status":     model.TripStatusPublished,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var trip model.Trip
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tripserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to publish trip: %w", err)
	}

	return &trip, nil
}

// Reserve atomically decrements available_seats when enough seats remain.
// Returns false when the trip exists but does not have numSeats available.
// The filter guards the decrement so available_seats never goes below zero.
func (r *mongoTripRepository) Reserve(ctx context.Context, id string, numSeats int) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":             objectID,
		"available_seats": bson.M{"$gte": numSeats},
	}
	update := bson.M{"$inc": bson.M{"available_seats": -numSeats}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to reserve seats: %w", err)
	}

	return result.MatchedCount == 1, nil
}

// Release atomically returns seats to the pool, capped at max_capacity.
// The cap uses a pipeline update because a plain filter cannot compare
// against another field of the same document.
func (r *mongoTripRepository) Release(ctx context.Context, id string, numSeats int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, id)
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"available_seats": bson.M{
				"$min": bson.A{
					bson.M{"$add": bson.A{"$available_seats", numSeats}},
					"$max_capacity",
				},
			},
		}}},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}

	if result.MatchedCount == 0 {
		return tripserrors.ErrNotFound
	}

	return nil
}

func (r *mongoTripRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}

	return count, nil
}

func (r *mongoTripRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
