package repository

import (
	"context"
	"time"
	bookingserrors "voyago/internal/bookings/errors"
	"voyago/pkg/config"
	"voyago/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const lockCollectionName = "Entity_locks"

// TripLockID returns the lock document ID for a trip.
func TripLockID(tripID string) string {
	return "trip:" + tripID
}

// BookingLockID returns the lock document ID for a booking.
func BookingLockID(bookingID string) string {
	return "booking:" + bookingID
}

// EntityLockRepository provides exclusive advisory locks over trips and
// bookings. A lock is a document insert on a unique _id; the duplicate key
// error signals that another worker holds it. A TTL index on expires_at
// reclaims locks abandoned by crashed workers.
type EntityLockRepository interface {
	Acquire(ctx context.Context, lockID string) (*model.EntityLock, error)
	Release(ctx context.Context, lockID string) error
}

type mongoEntityLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewEntityLockRepository(cfg *config.Config) EntityLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEntityLockRepository{
		cfg:        cfg,
		collection: db.Collection(lockCollectionName),
	}
}

// Acquire blocks until the lock is obtained or the wait timeout elapses.
// Contention is resolved by polling: each attempt is a single InsertOne,
// and a duplicate key error means another holder is still active.
func (r *mongoEntityLockRepository) Acquire(ctx context.Context, lockID string) (*model.EntityLock, error) {
	deadline := time.Now().Add(r.cfg.LockWaitTimeout)

	for {
		lock := &model.EntityLock{
			ID:        lockID,
			ExpiresAt: time.Now().Add(r.cfg.LockTTL),
			CreatedAt: time.Now(),
		}

		_, err := r.collection.InsertOne(ctx, lock)
		if err == nil {
			return lock, nil
		}

		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}

		if time.Now().After(deadline) {
			return nil, bookingserrors.ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.cfg.LockRetryInterval):
		}
	}
}

// Release removes the lock. Releasing a lock that already expired and was
// reclaimed is a no-op.
func (r *mongoEntityLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
