package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "washbook/internal/bookings/errors"
	"washbook/pkg/config"
	mongotx "washbook/pkg/db/mongo"
	"washbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Booking_locks"
)

// BookingLockRepository stores advisory lock documents keyed by
// provider:service:date.
type BookingLockRepository interface {
	TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, owner string) error
	Fence(ctx context.Context, key, owner string, ttl time.Duration) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// TryAcquire inserts the lock document. A held lock whose expiry has passed
// is taken over in place; the TTL index only reaps abandoned documents
// eventually.
func (r *mongoBookingLockRepository) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := &model.BookingLock{
		ID:        key,
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("failed to insert booking lock: %w", err)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": key, "expires_at": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"owner": owner, "expires_at": lock.ExpiresAt, "created_at": now}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to take over expired booking lock: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

// Fence renews the lock for owner. Run inside the booking transaction it also
// writes the lock document, so a concurrent takeover conflicts with the
// transaction instead of slipping past it.
func (r *mongoBookingLockRepository) Fence(ctx context.Context, key, owner string, ttl time.Duration) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": key, "owner": owner},
		bson.M{"$set": bson.M{"expires_at": time.Now().UTC().Add(ttl)}},
	)
	if err != nil {
		return fmt.Errorf("failed to fence booking lock: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrLockLost, key)
	}
	return nil
}

// Release deletes the lock only if owner still holds it.
func (r *mongoBookingLockRepository) Release(ctx context.Context, key, owner string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}
