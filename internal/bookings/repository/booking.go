package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "washbook/internal/bookings/errors"
	"washbook/pkg/config"
	mongotx "washbook/pkg/db/mongo"
	"washbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

// BookingRepository is the booking ledger. Date range arguments are
// provider-local YYYY-MM-DD strings; an empty bound is open.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	CountOverlapping(ctx context.Context, providerID, serviceID string, start, end time.Time, excludeID string) (int64, error)
	FindActiveInRange(ctx context.Context, providerID, serviceID string, start, end time.Time) ([]*model.Booking, error)
	UpdateSlot(ctx context.Context, id string, date string, start, end time.Time) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error)
	Cancel(ctx context.Context, id string, from model.BookingStatus, reason string, at time.Time) (*model.Booking, error)
	FindByProvider(ctx context.Context, providerID, startDate, endDate string, limit int, offset int64) ([]*model.Booking, error)
	CountByProvider(ctx context.Context, providerID, startDate, endDate string) (int64, error)
	AggregateStats(ctx context.Context, providerID, startDate, endDate string) ([]model.StatusBucket, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func activeStatuses() bson.M {
	return bson.M{"$in": model.ActiveStatuses}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ts := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = ts
	booking.UpdatedAt = ts
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// CountOverlapping counts capacity-holding bookings whose interval
// intersects [start, end). excludeID leaves one booking out, for reschedules.
func (r *mongoBookingRepository) CountOverlapping(ctx context.Context, providerID, serviceID string, start, end time.Time, excludeID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := overlapFilter(providerID, serviceID, start, end)
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) FindActiveInRange(ctx context.Context, providerID, serviceID string, start, end time.Time) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, overlapFilter(providerID, serviceID, start, end), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func overlapFilter(providerID, serviceID string, start, end time.Time) bson.M {
	return bson.M{
		"provider_id": providerID,
		"service_id":  serviceID,
		"status":      activeStatuses(),
		"start_time":  bson.M{"$lt": end},
		"end_time":    bson.M{"$gt": start},
	}
}

// UpdateSlot moves an active booking to a new interval in one write.
func (r *mongoBookingRepository) UpdateSlot(ctx context.Context, id string, date string, start, end time.Time) (*model.Booking, error) {
	update := bson.M{"$set": bson.M{
		"booking_date": date,
		"start_time":   start,
		"end_time":     end,
		"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
	}}
	return r.guardedUpdate(ctx, id, bson.M{"status": activeStatuses()}, update)
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	update := bson.M{"$set": bson.M{
		"status":     to,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	return r.guardedUpdate(ctx, id, bson.M{"status": from}, update)
}

func (r *mongoBookingRepository) Cancel(ctx context.Context, id string, from model.BookingStatus, reason string, at time.Time) (*model.Booking, error) {
	update := bson.M{"$set": bson.M{
		"status":              model.StatusCancelled,
		"cancellation_reason": reason,
		"cancelled_at":        at,
		"updated_at":          at,
	}}
	return r.guardedUpdate(ctx, id, bson.M{"status": from}, update)
}

// guardedUpdate applies update only while the booking matches guard.
// A miss on an existing booking is ErrStatusChanged.
func (r *mongoBookingRepository) guardedUpdate(ctx context.Context, id string, guard bson.M, update bson.M) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	for k, v := range guard {
		filter[k] = v
	}

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to check booking existence: %w", err)
	}
	if count == 0 {
		return nil, bookingserrors.ErrNotFound
	}
	return nil, bookingserrors.ErrStatusChanged
}

func (r *mongoBookingRepository) FindByProvider(ctx context.Context, providerID, startDate, endDate string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, providerFilter(providerID, startDate, endDate), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountByProvider(ctx context.Context, providerID, startDate, endDate string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, providerFilter(providerID, startDate, endDate))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// AggregateStats groups the provider's bookings in the date range by status
// and currency, summing the price snapshot.
func (r *mongoBookingRepository) AggregateStats(ctx context.Context, providerID, startDate, endDate string) ([]model.StatusBucket, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: providerFilter(providerID, startDate, endDate)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "status", Value: "$status"},
				{Key: "currency", Value: "$currency"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "price_cents", Value: bson.D{{Key: "$sum", Value: "$price_cents"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "status", Value: "$_id.status"},
			{Key: "currency", Value: "$_id.currency"},
			{Key: "count", Value: 1},
			{Key: "price_cents", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "status", Value: 1}, {Key: "currency", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking stats: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []model.StatusBucket
	if err = cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode booking stats: %w", err)
	}
	return buckets, nil
}

func providerFilter(providerID, startDate, endDate string) bson.M {
	filter := bson.M{"provider_id": providerID}
	dateRange := bson.M{}
	if startDate != "" {
		dateRange["$gte"] = startDate
	}
	if endDate != "" {
		dateRange["$lte"] = endDate
	}
	if len(dateRange) > 0 {
		filter["booking_date"] = dateRange
	}
	return filter
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
