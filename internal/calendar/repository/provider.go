package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	calendarerrors "washbook/internal/calendar/errors"
	"washbook/pkg/config"
	mongotx "washbook/pkg/db/mongo"
	"washbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Providers"
)

type ProviderRepository interface {
	FindByID(ctx context.Context, id string) (*model.Provider, error)
	Upsert(ctx context.Context, profile model.ProviderProfile, defaults *model.Provider) (*model.Provider, error)
	UpdateWeeklyHours(ctx context.Context, id string, expectedVersion int64, weekly []model.WorkingHours) (*model.Provider, error)
	SetOverride(ctx context.Context, id, date string, override model.HoursOverride) (*model.Provider, error)
	DeleteOverride(ctx context.Context, id, date string) (*model.Provider, error)
}

type mongoProviderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoProviderRepository(cfg *config.Config) ProviderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProviderRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *mongoProviderRepository) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var provider model.Provider
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&provider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, calendarerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find provider: %w", err)
	}
	return &provider, nil
}

// Upsert applies the catalog-owned profile fields. Calendar fields come from
// defaults and are written only when the provider is created.
func (r *mongoProviderRepository) Upsert(ctx context.Context, profile model.ProviderProfile, defaults *model.Provider) (*model.Provider, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ts := now()
	set := bson.M{
		"name":       profile.Name,
		"updated_at": ts,
	}
	setOnInsert := bson.M{
		"weekly_hours": defaults.WeeklyHours,
		"version":      int64(0),
		"created_at":   ts,
	}
	if profile.TimeZone != "" {
		set["time_zone"] = profile.TimeZone
	} else {
		setOnInsert["time_zone"] = defaults.TimeZone
	}
	if profile.AutoAccept != nil {
		set["auto_accept"] = *profile.AutoAccept
	} else {
		setOnInsert["auto_accept"] = defaults.AutoAccept
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var provider model.Provider
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": profile.ID},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		opts,
	).Decode(&provider)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert provider: %w", err)
	}
	return &provider, nil
}

// UpdateWeeklyHours replaces the week only if the stored version still
// matches expectedVersion.
func (r *mongoProviderRepository) UpdateWeeklyHours(ctx context.Context, id string, expectedVersion int64, weekly []model.WorkingHours) (*model.Provider, error) {
	filter := bson.M{"_id": id, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{"weekly_hours": weekly, "updated_at": now()},
		"$inc": bson.M{"version": 1},
	}
	return r.versionedUpdate(ctx, id, filter, update, calendarerrors.ErrVersionConflict)
}

func (r *mongoProviderRepository) SetOverride(ctx context.Context, id, date string, override model.HoursOverride) (*model.Provider, error) {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{"overrides." + date: override, "updated_at": now()},
		"$inc": bson.M{"version": 1},
	}
	return r.versionedUpdate(ctx, id, filter, update, nil)
}

func (r *mongoProviderRepository) DeleteOverride(ctx context.Context, id, date string) (*model.Provider, error) {
	field := "overrides." + date
	filter := bson.M{"_id": id, field: bson.M{"$exists": true}}
	update := bson.M{
		"$unset": bson.M{field: ""},
		"$set":   bson.M{"updated_at": now()},
		"$inc":   bson.M{"version": 1},
	}
	return r.versionedUpdate(ctx, id, filter, update, calendarerrors.ErrOverrideNotFound)
}

// versionedUpdate applies update and returns the new document. When the
// filter misses, a provider that exists yields onMiss, otherwise ErrNotFound.
func (r *mongoProviderRepository) versionedUpdate(ctx context.Context, id string, filter, update bson.M, onMiss error) (*model.Provider, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	var provider model.Provider
	err := r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&provider)
	if err == nil {
		return &provider, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update provider calendar: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to check provider existence: %w", err)
	}
	if count == 0 || onMiss == nil {
		return nil, calendarerrors.ErrNotFound
	}
	return nil, onMiss
}
