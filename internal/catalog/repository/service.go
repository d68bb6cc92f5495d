package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "washbook/internal/catalog/errors"
	"washbook/pkg/config"
	mongotx "washbook/pkg/db/mongo"
	"washbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Services"
)

// ServiceRepository is the engine's read model of the service catalog.
type ServiceRepository interface {
	FindByID(ctx context.Context, id string) (*model.Service, error)
	Upsert(ctx context.Context, svc *model.Service) error
}

type mongoServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoServiceRepository(cfg *config.Config) ServiceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoServiceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var svc model.Service
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&svc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	return &svc, nil
}

// Upsert replaces the stored service with the catalog's latest view.
func (r *mongoServiceRepository) Upsert(ctx context.Context, svc *model.Service) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	svc.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": svc.ID}, svc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert service: %w", err)
	}
	return nil
}
