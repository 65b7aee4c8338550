package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hirehub/portal-core/internal/core/domain"
)

// collections maps every moderated kind to its own collection.
var collections = map[domain.EntityKind]string{
	domain.KindArticle:   "articles",
	domain.KindDirectory: "directories",
	domain.KindCompany:   "companies",
}

// EntityRepository implements ports.EntityRepository using one MongoDB
// collection per entity kind.
type EntityRepository struct {
	db *mongo.Database
}

func NewEntityRepository(db *mongo.Database) *EntityRepository {
	return &EntityRepository{db: db}
}

func (r *EntityRepository) col(kind domain.EntityKind) (*mongo.Collection, error) {
	name, ok := collections[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}
	return r.db.Collection(name), nil
}

// Create inserts a new entity document.
func (r *EntityRepository) Create(ctx context.Context, e *domain.SubmittedEntity) error {
	col, err := r.col(e.Kind)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := col.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert %s: %w", e.Kind, err)
	}
	return nil
}

// FindByID retrieves an entity of kind by id.
func (r *EntityRepository) FindByID(ctx context.Context, kind domain.EntityKind, id string) (*domain.SubmittedEntity, error) {
	col, err := r.col(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var e domain.SubmittedEntity
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListByStatus returns entities in status ordered by creation time then id,
// which keeps enumeration stable across calls.
func (r *EntityRepository) ListByStatus(ctx context.Context, kind domain.EntityKind, status domain.ModerationStatus) ([]*domain.SubmittedEntity, error) {
	col, err := r.col(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := col.Find(ctx, bson.M{"status": string(status)}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.SubmittedEntity, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return items, nil
}

// TransitionStatus is a single conditional update: it only matches while the
// entity is still in `from`, so at most one concurrent decision succeeds.
func (r *EntityRepository) TransitionStatus(
	ctx context.Context,
	kind domain.EntityKind,
	id string,
	from, to domain.ModerationStatus,
	by string,
	at time.Time,
) (*domain.SubmittedEntity, error) {
	col, err := r.col(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": string(from)}
	update := bson.M{"$set": bson.M{
		"status":     string(to),
		"decided_by": by,
		"decided_at": at.UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var e domain.SubmittedEntity
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&e)
	if err == nil {
		return &e, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("transition %s: %w", kind, err)
	}

	n, countErr := col.CountDocuments(ctx, bson.M{"_id": id})
	if countErr != nil {
		return nil, fmt.Errorf("transition %s: %w", kind, countErr)
	}
	if n == 0 {
		return nil, domain.ErrEntityNotFound
	}
	return nil, domain.ErrStateConflict
}

// EnsureIndexes creates the pending-queue index on every kind's collection.
func (r *EntityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, kind := range domain.EntityKinds {
		col, _ := r.col(kind)
		indexes := []mongo.IndexModel{
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		}
		if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("indexes %s: %w", kind, err)
		}
	}
	return nil
}
