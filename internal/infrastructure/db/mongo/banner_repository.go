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

const collectionBanners = "banners"

// BannerRepository implements ports.BannerRepository using MongoDB.
type BannerRepository struct {
	col *mongo.Collection
}

func NewBannerRepository(db *mongo.Database) *BannerRepository {
	return &BannerRepository{col: db.Collection(collectionBanners)}
}

// Create inserts a new banner document.
func (r *BannerRepository) Create(ctx context.Context, b *domain.Banner) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, b)
	return err
}

// FindByID retrieves a banner by id.
func (r *BannerRepository) FindByID(ctx context.Context, id string) (*domain.Banner, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Banner
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBannerNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListByPlacement returns the banners of placement ordered by position.
func (r *BannerRepository) ListByPlacement(ctx context.Context, placement string) ([]*domain.Banner, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"placement_key": placement}, opts)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer cur.Close(ctx)

	banners := make([]*domain.Banner, 0)
	if err := cur.All(ctx, &banners); err != nil {
		return nil, fmt.Errorf("decode banners: %w", err)
	}
	return banners, nil
}

// BulkReposition writes all positions in one ordered bulk write. Every update
// is filtered by placement as well as id, so a banner that moved or vanished
// is not touched and the call reports domain.ErrStateConflict.
func (r *BannerRepository) BulkReposition(ctx context.Context, placement string, positions []domain.Position) error {
	if len(positions) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(positions))
	for _, p := range positions {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": p.ID, "placement_key": placement}).
			SetUpdate(bson.M{"$set": bson.M{"position": p.Position}}))
	}

	res, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("bulk reposition: %w", err)
	}
	if res.MatchedCount != int64(len(positions)) {
		return fmt.Errorf("bulk reposition %s: %w: matched %d of %d", placement, domain.ErrStateConflict, res.MatchedCount, len(positions))
	}
	return nil
}

// Delete removes a banner by id.
func (r *BannerRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBannerNotFound
	}
	return nil
}

// EnsureIndexes creates the placement ordering index.
func (r *BannerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "placement_key", Value: 1}, {Key: "position", Value: 1}},
	})
	return err
}
