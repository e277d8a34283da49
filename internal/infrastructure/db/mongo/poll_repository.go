package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pollwise/poll-api/internal/core/domain"
)

const (
	collectionPolls     = "polls"
	collectionTemplates = "poll_templates"
)

// PollRepository persists poll aggregates. The domain struct carries bson
// tags, so documents map without an intermediate shape.
type PollRepository struct {
	col *mongo.Collection
}

func NewPollRepository(db *mongo.Database) *PollRepository {
	return &PollRepository{col: db.Collection(collectionPolls)}
}

func (r *PollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, poll); err != nil {
		return fmt.Errorf("insert poll: %w", err)
	}
	return nil
}

func (r *PollRepository) FindByID(ctx context.Context, id string) (*domain.Poll, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var poll domain.Poll
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&poll); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("find poll: %w", err)
	}
	return &poll, nil
}

func (r *PollRepository) Update(ctx context.Context, poll *domain.Poll) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": poll.ID}, poll)
	if err != nil {
		return fmt.Errorf("update poll: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

func (r *PollRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

// EnsureIndexes creates the lookup index for the owner-scoped queries.
func (r *PollRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner.id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// TemplateRepository serves read-only poll scaffolds out of their own
// collection. Templates are seeded externally; this side never writes.
type TemplateRepository struct {
	col *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	return &TemplateRepository{col: db.Collection(collectionTemplates)}
}

func (r *TemplateRepository) List(ctx context.Context) ([]domain.PollTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.PollTemplate
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	return out, nil
}

func (r *TemplateRepository) FindByName(ctx context.Context, name string) (*domain.PollTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var tpl domain.PollTemplate
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&tpl); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("find template: %w", err)
	}
	return &tpl, nil
}
