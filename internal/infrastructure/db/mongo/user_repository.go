package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pollwise/poll-api/internal/core/domain"
)

const collectionUsers = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

// mongoUser is the persisted shape of a user. The uuid acts as _id directly.
type mongoUser struct {
	ID            string    `bson:"_id"`
	Firstname     string    `bson:"firstname"`
	Lastname      string    `bson:"lastname"`
	Username      string    `bson:"username"`
	Email         string    `bson:"email"`
	PasswordHash  string    `bson:"password_hash"`
	RefreshToken  string    `bson:"refresh_token,omitempty"`
	ResetToken    string    `bson:"reset_token,omitempty"`
	Active        bool      `bson:"active"`
	Admin         bool      `bson:"admin"`
	Federated     bool      `bson:"federated"`
	ProfilePicURL string    `bson:"profile_pic_url,omitempty"`
	ProfilePicKey string    `bson:"profile_pic_key,omitempty"`
	PollsCreated  []string  `bson:"polls_created,omitempty"`
	PollsAnswered []string  `bson:"polls_answered,omitempty"`
	PollsVisited  []string  `bson:"polls_visited,omitempty"`
	RegisteredAt  time.Time `bson:"registered_at"`
	LastLoginAt   time.Time `bson:"last_login_at,omitempty"`
}

func toDoc(u *domain.User) mongoUser {
	return mongoUser{
		ID:            u.ID,
		Firstname:     u.Firstname,
		Lastname:      u.Lastname,
		Username:      u.Username,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		RefreshToken:  u.RefreshToken,
		ResetToken:    u.ResetToken,
		Active:        u.Active,
		Admin:         u.Admin,
		Federated:     u.Federated,
		ProfilePicURL: u.ProfilePicURL,
		ProfilePicKey: u.ProfilePicKey,
		PollsCreated:  u.PollsCreated,
		PollsAnswered: u.PollsAnswered,
		PollsVisited:  u.PollsVisited,
		RegisteredAt:  u.RegisteredAt,
		LastLoginAt:   u.LastLoginAt,
	}
}

func toDomain(mu mongoUser) *domain.User {
	return &domain.User{
		ID:            mu.ID,
		Firstname:     mu.Firstname,
		Lastname:      mu.Lastname,
		Username:      mu.Username,
		Email:         mu.Email,
		PasswordHash:  mu.PasswordHash,
		RefreshToken:  mu.RefreshToken,
		ResetToken:    mu.ResetToken,
		Active:        mu.Active,
		Admin:         mu.Admin,
		Federated:     mu.Federated,
		ProfilePicURL: mu.ProfilePicURL,
		ProfilePicKey: mu.ProfilePicKey,
		PollsCreated:  mu.PollsCreated,
		PollsAnswered: mu.PollsAnswered,
		PollsVisited:  mu.PollsVisited,
		RegisteredAt:  mu.RegisteredAt,
		LastLoginAt:   mu.LastLoginAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, nil)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, caseInsensitive())
}

// FindByUsernameOrEmail resolves the record a registration attempt would
// collide with. A collation applies to the whole filter, so the clauses are
// looked up separately: username exact, matching its unique index and the
// login lookup, email case-insensitive like its index.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	user, err := r.findOne(ctx, bson.M{"username": username}, nil)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"email": email}, caseInsensitive())
}

// FindByRefreshToken resolves the session holder. An empty token must never
// match: logged-out accounts store the empty string.
func (r *UserRepository) FindByRefreshToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"refresh_token": token}, nil)
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, toDoc(user))
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List returns every account except excludeID.
func (r *UserRepository) List(ctx context.Context, excludeID string) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$ne": excludeID}})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		out = append(out, *toDomain(mu))
	}
	return out, cur.Err()
}

// EnsureIndexes creates the uniqueness constraints the registration flow
// relies on. The email index is case-insensitive so Bob@x.com and bob@x.com
// collide.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetCollation(&options.Collation{Locale: "en", Strength: 2}),
		},
		{Keys: bson.D{{Key: "refresh_token", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	var err error
	if opts != nil {
		err = r.col.FindOne(ctx, filter, opts).Decode(&mu)
	} else {
		err = r.col.FindOne(ctx, filter).Decode(&mu)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomain(mu), nil
}

func caseInsensitive() *options.FindOneOptions {
	return options.FindOne().SetCollation(&options.Collation{Locale: "en", Strength: 2})
}
