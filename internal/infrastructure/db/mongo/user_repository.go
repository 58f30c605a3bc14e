package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

const (
	usersCollection = "users"
	userSequence    = "users"
)

// caseInsensitive is the collation used for role matching.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	coll     *mongo.Collection
	sequence *Sequence
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		coll:     db.Collection(usersCollection),
		sequence: NewSequence(db),
	}
}

type mongoUser struct {
	ID           int64  `bson:"_id"`
	Username     string `bson:"username"`
	FirstName    string `bson:"first_name"`
	LastName     string `bson:"last_name"`
	PasswordHash string `bson:"password_hash"`
	Enabled      bool   `bson:"enabled"`
	IsDeleted    bool   `bson:"is_deleted"`
	Role         string `bson:"role"`
	Gender       string `bson:"gender,omitempty"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func toDoc(u *domain.User) mongoUser {
	return mongoUser{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Enabled:      u.Enabled,
		IsDeleted:    u.IsDeleted,
		Role:         u.Role.Description,
		Gender:       string(u.Gender),
		CreatedAt:    u.CreatedAt.Unix(),
		UpdatedAt:    u.UpdatedAt.Unix(),
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID,
		Username:     mu.Username,
		FirstName:    mu.FirstName,
		LastName:     mu.LastName,
		PasswordHash: mu.PasswordHash,
		Enabled:      mu.Enabled,
		IsDeleted:    mu.IsDeleted,
		Role:         domain.ParseRole(mu.Role),
		Gender:       domain.Gender(mu.Gender),
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

// Save inserts a new user (allocating the next id) when user.ID is zero and
// replaces the existing row otherwise. A clash with another active username
// surfaces as domain.ErrUserExists.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	saved := *user
	if saved.ID == 0 {
		id, err := r.sequence.Next(ctx, userSequence)
		if err != nil {
			return nil, fmt.Errorf("insert user: %w", err)
		}
		saved.ID = id

		if _, err := r.coll.InsertOne(ctx, toDoc(&saved)); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrUserExists
			}
			return nil, fmt.Errorf("insert user: %w", err)
		}
		return &saved, nil
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": saved.ID}, toDoc(&saved))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return &saved, nil
}

func (r *UserRepository) FindActiveByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	err := r.coll.FindOne(ctx, bson.M{"username": username, "is_deleted": false}).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// ListActive returns active users sorted by first name, descending.
func (r *UserRepository) ListActive(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "first_name", Value: -1}})
	return r.find(ctx, bson.M{"is_deleted": false}, opts)
}

// ListActiveByRole matches role under a case-insensitive collation.
func (r *UserRepository) ListActiveByRole(ctx context.Context, role string) ([]*domain.User, error) {
	opts := options.Find().SetCollation(caseInsensitive)
	return r.find(ctx, bson.M{"role": role, "is_deleted": false}, opts)
}

func (r *UserRepository) ListDeleted(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	return r.find(ctx, bson.M{"is_deleted": true}, opts)
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}

// EnsureIndexes creates the users indexes. Username uniqueness only covers
// active rows, which is what lets a deleted user's name be reused.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetName("uniq_active_username").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_deleted": false}),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "is_deleted", Value: 1}},
			Options: options.Index().SetCollation(caseInsensitive),
		},
		{Keys: bson.D{{Key: "is_deleted", Value: 1}, {Key: "first_name", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
