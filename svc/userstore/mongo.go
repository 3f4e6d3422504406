package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/authsvc/pkg/auth"
	mongox "github.com/dmitrymomot/authsvc/pkg/mongo"
)

// UsersCollection is the collection MongoStore reads and writes.
const UsersCollection = "users"

// userDocument is the stored shape of an account. The id is kept as its
// canonical string form so documents stay readable in the shell.
type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Password     string    `bson:"password,omitempty"`
	Role         string    `bson:"role"`
	Avatar       string    `bson:"avatar"`
	Location     string    `bson:"location"`
	AuthProvider string    `bson:"authProvider"`
	GoogleID     string    `bson:"googleId,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func toDocument(u *auth.User) userDocument {
	return userDocument{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		Password:     u.PasswordHash,
		Role:         string(u.Role),
		Avatar:       u.Avatar,
		Location:     u.Location,
		AuthProvider: string(u.AuthProvider),
		GoogleID:     u.GoogleID,
		CreatedAt:    u.CreatedAt,
	}
}

func (d userDocument) toUser() (*auth.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("mongo: parse user id %q: %w", d.ID, err)
	}
	return &auth.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		AuthProvider: auth.Provider(d.AuthProvider),
		GoogleID:     d.GoogleID,
		Avatar:       d.Avatar,
		Location:     d.Location,
		Role:         auth.Role(d.Role),
		CreatedAt:    d.CreatedAt.UTC(),
	}, nil
}

// MongoStore stores users in a MongoDB collection with a unique email index.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique email index and the creation-order index.
// It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_email_key"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("users_created_at_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo: create user indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *MongoStore) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (*auth.User, error) {
	var doc userDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if mongox.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("mongo: find user: %w", err)
	}
	return doc.toUser()
}

func (s *MongoStore) CreateUser(ctx context.Context, user *auth.User) error {
	withDefaults(user)

	if _, err := s.coll.InsertOne(ctx, toDocument(user)); err != nil {
		if mongox.IsDuplicateKeyError(err) {
			return errors.Join(auth.ErrEmailAlreadyExists, err)
		}
		return fmt.Errorf("mongo: insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) UpdateUser(ctx context.Context, user *auth.User) error {
	role := user.Role
	if role == "" {
		role = auth.DefaultRole
	}

	set := bson.D{
		{Key: "name", Value: user.Name},
		{Key: "authProvider", Value: string(user.AuthProvider)},
		{Key: "avatar", Value: user.Avatar},
		{Key: "location", Value: user.Location},
		{Key: "role", Value: string(role)},
	}
	unset := bson.D{}
	if user.PasswordHash != "" {
		set = append(set, bson.E{Key: "password", Value: user.PasswordHash})
	} else {
		unset = append(unset, bson.E{Key: "password", Value: ""})
	}
	if user.GoogleID != "" {
		set = append(set, bson.E{Key: "googleId", Value: user.GoogleID})
	} else {
		unset = append(unset, bson.E{Key: "googleId", Value: ""})
	}

	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	res, err := s.coll.UpdateByID(ctx, user.ID.String(), update)
	if err != nil {
		return fmt.Errorf("mongo: update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// ListUsers projects the password field away.
func (s *MongoStore) ListUsers(ctx context.Context) ([]*auth.User, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "password", Value: 0}}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list users: %w", err)
	}

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode users: %w", err)
	}

	users := make([]*auth.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

var _ auth.UserStorage = (*MongoStore)(nil)
