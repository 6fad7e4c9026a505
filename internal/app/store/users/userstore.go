package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/crewhub/internal/app/system/normalize"
	"github.com/dalemusser/crewhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when creating a user whose email
	// already has an account.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "admin"|"member"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing fields. The caller is
// responsible for hashing the password.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)

	switch u.Role {
	case models.RoleAdmin, models.RoleMember:
	default:
		return models.User{}, errBadRole
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// SetPasswordHash replaces a user's password hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}})
	return err
}

// DeleteByMemberID removes the account provisioned for a member, if
// any. Used when a member is relieved.
func (s *Store) DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"member_id": memberID, "role": models.RoleMember})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureAdmin creates the bootstrap admin account if no user has that
// email yet. Existing accounts are left untouched.
func (s *Store) EnsureAdmin(ctx context.Context, email, fullName, passwordHash string) error {
	email = normalize.Email(email)
	err := s.c.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return nil
	}
	if err != mongo.ErrNoDocuments {
		return err
	}
	_, err = s.Create(ctx, models.User{
		Email:         email,
		FullName:      fullName,
		PasswordHash:  passwordHash,
		Role:          models.RoleAdmin,
		RequiresLogin: true,
	})
	if errors.Is(err, ErrDuplicateEmail) {
		// Lost a race with another instance; the account exists.
		return nil
	}
	return err
}
