package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/screenbase/screenbase/pkg/observability/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names managed by this repository.
const (
	UsersCollection    = "users"
	SessionsCollection = "sessions"
)

// Domain errors. ErrUserExists keeps the exact wording existing callers
// match on.
var (
	ErrUserExists         = errors.New("A user with the given email already exists.")
	ErrNoSuchUser         = errors.New("No user found with that email")
	ErrDeleteInconsistent = errors.New("user deletion left dangling records")
)

// User is an account record keyed by email.
type User struct {
	Email       string                 `bson:"email" json:"email"`
	Name        string                 `bson:"name" json:"name"`
	Password    string                 `bson:"password" json:"-"`
	Preferences map[string]interface{} `bson:"preferences,omitempty" json:"preferences,omitempty"`
	IsAdmin     bool                   `bson:"isAdmin,omitempty" json:"isAdmin,omitempty"`
}

// Session is the single active session for a user. Login replaces it
// wholesale; there is never more than one per email.
type Session struct {
	UserID string `bson:"user_id" json:"user_id"`
	JWT    string `bson:"jwt" json:"jwt"`
}

// Store is the subset of store operations the user repository composes.
type Store interface {
	FindOne(ctx context.Context, collection string, filter interface{}, result interface{}) error
	InsertOne(ctx context.Context, collection string, doc interface{}) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, collection string, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, filter interface{}) (*mongo.DeleteResult, error)
	EnsureIndexes(ctx context.Context, collection string, models []mongo.IndexModel) error
}

// Repository manages user and session documents.
type Repository struct {
	store  Store
	logger logger.Logger
}

// NewRepository creates a user repository on the given store.
func NewRepository(store Store, log logger.Logger) *Repository {
	return &Repository{store: store, logger: log}
}

// EnsureIndexes creates the unique email index that Add's duplicate
// detection relies on, and the session lookup index.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if err := r.store.EnsureIndexes(ctx, UsersCollection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return fmt.Errorf("ensuring users indexes: %w", err)
	}
	if err := r.store.EnsureIndexes(ctx, SessionsCollection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return fmt.Errorf("ensuring sessions indexes: %w", err)
	}
	return nil
}

// Get looks a user up by email. A miss returns nil without an error.
func (r *Repository) Get(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.store.FindOne(ctx, UsersCollection, bson.M{"email": email}, &u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user %s: %w", email, err)
	}
	return &u, nil
}

// Add inserts a new user. Inserting an email that already exists returns
// ErrUserExists; any other failure is logged and wrapped.
func (r *Repository) Add(ctx context.Context, user User) error {
	_, err := r.store.InsertOne(ctx, UsersCollection, user)
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrUserExists
	}
	r.logger.WithContext(ctx).Error("error occurred while adding new user", "email", user.Email, "error", err)
	return fmt.Errorf("adding user: %w", err)
}

// Login upserts the session for an email with a fresh token, replacing any
// prior token. One session per user, always.
func (r *Repository) Login(ctx context.Context, email, token string) error {
	_, err := r.store.UpdateOne(ctx, SessionsCollection,
		bson.M{"user_id": email},
		bson.M{"$set": bson.M{"user_id": email, "jwt": token}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		r.logger.WithContext(ctx).Error("error occurred while logging in user", "email", email, "error", err)
		return fmt.Errorf("logging in user: %w", err)
	}
	return nil
}

// Logout deletes the session for an email. Deleting a session that does
// not exist is a no-op, not an error.
func (r *Repository) Logout(ctx context.Context, email string) error {
	_, err := r.store.DeleteOne(ctx, SessionsCollection, bson.M{"user_id": email})
	if err != nil {
		r.logger.WithContext(ctx).Error("error occurred while logging out user", "email", email, "error", err)
		return fmt.Errorf("logging out user: %w", err)
	}
	return nil
}

// GetSession returns the session for an email, or nil when none exists.
func (r *Repository) GetSession(ctx context.Context, email string) (*Session, error) {
	var s Session
	err := r.store.FindOne(ctx, SessionsCollection, bson.M{"user_id": email}, &s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving session for %s: %w", email, err)
	}
	return &s, nil
}

// Delete removes a user and their session, then re-reads both to confirm
// the deletion actually took. If either record still resolves the state is
// inconsistent and ErrDeleteInconsistent is returned.
func (r *Repository) Delete(ctx context.Context, email string) error {
	if _, err := r.store.DeleteOne(ctx, UsersCollection, bson.M{"email": email}); err != nil {
		r.logger.WithContext(ctx).Error("error occurred while deleting user", "email", email, "error", err)
		return fmt.Errorf("deleting user: %w", err)
	}
	if _, err := r.store.DeleteOne(ctx, SessionsCollection, bson.M{"user_id": email}); err != nil {
		r.logger.WithContext(ctx).Error("error occurred while deleting session", "email", email, "error", err)
		return fmt.Errorf("deleting session: %w", err)
	}

	user, err := r.Get(ctx, email)
	if err != nil {
		return fmt.Errorf("verifying user deletion: %w", err)
	}
	session, err := r.GetSession(ctx, email)
	if err != nil {
		return fmt.Errorf("verifying session deletion: %w", err)
	}
	if user != nil || session != nil {
		r.logger.WithContext(ctx).Error("deletion unsuccessful", "email", email)
		return ErrDeleteInconsistent
	}
	return nil
}

// UpdatePreferences replaces a user's preference blob. The user must
// already exist; a zero-match update is reported as ErrNoSuchUser rather
// than silently ignored.
func (r *Repository) UpdatePreferences(ctx context.Context, email string, preferences map[string]interface{}) error {
	if preferences == nil {
		preferences = map[string]interface{}{}
	}
	res, err := r.store.UpdateOne(ctx, UsersCollection,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"preferences": preferences}},
	)
	if err != nil {
		r.logger.WithContext(ctx).Error("error occurred while updating preferences", "email", email, "error", err)
		return fmt.Errorf("updating preferences: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoSuchUser
	}
	return nil
}

// IsAdmin reports whether the user has the admin capability. A missing
// user is simply not an admin; only a failed read surfaces an error.
func (r *Repository) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := r.Get(ctx, email)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	return user.IsAdmin, nil
}

// MakeAdmin grants the admin capability to a user.
func (r *Repository) MakeAdmin(ctx context.Context, email string) error {
	_, err := r.store.UpdateOne(ctx, UsersCollection,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"isAdmin": true}},
	)
	if err != nil {
		r.logger.WithContext(ctx).Error("error occurred while granting admin", "email", email, "error", err)
		return fmt.Errorf("granting admin: %w", err)
	}
	return nil
}
