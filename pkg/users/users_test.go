package users

import (
	"context"
	"errors"
	"testing"

	"github.com/screenbase/screenbase/pkg/observability/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.NewZapLogger(logger.Config{Level: logger.ErrorLevel, Format: logger.JSONFormat})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

type fakeStore struct {
	findFn   func(collection string, filter, result interface{}) error
	insertFn func(collection string, doc interface{}) (*mongo.InsertOneResult, error)
	updateFn func(collection string, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	deleteFn func(collection string, filter interface{}) (*mongo.DeleteResult, error)
	ensureFn func(collection string, models []mongo.IndexModel) error
}

func (s *fakeStore) FindOne(_ context.Context, collection string, filter, result interface{}) error {
	if s.findFn == nil {
		return mongo.ErrNoDocuments
	}
	return s.findFn(collection, filter, result)
}

func (s *fakeStore) InsertOne(_ context.Context, collection string, doc interface{}) (*mongo.InsertOneResult, error) {
	if s.insertFn == nil {
		return &mongo.InsertOneResult{}, nil
	}
	return s.insertFn(collection, doc)
}

func (s *fakeStore) UpdateOne(_ context.Context, collection string, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if s.updateFn == nil {
		return &mongo.UpdateResult{MatchedCount: 1}, nil
	}
	return s.updateFn(collection, filter, update, opts...)
}

func (s *fakeStore) DeleteOne(_ context.Context, collection string, filter interface{}) (*mongo.DeleteResult, error) {
	if s.deleteFn == nil {
		return &mongo.DeleteResult{}, nil
	}
	return s.deleteFn(collection, filter)
}

func (s *fakeStore) EnsureIndexes(_ context.Context, collection string, models []mongo.IndexModel) error {
	if s.ensureFn == nil {
		return nil
	}
	return s.ensureFn(collection, models)
}

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
}

func TestGetMissReturnsNil(t *testing.T) {
	repo := NewRepository(&fakeStore{}, newTestLogger(t))

	user, err := repo.Get(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("Get returned error %v", err)
	}
	if user != nil {
		t.Fatalf("user = %+v, want nil", user)
	}
}

func TestGetHit(t *testing.T) {
	store := &fakeStore{
		findFn: func(collection string, filter, result interface{}) error {
			if collection != UsersCollection {
				t.Fatalf("collection = %q, want %q", collection, UsersCollection)
			}
			*result.(*User) = User{Email: "ada@example.com", Name: "Ada"}
			return nil
		},
	}
	repo := NewRepository(store, newTestLogger(t))

	user, err := repo.Get(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("Get returned error %v", err)
	}
	if user == nil || user.Name != "Ada" {
		t.Fatalf("user = %+v, want Ada", user)
	}
}

func TestAddDuplicateEmail(t *testing.T) {
	store := &fakeStore{
		insertFn: func(string, interface{}) (*mongo.InsertOneResult, error) {
			return nil, duplicateKeyError()
		},
	}
	repo := NewRepository(store, newTestLogger(t))

	err := repo.Add(context.Background(), User{Email: "ada@example.com"})
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
	if err.Error() != "A user with the given email already exists." {
		t.Fatalf("err text = %q, existing callers match on the exact wording", err.Error())
	}
}

func TestAddOtherFailureIsWrapped(t *testing.T) {
	store := &fakeStore{
		insertFn: func(string, interface{}) (*mongo.InsertOneResult, error) {
			return nil, errors.New("connection reset")
		},
	}
	repo := NewRepository(store, newTestLogger(t))

	err := repo.Add(context.Background(), User{Email: "ada@example.com"})
	if err == nil || errors.Is(err, ErrUserExists) {
		t.Fatalf("err = %v, want a wrapped non-duplicate error", err)
	}
}

func TestLoginUpsertsSession(t *testing.T) {
	var gotCollection string
	var gotFilter bson.M
	var gotOpts []*options.UpdateOptions
	store := &fakeStore{
		updateFn: func(collection string, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
			gotCollection = collection
			gotFilter = filter.(bson.M)
			gotOpts = opts
			return &mongo.UpdateResult{UpsertedCount: 1}, nil
		},
	}
	repo := NewRepository(store, newTestLogger(t))

	if err := repo.Login(context.Background(), "ada@example.com", "token-1"); err != nil {
		t.Fatalf("Login returned error %v", err)
	}
	if gotCollection != SessionsCollection {
		t.Fatalf("collection = %q, want %q", gotCollection, SessionsCollection)
	}
	if gotFilter["user_id"] != "ada@example.com" {
		t.Fatalf("filter = %#v, want user_id scope", gotFilter)
	}
	if len(gotOpts) != 1 || gotOpts[0].Upsert == nil || !*gotOpts[0].Upsert {
		t.Fatal("login must upsert so the first login creates the session")
	}
}

func TestLogoutMissingSessionIsNoError(t *testing.T) {
	repo := NewRepository(&fakeStore{}, newTestLogger(t))

	if err := repo.Logout(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("Logout returned error %v, want nil for a missing session", err)
	}
}

func TestGetSessionMissReturnsNil(t *testing.T) {
	repo := NewRepository(&fakeStore{}, newTestLogger(t))

	session, err := repo.GetSession(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("GetSession returned error %v", err)
	}
	if session != nil {
		t.Fatalf("session = %+v, want nil", session)
	}
}

func TestDeleteRemovesUserAndSession(t *testing.T) {
	deleted := map[string]bool{}
	store := &fakeStore{
		deleteFn: func(collection string, filter interface{}) (*mongo.DeleteResult, error) {
			deleted[collection] = true
			return &mongo.DeleteResult{DeletedCount: 1}, nil
		},
	}
	repo := NewRepository(store, newTestLogger(t))

	if err := repo.Delete(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("Delete returned error %v", err)
	}
	if !deleted[UsersCollection] || !deleted[SessionsCollection] {
		t.Fatalf("deleted = %v, want both collections", deleted)
	}
}

func TestDeleteDetectsDanglingRecords(t *testing.T) {
	store := &fakeStore{
		findFn: func(collection string, filter, result interface{}) error {
			if collection == UsersCollection {
				// The user record survived the delete.
				*result.(*User) = User{Email: "ada@example.com"}
				return nil
			}
			return mongo.ErrNoDocuments
		},
	}
	repo := NewRepository(store, newTestLogger(t))

	err := repo.Delete(context.Background(), "ada@example.com")
	if !errors.Is(err, ErrDeleteInconsistent) {
		t.Fatalf("err = %v, want ErrDeleteInconsistent", err)
	}
}

func TestUpdatePreferencesUnknownUser(t *testing.T) {
	store := &fakeStore{
		updateFn: func(string, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
			return &mongo.UpdateResult{MatchedCount: 0}, nil
		},
	}
	repo := NewRepository(store, newTestLogger(t))

	err := repo.UpdatePreferences(context.Background(), "nobody@example.com", map[string]interface{}{"lang": "it"})
	if !errors.Is(err, ErrNoSuchUser) {
		t.Fatalf("err = %v, want ErrNoSuchUser", err)
	}
}

func TestUpdatePreferencesNilBecomesEmpty(t *testing.T) {
	var gotUpdate bson.M
	store := &fakeStore{
		updateFn: func(_ string, _, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
			gotUpdate = update.(bson.M)
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	repo := NewRepository(store, newTestLogger(t))

	if err := repo.UpdatePreferences(context.Background(), "ada@example.com", nil); err != nil {
		t.Fatalf("UpdatePreferences returned error %v", err)
	}
	set := gotUpdate["$set"].(bson.M)
	prefs, ok := set["preferences"].(map[string]interface{})
	if !ok || prefs == nil || len(prefs) != 0 {
		t.Fatalf("preferences = %#v, want empty non-nil map", set["preferences"])
	}
}

func TestIsAdmin(t *testing.T) {
	store := &fakeStore{
		findFn: func(collection string, filter, result interface{}) error {
			f := filter.(bson.M)
			if f["email"] == "root@example.com" {
				*result.(*User) = User{Email: "root@example.com", IsAdmin: true}
				return nil
			}
			if f["email"] == "ada@example.com" {
				*result.(*User) = User{Email: "ada@example.com"}
				return nil
			}
			return mongo.ErrNoDocuments
		},
	}
	repo := NewRepository(store, newTestLogger(t))

	for _, tt := range []struct {
		email string
		want  bool
	}{
		{"root@example.com", true},
		{"ada@example.com", false},
		{"nobody@example.com", false},
	} {
		got, err := repo.IsAdmin(context.Background(), tt.email)
		if err != nil {
			t.Fatalf("IsAdmin(%s) returned error %v", tt.email, err)
		}
		if got != tt.want {
			t.Fatalf("IsAdmin(%s) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestMakeAdminSetsFlag(t *testing.T) {
	var gotUpdate bson.M
	store := &fakeStore{
		updateFn: func(_ string, _, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
			gotUpdate = update.(bson.M)
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	repo := NewRepository(store, newTestLogger(t))

	if err := repo.MakeAdmin(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("MakeAdmin returned error %v", err)
	}
	set := gotUpdate["$set"].(bson.M)
	if set["isAdmin"] != true {
		t.Fatalf("update = %#v, want isAdmin true", gotUpdate)
	}
}

func TestUserEnsureIndexesAreUnique(t *testing.T) {
	got := map[string][]mongo.IndexModel{}
	store := &fakeStore{
		ensureFn: func(collection string, models []mongo.IndexModel) error {
			got[collection] = models
			return nil
		},
	}
	repo := NewRepository(store, newTestLogger(t))

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("EnsureIndexes returned error %v", err)
	}
	for _, collection := range []string{UsersCollection, SessionsCollection} {
		models, ok := got[collection]
		if !ok || len(models) != 1 {
			t.Fatalf("missing index models for %s", collection)
		}
		opts := models[0].Options
		if opts == nil || opts.Unique == nil || !*opts.Unique {
			t.Fatalf("%s index must be unique", collection)
		}
	}
}
