package comments

import (
	"context"
	"fmt"
	"time"

	"github.com/screenbase/screenbase/pkg/observability/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the comments collection name.
const Collection = "comments"

// LeaderboardLimit caps the most-active-commenters report.
const LeaderboardLimit = 20

// Comment is a viewer comment attached to a movie. The author email is a
// weak reference to a user record; it carries no ownership of the user's
// lifecycle, but comment updates and deletes require it to match.
type Comment struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	MovieID primitive.ObjectID `bson:"movie_id" json:"movie_id"`
	Name    string             `bson:"name" json:"name"`
	Email   string             `bson:"email" json:"email"`
	Text    string             `bson:"text" json:"text"`
	Date    time.Time          `bson:"date" json:"date"`
}

// Author identifies the acting user for comment writes.
type Author struct {
	Name  string
	Email string
}

// CommenterReport is one row of the most-active-commenters leaderboard.
type CommenterReport struct {
	Email string `bson:"_id" json:"email"`
	Count int64  `bson:"count" json:"count"`
}

// Store is the subset of store operations the comment repository composes.
type Store interface {
	InsertOne(ctx context.Context, collection string, doc interface{}) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, collection string, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, filter interface{}) (*mongo.DeleteResult, error)
	Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline, results interface{}) error
	EnsureIndexes(ctx context.Context, collection string, models []mongo.IndexModel) error
}

// Repository manages comment documents.
type Repository struct {
	store  Store
	logger logger.Logger
}

// NewRepository creates a comment repository on the given store.
func NewRepository(store Store, log logger.Logger) *Repository {
	return &Repository{store: store, logger: log}
}

// EnsureIndexes creates the index backing the correlated comment lookup.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "movie_id", Value: 1}, {Key: "date", Value: -1}}},
	}
	return r.store.EnsureIndexes(ctx, Collection, models)
}

// Add inserts a new comment for a movie and returns the inserted id.
// The insert is unconditional; referential integrity of movie_id is the
// caller's concern.
func (r *Repository) Add(ctx context.Context, movieID string, author Author, text string, date time.Time) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(movieID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid movie id %q: %w", movieID, err)
	}

	doc := Comment{
		MovieID: oid,
		Name:    author.Name,
		Email:   author.Email,
		Text:    text,
		Date:    date,
	}
	res, err := r.store.InsertOne(ctx, Collection, doc)
	if err != nil {
		r.logger.WithContext(ctx).Error("unable to post comment", "movie_id", movieID, "error", err)
		return primitive.NilObjectID, fmt.Errorf("unable to post comment: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// Update rewrites the text and date of a comment, but only when the comment
// id and the author email both match. A return of zero means either the
// comment does not exist or the email does not own it; the two cases are
// indistinguishable by design.
func (r *Repository) Update(ctx context.Context, commentID, authorEmail, text string, date time.Time) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return 0, fmt.Errorf("invalid comment id %q: %w", commentID, err)
	}

	filter := bson.M{"_id": oid, "email": authorEmail}
	update := bson.M{"$set": bson.M{"text": text, "date": date}}
	res, err := r.store.UpdateOne(ctx, Collection, filter, update)
	if err != nil {
		r.logger.WithContext(ctx).Error("unable to update comment", "comment_id", commentID, "error", err)
		return 0, fmt.Errorf("unable to update comment: %w", err)
	}
	return res.ModifiedCount, nil
}

// Delete removes a comment under the same id+email ownership rule as Update.
func (r *Repository) Delete(ctx context.Context, commentID, authorEmail string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return 0, fmt.Errorf("invalid comment id %q: %w", commentID, err)
	}

	res, err := r.store.DeleteOne(ctx, Collection, bson.M{"_id": oid, "email": authorEmail})
	if err != nil {
		r.logger.WithContext(ctx).Error("unable to delete comment", "comment_id", commentID, "error", err)
		return 0, fmt.Errorf("unable to delete comment: %w", err)
	}
	return res.DeletedCount, nil
}

// MostActiveCommenters groups all comments by author email and returns the
// top twenty commenters by volume. Ties break by ascending email so the
// leaderboard is stable across runs. The aggregation runs under the
// collection's ambient read concern; this is a reporting query, not a
// correctness-critical path.
func (r *Repository) MostActiveCommenters(ctx context.Context) ([]CommenterReport, error) {
	var reports []CommenterReport
	if err := r.store.Aggregate(ctx, Collection, leaderboardPipeline(), &reports); err != nil {
		r.logger.WithContext(ctx).Error("unable to retrieve most active commenters", "error", err)
		return nil, fmt.Errorf("unable to retrieve most active commenters: %w", err)
	}
	if reports == nil {
		reports = []CommenterReport{}
	}
	return reports, nil
}

func leaderboardPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$email"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$limit", Value: LeaderboardLimit}},
	}
}
