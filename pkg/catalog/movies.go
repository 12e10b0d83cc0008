package catalog

import (
	"context"
	"fmt"

	"github.com/screenbase/screenbase/pkg/comments"
	"github.com/screenbase/screenbase/pkg/observability/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the movies collection name.
const Collection = "movies"

// Store is the subset of store operations the movie repository composes.
type Store interface {
	Find(ctx context.Context, collection string, filter interface{}, opts *options.FindOptions, results interface{}) error
	CountDocuments(ctx context.Context, collection string, filter interface{}) (int64, error)
	Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline, results interface{}) error
	EnsureIndexes(ctx context.Context, collection string, models []mongo.IndexModel) error
}

// MovieRepository reads the movie catalog. It never writes movies.
type MovieRepository struct {
	store  Store
	logger logger.Logger
}

// NewMovieRepository creates a movie repository on the given store.
func NewMovieRepository(store Store, log logger.Logger) *MovieRepository {
	return &MovieRepository{store: store, logger: log}
}

// EnsureIndexes creates the text index backing TextIntent searches.
func (r *MovieRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "plot", Value: "text"},
		}},
	}
	return r.store.EnsureIndexes(ctx, Collection, models)
}

// SearchResult is one page of movies plus the total match count. Total is
// zero on every page but the first; see Page.CountTotal.
type SearchResult struct {
	Movies []Movie `json:"movies"`
	Total  int64   `json:"total"`
}

// Search runs the filter's resolved intent as a paginated find. A store
// failure is logged and yields an empty result with a zero total instead of
// an error; callers cannot distinguish "no matches" from "query failed"
// through the return value, which mirrors the contract this layer has
// always had.
func (r *MovieRepository) Search(ctx context.Context, filters Filters, page Page) SearchResult {
	spec := BuildQuerySpec(filters.Intent())
	page = page.Normalize()

	opts := options.Find().
		SetSort(spec.Sort).
		SetSkip(page.Skip()).
		SetLimit(page.Limit())
	if len(spec.Projection) > 0 {
		opts.SetProjection(spec.Projection)
	}

	movies := []Movie{}
	if err := r.store.Find(ctx, Collection, spec.Filter, opts, &movies); err != nil {
		r.logger.WithContext(ctx).Error("unable to issue find command", "error", err)
		return SearchResult{Movies: []Movie{}}
	}

	var total int64
	if page.CountTotal() {
		n, err := r.store.CountDocuments(ctx, Collection, spec.Filter)
		if err != nil {
			r.logger.WithContext(ctx).Error("unable to count matching movies", "error", err)
			return SearchResult{Movies: []Movie{}}
		}
		total = n
	}

	return SearchResult{Movies: movies, Total: total}
}

// ByCountry returns a title-only projection of movies produced in any of
// the given countries. A store failure is logged and yields an empty slice.
func (r *MovieRepository) ByCountry(ctx context.Context, countries []string) []MovieSummary {
	opts := options.Find().SetProjection(bson.M{"title": 1})
	out := []MovieSummary{}
	filter := bson.M{"countries": bson.M{"$in": countries}}
	if err := r.store.Find(ctx, Collection, filter, opts, &out); err != nil {
		r.logger.WithContext(ctx).Error("unable to issue find command", "error", err)
		return []MovieSummary{}
	}
	return out
}

// GetByID fetches one movie with its comments embedded, most recent comment
// first. The embedding is a correlated $lookup sub-pipeline so ordering
// happens in the store, not here. A miss — including a malformed id — is a
// normal outcome and returns nil without an error.
func (r *MovieRepository) GetByID(ctx context.Context, id string) (*Movie, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var out []Movie
	if err := r.store.Aggregate(ctx, Collection, embedCommentsPipeline(oid), &out); err != nil {
		r.logger.WithContext(ctx).Error("unable to fetch movie", "movie_id", id, "error", err)
		return nil, fmt.Errorf("fetching movie %s: %w", id, err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	movie := out[0]
	if movie.Comments == nil {
		movie.Comments = []comments.Comment{}
	}
	return &movie, nil
}

// embedCommentsPipeline matches a single movie and attaches its comments
// sorted by date descending.
func embedCommentsPipeline(id primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: comments.Collection},
			{Key: "let", Value: bson.D{{Key: "id", Value: "$_id"}}},
			{Key: "pipeline", Value: mongo.Pipeline{
				{{Key: "$match", Value: bson.D{
					{Key: "$expr", Value: bson.D{
						{Key: "$eq", Value: bson.A{"$movie_id", "$$id"}},
					}},
				}}},
				{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}}}},
			}},
			{Key: "as", Value: "comments"},
		}}},
	}
}
