package catalog

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Faceted search errors.
var (
	// ErrCastRequired is returned before any store call when the filter
	// carries no cast constraint: faceted search is cast-scoped only.
	ErrCastRequired = errors.New("must specify cast members to filter by")

	// ErrFilterTooBroad is returned when a facet pipeline fails to execute,
	// typically because the matched set exceeds engine limits. No partial
	// facets are ever returned.
	ErrFilterTooBroad = errors.New("results too large, be more restrictive in filter")
)

// Histogram bucket boundaries. Each list is ascending and partitions its
// numeric domain; values outside every boundary land in the "other" bucket.
var (
	runtimeBoundaries    = []int32{0, 60, 90, 120, 180}
	metacriticBoundaries = []int32{0, 50, 70, 90, 100}
)

// Bucket is one histogram bar: the inclusive lower boundary of its range
// (or the string "other") and the number of movies in it.
type Bucket struct {
	ID    interface{} `bson:"_id" json:"_id"`
	Count int64       `bson:"count" json:"count"`
}

// FacetResult combines the bucketed histograms, one page of movies and the
// total number of matches regardless of the page window.
type FacetResult struct {
	Runtime []Bucket `bson:"runtime" json:"runtime"`
	Rating  []Bucket `bson:"rating" json:"rating"`
	Movies  []Movie  `bson:"movies" json:"movies"`
	Total   int64    `bson:"-" json:"total"`
}

// FacetedSearch runs two independent read-only pipelines over the cast
// filter — one producing the histograms plus the page of movies, one
// producing the unpaginated total — and merges them into a single response.
func (r *MovieRepository) FacetedSearch(ctx context.Context, filters Filters, page Page) (FacetResult, error) {
	if len(filters.Cast) == 0 {
		return FacetResult{}, ErrCastRequired
	}

	filter := BuildQuerySpec(CastIntent{Members: filters.Cast}).Filter
	page = page.Normalize()

	var facets []FacetResult
	if err := r.store.Aggregate(ctx, Collection, facetPipeline(filter, page), &facets); err != nil {
		r.logger.WithContext(ctx).Error("facet pipeline failed", "error", err)
		return FacetResult{}, ErrFilterTooBroad
	}

	var counts []struct {
		Count int64 `bson:"count"`
	}
	if err := r.store.Aggregate(ctx, Collection, countPipeline(filter), &counts); err != nil {
		r.logger.WithContext(ctx).Error("count pipeline failed", "error", err)
		return FacetResult{}, ErrFilterTooBroad
	}

	result := FacetResult{}
	if len(facets) > 0 {
		result = facets[0]
	}
	if result.Runtime == nil {
		result.Runtime = []Bucket{}
	}
	if result.Rating == nil {
		result.Rating = []Bucket{}
	}
	if result.Movies == nil {
		result.Movies = []Movie{}
	}
	if len(counts) > 0 {
		result.Total = counts[0].Count
	}
	return result, nil
}

// facetPipeline pages the matched set, then fans out into three
// sub-pipelines over that same page: runtime histogram, metacritic
// histogram, and the movies themselves. The $addFields title identity is a
// no-op kept for parity with the response shape.
func facetPipeline(filter bson.M, page Page) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: DefaultSort}},
		{{Key: "$skip", Value: page.Skip()}},
		{{Key: "$limit", Value: page.Limit()}},
		{{Key: "$facet", Value: bson.D{
			{Key: "runtime", Value: mongo.Pipeline{
				bucketStage("runtime", runtimeBoundaries),
			}},
			{Key: "rating", Value: mongo.Pipeline{
				bucketStage("metacritic", metacriticBoundaries),
			}},
			{Key: "movies", Value: mongo.Pipeline{
				{{Key: "$addFields", Value: bson.D{{Key: "title", Value: "$title"}}}},
			}},
		}}},
	}
}

// countPipeline counts every document matching the filter, independent of
// the page window.
func countPipeline(filter bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: DefaultSort}},
		{{Key: "$count", Value: "count"}},
	}
}

func bucketStage(field string, boundaries []int32) bson.D {
	bounds := make(bson.A, len(boundaries))
	for i, b := range boundaries {
		bounds[i] = b
	}
	return bson.D{{Key: "$bucket", Value: bson.D{
		{Key: "groupBy", Value: "$" + field},
		{Key: "boundaries", Value: bounds},
		{Key: "default", Value: "other"},
		{Key: "output", Value: bson.D{
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}},
	}}}
}

// bucketKey reproduces the store's $bucket assignment rule: a value falls
// into the bucket whose half-open range [lower, next) contains it, and
// anything outside every boundary falls into "other". Kept here so the
// boundary semantics are pinned by tests alongside the pipeline itself.
func bucketKey(value int32, boundaries []int32) interface{} {
	for i := 0; i < len(boundaries)-1; i++ {
		if value >= boundaries[i] && value < boundaries[i+1] {
			return boundaries[i]
		}
	}
	return "other"
}
