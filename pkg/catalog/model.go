package catalog

import (
	"github.com/screenbase/screenbase/pkg/comments"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Movie is a catalog entry. The engine only ever reads movies; nothing in
// this layer mutates them.
type Movie struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title      string             `bson:"title" json:"title"`
	Countries  []string           `bson:"countries,omitempty" json:"countries,omitempty"`
	Cast       []string           `bson:"cast,omitempty" json:"cast,omitempty"`
	Genres     []string           `bson:"genres,omitempty" json:"genres,omitempty"`
	Plot       string             `bson:"plot,omitempty" json:"plot,omitempty"`
	Runtime    *int32             `bson:"runtime,omitempty" json:"runtime,omitempty"`
	Metacritic *int32             `bson:"metacritic,omitempty" json:"metacritic,omitempty"`
	Tomatoes   *Tomatoes          `bson:"tomatoes,omitempty" json:"tomatoes,omitempty"`

	// Score carries the text-search relevance when the query projected it.
	Score float64 `bson:"score,omitempty" json:"score,omitempty"`

	// Comments is populated only by GetByID's embedding pipeline.
	Comments []comments.Comment `bson:"comments,omitempty" json:"comments,omitempty"`
}

// Tomatoes holds aggregated review metadata.
type Tomatoes struct {
	Viewer ViewerReviews `bson:"viewer" json:"viewer"`
}

// ViewerReviews summarizes viewer review volume and rating.
type ViewerReviews struct {
	NumReviews int32   `bson:"numReviews" json:"numReviews"`
	Rating     float64 `bson:"rating,omitempty" json:"rating,omitempty"`
	Meter      int32   `bson:"meter,omitempty" json:"meter,omitempty"`
}

// MovieSummary is the title-only projection used by country lookups.
type MovieSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Title string             `bson:"title" json:"title"`
}
