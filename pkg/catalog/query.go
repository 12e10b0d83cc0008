package catalog

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// DefaultSort orders movies by viewer review volume, most reviewed first.
var DefaultSort = bson.D{{Key: "tomatoes.viewer.numReviews", Value: -1}}

// Filters carries the caller's search constraints. At most one dimension is
// honored per query; see Intent for the precedence rule.
type Filters struct {
	Text  string
	Cast  []string
	Genre []string
}

// Intent is the resolved search dimension of a Filters value.
type Intent interface {
	isIntent()
}

// TextIntent searches the text index and ranks by relevance.
type TextIntent struct {
	Query string
}

// CastIntent matches movies whose cast intersects the requested members.
type CastIntent struct {
	Members []string
}

// GenreIntent matches movies whose genres intersect the requested list.
type GenreIntent struct {
	Genres []string
}

// NoIntent matches everything under the default sort.
type NoIntent struct{}

func (TextIntent) isIntent()  {}
func (CastIntent) isIntent()  {}
func (GenreIntent) isIntent() {}
func (NoIntent) isIntent()    {}

// Intent resolves which single dimension this filter set honors: text wins
// over cast, cast wins over genre. Existing callers depend on exactly this
// order; do not reorder the cases.
func (f Filters) Intent() Intent {
	switch {
	case f.Text != "":
		return TextIntent{Query: f.Text}
	case len(f.Cast) > 0:
		return CastIntent{Members: f.Cast}
	case len(f.Genre) > 0:
		return GenreIntent{Genres: f.Genre}
	}
	return NoIntent{}
}

// ParseMemberList splits a comma-separated value ("Tom Hanks, Meg Ryan")
// into its members. Callers that already hold a list pass it to Filters
// directly.
func ParseMemberList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ", ")
}

// QuerySpec is the normalized find specification produced from an Intent.
// It is a transient per-request value, never persisted.
type QuerySpec struct {
	Filter     bson.M
	Projection bson.M
	Sort       bson.D
}

// BuildQuerySpec maps an Intent into the filter, projection and sort the
// store executes.
func BuildQuerySpec(intent Intent) QuerySpec {
	switch it := intent.(type) {
	case TextIntent:
		meta := bson.M{"$meta": "textScore"}
		return QuerySpec{
			Filter:     bson.M{"$text": bson.M{"$search": it.Query}},
			Projection: bson.M{"score": meta},
			Sort:       bson.D{{Key: "score", Value: meta}},
		}
	case CastIntent:
		return QuerySpec{
			Filter:     bson.M{"cast": bson.M{"$in": it.Members}},
			Projection: bson.M{},
			Sort:       DefaultSort,
		}
	case GenreIntent:
		return QuerySpec{
			Filter:     bson.M{"genres": bson.M{"$in": it.Genres}},
			Projection: bson.M{},
			Sort:       DefaultSort,
		}
	default:
		return QuerySpec{
			Filter:     bson.M{},
			Projection: bson.M{},
			Sort:       DefaultSort,
		}
	}
}
