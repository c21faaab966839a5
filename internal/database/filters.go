package database

import (
	"regexp"
	"strings"

	"memories/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// literalRegex matches s as a case-insensitive substring. User input is
// escaped so it is never interpreted as a pattern.
func literalRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// buildListFilter narrows the paginated listing. Tag is array containment,
// search is a substring of title or message.
func buildListFilter(f models.PostFilter) bson.M {
	filter := bson.M{}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		filter["tags"] = tag
	}
	if creator := strings.TrimSpace(f.CreatorID); creator != "" {
		filter["creator"] = creator
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		re := literalRegex(search)
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"message": re},
		}
	}
	return filter
}

// buildSearchFilter matches query against title, message and any tag, with
// an optional exact tag ANDed in.
func buildSearchFilter(query, tag string) bson.M {
	filter := bson.M{}
	if q := strings.TrimSpace(query); q != "" {
		re := literalRegex(q)
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"message": re},
			bson.M{"tags": re},
		}
	}
	if t := strings.TrimSpace(tag); t != "" {
		filter["tags"] = t
	}
	return filter
}

// toggleLikePipeline removes userID from likes when present and appends it
// otherwise, then recomputes likeCount from the list in the same write.
func toggleLikePipeline(userID string) mongo.Pipeline {
	uid := bson.D{{Key: "$literal", Value: userID}}
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{uid, likes}}},
			bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: likes},
				{Key: "as", Value: "like"},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$like", uid}}}},
			}}},
			bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{uid}}}},
		}}}}}}},
		{{Key: "$set", Value: bson.D{{Key: "likeCount", Value: bson.D{{Key: "$size", Value: "$likes"}}}}}},
	}
}

// commentCountPipeline sums the embedded comment arrays of every post.
func commentCountPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$comments", bson.A{}}},
			}}}}}},
		}}},
	}
}

// prependComment pushes doc to the front of the comment list.
func prependComment(doc CommentDocument) bson.M {
	return bson.M{
		"$push": bson.M{
			"comments": bson.M{
				"$each":     bson.A{doc},
				"$position": 0,
			},
		},
	}
}
