package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/clubsphere/clubsphere/internal/models"
)

func TestBuildMongoFilterWithoutConditions(t *testing.T) {
	require.Equal(t, bson.M{}, BuildMongoFilter(AuditQuery{}))
	require.Equal(t, bson.M{}, BuildMongoFilter(AuditQuery{UserID: "  ", Keywords: " "}))
}

func TestBuildMongoFilterSingleConditionIsNotWrapped(t *testing.T) {
	require.Equal(t, bson.M{"module": "members"}, BuildMongoFilter(AuditQuery{Module: "members"}))
	require.Equal(t, bson.M{"action": "UPDATE"}, BuildMongoFilter(AuditQuery{Action: "update"}))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	require.Equal(t,
		bson.M{"created_at": bson.M{"$gte": start, "$lte": end}},
		BuildMongoFilter(AuditQuery{StartDate: &start, EndDate: &end}),
	)
}

func TestBuildMongoFilterCombinesConditions(t *testing.T) {
	filter := BuildMongoFilter(AuditQuery{UserID: "u1", StaffID: "s1", Role: "admin", Keywords: "a.b"})

	all, ok := filter["$and"].(bson.A)
	require.True(t, ok)
	require.Len(t, all, 4)
	require.Equal(t, bson.M{"actor_id": "u1"}, all[0])
	require.Equal(t, bson.M{"staff_actor_id": "s1"}, all[1])
	require.Equal(t, bson.M{"metadata.user_role": "admin"}, all[2])

	keyword := all[3].(bson.M)
	alternatives := keyword["$or"].(bson.A)
	require.Len(t, alternatives, len(mongoKeywordFields))
	require.Equal(t, bson.M{"description": primitive.Regex{Pattern: `a\.b`, Options: "i"}}, alternatives[0])
	require.Equal(t, bson.M{"user.email": primitive.Regex{Pattern: `a\.b`, Options: "i"}}, alternatives[len(alternatives)-1])
}

func TestBuildMongoPipelineStages(t *testing.T) {
	pipeline := BuildMongoPipeline(AuditQuery{Module: "members"})
	require.Len(t, pipeline, 6)

	require.Equal(t, "$lookup", pipeline[0][0].Key)
	require.Equal(t, "$unwind", pipeline[1][0].Key)
	require.Equal(t, "$lookup", pipeline[2][0].Key)
	require.Equal(t, "$unwind", pipeline[3][0].Key)

	// Joins read the directory collections by _id and keep unmatched entries.
	require.Equal(t, bson.D{
		{Key: "from", Value: "users"},
		{Key: "localField", Value: "actor_id"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "user"},
	}, pipeline[0][0].Value)
	require.Equal(t, bson.D{
		{Key: "from", Value: "staff"},
		{Key: "localField", Value: "staff_actor_id"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "staff"},
	}, pipeline[2][0].Value)
	require.Equal(t, bson.D{{Key: "path", Value: "$staff"}, {Key: "preserveNullAndEmptyArrays", Value: true}}, pipeline[3][0].Value)
	require.Equal(t, bson.D{{Key: "$match", Value: bson.M{"module": "members"}}}, pipeline[4])
	require.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}}, pipeline[5])
}

func TestNormaliseMetadataConvertsDriverTypes(t *testing.T) {
	meta := models.AuditMetadata{
		RequestBody: map[string]any{
			"profile": primitive.D{{Key: "city", Value: "Pune"}},
			"tags":    primitive.A{"a", primitive.M{"b": int32(1)}},
		},
	}

	normaliseMetadata(&meta)

	require.Equal(t, map[string]any{"city": "Pune"}, meta.RequestBody["profile"])
	require.Equal(t, []any{"a", map[string]any{"b": int32(1)}}, meta.RequestBody["tags"])
	require.Nil(t, meta.OriginalData)
}
