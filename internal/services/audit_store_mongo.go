package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/datatypes"

	"github.com/clubsphere/clubsphere/internal/models"
)

// Collection names used by the document store. Only MongoAuditCollection is written here; the
// users and staff collections are owned by the club directory that shares the database, keyed by
// the same string ids the audit entries carry in actor_id and staff_actor_id.
const (
	MongoAuditCollection = "audit_logs"
	MongoUserCollection  = "users"
	MongoStaffCollection = "staff"
)

// mongoKeywordFields are matched after the user and staff lookups ran.
var mongoKeywordFields = []string{
	"description",
	"metadata.user_email",
	"metadata.user_role",
	"metadata.login_type",
	"metadata.attempted_email",
	"metadata.error_message",
	"ip",
	"user_agent",
	"staff.name",
	"staff.email",
	"staff.designation",
	"user.name",
	"user.email",
}

// MongoAuditStore keeps audit entries in a MongoDB collection and joins actors with $lookup
// against MongoUserCollection and MongoStaffCollection. Those collections are populated outside
// this process; when they are absent or missing an id the entry is returned without User or Staff,
// and keyword search only matches the entry's own fields.
type MongoAuditStore struct {
	entries *mongo.Collection
}

// NewMongoAuditStore constructs a MongoAuditStore on db.
func NewMongoAuditStore(db *mongo.Database) (*MongoAuditStore, error) {
	if db == nil {
		return nil, errors.New("audit store: mongo database is required")
	}
	return &MongoAuditStore{entries: db.Collection(MongoAuditCollection)}, nil
}

// Append inserts entry. Entries without an actor are rejected.
func (s *MongoAuditStore) Append(ctx context.Context, entry *models.AuditLog) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	// Joined documents are never persisted.
	doc := *entry
	doc.User, doc.Staff = nil, nil

	if _, err := s.entries.InsertOne(ensureContext(ctx), doc); err != nil {
		return fmt.Errorf("audit store: insert: %w", err)
	}
	return nil
}

// QueryPage returns one page of matching entries.
func (s *MongoAuditStore) QueryPage(ctx context.Context, query AuditQuery, page, pageSize int) ([]models.AuditLog, error) {
	page, pageSize = ClampPage(page, pageSize, DefaultAuditPageSize, MaxAuditPageSize)
	pipeline := append(BuildMongoPipeline(query),
		bson.D{{Key: "$skip", Value: int64((page - 1) * pageSize)}},
		bson.D{{Key: "$limit", Value: int64(pageSize)}},
	)
	return s.aggregate(ensureContext(ctx), pipeline)
}

// QueryAll returns every matching entry.
func (s *MongoAuditStore) QueryAll(ctx context.Context, query AuditQuery) ([]models.AuditLog, error) {
	return s.aggregate(ensureContext(ctx), BuildMongoPipeline(query))
}

// Count returns the number of matching entries. Queries without keywords skip the lookups.
func (s *MongoAuditStore) Count(ctx context.Context, query AuditQuery) (int64, error) {
	ctx = ensureContext(ctx)
	query = query.normalised()

	if query.Keywords == "" {
		total, err := s.entries.CountDocuments(ctx, BuildMongoFilter(query))
		if err != nil {
			return 0, fmt.Errorf("audit store: count: %w", err)
		}
		return total, nil
	}

	pipeline := append(lookupStages(), bson.D{{Key: "$match", Value: BuildMongoFilter(query)}})
	pipeline = append(pipeline, bson.D{{Key: "$count", Value: "total"}})

	cursor, err := s.entries.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("audit store: count: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("audit store: decode count: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (s *MongoAuditStore) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.AuditLog, error) {
	cursor, err := s.entries.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("audit store: aggregate: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []models.AuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("audit store: decode: %w", err)
	}
	for i := range logs {
		normaliseMetadata(&logs[i].Metadata)
	}
	return logs, nil
}

// BuildMongoPipeline returns the lookup, match and sort stages for query.
func BuildMongoPipeline(query AuditQuery) mongo.Pipeline {
	pipeline := lookupStages()
	pipeline = append(pipeline,
		bson.D{{Key: "$match", Value: BuildMongoFilter(query)}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
	)
	return pipeline
}

func lookupStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: MongoUserCollection},
			{Key: "localField", Value: "actor_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$user"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: MongoStaffCollection},
			{Key: "localField", Value: "staff_actor_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "staff"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$staff"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// BuildMongoFilter translates query into a match document. No conditions yield an empty filter,
// a single condition is returned as-is and several are combined under $and.
func BuildMongoFilter(query AuditQuery) bson.M {
	query = query.normalised()

	var conditions []bson.M
	if query.UserID != "" {
		conditions = append(conditions, bson.M{"actor_id": query.UserID})
	}
	if query.StaffID != "" {
		conditions = append(conditions, bson.M{"staff_actor_id": query.StaffID})
	}
	if query.Action != "" {
		conditions = append(conditions, bson.M{"action": query.Action})
	}
	if query.Module != "" {
		conditions = append(conditions, bson.M{"module": query.Module})
	}
	if query.Role != "" {
		conditions = append(conditions, bson.M{"metadata.user_role": query.Role})
	}
	if query.StartDate != nil || query.EndDate != nil {
		window := bson.M{}
		if query.StartDate != nil {
			window["$gte"] = query.StartDate.UTC()
		}
		if query.EndDate != nil {
			window["$lte"] = query.EndDate.UTC()
		}
		conditions = append(conditions, bson.M{"created_at": window})
	}
	if query.Keywords != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query.Keywords), Options: "i"}
		alternatives := make(bson.A, 0, len(mongoKeywordFields))
		for _, field := range mongoKeywordFields {
			alternatives = append(alternatives, bson.M{field: pattern})
		}
		conditions = append(conditions, bson.M{"$or": alternatives})
	}

	switch len(conditions) {
	case 0:
		return bson.M{}
	case 1:
		return conditions[0]
	default:
		all := make(bson.A, len(conditions))
		for i, condition := range conditions {
			all[i] = condition
		}
		return bson.M{"$and": all}
	}
}

func normaliseMetadata(meta *models.AuditMetadata) {
	for _, field := range []*datatypes.JSONMap{
		&meta.Params, &meta.Query, &meta.RequestBody, &meta.OriginalData, &meta.UpdatedData, &meta.Extra,
	} {
		if *field == nil {
			continue
		}
		*field = datatypes.JSONMap(normaliseBSONMap(*field))
	}
}

func normaliseBSONMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = normaliseBSON(value)
	}
	return out
}

// normaliseBSON converts driver container types into plain maps and slices so decoded payloads
// serialise the same way as the SQL store's.
func normaliseBSON(value any) any {
	switch v := value.(type) {
	case primitive.D:
		out := make(map[string]any, len(v))
		for _, elem := range v {
			out[elem.Key] = normaliseBSON(elem.Value)
		}
		return out
	case primitive.M:
		return normaliseBSONMap(v)
	case map[string]any:
		return normaliseBSONMap(v)
	case primitive.A:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = normaliseBSON(elem)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = normaliseBSON(elem)
		}
		return out
	case primitive.DateTime:
		return v.Time()
	default:
		return v
	}
}
