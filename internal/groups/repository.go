package groups

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/groupchat/groupchat/internal/models"
)

// Repository persists groups and group memberships. Group lookups only see
// non-deleted records; deletes are soft (is_deleted flag), matching the rest
// of the data model.
type Repository interface {
	InsertGroup(ctx context.Context, g *models.Group) (*models.Group, error)
	FindGroupByID(ctx context.Context, id string) (*models.Group, error)
	FindGroupByIDAndAdmin(ctx context.Context, id, adminID string) (*models.Group, error)
	MarkGroupDeleted(ctx context.Context, id string) (*models.Group, error)
	SearchGroups(ctx context.Context, name string, ids []string) ([]*models.Group, error)

	InsertMember(ctx context.Context, m *models.GroupMember) (*models.GroupMember, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	IsAdminMember(ctx context.Context, groupID, userID string) (bool, error)
	MemberGroupIDs(ctx context.Context, userID string) ([]string, error)
	MembersOfGroup(ctx context.Context, groupID string) ([]*models.GroupMember, error)
}

// MongoRepository implements Repository over two collections.
type MongoRepository struct {
	groups  *mongo.Collection
	members *mongo.Collection
}

func NewMongoRepository(groups, members *mongo.Collection) *MongoRepository {
	return &MongoRepository{groups: groups, members: members}
}

func (r *MongoRepository) InsertGroup(ctx context.Context, g *models.Group) (*models.Group, error) {
	now := time.Now().UTC()
	if g.ID == "" {
		g.ID = primitive.NewObjectID().Hex()
	}
	if g.Status == 0 {
		g.Status = 1
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := r.groups.InsertOne(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *MongoRepository) FindGroupByID(ctx context.Context, id string) (*models.Group, error) {
	return r.findGroup(ctx, bson.M{"_id": id, "is_deleted": 0})
}

func (r *MongoRepository) FindGroupByIDAndAdmin(ctx context.Context, id, adminID string) (*models.Group, error) {
	return r.findGroup(ctx, bson.M{"_id": id, "group_admin_id": adminID, "is_deleted": 0})
}

func (r *MongoRepository) findGroup(ctx context.Context, filter bson.M) (*models.Group, error) {
	var g models.Group
	if err := r.groups.FindOne(ctx, filter).Decode(&g); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *MongoRepository) MarkGroupDeleted(ctx context.Context, id string) (*models.Group, error) {
	set := bson.M{"is_deleted": 1, "updated_at": time.Now().UTC()}
	if _, err := r.groups.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	var g models.Group
	if err := r.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *MongoRepository) SearchGroups(ctx context.Context, name string, ids []string) ([]*models.Group, error) {
	filter := bson.M{"is_deleted": 0}
	if name != "" {
		// Literal substring match; the query must not be interpreted as a
		// regex pattern.
		filter["group_name"] = bson.M{"$regex": regexp.QuoteMeta(name), "$options": "i"}
	}
	if ids != nil {
		filter["_id"] = bson.M{"$in": ids}
	}
	cur, err := r.groups.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Group{}
	for cur.Next(ctx) {
		var g models.Group
		if err := cur.Decode(&g); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, cur.Err()
}

func (r *MongoRepository) InsertMember(ctx context.Context, m *models.GroupMember) (*models.GroupMember, error) {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	if m.Status == 0 {
		m.Status = 1
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := r.members.InsertOne(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MongoRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	return r.exists(ctx, bson.M{"group_id": groupID, "user_id": userID, "is_deleted": 0})
}

func (r *MongoRepository) IsAdminMember(ctx context.Context, groupID, userID string) (bool, error) {
	return r.exists(ctx, bson.M{"group_id": groupID, "user_id": userID, "is_admin": 1, "is_deleted": 0})
}

func (r *MongoRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.members.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoRepository) MemberGroupIDs(ctx context.Context, userID string) ([]string, error) {
	raw, err := r.members.Distinct(ctx, "group_id", bson.M{"user_id": userID, "is_deleted": 0})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

func (r *MongoRepository) MembersOfGroup(ctx context.Context, groupID string) ([]*models.GroupMember, error) {
	cur, err := r.members.Find(ctx, bson.M{"group_id": groupID, "is_deleted": 0})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.GroupMember{}
	for cur.Next(ctx) {
		var m models.GroupMember
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}
