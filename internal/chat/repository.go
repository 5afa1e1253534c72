package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/groupchat/groupchat/internal/models"
)

// Repository persists messages and per-user like records. Lookups return
// (nil, nil) when nothing matches.
type Repository interface {
	InsertMessage(ctx context.Context, m *models.Message) (*models.Message, error)
	FindMessageByID(ctx context.Context, id string) (*models.Message, error)
	MessagesByGroup(ctx context.Context, groupID string) ([]*models.Message, error)
	SetLikeCount(ctx context.Context, messageID string, count int) error

	FindLike(ctx context.Context, messageID, userID string) (*models.MessageLike, error)
	InsertLike(ctx context.Context, l *models.MessageLike) (*models.MessageLike, error)
	UpdateLikeStatus(ctx context.Context, id string, status int) error
}

// MongoRepository implements Repository over the messages and likes
// collections.
type MongoRepository struct {
	messages *mongo.Collection
	likes    *mongo.Collection
}

func NewMongoRepository(messages, likes *mongo.Collection) *MongoRepository {
	return &MongoRepository{messages: messages, likes: likes}
}

func (r *MongoRepository) InsertMessage(ctx context.Context, m *models.Message) (*models.Message, error) {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	if m.Status == 0 {
		m.Status = 1
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := r.messages.InsertOne(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MongoRepository) FindMessageByID(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	if err := r.messages.FindOne(ctx, bson.M{"_id": id, "is_deleted": 0}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// MessagesByGroup returns the group's messages oldest first.
func (r *MongoRepository) MessagesByGroup(ctx context.Context, groupID string) ([]*models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.messages.Find(ctx, bson.M{"group_id": groupID, "is_deleted": 0}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Message{}
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func (r *MongoRepository) SetLikeCount(ctx context.Context, messageID string, count int) error {
	set := bson.M{"like_count": count, "updated_at": time.Now().UTC()}
	_, err := r.messages.UpdateOne(ctx, bson.M{"_id": messageID}, bson.M{"$set": set})
	return err
}

func (r *MongoRepository) FindLike(ctx context.Context, messageID, userID string) (*models.MessageLike, error) {
	var l models.MessageLike
	filter := bson.M{"message_id": messageID, "user_id": userID, "is_deleted": 0}
	if err := r.likes.FindOne(ctx, filter).Decode(&l); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *MongoRepository) InsertLike(ctx context.Context, l *models.MessageLike) (*models.MessageLike, error) {
	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = primitive.NewObjectID().Hex()
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	if _, err := r.likes.InsertOne(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *MongoRepository) UpdateLikeStatus(ctx context.Context, id string, status int) error {
	set := bson.M{"status": status, "updated_at": time.Now().UTC()}
	_, err := r.likes.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}
