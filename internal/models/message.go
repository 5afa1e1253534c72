package models

import "time"

// Message is a chat message posted to a group. LikeCount is maintained by the
// like/unlike toggle and mirrors the MessageLike records.
type Message struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	GroupID   string    `bson:"group_id" json:"group_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Message   string    `bson:"message" json:"message"`
	LikeCount int       `bson:"like_count" json:"like_count"`
	Status    int       `bson:"status" json:"status"`
	IsDeleted int       `bson:"is_deleted" json:"is_deleted"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Like status values for MessageLike.Status.
const (
	LikeStatusLiked   = 1
	LikeStatusUnliked = 0
)

// MessageLike records one user's like state for one message. Toggling flips
// Status rather than deleting the record.
type MessageLike struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	MessageID string    `bson:"message_id" json:"message_id"`
	Status    int       `bson:"status" json:"status"`
	IsDeleted int       `bson:"is_deleted" json:"is_deleted"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
