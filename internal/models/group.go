package models

import "time"

// Group is a chat group owned by the user that created it.
type Group struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	GroupName    string    `bson:"group_name" json:"group_name"`
	GroupAdminID string    `bson:"group_admin_id" json:"group_admin_id"`
	Status       int       `bson:"status" json:"status"`
	IsDeleted    int       `bson:"is_deleted" json:"is_deleted"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// GroupMember links a user to a group. IsAdmin is 1 for the group admin.
// This persisted record is authoritative for membership; the realtime hub's
// room table is not.
type GroupMember struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	GroupID   string    `bson:"group_id" json:"group_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	IsAdmin   int       `bson:"is_admin" json:"is_admin"`
	Status    int       `bson:"status" json:"status"`
	IsDeleted int       `bson:"is_deleted" json:"is_deleted"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
