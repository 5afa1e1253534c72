package models

import "time"

// Roles assignable to a user account.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an application account. Password holds the bcrypt hash and
// is never serialized into API responses.
type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Username  string    `bson:"username" json:"username"`
	Role      string    `bson:"role" json:"role"`
	Email     string    `bson:"email" json:"email"`
	Password  string    `bson:"password" json:"-"`
	Status    int       `bson:"status" json:"status"`
	IsDeleted int       `bson:"is_deleted" json:"is_deleted"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Identity is the per-request view of an authenticated user: what the token
// carries and what handlers see. It never includes the password hash.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// Identity derives the token-facing view of the user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role, Username: u.Username}
}
