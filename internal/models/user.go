package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents the application user account.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	PasswordHash         string             `bson:"passwordHash" json:"-"`
	Role                 string             `bson:"role" json:"-"`
	Avatar               string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	PhoneNumber          string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Address              string             `bson:"address,omitempty" json:"address,omitempty"`
	PasswordChangedAt    *time.Time         `bson:"passwordChangedAt,omitempty" json:"-"`
	PasswordResetToken   string             `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time         `bson:"passwordResetExpires,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ChangedPasswordAfter reports whether the password was changed after the
// given token issue time. Tokens issued before the change are stale.
func (u User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}
