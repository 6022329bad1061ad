package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Address is a saved delivery address. The user reference here is the
// single owning side of the relation; a user's address book is derived by
// querying this collection.
type Address struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"user" json:"user"`
	Address string             `bson:"address" json:"address"`
	Name    string             `bson:"name" json:"name"`
	Phone   string             `bson:"phone,omitempty" json:"phone,omitempty"`
}
