package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductSize is a purchasable variant of a product.
type ProductSize struct {
	Label    string  `bson:"label" json:"label"`
	Value    string  `bson:"value,omitempty" json:"value,omitempty"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Price    float64 `bson:"price" json:"price"`
}

type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Brand           string             `bson:"brand" json:"brand"`
	Taste           string             `bson:"taste,omitempty" json:"taste,omitempty"`
	Tags            StringList         `bson:"tags,omitempty" json:"tags,omitempty"`
	Discount        float64            `bson:"discount,omitempty" json:"discount,omitempty"`
	Sizes           []ProductSize      `bson:"size" json:"size"`
	ThumbImg        string             `bson:"thumbImg,omitempty" json:"thumbImg,omitempty"`
	Images          StringList         `bson:"images,omitempty" json:"images,omitempty"`
	Rated           float64            `bson:"rated,omitempty" json:"rated,omitempty"`
	GrindType       StringList         `bson:"grindType,omitempty" json:"grindType,omitempty"`
	Description     string             `bson:"description" json:"description"`
	LongDescription string             `bson:"longDescription,omitempty" json:"longDescription,omitempty"`
	Origin          string             `bson:"origin,omitempty" json:"origin,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
