package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	return nil
}

// EnsureOrderIndexes creates the unique orderCode index that backs the
// collision-checked code generation, plus the owner lookup index.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	codeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "orderCode", Value: 1}},
		Options: options.Index().
			SetName("orderCode_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"orderCode": bson.M{
					"$exists": true,
				},
			}),
	}

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetName("user_index"),
	}

	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{codeIndex, userIndex})
	if err != nil {
		log.Println("EnsureOrderIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureAddressIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("addresses").Indexes()

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetName("user_index"),
	}

	_, err := indexes.CreateOne(ctx, userIndex)
	if err != nil {
		log.Println("EnsureAddressIndexes: user index error:", err)
		return err
	}
	return nil
}
