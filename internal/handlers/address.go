package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coffeeshop/internal/middleware"
	"coffeeshop/internal/models"
)

type createAddressRequest struct {
	Address string `json:"address" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
}

type updateAddressRequest struct {
	Address *string `json:"address"`
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
}

// GetAddresses lists the caller's saved addresses. The address document
// owns the relation, so the list is a straight query on the owner field.
func GetAddresses(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "Please login first")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("addresses").Find(ctx, bson.M{"user": user.ID})
		if err != nil {
			log.Println("[ADDRESS] [ERROR] list failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		defer cursor.Close(ctx)

		addresses := []models.Address{}
		if err := cursor.All(ctx, &addresses); err != nil {
			log.Println("[ADDRESS] [ERROR] list decode failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"results": len(addresses),
			"data":    gin.H{"addresses": addresses},
		})
	}
}

func CreateAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "Please login first")
			return
		}

		var req createAddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		address := models.Address{
			UserID:  user.ID,
			Address: strings.TrimSpace(req.Address),
			Name:    strings.TrimSpace(req.Name),
			Phone:   strings.TrimSpace(req.Phone),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("addresses").InsertOne(ctx, address)
		if err != nil {
			log.Println("[ADDRESS] [ERROR] create failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		address.ID = res.InsertedID.(primitive.ObjectID)

		log.Println("[ADDRESS] [INFO] address created:", address.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"status": "success",
			"data":   gin.H{"address": address},
		})
	}
}

func UpdateAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "Please login first")
			return
		}

		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid address id")
			return
		}

		var req updateAddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		update := bson.M{}
		if req.Address != nil {
			update["address"] = strings.TrimSpace(*req.Address)
		}
		if req.Name != nil {
			update["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Phone != nil {
			update["phone"] = strings.TrimSpace(*req.Phone)
		}
		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, "nothing to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var address models.Address
		err = db.Collection("addresses").FindOneAndUpdate(ctx,
			bson.M{"_id": id, "user": user.ID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&address)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "No address found with that ID")
				return
			}
			log.Println("[ADDRESS] [ERROR] update failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"address": address},
		})
	}
}

func DeleteAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "Please login first")
			return
		}

		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid address id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = db.Collection("addresses").FindOneAndDelete(ctx, bson.M{"_id": id, "user": user.ID}).Err()
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "No address found with that ID")
				return
			}
			log.Println("[ADDRESS] [ERROR] delete failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		log.Println("[ADDRESS] [INFO] address deleted:", id.Hex())
		c.Status(http.StatusNoContent)
	}
}
