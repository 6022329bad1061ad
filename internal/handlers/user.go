package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coffeeshop/internal/middleware"
	"coffeeshop/internal/models"
)

type updateAvatarRequest struct {
	Avatar string `json:"avatar"`
}

type updateUserRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}

func UpdateAvatar(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
			return
		}

		var req updateAvatarRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Avatar) == "" {
			respondError(c, http.StatusBadRequest, "Please provide a file")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.User
		err := db.Collection("users").FindOneAndUpdate(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": bson.M{
				"avatar":    strings.TrimSpace(req.Avatar),
				"updatedAt": time.Now(),
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			log.Println("[USER] [ERROR] avatar update failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"user": updated},
		})
	}
}

func UpdateUserInfo(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
			return
		}

		var req updateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		update := bson.M{}
		if name := strings.TrimSpace(req.Name); name != "" {
			update["name"] = name
		}
		if address := strings.TrimSpace(req.Address); address != "" {
			update["address"] = address
		}
		if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
			update["phoneNumber"] = phone
		}
		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, "Please provide name, address or phone number to update.")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.User
		err := db.Collection("users").FindOneAndUpdate(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "No user found with that ID")
				return
			}
			log.Println("[USER] [ERROR] profile update failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"user": updated},
		})
	}
}
