package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"coffeeshop/internal/models"
)

// ContextUserKey is where Protect stores the authenticated user.
const ContextUserKey = "user"

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "fail",
		"message": message,
	})
}

// Protect validates the bearer access token, reloads the referenced user
// and rejects tokens issued before the user's last password change.
func Protect(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" || !strings.HasPrefix(strings.ToLower(raw), "bearer") {
			abortUnauthorized(c, "You are not logged in! Please log in to get access.")
			return
		}

		parts := strings.Split(raw, " ")
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "You are not logged in! Please log in to get access.")
			return
		}

		user, err := UserFromToken(c.Request.Context(), db, parts[1], secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// tokenError carries the client-facing message for a rejected token.
type tokenError struct{ message string }

func (e tokenError) Error() string { return e.message }

// UserFromToken verifies an access token and resolves it to a live user.
// Every failure maps to a 401-class message.
func UserFromToken(ctx context.Context, db *mongo.Database, tokenString, secret string) (models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return models.User{}, tokenError{"Invalid or expired token, please log in again."}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, tokenError{"Invalid or expired token, please log in again."}
	}

	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return models.User{}, tokenError{"Invalid or expired token, please log in again."}
	}

	userID, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return models.User{}, tokenError{"Invalid or expired token, please log in again."}
	}

	findCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.Collection("users").FindOne(findCtx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return models.User{}, tokenError{"The user belonging to this token does no longer exist."}
	}

	if issuedAt, err := claims.GetIssuedAt(); err == nil && issuedAt != nil {
		if user.ChangedPasswordAfter(issuedAt.Time) {
			return models.User{}, tokenError{"User recently changed password! Please log in again."}
		}
	}

	return user, nil
}

// RestrictTo gates a route to the given roles. It must run after Protect.
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(ContextUserKey)
		if !ok {
			abortUnauthorized(c, "You are not logged in! Please log in to get access.")
			return
		}
		user, ok := value.(models.User)
		if !ok {
			abortUnauthorized(c, "You are not logged in! Please log in to get access.")
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"status":  "fail",
			"message": "You do not have permission to perform this action",
		})
	}
}

// CurrentUser retrieves the authenticated user set by Protect.
func CurrentUser(c *gin.Context) (models.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}
