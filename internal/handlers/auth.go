package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"coffeeshop/internal/config"
	"coffeeshop/internal/middleware"
	"coffeeshop/internal/models"
)

const refreshCookieName = "refreshToken"

const passwordResetTTL = 10 * time.Minute

type SignupRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func signToken(userID string, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// sendToken issues the access/refresh pair: access token in the response
// body, refresh token in an HttpOnly cookie.
func sendToken(c *gin.Context, cfg config.Config, user models.User, status int) {
	accessToken, err := signToken(user.ID.Hex(), cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Println("[AUTH] [ERROR] access token generation failed:", err)
		respondError(c, http.StatusInternalServerError, "token generation failed")
		return
	}

	refreshToken, err := signToken(user.ID.Hex(), cfg.JWTSecret, cfg.RefreshTokenTTL)
	if err != nil {
		log.Println("[AUTH] [ERROR] refresh token generation failed:", err)
		respondError(c, http.StatusInternalServerError, "token generation failed")
		return
	}

	if cfg.Production() {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(refreshCookieName, refreshToken,
		int(cfg.RefreshTokenTTL.Seconds()), "/", "", cfg.Production(), true)

	c.JSON(status, gin.H{
		"status": "success",
		"token":  accessToken,
		"data":   gin.H{"user": user},
	})
}

func Signup(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Password != req.PasswordConfirm {
			respondError(c, http.StatusBadRequest, "passwords do not match")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] signup password hash failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		now := time.Now()
		user := models.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hash),
			Role:         "user",
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				log.Println("[AUTH] [ERROR] signup email exists:", email)
				respondError(c, http.StatusBadRequest, "Email already exists")
				return
			}
			log.Println("[AUTH] [ERROR] signup insert failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		user.ID = res.InsertedID.(primitive.ObjectID)
		log.Println("[AUTH] [INFO] user signed up:", email)
		sendToken(c, cfg, user, http.StatusCreated)
	}
}

func Login(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || req.Password == "" {
			respondError(c, http.StatusBadRequest, "Please provide email and password!")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusUnauthorized, "Incorrect email or password")
				return
			}
			log.Println("[AUTH] [ERROR] login lookup failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials:", email)
			respondError(c, http.StatusUnauthorized, "Incorrect email or password")
			return
		}

		log.Println("[AUTH] [INFO] login succeeded:", email)
		sendToken(c, cfg, user, http.StatusOK)
	}
}

// RefreshToken exchanges a valid refresh cookie for a new access token.
// Failures are authentication errors, so every rejection is a 401.
func RefreshToken(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(refreshCookieName)
		if err != nil || strings.TrimSpace(cookie) == "" {
			respondError(c, http.StatusUnauthorized, "No refresh token provided")
			return
		}

		token, err := jwt.ParseWithClaims(cookie, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			respondError(c, http.StatusUnauthorized, "Invalid refresh token")
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok || claims.Subject == "" {
			respondError(c, http.StatusUnauthorized, "Invalid refresh token")
			return
		}

		accessToken, err := signToken(claims.Subject, cfg.JWTSecret, cfg.AccessTokenTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] refresh token generation failed:", err)
			respondError(c, http.StatusInternalServerError, "token generation failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"token":  accessToken,
		})
	}
}

func Logout(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(refreshCookieName, "", -1, "/", "", cfg.Production(), true)
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Logged out!",
		})
	}
}

// ForgotPassword stores a hashed single-use reset token with a short
// expiry and hands the raw token back to the requester. Mail delivery is
// a no-op side channel here.
func ForgotPassword(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req forgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, "There is no user with email address.")
			return
		}

		resetToken, err := generateResetToken()
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token generation failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		expires := time.Now().Add(passwordResetTTL)
		_, err = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{
				"passwordResetToken":   hashToken(resetToken),
				"passwordResetExpires": expires,
			},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token save failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		log.Println("[AUTH] [INFO] password reset token issued:", email)
		c.JSON(http.StatusOK, gin.H{
			"status":     "success",
			"message":    "Token sent to email!",
			"resetToken": resetToken,
		})
	}
}

func ResetPassword(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Password != req.PasswordConfirm {
			respondError(c, http.StatusBadRequest, "passwords do not match")
			return
		}

		hashed := hashToken(strings.TrimSpace(c.Param("token")))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{
			"passwordResetToken":   hashed,
			"passwordResetExpires": bson.M{"$gt": time.Now()},
		}).Decode(&user)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Token is invalid or has expired")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] reset password hash failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		// Backdate the change stamp one second so tokens issued right
		// after the update are not rejected as stale.
		changedAt := time.Now().Add(-time.Second)
		_, err = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{
				"passwordHash":      string(hash),
				"passwordChangedAt": changedAt,
				"updatedAt":         time.Now(),
			},
			"$unset": bson.M{
				"passwordResetToken":   "",
				"passwordResetExpires": "",
			},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] reset password save failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		user.PasswordChangedAt = &changedAt
		log.Println("[AUTH] [INFO] password reset:", user.Email)
		sendToken(c, cfg, user, http.StatusOK)
	}
}

func ChangePassword(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
			return
		}

		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			respondError(c, http.StatusUnauthorized, "Your current password is wrong.")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] change password hash failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		changedAt := time.Now().Add(-time.Second)
		_, err = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{
				"passwordHash":      string(hash),
				"passwordChangedAt": changedAt,
				"updatedAt":         time.Now(),
			},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] change password save failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		user.PasswordChangedAt = &changedAt
		log.Println("[AUTH] [INFO] password changed:", user.Email)
		sendToken(c, cfg, user, http.StatusOK)
	}
}

// CheckLogin validates the bearer token like the route guard does and
// echoes it back with the user it belongs to.
func CheckLogin(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.Split(raw, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") ||
			strings.TrimSpace(parts[1]) == "" || parts[1] == "null" {
			respondError(c, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
			return
		}

		user, err := middleware.UserFromToken(c.Request.Context(), db, parts[1], cfg.JWTSecret)
		if err != nil {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"token":  parts[1],
			"data":   gin.H{"user": user},
		})
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
