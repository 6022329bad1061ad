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

	"coffeeshop/internal/models"
	"coffeeshop/internal/query"
)

// productQuery is the list-query builder for the catalog: the fields
// clients may filter on and the fields free-text search spans.
var productQuery = query.NewBuilder(
	[]string{"name", "brand", "taste", "tags", "origin", "grindType",
		"discount", "rated", "size.price", "size.quantity"},
	[]string{"name", "brand", "tags"},
)

type createProductRequest struct {
	Name            string               `json:"name" binding:"required"`
	Brand           string               `json:"brand" binding:"required"`
	Taste           string               `json:"taste"`
	Tags            []string             `json:"tags"`
	Discount        float64              `json:"discount"`
	Sizes           []models.ProductSize `json:"size" binding:"required,min=1"`
	ThumbImg        string               `json:"thumbImg"`
	Images          []string             `json:"images"`
	Rated           float64              `json:"rated"`
	GrindType       []string             `json:"grindType"`
	Description     string               `json:"description" binding:"required"`
	LongDescription string               `json:"longDescription"`
	Origin          string               `json:"origin"`
}

type updateProductRequest struct {
	Name            *string               `json:"name"`
	Brand           *string               `json:"brand"`
	Taste           *string               `json:"taste"`
	Tags            *[]string             `json:"tags"`
	Discount        *float64              `json:"discount"`
	Sizes           *[]models.ProductSize `json:"size"`
	ThumbImg        *string               `json:"thumbImg"`
	Images          *[]string             `json:"images"`
	Rated           *float64              `json:"rated"`
	GrindType       *[]string             `json:"grindType"`
	Description     *string               `json:"description"`
	LongDescription *string               `json:"longDescription"`
	Origin          *string               `json:"origin"`
}

func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := productQuery.Build(c.Request.URL.Query())

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, q.Filter, q.FindOptions())
		if err != nil {
			log.Println("[PRODUCT] [ERROR] list failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		defer cursor.Close(ctx)

		products := []models.Product{}
		if err := cursor.All(ctx, &products); err != nil {
			log.Println("[PRODUCT] [ERROR] list decode failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		total, err := db.Collection("products").CountDocuments(ctx, q.Filter)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] count failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"total":   total,
			"results": len(products),
			"data":    gin.H{"products": products},
		})
	}
}

func GetTopRatedProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().
			SetSort(bson.D{{Key: "rated", Value: -1}}).
			SetLimit(8)

		cursor, err := db.Collection("products").Find(ctx, bson.M{}, opts)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] top rated list failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		defer cursor.Close(ctx)

		products := []models.Product{}
		if err := cursor.All(ctx, &products); err != nil {
			log.Println("[PRODUCT] [ERROR] top rated decode failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"results": len(products),
			"data":    gin.H{"products": products},
		})
	}
}

func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "No product found with that ID")
				return
			}
			log.Println("[PRODUCT] [ERROR] get failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"product": product},
		})
	}
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		now := time.Now()
		product := models.Product{
			Name:            strings.TrimSpace(req.Name),
			Brand:           strings.TrimSpace(req.Brand),
			Taste:           strings.TrimSpace(req.Taste),
			Tags:            req.Tags,
			Discount:        req.Discount,
			Sizes:           req.Sizes,
			ThumbImg:        req.ThumbImg,
			Images:          req.Images,
			Rated:           req.Rated,
			GrindType:       req.GrindType,
			Description:     strings.TrimSpace(req.Description),
			LongDescription: req.LongDescription,
			Origin:          strings.TrimSpace(req.Origin),
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] create failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		product.ID = res.InsertedID.(primitive.ObjectID)

		log.Println("[PRODUCT] [INFO] product created:", product.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"status": "success",
			"data":   gin.H{"product": product},
		})
	}
}

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		var req updateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		update := bson.M{}
		if req.Name != nil {
			update["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Brand != nil {
			update["brand"] = strings.TrimSpace(*req.Brand)
		}
		if req.Taste != nil {
			update["taste"] = strings.TrimSpace(*req.Taste)
		}
		if req.Tags != nil {
			update["tags"] = *req.Tags
		}
		if req.Discount != nil {
			update["discount"] = *req.Discount
		}
		if req.Sizes != nil {
			update["size"] = *req.Sizes
		}
		if req.ThumbImg != nil {
			update["thumbImg"] = *req.ThumbImg
		}
		if req.Images != nil {
			update["images"] = *req.Images
		}
		if req.Rated != nil {
			update["rated"] = *req.Rated
		}
		if req.GrindType != nil {
			update["grindType"] = *req.GrindType
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}
		if req.LongDescription != nil {
			update["longDescription"] = *req.LongDescription
		}
		if req.Origin != nil {
			update["origin"] = strings.TrimSpace(*req.Origin)
		}
		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, "nothing to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&product)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "Product not found with that ID")
				return
			}
			log.Println("[PRODUCT] [ERROR] update failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"product": product},
		})
	}
}

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = db.Collection("products").FindOneAndDelete(ctx, bson.M{"_id": id}).Err()
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "No product found with that ID")
				return
			}
			log.Println("[PRODUCT] [ERROR] delete failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		log.Println("[PRODUCT] [INFO] product deleted:", id.Hex())
		c.Status(http.StatusNoContent)
	}
}
