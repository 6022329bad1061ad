package handlers

import (
	"context"
	"crypto/rand"
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
	"coffeeshop/internal/query"
)

// orderQuery drives the my-orders listing. Search spans the order code and
// the snapshotted product names.
var orderQuery = query.NewBuilder(
	[]string{"status", "paymentMethod", "orderCode", "totalPrice",
		"shippingCost", "isPaid", "isDelivered"},
	[]string{"orderCode", "products.name"},
)

const orderCodeAttempts = 5

type createOrderItemRequest struct {
	ProductID string  `json:"_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price" binding:"required"`
	Size      string  `json:"size" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Grind     string  `json:"grind" binding:"required"`
	Discount  float64 `json:"discount"`
}

type createOrderRequest struct {
	Products        []createOrderItemRequest `json:"products" binding:"required,min=1"`
	ShippingAddress models.ShippingAddress   `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required"`
	TotalPrice      float64                  `json:"totalPrice"`
	ShippingCost    float64                  `json:"shippingCost"`
	Coupon          *models.Coupon           `json:"coupon"`
}

type updateOrderRequest struct {
	Status      *string `json:"status"`
	IsPaid      *bool   `json:"isPaid"`
	IsDelivered *bool   `json:"isDelivered"`
}

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx, bson.M{})
		if err != nil {
			log.Println("[ORDER] [ERROR] list failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		defer cursor.Close(ctx)

		orders := []models.Order{}
		if err := cursor.All(ctx, &orders); err != nil {
			log.Println("[ORDER] [ERROR] list decode failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"results": len(orders),
			"data":    gin.H{"order": orders},
		})
	}
}

// GetMyOrders lists the caller's orders through the query builder and adds
// a per-status count summary.
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
			return
		}

		q := orderQuery.Build(c.Request.URL.Query()).And(bson.M{"user": user.ID})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx, q.Filter, q.FindOptions())
		if err != nil {
			log.Println("[ORDER] [ERROR] my orders list failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		defer cursor.Close(ctx)

		orders := []models.Order{}
		if err := cursor.All(ctx, &orders); err != nil {
			log.Println("[ORDER] [ERROR] my orders decode failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		counts, err := countOrdersByStatus(ctx, db, user.ID)
		if err != nil {
			log.Println("[ORDER] [ERROR] status counts failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"results": len(orders),
			"count":   counts,
			"data":    gin.H{"orders": orders},
		})
	}
}

func countOrdersByStatus(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (bson.M, error) {
	statusSum := func(status string) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$status", status}}, 1, 0,
		}}}
	}

	pipeline := []bson.M{
		{"$match": bson.M{"user": userID}},
		{"$group": bson.M{
			"_id":        nil,
			"all":        bson.M{"$sum": 1},
			"pending":    statusSum(models.OrderStatusPending),
			"processing": statusSum(models.OrderStatusProcessing),
			"shipped":    statusSum(models.OrderStatusShipped),
			"delivered":  statusSum(models.OrderStatusDelivered),
			"cancelled":  statusSum(models.OrderStatusCancelled),
		}},
		{"$project": bson.M{"_id": 0}},
	}

	cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return bson.M{}, nil
	}
	return results[0], nil
}

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "No order found with that ID")
				return
			}
			log.Println("[ORDER] [ERROR] get failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"order": order},
		})
	}
}

// CreateOrder snapshots every line item (including the product thumbnail
// as it exists right now), stamps the caller as owner and retries code
// generation until the unique index accepts it.
func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !models.ValidPaymentMethod(req.PaymentMethod) {
			respondError(c, http.StatusBadRequest, "invalid payment method")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		thumbnails, err := loadProductThumbnails(ctx, db, req.Products)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		items, err := buildOrderItems(req.Products, thumbnails)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		now := time.Now()
		order := models.Order{
			UserID:          user.ID,
			Products:        items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			Status:          models.OrderStatusProcessing,
			OrderDate:       now,
			ShippingCost:    req.ShippingCost,
			TotalPrice:      req.TotalPrice,
			Coupon:          req.Coupon,
			CreatedAt:       now,
		}

		inserted := false
		for attempt := 0; attempt < orderCodeAttempts; attempt++ {
			code, err := generateOrderCode()
			if err != nil {
				log.Println("[ORDER] [ERROR] order code generation failed:", err)
				respondError(c, http.StatusInternalServerError, "Internal server error")
				return
			}
			order.OrderCode = code

			res, err := db.Collection("orders").InsertOne(ctx, order)
			if err != nil {
				if mongo.IsDuplicateKeyError(err) {
					continue
				}
				log.Println("[ORDER] [ERROR] create failed:", err)
				respondError(c, http.StatusInternalServerError, "Internal server error")
				return
			}
			order.ID = res.InsertedID.(primitive.ObjectID)
			inserted = true
			break
		}
		if !inserted {
			log.Println("[ORDER] [ERROR] order code collisions exhausted retries")
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		log.Println("[ORDER] [INFO] order created:", order.OrderCode, "for user:", user.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"status": "success",
			"data":   gin.H{"order": order},
		})
	}
}

func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid order id")
			return
		}

		var req updateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		update := bson.M{}
		now := time.Now()
		if req.Status != nil {
			if !models.ValidOrderStatus(*req.Status) {
				respondError(c, http.StatusBadRequest, "invalid order status")
				return
			}
			update["status"] = *req.Status
		}
		if req.IsPaid != nil {
			update["isPaid"] = *req.IsPaid
			if *req.IsPaid {
				update["paidAt"] = now
			}
		}
		if req.IsDelivered != nil {
			update["isDelivered"] = *req.IsDelivered
			if *req.IsDelivered {
				update["deliveredAt"] = now
			}
		}
		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, "nothing to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&order)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "No order found with that ID")
				return
			}
			log.Println("[ORDER] [ERROR] update failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"order": order},
		})
	}
}

func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = db.Collection("orders").FindOneAndDelete(ctx, bson.M{"_id": id}).Err()
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "No order found with that ID")
				return
			}
			log.Println("[ORDER] [ERROR] delete failed:", err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		log.Println("[ORDER] [INFO] order deleted:", id.Hex())
		c.Status(http.StatusNoContent)
	}
}

// loadProductThumbnails reads the current thumbnail of every referenced
// product so the order can carry its own copy.
func loadProductThumbnails(ctx context.Context, db *mongo.Database, items []createOrderItemRequest) (map[primitive.ObjectID]string, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, errInvalidProductID
		}
		ids = append(ids, id)
	}

	opts := options.Find().SetProjection(bson.M{"thumbImg": 1})
	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	thumbnails := make(map[primitive.ObjectID]string, len(products))
	for _, product := range products {
		thumbnails[product.ID] = product.ThumbImg
	}
	return thumbnails, nil
}

// buildOrderItems turns the requested line items into immutable snapshots,
// one per requested product.
func buildOrderItems(items []createOrderItemRequest, thumbnails map[primitive.ObjectID]string) ([]models.OrderItem, error) {
	snapshots := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, errInvalidProductID
		}

		snapshots = append(snapshots, models.OrderItem{
			ProductID: id,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Size:      item.Size,
			Name:      strings.TrimSpace(item.Name),
			Grind:     item.Grind,
			Thumbnail: thumbnails[id],
			Discount:  item.Discount,
		})
	}
	return snapshots, nil
}

var errInvalidProductID = invalidInputError("invalid product id")

type invalidInputError string

func (e invalidInputError) Error() string { return string(e) }

const (
	orderCodeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderCodeDigits  = "0123456789"
)

// generateOrderCode produces the human-readable code: one letter, two
// digits, three letters. Uniqueness is enforced by the orderCode index.
func generateOrderCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	code := make([]byte, 6)
	code[0] = orderCodeLetters[int(buf[0])%len(orderCodeLetters)]
	code[1] = orderCodeDigits[int(buf[1])%len(orderCodeDigits)]
	code[2] = orderCodeDigits[int(buf[2])%len(orderCodeDigits)]
	code[3] = orderCodeLetters[int(buf[3])%len(orderCodeLetters)]
	code[4] = orderCodeLetters[int(buf[4])%len(orderCodeLetters)]
	code[5] = orderCodeLetters[int(buf[5])%len(orderCodeLetters)]
	return string(code), nil
}
