package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"coffeeshop/internal/config"
	"coffeeshop/internal/database"
	"coffeeshop/internal/handlers"
	"coffeeshop/internal/middleware"
)

func main() {
	cfg := config.Load()

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureAddressIndexes(db); err != nil {
		log.Printf("address index warning: %v", err)
	}

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if cfg.AllowedOrigin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.AllowedOrigin}
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	api := r.Group("/api/v1")

	products := api.Group("/products")
	{
		products.GET("", handlers.GetAllProducts(db))
		products.GET("/top-rated-product", handlers.GetTopRatedProducts(db))
		products.POST("", handlers.CreateProduct(db))
		products.GET("/:id", handlers.GetProduct(db))
		products.PATCH("/:id", handlers.UpdateProduct(db))
		products.DELETE("/:id", middleware.Protect(db, cfg.JWTSecret), handlers.DeleteProduct(db))
	}

	users := api.Group("/users")
	{
		users.POST("/signup", handlers.Signup(db, cfg))
		users.POST("/login", handlers.Login(db, cfg))
		users.POST("/logout", handlers.Logout(cfg))
		users.POST("/refresh-token", handlers.RefreshToken(cfg))
		users.GET("/check-login", handlers.CheckLogin(db, cfg))
		users.POST("/forgotPassword", handlers.ForgotPassword(db))
		users.PATCH("/resetPassword/:token", handlers.ResetPassword(db, cfg))

		protected := users.Group("")
		protected.Use(middleware.Protect(db, cfg.JWTSecret))
		{
			protected.PATCH("/change-password", handlers.ChangePassword(db, cfg))
			protected.PATCH("/update-avatar", handlers.UpdateAvatar(db))
			protected.PATCH("/update-user", handlers.UpdateUserInfo(db))
		}
	}

	orders := api.Group("/orders")
	orders.Use(middleware.Protect(db, cfg.JWTSecret))
	{
		orders.GET("/my-orders", handlers.GetMyOrders(db))
		orders.GET("", handlers.GetAllOrders(db))
		orders.POST("", handlers.CreateOrder(db))
		orders.GET("/:id", handlers.GetOrder(db))
		orders.PATCH("/:id", middleware.RestrictTo("admin"), handlers.UpdateOrderStatus(db))
		orders.DELETE("/:id", handlers.DeleteOrder(db))
	}

	address := api.Group("/address")
	address.Use(middleware.Protect(db, cfg.JWTSecret))
	{
		address.GET("", handlers.GetAddresses(db))
		address.POST("", handlers.CreateAddress(db))
		address.PATCH("/:id", handlers.UpdateAddress(db))
		address.DELETE("/:id", handlers.DeleteAddress(db))
	}

	r.NoRoute(handlers.NotFound())

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
