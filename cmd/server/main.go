package main

import (
	"log"
	"strings"

	"lankatrails-backend/internal/admin"
	"lankatrails-backend/internal/assistant"
	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/config"
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/directory"
	"lankatrails-backend/internal/mailer"
	"lankatrails-backend/internal/owner"
	"lankatrails-backend/internal/review"
	"lankatrails-backend/internal/rolerequest"
	"lankatrails-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	store := storage.New(cfg)
	mail := mailer.New(cfg)

	var chat assistant.ChatCompletionClient
	if cfg.ChatAPIKey != "" {
		chat = assistant.NewOpenAIClient(nil, cfg.ChatAPIKey)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // multipart image uploads
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	if cfg.StorageDriver == "local" {
		app.Static("/storage", cfg.UploadRoot)
	}

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/forgot-password", auth.ForgotPasswordHandler(mail))
	api.Post("/auth/reset-password", auth.ResetPasswordHandler())

	// Public directory reads
	api.Get("/locations", directory.ListLocationsHandler(store))
	api.Get("/locations/:id", directory.GetLocationHandler(store))
	api.Get("/guides", directory.ListGuidesHandler(store))
	api.Get("/guides/:id", directory.GetGuideHandler(store))
	api.Get("/hotels", directory.ListHotelsHandler(store))
	api.Get("/hotels/:id", directory.GetHotelHandler(store))
	api.Get("/shops", directory.ListShopsHandler(store))
	api.Get("/shops/:id", directory.GetShopHandler(store))
	api.Get("/vehicles", directory.ListVehiclesHandler(store))
	api.Get("/vehicles/:id", directory.GetVehicleHandler(store))
	api.Get("/items", directory.ListItemsHandler(store))
	api.Get("/items/:id", directory.GetItemHandler(store))
	api.Get("/hotel-owners", owner.ListHotelOwnersHandler())
	api.Get("/hotel-owners/:id", owner.GetHotelOwnerHandler())
	api.Get("/shop-owners", owner.ListShopOwnersHandler())
	api.Get("/shop-owners/:id", owner.GetShopOwnerHandler())
	api.Get("/vehicle-owners", owner.ListVehicleOwnersHandler())
	api.Get("/vehicle-owners/:id", owner.GetVehicleOwnerHandler())

	// Public reviews
	api.Get("/reviews/:entityType/:entityId", review.ListByEntityHandler(store))
	api.Get("/website-reviews", review.ListWebsiteReviewsHandler())

	// Chat assistant
	api.Post("/assistant", assistant.AskHandler(chat, cfg.ChatModel))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/auth/logout", auth.LogoutHandler())

	// Role requests
	protected.Post("/role-requests", rolerequest.SubmitHandler(store))
	protected.Get("/role-requests", rolerequest.ListOwnHandler())

	// Business entity self-service (creation checks role/ownership internally)
	protected.Post("/guides", directory.CreateGuideHandler(store))
	protected.Put("/guides/:id", directory.UpdateGuideHandler(store))
	protected.Delete("/guides/:id", directory.DeleteGuideHandler(store))
	protected.Post("/hotels", directory.CreateHotelHandler(store))
	protected.Put("/hotels/:id", directory.UpdateHotelHandler(store))
	protected.Delete("/hotels/:id", directory.DeleteHotelHandler(store))
	protected.Post("/shops", directory.CreateShopHandler(store))
	protected.Put("/shops/:id", directory.UpdateShopHandler(store))
	protected.Delete("/shops/:id", directory.DeleteShopHandler(store))
	protected.Post("/vehicles", directory.CreateVehicleHandler(store))
	protected.Put("/vehicles/:id", directory.UpdateVehicleHandler(store))
	protected.Delete("/vehicles/:id", directory.DeleteVehicleHandler(store))

	// Vehicle owners self-provision their profile
	protected.Post("/vehicle-owners", owner.CreateVehicleOwnerHandler())
	protected.Put("/vehicle-owners/:id", owner.UpdateVehicleOwnerHandler())

	protected.Put("/hotel-owners/:id", owner.UpdateHotelOwnerHandler())
	protected.Put("/shop-owners/:id", owner.UpdateShopOwnerHandler())

	// Reviews
	protected.Post("/reviews", review.CreateReviewHandler(store))
	protected.Put("/reviews/:id", review.UpdateReviewHandler(store))
	protected.Delete("/reviews/:id", review.DeleteReviewHandler(store))
	protected.Post("/website-reviews", review.CreateWebsiteReviewHandler())
	protected.Put("/website-reviews/:id", review.UpdateWebsiteReviewHandler())
	protected.Delete("/website-reviews/:id", review.DeleteWebsiteReviewHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireAdmin())

	// User management
	adminRoutes.Get("/users", admin.ListUsersHandler())
	adminRoutes.Get("/users/:id", admin.GetUserHandler())
	adminRoutes.Put("/users/:id", admin.UpdateUserHandler())
	adminRoutes.Delete("/users/:id", admin.DeleteUserHandler())

	// Role request moderation
	adminRoutes.Get("/role-requests", rolerequest.ListAllHandler())
	adminRoutes.Post("/role-requests/:id/approve", rolerequest.ApproveHandler(mail))
	adminRoutes.Post("/role-requests/:id/reject", rolerequest.RejectHandler(mail))

	// Curated catalog
	adminRoutes.Post("/locations", directory.CreateLocationHandler(store))
	adminRoutes.Put("/locations/:id", directory.UpdateLocationHandler(store))
	adminRoutes.Delete("/locations/:id", directory.DeleteLocationHandler(store))
	adminRoutes.Post("/items", directory.CreateItemHandler(store))
	adminRoutes.Put("/items/:id", directory.UpdateItemHandler(store))
	adminRoutes.Delete("/items/:id", directory.DeleteItemHandler(store))

	// Owner records
	adminRoutes.Post("/hotel-owners", owner.CreateHotelOwnerHandler())
	adminRoutes.Delete("/hotel-owners/:id", owner.DeleteHotelOwnerHandler())
	adminRoutes.Post("/shop-owners", owner.CreateShopOwnerHandler())
	adminRoutes.Delete("/shop-owners/:id", owner.DeleteShopOwnerHandler())
	adminRoutes.Delete("/vehicle-owners/:id", owner.DeleteVehicleOwnerHandler())

	// Legacy review tables
	adminRoutes.Get("/other-reviews", review.ListOtherReviewsHandler())
	adminRoutes.Post("/other-reviews", review.CreateOtherReviewHandler())
	adminRoutes.Put("/other-reviews/:id", review.UpdateOtherReviewHandler())
	adminRoutes.Delete("/other-reviews/:id", review.DeleteOtherReviewHandler())
	adminRoutes.Get("/location-hotel-reviews", review.ListLocationHotelReviewsHandler())
	adminRoutes.Post("/location-hotel-reviews", review.CreateLocationHotelReviewHandler())
	adminRoutes.Put("/location-hotel-reviews/:id", review.UpdateLocationHotelReviewHandler())
	adminRoutes.Delete("/location-hotel-reviews/:id", review.DeleteLocationHotelReviewHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
